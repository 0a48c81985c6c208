/*
 * pvd.go, part of chemvtk.
 *
 * Copyright 2021 Raul Mera <rmera{at}usachDOTcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package vtk

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"os"

	chem "github.com/rmera/chemvtk"
)

const (
	pvdHeader = "<?xml version=\"1.0\"?>\n<VTKFile type=\"Collection\" version=\"0.1\" byte_order=\"LittleEndian\">\n<Collection>\n"
	pvdFooter = "</Collection>\n</VTKFile>\n"
)

// Manifest is a ParaView data collection file (.pvd) being written. Each entry
// is written to the file as soon as it is added.
type Manifest struct {
	filename string
	f        *os.File
	w        *bufio.Writer
	n        int
	closed   bool
}

// CreateManifest creates the file filename and writes the collection header.
func CreateManifest(filename string) (*Manifest, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, chem.WrapError(chem.KindOutput, filename, err, "os.Create", "CreateManifest")
	}
	M := &Manifest{filename: filename, f: f, w: bufio.NewWriter(f)}
	if err = M.write(pvdHeader, "CreateManifest"); err != nil {
		f.Close()
		return nil, err
	}
	return M, nil
}

func (M *Manifest) write(s, caller string) error {
	if M.closed {
		return chem.NewError(chem.KindOutput, M.filename, "Manifest already closed", caller)
	}
	M.w.WriteString(s)
	if err := M.w.Flush(); err != nil {
		return chem.WrapError(chem.KindOutput, M.filename, err, caller)
	}
	return nil
}

// Add writes an entry for the dataset file at the given timestep.
func (M *Manifest) Add(timestep int, file string) error {
	var esc bytes.Buffer
	xml.EscapeText(&esc, []byte(file))
	err := M.write(fmt.Sprintf("<DataSet timestep=\"%d\" group=\"\" part=\"0\" file=\"%s\"/>\n", timestep, esc.String()), "Add")
	if err == nil {
		M.n++
	}
	return err
}

// Len returns the number of entries written.
func (M *Manifest) Len() int {
	return M.n
}

// Close writes the collection footer and closes the file.
func (M *Manifest) Close() error {
	if err := M.write(pvdFooter, "Close"); err != nil {
		M.Release()
		return err
	}
	return M.Release()
}

// Release closes the file without writing the footer. It does nothing if
// the manifest is already closed, so it can be deferred.
func (M *Manifest) Release() error {
	if M.closed {
		return nil
	}
	M.closed = true
	if err := M.f.Close(); err != nil {
		return chem.WrapError(chem.KindOutput, M.filename, err, "Release")
	}
	return nil
}
