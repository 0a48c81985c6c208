/*
 * dcd.go, part of chemvtk
 *
 * Copyright 2012 Raul Mera Adasme <rmera_changeforat_chem-dot-helsinki-dot-fi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License  as published by
 * the Free Software Foundation; either version 2.1 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program; if not, write to the Free Software
 * Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston,
 * MA 02110-1301, USA.
 */
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

// Package dcd reads and writes Charmm/NAMD binary trajectories (DCD). The reader maps the
// whole file in memory (read-only) and decodes one frame per call to Next.
package dcd

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/edsrzf/mmap-go"
	chem "github.com/rmera/chemvtk"
	v3 "github.com/rmera/chemvtk/v3"
)

const mAXTITLE int32 = 80

// DCDObj is a Charmm/NAMD binary trajectory file opened for reading.
type DCDObj struct {
	natoms     int32
	readable   bool //Is it ready to be read?
	filename   string
	charmm     bool //Charmm traj?
	extrablock bool //unit cell information in each frame
	fourdim    bool
	fixed      int32 //Fixed atoms (not supported)
	nframes    int32 //as given in the header, 0 in some files.
	f          *os.File
	mm         mmap.MMap
	off        int //where the next read starts
	endian     binary.ByteOrder
	fields     [3][]float32
}

// New opens the DCD file filename for reading.
// It supports big and little endianness, charmm or (namd>=2.1) files and no
// fixed atoms.
func New(filename string) (*DCDObj, error) {
	D := &DCDObj{filename: filename}
	var err error
	if D.f, err = os.Open(filename); err != nil {
		return nil, &Error{err.Error(), filename, []string{"os.Open", "New"}, true}
	}
	if D.mm, err = mmap.Map(D.f, mmap.RDONLY, 0); err != nil {
		D.f.Close()
		return nil, &Error{err.Error(), filename, []string{"mmap.Map", "New"}, true}
	}
	if err = D.readHeader(); err != nil {
		D.close()
		return nil, errDecorate(err, "New")
	}
	for i := range D.fields {
		D.fields[i] = make([]float32, D.natoms)
	}
	D.readable = true
	return D, nil
}

// Readable returns true if the object is ready to be read from,
// false otherwise. It doesnt guarantee that there is something
// to read.
func (D *DCDObj) Readable() bool {
	return D.readable
}

// Len returns the number of atoms per frame.
func (D *DCDObj) Len() int {
	return int(D.natoms)
}

// NFrames returns the number of frames declared in the header. Some programs
// leave it as 0.
func (D *DCDObj) NFrames() int {
	return int(D.nframes)
}

// bytes returns the next n bytes of the file and advances the offset.
func (D *DCDObj) bytes(n int) ([]byte, error) {
	if n < 0 || D.off+n > len(D.mm) {
		return nil, &Error{fmt.Sprintf("%s: %d bytes requested at offset %d, file has %d", ReadError, n, D.off, len(D.mm)), D.filename, []string{"bytes"}, true}
	}
	b := D.mm[D.off : D.off+n]
	D.off += n
	return b, nil
}

func (D *DCDObj) int32() (int32, error) {
	b, err := D.bytes(4)
	if err != nil {
		return 0, err
	}
	return int32(D.endian.Uint32(b)), nil
}

// record reads a Fortran record: the size, the content and the size again.
func (D *DCDObj) record() ([]byte, error) {
	size, err := D.int32()
	if err != nil {
		return nil, err
	}
	b, err := D.bytes(int(size))
	if err != nil {
		return nil, err
	}
	check, err := D.int32()
	if err != nil {
		return nil, err
	}
	if check != size {
		return nil, &Error{SecurityCheckFailed, D.filename, []string{"record"}, true}
	}
	return b, nil
}

func (D *DCDObj) readHeader() error {
	if len(D.mm) < 8 {
		return &Error{WrongFormat + ": file too short", D.filename, []string{"readHeader"}, true}
	}
	//The first thing we should read is an 84.
	//If this fails it means that the file is big endian.
	D.endian = binary.LittleEndian
	if binary.LittleEndian.Uint32(D.mm) != 84 {
		D.endian = binary.BigEndian
		if binary.BigEndian.Uint32(D.mm) != 84 {
			return &Error{WrongFormat, D.filename, []string{"readHeader"}, true}
		}
	}
	buf, err := D.record()
	if err != nil {
		return err
	}
	//Then the magic number "CORD" and 20 control integers.
	if string(buf[:4]) != "CORD" {
		return &Error{"Wrong magic number", D.filename, []string{"readHeader"}, true}
	}
	icntrl := buf[4:]
	at := func(i int) int32 { return int32(D.endian.Uint32(icntrl[4*i:])) }
	D.nframes = at(0)
	D.fixed = at(8)
	//X-plor sets the last int to zero, charmm sets it to its version number.
	if at(19) == 0 {
		return &Error{"X-plor DCD not supported", D.filename, []string{"readHeader"}, true}
	}
	D.charmm = true
	D.extrablock = at(10) != 0
	D.fourdim = at(11) == 1
	//title
	if _, err = D.record(); err != nil {
		return err
	}
	nat, err := D.record()
	if err != nil {
		return err
	}
	if len(nat) != 4 {
		return &Error{WrongFormat + ": atom number", D.filename, []string{"readHeader"}, true}
	}
	D.natoms = int32(D.endian.Uint32(nat))
	if D.natoms <= 0 {
		return &Error{WrongFormat + ": no atoms", D.filename, []string{"readHeader"}, true}
	}
	if D.fixed != 0 {
		return &Error{"Fixed atoms not supported", D.filename, []string{"readHeader"}, true}
	}
	return nil
}

// Next reads the next frame and puts it in keep, or discards it if keep is nil.
// If the file contains unit cell information and box is given, the first element of
// box is filled with the box vectors (only the lengths are kept, in the diagonal).
// At the end of the trajectory it returns a chem.LastFrameError and closes the object.
func (D *DCDObj) Next(keep *v3.Matrix, box ...[]float64) error {
	if !D.readable {
		return &Error{TrajUnIni, D.filename, []string{"Next"}, true}
	}
	if D.off >= len(D.mm) {
		D.Close()
		return newlastFrameError(D.filename, "Next")
	}
	if err := D.nextRaw(box...); err != nil {
		return errDecorate(err, "Next")
	}
	if keep == nil {
		return nil
	}
	if keep.NVecs() != int(D.natoms) {
		return &Error{fmt.Sprintf("Matrix with %d rows given for %d atoms", keep.NVecs(), D.natoms), D.filename, []string{"Next"}, true}
	}
	for i := 0; i < int(D.natoms); i++ {
		keep.Set(i, 0, float64(D.fields[0][i]))
		keep.Set(i, 1, float64(D.fields[1][i]))
		keep.Set(i, 2, float64(D.fields[2][i]))
	}
	return nil
}

func (D *DCDObj) nextRaw(box ...[]float64) error {
	blocksize := D.natoms * 4
	//With the extra block flag set in the header, every frame starts with the unit cell.
	if D.extrablock {
		cell, err := D.record()
		if err != nil {
			return err
		}
		if len(cell) != 48 {
			return &Error{fmt.Sprintf("%s: unit cell block of %d bytes", WrongFormat, len(cell)), D.filename, []string{"nextRaw"}, true}
		}
		if len(box) > 0 && len(box[0]) >= 9 {
			//A, gamma, B, beta, alpha, C
			for i := range box[0] {
				box[0][i] = 0
			}
			box[0][0] = math.Float64frombits(D.endian.Uint64(cell[0:]))
			box[0][4] = math.Float64frombits(D.endian.Uint64(cell[16:]))
			box[0][8] = math.Float64frombits(D.endian.Uint64(cell[40:]))
		}
	}
	for i := range D.fields {
		b, err := D.record()
		if err != nil {
			return err
		}
		if len(b) != int(blocksize) {
			return &Error{fmt.Sprintf("%s: coordinate block of %d bytes for %d atoms", WrongFormat, len(b), D.natoms), D.filename, []string{"nextRaw"}, true}
		}
		for j := range D.fields[i] {
			D.fields[i][j] = math.Float32frombits(D.endian.Uint32(b[4*j:]))
		}
	}
	//The 4-D values are skipped. They are not present in the last snapshot of some files.
	if D.fourdim && D.off < len(D.mm) {
		if _, err := D.record(); err != nil {
			return err
		}
	}
	return nil
}

func (D *DCDObj) close() {
	D.mm.Unmap()
	D.f.Close()
}

// Close unmaps and closes the file. The object can't be read after this call.
func (D *DCDObj) Close() {
	if !D.readable {
		return
	}
	D.close()
	D.readable = false
}

//Errors

// errDecorate is a helper function that asserts that the error
// implements chem.Error and decorates the error with the caller's name before returning it.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	if err2, ok := err.(chem.Error); ok {
		err2.Decorate(caller)
	}
	return err
}

// Error is the general structure for DCD trajectory errors. It fullfills chem.Error and chem.TrajError
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err *Error) Error() string {
	return fmt.Sprintf("dcd file %s error: %s", err.filename, err.message)
}

// Decorate Adds new information to the error
func (err *Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// FileName returns the file to which the failing trajectory was associated
func (err *Error) FileName() string { return err.filename }

// Format returns the format of the file (always "dcd") associated to the error
func (err *Error) Format() string { return "dcd" }

// Critical returns true if the error is critical, false otherwise
func (err *Error) Critical() bool { return err.critical }

// Kind returns chem.KindInput, as all problems with trajectories are problems with the input.
func (err *Error) Kind() chem.Kind { return chem.KindInput }

const (
	TrajUnIni           = "Traj object uninitialized to read or write"
	ReadError           = "Error reading frame"
	SecurityCheckFailed = "Failed Security Check"
	WrongFormat         = "Wrong format in the DCD file or frame"
)

// lastFrameError implements chem.LastFrameError
type lastFrameError struct {
	deco     []string
	fileName string
}

// lastFrameError does nothing
func (E *lastFrameError) NormalLastFrameTermination() {}

func (E *lastFrameError) FileName() string { return E.fileName }

func (E *lastFrameError) Error() string { return "EOF" }

func (E *lastFrameError) Critical() bool { return false }

func (E *lastFrameError) Format() string { return "dcd" }

func (E *lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newlastFrameError(filename string, caller string) *lastFrameError {
	e := new(lastFrameError)
	e.fileName = filename
	e.deco = []string{caller}
	return e
}
