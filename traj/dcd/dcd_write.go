/*
 * dcd_write.go, part of chemvtk
 *
 * Copyright 2021 Raul Mera Adasme <rmera_changeforat_chem-dot-helsinki-dot-fi>
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
 *
 */

package dcd

import (
	"bytes"
	"encoding/binary"
	"os"

	v3 "github.com/rmera/chemvtk/v3"
)

// DCDWObj is a Charmm/NAMD binary trajectory file
// opened for writing
type DCDWObj struct {
	natoms   int32
	writable bool //Is it ready to be written on
	filename string
	unitcell bool
	frames   int32
	dcd      *os.File //The DCD file
	buf      bytes.Buffer
	endian   binary.ByteOrder
}

// NewWriter creates the DCD file filename, for frames of natoms atoms. If unitcell is given and true,
// each frame carries the unit cell given to WNext.
func NewWriter(filename string, natoms int, unitcell ...bool) (*DCDWObj, error) {
	D := &DCDWObj{natoms: int32(natoms), filename: filename, endian: binary.LittleEndian}
	D.unitcell = len(unitcell) > 0 && unitcell[0]
	if D.natoms <= 0 {
		return nil, &Error{"Trajectory not initialized correctly, the number of atoms must be positive", filename, []string{"NewWriter"}, true}
	}
	var err error
	D.dcd, err = os.Create(filename)
	if err != nil {
		return nil, &Error{err.Error(), filename, []string{"os.Create", "NewWriter"}, true}
	}
	if err = D.writeHeader(); err != nil {
		D.dcd.Close()
		return nil, errDecorate(err, "NewWriter")
	}
	D.writable = true
	return D, nil
}

// put appends the binary representation of each value to the buffer.
func (D *DCDWObj) put(vals ...interface{}) {
	for _, v := range vals {
		binary.Write(&D.buf, D.endian, v) //bytes.Buffer doesn't fail.
	}
}

// flush writes the buffer to the file
func (D *DCDWObj) flush(caller string) error {
	_, err := D.dcd.Write(D.buf.Bytes())
	D.buf.Reset()
	if err != nil {
		return &Error{err.Error(), D.filename, []string{"Write", caller}, true}
	}
	return nil
}

func (D *DCDWObj) writeHeader() error {
	icntrl := make([]int32, 20)
	icntrl[0] = 0 //The frames in the file go here, updated after every write.
	icntrl[2] = 1 //step interval (nsavc)
	if D.unitcell {
		icntrl[10] = 1
	}
	icntrl[19] = 24 //charmm version, let's say, 24
	D.put(int32(84), []byte("CORD"), icntrl[:9], float32(1), icntrl[10:], int32(84))
	//a dummy title, 2 lines
	title := bytes.Repeat([]byte{' '}, int(2*mAXTITLE))
	copy(title, "Created by chemvtk")
	D.put(int32(4+len(title)), int32(2), title, int32(4+len(title)))
	//the number of atoms in each snapshot
	D.put(int32(4), D.natoms, int32(4))
	return D.flush("writeHeader")
}

// WNext writes the next frame to the trajectory.
// The box is only written if the trajectory was created with unit cell information.
func (D *DCDWObj) WNext(towrite *v3.Matrix, box ...[]float64) error {
	if !D.writable {
		return &Error{TrajUnIni, D.filename, []string{"WNext"}, true}
	}
	if towrite == nil {
		return &Error{"got nil coordinates", D.filename, []string{"WNext"}, true}
	}
	if int32(towrite.NVecs()) != D.natoms {
		return &Error{"Coordinates don't match the trajectory size", D.filename, []string{"WNext"}, true}
	}
	if D.unitcell {
		//A, gamma, B, beta, alpha, C. Orthorhombic boxes only.
		cell := []float64{0, 90, 0, 90, 90, 0}
		if len(box) > 0 && len(box[0]) >= 9 {
			cell[0], cell[2], cell[5] = box[0][0], box[0][4], box[0][8]
		}
		D.put(int32(48), cell, int32(48))
	}
	block := make([]float32, D.natoms)
	blocksize := D.natoms * 4
	for j := 0; j < 3; j++ {
		for i := range block {
			block[i] = float32(towrite.At(i, j))
		}
		D.put(blocksize, block, blocksize)
	}
	if err := D.flush("WNext"); err != nil {
		return err
	}
	D.frames++
	return D.updateFrames()
}

// DCD requires the number of frames at the begining.
func (D *DCDWObj) updateFrames() error {
	var nf [4]byte
	D.endian.PutUint32(nf[:], uint32(D.frames))
	//the frame number is after the 84 and the magic number. WriteAt doesn't move the offset.
	if _, err := D.dcd.WriteAt(nf[:], 8); err != nil {
		return &Error{err.Error(), D.filename, []string{"WriteAt", "updateFrames"}, true}
	}
	return nil
}

// Len returns the number of atoms per frame.
func (D *DCDWObj) Len() int {
	return int(D.natoms)
}

// Close closes the file. It can't be written after this call.
func (D *DCDWObj) Close() error {
	if !D.writable {
		return nil
	}
	D.writable = false
	if err := D.dcd.Close(); err != nil {
		return &Error{err.Error(), D.filename, []string{"Close"}, true}
	}
	return nil
}
