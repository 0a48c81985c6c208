/*
 * dcd_test.go, part of chemvtk
 *
 * Copyright 2012 Raul Mera Adasme <rmera_changeforat_chem-dot-helsinki-dot-fi>
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
 */

package dcd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	chem "github.com/rmera/chemvtk"
	v3 "github.com/rmera/chemvtk/v3"
	"gonum.org/v1/gonum/floats"
)

func testFrame(f int) *v3.Matrix {
	m, err := v3.NewMatrix([]float64{
		float64(f), 1.5, -2.25,
		0.5, float64(f) * 2, 3,
		-1, -1, float64(f) + 0.125,
	})
	if err != nil {
		panic(err)
	}
	return m
}

func writeDCD(Te *testing.T, name string, nframes int, unitcell bool) {
	w, err := NewWriter(name, 3, unitcell)
	if err != nil {
		Te.Fatal(err)
	}
	box := []float64{20, 0, 0, 0, 21, 0, 0, 0, 22}
	for i := 0; i < nframes; i++ {
		if err = w.WNext(testFrame(i), box); err != nil {
			Te.Fatal(err)
		}
	}
	if err = w.WNext(v3.Zeros(2)); err == nil {
		Te.Errorf("wrong number of atoms should give an error")
	}
	if err = w.Close(); err != nil {
		Te.Fatal(err)
	}
}

func TestDCDWriteRead(Te *testing.T) {
	for _, cell := range []bool{false, true} {
		name := filepath.Join(Te.TempDir(), "test.dcd")
		writeDCD(Te, name, 4, cell)
		r, err := New(name)
		if err != nil {
			Te.Fatal(err)
		}
		if r.Len() != 3 || r.NFrames() != 4 {
			Te.Errorf("wrong header: %d atoms %d frames", r.Len(), r.NFrames())
		}
		c := v3.Zeros(3)
		box := make([]float64, 9)
		i := 0
		for ; ; i++ {
			if i == 1 {
				err = r.Next(nil)
			} else {
				err = r.Next(c, box)
			}
			if err != nil {
				var last chem.LastFrameError
				if errors.As(err, &last) {
					break
				}
				Te.Fatal(err)
			}
			if i == 1 {
				continue
			}
			//all the values are exact in float32
			if !floats.Equal(c.RawMatrix().Data, testFrame(i).RawMatrix().Data) {
				Te.Errorf("frame %d: got %v", i, c.RawMatrix().Data)
			}
			if cell && (box[0] != 20 || box[4] != 21 || box[8] != 22) {
				Te.Errorf("frame %d: wrong box %v", i, box)
			}
		}
		if i != 4 {
			Te.Errorf("read %d frames, expected 4", i)
		}
		if r.Readable() {
			Te.Errorf("the trajectory should be closed after the last frame")
		}
	}
}

// With 12 atoms the coordinate blocks have the same size as the unit cell block.
func TestDCDUnitCell12Atoms(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "cell12.dcd")
	w, err := NewWriter(name, 12, true)
	if err != nil {
		Te.Fatal(err)
	}
	box := []float64{30, 0, 0, 0, 31, 0, 0, 0, 32}
	frames := make([]*v3.Matrix, 2)
	for f := range frames {
		frames[f] = v3.Zeros(12)
		for i := 0; i < 12; i++ {
			frames[f].Set(i, 0, float64(i+f))
			frames[f].Set(i, 1, 1)
			frames[f].Set(i, 2, 2)
		}
		if err = w.WNext(frames[f], box); err != nil {
			Te.Fatal(err)
		}
	}
	if err = w.Close(); err != nil {
		Te.Fatal(err)
	}
	r, err := New(name)
	if err != nil {
		Te.Fatal(err)
	}
	defer r.Close()
	c := v3.Zeros(12)
	for f := range frames {
		rbox := make([]float64, 9)
		if err = r.Next(c, rbox); err != nil {
			Te.Fatalf("frame %d: %v", f, err)
		}
		if !floats.Equal(c.RawMatrix().Data, frames[f].RawMatrix().Data) {
			Te.Errorf("frame %d: got %v", f, c.RawMatrix().Data)
		}
		if rbox[0] != 30 || rbox[4] != 31 || rbox[8] != 32 {
			Te.Errorf("frame %d: wrong box %v", f, rbox)
		}
	}
	var last chem.LastFrameError
	if err = r.Next(c); !errors.As(err, &last) {
		Te.Errorf("expected the end of the trajectory, got %v", err)
	}
}

func TestDCDMolecule(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "mol.dcd")
	writeDCD(Te, name, 2, false)
	r, err := New(name)
	if err != nil {
		Te.Fatal(err)
	}
	defer r.Close()
	mol, err := chem.NewMolecule(chem.NewTopology([]*chem.Atom{{Name: "C"}, {Name: "C"}, {Name: "C"}}), nil)
	if err != nil {
		Te.Fatal(err)
	}
	if n, err := mol.ReadFrames(r); err != nil || n != 2 {
		Te.Errorf("expected 2 frames, got %d (%v)", n, err)
	}
}

func TestDCDBadFiles(Te *testing.T) {
	dir := Te.TempDir()
	if _, err := New(filepath.Join(dir, "none.dcd")); err == nil {
		Te.Errorf("expected an error for a missing file")
	}
	bad := filepath.Join(dir, "bad.dcd")
	if err := os.WriteFile(bad, []byte("this is not a trajectory file"), 0644); err != nil {
		Te.Fatal(err)
	}
	_, err := New(bad)
	if err == nil {
		Te.Fatal("expected an error for a wrong file")
	}
	if chem.KindOf(err) != chem.KindInput {
		Te.Errorf("expected an input error, got %v", chem.KindOf(err))
	}
	//A truncated trajectory
	good := filepath.Join(dir, "good.dcd")
	writeDCD(Te, good, 1, false)
	data, err := os.ReadFile(good)
	if err != nil {
		Te.Fatal(err)
	}
	trunc := filepath.Join(dir, "trunc.dcd")
	if err = os.WriteFile(trunc, data[:len(data)-10], 0644); err != nil {
		Te.Fatal(err)
	}
	r, err := New(trunc)
	if err != nil {
		Te.Fatal(err)
	}
	defer r.Close()
	if err = r.Next(v3.Zeros(3)); err == nil {
		Te.Errorf("a truncated frame should give an error")
	}
}
