/*
 * stf_test.go, part of chemvtk.
 *
 * Copyright 2021 Raul Mera <rauldotmeraatusachdotcl>
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

package stf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	chem "github.com/rmera/chemvtk"
	v3 "github.com/rmera/chemvtk/v3"
	"gonum.org/v1/gonum/floats"
)

func frames() []*v3.Matrix {
	ret := make([]*v3.Matrix, 0, 3)
	for f := 0; f < 3; f++ {
		m, err := v3.NewMatrix([]float64{
			float64(f), 0, -1.25,
			1.5, float64(f) * 0.33, 2,
		})
		if err != nil {
			panic(err)
		}
		ret = append(ret, m)
	}
	return ret
}

func writeTraj(Te *testing.T, name string, header map[string]string) {
	w, err := NewWriter(name, 2, header)
	if err != nil {
		Te.Fatal(err)
	}
	box := []float64{10, 0, 0, 0, 10, 0, 0, 0, 10}
	for _, c := range frames() {
		if err = w.WNext(c, box); err != nil {
			Te.Fatal(err)
		}
	}
	if err = w.WNext(v3.Zeros(3)); err == nil {
		Te.Errorf("a frame with the wrong number of atoms should not be written")
	}
	if err = w.Close(); err != nil {
		Te.Fatal(err)
	}
}

// Writes and then reads a trajectory with each of the compressions.
func TestSTFWriteRead(Te *testing.T) {
	dir := Te.TempDir()
	for _, ext := range []string{".stf", ".stz", ".stl", ".str"} {
		name := filepath.Join(dir, "test"+ext)
		writeTraj(Te, name, map[string]string{"prec": "3", "title": "test"})
		r, h, err := New(name)
		if err != nil {
			Te.Fatalf("%s: %v", ext, err)
		}
		if h["title"] != "test" || r.Len() != 2 {
			Te.Errorf("%s: wrong header %v or atoms %d", ext, h, r.Len())
		}
		want := frames()
		box := make([]float64, 9)
		c := v3.Zeros(2)
		i := 0
		for ; ; i++ {
			err = r.Next(c, box)
			if err != nil {
				var last chem.LastFrameError
				if errors.As(err, &last) {
					break
				}
				Te.Fatalf("%s: %v", ext, err)
			}
			if !floats.EqualApprox(c.RawMatrix().Data, want[i].RawMatrix().Data, 1e-3) {
				Te.Errorf("%s: frame %d is %v, expected %v", ext, i, c.RawMatrix().Data, want[i].RawMatrix().Data)
			}
			if box[4] != 10 {
				Te.Errorf("%s: box not read: %v", ext, box)
			}
		}
		if i != 3 {
			Te.Errorf("%s: read %d frames, expected 3", ext, i)
		}
		if r.Readable() {
			Te.Errorf("%s: trajectory should be closed after the last frame", ext)
		}
		var last chem.LastFrameError
		if err := r.Next(c); !errors.As(err, &last) {
			Te.Errorf("%s: reading past the last frame should give a last frame error, got %v", ext, err)
		}
		r.Close()
	}
}

func TestSTFMolecule(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "mol.stf")
	writeTraj(Te, name, nil)
	r, _, err := New(name)
	if err != nil {
		Te.Fatal(err)
	}
	defer r.Close()
	top := chem.NewTopology([]*chem.Atom{{Name: "C"}, {Name: "C"}})
	mol, err := chem.NewMolecule(top, nil)
	if err != nil {
		Te.Fatal(err)
	}
	n, err := mol.ReadFrames(r)
	if err != nil {
		Te.Fatal(err)
	}
	if n != 3 {
		Te.Errorf("expected 3 frames, got %d", n)
	}
	if x, _, _, _ := mol.PositionOf(top.Atom(0), 2); x != 2 {
		Te.Errorf("wrong coordinate %g", x)
	}
}

func TestSTFBadFrame(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "bad.stf")
	f, err := os.Create(name)
	if err != nil {
		Te.Fatal(err)
	}
	z, err := zstd.NewWriter(f)
	if err != nil {
		Te.Fatal(err)
	}
	//The frame has one atom less than the header says.
	z.Write([]byte("prec=2\n** 2\n100 200 300\n*\n"))
	z.Close()
	f.Close()
	r, _, err := New(name)
	if err != nil {
		Te.Fatal(err)
	}
	defer r.Close()
	err = r.Next(v3.Zeros(2))
	if err == nil {
		Te.Fatal("expected an error for a short frame")
	}
	if chem.KindOf(err) != chem.KindInput {
		Te.Errorf("expected an input error, got %v", chem.KindOf(err))
	}
	if _, _, err = New(filepath.Join(Te.TempDir(), "none.stf")); err == nil {
		Te.Errorf("expected an error for a missing file")
	}
}
