/*
 * frame.go, part of chemvtk.
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

package linegeom

import (
	"fmt"

	chem "github.com/rmera/chemvtk"
	"github.com/rmera/chemvtk/spline"
	v3 "github.com/rmera/chemvtk/v3"
)

// Positioner gives the position of an atom in a frame. *chem.Molecule implements it.
type Positioner interface {
	PositionOf(at *chem.Atom, frame int) (x, y, z float64, err error)
}

// Frame is the line geometry of one frame. Each consecutive pair of points is a line segment.
type Frame struct {
	Index    int
	Points   []float32  //x, y, z of each point
	Types    []uint32   //one per point
	Backbone int        //the first Backbone points are the curve segments
	Trace    *v3.Matrix //the samples of the backbone curve
}

// Len returns the number of points in the frame.
func (F *Frame) Len() int {
	return len(F.Types)
}

// Point returns the coordinates of the i-th point.
func (F *Frame) Point(i int) (x, y, z float32) {
	return F.Points[3*i], F.Points[3*i+1], F.Points[3*i+2]
}

func (F *Frame) add(x, y, z float64, typ uint32) {
	F.Points = append(F.Points, float32(x), float32(y), float32(z))
	F.Types = append(F.Types, typ)
}

// Builder builds the geometry of frames.
type Builder struct {
	PointsPerAtom int
}

// NewBuilder returns a Builder that samples the backbone curve PointsPerBackboneAtom times
// per backbone atom.
func NewBuilder() *Builder {
	return &Builder{PointsPerAtom: PointsPerBackboneAtom}
}

// Build returns the geometry of the frame frame for the selection sel, with the positions
// taken from pos. The backbone curve is drawn first, as segments of type 0, followed
// by two segments per bond: from the first atom to the middle of the bond, with the type
// of the first atom, and from the middle to the second atom, with the type of the second one.
func (B *Builder) Build(frame int, sel *Selection, pos Positioner) (*Frame, error) {
	if B.PointsPerAtom < 1 {
		return nil, chem.NewError(chem.KindFitting, "", fmt.Sprintf("Invalid number of points per backbone atom: %d", B.PointsPerAtom), "Build")
	}
	if len(sel.Backbone) < 2 {
		return nil, chem.NewError(chem.KindTopology, "", "Not enough backbone atoms in the selection", "Build")
	}
	ctrl := v3.Zeros(len(sel.Backbone))
	for i, at := range sel.Backbone {
		x, y, z, err := pos.PositionOf(at, frame)
		if err != nil {
			return nil, errDecorate(err, "Build")
		}
		ctrl.Set(i, 0, x)
		ctrl.Set(i, 1, y)
		ctrl.Set(i, 2, z)
	}
	trace, err := spline.Fit(ctrl, sel.CurvePoints(B.PointsPerAtom))
	if err != nil {
		return nil, errDecorate(err, "Build")
	}
	nv := sel.VertexCount(B.PointsPerAtom)
	F := &Frame{Index: frame, Points: make([]float32, 0, 3*nv), Types: make([]uint32, 0, nv), Trace: trace}
	for k := 0; k < trace.NVecs()-1; k++ {
		p0, p1 := trace.RawRowView(k), trace.RawRowView(k+1)
		F.add(p0[0], p0[1], p0[2], 0)
		F.add(p1[0], p1[1], p1[2], 0)
	}
	F.Backbone = F.Len()
	for _, b := range sel.Bonds {
		x0, y0, z0, err := pos.PositionOf(b.At1, frame)
		if err != nil {
			return nil, errDecorate(err, "Build")
		}
		x1, y1, z1, err := pos.PositionOf(b.At2, frame)
		if err != nil {
			return nil, errDecorate(err, "Build")
		}
		mx, my, mz := (x0+x1)*0.5, (y0+y1)*0.5, (z0+z1)*0.5
		t0, t1 := uint32(b.At1.Type), uint32(b.At2.Type)
		F.add(x0, y0, z0, t0)
		F.add(mx, my, mz, t0)
		F.add(mx, my, mz, t1)
		F.add(x1, y1, z1, t1)
	}
	if err := F.checkLen(nv); err != nil {
		return nil, errDecorate(err, "Build")
	}
	return F, nil
}

// checkLen returns an error unless the frame has nv points, each with its type.
func (F *Frame) checkLen(nv int) error {
	if F.Len() != nv || len(F.Points) != 3*nv {
		return chem.NewError(chem.KindFitting, "", fmt.Sprintf("%d vertices built, %d expected", F.Len(), nv), "checkLen")
	}
	return nil
}

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
