/*
 * select.go, part of chemvtk.
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

// Package linegeom builds the line geometry for each frame of a trajectory: a smooth
// curve through the backbone, and each bond drawn as two half segments, each with the
// type of the atom it starts or ends at.
package linegeom

import (
	"fmt"

	chem "github.com/rmera/chemvtk"
)

// PointsPerBackboneAtom is the default number of curve samples per backbone atom.
const PointsPerBackboneAtom = 10

const (
	waterResidue = "HOH"
	hydrogenType = 1
	traceAtom    = "C"
)

// Selection contains the atoms that define the backbone curve and the bonds that are drawn,
// both in the order they have in the molecule.
type Selection struct {
	Backbone []*chem.Atom
	Bonds    []*chem.Bond
}

// IsTraceAtom returns true if at is one of the control points of the backbone curve: a backbone
// atom named "C".
func IsTraceAtom(at *chem.Atom) bool {
	return at.Backbone && at.Name == traceAtom
}

// IsRenderedBond returns false for bonds where either atom is a hydrogen, or belongs
// to a water molecule.
func IsRenderedBond(b *chem.Bond) bool {
	for _, at := range []*chem.Atom{b.At1, b.At2} {
		if at.MolName == waterResidue || at.Type == hydrogenType {
			return false
		}
	}
	return true
}

// SelectTopology returns the backbone atoms and the bonds to be drawn for mol.
// It returns an error of kind chem.KindTopology if there are less than 2 backbone atoms.
func SelectTopology(mol chem.Atomer, bonds []*chem.Bond) (*Selection, error) {
	sel := new(Selection)
	for i := 0; i < mol.Len(); i++ {
		at := mol.Atom(i)
		if IsTraceAtom(at) {
			sel.Backbone = append(sel.Backbone, at)
		}
	}
	if len(sel.Backbone) < 2 {
		return nil, chem.NewError(chem.KindTopology, "", fmt.Sprintf("%d backbone atoms found, at least 2 are needed", len(sel.Backbone)), "SelectTopology")
	}
	sel.Bonds = make([]*chem.Bond, 0, len(bonds))
	for _, b := range bonds {
		if IsRenderedBond(b) {
			sel.Bonds = append(sel.Bonds, b)
		}
	}
	return sel, nil
}

// CurvePoints returns the number of samples of the backbone curve for ppa points per
// backbone atom.
func (S *Selection) CurvePoints(ppa int) int {
	return len(S.Backbone) * ppa
}

// VertexCount returns the number of vertices in each frame: two per curve segment and four per bond.
func (S *Selection) VertexCount(ppa int) int {
	return 2*(S.CurvePoints(ppa)-1) + 4*len(S.Bonds)
}
