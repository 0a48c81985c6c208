/*
 * bonds.go, part of chemvtk.
 *
 * Copyright 2020 Raul Mera <rmera{at}usachDOTcl>
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

package chem

import (
	"fmt"
	"sort"

	v3 "github.com/rmera/chemvtk/v3"
)

//constants from DOI:10.1186/1758-2946-3-33
const (
	tooclose = 0.63
	bondtol  = 0.45
)

// Bond joins the atoms At1 (endpoint 0) and At2 (endpoint 1).
type Bond struct {
	Index int
	At1   *Atom
	At2   *Atom
	Dist  float64 //0 if the bond was not obtained from the coordinates
}

// Cross returns the atom bonded to origin by B.
func (B *Bond) Cross(origin *Atom) *Atom {
	if origin == B.At1 {
		return B.At2
	}
	if origin == B.At2 {
		return B.At1
	}
	panic("Trying to cross a bond: The origin atom given is not present in the bond!") //I think this got to be a programming error, so a panic is warranted.
}

// return a new *Bond slice with b removed
func takefromslice(bonds []*Bond, b *Bond) []*Bond {
	newb := make([]*Bond, 0, len(bonds))
	for _, v := range bonds {
		if v != b {
			newb = append(newb, v)
		}
	}
	return newb
}

// RemoveBond removes b from both of its atoms.
func RemoveBond(b *Bond) error {
	lenb1 := len(b.At1.Bonds)
	lenb2 := len(b.At2.Bonds)
	b.At1.Bonds = takefromslice(b.At1.Bonds, b)
	b.At2.Bonds = takefromslice(b.At2.Bonds, b)
	if len(b.At1.Bonds) == lenb1 || len(b.At2.Bonds) == lenb2 {
		return NewError(KindInput, "", fmt.Sprintf("Failed to remove bond %d between atoms %d and %d", b.Index, b.At1.Index(), b.At2.Index()), "RemoveBond")
	}
	return nil
}

// AssignBonds assigns bonds to a molecule based on a simple distance
// criterium, similar to that described in DOI:10.1186/1758-2946-3-33
// The bonds are set in the topology and returned, ordered by their first, and then
// their second, atom.
func AssignBonds(coord *v3.Matrix, mol *Topology) ([]*Bond, error) {
	// might get slow for
	//large systems. It's really not thought
	//for proteins or macromolecules.
	var at1, at2 *Atom
	mol.FillIndexes()
	mol.SetBonds(nil)
	if coord.NVecs() != mol.Len() {
		return nil, NewError(KindInput, "", fmt.Sprintf("%d coordinates for %d atoms", coord.NVecs(), mol.Len()), "AssignBonds")
	}
	bonds := make([]*Bond, 0, mol.Len())
	tot := mol.Len()
	for i := 0; i < tot; i++ {
		at1 = mol.Atom(i)
		cov1 := symbolCovrad[at1.Symbol]
		if cov1 == 0 {
			return nil, NewError(KindInput, "", fmt.Sprintf("Couldn't find the covalent radii  for %s %d", at1.Symbol, i), "AssignBonds")
		}
		for j := i + 1; j < tot; j++ {
			at2 = mol.Atom(j)
			cov2 := symbolCovrad[at2.Symbol]
			if cov2 == 0 {
				return nil, NewError(KindInput, "", fmt.Sprintf("Couldn't find the covalent radii  for %s %d", at2.Symbol, j), "AssignBonds")
			}
			d := coord.Dist(i, j)
			if d < cov1+cov2+bondtol && d > tooclose {
				b := &Bond{Index: len(bonds), Dist: d, At1: at1, At2: at2}
				at1.Bonds = append(at1.Bonds, b)
				at2.Bonds = append(at2.Bonds, b)
				bonds = append(bonds, b) //just to easily keep track of them.
			}
		}
	}

	//Now we check that no atom has too many bonds.
	removed := make(map[*Bond]bool)
	for i := 0; i < tot; i++ {
		at := mol.Atom(i)
		max := symbolMaxBonds[at.Symbol]
		if max == 0 { //means there is not a specified number of bonds for this atom.
			continue
		}
		sort.SliceStable(at.Bonds, func(i, j int) bool { return at.Bonds[i].Dist < at.Bonds[j].Dist })
		for len(at.Bonds) > max {
			longest := at.Bonds[len(at.Bonds)-1]
			if err := RemoveBond(longest); err != nil {
				return nil, errDecorate(err, "AssignBonds")
			}
			removed[longest] = true
		}
	}
	kept := make([]*Bond, 0, len(bonds))
	for _, b := range bonds {
		if !removed[b] {
			kept = append(kept, b)
		}
	}
	mol.SetBonds(kept)
	return kept, nil
}
