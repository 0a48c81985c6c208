/*
 * chem.go, part of chemvtk.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package chem

import (
	"errors"
	"fmt"

	v3 "github.com/rmera/chemvtk/v3"
)

/**Note: Some funcitons here panic instead of returning errors. This is because they are "fundamental"
 * functions. If something goes wrong here, the program is most likely wrong and should
 * crash. Most panics are related to using the funciton on a nil object or trying to access out-of bounds
 * fields**/

// Atom contains the atoms read except for the coordinates, which will be in a matrix.
type Atom struct {
	Name     string //the residue-specific name, i.e. "CA" or "OG1"
	ID       int    //the serial number in the input file
	index    int
	MolName  string //the residue code, i.e. "ALA" or "HOH"
	MolName1 byte   //the one letter name for residues and nucleotids
	MolID    int
	Chain    string
	Symbol   string
	Type     int  //element type code, the atomic number. 0 means unknown.
	Het      bool // is hetatm in the pdb file?
	Backbone bool // is a standard backbone atom?
	Bonds    []*Bond
}

// Index returns the position of the atom in its topology.
func (A *Atom) Index() int {
	return A.index
}

// String returns a short description of the atom, i.e. "ALA12/CA"
func (A *Atom) String() string {
	return fmt.Sprintf("%s%d/%s", A.MolName, A.MolID, A.Name)
}

/*****Topology type***/

// Topology contains information about a molecule which is not expected to change in time (i.e. everything except for coordinates)
type Topology struct {
	Atoms []*Atom
	Bonds []*Bond
}

// NewTopology returns a topology with the given atoms and no bonds.
// It sets the index of each atom to its position in ats.
func NewTopology(ats []*Atom) *Topology {
	top := &Topology{Atoms: ats}
	top.FillIndexes()
	return top
}

// FillIndexes sets the index of each atom to its position in the Atoms slice.
func (T *Topology) FillIndexes() {
	for i, v := range T.Atoms {
		v.index = i
	}
}

// Atom returns the Atom corresponding to the index i
// of the Atom slice in the Topology. Panics if
// out of range.
func (T *Topology) Atom(i int) *Atom {
	if i >= T.Len() || i < 0 {
		panic("Topology: Requested Atom out of bounds")
	}
	return T.Atoms[i]
}

// Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.Atoms)
}

// SetBonds replaces the bonds of the topology, and of each atom, by the ones in bonds.
// Bond indexes are set to their position in the slice.
func (T *Topology) SetBonds(bonds []*Bond) {
	for _, at := range T.Atoms {
		at.Bonds = nil
	}
	for i, b := range bonds {
		b.Index = i
		b.At1.Bonds = append(b.At1.Bonds, b)
		b.At2.Bonds = append(b.At2.Bonds, b)
	}
	T.Bonds = bonds
}

/**Type Molecule**/

// Molecule contains all the info for a molecule in many states. The info that is expected to change between states,
// the coordinates, is stored separately from other atomic info, one matrix per conformer.
type Molecule struct {
	*Topology
	Coords []*v3.Matrix
}

// NewMolecule makes a molecule with the topology top and the conformers in coords
// It returns an error if the number of coordinates in any conformer doesn't match
// the number of atoms.
func NewMolecule(top *Topology, coords []*v3.Matrix) (*Molecule, error) {
	if top == nil {
		return nil, NewError(KindInput, "", "Supplied a nil Topology", "NewMolecule")
	}
	mol := &Molecule{Topology: top, Coords: coords}
	if err := mol.Corrupted(); err != nil {
		return nil, errDecorate(err, "NewMolecule")
	}
	return mol, nil
}

// AddFrame appends newframe at the end of the Coords.
// It checks that the number of coordinates matches the number of atoms.
func (M *Molecule) AddFrame(newframe *v3.Matrix) error {
	if newframe == nil {
		return NewError(KindInput, "", "Attempted to add nil frame", "AddFrame")
	}
	if M.Len() != newframe.NVecs() {
		return NewError(KindInput, "", fmt.Sprintf("Wrong number of coordinates (%d) for %d atoms", newframe.NVecs(), M.Len()), "AddFrame")
	}
	M.Coords = append(M.Coords, newframe)
	return nil
}

// ReadFrames reads every remaining frame of traj and appends them to the molecule.
// It returns the number of frames read.
func (M *Molecule) ReadFrames(traj Traj) (int, error) {
	if traj.Len() != M.Len() {
		return 0, NewError(KindInput, "", fmt.Sprintf("Mismatched number of atoms: trajectory %d, topology %d", traj.Len(), M.Len()), "ReadFrames")
	}
	var read int
	for {
		coords := v3.Zeros(M.Len())
		err := traj.Next(coords)
		if err != nil {
			var last LastFrameError
			if errors.As(err, &last) {
				break
			}
			return read, errDecorate(err, "ReadFrames")
		}
		if err = M.AddFrame(coords); err != nil {
			return read, errDecorate(err, "ReadFrames")
		}
		read++
	}
	return read, nil
}

// PositionOf returns the cartesian coordinates of at in the conformer frame.
// at must belong to the topology of the molecule.
func (M *Molecule) PositionOf(at *Atom, frame int) (x, y, z float64, err error) {
	if frame >= len(M.Coords) || frame < 0 {
		return 0, 0, 0, NewError(KindInput, "", fmt.Sprintf("Frame requested (%d) out of range (%d frames)", frame, len(M.Coords)), "PositionOf")
	}
	i := at.Index()
	if i >= M.Len() || M.Atoms[i] != at {
		return 0, 0, 0, NewError(KindInput, "", fmt.Sprintf("Atom %s is not part of the molecule", at), "PositionOf")
	}
	r := M.Coords[frame].RawRowView(i)
	return r[0], r[1], r[2], nil
}

// Corrupted checks whether the molecule is corrupted, i.e. the
// coordinates don't match the number of atoms in some frame.
func (M *Molecule) Corrupted() error {
	for i, c := range M.Coords {
		if c == nil {
			return NewError(KindInput, "", fmt.Sprintf("Frame %d has no coordinates", i), "Corrupted")
		}
		if r, cols := c.Dims(); M.Len() != r || cols != 3 {
			return NewError(KindInput, "", fmt.Sprintf("Inconsistent coordinates/atoms in frame %d: Atoms %d, coords: %d", i, M.Len(), r), "Corrupted")
		}
	}
	return nil
}

// LenFrames returns the number of frames in the molecule
func (M *Molecule) LenFrames() int {
	return len(M.Coords)
}
