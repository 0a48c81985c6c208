/*
 * pdb.go, part of chemvtk.
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
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	v3 "github.com/rmera/chemvtk/v3"
)

//PDBRead family

// This tries to guess a chemical element symbol from a PDB atom name. Mostly based on AMBER names.
// It only deals with some common bio-elements.
func symbolFromName(name string) (string, error) {
	symbol := ""
	if len(name) == 0 {
		return symbol, fmt.Errorf("Couldn't guess symbol from empty PDB name")
	}
	if len(name) == 4 || name[0] == 'H' { //I thiiink only Hs can have 4-char names in amber.
		symbol = "H"
	} else if name[0] == 'C' { //Ca is not considered here
		switch name {
		case "CU":
			symbol = "Cu"
		case "CO":
			symbol = "Co"
		case "CL":
			symbol = "Cl"
		default:
			symbol = "C"
		}
	} else if name[0] == 'N' {
		if name == "NA" {
			symbol = "Na"
		} else {
			symbol = "N"
		}
	} else if name[0] == 'O' {
		symbol = "O"
	} else if name[0] == 'P' {
		symbol = "P"
	} else if name[0] == 'S' {
		if name == "SE" {
			symbol = "Se"
		} else {
			symbol = "S"
		}
	} else if strings.HasPrefix(name, "ZN") {
		symbol = "Zn"
	}
	if symbol == "" {
		return symbol, fmt.Errorf("Couldn't guess symbol from PDB name %s", name)
	}
	return symbol, nil
}

// read_full_pdb_line parses a valid ATOM or HETATM line of a PDB file, returns an Atom
// object with the info except for the coordinates, which are returned
// separately.
func read_full_pdb_line(line string, contlines int) (*Atom, [3]float64, error) {
	var coords [3]float64
	atom := new(Atom)
	atom.Het = strings.HasPrefix(line, "HETATM")
	var err error
	atom.ID, err = strconv.Atoi(strings.TrimSpace(line[6:11]))
	if err != nil {
		return nil, coords, fmt.Errorf("line %d: can't read atom serial: %s", contlines, err.Error())
	}
	atom.Name = strings.TrimSpace(line[12:16])
	//PDB says that pos. 17 is for other thing but I see that is
	//used for residue name in many cases
	atom.MolName = strings.TrimSpace(line[17:20])
	atom.MolName1 = three2OneLetter[atom.MolName]
	atom.Chain = string(line[21])
	atom.MolID, err = strconv.Atoi(strings.TrimSpace(line[22:26]))
	if err != nil {
		return nil, coords, fmt.Errorf("line %d: can't read residue number: %s", contlines, err.Error())
	}
	if coords, err = read_onlycoords_pdb_line(line, contlines); err != nil {
		return nil, coords, err
	}
	//we try to read the element column if it is there
	if len(line) >= 78 {
		atom.Symbol = normalizeSymbol(line[76:78])
	}
	//This part tries to guess the symbol from the atom name, if it has not been read
	//No error checking here, just fills symbol with the empty string the function returns
	if len(atom.Symbol) == 0 {
		atom.Symbol, _ = symbolFromName(atom.Name)
	}
	atom.Type = symbolAtomicNumber[atom.Symbol]
	atom.Backbone = IsPDBBackboneAtom(atom)
	return atom, coords, nil
}

// read_onlycoords_pdb_line parses a PDB line if only the coordinates are to be read.
func read_onlycoords_pdb_line(line string, contlines int) ([3]float64, error) {
	var coords [3]float64
	var err error
	for i := 0; i < 3; i++ {
		field := line[30+8*i : 38+8*i]
		coords[i], err = strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return coords, fmt.Errorf("line %d: can't read coordinate %d: %s", contlines, i, err.Error())
		}
	}
	return coords, nil
}

// read_conect_line returns the serials in a CONECT record. The first one is the atom
// the record belongs to, the others are bonded to it.
func read_conect_line(line string, contlines int) ([]int, error) {
	line = strings.TrimRight(line, " \r\n")
	serials := make([]int, 0, 5)
	//Fixed columns, 5 characters each, starting at column 7.
	for start := 6; start < len(line) && start < 31; start += 5 {
		end := start + 5
		if end > len(line) {
			end = len(line)
		}
		field := strings.TrimSpace(line[start:end])
		if field == "" {
			continue
		}
		s, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("line %d: ill formed CONECT record: %s", contlines, err.Error())
		}
		serials = append(serials, s)
	}
	if len(serials) < 2 {
		return nil, nil
	}
	return serials, nil
}

// PDBRead reads the atomic entries for a PDB file from an io.Reader. Returns a Molecule
// with one conformer per MODEL in the file (1 if there are no MODEL records).
// The atom information is taken from the first model only. Bonds are read from the
// CONECT records, in order of appearance, each bond only once. If there are no CONECT records
// the molecule is returned without bonds.
func PDBRead(pdb io.Reader) (*Molecule, error) {
	mol, err := pdbBufIORead(bufio.NewReader(pdb))
	return mol, errDecorate(err, "PDBRead")
}

// PDBFileRead reads a PDB file. Files ending in .gz or .zst are decompressed.
func PDBFileRead(pdbname string) (*Molecule, error) {
	pdbfile, err := OpenFile(pdbname)
	if err != nil {
		return nil, errDecorate(err, "PDBFileRead")
	}
	defer pdbfile.Close()
	mol, err := pdbBufIORead(bufio.NewReader(pdbfile))
	if err != nil {
		if e, ok := err.(*CError); ok && e.filename == "" {
			e.filename = pdbname
		}
		return nil, errDecorate(err, "PDBFileRead")
	}
	return mol, nil
}

func pdbBufIORead(pdb *bufio.Reader) (*Molecule, error) {
	var molecule []*Atom
	frames := make([][]float64, 0, 1)
	var current []float64
	var conects [][]int
	serials := make(map[int]*Atom)
	first_model := true //are we reading the first model? if not we only save coordinates
	inModel := false
	contlines := 0 //count the lines read to better report errors
	closeModel := func() error {
		if current == nil {
			return nil
		}
		if !first_model && len(current) != 3*len(molecule) {
			return NewError(KindInput, "", fmt.Sprintf("Model %d has %d atoms, expected %d", len(frames)+1, len(current)/3, len(molecule)), "pdbBufIORead")
		}
		frames = append(frames, current)
		current = nil
		first_model = false
		return nil
	}
	for {
		line, err := pdb.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, WrapError(KindInput, "", err, "pdbBufIORead")
		}
		contlines++
		if strings.HasPrefix(line, "ATOM") || strings.HasPrefix(line, "HETATM") {
			if len(line) < 54 {
				return nil, NewError(KindInput, "", fmt.Sprintf("line %d: ATOM/HETATM record too short", contlines), "pdbBufIORead")
			}
			if first_model {
				atom, c, err2 := read_full_pdb_line(line, contlines)
				if err2 != nil {
					return nil, WrapError(KindInput, "", err2, "pdbBufIORead")
				}
				//atom data other than coords is the same in all models so just read for the first.
				molecule = append(molecule, atom)
				if _, ok := serials[atom.ID]; !ok {
					serials[atom.ID] = atom
				}
				current = append(current, c[0], c[1], c[2])
			} else {
				c, err2 := read_onlycoords_pdb_line(line, contlines)
				if err2 != nil {
					return nil, WrapError(KindInput, "", err2, "pdbBufIORead")
				}
				current = append(current, c[0], c[1], c[2])
			}
		} else if strings.HasPrefix(line, "MODEL") {
			if inModel {
				if err2 := closeModel(); err2 != nil {
					return nil, err2
				}
			}
			inModel = true
		} else if strings.HasPrefix(line, "ENDMDL") {
			if err2 := closeModel(); err2 != nil {
				return nil, err2
			}
			inModel = false
		} else if strings.HasPrefix(line, "CONECT") {
			c, err2 := read_conect_line(line, contlines)
			if err2 != nil {
				return nil, WrapError(KindInput, "", err2, "pdbBufIORead")
			}
			if c != nil {
				conects = append(conects, c)
			}
		}
		if err == io.EOF {
			break
		}
	}
	if err := closeModel(); err != nil {
		return nil, err
	}
	if len(molecule) == 0 {
		return nil, NewError(KindInput, "", "No atoms found in PDB", "pdbBufIORead")
	}
	coords := make([]*v3.Matrix, 0, len(frames))
	for _, f := range frames {
		c, err := v3.NewMatrix(f)
		if err != nil {
			return nil, WrapError(KindInput, "", err, "pdbBufIORead")
		}
		coords = append(coords, c)
	}
	top := NewTopology(molecule)
	bonds, err := conectBonds(conects, serials)
	if err != nil {
		return nil, err
	}
	top.SetBonds(bonds)
	return NewMolecule(top, coords)
}

// conectBonds builds the bonds described by the CONECT records, in order of appearance.
// Each pair of atoms gives only one bond, even if it appears in the records of both atoms.
func conectBonds(conects [][]int, serials map[int]*Atom) ([]*Bond, error) {
	type pair [2]int
	seen := make(map[pair]bool)
	var bonds []*Bond
	for _, c := range conects {
		at1, ok := serials[c[0]]
		if !ok {
			return nil, NewError(KindInput, "", fmt.Sprintf("CONECT record for unknown atom %d", c[0]), "conectBonds")
		}
		for _, s := range c[1:] {
			at2, ok := serials[s]
			if !ok {
				return nil, NewError(KindInput, "", fmt.Sprintf("CONECT record with unknown atom %d", s), "conectBonds")
			}
			if at1 == at2 {
				continue
			}
			p := pair{at1.Index(), at2.Index()}
			if p[0] > p[1] {
				p[0], p[1] = p[1], p[0]
			}
			if seen[p] {
				continue
			}
			seen[p] = true
			bonds = append(bonds, &Bond{At1: at1, At2: at2})
		}
	}
	return bonds, nil
}

//End PDBRead family
