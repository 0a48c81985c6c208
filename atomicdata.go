/*
 * atomicdata.go, part of chemvtk.
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

package chem

import "strings"

// A map for assigning the element type code (the atomic number) to elements.
// Note that just common "bio-elements" are present
var symbolAtomicNumber = map[string]int{
	"H":  1,
	"Be": 4,
	"C":  6,
	"N":  7,
	"O":  8,
	"F":  9,
	"Na": 11,
	"Mg": 12,
	"Si": 14,
	"P":  15,
	"S":  16,
	"Cl": 17,
	"K":  19,
	"Ca": 20,
	"Cr": 24,
	"Mn": 25,
	"Fe": 26,
	"Co": 27,
	"Cu": 29,
	"Zn": 30,
	"Se": 34,
	"Br": 35,
	"I":  53,
}

//A map for assigning covalent radii to elements
//Values from Cordero et al., 2008 (DOI:10.1039/B801115J)
//Note that just common "bio-elements" are present
var symbolCovrad = map[string]float64{
	"H":  0.4,  // 0.31 I altered this one. Since H always has only one bond, it doesn't matter if I set a longer radius, the extra bonds will get eliminated later.
	"C":  0.76, //the sp3 radius
	"O":  0.66,
	"N":  0.71,
	"P":  1.07,
	"S":  1.05,
	"Se": 1.2,
	"K":  2.03,
	"Ca": 1.76,
	"Mg": 1.41,
	"Cl": 1.02,
	"Na": 1.66,
	"Cu": 1.32,
	"Zn": 1.22,
	"Co": 1.5,  // hs
	"Fe": 1.52, //hs
	"Mn": 1.61, //hs
	"Cr": 1.39,
	"Si": 1.11,
	"Be": 0.96,
	"F":  0.57,
	"Br": 1.2,
	"I":  1.39,
}

//A map for checking that atoms don't
//have too many bonds. A value of 0 means
//undefined, i.e. that this atom shouldn't
//be checked for max bonds.
var symbolMaxBonds = map[string]int{
	"H":  1, //this is the only one truly important.
	"C":  4,
	"O":  2,
	"F":  1,
	"Br": 1,
	"I":  1,
}

// A map between 3-letters name for aminoacidic residues to the corresponding 1-letter names.
// Protonation variants and modified residues common in simulations are included.
var three2OneLetter = map[string]byte{
	"SER": 'S',
	"THR": 'T',
	"ASN": 'N',
	"GLN": 'Q',
	"SEC": 'U', //Selenocysteine!
	"CYS": 'C',
	"CYX": 'C',
	"GLY": 'G',
	"PRO": 'P',
	"ALA": 'A',
	"VAL": 'V',
	"ILE": 'I',
	"LEU": 'L',
	"MET": 'M',
	"MSE": 'M',
	"PHE": 'F',
	"TYR": 'Y',
	"TRP": 'W',
	"ARG": 'R',
	"HIS": 'H',
	"HID": 'H',
	"HIE": 'H',
	"HIP": 'H',
	"LYS": 'K',
	"ASP": 'D',
	"GLU": 'E',
}

// Standard nucleotides, with the one letter code.
var nucleotides = map[string]byte{
	"A":  'A',
	"C":  'C',
	"G":  'G',
	"U":  'U',
	"I":  'I',
	"DA": 'A',
	"DC": 'C',
	"DG": 'G',
	"DT": 'T',
	"DI": 'I',
}

var aminoBackbone = map[string]bool{"N": true, "CA": true, "C": true, "O": true, "OXT": true}

var nucleotideBackbone = map[string]bool{"P": true, "OP1": true, "OP2": true, "O1P": true, "O2P": true,
	"O5'": true, "C5'": true, "C4'": true, "C3'": true, "O3'": true}

// AtomicNumber returns the element type code for the given symbol, or 0
// if the symbol is unknown. The symbol is case-insensitive ("CL" and "Cl" are the same).
func AtomicNumber(symbol string) int {
	return symbolAtomicNumber[normalizeSymbol(symbol)]
}

// normalizeSymbol turns "CL" or "cl" into "Cl".
func normalizeSymbol(symbol string) string {
	symbol = strings.TrimSpace(symbol)
	if len(symbol) == 0 {
		return symbol
	}
	return strings.ToUpper(symbol[:1]) + strings.ToLower(symbol[1:])
}

// IsPDBBackboneAtom returns true if at is part of the main chain of a standard
// aminoacidic or nucleotidic residue, judging by its residue and atom names.
func IsPDBBackboneAtom(at *Atom) bool {
	if at.Het && at.MolName != "MSE" {
		return false
	}
	if _, ok := three2OneLetter[at.MolName]; ok {
		return aminoBackbone[at.Name]
	}
	if _, ok := nucleotides[at.MolName]; ok {
		return nucleotideBackbone[at.Name]
	}
	return false
}
