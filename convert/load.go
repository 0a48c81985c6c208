/*
 * load.go, part of chemvtk.
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

package convert

import (
	"fmt"
	"strings"

	chem "github.com/rmera/chemvtk"
	"github.com/rmera/chemvtk/traj/dcd"
	"github.com/rmera/chemvtk/traj/stf"
)

// trajectory is what the loaders need from a trajectory reader.
type trajectory interface {
	chem.Traj
	Close()
}

// Load reads the molecule in the file input. PDB files (.pdb, .ent, optionally
// gzip- or zstd-compressed) contain their own topology, one conformer per model.
// STF (.stf, .stz, .stl, .str) and DCD (.dcd) trajectories take the topology from the
// PDB file cfg.Topology. If the topology has no CONECT records, bonds are assigned from
// the covalent radii in its first frame.
func Load(input string, cfg Config) (*chem.Molecule, error) {
	ext := chem.Ext(input)
	switch ext {
	case "pdb", "ent":
		mol, err := readTopology(input)
		if err != nil {
			return nil, errDecorate(err, "Load")
		}
		return mol, nil
	case "stf", "stz", "stl", "str", "dcd":
	default:
		return nil, chem.NewError(chem.KindInput, input, fmt.Sprintf("Unknown input format '%s'", ext), "Load")
	}
	if lower := strings.ToLower(input); strings.HasSuffix(lower, ".gz") || strings.HasSuffix(lower, ".zst") {
		return nil, chem.NewError(chem.KindInput, input, "Compressed "+ext+" trajectories are not supported", "Load")
	}
	if cfg.Topology == "" {
		return nil, chem.NewError(chem.KindInput, input, "A topology file is needed to read "+ext+" trajectories", "Load")
	}
	mol, err := readTopology(cfg.Topology)
	if err != nil {
		return nil, errDecorate(err, "Load")
	}
	var traj trajectory
	if ext == "dcd" {
		traj, err = dcd.New(input)
	} else {
		traj, _, err = stf.New(input)
	}
	if err != nil {
		return nil, errDecorate(err, "Load")
	}
	defer traj.Close()
	mol.Coords = nil
	if _, err = mol.ReadFrames(traj); err != nil {
		if e, ok := err.(*chem.CError); ok && e.FileName() == "" {
			err = chem.WrapError(chem.KindInput, input, e)
		}
		return nil, errDecorate(err, "Load")
	}
	return mol, nil
}

// readTopology reads a PDB file and makes sure the molecule has bonds.
func readTopology(name string) (*chem.Molecule, error) {
	mol, err := chem.PDBFileRead(name)
	if err != nil {
		return nil, errDecorate(err, "readTopology")
	}
	if len(mol.Bonds) == 0 && mol.LenFrames() > 0 {
		if _, err = chem.AssignBonds(mol.Coords[0], mol.Topology); err != nil {
			return nil, chem.WrapError(chem.KindInput, name, err, "readTopology")
		}
	}
	return mol, nil
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
