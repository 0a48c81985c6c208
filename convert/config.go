/*
 * config.go, part of chemvtk.
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
	"os"

	chem "github.com/rmera/chemvtk"
	"github.com/rmera/chemvtk/linegeom"
	"github.com/rmera/chemvtk/vtk"
	"gopkg.in/yaml.v3"
)

// Config contains the options of a conversion. It can be read from a YAML file.
type Config struct {
	PointsPerAtom int    `yaml:"points_per_atom"` // curve samples per backbone atom
	Format        string `yaml:"format"`          // appended, binary or ascii
	Compress      bool   `yaml:"compress"`        // zlib-compressed VTU data
	Topology      string `yaml:"topology"`        // PDB file with the topology, for STF and DCD inputs
	First         int    `yaml:"first"`           // first frame to write
	Last          int    `yaml:"last"`            // last frame to write, -1 for the last one in the input
	Stride        int    `yaml:"stride"`
	Plot          string `yaml:"plot"` // if not empty, the backbone trace plot is saved here
}

// DefaultConfig returns the configuration used when no other is given.
func DefaultConfig() Config {
	return Config{
		PointsPerAtom: linegeom.PointsPerBackboneAtom,
		Format:        vtk.Appended.String(),
		Last:          -1,
		Stride:        1,
	}
}

// LoadConfig reads the YAML file path. Keys absent from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return config, chem.WrapError(chem.KindInput, path, err, "os.ReadFile", "LoadConfig")
	}
	if err = yaml.Unmarshal(data, &config); err != nil {
		return config, chem.WrapError(chem.KindInput, path, err, "yaml.Unmarshal", "LoadConfig")
	}
	if err = config.Validate(); err != nil {
		if e, ok := err.(*chem.CError); ok {
			e.Decorate("LoadConfig")
		}
		return config, err
	}
	return config, nil
}

// Validate returns an error if any option has an invalid value.
func (C Config) Validate() error {
	var msg string
	switch {
	case C.PointsPerAtom < 1:
		msg = fmt.Sprintf("points per atom must be positive, not %d", C.PointsPerAtom)
	case C.Stride < 1:
		msg = fmt.Sprintf("stride must be positive, not %d", C.Stride)
	case C.First < 0:
		msg = fmt.Sprintf("first frame can't be negative (%d)", C.First)
	case C.Last >= 0 && C.Last < C.First:
		msg = fmt.Sprintf("last frame (%d) before the first one (%d)", C.Last, C.First)
	}
	if msg == "" {
		if _, err := vtk.ParseEncoding(C.Format); err != nil {
			msg = err.Error()
		}
	}
	if msg != "" {
		return chem.NewError(chem.KindInput, "", "Invalid configuration: "+msg, "Validate")
	}
	return nil
}

// WriteOptions returns the options for the VTU writer.
func (C Config) WriteOptions() (vtk.WriteOptions, error) {
	enc, err := vtk.ParseEncoding(C.Format)
	if err != nil {
		return vtk.WriteOptions{}, chem.WrapError(chem.KindInput, "", err, "WriteOptions")
	}
	return vtk.WriteOptions{Encoding: enc, Compress: C.Compress}, nil
}

// frames returns the indexes of the frames to be written, out of n.
func (C Config) frames(n int) []int {
	last := C.Last
	if last < 0 || last >= n {
		last = n - 1
	}
	var ret []int
	for i := C.First; i <= last; i += C.Stride {
		ret = append(ret, i)
	}
	return ret
}
