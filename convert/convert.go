/*
 * convert.go, part of chemvtk.
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
	"log"
	"path/filepath"

	chem "github.com/rmera/chemvtk"
	"github.com/rmera/chemvtk/chemplot"
	"github.com/rmera/chemvtk/linegeom"
	"github.com/rmera/chemvtk/vtk"
)

// State is the stage a Converter has reached.
type State int

const (
	Init State = iota
	TopologySelected
	FrameBuilt
	FrameWritten
	ManifestClosed
	Done
)

func (s State) String() string {
	switch s {
	case Init:
		return "Init"
	case TopologySelected:
		return "TopologySelected"
	case FrameBuilt:
		return "FrameBuilt"
	case FrameWritten:
		return "FrameWritten"
	case ManifestClosed:
		return "ManifestClosed"
	case Done:
		return "Done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Summary describes a finished conversion.
type Summary struct {
	Manifest         string
	Files            []string //the geometry files, in the order written
	Frames           []int    //the frame written to each file
	VerticesPerFrame int
	Trace            *chemplot.TraceReport
}

// Converter turns a molecule with several conformers into a series of VTU files
// and the PVD manifest that sequences them.
type Converter struct {
	Config Config
	Log    *log.Logger //progress messages. Nil means silent.
	state  State
}

// New returns a Converter with the configuration cfg that logs to logger, which can be nil.
func New(cfg Config, logger *log.Logger) *Converter {
	return &Converter{Config: cfg, Log: logger}
}

// State returns the last stage reached by the converter.
func (C *Converter) State() State {
	return C.state
}

func (C *Converter) logf(format string, v ...interface{}) {
	if C.Log != nil {
		C.Log.Printf(format, v...)
	}
}

// Run loads the molecule in the file input and writes its conformers to outdir, which must exist.
// The output files are named after input without its extensions.
func (C *Converter) Run(input, outdir string) (*Summary, error) {
	C.state = Init
	if err := C.Config.Validate(); err != nil {
		return nil, errDecorate(err, "Run")
	}
	C.logf("- Processing input file: %s ...", input)
	mol, err := Load(input, C.Config)
	if err != nil {
		if chem.KindOf(err) == chem.KindUnknown {
			err = chem.WrapError(chem.KindInput, input, err)
		}
		return nil, errDecorate(err, "Run")
	}
	sum, err := C.Convert(mol, chem.BaseName(input), outdir)
	return sum, errDecorate(err, "Run")
}

// Convert writes the conformers of mol selected by the configuration to outdir, one file per frame
// named base_frame_no_<i>.vtu, and the manifest base.pvd. Nothing is written if mol has no usable backbone.
// On an error after the first file is written, the files already written stay in outdir, and
// the manifest is left without its closing tags.
func (C *Converter) Convert(mol *chem.Molecule, base, outdir string) (*Summary, error) {
	C.state = Init
	if err := C.Config.Validate(); err != nil {
		return nil, errDecorate(err, "Convert")
	}
	opts, err := C.Config.WriteOptions()
	if err != nil {
		return nil, errDecorate(err, "Convert")
	}
	sel, err := linegeom.SelectTopology(mol, mol.Bonds)
	if err != nil {
		return nil, errDecorate(err, "Convert")
	}
	C.state = TopologySelected
	nframes := mol.LenFrames()
	if nframes > 0 && C.Config.First >= nframes {
		return nil, chem.NewError(chem.KindInput, "", fmt.Sprintf("First frame requested (%d) out of range (%d frames)", C.Config.First, nframes), "Convert")
	}
	sum := &Summary{
		Manifest:         filepath.Join(outdir, base+".pvd"),
		VerticesPerFrame: sel.VertexCount(C.Config.PointsPerAtom),
		Trace:            chemplot.NewTraceReport(),
	}
	M, err := vtk.CreateManifest(sum.Manifest)
	if err != nil {
		return nil, errDecorate(err, "Convert")
	}
	defer M.Release()
	builder := &linegeom.Builder{PointsPerAtom: C.Config.PointsPerAtom}
	for _, i := range C.Config.frames(nframes) {
		F, err := builder.Build(i, sel, mol)
		if err != nil {
			return sum, errDecorate(err, "Convert")
		}
		C.state = FrameBuilt
		C.logf("- Writing structure data for frame %d ...", i)
		name := fmt.Sprintf("%s_frame_no_%d", base, i)
		written, err := vtk.WriteLines(filepath.Join(outdir, name), F, opts)
		if err != nil {
			return sum, errDecorate(err, "Convert")
		}
		if err = M.Add(i, filepath.Base(written)); err != nil {
			return sum, errDecorate(err, "Convert")
		}
		C.state = FrameWritten
		sum.Files = append(sum.Files, written)
		sum.Frames = append(sum.Frames, i)
		if err = sum.Trace.Add(i, F.Trace); err != nil {
			return sum, errDecorate(err, "Convert")
		}
	}
	if err = M.Close(); err != nil {
		return sum, errDecorate(err, "Convert")
	}
	C.state = ManifestClosed
	if sum.Trace.Len() > 0 {
		C.logf("- Backbone trace: %s", sum.Trace)
	}
	if C.Config.Plot != "" && sum.Trace.Len() > 0 {
		if err = sum.Trace.Plot(C.Config.Plot); err != nil {
			return sum, errDecorate(err, "Convert")
		}
	}
	C.state = Done
	return sum, nil
}
