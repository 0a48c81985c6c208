/*
 * main.go, part of chemvtk.
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

// traj2vtk writes each conformer of a molecule or trajectory as a VTU file with the
// backbone curve and the bonds of the molecule, plus a PVD file to play them in ParaView.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path"

	chem "github.com/rmera/chemvtk"
	"github.com/rmera/chemvtk/convert"
)

const (
	exitSuccess = 0
	exitFailure = 2
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage:", path.Base(os.Args[0]), "[flags] input-trajectory-file output-directory")
	flag.PrintDefaults()
}

func fatal(err error) int {
	fmt.Fprintf(os.Stderr, "%s: %s error: %v\n", path.Base(os.Args[0]), chem.KindOf(err), err)
	return exitFailure
}

func mymain() int {
	def := convert.DefaultConfig()
	top := flag.String("top", "", "PDB file with the topology, for STF and DCD trajectories")
	configFile := flag.String("config", "", "YAML configuration file. Explicit flags override its values")
	ppa := flag.Int("ppa", def.PointsPerAtom, "points of the backbone curve per backbone atom")
	format := flag.String("format", def.Format, "encoding of the VTU data: appended, binary or ascii")
	compress := flag.Bool("compress", def.Compress, "compress the VTU data with zlib")
	first := flag.Int("first", def.First, "first frame to write")
	last := flag.Int("last", def.Last, "last frame to write, -1 for the last in the input")
	stride := flag.Int("stride", def.Stride, "write one of each stride frames")
	plot := flag.String("plot", "", "save a plot of the backbone contour length per frame to this PNG file")
	quiet := flag.Bool("q", false, "don't print progress messages")
	flag.Usage = usage
	flag.Parse()
	if len(flag.Args()) != 2 {
		fmt.Fprintln(os.Stderr, "Got", len(flag.Args()), "args, expected 2")
		usage()
		return exitFailure
	}
	input := flag.Args()[0]
	outdir := flag.Args()[1]
	cfg := def
	if *configFile != "" {
		var err error
		if cfg, err = convert.LoadConfig(*configFile); err != nil {
			return fatal(err)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "top":
			cfg.Topology = *top
		case "ppa":
			cfg.PointsPerAtom = *ppa
		case "format":
			cfg.Format = *format
		case "compress":
			cfg.Compress = *compress
		case "first":
			cfg.First = *first
		case "last":
			cfg.Last = *last
		case "stride":
			cfg.Stride = *stride
		case "plot":
			cfg.Plot = *plot
		}
	})
	var out io.Writer = os.Stderr
	if *quiet {
		out = io.Discard
	}
	C := convert.New(cfg, log.New(out, "", 0))
	sum, err := C.Run(input, outdir)
	if err != nil {
		return fatal(err)
	}
	C.Log.Printf("- %d frames written to %s", len(sum.Files), sum.Manifest)
	return exitSuccess
}

func main() {
	os.Exit(mymain())
}
