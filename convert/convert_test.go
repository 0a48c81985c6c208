/*
 * convert_test.go, part of chemvtk.
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
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	chem "github.com/rmera/chemvtk"
	"github.com/rmera/chemvtk/traj/dcd"
	"github.com/rmera/chemvtk/traj/stf"
	v3 "github.com/rmera/chemvtk/v3"
)

type fixtureAtom struct {
	name, res, symbol string
	resid             int
	x, y, z           float64
}

// peptide returns nres ALA residues (only N, H, CA, C and O) along the x axis,
// followed by a water molecule.
func peptide(nres int) []fixtureAtom {
	var ats []fixtureAtom
	for r := 0; r < nres; r++ {
		x := 3.8 * float64(r)
		ats = append(ats,
			fixtureAtom{"N", "ALA", "N", r + 1, x, 0, 0},
			fixtureAtom{"H", "ALA", "H", r + 1, x, -1, 0},
			fixtureAtom{"CA", "ALA", "C", r + 1, x + 1.2, 0.8, 0},
			fixtureAtom{"C", "ALA", "C", r + 1, x + 2.4, 0, 0},
			fixtureAtom{"O", "ALA", "O", r + 1, x + 2.4, -1.2, 0},
		)
	}
	ats = append(ats,
		fixtureAtom{"O", "HOH", "O", nres + 1, 20, 20, 20},
		fixtureAtom{"H1", "HOH", "H", nres + 1, 20.96, 20, 20},
		fixtureAtom{"H2", "HOH", "H", nres + 1, 19.76, 20.93, 20},
	)
	return ats
}

// position returns the coordinates of at in the model model.
func (at fixtureAtom) position(model int) (float64, float64, float64) {
	return at.x, at.y + 0.5*float64(model), at.z
}

func coords(ats []fixtureAtom, model int) *v3.Matrix {
	m := v3.Zeros(len(ats))
	for i, at := range ats {
		x, y, z := at.position(model)
		m.Set(i, 0, x)
		m.Set(i, 1, y)
		m.Set(i, 2, z)
	}
	return m
}

// peptideConect returns the CONECT records for peptide(nres): the bonds
// within each residue, the peptide bonds and the water bonds.
func peptideConect(nres int) string {
	var b strings.Builder
	for r := 0; r < nres; r++ {
		n := 5*r + 1
		fmt.Fprintf(&b, "CONECT%5d%5d%5d\n", n, n+1, n+2)
		fmt.Fprintf(&b, "CONECT%5d%5d\n", n+2, n+3)
		fmt.Fprintf(&b, "CONECT%5d%5d\n", n+3, n+4)
		if r < nres-1 {
			fmt.Fprintf(&b, "CONECT%5d%5d\n", n+3, n+5)
		}
	}
	w := 5*nres + 1
	fmt.Fprintf(&b, "CONECT%5d%5d%5d\n", w, w+1, w+2)
	return b.String()
}

// writePDB writes nmodels models of ats to a file in dir and returns its name.
func writePDB(Te *testing.T, dir, name string, ats []fixtureAtom, nmodels int, conect string) string {
	var b strings.Builder
	for m := 0; m < nmodels; m++ {
		fmt.Fprintf(&b, "MODEL     %4d\n", m+1)
		for i, at := range ats {
			x, y, z := at.position(m)
			fmt.Fprintf(&b, "%-6s%5d %-4s %3s %1s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s\n",
				"ATOM", i+1, at.name, at.res, "A", at.resid, x, y, z, 1.0, 0.0, at.symbol)
		}
		b.WriteString("ENDMDL\n")
	}
	b.WriteString(conect)
	b.WriteString("END\n")
	filename := filepath.Join(dir, name)
	if err := os.WriteFile(filename, []byte(b.String()), 0644); err != nil {
		Te.Fatal(err)
	}
	return filename
}

func gzipFile(Te *testing.T, src, dst string) {
	data, err := os.ReadFile(src)
	if err != nil {
		Te.Fatal(err)
	}
	var b bytes.Buffer
	z := gzip.NewWriter(&b)
	z.Write(data)
	if err = z.Close(); err != nil {
		Te.Fatal(err)
	}
	if err = os.WriteFile(dst, b.Bytes(), 0644); err != nil {
		Te.Fatal(err)
	}
}

// 3 backbone atoms, 10 points per atom and 11 rendered bonds.
const peptideVertices = 2*(3*10-1) + 4*11

func checkOutput(Te *testing.T, outdir, base string, sum *Summary, frames []int) {
	Te.Helper()
	if !reflect.DeepEqual(sum.Frames, frames) {
		Te.Fatalf("frames written %v, expected %v", sum.Frames, frames)
	}
	if sum.VerticesPerFrame != peptideVertices {
		Te.Errorf("%d vertices per frame, expected %d", sum.VerticesPerFrame, peptideVertices)
	}
	pvd, err := os.ReadFile(filepath.Join(outdir, base+".pvd"))
	if err != nil {
		Te.Fatal(err)
	}
	var expected strings.Builder
	expected.WriteString("<?xml version=\"1.0\"?>\n<VTKFile type=\"Collection\" version=\"0.1\" byte_order=\"LittleEndian\">\n<Collection>\n")
	for j, i := range frames {
		name := fmt.Sprintf("%s_frame_no_%d.vtu", base, i)
		fmt.Fprintf(&expected, "<DataSet timestep=\"%d\" group=\"\" part=\"0\" file=\"%s\"/>\n", i, name)
		if sum.Files[j] != filepath.Join(outdir, name) {
			Te.Errorf("file %d is %s, expected %s", j, sum.Files[j], name)
		}
		vtu, err := os.ReadFile(sum.Files[j])
		if err != nil {
			Te.Fatal(err)
		}
		if !bytes.Contains(vtu, []byte(fmt.Sprintf("NumberOfPoints=\"%d\"", peptideVertices))) {
			Te.Errorf("%s doesn't have %d points", name, peptideVertices)
		}
	}
	expected.WriteString("</Collection>\n</VTKFile>\n")
	if string(pvd) != expected.String() {
		Te.Errorf("unexpected manifest:\n%s\nexpected:\n%s", pvd, expected.String())
	}
	entries, err := os.ReadDir(outdir)
	if err != nil {
		Te.Fatal(err)
	}
	if len(entries) != len(frames)+1 {
		Te.Errorf("%d files in the output directory, expected %d", len(entries), len(frames)+1)
	}
}

func TestRunPDB(Te *testing.T) {
	dir := Te.TempDir()
	input := writePDB(Te, dir, "pept.pdb", peptide(3), 3, peptideConect(3))
	outdir := Te.TempDir()
	var logs bytes.Buffer
	C := New(DefaultConfig(), log.New(&logs, "", 0))
	sum, err := C.Run(input, outdir)
	if err != nil {
		Te.Fatal(err)
	}
	checkOutput(Te, outdir, "pept", sum, []int{0, 1, 2})
	if C.State() != Done {
		Te.Errorf("converter in state %s, expected %s", C.State(), Done)
	}
	if sum.Trace.Len() != 3 {
		Te.Errorf("trace report with %d frames, expected 3", sum.Trace.Len())
	}
	for _, s := range []string{"- Processing input file: " + input + " ...", "- Writing structure data for frame 2 ...", "- Backbone trace: 3 frames"} {
		if !strings.Contains(logs.String(), s) {
			Te.Errorf("log doesn't contain %q:\n%s", s, logs.String())
		}
	}
}

func TestRunAssignedBonds(Te *testing.T) {
	dir := Te.TempDir()
	plain := writePDB(Te, dir, "plain.pdb", peptide(3), 1, "")
	input := filepath.Join(dir, "pept.pdb.gz")
	gzipFile(Te, plain, input)
	outdir := Te.TempDir()
	sum, err := New(DefaultConfig(), nil).Run(input, outdir)
	if err != nil {
		Te.Fatal(err)
	}
	checkOutput(Te, outdir, "pept", sum, []int{0})
}

func TestRunDeterministic(Te *testing.T) {
	dir := Te.TempDir()
	input := writePDB(Te, dir, "pept.pdb", peptide(3), 2, peptideConect(3))
	for _, format := range []string{"appended", "binary", "ascii"} {
		cfg := DefaultConfig()
		cfg.Format = format
		cfg.Compress = format != "ascii"
		out1, out2 := Te.TempDir(), Te.TempDir()
		sum, err := New(cfg, nil).Run(input, out1)
		if err != nil {
			Te.Fatal(err)
		}
		if _, err = New(cfg, nil).Run(input, out2); err != nil {
			Te.Fatal(err)
		}
		for _, f := range append(sum.Files, sum.Manifest) {
			b1, err := os.ReadFile(f)
			if err != nil {
				Te.Fatal(err)
			}
			b2, err := os.ReadFile(filepath.Join(out2, filepath.Base(f)))
			if err != nil {
				Te.Fatal(err)
			}
			if !bytes.Equal(b1, b2) {
				Te.Errorf("%s: %s differs between runs", format, filepath.Base(f))
			}
		}
	}
}

func TestRunFrameRange(Te *testing.T) {
	dir := Te.TempDir()
	input := writePDB(Te, dir, "pept.pdb", peptide(3), 5, peptideConect(3))
	cfg := DefaultConfig()
	cfg.First = 1
	cfg.Stride = 2
	outdir := Te.TempDir()
	sum, err := New(cfg, nil).Run(input, outdir)
	if err != nil {
		Te.Fatal(err)
	}
	checkOutput(Te, outdir, "pept", sum, []int{1, 3})
	cfg.First = 7
	cfg.Last = -1
	_, err = New(cfg, nil).Run(input, Te.TempDir())
	if chem.KindOf(err) != chem.KindInput {
		Te.Errorf("expected an input error for an out of range frame, got %v", err)
	}
}

func TestRunNoBackbone(Te *testing.T) {
	dir := Te.TempDir()
	input := writePDB(Te, dir, "one.pdb", peptide(1), 2, peptideConect(1))
	outdir := Te.TempDir()
	C := New(DefaultConfig(), nil)
	_, err := C.Run(input, outdir)
	if chem.KindOf(err) != chem.KindTopology {
		Te.Fatalf("expected a topology error, got %v", err)
	}
	if C.State() != Init {
		Te.Errorf("converter in state %s after a topology error", C.State())
	}
	entries, err := os.ReadDir(outdir)
	if err != nil {
		Te.Fatal(err)
	}
	if len(entries) != 0 {
		Te.Errorf("the output directory should be empty, it has %d files", len(entries))
	}
}

func TestRunSTF(Te *testing.T) {
	dir := Te.TempDir()
	ats := peptide(3)
	top := writePDB(Te, dir, "top.pdb", ats, 1, "")
	input := filepath.Join(dir, "md.stf")
	w, err := stf.NewWriter(input, len(ats), nil)
	if err != nil {
		Te.Fatal(err)
	}
	for m := 0; m < 4; m++ {
		if err = w.WNext(coords(ats, m)); err != nil {
			Te.Fatal(err)
		}
	}
	if err = w.Close(); err != nil {
		Te.Fatal(err)
	}
	cfg := DefaultConfig()
	_, err = New(cfg, nil).Run(input, Te.TempDir())
	if chem.KindOf(err) != chem.KindInput {
		Te.Errorf("expected an input error without topology, got %v", err)
	}
	cfg.Topology = top
	outdir := Te.TempDir()
	sum, err := New(cfg, nil).Run(input, outdir)
	if err != nil {
		Te.Fatal(err)
	}
	checkOutput(Te, outdir, "md", sum, []int{0, 1, 2, 3})
	cfg.Topology = writePDB(Te, dir, "small.pdb", peptide(2), 1, "")
	_, err = New(cfg, nil).Run(input, Te.TempDir())
	if chem.KindOf(err) != chem.KindInput {
		Te.Errorf("expected an input error for mismatched atoms, got %v", err)
	}
}

func TestRunDCD(Te *testing.T) {
	dir := Te.TempDir()
	ats := peptide(3)
	input := filepath.Join(dir, "md.dcd")
	w, err := dcd.NewWriter(input, len(ats))
	if err != nil {
		Te.Fatal(err)
	}
	for m := 0; m < 2; m++ {
		if err = w.WNext(coords(ats, m)); err != nil {
			Te.Fatal(err)
		}
	}
	if err = w.Close(); err != nil {
		Te.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.Topology = writePDB(Te, dir, "top.pdb", ats, 1, peptideConect(3))
	cfg.Plot = filepath.Join(dir, "trace.png")
	outdir := Te.TempDir()
	sum, err := New(cfg, nil).Run(input, outdir)
	if err != nil {
		Te.Fatal(err)
	}
	checkOutput(Te, outdir, "md", sum, []int{0, 1})
	if _, err = os.Stat(cfg.Plot); err != nil {
		Te.Errorf("trace plot not written: %v", err)
	}
}

func TestRunErrors(Te *testing.T) {
	dir := Te.TempDir()
	input := writePDB(Te, dir, "pept.pdb", peptide(3), 1, peptideConect(3))
	tests := []struct {
		name  string
		input string
		out   string
		cfg   func(*Config)
		kind  chem.Kind
	}{
		{"missing", filepath.Join(dir, "nope.pdb"), dir, nil, chem.KindInput},
		{"format", filepath.Join(dir, "pept.xyz"), dir, nil, chem.KindInput},
		{"compressed", filepath.Join(dir, "md.stf.gz"), dir, func(c *Config) { c.Topology = input }, chem.KindInput},
		{"config", input, dir, func(c *Config) { c.Format = "xml" }, chem.KindInput},
		{"outdir", input, filepath.Join(dir, "nodir"), nil, chem.KindOutput},
	}
	for _, t := range tests {
		cfg := DefaultConfig()
		if t.cfg != nil {
			t.cfg(&cfg)
		}
		_, err := New(cfg, nil).Run(t.input, t.out)
		if err == nil {
			Te.Errorf("%s: expected an error", t.name)
			continue
		}
		if k := chem.KindOf(err); k != t.kind {
			Te.Errorf("%s: expected a %s error, got %s (%v)", t.name, t.kind, k, err)
		}
	}
}
