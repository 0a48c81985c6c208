/*
 * config_test.go, part of chemvtk.
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
	"os"
	"path/filepath"
	"reflect"
	"testing"

	chem "github.com/rmera/chemvtk"
	"github.com/rmera/chemvtk/vtk"
)

func writeConfig(Te *testing.T, content string) string {
	name := filepath.Join(Te.TempDir(), "traj2vtk.yaml")
	if err := os.WriteFile(name, []byte(content), 0644); err != nil {
		Te.Fatal(err)
	}
	return name
}

func TestLoadConfig(Te *testing.T) {
	name := writeConfig(Te, "points_per_atom: 4\nformat: Binary\ncompress: true\nstride: 3\nplot: trace.png\n")
	cfg, err := LoadConfig(name)
	if err != nil {
		Te.Fatal(err)
	}
	expected := Config{PointsPerAtom: 4, Format: "Binary", Compress: true, Last: -1, Stride: 3, Plot: "trace.png"}
	if cfg != expected {
		Te.Errorf("read %+v, expected %+v", cfg, expected)
	}
	opts, err := cfg.WriteOptions()
	if err != nil {
		Te.Fatal(err)
	}
	if opts.Encoding != vtk.Binary || !opts.Compress {
		Te.Errorf("wrong write options %+v", opts)
	}
	if _, err = LoadConfig(filepath.Join(Te.TempDir(), "none.yaml")); chem.KindOf(err) != chem.KindInput {
		Te.Errorf("expected an input error for a missing file, got %v", err)
	}
	for _, content := range []string{"format: [1, 2\n", "format: xml\n", "stride: 0\n"} {
		if _, err = LoadConfig(writeConfig(Te, content)); chem.KindOf(err) != chem.KindInput {
			Te.Errorf("%q: expected an input error, got %v", content, err)
		}
	}
}

func TestValidate(Te *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		Te.Fatal(err)
	}
	bad := []func(*Config){
		func(c *Config) { c.PointsPerAtom = 0 },
		func(c *Config) { c.Stride = -1 },
		func(c *Config) { c.First = -2 },
		func(c *Config) { c.First, c.Last = 5, 3 },
		func(c *Config) { c.Format = "" },
	}
	for i, f := range bad {
		cfg := DefaultConfig()
		f(&cfg)
		if err := cfg.Validate(); chem.KindOf(err) != chem.KindInput {
			Te.Errorf("case %d: expected an input error, got %v", i, err)
		}
	}
}

func TestFrames(Te *testing.T) {
	tests := []struct {
		first, last, stride, n int
		expected               []int
	}{
		{0, -1, 1, 3, []int{0, 1, 2}},
		{1, -1, 2, 6, []int{1, 3, 5}},
		{0, 2, 1, 10, []int{0, 1, 2}},
		{2, 20, 3, 9, []int{2, 5, 8}},
		{0, -1, 1, 0, nil},
	}
	for _, t := range tests {
		cfg := Config{First: t.first, Last: t.last, Stride: t.stride}
		if got := cfg.frames(t.n); !reflect.DeepEqual(got, t.expected) {
			Te.Errorf("%+v: got frames %v", t, got)
		}
	}
}
