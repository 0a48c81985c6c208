/*
 * files.go, part of chemvtk.
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

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// compressedFile reads through a decompressor. Close closes the
// decompressor and then the underlying file.
type compressedFile struct {
	f      *os.File
	r      io.Reader
	closer func() error
}

func (c *compressedFile) Read(p []byte) (int, error) {
	return c.r.Read(p)
}

func (c *compressedFile) Close() error {
	var err error
	if c.closer != nil {
		err = c.closer()
	}
	if err2 := c.f.Close(); err == nil {
		err = err2
	}
	return err
}

// OpenFile opens name for reading. If the name ends in ".gz" or ".zst", the
// returned reader decompresses the contents with gzip or zstd, respectively.
// The caller must close the returned ReadCloser.
func OpenFile(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, WrapError(KindInput, name, err, "os.Open", "OpenFile")
	}
	buf := bufio.NewReader(f)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		z, err := gzip.NewReader(buf)
		if err != nil {
			f.Close()
			return nil, WrapError(KindInput, name, err, "gzip.NewReader", "OpenFile")
		}
		return &compressedFile{f: f, r: z, closer: z.Close}, nil
	case ".zst":
		z, err := zstd.NewReader(buf)
		if err != nil {
			f.Close()
			return nil, WrapError(KindInput, name, err, "zstd.NewReader", "OpenFile")
		}
		//*zstd.Decoder's Close doesn't return an error.
		return &compressedFile{f: f, r: z, closer: func() error { z.Close(); return nil }}, nil
	default:
		return &compressedFile{f: f, r: buf}, nil
	}
}

// Ext returns the lowercase extension of name, without the leading dot, ignoring
// a trailing compression extension (".gz" or ".zst"). Ext("a/prot.pdb.gz") is "pdb".
func Ext(name string) string {
	base := strings.ToLower(filepath.Base(name))
	for _, c := range []string{".gz", ".zst"} {
		base = strings.TrimSuffix(base, c)
	}
	return strings.TrimPrefix(filepath.Ext(base), ".")
}

// BaseName returns the file name of name without directories and without
// its extensions, including a compression extension. BaseName("a/prot.pdb.gz") is "prot".
func BaseName(name string) string {
	base := filepath.Base(name)
	lower := strings.ToLower(base)
	for _, c := range []string{".gz", ".zst"} {
		if strings.HasSuffix(lower, c) {
			base = base[:len(base)-len(c)]
			lower = lower[:len(lower)-len(c)]
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
