/*
 * vtu.go, part of chemvtk.
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

// Package vtk writes line geometry as VTK XML unstructured grids (.vtu), and ParaView data
// collections (.pvd) that put a series of them in time order.
package vtk

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zlib"
	chem "github.com/rmera/chemvtk"
	"github.com/rmera/chemvtk/linegeom"
)

// Encoding is the way the data arrays are stored in a VTU file.
type Encoding int

const (
	Appended Encoding = iota //raw binary data after the XML
	Binary                   //base64 inside each array
	ASCII                    //text
)

func (e Encoding) String() string {
	switch e {
	case Appended:
		return "appended"
	case Binary:
		return "binary"
	case ASCII:
		return "ascii"
	default:
		return "unknown"
	}
}

// ParseEncoding returns the Encoding named s ("appended", "binary" or "ascii").
func ParseEncoding(s string) (Encoding, error) {
	for _, e := range []Encoding{Appended, Binary, ASCII} {
		if strings.EqualFold(s, e.String()) {
			return e, nil
		}
	}
	return Appended, fmt.Errorf("unknown VTK encoding %q", s)
}

// WriteOptions sets how the data arrays are written.
type WriteOptions struct {
	Encoding Encoding
	Compress bool //zlib compression, ignored for ASCII
}

const (
	vtkLine   uint8 = 3
	blockSize       = 1 << 15
)

// dataArray is one DataArray element.
type dataArray struct {
	name  string
	vtype string
	ncomp int
	data  interface{} //slice of fixed size numbers
}

// WriteLines writes the points of f as line segments, each consecutive pair of points
// being a segment, to the file path plus the ".vtu" extension, which is returned. The
// type of each point is written as the point data "atom_type".
func WriteLines(path string, f *linegeom.Frame, opts WriteOptions) (string, error) {
	filename := path + ".vtu"
	np := f.Len()
	if np == 0 || np%2 != 0 || len(f.Points) != 3*np {
		return "", chem.NewError(chem.KindOutput, filename, fmt.Sprintf("Can't write %d points (%d coordinates) as lines", np, len(f.Points)), "WriteLines")
	}
	nc := np / 2
	conn := make([]int32, np)
	for i := range conn {
		conn[i] = int32(i)
	}
	offsets := make([]int32, nc)
	types := make([]uint8, nc)
	for i := range offsets {
		offsets[i] = int32(2 * (i + 1))
		types[i] = vtkLine
	}
	arrays := []*dataArray{
		{name: "points", vtype: "Float32", ncomp: 3, data: f.Points},
		{name: "connectivity", vtype: "Int32", ncomp: 1, data: conn},
		{name: "offsets", vtype: "Int32", ncomp: 1, data: offsets},
		{name: "types", vtype: "UInt8", ncomp: 1, data: types},
		{name: "atom_type", vtype: "UInt32", ncomp: 1, data: f.Types},
	}
	out, err := os.Create(filename)
	if err != nil {
		return "", chem.WrapError(chem.KindOutput, filename, err, "os.Create", "WriteLines")
	}
	w := bufio.NewWriter(out)
	err = writeVTU(w, np, nc, arrays, opts)
	if err == nil {
		err = w.Flush()
	}
	if err2 := out.Close(); err == nil {
		err = err2
	}
	if err != nil {
		return "", chem.WrapError(chem.KindOutput, filename, err, "WriteLines")
	}
	return filename, nil
}

func writeVTU(w *bufio.Writer, np, nc int, arrays []*dataArray, opts WriteOptions) error {
	compress := opts.Compress && opts.Encoding != ASCII
	blocks := make([][]byte, len(arrays))
	if opts.Encoding != ASCII {
		for i, a := range arrays {
			head, payload, err := encodeBlock(a.data, compress)
			if err != nil {
				return err
			}
			switch {
			case opts.Encoding == Appended:
				blocks[i] = append(head, payload...)
			case compress:
				//the header and the compressed data are encoded separately
				blocks[i] = []byte(base64.StdEncoding.EncodeToString(head) + base64.StdEncoding.EncodeToString(payload))
			default:
				blocks[i] = []byte(base64.StdEncoding.EncodeToString(append(head, payload...)))
			}
		}
	}
	compressor := ""
	if compress {
		compressor = ` compressor="vtkZLibDataCompressor"`
	}
	fmt.Fprintf(w, "<?xml version=\"1.0\"?>\n")
	fmt.Fprintf(w, "<VTKFile type=\"UnstructuredGrid\" version=\"1.0\" byte_order=\"LittleEndian\" header_type=\"UInt64\"%s>\n", compressor)
	fmt.Fprintf(w, "<UnstructuredGrid>\n<Piece NumberOfPoints=\"%d\" NumberOfCells=\"%d\">\n", np, nc)
	var offset int
	element := func(i int) {
		a := arrays[i]
		fmt.Fprintf(w, "<DataArray type=\"%s\" Name=\"%s\" NumberOfComponents=\"%d\"", a.vtype, a.name, a.ncomp)
		switch opts.Encoding {
		case Appended:
			fmt.Fprintf(w, " format=\"appended\" offset=\"%d\"/>\n", offset)
			offset += len(blocks[i])
		case Binary:
			fmt.Fprintf(w, " format=\"binary\">\n%s\n</DataArray>\n", blocks[i])
		default:
			fmt.Fprintf(w, " format=\"ascii\">\n")
			writeASCII(w, a.data, a.ncomp)
			fmt.Fprintf(w, "</DataArray>\n")
		}
	}
	fmt.Fprintf(w, "<Points>\n")
	element(0)
	fmt.Fprintf(w, "</Points>\n<Cells>\n")
	element(1)
	element(2)
	element(3)
	fmt.Fprintf(w, "</Cells>\n<PointData Scalars=\"atom_type\">\n")
	element(4)
	fmt.Fprintf(w, "</PointData>\n</Piece>\n</UnstructuredGrid>\n")
	if opts.Encoding == Appended {
		fmt.Fprintf(w, "<AppendedData encoding=\"raw\">\n_")
		for _, b := range blocks {
			w.Write(b)
		}
		fmt.Fprintf(w, "\n</AppendedData>\n")
	}
	_, err := fmt.Fprintf(w, "</VTKFile>\n")
	return err
}

// encodeBlock returns the little endian bytes of data, and the VTK header for them.
// Uncompressed, the header is the number of bytes. Compressed, the data is split
// in blocks of blockSize bytes, each compressed separately with zlib, and the header
// is the number of blocks, the block size, the size of the last block and the
// compressed size of each block.
func encodeBlock(data interface{}, compress bool) (head []byte, payload []byte, err error) {
	var raw bytes.Buffer
	if err = binary.Write(&raw, binary.LittleEndian, data); err != nil {
		return nil, nil, err
	}
	if !compress {
		head = binary.LittleEndian.AppendUint64(nil, uint64(raw.Len()))
		return head, raw.Bytes(), nil
	}
	b := raw.Bytes()
	nblocks := (len(b) + blockSize - 1) / blockSize
	last := len(b) % blockSize
	header := []uint64{uint64(nblocks), uint64(blockSize), uint64(last)}
	var out bytes.Buffer
	for start := 0; start < len(b); start += blockSize {
		end := start + blockSize
		if end > len(b) {
			end = len(b)
		}
		before := out.Len()
		z, err := zlib.NewWriterLevel(&out, zlib.DefaultCompression)
		if err != nil {
			return nil, nil, err
		}
		if _, err = z.Write(b[start:end]); err != nil {
			return nil, nil, err
		}
		if err = z.Close(); err != nil {
			return nil, nil, err
		}
		header = append(header, uint64(out.Len()-before))
	}
	for _, h := range header {
		head = binary.LittleEndian.AppendUint64(head, h)
	}
	return head, out.Bytes(), nil
}

// writeASCII writes the numbers in data, ncomp per line.
func writeASCII(w io.Writer, data interface{}, ncomp int) {
	var strs []string
	switch d := data.(type) {
	case []float32:
		for _, v := range d {
			strs = append(strs, strconv.FormatFloat(float64(v), 'g', -1, 32))
		}
	case []int32:
		for _, v := range d {
			strs = append(strs, strconv.FormatInt(int64(v), 10))
		}
	case []uint32:
		for _, v := range d {
			strs = append(strs, strconv.FormatUint(uint64(v), 10))
		}
	case []uint8:
		for _, v := range d {
			strs = append(strs, strconv.FormatUint(uint64(v), 10))
		}
	default:
		panic(fmt.Sprintf("vtk: can't write %T as ascii", data))
	}
	for i := 0; i < len(strs); i += ncomp {
		io.WriteString(w, strings.Join(strs[i:i+ncomp], " "))
		io.WriteString(w, "\n")
	}
}
