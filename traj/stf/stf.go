/*
 * stf.go, part of chemvtk.
 *
 * Copyright 2021 Raul Mera <rauldotmeraatusachdotcl>
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

package stf

import (
	"bufio"
	"compress/lzw"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	chem "github.com/rmera/chemvtk"
	v3 "github.com/rmera/chemvtk/v3"
)

const (
	lzwLitwidth int = 8
	defaultPrec int = 2
)

// The compression used is given by the last letter of the extension:
// 'l' lzw, 'z' gzip, 'r' deflate and anything else ('f', 's') zstd.
func compressionOf(name string) byte {
	if name == "" {
		return 's'
	}
	return strings.ToLower(name)[len(name)-1]
}

// zstdCloser makes a *zstd.Decoder an io.ReadCloser
type zstdCloser struct {
	*zstd.Decoder
}

// Close closes the decoder. It can not be used after this call.
func (s zstdCloser) Close() error {
	s.Decoder.Close()
	return nil
}

func newDecompressor(name string, r io.Reader) (io.ReadCloser, error) {
	switch compressionOf(name) {
	case 'l':
		return lzw.NewReader(r, lzw.MSB, lzwLitwidth), nil
	case 'z':
		return gzip.NewReader(r)
	case 'r':
		return flate.NewReader(r), nil
	default:
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zstdCloser{d}, nil
	}
}

func newCompressor(name string, w io.Writer, level int) (io.WriteCloser, error) {
	switch compressionOf(name) {
	case 'l':
		return lzw.NewWriter(w, lzw.MSB, lzwLitwidth), nil
	case 'z':
		return gzip.NewWriterLevel(w, level)
	case 'r':
		return flate.NewWriter(w, level)
	default:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	}
}

func multiplier(prec int) float64 {
	if prec <= 0 || prec == defaultPrec {
		return 100.0
	}
	return math.Pow(10.0, float64(prec))
}

// parsePrec returns the precision in the header, or the default if there is none
// or it is not a positive integer.
func parsePrec(header map[string]string, filename string) int {
	p, ok := header["prec"]
	if !ok {
		return defaultPrec
	}
	prec, err := strconv.Atoi(strings.TrimSpace(p))
	if err != nil || prec <= 0 {
		log.Printf("Invalid precision for trajectory %s. Will use the default", filename)
		return defaultPrec
	}
	return prec
}

/*****Write****/

// StfW writes STF trajectories.
type StfW struct {
	f         *os.File
	h         io.WriteCloser
	w         *bufio.Writer
	natoms    int
	filename  string
	writeable bool
	prec      int
}

// NewWriter creates the STF file name for trajectories of natoms atoms. The header, if not nil,
// is written in the file, sorted by key. The compression is chosen from the extension of name.
// The optional compressionLevel is only used by the gzip and deflate compressors.
func NewWriter(name string, natoms int, header map[string]string, compressionLevel ...int) (*StfW, error) {
	level := 9
	if len(compressionLevel) > 0 {
		level = compressionLevel[0]
	}
	S := &StfW{filename: name, natoms: natoms, prec: defaultPrec}
	var err error
	S.f, err = os.Create(name)
	if err != nil {
		return nil, &Error{err.Error(), name, []string{"NewWriter"}, true}
	}
	S.h, err = newCompressor(name, S.f, level)
	if err != nil {
		S.f.Close()
		return nil, &Error{"Can't create compressor " + err.Error(), name, []string{"NewWriter"}, true}
	}
	S.w = bufio.NewWriter(S.h)
	if header != nil {
		S.prec = parsePrec(header, name)
		keys := make([]string, 0, len(header))
		for k := range header {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(S.w, "%s=%s\n", k, header[k])
		}
	} else {
		fmt.Fprintf(S.w, "prec=%d\n", S.prec)
	}
	fmt.Fprintf(S.w, "** %d\n", S.natoms)
	S.writeable = true
	return S, nil
}

// Len returns the number of atoms per frame.
func (S *StfW) Len() int {
	return S.natoms
}

// WNext writes coord as the next frame of the trajectory, with the box vectors, if given.
func (S *StfW) WNext(coord *v3.Matrix, box ...[]float64) error {
	if !S.writeable {
		return &Error{TrajUnIniWrite, S.filename, []string{"WNext"}, true}
	}
	if coord == nil {
		return &Error{NilCoordinates, S.filename, []string{"WNext"}, true}
	}
	v := coord.NVecs()
	if v != S.natoms {
		return &Error{fmt.Sprintf("%d coordinates given, but %d expected", v, S.natoms), S.filename, []string{"WNext"}, true}
	}
	p := multiplier(S.prec)
	for i := 0; i < v; i++ {
		r := coord.RawRowView(i)
		fmt.Fprintf(S.w, "%d %d %d\n", int(math.RoundToEven(r[0]*p)), int(math.RoundToEven(r[1]*p)), int(math.RoundToEven(r[2]*p)))
	}
	var err error
	if len(box) > 0 && len(box[0]) >= 9 {
		b := box[0]
		_, err = fmt.Fprintf(S.w, "* %4.2f %4.2f %4.2f %4.2f %4.2f %4.2f %4.2f %4.2f %4.2f\n", b[0],
			b[1], b[2], b[3], b[4], b[5], b[6], b[7], b[8])
	} else {
		_, err = S.w.WriteString("*\n")
	}
	if err != nil {
		return &Error{err.Error(), S.filename, []string{"WNext"}, true}
	}
	return nil
}

// Close flushes and closes the trajectory. It can't be written after this call.
func (S *StfW) Close() error {
	if S == nil || !S.writeable {
		return nil
	}
	S.writeable = false
	err := S.w.Flush()
	if err2 := S.h.Close(); err == nil {
		err = err2
	}
	if err2 := S.f.Close(); err == nil {
		err = err2
	}
	if err != nil {
		return &Error{err.Error(), S.filename, []string{"Close"}, true}
	}
	return nil
}

/*****Read****/

// StfR reads STF trajectories.
type StfR struct {
	f        *os.File
	dec      io.ReadCloser
	h        *bufio.Reader
	natoms   int
	filename string
	prec     int
	readable bool
	atEOF    bool //the last frame has been read
}

// New opens a STF trajectory for reading, and returns a pointer
// to the handle, a map with the metadata in the header (empty if there is none)
// and error or nil.
func New(name string) (*StfR, map[string]string, error) {
	S := &StfR{filename: name, natoms: -1}
	var err error
	S.f, err = os.Open(name)
	if err != nil {
		return nil, nil, &Error{UnableToOpen + ": " + err.Error(), name, []string{"New"}, true}
	}
	S.dec, err = newDecompressor(name, bufio.NewReader(S.f))
	if err != nil {
		S.f.Close()
		return nil, nil, &Error{"Can't read header " + err.Error(), name, []string{"New"}, true}
	}
	S.h = bufio.NewReader(S.dec)
	m := make(map[string]string)
	for {
		str, err := S.h.ReadString('\n')
		if err != nil {
			S.close()
			return nil, nil, &Error{"Can't read header " + err.Error(), name, []string{"New"}, true}
		}
		str = strings.TrimRight(str, "\r\n")
		if strings.HasPrefix(str, "**") {
			nat := strings.Fields(str)
			if len(nat) < 2 {
				S.close()
				return nil, nil, &Error{fmt.Sprintf("Can't read atom number from '%s'", str), name, []string{"New"}, true}
			}
			S.natoms, err = strconv.Atoi(nat[1])
			if err != nil || S.natoms <= 0 {
				S.close()
				return nil, nil, &Error{fmt.Sprintf("Can't read atom number from '%s'", nat[1]), name, []string{"New"}, true}
			}
			break
		}
		kv := strings.SplitN(str, "=", 2)
		if len(kv) != 2 {
			S.close()
			return nil, nil, &Error{"Malformed header line: " + str, name, []string{"New"}, true}
		}
		m[kv[0]] = kv[1]
	}
	S.prec = parsePrec(m, name)
	S.readable = true
	return S, m, nil
}

// Readable returns true if the handle is readable (if it is possible to call Next on it)
func (S *StfR) Readable() bool {
	return S.readable
}

// Len returns the number of atoms in each frame of the trajectory.
func (S *StfR) Len() int {
	return S.natoms
}

func coordsDecode(str string, temp *[3]float64, p float64) error {
	s := strings.Fields(str)
	if len(s) != 3 {
		return fmt.Errorf("Ill formated coordinates line: %d fields: %s", len(s), str)
	}
	for i, v := range s {
		f, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("Can't parse coordinate %d (%s). Error: %s", i, v, err.Error())
		}
		temp[i] = float64(f) / p
	}
	return nil
}

// Next puts in the given matrix (c) the coordinates for the next frame of the trajectory
// and, if given, and the information is present, puts the box vector information in box.
// If c is nil, the frame is read and checked, but discarded.
// At the end of the trajectory it returns a chem.LastFrameError and closes the handle.
func (S *StfR) Next(c *v3.Matrix, box ...[]float64) error {
	if S.atEOF {
		return newlastFrameError(S.filename, "Next")
	}
	if !S.readable {
		return &Error{TrajUnIniRead, S.filename, []string{"Next"}, true}
	}
	if c != nil && c.NVecs() != S.natoms {
		return &Error{fmt.Sprintf("Matrix with %d rows given for %d atoms", c.NVecs(), S.natoms), S.filename, []string{"Next"}, true}
	}
	var temp [3]float64
	p := multiplier(S.prec)
	for i := 0; i < S.natoms; i++ {
		b, err := S.h.ReadString('\n')
		if err != nil {
			// EOF is only normal when reading the first atom
			if err == io.EOF && i == 0 && len(b) == 0 {
				S.Close()
				S.atEOF = true
				return newlastFrameError(S.filename, "Next")
			}
			return &Error{ReadError + ": " + err.Error(), S.filename, []string{"Next"}, true}
		}
		if strings.HasPrefix(b, "*") {
			return &Error{fmt.Sprintf("%s: frame with %d atoms, expected %d", WrongFormat, i, S.natoms), S.filename, []string{"Next"}, true}
		}
		if err = coordsDecode(b, &temp, p); err != nil {
			return &Error{err.Error(), S.filename, []string{"Next"}, true}
		}
		if c == nil {
			continue
		}
		c.Set(i, 0, temp[0])
		c.Set(i, 1, temp[1])
		c.Set(i, 2, temp[2])
	}
	s, err := S.h.ReadString('\n')
	if err != nil && !(err == io.EOF && len(s) > 0) {
		return &Error{"Can't read the frame termination mark: " + err.Error(), S.filename, []string{"Next"}, true}
	}
	if len(s) == 0 || s[0] != '*' {
		return &Error{WrongFormat + ": more atoms than expected in frame", S.filename, []string{"Next"}, true}
	}
	if len(box) > 0 && len(box[0]) >= 9 {
		readBox(strings.Fields(s), box[0], S.filename)
	}
	return nil
}

// readBox puts the box vectors in box. If they are not there or can't be read,
// box is set to zero and the problem logged.
func readBox(fields []string, box []float64, filename string) {
	if len(fields) < 10 { // The "*" and the 9 numbers
		log.Printf("Trajectory file %s does not contain (correct) box information: %s", filename, fields) //just a head-up
		return
	}
	for j, v := range fields[1:10] {
		var err error
		box[j], err = strconv.ParseFloat(v, 64)
		if err != nil {
			log.Printf("Failed to read box in a frame from %s", filename) //just a head-up
			for i := range box {
				box[i] = 0.0
			}
			return
		}
	}
}

func (S *StfR) close() {
	S.dec.Close()
	S.f.Close()
}

// Close closes the object, and marks it as unreadable
func (S *StfR) Close() {
	if !S.readable {
		return
	}
	S.close()
	S.readable = false
}

//Errors

// Error is the general structure for STF trajectory errors. It fullfills chem.Error and chem.TrajError
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err *Error) Error() string {
	return fmt.Sprintf("stf file %s error: %s", err.filename, err.message)
}

// Decorate Adds new information to the error
func (err *Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// FileName returns the file to which the failing trajectory was associated
func (err *Error) FileName() string { return err.filename }

// Format returns the format of the file (always "stf") associated to the error
func (err *Error) Format() string { return "stf" }

// Critical returns true if the error is critical, false otherwise
func (err *Error) Critical() bool { return err.critical }

// Kind returns chem.KindInput, as all problems with trajectories are problems with the input.
func (err *Error) Kind() chem.Kind { return chem.KindInput }

const (
	TrajUnIniRead  = "Traj object uninitialized to read"
	TrajUnIniWrite = "Traj object uninitialized to write"
	ReadError      = "Error reading frame"
	UnableToOpen   = "Unable to open file"
	NilCoordinates = "Given nil coordinates"
	WrongFormat    = "Wrong format in the STF file or frame"
)

// lastFrameError implements chem.LastFrameError
type lastFrameError struct {
	deco     []string
	fileName string
}

// lastFrameError does nothing
func (E *lastFrameError) NormalLastFrameTermination() {}

func (E *lastFrameError) FileName() string { return E.fileName }

func (E *lastFrameError) Error() string { return "EOF" }

func (E *lastFrameError) Critical() bool { return false }

func (E *lastFrameError) Format() string { return "stf" }

func (E *lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newlastFrameError(filename string, caller string) *lastFrameError {
	e := new(lastFrameError)
	e.fileName = filename
	e.deco = []string{caller}
	return e
}
