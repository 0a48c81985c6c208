/*
 * trace.go, part of chemvtk
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as published by
 * the Free Software Foundation, either version 2.1 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 */

// Package chemplot collects and plots properties of the backbone trace along a trajectory.
package chemplot

import (
	"fmt"
	"math"

	chem "github.com/rmera/chemvtk"
	v3 "github.com/rmera/chemvtk/v3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TraceReport records, for each frame, the contour length of the backbone curve
// and the distance between its ends.
type TraceReport struct {
	Frames   []float64 //frame indexes, as float64 for plotting.
	Contour  []float64
	EndToEnd []float64
}

// NewTraceReport returns an empty report.
func NewTraceReport() *TraceReport {
	return new(TraceReport)
}

// ContourLength returns the sum of the distances between consecutive points in trace.
func ContourLength(trace *v3.Matrix) float64 {
	d := make([]float64, 0, trace.NVecs())
	for i := 1; i < trace.NVecs(); i++ {
		d = append(d, trace.Dist(i-1, i))
	}
	return floats.Sum(d)
}

// Add records the sampled backbone curve trace for the frame frame.
func (T *TraceReport) Add(frame int, trace *v3.Matrix) error {
	if trace == nil || trace.NVecs() < 2 {
		return chem.NewError(chem.KindUnknown, "", fmt.Sprintf("Frame %d: a trace needs at least 2 points", frame), "Add")
	}
	T.Frames = append(T.Frames, float64(frame))
	T.Contour = append(T.Contour, ContourLength(trace))
	T.EndToEnd = append(T.EndToEnd, trace.Dist(0, trace.NVecs()-1))
	return nil
}

// Len returns the number of frames in the report.
func (T *TraceReport) Len() int {
	return len(T.Frames)
}

// Stats returns the mean and standard deviation of the contour length and of the end-to-end distance.
// The standard deviations are 0 with less than 2 frames, all values are NaN with no frames.
func (T *TraceReport) Stats() (contour, contourStd, e2e, e2eStd float64) {
	if T.Len() == 0 {
		return math.NaN(), math.NaN(), math.NaN(), math.NaN()
	}
	contour, contourStd = stat.MeanStdDev(T.Contour, nil)
	e2e, e2eStd = stat.MeanStdDev(T.EndToEnd, nil)
	if T.Len() < 2 {
		contourStd, e2eStd = 0, 0
	}
	return
}

// String returns a one-line summary of the report.
func (T *TraceReport) String() string {
	c, cs, e, es := T.Stats()
	return fmt.Sprintf("%d frames, contour length %.3f +/- %.3f A, end-to-end distance %.3f +/- %.3f A", T.Len(), c, cs, e, es)
}
