/*
 * spline.go, part of chemvtk.
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

// Package spline fits interpolating parametric B-splines through a sequence of 3D points,
// and samples them at evenly spaced parameter values.
//
// The curve uses the conventions of the FITPACK parcur/splprep routines with zero
// smoothing: the parameter of each point is its normalized cumulative chord length, the
// degree is 3 (or the number of points minus one, if smaller), the end knots are clamped and the
// interior knots are placed at the parameters of the points (or at the midpoints between
// parameters, for even degrees). The curve passes through every point.
package spline

import (
	"fmt"
	"math"

	chem "github.com/rmera/chemvtk"
	v3 "github.com/rmera/chemvtk/v3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MaxDegree is the degree of the curve when there are enough points.
const MaxDegree = 3

// Curve is an interpolating B-spline curve in 3D.
type Curve struct {
	k     int
	u     []float64  //parameters of the control points
	t     []float64  //knots
	coefs *v3.Matrix //control points of the B-spline
	n     []float64  //basis function buffer
}

// Fit returns npts points sampled at evenly spaced parameter values in [0,1] along the
// interpolating curve through the points in ctrl. The first and last returned points
// are the first and last control points.
func Fit(ctrl *v3.Matrix, npts int) (*v3.Matrix, error) {
	c, err := New(ctrl)
	if err != nil {
		return nil, errDecorate(err, "Fit")
	}
	ret, err := c.Sample(npts)
	return ret, errDecorate(err, "Fit")
}

// New returns the interpolating curve through the points in ctrl, which must be at least 2,
// finite, and with no two consecutive points at the same position.
func New(ctrl *v3.Matrix) (*Curve, error) {
	if ctrl == nil || ctrl.NVecs() < 2 {
		return nil, chem.NewError(chem.KindFitting, "", "At least 2 points are needed to fit a curve", "New")
	}
	if !ctrl.Finite() {
		return nil, chem.NewError(chem.KindFitting, "", "Non finite coordinates given", "New")
	}
	m := ctrl.NVecs()
	u, err := chordParams(ctrl)
	if err != nil {
		return nil, errDecorate(err, "New")
	}
	k := MaxDegree
	if m-1 < k {
		k = m - 1
	}
	C := &Curve{k: k, u: u, t: knots(u, k), n: make([]float64, k+1)}
	A := mat.NewDense(m, m, nil)
	for i, v := range u {
		s := C.span(v)
		C.basis(s, v)
		for j, b := range C.n {
			A.Set(i, s-k+j, b)
		}
	}
	coefs := mat.NewDense(m, 3, nil)
	if err := coefs.Solve(A, v3.Matrix2Dense(ctrl)); err != nil {
		return nil, chem.NewError(chem.KindFitting, "", fmt.Sprintf("Can't solve the interpolation system: %s", err.Error()), "New")
	}
	C.coefs = v3.Dense2Matrix(coefs)
	return C, nil
}

// chordParams returns the normalized cumulative chord lengths of the points in ctrl.
func chordParams(ctrl *v3.Matrix) ([]float64, error) {
	m := ctrl.NVecs()
	u := make([]float64, m)
	for i := 1; i < m; i++ {
		d := ctrl.Dist(i-1, i)
		if d == 0 {
			return nil, chem.NewError(chem.KindFitting, "", fmt.Sprintf("Control points %d and %d coincide", i-1, i), "chordParams")
		}
		u[i] = u[i-1] + d
	}
	floats.Scale(1/u[m-1], u)
	u[m-1] = 1
	return u, nil
}

// knots returns the clamped knot vector for the parameters u and the degree k.
func knots(u []float64, k int) []float64 {
	m := len(u)
	t := make([]float64, m+k+1)
	for i := m; i < len(t); i++ {
		t[i] = 1
	}
	j0 := k/2 + 1
	for l := 0; l < m-k-1; l++ {
		if k%2 == 1 {
			t[k+1+l] = u[l+j0]
		} else {
			t[k+1+l] = (u[l+j0] + u[l+j0-1]) / 2
		}
	}
	return t
}

// span returns s such that t[s] <= u < t[s+1], with s in [k, m-1]. For u=1, s is m-1.
func (C *Curve) span(u float64) int {
	m := len(C.u)
	if u >= C.t[m] {
		return m - 1
	}
	lo, hi := C.k, m
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if u < C.t[mid] {
			hi = mid
		} else {
			lo = mid
		}
	}
	return lo
}

// basis puts in C.n the values of the k+1 non-zero basis functions at u,
// where s is the span of u.
func (C *Curve) basis(s int, u float64) {
	k := C.k
	var left, right [MaxDegree + 1]float64
	C.n[0] = 1
	for j := 1; j <= k; j++ {
		left[j] = u - C.t[s+1-j]
		right[j] = C.t[s+j] - u
		saved := 0.0
		for r := 0; r < j; r++ {
			temp := C.n[r] / (right[r+1] + left[j-r])
			C.n[r] = saved + right[r+1]*temp
			saved = left[j-r] * temp
		}
		C.n[j] = saved
	}
}

// Eval puts in dst, which must have at least 3 elements, the point of the curve
// at parameter u. u is clamped to [0,1].
func (C *Curve) Eval(u float64, dst []float64) {
	u = math.Max(0, math.Min(1, u))
	s := C.span(u)
	C.basis(s, u)
	dst[0], dst[1], dst[2] = 0, 0, 0
	for j, b := range C.n {
		if b == 0 {
			continue
		}
		row := C.coefs.RawRowView(s - C.k + j)
		dst[0] += b * row[0]
		dst[1] += b * row[1]
		dst[2] += b * row[2]
	}
}

// Sample returns npts points of the curve, at evenly spaced parameters from 0 to 1.
func (C *Curve) Sample(npts int) (*v3.Matrix, error) {
	if npts < 2 {
		return nil, chem.NewError(chem.KindFitting, "", fmt.Sprintf("At least 2 samples are needed, %d requested", npts), "Sample")
	}
	params := floats.Span(make([]float64, npts), 0, 1)
	params[npts-1] = 1
	ret := v3.Zeros(npts)
	for i, u := range params {
		C.Eval(u, ret.RawRowView(i))
	}
	return ret, nil
}

// Degree returns the degree of the curve.
func (C *Curve) Degree() int {
	return C.k
}

// Params returns a copy of the parameters of the control points.
func (C *Curve) Params() []float64 {
	return append([]float64(nil), C.u...)
}

// Knots returns a copy of the knot vector.
func (C *Curve) Knots() []float64 {
	return append([]float64(nil), C.t...)
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
