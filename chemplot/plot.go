/*
 * plot.go, part of chemvtk
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

package chemplot

import (
	"image/color"

	chem "github.com/rmera/chemvtk"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

func basicPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

func xys(x, y []float64) plotter.XYs {
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X = x[i]
		pts[i].Y = y[i]
	}
	return pts
}

// Plot draws the contour length and the end-to-end distance against the frame
// number, and saves the plot to filename. The format is given by the extension (png, svg, pdf...).
func (T *TraceReport) Plot(filename string) error {
	if T.Len() == 0 {
		return chem.NewError(chem.KindOutput, filename, "No frames to plot", "Plot")
	}
	p := basicPlot("Backbone trace", "Frame", "Length (A)")
	series := []struct {
		name string
		y    []float64
		c    color.RGBA
	}{
		{"Contour length", T.Contour, color.RGBA{R: 255, A: 255}},
		{"End-to-end distance", T.EndToEnd, color.RGBA{B: 255, A: 255}},
	}
	for _, s := range series {
		l, err := plotter.NewLine(xys(T.Frames, s.y))
		if err != nil {
			return chem.WrapError(chem.KindOutput, filename, err, "plotter.NewLine", "Plot")
		}
		l.LineStyle.Color = s.c
		p.Add(l)
		p.Legend.Add(s.name, l)
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, filename); err != nil {
		return chem.WrapError(chem.KindOutput, filename, err, "Save", "Plot")
	}
	return nil
}
