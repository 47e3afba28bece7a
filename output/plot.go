/*
Copyright © 2020 the G2G authors.
This file is part of G2G.

G2G is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

G2G is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with G2G.  If not, see <http://www.gnu.org/licenses/>.
*/

package output

import (
	"fmt"
	"image/color"
	"io"
	"os"

	"github.com/spatialmodel/g2g"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var lineColors = []color.Color{
	color.NRGBA{0, 0, 0, 255},
	color.NRGBA{31, 119, 180, 255},
	color.NRGBA{214, 39, 40, 255},
	color.NRGBA{44, 160, 44, 255},
	color.NRGBA{148, 103, 189, 255},
}

// dayXYs returns the values against days since the first date of s.
func dayXYs(s *g2g.Series, y []float64) plotter.XYs {
	xy := make(plotter.XYs, len(y))
	for i, v := range y {
		xy[i].X = s.Date[i].Sub(s.Date[0]).Hours() / 24
		xy[i].Y = v
	}
	return xy
}

func addLines(p *plot.Plot, s *g2g.Series, names []string) error {
	for i, n := range names {
		y, ok := s.Column(n)
		if !ok {
			return fmt.Errorf("output: series has no column %s", n)
		}
		l, err := plotter.NewLine(dayXYs(s, y))
		if err != nil {
			return fmt.Errorf("output: plotting %s: %v", n, err)
		}
		l.Color = lineColors[i%len(lineColors)]
		p.Add(l)
		p.Legend.Add(n, l)
	}
	return nil
}

// Hydrograph returns a plot of precipitation and of the streamflow
// components Q, Qb and Qs.
func Hydrograph(s *g2g.Series) (*plot.Plot, error) {
	if s.Len() == 0 {
		return nil, fmt.Errorf("output: empty series")
	}
	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	p.Title.Text = "Hydrograph"
	p.X.Label.Text = "Days since " + s.Date[0].Format(g2g.DateFormat)
	p.Y.Label.Text = "mm/d"
	p.Legend.Top = true
	if err := addLines(p, s, []string{"P", "Q", "Qb", "Qs"}); err != nil {
		return nil, err
	}
	return p, nil
}

// WritePanelPNG draws one plot per variable, stacked vertically, and
// writes the figure to w as a PNG image.
func WritePanelPNG(w io.Writer, s *g2g.Series, vars []g2g.Variable, width, height vg.Length) error {
	if s.Len() == 0 || len(vars) == 0 {
		return fmt.Errorf("output: nothing to plot")
	}
	c := vgimg.New(width, height)
	dc := draw.New(c)
	tiles := draw.Tiles{
		Rows: len(vars), Cols: 1,
		PadTop: vg.Millimeter, PadBottom: vg.Millimeter,
		PadLeft: vg.Millimeter, PadRight: vg.Millimeter,
		PadY: vg.Millimeter,
	}
	for i, v := range vars {
		p, err := plot.New()
		if err != nil {
			return err
		}
		p.Y.Label.Text = fmt.Sprintf("%s [%s]", v, v.Units())
		if i == len(vars)-1 {
			p.X.Label.Text = "Days since " + s.Date[0].Format(g2g.DateFormat)
		}
		l, err := plotter.NewLine(dayXYs(s, s.Values(v)))
		if err != nil {
			return fmt.Errorf("output: plotting %s: %v", v, err)
		}
		l.Color = lineColors[i%len(lineColors)]
		p.Add(l)
		p.Draw(tiles.At(dc, 0, i))
	}
	_, err := vgimg.PngCanvas{Canvas: c}.WriteTo(w)
	return err
}

// SensitivityPlot returns a plot of the saturated area against the
// global deficit for the two settings compared in frames.
func SensitivityPlot(frames []g2g.SensitivityFrame, labels [2]string) (*plot.Plot, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("output: no sensitivity frames")
	}
	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	p.X.Label.Text = "Global deficit [mm]"
	p.Y.Label.Text = "Saturated area [%]"
	p.Legend.Top = true
	for k := 0; k < 2; k++ {
		xy := make(plotter.XYs, len(frames))
		for i, f := range frames {
			xy[i].X, xy[i].Y = f.D, f.VSA[k]
		}
		l, err := plotter.NewLine(xy)
		if err != nil {
			return nil, err
		}
		l.Color = lineColors[k+1]
		p.Add(l)
		p.Legend.Add(labels[k], l)
	}
	return p, nil
}

// SavePNG writes p to a PNG file at path.
func SavePNG(p *plot.Plot, path string, width, height vg.Length) error {
	c := vgimg.New(width, height)
	p.Draw(draw.New(c))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
