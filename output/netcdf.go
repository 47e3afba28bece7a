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

// Package output writes simulation results in formats for use by
// other tools: NetCDF traces, rasters and shapefiles of integrations,
// spreadsheets and SQLite tables of the series, and plots.
package output

import (
	"fmt"
	"sort"
	"time"

	"github.com/ctessum/cdf"
	"github.com/spatialmodel/g2g"
	"github.com/spatialmodel/g2g/asc"
)

// traceEpoch is the reference date of the day variable in trace files.
var traceEpoch = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// WriteTrace writes the traced grids to w as a NetCDF file with one
// float32 variable of dimensions (time, y, x) per traced variable, in
// physical units. The day variable holds the date of each step as days
// since 1970-01-01. Row 0 of each grid is the northern edge of h.
func WriteTrace(w cdf.ReaderWriterAt, trace map[g2g.Variable][]*g2g.ScaledGrid, dates []time.Time, h asc.Header) error {
	vars := make([]g2g.Variable, 0, len(trace))
	for v := range trace {
		vars = append(vars, v)
	}
	sortVariables(vars)
	if len(vars) == 0 {
		return fmt.Errorf("output: no traced variables")
	}
	nt := len(dates)
	if nt == 0 {
		return fmt.Errorf("output: trace has no steps")
	}
	for _, v := range vars {
		if len(trace[v]) != nt {
			return fmt.Errorf("output: trace of %s has %d steps; want %d", v, len(trace[v]), nt)
		}
		for _, g := range trace[v] {
			if g.Rows != h.NRows || g.Cols != h.NCols {
				return fmt.Errorf("output: trace of %s is %dx%d; header is %dx%d", v, g.Rows, g.Cols, h.NRows, h.NCols)
			}
		}
	}

	hdr := cdf.NewHeader([]string{"time", "y", "x"}, []int{nt, h.NRows, h.NCols})
	hdr.AddAttribute("", "comment", "G2G traced variables")
	hdr.AddAttribute("", "xllcorner", []float64{h.XLLCorner})
	hdr.AddAttribute("", "yllcorner", []float64{h.YLLCorner})
	hdr.AddAttribute("", "cellsize", []float64{h.CellSize})
	hdr.AddVariable("day", []string{"time"}, []int32{0})
	hdr.AddAttribute("day", "units", "days since 1970-01-01")
	for _, v := range vars {
		hdr.AddVariable(v.String(), []string{"time", "y", "x"}, []float32{0})
		hdr.AddAttribute(v.String(), "description", v.Description())
		hdr.AddAttribute(v.String(), "units", v.Units())
	}
	hdr.Define()

	f, err := cdf.Create(w, hdr)
	if err != nil {
		return fmt.Errorf("output: creating trace file: %v", err)
	}
	days := make([]int32, nt)
	for t, d := range dates {
		days[t] = int32(d.Sub(traceEpoch).Hours() / 24)
	}
	if _, err := f.Writer("day", []int{0}, []int{nt}).Write(days); err != nil {
		return fmt.Errorf("output: writing day: %v", err)
	}
	cells := h.NRows * h.NCols
	data := make([]float32, nt*cells)
	for _, v := range vars {
		for t, g := range trace[v] {
			for i := range g.Raw {
				data[t*cells+i] = float32(g.Physical(i))
			}
		}
		if _, err := f.Writer(v.String(), []int{0, 0, 0}, []int{nt, h.NRows, h.NCols}).Write(data); err != nil {
			return fmt.Errorf("output: writing %s: %v", v, err)
		}
	}
	return nil
}

// ReadTrace reads the trace of the named variable from a file written
// by WriteTrace. It returns one grid per step.
func ReadTrace(r cdf.ReaderWriterAt, name string) ([]*g2g.Grid, error) {
	f, err := cdf.Open(r)
	if err != nil {
		return nil, fmt.Errorf("output: opening trace file: %v", err)
	}
	shape := f.Header.Lengths(name)
	if len(shape) != 3 {
		return nil, fmt.Errorf("output: trace file has no variable %s", name)
	}
	rr := f.Reader(name, nil, nil)
	buf := rr.Zero(-1)
	if _, err := rr.Read(buf); err != nil {
		return nil, fmt.Errorf("output: reading %s: %v", name, err)
	}
	data := buf.([]float32)
	nt, rows, cols := shape[0], shape[1], shape[2]
	out := make([]*g2g.Grid, nt)
	for t := range out {
		g := g2g.NewGrid(rows, cols)
		for i := range g.Data {
			g.Data[i] = float64(data[t*rows*cols+i])
		}
		out[t] = g
	}
	return out, nil
}

func sortVariables(vars []g2g.Variable) {
	sort.Slice(vars, func(i, j int) bool { return vars[i] < vars[j] })
}
