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

package g2g

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Grid is a two-dimensional array of physical values stored in
// row-major order.
type Grid struct {
	Rows, Cols int
	Data       []float64
}

// NewGrid returns a zero-valued grid with the given shape.
func NewGrid(rows, cols int) *Grid {
	return &Grid{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// GridFromRows creates a grid from a slice of rows. All rows must
// have the same length.
func GridFromRows(rows [][]float64) (*Grid, error) {
	if len(rows) == 0 {
		return NewGrid(0, 0), nil
	}
	g := NewGrid(len(rows), len(rows[0]))
	for i, r := range rows {
		if len(r) != g.Cols {
			return nil, fmt.Errorf("g2g: row %d has %d columns; expected %d", i, len(r), g.Cols)
		}
		copy(g.Data[i*g.Cols:(i+1)*g.Cols], r)
	}
	return g, nil
}

// Filled returns a grid with every cell set to v.
func Filled(rows, cols int, v float64) *Grid {
	g := NewGrid(rows, cols)
	for i := range g.Data {
		g.Data[i] = v
	}
	return g
}

// At returns the value at row i and column j.
func (g *Grid) At(i, j int) float64 { return g.Data[i*g.Cols+j] }

// Set sets the value at row i and column j.
func (g *Grid) Set(i, j int, v float64) { g.Data[i*g.Cols+j] = v }

// Len returns the number of cells in the grid.
func (g *Grid) Len() int { return len(g.Data) }

// SameShape reports whether g and o have the same dimensions.
func (g *Grid) SameShape(o *Grid) bool {
	return g.Rows == o.Rows && g.Cols == o.Cols
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	o := &Grid{Rows: g.Rows, Cols: g.Cols, Data: make([]float64, len(g.Data))}
	copy(o.Data, g.Data)
	return o
}

// Scale returns a copy of g with every cell multiplied by f.
func (g *Grid) Scale(f float64) *Grid {
	o := g.Clone()
	floats.Scale(f, o.Data)
	return o
}

// Sum returns the sum of all cells.
func (g *Grid) Sum() float64 { return floats.Sum(g.Data) }

// ScaledGrid is a fixed-point grid: each physical value is stored
// as round(value*Scale) in a 32-bit integer.
type ScaledGrid struct {
	Rows, Cols int
	Scale      int
	Raw        []int32
}

// NewScaledGrid returns a zero-valued fixed-point grid.
func NewScaledGrid(rows, cols, scale int) *ScaledGrid {
	return &ScaledGrid{Rows: rows, Cols: cols, Scale: scale, Raw: make([]int32, rows*cols)}
}

// Quantize converts a physical grid to fixed point.
func Quantize(g *Grid, scale int) *ScaledGrid {
	s := NewScaledGrid(g.Rows, g.Cols, scale)
	for i, v := range g.Data {
		s.SetPhysical(i, v)
	}
	return s
}

// fixed rounds a raw value to the nearest storable integer.
// NaN is stored as zero and out-of-range values saturate.
func fixed(v float64) int32 {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	}
	return int32(math.Round(v))
}

// Store sets cell i from a value already expressed in raw
// (scaled) units.
func (s *ScaledGrid) Store(i int, raw float64) { s.Raw[i] = fixed(raw) }

// SetPhysical sets cell i from a physical value.
func (s *ScaledGrid) SetPhysical(i int, v float64) { s.Raw[i] = fixed(v * float64(s.Scale)) }

// Physical returns the physical value of cell i.
func (s *ScaledGrid) Physical(i int) float64 {
	return float64(s.Raw[i]) / float64(s.Scale)
}

// Len returns the number of cells in the grid.
func (s *ScaledGrid) Len() int { return len(s.Raw) }

// ToGrid converts s to physical units.
func (s *ScaledGrid) ToGrid() *Grid {
	g := NewGrid(s.Rows, s.Cols)
	s.physicalInto(g.Data)
	return g
}

func (s *ScaledGrid) physicalInto(dst []float64) {
	f := 1 / float64(s.Scale)
	for i, v := range s.Raw {
		dst[i] = float64(v) * f
	}
}

// Clone returns a deep copy of s.
func (s *ScaledGrid) Clone() *ScaledGrid {
	o := &ScaledGrid{Rows: s.Rows, Cols: s.Cols, Scale: s.Scale, Raw: make([]int32, len(s.Raw))}
	copy(o.Raw, s.Raw)
	return o
}

// Fill sets every cell to the given raw value.
func (s *ScaledGrid) Fill(raw int32) {
	for i := range s.Raw {
		s.Raw[i] = raw
	}
}

// Bytes returns the memory used by the raw cell values.
func (s *ScaledGrid) Bytes() int { return 4 * len(s.Raw) }

// WeightedMean returns sum(x*w)/sum(w).
func WeightedMean(x, w []float64) float64 {
	return stat.Mean(x, w)
}

// Basin holds the weights used to compute basin-wide averages.
type Basin struct {
	Weights *Grid
	buf     []float64
}

// NewBasin creates a basin from a weight grid.
func NewBasin(weights *Grid) *Basin {
	return &Basin{Weights: weights, buf: make([]float64, weights.Len())}
}

// Mean returns the basin-weighted mean of g in physical units.
// Cells are reduced in row-major order.
func (b *Basin) Mean(g *ScaledGrid) float64 {
	g.physicalInto(b.buf)
	return stat.Mean(b.buf, b.Weights.Data)
}

// MeanRaw returns the basin-weighted mean of the raw values of g.
func (b *Basin) MeanRaw(g *ScaledGrid) float64 {
	for i, r := range g.Raw {
		b.buf[i] = float64(r)
	}
	return stat.Mean(b.buf, b.Weights.Data)
}

// MeanOf returns the basin-weighted mean of a physical grid.
func (b *Basin) MeanOf(g *Grid) float64 {
	return stat.Mean(g.Data, b.Weights.Data)
}

// roundTo rounds v to the given number of decimal places.
func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
