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

// Package asc reads and writes rasters in the ESRI ASCII grid format.
package asc

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spatialmodel/g2g"
)

// DefaultNoData is the no-data value written when a Header does not
// set one.
const DefaultNoData = -9999

// Header holds the georeferencing of a raster. Row 0 of a grid is the
// northernmost row.
type Header struct {
	NCols, NRows         int
	XLLCorner, YLLCorner float64
	CellSize             float64
	NoData               float64
}

// NewHeader returns a header for a grid with the given shape, lower
// left corner and cell size.
func NewHeader(g *g2g.Grid, xll, yll, cellSize float64) Header {
	return Header{
		NCols: g.Cols, NRows: g.Rows,
		XLLCorner: xll, YLLCorner: yll,
		CellSize: cellSize,
		NoData:   DefaultNoData,
	}
}

// Matches reports whether g has the shape described by h.
func (h Header) Matches(g *g2g.Grid) bool {
	return g.Rows == h.NRows && g.Cols == h.NCols
}

// CellBounds returns the lower left and upper right corners of cell
// (row, col).
func (h Header) CellBounds(row, col int) (xmin, ymin, xmax, ymax float64) {
	xmin = h.XLLCorner + float64(col)*h.CellSize
	ymax = h.YLLCorner + float64(h.NRows-row)*h.CellSize
	return xmin, ymax - h.CellSize, xmin + h.CellSize, ymax
}

// Read reads a raster. No-data cells are returned as NaN.
func Read(r io.Reader) (*g2g.Grid, Header, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	sc.Split(bufio.ScanWords)

	var h Header
	h.NoData = math.NaN()
	var center bool
	seen := make(map[string]bool)
	var first string
	for {
		if !sc.Scan() {
			return nil, h, fmt.Errorf("asc: unexpected end of header: %v", sc.Err())
		}
		key := strings.ToLower(sc.Text())
		if _, err := strconv.ParseFloat(key, 64); err == nil {
			first = key
			break
		}
		if !sc.Scan() {
			return nil, h, fmt.Errorf("asc: missing value for %s", key)
		}
		val := sc.Text()
		var err error
		switch key {
		case "ncols":
			h.NCols, err = strconv.Atoi(val)
		case "nrows":
			h.NRows, err = strconv.Atoi(val)
		case "xllcorner", "xllcenter":
			h.XLLCorner, err = strconv.ParseFloat(val, 64)
			center = key == "xllcenter"
		case "yllcorner", "yllcenter":
			h.YLLCorner, err = strconv.ParseFloat(val, 64)
		case "cellsize":
			h.CellSize, err = strconv.ParseFloat(val, 64)
		case "nodata_value":
			h.NoData, err = strconv.ParseFloat(val, 64)
		default:
			return nil, h, fmt.Errorf("asc: unknown header key %q", key)
		}
		if err != nil {
			return nil, h, fmt.Errorf("asc: header %s: %v", key, err)
		}
		seen[key] = true
	}
	if !seen["ncols"] || !seen["nrows"] || h.NCols <= 0 || h.NRows <= 0 {
		return nil, h, fmt.Errorf("asc: invalid raster size %dx%d", h.NRows, h.NCols)
	}
	if center {
		h.XLLCorner -= h.CellSize / 2
		h.YLLCorner -= h.CellSize / 2
	}

	g := g2g.NewGrid(h.NRows, h.NCols)
	for i := range g.Data {
		var tok string
		if i == 0 {
			tok = first
		} else {
			if !sc.Scan() {
				if err := sc.Err(); err != nil {
					return nil, h, fmt.Errorf("asc: %v", err)
				}
				return nil, h, fmt.Errorf("asc: got %d values; want %d", i, len(g.Data))
			}
			tok = sc.Text()
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, h, fmt.Errorf("asc: value %d: %v", i, err)
		}
		if v == h.NoData {
			v = math.NaN()
		}
		g.Data[i] = v
	}
	if math.IsNaN(h.NoData) {
		h.NoData = DefaultNoData
	}
	return g, h, nil
}

// ReadFile reads the raster at path.
func ReadFile(path string) (*g2g.Grid, Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Header{}, err
	}
	defer f.Close()
	g, h, err := Read(f)
	if err != nil {
		return nil, h, fmt.Errorf("%v (%s)", err, path)
	}
	return g, h, nil
}

// Write writes g with header h. NaN and infinite values are written
// as h.NoData.
func Write(w io.Writer, g *g2g.Grid, h Header) error {
	if !h.Matches(g) {
		return fmt.Errorf("asc: header is %dx%d but grid is %dx%d", h.NRows, h.NCols, g.Rows, g.Cols)
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "ncols %d\nnrows %d\n", h.NCols, h.NRows)
	fmt.Fprintf(bw, "xllcorner %s\nyllcorner %s\n", format(h.XLLCorner), format(h.YLLCorner))
	fmt.Fprintf(bw, "cellsize %s\nNODATA_value %s\n", format(h.CellSize), format(h.NoData))
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			if c > 0 {
				bw.WriteByte(' ')
			}
			v := g.At(r, c)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				v = h.NoData
			}
			bw.WriteString(format(v))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteFile writes g to path.
func WriteFile(path string, g *g2g.Grid, h Header) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, g, h); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
