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

package asc

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spatialmodel/g2g"
)

func TestReadFile(t *testing.T) {
	g, h, err := ReadFile("testdata/twi.asc")
	if err != nil {
		t.Fatal(err)
	}
	want := Header{NCols: 4, NRows: 3, XLLCorner: 500000, YLLCorner: 6700000, CellSize: 30, NoData: -9999}
	if h != want {
		t.Errorf("header = %+v; want %+v", h, want)
	}
	if g.At(1, 3) != 9.5 || g.At(2, 0) != 5.5 {
		t.Errorf("values = %v", g.Data)
	}
	if !math.IsNaN(g.At(0, 3)) {
		t.Errorf("no-data cell = %g; want NaN", g.At(0, 3))
	}
}

func TestRoundTrip(t *testing.T) {
	g, _ := g2g.GridFromRows([][]float64{{1.25, math.NaN()}, {-3, 1e6}})
	h := NewHeader(g, 10, 20, 5)
	path := filepath.Join(t.TempDir(), "g.asc")
	if err := WriteFile(path, g, h); err != nil {
		t.Fatal(err)
	}
	g2, h2, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if h2 != h {
		t.Errorf("header = %+v; want %+v", h2, h)
	}
	for i, v := range g.Data {
		if v != g2.Data[i] && !(math.IsNaN(v) && math.IsNaN(g2.Data[i])) {
			t.Errorf("value %d = %g; want %g", i, g2.Data[i], v)
		}
	}
}

func TestCellCenterHeader(t *testing.T) {
	in := "NCOLS 2\nNROWS 1\nXLLCENTER 15\nYLLCENTER 25\nCELLSIZE 10\n1 2\n"
	g, h, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if h.XLLCorner != 10 || h.YLLCorner != 20 || h.NoData != DefaultNoData {
		t.Errorf("header = %+v", h)
	}
	if g.Len() != 2 {
		t.Errorf("len = %d", g.Len())
	}
	xmin, ymin, xmax, ymax := h.CellBounds(0, 1)
	if xmin != 20 || ymin != 20 || xmax != 30 || ymax != 30 {
		t.Errorf("bounds = %g %g %g %g", xmin, ymin, xmax, ymax)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name, in string
	}{
		{"short", "ncols 2\nnrows 2\nxllcorner 0\nyllcorner 0\ncellsize 1\n1 2 3\n"},
		{"size", "ncols 0\nnrows 2\ncellsize 1\n1 2\n"},
		{"key", "ncols 1\nnrows 1\nfoo 3\n1\n"},
		{"value", "ncols 1\nnrows 1\ncellsize 1\nx\n"},
		{"empty", ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, _, err := Read(strings.NewReader(test.in)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestWriteShape(t *testing.T) {
	g := g2g.NewGrid(2, 2)
	var buf bytes.Buffer
	if err := Write(&buf, g, Header{NRows: 3, NCols: 2}); err == nil {
		t.Error("mismatched header should fail")
	}
}
