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
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/ctessum/geom/encoding/shp"
	"github.com/spatialmodel/g2g"
	"github.com/spatialmodel/g2g/asc"
	"gonum.org/v1/plot/vg"
)

var day0 = time.Date(2021, time.March, 1, 0, 0, 0, 0, time.UTC)

// simulate runs a ten day simulation of a 2x3 basin with one cell
// outside the basin.
func simulate(t *testing.T) (*g2g.Result, asc.Header, *g2g.Input) {
	twi, _ := g2g.GridFromRows([][]float64{{3, 5, 7}, {6, 9, math.NaN()}})
	basin, _ := g2g.GridFromRows([][]float64{{1, 1, 1}, {1, 1, 0}})
	forcing := make([]g2g.Record, 10)
	for i := range forcing {
		forcing[i] = g2g.Record{Date: day0.AddDate(0, 0, i), T: 18}
	}
	forcing[0].P, forcing[3].P, forcing[4].P = 30, 12, 8
	in := &g2g.Input{
		Forcing: forcing,
		TWI:     twi,
		Basin:   basin,
		Params: g2g.Parameters{
			CPMax: g2g.Uniform(3), SFMax: g2g.Uniform(5), Roots: g2g.Uniform(50),
			Rho: g2g.Uniform(0.3), KSat: g2g.Uniform(4),
			Qo: 8, M: 6, Lamb: 6, C: 100, K: 2, N: 2,
			Qt0: 0.5, Latitude: 45, Scale: 1000,
		},
		TraceVars:     []g2g.Variable{g2g.VarVSA, g2g.VarD, g2g.VarInf},
		IntegrateVars: []g2g.Variable{g2g.VarR, g2g.VarInf, g2g.VarVz},
	}
	r, err := g2g.Simulate(in)
	if err != nil {
		t.Fatal(err)
	}
	return r, asc.NewHeader(twi, 1000, 2000, 25), in
}

func TestTraceRoundTrip(t *testing.T) {
	r, h, _ := simulate(t)
	f, err := os.Create(filepath.Join(t.TempDir(), "trace.nc"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := WriteTrace(f, r.Trace, r.Series.Date, h); err != nil {
		t.Fatal(err)
	}
	for _, v := range []g2g.Variable{g2g.VarD, g2g.VarInf} {
		grids, err := ReadTrace(f, v.String())
		if err != nil {
			t.Fatal(err)
		}
		if len(grids) != 10 {
			t.Fatalf("%s: read %d steps", v, len(grids))
		}
		for step, g := range grids {
			want := r.Trace[v][step]
			for i := range g.Data {
				if math.Abs(g.Data[i]-want.Physical(i)) > 1e-4*math.Max(1, math.Abs(want.Physical(i))) {
					t.Errorf("%s step %d cell %d: %g != %g", v, step, i, g.Data[i], want.Physical(i))
				}
			}
		}
	}
	if _, err := ReadTrace(f, "Qb"); err == nil {
		t.Error("reading an untraced variable should fail")
	}
}

func TestWriteTraceErrors(t *testing.T) {
	r, h, _ := simulate(t)
	f, err := os.Create(filepath.Join(t.TempDir(), "trace.nc"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := WriteTrace(f, r.Trace, r.Series.Date[:3], h); err == nil {
		t.Error("mismatched dates should fail")
	}
	h.NRows = 5
	if err := WriteTrace(f, r.Trace, r.Series.Date, h); err == nil {
		t.Error("mismatched header should fail")
	}
}

func TestWriteIntegrationASC(t *testing.T) {
	r, h, _ := simulate(t)
	dir := t.TempDir()
	paths, err := WriteIntegrationASC(dir, r.Integration, h)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 3 || filepath.Base(paths[0]) != "Vz.asc" {
		t.Fatalf("paths = %v", paths)
	}
	g, _, err := asc.ReadFile(filepath.Join(dir, "R.asc"))
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range r.Integration[g2g.VarR].Data {
		if g.Data[i] != v {
			t.Errorf("R[%d] = %g; want %g", i, g.Data[i], v)
		}
	}
}

func TestWriteIntegrationShapefile(t *testing.T) {
	r, h, in := simulate(t)
	path := filepath.Join(t.TempDir(), "integration.shp")
	if err := WriteIntegrationShapefile(path, r.Integration, in.Basin, h); err != nil {
		t.Fatal(err)
	}
	d, err := shp.NewDecoder(path)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	if n := d.AttributeCount(); n != 5 {
		t.Fatalf("shapefile has %d features; want 5 basin cells", n)
	}
	for i := 0; i < 5; i++ {
		g, fields, more := d.DecodeRowFields("row", "col", "Inf")
		if !more {
			t.Fatal("ran out of rows")
		}
		row, _ := strconv.Atoi(fields["row"])
		col, _ := strconv.Atoi(fields["col"])
		inf, err := strconv.ParseFloat(fields["Inf"], 64)
		if err != nil {
			t.Fatal(err)
		}
		if want := r.Integration[g2g.VarInf].At(row, col); math.Abs(inf-want) > 1e-6 {
			t.Errorf("Inf at (%d, %d) = %g; want %g", row, col, inf, want)
		}
		b := g.Bounds()
		xmin, ymin, _, _ := h.CellBounds(row, col)
		if b.Min.X != xmin || b.Min.Y != ymin {
			t.Errorf("cell (%d, %d) bounds = %v", row, col, b)
		}
	}
	if err := d.Error(); err != nil {
		t.Fatal(err)
	}
}

func TestWriteXLSX(t *testing.T) {
	r, _, in := simulate(t)
	path := filepath.Join(t.TempDir(), "series.xlsx")
	if err := WriteXLSX(path, r.Series, in.Params.Table()); err != nil {
		t.Fatal(err)
	}
	q, err := ReadXLSXColumn(path, "Q")
	if err != nil {
		t.Fatal(err)
	}
	want := r.Series.Values(g2g.VarQ)
	if len(q) != len(want) {
		t.Fatalf("read %d values; want %d", len(q), len(want))
	}
	for i := range q {
		if math.Abs(q[i]-want[i]) > 1e-9 {
			t.Errorf("Q[%d] = %g; want %g", i, q[i], want[i])
		}
	}
	if _, err := ReadXLSXColumn(path, "nope"); err == nil {
		t.Error("a missing column should fail")
	}
}

func TestStore(t *testing.T) {
	r, _, in := simulate(t)
	r.Series.AddColumn("Qfast", r.Series.Values(g2g.VarQs))
	ctx := context.Background()
	st, err := OpenStore(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	runs := []Run{
		{ID: "a1", Name: "first", Created: day0, Params: in.Params.Table()},
		{ID: "b2", Name: "second", Created: day0.Add(time.Hour)},
	}
	for _, run := range runs {
		if err := st.Save(ctx, run, r.Series); err != nil {
			t.Fatal(err)
		}
	}
	// Saving again replaces the run.
	if err := st.Save(ctx, runs[0], r.Series); err != nil {
		t.Fatal(err)
	}
	got, err := st.Runs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "a1" || got[1].Name != "second" || !got[0].Created.Equal(day0) {
		t.Fatalf("runs = %+v", got)
	}
	if row, ok := got[0].Params.Lookup("qo"); !ok || row.Set != 8 {
		t.Errorf("stored qo = %+v", row)
	}
	s, err := st.Series(ctx, "a1")
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != r.Series.Len() || !s.Date[9].Equal(day0.AddDate(0, 0, 9)) {
		t.Fatalf("loaded %d rows", s.Len())
	}
	for _, name := range r.Series.ColumnNames() {
		a, _ := r.Series.Column(name)
		b, ok := s.Column(name)
		if !ok {
			t.Errorf("column %s missing", name)
			continue
		}
		for i := range a {
			if a[i] != b[i] {
				t.Errorf("%s[%d] = %g; want %g", name, i, b[i], a[i])
			}
		}
	}
	if _, err := st.Series(ctx, "zz"); err == nil {
		t.Error("loading a missing run should fail")
	}
}

func TestPlots(t *testing.T) {
	r, _, in := simulate(t)
	dir := t.TempDir()
	p, err := Hydrograph(r.Series)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "hydrograph.png")
	if err := SavePNG(p, path, 6*vg.Inch, 4*vg.Inch); err != nil {
		t.Fatal(err)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Errorf("hydrograph not written: %v", err)
	}

	var buf bytes.Buffer
	vars := []g2g.Variable{g2g.VarD, g2g.VarVz, g2g.VarSf, g2g.VarVSA}
	if err := WritePanelPNG(&buf, r.Series, vars, 6*vg.Inch, 8*vg.Inch); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("panel is not a PNG image")
	}

	frames, err := g2g.DeficitSensitivity(g2g.SensitivityInput{
		TWI: in.TWI, Basin: in.Basin, Param: g2g.SensitivityM,
		Low: 3, High: 12, Lamb: math.NaN(), DMax: 50, Steps: 11,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := SensitivityPlot(frames, [2]string{"m = 3", "m = 12"}); err != nil {
		t.Fatal(err)
	}
	if _, err := Hydrograph(g2g.NewSeries(0)); err == nil {
		t.Error("plotting an empty series should fail")
	}
}
