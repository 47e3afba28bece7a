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

package g2gutil

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/spatialmodel/g2g"
)

func TestSummarize(t *testing.T) {
	s := g2g.NewSeries(3)
	for i := range s.Date {
		s.Date[i] = time.Date(2020, 1, i+1, 0, 0, 0, 0, time.UTC)
		s.T[i] = float64(10 * (i + 1))
		s.Values(g2g.VarP)[i] = float64(i + 1)
	}
	s.AddColumn("X", []float64{4, 4, 4})

	sum := Summarize(s)
	if len(sum) != len(s.ColumnNames()) {
		t.Fatalf("%d summaries for %d columns", len(sum), len(s.ColumnNames()))
	}
	want := []ColumnSummary{
		{Name: "P", Mean: 2, StdDev: 1, Min: 1, Max: 3, Sum: 6},
		{Name: "T", Mean: 20, StdDev: 10, Min: 10, Max: 30, Sum: 60},
	}
	for i, w := range want {
		g := sum[i]
		if g.Name != w.Name || different(g.Mean, w.Mean) || different(g.StdDev, w.StdDev) ||
			g.Min != w.Min || g.Max != w.Max || different(g.Sum, w.Sum) {
			t.Errorf("summary %d = %+v; want %+v", i, g, w)
		}
	}
	x := sum[len(sum)-1]
	if x.Name != "X" || x.Mean != 4 || x.StdDev != 0 {
		t.Errorf("X summary = %+v", x)
	}

	var buf bytes.Buffer
	if err := WriteSummary(&buf, sum); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(sum)+1 {
		t.Errorf("%d lines; want %d", len(lines), len(sum)+1)
	}
	if !strings.Contains(lines[0], "StdDev") || !strings.HasPrefix(strings.TrimSpace(lines[1]), "P") {
		t.Errorf("summary table:\n%s", buf.String())
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if sum := Summarize(g2g.NewSeries(0)); sum != nil {
		t.Errorf("summary of empty series = %v", sum)
	}
}

func different(a, b float64) bool {
	return math.Abs(a-b) > 1e-9*math.Max(1, math.Abs(b))
}
