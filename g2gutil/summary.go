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
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/spatialmodel/g2g"
)

// ColumnSummary holds summary statistics of one series column.
type ColumnSummary struct {
	Name                        string
	Mean, StdDev, Min, Max, Sum float64
}

// Summarize returns summary statistics of every column of s.
func Summarize(s *g2g.Series) []ColumnSummary {
	if s.Len() == 0 {
		return nil
	}
	names := s.ColumnNames()
	out := make([]ColumnSummary, len(names))
	for i, n := range names {
		x, _ := s.Column(n)
		out[i] = ColumnSummary{
			Name: n,
			Mean: stats.StatsMean(x),
			Min:  stats.StatsMin(x),
			Max:  stats.StatsMax(x),
			Sum:  stats.StatsSum(x),
		}
		if len(x) > 1 {
			out[i].StdDev = stats.StatsSampleStandardDeviation(x)
		}
	}
	return out
}

// WriteSummary writes a table of summary statistics to w.
func WriteSummary(w io.Writer, sum []ColumnSummary) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Column\tMean\tStdDev\tMin\tMax\tSum\t")
	for _, c := range sum {
		fmt.Fprintf(tw, "%s\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\t\n", c.Name, c.Mean, c.StdDev, c.Min, c.Max, c.Sum)
	}
	return tw.Flush()
}
