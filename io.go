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
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// DateFormat is the layout of dates in series files.
const DateFormat = "2006-01-02"

// Separator is the field separator of series and parameter files.
const Separator = ';'

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = Separator
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	return cr
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateFormat, "2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("g2g: invalid date %q", s)
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// ReadForcing reads a semicolon-separated forcing series with the
// columns Date, P and T, and optionally IRA and IRI. Other columns
// are ignored.
func ReadForcing(r io.Reader) ([]Record, error) {
	cr := newCSVReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("g2g: reading series header: %v", err)
	}
	idx := headerIndex(header)
	for _, c := range []string{"Date", "P", "T"} {
		if _, ok := idx[c]; !ok {
			return nil, configErr("series", c, ErrMissingInput, "missing column")
		}
	}
	var recs []Record
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("g2g: reading series line %d: %v", line, err)
		}
		for _, c := range []string{"Date", "P", "T", "IRA", "IRI"} {
			if i, ok := idx[c]; ok && i >= len(row) {
				return nil, configErr("series", c, ErrMissingInput, "no value on line %d", line)
			}
		}
		var rec Record
		if rec.Date, err = parseDate(row[idx["Date"]]); err != nil {
			return nil, fmt.Errorf("%v on line %d", err, line)
		}
		for _, c := range []struct {
			name string
			v    *float64
		}{{"P", &rec.P}, {"T", &rec.T}, {"IRA", &rec.IRA}, {"IRI", &rec.IRI}} {
			i, ok := idx[c.name]
			if !ok {
				continue
			}
			if *c.v, err = parseFloat(row[i]); err != nil {
				return nil, fmt.Errorf("g2g: series line %d, column %s: %v", line, c.name, err)
			}
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteSeries writes s as a semicolon-separated table with a Date
// column followed by every numeric column.
func WriteSeries(w io.Writer, s *Series) error {
	cw := csv.NewWriter(w)
	cw.Comma = Separator
	names := s.ColumnNames()
	cols := make([][]float64, len(names))
	for i, n := range names {
		cols[i], _ = s.Column(n)
	}
	if err := cw.Write(append([]string{"Date"}, names...)); err != nil {
		return err
	}
	row := make([]string, len(names)+1)
	for t := 0; t < s.Len(); t++ {
		row[0] = s.Date[t].Format(DateFormat)
		for i, c := range cols {
			row[i+1] = formatFloat(c[t])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadSeries reads a table written by WriteSeries. Columns that are
// not simulation variables are kept as extra columns.
func ReadSeries(r io.Reader) (*Series, error) {
	cr := newCSVReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("g2g: reading series: %v", err)
	}
	if len(rows) == 0 {
		return nil, configErr("series", nil, ErrMissingInput, "empty file")
	}
	header := rows[0]
	idx := headerIndex(header)
	di, ok := idx["Date"]
	if !ok {
		return nil, configErr("series", "Date", ErrMissingInput, "missing column")
	}
	s := NewSeries(len(rows) - 1)
	for j, h := range header {
		h = strings.TrimSpace(h)
		if j == di {
			continue
		}
		col, ok := s.Column(h)
		if !ok {
			col = make([]float64, s.Len())
			s.AddColumn(h, col)
		}
		for t, row := range rows[1:] {
			if j >= len(row) {
				return nil, fmt.Errorf("g2g: series line %d is too short", t+2)
			}
			if col[t], err = parseFloat(row[j]); err != nil {
				return nil, fmt.Errorf("g2g: series line %d, column %s: %v", t+2, h, err)
			}
		}
	}
	for t, row := range rows[1:] {
		if di >= len(row) {
			return nil, fmt.Errorf("g2g: series line %d is too short", t+2)
		}
		if s.Date[t], err = parseDate(row[di]); err != nil {
			return nil, fmt.Errorf("%v on line %d", err, t+2)
		}
	}
	return s, nil
}
