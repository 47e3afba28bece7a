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

import "time"

// Record is one day of forcing data.
type Record struct {
	Date time.Time
	P    float64 // precipitation [mm/d]
	T    float64 // mean air temperature [°C]
	IRA  float64 // aspersion irrigation [mm/d]
	IRI  float64 // drip or inundation irrigation [mm/d]
}

// Column is a named output column that is not a simulation variable,
// such as a derived expression.
type Column struct {
	Name   string
	Values []float64
}

// Series holds the basin-wide simulation output, one row per day.
type Series struct {
	Date []time.Time
	T    []float64

	values [numVariables][]float64

	// Extra holds additional columns, in output order.
	Extra []Column
}

// NewSeries allocates a series of length n.
func NewSeries(n int) *Series {
	s := &Series{
		Date: make([]time.Time, n),
		T:    make([]float64, n),
	}
	for v := range s.values {
		s.values[v] = make([]float64, n)
	}
	return s
}

// newSeriesFromForcing copies the forcing records into a new series.
// The records are not modified.
func newSeriesFromForcing(forcing []Record) *Series {
	s := NewSeries(len(forcing))
	for t, r := range forcing {
		s.Date[t] = r.Date
		s.T[t] = r.T
		s.values[VarP][t] = r.P
		s.values[VarIRA][t] = r.IRA
		s.values[VarIRI][t] = r.IRI
	}
	return s
}

// Len returns the number of rows in the series.
func (s *Series) Len() int { return len(s.Date) }

// Values returns the column of variable v. The returned slice
// is shared with the series.
func (s *Series) Values(v Variable) []float64 { return s.values[v] }

// Column returns the column with the given name: "T", a variable
// name or an extra column name.
func (s *Series) Column(name string) ([]float64, bool) {
	if name == "T" {
		return s.T, true
	}
	if v, ok := variablesByName[name]; ok {
		return s.values[v], true
	}
	for _, c := range s.Extra {
		if c.Name == name {
			return c.Values, true
		}
	}
	return nil, false
}

// ColumnNames returns the names of all numeric columns in output order.
func (s *Series) ColumnNames() []string {
	names := []string{"P", "T"}
	for v := Variable(0); v < numVariables; v++ {
		if v == VarP {
			continue
		}
		names = append(names, v.String())
	}
	for _, c := range s.Extra {
		names = append(names, c.Name)
	}
	return names
}

// AddColumn appends an extra column, replacing any extra column with
// the same name.
func (s *Series) AddColumn(name string, values []float64) {
	for i, c := range s.Extra {
		if c.Name == name {
			s.Extra[i].Values = values
			return
		}
	}
	s.Extra = append(s.Extra, Column{Name: name, Values: values})
}
