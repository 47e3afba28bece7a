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
	"strconv"

	"github.com/spatialmodel/g2g"
	"github.com/tealeg/xlsx"
)

// Sheet names used by WriteXLSX.
const (
	SeriesSheet     = "series"
	ParametersSheet = "parameters"
)

// WriteXLSX writes the series and, if pt is not empty, the parameter
// table to an Excel workbook at path.
func WriteXLSX(path string, s *g2g.Series, pt g2g.ParameterTable) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(SeriesSheet)
	if err != nil {
		return fmt.Errorf("output: %v", err)
	}
	names := s.ColumnNames()
	header := sheet.AddRow()
	header.AddCell().SetString("Date")
	cols := make([][]float64, len(names))
	for i, n := range names {
		header.AddCell().SetString(n)
		cols[i], _ = s.Column(n)
	}
	for t, d := range s.Date {
		row := sheet.AddRow()
		row.AddCell().SetString(d.Format(g2g.DateFormat))
		for _, c := range cols {
			row.AddCell().SetFloat(c[t])
		}
	}

	if len(pt) > 0 {
		sheet, err = file.AddSheet(ParametersSheet)
		if err != nil {
			return fmt.Errorf("output: %v", err)
		}
		header := sheet.AddRow()
		for _, h := range []string{"Parameter", "Set", "Min", "Max"} {
			header.AddCell().SetString(h)
		}
		for _, p := range pt {
			row := sheet.AddRow()
			row.AddCell().SetString(p.Name)
			row.AddCell().SetFloat(p.Set)
			row.AddCell().SetFloat(p.Min)
			row.AddCell().SetFloat(p.Max)
		}
	}
	if err := file.Save(path); err != nil {
		return fmt.Errorf("output: saving %s: %v", path, err)
	}
	return nil
}

// ReadXLSXColumn returns the named column of the series sheet of a
// workbook written by WriteXLSX.
func ReadXLSXColumn(path, name string) ([]float64, error) {
	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("output: opening %s: %v", path, err)
	}
	sheet, ok := file.Sheet[SeriesSheet]
	if !ok || len(sheet.Rows) == 0 {
		return nil, fmt.Errorf("output: %s has no %s sheet", path, SeriesSheet)
	}
	col := -1
	for j, c := range sheet.Rows[0].Cells {
		if c.Value == name {
			col = j
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("output: %s has no column %s", path, name)
	}
	out := make([]float64, 0, len(sheet.Rows)-1)
	for i, row := range sheet.Rows[1:] {
		if col >= len(row.Cells) {
			return nil, fmt.Errorf("output: row %d of %s is too short", i+2, path)
		}
		v, err := strconv.ParseFloat(row.Cells[col].Value, 64)
		if err != nil {
			return nil, fmt.Errorf("output: row %d of %s: %v", i+2, path, err)
		}
		out = append(out, v)
	}
	return out, nil
}
