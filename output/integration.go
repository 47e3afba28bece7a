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
	"math"
	"os"
	"path/filepath"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
	"github.com/spatialmodel/g2g"
	"github.com/spatialmodel/g2g/asc"
)

// WriteIntegrationASC writes each integrated grid to dir as
// <variable>.asc and returns the paths of the files written.
func WriteIntegrationASC(dir string, integ map[g2g.Variable]*g2g.Grid, h asc.Header) ([]string, error) {
	vars := integrationVariables(integ)
	paths := make([]string, 0, len(vars))
	for _, v := range vars {
		path := filepath.Join(dir, v.String()+".asc")
		if err := asc.WriteFile(path, integ[v], h); err != nil {
			return paths, fmt.Errorf("output: writing integration of %s: %v", v, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// CellPolygon returns the outline of cell (row, col) of h.
func CellPolygon(h asc.Header, row, col int) geom.Polygon {
	xmin, ymin, xmax, ymax := h.CellBounds(row, col)
	return geom.Polygon{{
		geom.Point{X: xmin, Y: ymin},
		geom.Point{X: xmax, Y: ymin},
		geom.Point{X: xmax, Y: ymax},
		geom.Point{X: xmin, Y: ymax},
		geom.Point{X: xmin, Y: ymin},
	}}
}

// WriteIntegrationShapefile writes a polygon shapefile with one
// feature per basin cell, i.e. each cell with a positive weight in
// basin. Each feature carries its row and column and one attribute per
// integrated variable.
func WriteIntegrationShapefile(path string, integ map[g2g.Variable]*g2g.Grid, basin *g2g.Grid, h asc.Header) error {
	if !h.Matches(basin) {
		return fmt.Errorf("output: basin grid does not match the raster header")
	}
	vars := integrationVariables(integ)
	for _, v := range vars {
		if !integ[v].SameShape(basin) {
			return fmt.Errorf("output: integration of %s does not match the basin grid", v)
		}
	}
	base := path[:len(path)-len(filepath.Ext(path))]
	for _, ext := range []string{".shp", ".prj", ".dbf", ".shx"} {
		os.Remove(base + ext)
	}

	fields := make([]goshp.Field, 2, 2+len(vars))
	fields[0] = goshp.NumberField("row", 10)
	fields[1] = goshp.NumberField("col", 10)
	for _, v := range vars {
		fields = append(fields, goshp.FloatField(v.String(), 20, 6))
	}
	e, err := shp.NewEncoderFromFields(path, goshp.POLYGON, fields...)
	if err != nil {
		return fmt.Errorf("output: creating shapefile: %v", err)
	}
	data := make([]interface{}, len(fields))
	for r := 0; r < basin.Rows; r++ {
		for c := 0; c < basin.Cols; c++ {
			if w := basin.At(r, c); !(w > 0) {
				continue
			}
			data[0], data[1] = r, c
			for k, v := range vars {
				x := integ[v].At(r, c)
				if math.IsNaN(x) || math.IsInf(x, 0) {
					x = h.NoData
				}
				data[k+2] = x
			}
			if err := e.EncodeFields(CellPolygon(h, r, c), data...); err != nil {
				e.Close()
				return fmt.Errorf("output: writing shapefile: %v", err)
			}
		}
	}
	e.Close()
	return nil
}

func integrationVariables(integ map[g2g.Variable]*g2g.Grid) []g2g.Variable {
	vars := make([]g2g.Variable, 0, len(integ))
	for v := range integ {
		vars = append(vars, v)
	}
	sortVariables(vars)
	return vars
}
