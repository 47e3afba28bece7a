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
	"math"
	"strings"

	"github.com/BurntSushi/toml"
)

// ParameterRow is one row of a parameter table: the value used for
// simulation and its plausible range.
type ParameterRow struct {
	Name          string
	Set, Min, Max float64
}

// ParameterTable is a set of reference parameter values.
type ParameterTable []ParameterRow

// ReadParameterTable reads a semicolon-separated table with the columns
// Parameter, Set, Min and Max. Rows that the simulation does not use,
// such as w and hmax, are kept.
func ReadParameterTable(r io.Reader) (ParameterTable, error) {
	cr := newCSVReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("g2g: reading parameter table: %v", err)
	}
	if len(rows) == 0 {
		return nil, configErr("params", nil, ErrMissingInput, "empty file")
	}
	idx := headerIndex(rows[0])
	for _, c := range []string{"Parameter", "Set", "Min", "Max"} {
		if _, ok := idx[c]; !ok {
			return nil, configErr("params", c, ErrMissingInput, "missing column")
		}
	}
	var pt ParameterTable
	for l, row := range rows[1:] {
		if len(row) < len(rows[0]) {
			return nil, fmt.Errorf("g2g: parameter table line %d is too short", l+2)
		}
		pr := ParameterRow{Name: strings.TrimSpace(row[idx["Parameter"]])}
		for _, c := range []struct {
			name string
			v    *float64
		}{{"Set", &pr.Set}, {"Min", &pr.Min}, {"Max", &pr.Max}} {
			if *c.v, err = parseFloat(row[idx[c.name]]); err != nil {
				return nil, fmt.Errorf("g2g: parameter %s, column %s: %v", pr.Name, c.name, err)
			}
		}
		pt = append(pt, pr)
	}
	return pt, nil
}

// WriteParameterTable writes pt in the format read by ReadParameterTable.
func WriteParameterTable(w io.Writer, pt ParameterTable) error {
	cw := csv.NewWriter(w)
	cw.Comma = Separator
	if err := cw.Write([]string{"Parameter", "Set", "Min", "Max"}); err != nil {
		return err
	}
	for _, p := range pt {
		if err := cw.Write([]string{p.Name, formatFloat(p.Set), formatFloat(p.Min), formatFloat(p.Max)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Lookup returns the row for the named parameter.
func (pt ParameterTable) Lookup(name string) (ParameterRow, bool) {
	for _, p := range pt {
		if p.Name == name {
			return p, true
		}
	}
	return ParameterRow{}, false
}

// Parameters returns the simulation parameters from the Set column.
// lambda is optional; when it is missing, Lamb is NaN and must be
// resolved with ResolveDefaults. Qt0 is also left unset, and Latitude
// and Scale are zero.
func (pt ParameterTable) Parameters() (Parameters, error) {
	get := func(name string) (float64, error) {
		p, ok := pt.Lookup(name)
		if !ok {
			return 0, configErr("params", name, ErrMissingInput, "parameter not in table")
		}
		return p.Set, nil
	}
	p := Parameters{Lamb: math.NaN(), Qt0: math.NaN()}
	if l, ok := pt.Lookup("lambda"); ok {
		p.Lamb = l.Set
	}
	for _, s := range []struct {
		name string
		v    *float64
	}{{"m", &p.M}, {"qo", &p.Qo}, {"c", &p.C}, {"k", &p.K}, {"n", &p.N}} {
		v, err := get(s.name)
		if err != nil {
			return p, err
		}
		*s.v = v
	}
	for _, f := range []struct {
		name string
		f    *Field
	}{{"cpmax", &p.CPMax}, {"sfmax", &p.SFMax}, {"roots", &p.Roots},
		{"ksat", &p.KSat}, {"rho", &p.Rho}} {
		v, err := get(f.name)
		if err != nil {
			return p, err
		}
		*f.f = Uniform(v)
	}
	return p, nil
}

// Table returns the scalar parameters of p as a table with Min and
// Max equal to Set. Spatial parameters report their reference value.
func (p *Parameters) Table() ParameterTable {
	row := func(name string, v float64) ParameterRow {
		return ParameterRow{Name: name, Set: v, Min: v, Max: v}
	}
	return ParameterTable{
		row("m", p.M), row("lambda", p.Lamb), row("qo", p.Qo),
		row("cpmax", p.CPMax.Value), row("sfmax", p.SFMax.Value),
		row("roots", p.Roots.Value), row("ksat", p.KSat.Value),
		row("rho", p.Rho.Value), row("c", p.C), row("k", p.K), row("n", p.N),
		row("qt0", p.Qt0), row("lat", p.Latitude), row("scale", float64(p.Scale)),
	}
}

// parameterFile is the TOML representation of Parameters.
type parameterFile struct {
	M      float64  `toml:"m"`
	Lambda *float64 `toml:"lambda"`
	Qo     float64  `toml:"qo"`
	Qt0    *float64 `toml:"qt0"`
	CPMax  float64  `toml:"cpmax"`
	SFMax  float64  `toml:"sfmax"`
	Roots  float64  `toml:"roots"`
	KSat   float64  `toml:"ksat"`
	Rho    float64  `toml:"rho"`
	C      float64  `toml:"c"`
	K      float64  `toml:"k"`
	N      float64  `toml:"n"`
	Lat    float64  `toml:"lat"`
	Scale  int      `toml:"scale"`
}

// DecodeParametersTOML reads parameters from a TOML document such as
//	m = 5.0
//	qo = 10.0
//	cpmax = 5.0
// Unknown keys are an error. lambda and qt0 are optional and are left
// for ResolveDefaults when missing.
func DecodeParametersTOML(r io.Reader) (Parameters, error) {
	var f parameterFile
	md, err := toml.DecodeReader(r, &f)
	if err != nil {
		return Parameters{}, fmt.Errorf("g2g: decoding parameters: %v", err)
	}
	if u := md.Undecoded(); len(u) > 0 {
		return Parameters{}, configErr("params", u[0].String(), ErrUnknownVariable, "unknown parameter")
	}
	p := Parameters{
		CPMax: Uniform(f.CPMax), SFMax: Uniform(f.SFMax), Roots: Uniform(f.Roots),
		KSat: Uniform(f.KSat), Rho: Uniform(f.Rho),
		Qo: f.Qo, M: f.M, C: f.C, K: f.K, N: f.N,
		Lamb: math.NaN(), Qt0: math.NaN(),
		Latitude: f.Lat, Scale: f.Scale,
	}
	if f.Lambda != nil {
		p.Lamb = *f.Lambda
	}
	if f.Qt0 != nil {
		p.Qt0 = *f.Qt0
	}
	return p, nil
}

// ResolveDefaults fills the parameters that may be derived from others:
// a NaN Lamb becomes the basin mean wetness index, a NaN Qt0 becomes
// qo/100 and a zero Scale becomes DefaultScale.
func (p *Parameters) ResolveDefaults(twi, basin *Grid) {
	if math.IsNaN(p.Lamb) && twi != nil && basin != nil && twi.SameShape(basin) {
		p.Lamb = MeanTWI(twi, basin)
	}
	if math.IsNaN(p.Qt0) {
		p.Qt0 = p.Qo / 100
	}
	if p.Scale == 0 {
		p.Scale = DefaultScale
	}
}

// MeanTWI returns the basin-weighted mean wetness index, ignoring
// cells with non-finite values.
func MeanTWI(twi, basin *Grid) float64 {
	var x, w []float64
	for i, t := range twi.Data {
		b := basin.Data[i]
		if math.IsNaN(t) || math.IsInf(t, 0) || math.IsNaN(b) || b <= 0 {
			continue
		}
		x = append(x, t)
		w = append(w, b)
	}
	if len(x) == 0 {
		return math.NaN()
	}
	return WeightedMean(x, w)
}
