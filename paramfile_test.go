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
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
)

const paramTable = `Parameter;Set;Min;Max
m;5;1;50
lambda;7;2;15
qo;10;1;30
w;1;0;1
hmax;100;10;200
cpmax;5;0;10
sfmax;10;1;50
roots;10;1;1000
ksat;2;0.1;100
rho;0.1;0.01;1
c;100;10;200
k;1.5;1;10
n;2;1;5
`

func TestParameterTable(t *testing.T) {
	pt, err := ReadParameterTable(strings.NewReader(paramTable))
	if err != nil {
		t.Fatal(err)
	}
	if len(pt) != 13 {
		t.Fatalf("read %d rows", len(pt))
	}
	if row, ok := pt.Lookup("hmax"); !ok || row.Max != 200 {
		t.Errorf("hmax = %+v", row)
	}
	p, err := pt.Parameters()
	if err != nil {
		t.Fatal(err)
	}
	if p.M != 5 || p.Lamb != 7 || p.Qo != 10 || p.CPMax.Value != 5 || p.Rho.Value != 0.1 || p.N != 2 {
		t.Errorf("parameters = %+v", p)
	}
	if !math.IsNaN(p.Qt0) {
		t.Errorf("qt0 = %g; want unset", p.Qt0)
	}
	p.ResolveDefaults(nil, nil)
	if p.Qt0 != 0.1 || p.Scale != DefaultScale {
		t.Errorf("defaults: qt0=%g, scale=%d", p.Qt0, p.Scale)
	}

	var buf bytes.Buffer
	if err := WriteParameterTable(&buf, pt); err != nil {
		t.Fatal(err)
	}
	if buf.String() != paramTable {
		t.Errorf("written table differs:\n%s", buf.String())
	}
}

func TestParameterTableMissing(t *testing.T) {
	in := "Parameter;Set;Min;Max\nm;5;1;50\n"
	pt, err := ReadParameterTable(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := pt.Parameters(); !errors.Is(err, ErrMissingInput) {
		t.Errorf("error = %v; want ErrMissingInput", err)
	}
	if _, err := ReadParameterTable(strings.NewReader("Parameter;Set\nm;5\n")); !errors.Is(err, ErrMissingInput) {
		t.Errorf("missing columns: %v", err)
	}
}

func TestDecodeParametersTOML(t *testing.T) {
	const doc = `
m = 5.0
qo = 10.0
cpmax = 5.0
sfmax = 10.0
roots = 10.0
ksat = 2.0
rho = 0.1
c = 100.0
k = 1.5
n = 2.0
lat = -30.0
`
	p, err := DecodeParametersTOML(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	twi, _ := GridFromRows([][]float64{{4, 6, math.NaN()}})
	basin, _ := GridFromRows([][]float64{{1, 3, 1}})
	p.ResolveDefaults(twi, basin)
	if p.Lamb != 5.5 {
		t.Errorf("lambda = %g; want the basin mean 5.5", p.Lamb)
	}
	if p.Qt0 != 0.1 || p.Latitude != -30 || p.Scale != 1000 {
		t.Errorf("parameters = %+v", p)
	}
	if err := p.Validate(basin); err != nil {
		t.Error(err)
	}

	if _, err := DecodeParametersTOML(strings.NewReader("mm = 3.0\n")); !errors.Is(err, ErrUnknownVariable) {
		t.Errorf("unknown key: %v", err)
	}
}
