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
	"errors"
	"reflect"
	"testing"
)

func TestParseVariables(t *testing.T) {
	tests := []struct {
		in   string
		want []Variable
		err  error
	}{
		{in: "D-Qv-VSA", want: []Variable{VarD, VarQv, VarVSA}},
		{in: "Cp", want: []Variable{VarCp}},
		{in: "", want: nil},
		{in: "D-D-Cp-D", want: []Variable{VarD, VarCp}},
		{in: " ET - Tpv ", want: []Variable{VarET, VarTpv}},
		{in: "D-Cpy", err: ErrUnknownVariable},
		{in: "D--Cp", err: ErrUnknownVariable},
		{in: "d", err: ErrUnknownVariable},
	}
	for _, test := range tests {
		got, err := ParseVariables(test.in)
		if test.err != nil {
			if !errors.Is(err, test.err) {
				t.Errorf("%q: error %v; want %v", test.in, err, test.err)
			}
			var ce *ConfigurationError
			if !errors.As(err, &ce) {
				t.Errorf("%q: error %T is not a *ConfigurationError", test.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: %v", test.in, err)
			continue
		}
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("%q: got %v; want %v", test.in, got, test.want)
		}
	}
}

func TestParseGridVariables(t *testing.T) {
	if _, err := ParseGridVariables("D-Q"); !errors.Is(err, ErrNotGridVariable) {
		t.Errorf("Q should not be a grid variable: %v", err)
	}
	vars, err := ParseGridVariables("R-RC-VSA")
	if err != nil {
		t.Fatal(err)
	}
	if FormatVariables(vars) != "R-RC-VSA" {
		t.Errorf("round trip gives %s", FormatVariables(vars))
	}
}

func TestVariableTable(t *testing.T) {
	stocks := map[Variable]bool{VarD: true, VarCp: true, VarSf: true, VarVz: true, VarVSA: true, VarRC: true}
	for _, v := range Variables() {
		if v.String() == "" || v.Description() == "" || v.Units() == "" {
			t.Errorf("variable %d is missing metadata", v)
		}
		if v.IsStock() != stocks[v] {
			t.Errorf("%s: IsStock = %v", v, v.IsStock())
		}
		p, err := ParseVariable(v.String())
		if err != nil || p != v {
			t.Errorf("%s does not parse to itself", v)
		}
		s := newState(1, 1, 1000)
		if (s.Grid(v) != nil) != v.IsGrid() {
			t.Errorf("%s: state grid and IsGrid disagree", v)
		}
	}
	if len(Variables()) != 28 {
		t.Errorf("have %d variables; want 28", len(Variables()))
	}
}
