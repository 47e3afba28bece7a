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
	"fmt"
	"testing"

	"github.com/Knetic/govaluate"
)

func TestAddDerivedColumns(t *testing.T) {
	r, err := Simulate(scenarioInput())
	if err != nil {
		t.Fatal(err)
	}
	s := r.Series
	funcs := map[string]govaluate.ExpressionFunction{
		"double": unary("double", func(x float64) float64 { return 2 * x }),
	}
	exprs := map[string]string{
		"Qfast":   "Q - Qb",
		"Wet":     "VSA > 0",
		"DoubleP": "double(P)",
		"Capped":  "min(PET, 4.44)",
	}
	if err := AddDerivedColumns(s, exprs, funcs); err != nil {
		t.Fatal(err)
	}
	qfast, _ := s.Column("Qfast")
	capped, _ := s.Column("Capped")
	doubled, _ := s.Column("DoubleP")
	wet, _ := s.Column("Wet")
	q, qb, p := s.Values(VarQ), s.Values(VarQb), s.Values(VarP)
	for i := range qfast {
		if qfast[i] != q[i]-qb[i] {
			t.Errorf("Qfast[%d] = %g; want %g", i, qfast[i], q[i]-qb[i])
		}
		if capped[i] > 4.44 {
			t.Errorf("Capped[%d] = %g", i, capped[i])
		}
		if doubled[i] != 2*p[i] {
			t.Errorf("DoubleP[%d] = %g", i, doubled[i])
		}
		if wet[i] != 0 && wet[i] != 1 {
			t.Errorf("Wet[%d] = %g", i, wet[i])
		}
	}
	names := s.ColumnNames()
	if got := fmt.Sprint(names[len(names)-4:]); got != "[Capped DoubleP Qfast Wet]" {
		t.Errorf("derived columns = %s", got)
	}
}

func TestAddDerivedColumnsErrors(t *testing.T) {
	s := newSeriesFromForcing(makeForcing([]float64{1, 2}, []float64{10, 10}))
	tests := []struct {
		name  string
		exprs map[string]string
		err   error
	}{
		{name: "unknown", exprs: map[string]string{"X": "P + Nope"}, err: ErrUnknownVariable},
		{name: "existing", exprs: map[string]string{"Qb": "P"}, err: ErrParameterDomain},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := AddDerivedColumns(s, test.exprs, nil)
			if !errors.Is(err, test.err) {
				t.Errorf("error = %v; want %v", err, test.err)
			}
		})
	}
	if err := AddDerivedColumns(s, map[string]string{"X": "P +"}, nil); err == nil {
		t.Error("a malformed expression should fail")
	}
}

func TestDeriveColumnsManipulator(t *testing.T) {
	s := NewSimulation(scenarioInput())
	s.CleanupFuncs = append(s.CleanupFuncs, DeriveColumns(map[string]string{"Wet": "Q > Qb"}, nil))
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	if err := s.Cleanup(); err != nil {
		t.Fatal(err)
	}
	wet, ok := s.Series.Column("Wet")
	if !ok {
		t.Fatal("Wet column missing")
	}
	q, qb := s.Series.Values(VarQ), s.Series.Values(VarQb)
	for i := range q {
		if (q[i] > qb[i]) != (wet[i] == 1) {
			t.Errorf("Wet[%d] = %g for Q = %g, Qb = %g", i, wet[i], q[i], qb[i])
		}
	}
}
