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
	"math"
	"testing"
)

func TestScaledGridConversions(t *testing.T) {
	g, err := GridFromRows([][]float64{{1.2344, -0.5}, {0, 1000.0006}})
	if err != nil {
		t.Fatal(err)
	}
	s := Quantize(g, 1000)
	wantRaw := []int32{1234, -500, 0, 1000001}
	for i, w := range wantRaw {
		if s.Raw[i] != w {
			t.Errorf("raw[%d] = %d; want %d", i, s.Raw[i], w)
		}
	}
	back := s.ToGrid()
	for i, v := range g.Data {
		if absDifferent(back.Data[i], v, 0.5/1000) {
			t.Errorf("cell %d: %g != %g", i, back.Data[i], v)
		}
	}
	if s.Physical(1) != -0.5 {
		t.Errorf("Physical(1) = %g", s.Physical(1))
	}
}

func TestFixedSaturates(t *testing.T) {
	tests := []struct {
		in   float64
		want int32
	}{
		{in: math.NaN(), want: 0},
		{in: math.Inf(1), want: math.MaxInt32},
		{in: math.Inf(-1), want: math.MinInt32},
		{in: 2.5, want: 3},
		{in: -2.5, want: -3},
		{in: 2.4999, want: 2},
	}
	for _, test := range tests {
		if got := fixed(test.in); got != test.want {
			t.Errorf("fixed(%g) = %d; want %d", test.in, got, test.want)
		}
	}
}

func TestGridFromRowsRagged(t *testing.T) {
	if _, err := GridFromRows([][]float64{{1, 2}, {3}}); err == nil {
		t.Error("ragged rows should fail")
	}
}

func TestBasinMean(t *testing.T) {
	weights, _ := GridFromRows([][]float64{{1, 0}, {0.5, 0.5}})
	b := NewBasin(weights)
	s := NewScaledGrid(2, 2, 100)
	copy(s.Raw, []int32{200, 99900, 400, 600})
	// (2*1 + 4*0.5 + 6*0.5) / 2
	if got := b.Mean(s); absDifferent(got, 3.5, 1e-12) {
		t.Errorf("Mean = %g; want 3.5", got)
	}
	if got := b.MeanRaw(s); absDifferent(got, 350, 1e-9) {
		t.Errorf("MeanRaw = %g; want 350", got)
	}
	if got := WeightedMean([]float64{1, 2, 3}, nil); got != 2 {
		t.Errorf("unweighted mean = %g; want 2", got)
	}
}

func TestRoundTo(t *testing.T) {
	if got := roundTo(1.234567, 4); got != 1.2346 {
		t.Errorf("roundTo = %g", got)
	}
}
