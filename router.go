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

import "math"

// NashKernel returns the first size values of the impulse response of
// a cascade of n linear reservoirs with residence time k:
//	h(t) = (t/k)^(n-1) exp(-t/k) / (k Γ(n))
func NashKernel(size int, k, n float64) []float64 {
	h := make([]float64, size)
	g := math.Gamma(n)
	for t := range h {
		x := float64(t) / k
		h[t] = math.Pow(x, n-1) * math.Exp(-x) / (k * g)
	}
	return h
}

// NashCascade routes the runoff series q through a Nash cascade of n
// linear reservoirs with residence time k, returning a series of the
// same length. n < 1 is treated as 1.
func NashCascade(q []float64, k, n float64) []float64 {
	if n < 1 {
		n = 1
	}
	size := len(q)
	h := NashKernel(size, k, n)
	qs := make([]float64, size)
	for t, v := range q {
		if v == 0 {
			continue
		}
		for i, hv := range h[:size-t] {
			qs[t+i] += v * hv
		}
	}
	return qs
}
