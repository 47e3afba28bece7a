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

	"gonum.org/v1/gonum/floats"
)

// Parameters that can be varied in a deficit sensitivity analysis.
const (
	SensitivityM    = "m"
	SensitivityLamb = "lamb"
	SensitivityTWI  = "twi"
)

// SensitivityInput configures DeficitSensitivity.
type SensitivityInput struct {
	TWI, Basin *Grid

	// TWI2 is the alternative wetness index map compared with TWI
	// when Param is SensitivityTWI.
	TWI2 *Grid

	// Param is the varied parameter: SensitivityM, SensitivityLamb
	// or SensitivityTWI.
	Param string

	// Low and High are the two compared values of Param. They are
	// ignored for SensitivityTWI.
	Low, High float64

	// M and Lamb are the values of the parameters that are not varied.
	// A NaN Lamb is replaced by the basin mean wetness index of each map.
	M, Lamb float64

	// DMax is the largest global deficit; Steps deficits are evaluated
	// evenly from 0 to DMax.
	DMax  float64
	Steps int

	// KeepGrids keeps the local deficit grids of every frame.
	KeepGrids bool
}

// SensitivityFrame holds the response of the two compared settings to
// one global deficit.
type SensitivityFrame struct {
	D float64

	// VSA is the saturated percentage of the basin.
	VSA [2]float64

	// Di is the basin mean local deficit [mm].
	Di [2]float64

	// Grids holds the local deficits if KeepGrids was set.
	Grids [2]*Grid
}

// DeficitSensitivity evaluates how the local deficit and the variable
// source area respond to the global deficit for two values of m, of
// lambda or two wetness index maps.
func DeficitSensitivity(in SensitivityInput) ([]SensitivityFrame, error) {
	if in.TWI == nil || in.Basin == nil {
		return nil, configErr("twi", nil, ErrMissingInput, "twi and basin grids are required")
	}
	if !in.TWI.SameShape(in.Basin) {
		return nil, configErr("twi", nil, ErrShapeMismatch, "twi and basin differ")
	}
	if in.Steps < 2 {
		return nil, configErr("sal_steps", in.Steps, ErrParameterDomain, "must be >= 2")
	}
	if !(in.DMax > 0) {
		return nil, configErr("sal_dmax", in.DMax, ErrParameterDomain, "must be > 0")
	}
	twi := [2]*Grid{in.TWI, in.TWI}
	m := [2]float64{in.M, in.M}
	lamb := [2]float64{in.Lamb, in.Lamb}
	switch in.Param {
	case SensitivityM:
		m = [2]float64{in.Low, in.High}
	case SensitivityLamb:
		lamb = [2]float64{in.Low, in.High}
	case SensitivityTWI:
		if in.TWI2 == nil || !in.TWI2.SameShape(in.Basin) {
			return nil, configErr("twi2", nil, ErrShapeMismatch, "a second twi grid matching the basin is required")
		}
		twi[1] = in.TWI2
	default:
		return nil, configErr("sal_param", in.Param, ErrUnknownVariable, "must be m, lamb or twi")
	}
	for k := 0; k < 2; k++ {
		if math.IsNaN(lamb[k]) {
			lamb[k] = MeanTWI(twi[k], in.Basin)
		}
		if !(m[k] > 0) {
			return nil, configErr("m", m[k], ErrParameterDomain, "must be > 0")
		}
	}

	basin := NewBasin(in.Basin)
	ds := make([]float64, in.Steps)
	floats.Span(ds, 0, in.DMax)
	frames := make([]SensitivityFrame, len(ds))
	di := NewGrid(in.TWI.Rows, in.TWI.Cols)
	vsa := NewGrid(in.TWI.Rows, in.TWI.Cols)
	for f, d := range ds {
		frames[f].D = d
		for k := 0; k < 2; k++ {
			for i, t := range twi[k].Data {
				if math.IsNaN(t) || math.IsInf(t, 0) {
					t = lamb[k]
				}
				di.Data[i] = LocalDeficit(d, t, m[k], lamb[k])
				vsa.Data[i] = 0
				if di.Data[i] == 0 {
					vsa.Data[i] = 1
				}
			}
			frames[f].Di[k] = basin.MeanOf(di)
			frames[f].VSA[k] = 100 * basin.MeanOf(vsa)
			if in.KeepGrids {
				frames[f].Grids[k] = di.Clone()
			}
		}
	}
	return frames, nil
}
