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

// State holds the grids of one time step: the stocks at the start of
// the step and the flows computed during it. Grid values are in
// fixed point; VSA uses a scale of 1.
type State struct {
	Step int
	Date time.Time

	D  float64 // global deficit [mm]
	Qb float64 // baseflow [mm/d]

	Di, VSA, Cp, Sf, Vz       *ScaledGrid
	P, PET, IRA, IRI          *ScaledGrid
	Inc, Ins, TF, R, RIE, RSE *ScaledGrid
	RC, Inf, Qv, Evc, Evs, Ev *ScaledGrid
	Tpv, Tps, Tp, ET          *ScaledGrid

	// avg holds the basin-wide averages of the grid variables
	// in physical units.
	avg [numVariables]float64
}

// newState allocates a zero-valued state.
func newState(rows, cols, scale int) *State {
	s := new(State)
	for v := Variable(0); v < numVariables; v++ {
		p := s.grid(v)
		if p == nil {
			continue
		}
		sc := scale
		if v == VarVSA {
			sc = 1
		}
		*p = NewScaledGrid(rows, cols, sc)
	}
	return s
}

// Grid returns the grid of variable v, or nil if v has no
// per-cell representation. For VarD it returns the local deficit grid.
func (s *State) Grid(v Variable) *ScaledGrid {
	p := s.grid(v)
	if p == nil {
		return nil
	}
	return *p
}

// Average returns the basin-wide average of v for this step, in the
// units of the output series.
func (s *State) Average(v Variable) float64 {
	switch v {
	case VarD:
		return s.D
	case VarQb:
		return s.Qb
	}
	return s.avg[v]
}

func (s *State) grid(v Variable) **ScaledGrid {
	switch v {
	case VarD:
		return &s.Di
	case VarVz:
		return &s.Vz
	case VarSf:
		return &s.Sf
	case VarCp:
		return &s.Cp
	case VarVSA:
		return &s.VSA
	case VarP:
		return &s.P
	case VarPET:
		return &s.PET
	case VarIRI:
		return &s.IRI
	case VarIRA:
		return &s.IRA
	case VarInc:
		return &s.Inc
	case VarIns:
		return &s.Ins
	case VarTF:
		return &s.TF
	case VarR:
		return &s.R
	case VarRIE:
		return &s.RIE
	case VarRSE:
		return &s.RSE
	case VarRC:
		return &s.RC
	case VarInf:
		return &s.Inf
	case VarQv:
		return &s.Qv
	case VarEvc:
		return &s.Evc
	case VarEvs:
		return &s.Evs
	case VarEv:
		return &s.Ev
	case VarTpv:
		return &s.Tpv
	case VarTps:
		return &s.Tps
	case VarTp:
		return &s.Tp
	case VarET:
		return &s.ET
	}
	return nil
}
