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
	"runtime"
	"sync"
	"time"
)

// minParallelCells is the grid size below which a step is computed
// on a single goroutine.
const minParallelCells = 4096

// stepper advances the grid water balance by one day. All per-cell
// capacities are held in raw (scaled) units.
type stepper struct {
	rows, cols, n int
	scale         float64
	eps           float64 // guards the deficit ratios as the local deficit goes to zero

	m, lamb, qo float64

	twi                     []float64
	cpmax, sfmax, rzd, ksat []float64

	basin  *Basin
	nprocs int
}

// forcing is one day of input in physical units.
type forcing struct {
	date             time.Time
	p, pet, ira, iri float64
}

func newStepper(in *Input) *stepper {
	p := &in.Params
	n := in.TWI.Len()
	sc := float64(p.Scale)
	st := &stepper{
		rows:   in.TWI.Rows,
		cols:   in.TWI.Cols,
		n:      n,
		scale:  sc,
		eps:    sc / 1000,
		m:      p.M,
		lamb:   p.Lamb,
		qo:     p.Qo,
		twi:    make([]float64, n),
		cpmax:  make([]float64, n),
		sfmax:  make([]float64, n),
		rzd:    make([]float64, n),
		ksat:   make([]float64, n),
		basin:  NewBasin(in.Basin),
		nprocs: runtime.GOMAXPROCS(0),
	}
	for i := 0; i < n; i++ {
		// Cells outside the basin may hold no-data values. They take the
		// reference wetness index and zero capacities.
		twi := in.TWI.Data[i]
		if math.IsNaN(twi) || math.IsInf(twi, 0) {
			twi = p.Lamb
		}
		st.twi[i] = twi
		st.cpmax[i] = finiteOrZero(p.CPMax.At(i)) * sc
		st.sfmax[i] = finiteOrZero(p.SFMax.At(i)) * sc
		st.rzd[i] = finiteOrZero(p.rzd(i)) * sc
		st.ksat[i] = finiteOrZero(p.KSat.At(i)) * sc
	}
	return st
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// gate returns potential when it does not exceed available and
// available otherwise. Ties resolve to potential.
func gate(potential, available float64) float64 {
	if potential > available {
		return available
	}
	return potential
}

// cells runs fn concurrently over contiguous blocks of cells and returns
// the sum of the block results. Integer sums make the result independent
// of the number of blocks.
func (st *stepper) cells(fn func(lo, hi int) int64) int64 {
	nprocs := st.nprocs
	if nprocs <= 1 || st.n < minParallelCells {
		return fn(0, st.n)
	}
	chunk := (st.n + nprocs - 1) / nprocs
	sums := make([]int64, nprocs)
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			defer wg.Done()
			lo := pp * chunk
			hi := lo + chunk
			if hi > st.n {
				hi = st.n
			}
			if lo < hi {
				sums[pp] = fn(lo, hi)
			}
		}(pp)
	}
	wg.Wait()
	var sum int64
	for _, s := range sums {
		sum += s
	}
	return sum
}

// localDeficits sets the local deficit and saturated area grids of s
// from its global deficit.
func (st *stepper) localDeficits(s *State) {
	st.cells(func(lo, hi int) int64 {
		for i := lo; i < hi; i++ {
			di := fixed(st.scale * LocalDeficit(s.D, st.twi[i], st.m, st.lamb))
			s.Di.Raw[i] = di
			s.VSA.Raw[i] = SaturationIndicator(di)
		}
		return 0
	})
}

// initial returns the state before the first step: empty stocks,
// no flows and the global deficit d0.
func (st *stepper) initial(d0 float64) *State {
	s := newState(st.rows, st.cols, int(st.scale))
	s.Step = -1
	s.D = d0
	st.localDeficits(s)
	return s
}

// step computes the state of day f into next from the state of the
// previous day. prev is not modified. Every field of next is
// overwritten.
//
// The potential evapotranspiration budget is shared by the whole grid:
// each consumer (canopy evaporation, saturated zone transpiration,
// vadose zone transpiration, surface evaporation) draws from what the
// previous ones left, and each draw removes the grid mean of the
// consumed amount from every cell.
func (st *stepper) step(prev, next *State, f forcing) {
	sc := st.scale
	next.Step = prev.Step + 1
	next.Date = f.date

	// Stocks from the previous day's flows.
	next.D = prev.D + prev.Qb + prev.avg[VarTps] - prev.avg[VarQv]
	st.localDeficits(next)

	pr, ira, iri := fixed(f.p*sc), fixed(f.ira*sc), fixed(f.iri*sc)
	next.P.Fill(pr)
	next.IRA.Fill(ira)
	next.IRI.Fill(iri)
	next.PET.Fill(fixed(f.pet * sc))
	above := float64(pr) + float64(ira) // water reaching the canopy
	water := f.p + f.ira + f.iri
	pet := f.pet * sc
	n := float64(st.n)

	// Canopy.
	sumEvc := st.cells(func(lo, hi int) int64 {
		var sum int64
		for i := lo; i < hi; i++ {
			cp := prev.Cp.Raw[i] + prev.Inc.Raw[i] - prev.Evc.Raw[i]
			next.Cp.Raw[i] = cp
			next.Vz.Raw[i] = prev.Vz.Raw[i] + prev.Inf.Raw[i] - prev.Qv.Raw[i] - prev.Tpv.Raw[i]
			next.Sf.Raw[i] = prev.Sf.Raw[i] + prev.Ins.Raw[i] - prev.Inf.Raw[i] - prev.Evs.Raw[i]

			inc := fixed(gate(above, st.cpmax[i]-float64(cp)))
			next.Inc.Raw[i] = inc
			next.TF.Raw[i] = fixed(above - float64(inc) + float64(iri))
			evc := fixed(gate(float64(cp), pet))
			next.Evc.Raw[i] = evc
			sum += int64(evc)
		}
		return sum
	})
	pet -= float64(sumEvc) / n

	// Transpiration from the saturated zone.
	sumTps := st.cells(func(lo, hi int) int64 {
		var sum int64
		for i := lo; i < hi; i++ {
			p := st.rzd[i] - float64(next.Di.Raw[i])
			if p < 0 {
				p = 0
			}
			tps := fixed(gate(p, pet))
			next.Tps.Raw[i] = tps
			sum += int64(tps)
		}
		return sum
	})
	pet -= float64(sumTps) / n

	// Surface interception, runoff, infiltration, recharge and
	// transpiration from the vadose zone.
	sumTpv := st.cells(func(lo, hi int) int64 {
		var sum int64
		for i := lo; i < hi; i++ {
			sf := float64(next.Sf.Raw[i])
			tf := next.TF.Raw[i]
			ins := fixed(gate(float64(tf), st.sfmax[i]-sf))
			next.Ins.Raw[i] = ins

			r := tf - ins
			next.R.Raw[i] = r
			if next.VSA.Raw[i] == 1 {
				next.RIE.Raw[i] = 0
				next.RSE.Raw[i] = r
			} else {
				next.RIE.Raw[i] = r
				next.RSE.Raw[i] = 0
			}
			if water > 0 {
				next.RC.Store(i, 100*float64(r)/water)
			} else {
				next.RC.Raw[i] = 0
			}

			di := float64(next.Di.Raw[i])
			vz := float64(next.Vz.Raw[i])
			ks := st.ksat[i]

			infs := gate(sf, ks)
			infu := di - vz
			if infu < 0 {
				infu = 0
			}
			next.Inf.Raw[i] = fixed(gate(infs, infu))

			sat := vz / (di + st.eps)
			if math.IsNaN(sat) {
				sat = 0
			} else if sat > 1 {
				sat = 1
			}
			qv := fixed(gate(vz, ks*sat))
			next.Qv.Raw[i] = qv

			tpf := st.rzd[i] / (di + st.eps)
			if math.IsNaN(tpf) || math.IsInf(tpf, 1) || tpf >= 1 {
				tpf = 1
			}
			ptpv := vz - float64(qv)
			if !(st.rzd[i] > di) {
				ptpv *= tpf
			}
			tpv := fixed(gate(ptpv, pet))
			next.Tpv.Raw[i] = tpv
			sum += int64(tpv)
		}
		return sum
	})
	pet -= float64(sumTpv) / n

	// Surface evaporation and totals.
	st.cells(func(lo, hi int) int64 {
		for i := lo; i < hi; i++ {
			evs := fixed(gate(float64(next.Sf.Raw[i]-next.Inf.Raw[i]), pet))
			next.Evs.Raw[i] = evs
			next.Tp.Raw[i] = next.Tps.Raw[i] + next.Tpv.Raw[i]
			next.Ev.Raw[i] = next.Evc.Raw[i] + evs
			next.ET.Raw[i] = next.Evc.Raw[i] + evs + next.Tps.Raw[i] + next.Tpv.Raw[i]
		}
		return 0
	})

	next.Qb = Baseflow(next.D, st.qo, st.m)
	st.average(next)
}

// average computes the basin-wide averages of the grid variables of s.
// The mean of the raw values is rounded to four decimals before it is
// converted to physical units. VSA is expressed as a percentage of the
// basin.
func (st *stepper) average(s *State) {
	for v := Variable(0); v < numVariables; v++ {
		g := s.Grid(v)
		if g == nil {
			continue
		}
		a := roundTo(st.basin.MeanRaw(g), 4) / float64(g.Scale)
		if v == VarVSA {
			a *= 100
		}
		s.avg[v] = a
	}
}
