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
	"fmt"
	"io"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

// Setup validates the input and prepares the initial state: empty
// stocks and the global deficit that produces the initial baseflow.
// Nothing is allocated if the input is invalid.
func Setup() Manipulator {
	return func(s *Simulation) error {
		in := s.Input
		if in == nil {
			return configErr("input", nil, ErrMissingInput, "simulation has no input")
		}
		if err := in.Validate(); err != nil {
			return err
		}
		p := &in.Params
		lat := p.Latitude * math.Pi / 180

		s.Series = newSeriesFromForcing(in.Forcing)
		s.forcing = make([]forcing, len(in.Forcing))
		for t, r := range in.Forcing {
			pet := OudinPET(r.T, r.Date.YearDay(), lat, p.C, PETThreshold)
			s.Series.values[VarPET][t] = pet
			s.forcing[t] = forcing{date: r.Date, p: r.P, pet: pet, ira: r.IRA, iri: r.IRI}
		}

		s.st = newStepper(in)
		s.prev = s.st.initial(DeficitFromBaseflow(p.Qt0, p.Qo, p.M))
		s.cur = newState(s.st.rows, s.st.cols, p.Scale)
		s.Done = len(in.Forcing) == 0
		return nil
	}
}

// Advance computes the next time step and sets Done after the last one.
func Advance() Manipulator {
	first := true
	return func(s *Simulation) error {
		if s.st == nil {
			return fmt.Errorf("g2g: simulation has not been set up")
		}
		if !first {
			s.prev, s.cur = s.cur, s.prev
		}
		first = false
		t := s.prev.Step + 1
		if t >= len(s.forcing) {
			return fmt.Errorf("g2g: step %d is past the end of the series", t)
		}
		s.st.step(s.prev, s.cur, s.forcing[t])
		if t == len(s.forcing)-1 {
			s.Done = true
		}
		return nil
	}
}

// RecordSeries copies the basin-wide averages of the current step into
// the output series.
func RecordSeries() Manipulator {
	return func(s *Simulation) error {
		c := s.cur
		t := c.Step
		for v := Variable(0); v < numVariables; v++ {
			switch v {
			case VarP, VarPET, VarIRA, VarIRI, VarQs, VarQ:
				// inputs, or computed after the loop
			default:
				s.Series.values[v][t] = c.Average(v)
			}
		}
		s.Series.values[VarTp][t] = c.avg[VarTpv] + c.avg[VarTps]
		s.Series.values[VarEv][t] = c.avg[VarEvc] + c.avg[VarEvs]
		return nil
	}
}

// Trace records a copy of the grids of vars at every step.
func Trace(vars ...Variable) Manipulator {
	return func(s *Simulation) error {
		if s.Trace == nil {
			if err := checkGridVariables("trace_vars", vars); err != nil {
				return err
			}
			s.Trace = make(map[Variable][]*ScaledGrid, len(vars))
			for _, v := range vars {
				s.Trace[v] = make([]*ScaledGrid, 0, len(s.forcing))
			}
		}
		for _, v := range vars {
			s.Trace[v] = append(s.Trace[v], s.cur.Grid(v).Clone())
		}
		return nil
	}
}

// Integrate accumulates the grids of vars at every step. The sums are
// converted to physical units by FinishIntegration.
func Integrate(vars ...Variable) Manipulator {
	return func(s *Simulation) error {
		if s.integrals == nil {
			if err := checkGridVariables("integrate_vars", vars); err != nil {
				return err
			}
			s.integrals = make(map[Variable][]float64, len(vars))
			for _, v := range vars {
				s.integrals[v] = make([]float64, s.st.n)
			}
		}
		for _, v := range vars {
			sum := s.integrals[v]
			for i, r := range s.cur.Grid(v).Raw {
				sum[i] += float64(r)
			}
		}
		return nil
	}
}

// FinishIntegration converts the accumulated sums to physical units.
// Stock-like variables are divided by the number of steps so that they
// hold time averages.
func FinishIntegration() Manipulator {
	return func(s *Simulation) error {
		if s.integrals == nil {
			return nil
		}
		tlen := float64(s.Series.Len())
		s.Integration = make(map[Variable]*Grid, len(s.integrals))
		for v, sum := range s.integrals {
			g := NewGrid(s.st.rows, s.st.cols)
			f := 1 / float64(s.cur.Grid(v).Scale)
			if v.IsStock() {
				f /= tlen
			}
			for i, x := range sum {
				g.Data[i] = x * f
			}
			s.Integration[v] = g
		}
		return nil
	}
}

// Route routes the basin runoff through the Nash cascade and sets
// stormflow and streamflow.
func Route() Manipulator {
	return func(s *Simulation) error {
		p := &s.Input.Params
		qs := NashCascade(s.Series.values[VarR], p.K, p.N)
		copy(s.Series.values[VarQs], qs)
		q := s.Series.values[VarQ]
		qb := s.Series.values[VarQb]
		for t := range q {
			q[t] = qb[t] + qs[t]
		}
		return nil
	}
}

// Log writes simulation status messages to w. ΣR is the runoff
// generated so far; streamflow is only known once it has been routed.
func Log(w io.Writer) Manipulator {
	startTime := time.Now()
	timeStepTime := time.Now()
	var sumR float64
	return func(s *Simulation) error {
		c := s.cur
		sumR += c.avg[VarR]
		fmt.Fprintf(w, "Step %-5d  date=%s  walltime=%6.3gs  Δwalltime=%4.2gs  "+
			"D=%.2fmm  Qb=%.3fmm/d  ΣR=%.2fmm  VSA=%.1f%%\n",
			c.Step, c.Date.Format("2006-01-02"), time.Since(startTime).Seconds(),
			time.Since(timeStepTime).Seconds(), c.D, c.Qb, sumR, c.avg[VarVSA])
		timeStepTime = time.Now()
		return nil
	}
}

// Progress logs the basin state to log every n steps and at the last
// step.
func Progress(log logrus.FieldLogger, n int) Manipulator {
	if n < 1 {
		n = 1
	}
	return func(s *Simulation) error {
		c := s.cur
		if c.Step%n != 0 && !s.Done {
			return nil
		}
		log.WithFields(logrus.Fields{
			"step": c.Step,
			"date": c.Date.Format(DateFormat),
			"D":    c.D,
			"Qb":   c.Qb,
			"VSA":  c.avg[VarVSA],
			"ET":   c.avg[VarET],
		}).Info("g2g: simulation progress")
		return nil
	}
}
