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

// Package g2g is a distributed TOPMODEL rainfall-runoff engine. It
// advances canopy, surface and vadose zone water stocks over a grid of
// cells with a shared saturated zone deficit, and routes the basin
// runoff through a Nash cascade.
package g2g

import (
	"math"
)

// Version gives the version number.
const Version = "1.0.0"

// Input holds everything needed to run a simulation.
type Input struct {
	// Forcing is the daily forcing series. It is copied, not modified.
	Forcing []Record

	// TWI holds the topographic wetness index of each cell.
	TWI *Grid

	// Basin holds the weight of each cell in basin-wide averages.
	// Cells with zero weight are still simulated.
	Basin *Grid

	Params Parameters

	// TraceVars are the variables whose grids are recorded at every
	// step. Each one costs 4 bytes per cell per step.
	TraceVars []Variable

	// IntegrateVars are the variables whose grids are accumulated over
	// the run.
	IntegrateVars []Variable
}

// Validate checks the input. It returns a *ConfigurationError describing
// the first problem found.
func (in *Input) Validate() error {
	if in.TWI == nil {
		return configErr("twi", nil, ErrMissingInput, "no grid given")
	}
	if in.Basin == nil {
		return configErr("basin", nil, ErrMissingInput, "no grid given")
	}
	if !in.TWI.SameShape(in.Basin) {
		return configErr("twi", nil, ErrShapeMismatch, "twi is %dx%d; basin is %dx%d",
			in.TWI.Rows, in.TWI.Cols, in.Basin.Rows, in.Basin.Cols)
	}
	if in.TWI.Len() == 0 || len(in.TWI.Data) != in.TWI.Rows*in.TWI.Cols ||
		len(in.Basin.Data) != in.Basin.Rows*in.Basin.Cols {
		return configErr("twi", nil, ErrShapeMismatch, "grid data does not match its dimensions")
	}
	var wsum float64
	for i, w := range in.Basin.Data {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return configErr("basin", w, ErrNonFinite, "in cell %d", i)
		}
		if w < 0 {
			return configErr("basin", w, ErrParameterDomain, "negative weight in cell %d", i)
		}
		wsum += w
		if w > 0 {
			if t := in.TWI.Data[i]; math.IsNaN(t) || math.IsInf(t, 0) {
				return configErr("twi", t, ErrNonFinite, "in basin cell %d", i)
			}
		}
	}
	if wsum <= 0 {
		return configErr("basin", wsum, ErrParameterDomain, "sum of weights must be > 0")
	}
	if err := in.Params.Validate(in.Basin); err != nil {
		return err
	}
	for t, r := range in.Forcing {
		for _, c := range []struct {
			name string
			v    float64
		}{{"P", r.P}, {"T", r.T}, {"IRA", r.IRA}, {"IRI", r.IRI}} {
			if math.IsNaN(c.v) || math.IsInf(c.v, 0) {
				return configErr("series", c.v, ErrNonFinite, "%s on row %d", c.name, t)
			}
			if c.name != "T" && c.v < 0 {
				return configErr("series", c.v, ErrParameterDomain, "negative %s on row %d", c.name, t)
			}
		}
	}
	if err := checkGridVariables("trace_vars", in.TraceVars); err != nil {
		return err
	}
	return checkGridVariables("integrate_vars", in.IntegrateVars)
}

// TraceBytes returns the memory needed to hold the requested traces.
func (in *Input) TraceBytes() int {
	if in.TWI == nil {
		return 0
	}
	return 4 * in.TWI.Len() * len(in.Forcing) * len(in.TraceVars)
}

// Manipulator is a function that operates on a simulation.
type Manipulator func(s *Simulation) error

// Simulation holds the state of a model run.
type Simulation struct {
	Input *Input

	// InitFuncs are run once before the time loop.
	InitFuncs []Manipulator

	// RunFuncs are run in order once per time step until Done is set.
	RunFuncs []Manipulator

	// CleanupFuncs are run once after the time loop.
	CleanupFuncs []Manipulator

	// Done is set when the last time step has been computed.
	Done bool

	Series      *Series
	Trace       map[Variable][]*ScaledGrid
	Integration map[Variable]*Grid

	prev, cur *State
	st        *stepper
	forcing   []forcing
	integrals map[Variable][]float64
}

// Result is the output of a simulation.
type Result struct {
	// Series holds the basin-wide daily output.
	Series *Series

	// Trace holds one grid per step for each traced variable.
	Trace map[Variable][]*ScaledGrid

	// Integration holds the sum over the run of each integrated variable
	// in physical units. Stock-like variables are averaged instead.
	Integration map[Variable]*Grid
}

// NewSimulation returns a simulation with the standard set of
// manipulators. hooks are run after them at every step.
func NewSimulation(in *Input, hooks ...Manipulator) *Simulation {
	s := &Simulation{
		Input:     in,
		InitFuncs: []Manipulator{Setup()},
		RunFuncs: []Manipulator{
			Advance(),
			RecordSeries(),
		},
		CleanupFuncs: []Manipulator{
			Route(),
		},
	}
	if len(in.TraceVars) > 0 {
		s.RunFuncs = append(s.RunFuncs, Trace(in.TraceVars...))
	}
	if len(in.IntegrateVars) > 0 {
		s.RunFuncs = append(s.RunFuncs, Integrate(in.IntegrateVars...))
		s.CleanupFuncs = append(s.CleanupFuncs, FinishIntegration())
	}
	s.RunFuncs = append(s.RunFuncs, hooks...)
	return s
}

// Simulate runs a complete simulation.
func Simulate(in *Input, hooks ...Manipulator) (*Result, error) {
	s := NewSimulation(in, hooks...)
	if err := s.Init(); err != nil {
		return nil, err
	}
	if err := s.Run(); err != nil {
		return nil, err
	}
	if err := s.Cleanup(); err != nil {
		return nil, err
	}
	return s.Result(), nil
}

// Init runs the InitFuncs.
func (s *Simulation) Init() error {
	for _, f := range s.InitFuncs {
		if err := f(s); err != nil {
			return err
		}
	}
	return nil
}

// Run runs the RunFuncs until Done is set.
func (s *Simulation) Run() error {
	for !s.Done {
		for _, f := range s.RunFuncs {
			if err := f(s); err != nil {
				return err
			}
		}
	}
	return nil
}

// Cleanup runs the CleanupFuncs.
func (s *Simulation) Cleanup() error {
	for _, f := range s.CleanupFuncs {
		if err := f(s); err != nil {
			return err
		}
	}
	return nil
}

// Current returns the state of the most recent step.
func (s *Simulation) Current() *State { return s.cur }

// Previous returns the state of the step before Current.
func (s *Simulation) Previous() *State { return s.prev }

// Result returns the simulation output.
func (s *Simulation) Result() *Result {
	return &Result{
		Series:      s.Series,
		Trace:       s.Trace,
		Integration: s.Integration,
	}
}
