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

package g2gutil

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spatialmodel/g2g"
)

// runMetrics holds the metrics of a simulation run.
type runMetrics struct {
	reg        *prometheus.Registry
	steps      prometheus.Counter
	wallTime   prometheus.Gauge
	traceBytes prometheus.Gauge
	cells      prometheus.Gauge
	final      *prometheus.GaugeVec
}

func newRunMetrics(runName string) *runMetrics {
	labels := prometheus.Labels{"run": runName}
	m := &runMetrics{
		reg: prometheus.NewRegistry(),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "g2g", Name: "steps_total",
			Help: "Number of simulated days.", ConstLabels: labels,
		}),
		wallTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "g2g", Name: "run_seconds",
			Help: "Wall time of the simulation.", ConstLabels: labels,
		}),
		traceBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "g2g", Name: "trace_bytes",
			Help: "Memory used by traced grids.", ConstLabels: labels,
		}),
		cells: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "g2g", Name: "cells",
			Help: "Number of grid cells.", ConstLabels: labels,
		}),
		final: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "g2g", Name: "final_value",
			Help: "Basin-wide value of a variable at the last step.", ConstLabels: labels,
		}, []string{"variable"}),
	}
	m.reg.MustRegister(m.steps, m.wallTime, m.traceBytes, m.cells, m.final)
	return m
}

// Step returns a manipulator counting simulated steps.
func (m *runMetrics) Step() g2g.Manipulator {
	return func(*g2g.Simulation) error {
		m.steps.Inc()
		return nil
	}
}

// observe records the results of a finished simulation.
func (m *runMetrics) observe(in *g2g.Input, s *g2g.Series, wall time.Duration) {
	m.wallTime.Set(wall.Seconds())
	m.traceBytes.Set(float64(in.TraceBytes()))
	m.cells.Set(float64(in.TWI.Len()))
	if n := s.Len(); n > 0 {
		for _, v := range []g2g.Variable{g2g.VarD, g2g.VarVSA, g2g.VarQb, g2g.VarQ} {
			m.final.WithLabelValues(v.String()).Set(s.Values(v)[n-1])
		}
	}
}

func (m *runMetrics) write(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}
