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
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kr/pretty"
	"github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"
	"github.com/spatialmodel/g2g"
	"github.com/spatialmodel/g2g/internal/hash"
	"github.com/spatialmodel/g2g/output"
	"gonum.org/v1/plot/vg"
)

// Names of the files written to the run directory.
const (
	LogFile        = "g2g.log"
	SeriesFile     = "series.txt"
	ParamsFile     = "params.txt"
	SummaryFile    = "summary.txt"
	XLSXFile       = "series.xlsx"
	TraceFile      = "trace.nc"
	ShapefileFile  = "integration.shp"
	HydrographFile = "hydrograph.png"
	PanelFile      = "stocks.png"

	// DatabaseFile is created in the output directory and shared by
	// all runs.
	DatabaseFile = "g2g.db"
)

// runDir creates a new directory for a run started at t.
func runDir(outputDir, name string, t time.Time) (string, error) {
	dir := filepath.Join(outputDir, fmt.Sprintf("%s_%s", name, t.Format("2006-01-02-15-04-05")))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("g2g: creating run directory: %v", err)
	}
	return dir, nil
}

// attachLogFile adds a log file in dir to the outputs of log. The
// returned function restores the previous output and closes the file.
// Calls after the first do nothing.
func attachLogFile(log *logrus.Logger, dir string) (func(), error) {
	f, err := os.Create(filepath.Join(dir, LogFile))
	if err != nil {
		return nil, fmt.Errorf("g2g: problem creating log file: %v", err)
	}
	out := log.Out
	log.Out = io.MultiWriter(out, f)
	var once sync.Once
	return func() {
		once.Do(func() {
			log.Out = out
			f.Close()
		})
	}, nil
}

// Run runs the simulation described by rc and writes its outputs to a
// new directory in rc.OutputDir, whose path is returned.
func Run(ctx context.Context, rc *RunConfig, log *logrus.Logger) (string, error) {
	if err := rc.Input.Validate(); err != nil {
		return "", err
	}
	start := time.Now()
	dir, err := runDir(rc.OutputDir, rc.RunName, start)
	if err != nil {
		return "", err
	}
	restore, err := attachLogFile(log, dir)
	if err != nil {
		return dir, err
	}
	defer restore()

	in := rc.Input
	id := hash.Hash(in.Params, in.Forcing, in.TWI, in.Basin)
	log.WithFields(logrus.Fields{
		"run":   id,
		"steps": len(in.Forcing),
		"cells": in.TWI.Len(),
	}).Info("g2g: starting simulation")
	if rc.DebugParams {
		log.Debug(pretty.Sprint(in.Params))
	}

	metrics := newRunMetrics(rc.RunName)
	sim := g2g.NewSimulation(in, g2g.Progress(log, rc.LogEvery), metrics.Step())
	if len(rc.DerivedVars) > 0 {
		sim.CleanupFuncs = append(sim.CleanupFuncs, g2g.DeriveColumns(rc.DerivedVars, nil))
	}
	if err := sim.Init(); err != nil {
		return dir, err
	}
	if err := sim.Run(); err != nil {
		return dir, err
	}
	if err := sim.Cleanup(); err != nil {
		return dir, err
	}
	r := sim.Result()
	metrics.observe(in, r.Series, time.Since(start))
	log.WithField("walltime", time.Since(start)).Info("g2g: simulation finished")

	if err := writeOutputs(ctx, rc, r, dir, id, start); err != nil {
		return dir, err
	}

	sum := Summarize(r.Series)
	if err := writeFile(filepath.Join(dir, SummaryFile), func(w io.Writer) error {
		return WriteSummary(w, sum)
	}); err != nil {
		return dir, err
	}
	for _, c := range sum {
		log.WithFields(logrus.Fields{"mean": c.Mean, "min": c.Min, "max": c.Max}).Debug(c.Name)
	}

	if rc.MetricsFile != "" {
		if err := metrics.write(rc.MetricsFile); err != nil {
			return dir, fmt.Errorf("g2g: writing metrics: %v", err)
		}
	}
	if rc.S3Bucket != "" {
		restore()
		if err := Upload(ctx, dir, rc.S3Bucket, rc.S3Prefix, rc.S3Region, log); err != nil {
			return dir, err
		}
	}
	if rc.Open {
		target := dir
		if rc.Outputs[OutputPNG] {
			target = filepath.Join(dir, HydrographFile)
		}
		if err := open.Run(target); err != nil {
			log.WithError(err).Warn("g2g: could not open output")
		}
	}
	return dir, nil
}

// writeOutputs writes the requested outputs of r to dir.
func writeOutputs(ctx context.Context, rc *RunConfig, r *g2g.Result, dir, id string, start time.Time) error {
	s := r.Series
	if err := writeFile(filepath.Join(dir, SeriesFile), func(w io.Writer) error {
		return g2g.WriteSeries(w, s)
	}); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, ParamsFile), func(w io.Writer) error {
		return g2g.WriteParameterTable(w, rc.Table)
	}); err != nil {
		return err
	}
	if rc.Outputs[OutputXLSX] {
		if err := output.WriteXLSX(filepath.Join(dir, XLSXFile), s, rc.Table); err != nil {
			return err
		}
	}
	if rc.Outputs[OutputSQLite] {
		st, err := output.OpenStore(filepath.Join(rc.OutputDir, DatabaseFile))
		if err != nil {
			return err
		}
		err = st.Save(ctx, output.Run{ID: id, Name: filepath.Base(dir), Created: start, Params: rc.Table}, s)
		if cerr := st.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
	}
	if rc.Outputs[OutputNetCDF] && len(r.Trace) > 0 {
		f, err := os.Create(filepath.Join(dir, TraceFile))
		if err != nil {
			return err
		}
		err = output.WriteTrace(f, r.Trace, s.Date, rc.Header)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
	}
	if rc.Outputs[OutputASC] && len(r.Integration) > 0 {
		if _, err := output.WriteIntegrationASC(dir, r.Integration, rc.Header); err != nil {
			return err
		}
	}
	if rc.Outputs[OutputShp] && len(r.Integration) > 0 {
		if err := output.WriteIntegrationShapefile(filepath.Join(dir, ShapefileFile), r.Integration, rc.Input.Basin, rc.Header); err != nil {
			return err
		}
	}
	if rc.Outputs[OutputPNG] && s.Len() > 0 {
		p, err := output.Hydrograph(s)
		if err != nil {
			return err
		}
		if err := output.SavePNG(p, filepath.Join(dir, HydrographFile), 8*vg.Inch, 4*vg.Inch); err != nil {
			return err
		}
		stocks := []g2g.Variable{g2g.VarD, g2g.VarCp, g2g.VarSf, g2g.VarVz, g2g.VarVSA}
		if err := writeFile(filepath.Join(dir, PanelFile), func(w io.Writer) error {
			return output.WritePanelPNG(w, s, stocks, 8*vg.Inch, 10*vg.Inch)
		}); err != nil {
			return err
		}
	}
	return nil
}

// writeFile creates path and writes to it with write.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("g2g: writing %s: %v", path, err)
	}
	return f.Close()
}
