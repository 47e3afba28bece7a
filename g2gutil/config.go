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
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/g2g"
	"github.com/spatialmodel/g2g/asc"
	"github.com/spf13/cast"
)

// Output formats.
const (
	OutputCSV    = "csv"
	OutputXLSX   = "xlsx"
	OutputSQLite = "sqlite"
	OutputNetCDF = "netcdf"
	OutputASC    = "asc"
	OutputShp    = "shp"
	OutputPNG    = "png"
)

var outputFormats = []string{OutputCSV, OutputXLSX, OutputSQLite, OutputNetCDF, OutputASC, OutputShp, OutputPNG}

// RunConfig holds the inputs and settings of a simulation run.
type RunConfig struct {
	Input  *g2g.Input
	Header asc.Header

	// Table is the parameter table written with the outputs.
	Table g2g.ParameterTable

	Outputs     map[string]bool
	DerivedVars map[string]string

	OutputDir, RunName string
	LogEvery           int
	MetricsFile        string
	DebugParams        bool
	Open               bool

	S3Bucket, S3Prefix, S3Region string
}

// LoadRunConfig reads the simulation inputs named in cfg.
func LoadRunConfig(cfg *viper.Viper) (*RunConfig, error) {
	rc := &RunConfig{
		OutputDir:   expandPath(cfg.GetString("output_dir")),
		RunName:     os.ExpandEnv(cfg.GetString("run_name")),
		LogEvery:    cfg.GetInt("log_every"),
		MetricsFile: expandPath(cfg.GetString("metrics_file")),
		DebugParams: cfg.GetBool("debug_params"),
		Open:        cfg.GetBool("open"),
		S3Bucket:    os.ExpandEnv(cfg.GetString("s3_bucket")),
		S3Prefix:    os.ExpandEnv(cfg.GetString("s3_prefix")),
		S3Region:    os.ExpandEnv(cfg.GetString("s3_region")),
	}
	if rc.OutputDir == "" {
		rc.OutputDir = "."
	}
	if rc.RunName == "" {
		rc.RunName = "g2g"
	}

	seriesPath := expandPath(cfg.GetString("series"))
	if seriesPath == "" {
		return nil, fmt.Errorf("g2g: the series option must be set")
	}
	f, err := os.Open(seriesPath)
	if err != nil {
		return nil, fmt.Errorf("g2g: opening series: %v", err)
	}
	forcing, err := g2g.ReadForcing(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("%v (%s)", err, seriesPath)
	}

	twi, basin, h, err := loadBasin(cfg)
	if err != nil {
		return nil, err
	}
	rc.Header = h

	p, err := loadParameters(expandPath(cfg.GetString("params")))
	if err != nil {
		return nil, err
	}
	if v := cfg.GetFloat64("qt0"); !math.IsNaN(v) {
		p.Qt0 = v
	}
	if v := cfg.GetFloat64("lamb"); !math.IsNaN(v) {
		p.Lamb = v
	}
	if v := cfg.GetFloat64("lat"); !math.IsNaN(v) {
		p.Latitude = v
	}
	if v := cfg.GetInt("scale"); v > 0 {
		p.Scale = v
	}
	for _, m := range []struct {
		option string
		f      *g2g.Field
	}{
		{"cpmax_map", &p.CPMax}, {"sfmax_map", &p.SFMax}, {"roots_map", &p.Roots},
		{"rho_map", &p.Rho}, {"ksat_map", &p.KSat},
	} {
		path := expandPath(cfg.GetString(m.option))
		if path == "" {
			continue
		}
		g, mh, err := asc.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if mh.NRows != h.NRows || mh.NCols != h.NCols {
			return nil, &g2g.ConfigurationError{Field: m.option, Value: path,
				Err: g2g.ErrShapeMismatch, Reason: "raster does not match twi"}
		}
		*m.f = g2g.Distributed(g, m.f.Value)
	}
	p.ResolveDefaults(twi, basin)
	rc.Table = p.Table()

	traceVars, err := g2g.ParseGridVariables(cfg.GetString("trace_vars"))
	if err != nil {
		return nil, err
	}
	integrateVars, err := g2g.ParseGridVariables(cfg.GetString("integrate_vars"))
	if err != nil {
		return nil, err
	}
	rc.Input = &g2g.Input{
		Forcing:       forcing,
		TWI:           twi,
		Basin:         basin,
		Params:        p,
		TraceVars:     traceVars,
		IntegrateVars: integrateVars,
	}

	outputs, err := cast.ToStringSliceE(cfg.Get("outputs"))
	if err != nil {
		return nil, fmt.Errorf("g2g: outputs: %v", err)
	}
	if rc.Outputs, err = checkOutputs(outputs); err != nil {
		return nil, err
	}
	if rc.DerivedVars, err = GetStringMapString("derived_vars", cfg); err != nil {
		return nil, err
	}
	for k, v := range rc.DerivedVars {
		v = strings.Replace(v, "\r\n", " ", -1)
		rc.DerivedVars[k] = strings.Replace(v, "\n", " ", -1)
	}
	return rc, nil
}

// loadBasin reads the wetness index raster and the basin weights. If
// no basin raster is given, cells with a finite wetness index have
// weight 1.
func loadBasin(cfg *viper.Viper) (twi, basin *g2g.Grid, h asc.Header, err error) {
	twiPath := expandPath(cfg.GetString("twi"))
	if twiPath == "" {
		return nil, nil, h, fmt.Errorf("g2g: the twi option must be set")
	}
	twi, h, err = asc.ReadFile(twiPath)
	if err != nil {
		return nil, nil, h, err
	}
	basinPath := expandPath(cfg.GetString("basin"))
	if basinPath == "" {
		basin = g2g.NewGrid(twi.Rows, twi.Cols)
		for i, t := range twi.Data {
			if !math.IsNaN(t) && !math.IsInf(t, 0) {
				basin.Data[i] = 1
			}
		}
		return twi, basin, h, nil
	}
	basin, bh, err := asc.ReadFile(basinPath)
	if err != nil {
		return nil, nil, h, err
	}
	if bh.NRows != h.NRows || bh.NCols != h.NCols {
		return nil, nil, h, &g2g.ConfigurationError{Field: "basin", Value: basinPath,
			Err: g2g.ErrShapeMismatch, Reason: "raster does not match twi"}
	}
	for i, b := range basin.Data {
		if math.IsNaN(b) {
			basin.Data[i] = 0
		}
	}
	return twi, basin, h, nil
}

// loadParameters reads a parameter table, or a TOML parameter file if
// path ends in .toml.
func loadParameters(path string) (g2g.Parameters, error) {
	if path == "" {
		return g2g.Parameters{}, fmt.Errorf("g2g: the params option must be set")
	}
	f, err := os.Open(path)
	if err != nil {
		return g2g.Parameters{}, fmt.Errorf("g2g: opening parameters: %v", err)
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return g2g.DecodeParametersTOML(f)
	}
	pt, err := g2g.ReadParameterTable(f)
	if err != nil {
		return g2g.Parameters{}, err
	}
	return pt.Parameters()
}

// checkOutputs returns the set of requested output formats. The csv
// series is always written.
func checkOutputs(outputs []string) (map[string]bool, error) {
	valid := make(map[string]bool, len(outputFormats))
	for _, o := range outputFormats {
		valid[o] = true
	}
	set := map[string]bool{OutputCSV: true}
	for _, o := range outputs {
		for _, oo := range strings.Split(o, ",") {
			oo = strings.ToLower(strings.TrimSpace(oo))
			if oo == "" {
				continue
			}
			if !valid[oo] {
				return nil, &g2g.ConfigurationError{Field: "outputs", Value: oo,
					Err: g2g.ErrParameterDomain, Reason: "must be one of " + strings.Join(outputFormats, ", ")}
			}
			set[oo] = true
		}
	}
	return set, nil
}

// expandPath expands environment variables in path.
func expandPath(path string) string {
	return os.ExpandEnv(strings.TrimSpace(path))
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case nil:
		return map[string]string{}, nil
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		o := make(map[string]string)
		if strings.TrimSpace(v) == "" {
			return o, nil
		}
		if err := json.NewDecoder(bytes.NewBufferString(v)).Decode(&o); err != nil {
			return nil, fmt.Errorf("g2g: parsing %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("g2g: invalid type for %s: %#v", varName, i)
	}
}
