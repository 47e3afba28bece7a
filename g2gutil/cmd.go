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

// Package g2gutil is the command-line and configuration layer of G2G.
package g2gutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/g2g"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

// Log is the logger used by the commands.
var Log = logrus.New()

type option struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

var options []option

func init() {
	runFlags := runCmd.Flags()
	salFlags := salCmd.Flags()
	options = []option{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "log_level",
			usage: `
              log_level is the minimum level of logged messages: debug,
              info, warning or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "series",
			usage: `
              series is the path to the forcing series, a semicolon separated
              file with the columns Date, P and T and optionally IRA and IRI.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runFlags},
		},
		{
			name: "twi",
			usage: `
              twi is the path to the topographic wetness index raster in
              ESRI ASCII format.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runFlags, salFlags},
		},
		{
			name: "basin",
			usage: `
              basin is the path to the raster of basin weights. If it is
              empty, every cell with a wetness index belongs to the basin
              with weight 1.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runFlags, salFlags},
		},
		{
			name: "params",
			usage: `
              params is the path to the parameter file: either a table with
              the columns Parameter;Set;Min;Max or a TOML file ending in .toml.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runFlags},
		},
		{
			name: "cpmax_map",
			usage: `
              cpmax_map is an optional index raster multiplied by cpmax.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runFlags},
		},
		{
			name: "sfmax_map",
			usage: `
              sfmax_map is an optional index raster multiplied by sfmax.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runFlags},
		},
		{
			name: "roots_map",
			usage: `
              roots_map is an optional index raster multiplied by roots.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runFlags},
		},
		{
			name: "rho_map",
			usage: `
              rho_map is an optional index raster multiplied by rho.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runFlags},
		},
		{
			name: "ksat_map",
			usage: `
              ksat_map is an optional index raster multiplied by ksat.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runFlags},
		},
		{
			name: "qt0",
			usage: `
              qt0 is the baseflow at the first time step [mm/d]. If it is
              not set, it is qo/100.`,
			defaultVal: math.NaN(),
			flagsets:   []*pflag.FlagSet{runFlags},
		},
		{
			name: "lamb",
			usage: `
              lamb overrides the reference wetness index. If neither the
              parameter file nor this option set it, the basin mean wetness
              index is used.`,
			defaultVal: math.NaN(),
			flagsets:   []*pflag.FlagSet{runFlags, salFlags},
		},
		{
			name: "lat",
			usage: `
              lat is the latitude of the basin in degrees. It overrides the
              latitude of the parameter file.`,
			defaultVal: math.NaN(),
			flagsets:   []*pflag.FlagSet{runFlags},
		},
		{
			name: "scale",
			usage: `
              scale is the fixed-point denominator of the simulation grids.`,
			defaultVal: g2g.DefaultScale,
			flagsets:   []*pflag.FlagSet{runFlags},
		},
		{
			name: "trace_vars",
			usage: `
              trace_vars lists the grid variables to record at every step,
              separated by hyphens, e.g. "VSA-D-Inf".`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runFlags},
		},
		{
			name: "integrate_vars",
			usage: `
              integrate_vars lists the grid variables to accumulate over the
              run, separated by hyphens.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runFlags},
		},
		{
			name: "outputs",
			usage: `
              outputs lists the output formats to write: csv, xlsx, sqlite,
              netcdf, asc, shp and png. The series is always written as csv.`,
			defaultVal: []string{"csv"},
			flagsets:   []*pflag.FlagSet{runFlags},
		},
		{
			name: "derived_vars",
			usage: `
              derived_vars maps names of extra output columns to expressions
              of other columns, e.g. {"Qfast":"Q - Qb"}.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{runFlags},
		},
		{
			name: "output_dir",
			usage: `
              output_dir is the directory in which a directory is created
              for each run.`,
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{runFlags, salFlags},
		},
		{
			name: "run_name",
			usage: `
              run_name is the prefix of the run directory name.`,
			defaultVal: "g2g",
			flagsets:   []*pflag.FlagSet{runFlags, salFlags},
		},
		{
			name: "log_every",
			usage: `
              log_every is the number of steps between progress messages.`,
			defaultVal: 30,
			flagsets:   []*pflag.FlagSet{runFlags},
		},
		{
			name: "metrics_file",
			usage: `
              metrics_file is the path of a Prometheus text file to which run
              metrics are written. Metrics are not written if it is empty.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runFlags},
		},
		{
			name: "s3_bucket",
			usage: `
              s3_bucket is an S3 bucket to which the run directory is copied
              after the run. AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must
              be set.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runFlags, salFlags},
		},
		{
			name: "s3_prefix",
			usage: `
              s3_prefix is the key prefix of uploaded files.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runFlags, salFlags},
		},
		{
			name: "s3_region",
			usage: `
              s3_region is the region of s3_bucket.`,
			defaultVal: "us-east-2",
			flagsets:   []*pflag.FlagSet{runFlags, salFlags},
		},
		{
			name: "open",
			usage: `
              open opens the hydrograph or the run directory when the run
              is finished.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runFlags, salFlags},
		},
		{
			name: "debug_params",
			usage: `
              debug_params logs the resolved parameters before the run.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runFlags},
		},
		{
			name: "twi2",
			usage: `
              twi2 is the wetness index raster compared with twi when
              sal_param is twi.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{salFlags},
		},
		{
			name: "sal_param",
			usage: `
              sal_param is the parameter varied in the deficit sensitivity
              analysis: m, lamb or twi.`,
			defaultVal: g2g.SensitivityM,
			flagsets:   []*pflag.FlagSet{salFlags},
		},
		{
			name: "sal_lo",
			usage: `
              sal_lo is the low value of the varied parameter.`,
			defaultVal: 5.0,
			flagsets:   []*pflag.FlagSet{salFlags},
		},
		{
			name: "sal_hi",
			usage: `
              sal_hi is the high value of the varied parameter.`,
			defaultVal: 20.0,
			flagsets:   []*pflag.FlagSet{salFlags},
		},
		{
			name: "sal_m",
			usage: `
              sal_m is the value of m when it is not varied [mm].`,
			defaultVal: 10.0,
			flagsets:   []*pflag.FlagSet{salFlags},
		},
		{
			name: "sal_dmax",
			usage: `
              sal_dmax is the largest global deficit evaluated [mm].`,
			defaultVal: 100.0,
			flagsets:   []*pflag.FlagSet{salFlags},
		},
		{
			name: "sal_steps",
			usage: `
              sal_steps is the number of global deficits evaluated.`,
			defaultVal: 50,
			flagsets:   []*pflag.FlagSet{salFlags},
		},
		{
			name: "sal_grids",
			usage: `
              sal_grids writes the local deficit raster of every evaluated
              deficit.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{salFlags},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("G2G")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case []string:
				set.StringSliceP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, v, option.usage)
			case map[string]string:
				b := bytes.NewBuffer(nil)
				json.NewEncoder(b).Encode(v)
				set.StringP(option.name, option.shorthand, strings.TrimSpace(b.String()), option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}

	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(salCmd)
	Root.AddCommand(summaryCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets up logging.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("g2g: problem reading configuration file: %v", err)
		}
	}
	return setLogger(Log, Cfg.GetString("log_level"))
}

// setLogger configures log with a timestamped text format at the given
// level.
func setLogger(log *logrus.Logger, level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("g2g: log_level: %v", err)
	}
	log.SetLevel(lvl)
	log.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "g2g",
	Short: "A distributed TOPMODEL rainfall-runoff model.",
	Long: `G2G simulates the daily water balance of a basin on a grid of cells
sharing a saturated zone deficit, and routes the runoff to the outlet.
Use the subcommands specified below to access the model functionality.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'G2G_var' where 'var' is the
name of the variable to be set. Paths may contain environment variables.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of G2G.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("G2G v%s\n", g2g.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation.",
	Long: `run runs a simulation of the forcing series over the basin and writes
the series, the requested grid outputs and a summary to a new run directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := LoadRunConfig(Cfg)
		if err != nil {
			return err
		}
		dir, err := Run(context.Background(), rc, Log)
		if err != nil {
			return err
		}
		cmd.Printf("Output written to %s\n", dir)
		return nil
	},
	DisableAutoGenTag: true,
}

var salCmd = &cobra.Command{
	Use:   "sal",
	Short: "Analyse the sensitivity of the saturated area to the deficit.",
	Long: `sal evaluates the saturated area and the mean local deficit of the basin
for a range of global deficits and two values of m, of lamb or two wetness
index rasters.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := LoadSALConfig(Cfg)
		if err != nil {
			return err
		}
		dir, err := RunSAL(context.Background(), sc, Log)
		if err != nil {
			return err
		}
		cmd.Printf("Output written to %s\n", dir)
		return nil
	},
	DisableAutoGenTag: true,
}

var summaryCmd = &cobra.Command{
	Use:   "summary <series file>",
	Short: "Summarize a series file.",
	Long: `summary prints the mean, standard deviation, minimum, maximum and sum of
every column of a series file written by 'g2g run'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(os.ExpandEnv(args[0]))
		if err != nil {
			return err
		}
		defer f.Close()
		s, err := g2g.ReadSeries(f)
		if err != nil {
			return err
		}
		return WriteSummary(cmd.OutOrStdout(), Summarize(s))
	},
	DisableAutoGenTag: true,
}
