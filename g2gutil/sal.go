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
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"
	"github.com/spatialmodel/g2g"
	"github.com/spatialmodel/g2g/asc"
	"github.com/spatialmodel/g2g/output"
	"gonum.org/v1/plot/vg"
)

// Names of the files written by RunSAL.
const (
	SALFile     = "sal.txt"
	SALPlotFile = "sal.png"
)

// SALConfig holds the settings of a deficit sensitivity analysis.
type SALConfig struct {
	Input  g2g.SensitivityInput
	Header asc.Header

	OutputDir, RunName string
	Open               bool

	S3Bucket, S3Prefix, S3Region string
}

// LoadSALConfig reads the sensitivity analysis inputs named in cfg.
func LoadSALConfig(cfg *viper.Viper) (*SALConfig, error) {
	twi, basin, h, err := loadBasin(cfg)
	if err != nil {
		return nil, err
	}
	sc := &SALConfig{
		Header:    h,
		OutputDir: expandPath(cfg.GetString("output_dir")),
		RunName:   os.ExpandEnv(cfg.GetString("run_name")),
		Open:      cfg.GetBool("open"),
		S3Bucket:  os.ExpandEnv(cfg.GetString("s3_bucket")),
		S3Prefix:  os.ExpandEnv(cfg.GetString("s3_prefix")),
		S3Region:  os.ExpandEnv(cfg.GetString("s3_region")),
		Input: g2g.SensitivityInput{
			TWI:       twi,
			Basin:     basin,
			Param:     cfg.GetString("sal_param"),
			Low:       cfg.GetFloat64("sal_lo"),
			High:      cfg.GetFloat64("sal_hi"),
			M:         cfg.GetFloat64("sal_m"),
			Lamb:      cfg.GetFloat64("lamb"),
			DMax:      cfg.GetFloat64("sal_dmax"),
			Steps:     cfg.GetInt("sal_steps"),
			KeepGrids: cfg.GetBool("sal_grids"),
		},
	}
	if sc.OutputDir == "" {
		sc.OutputDir = "."
	}
	if sc.RunName == "" {
		sc.RunName = "g2g"
	}
	if p := expandPath(cfg.GetString("twi2")); p != "" {
		twi2, h2, err := asc.ReadFile(p)
		if err != nil {
			return nil, err
		}
		if h2.NRows != h.NRows || h2.NCols != h.NCols {
			return nil, &g2g.ConfigurationError{Field: "twi2", Value: p,
				Err: g2g.ErrShapeMismatch, Reason: "raster does not match twi"}
		}
		sc.Input.TWI2 = twi2
	}
	return sc, nil
}

// salLabels returns the legend labels of the two compared settings.
func salLabels(in g2g.SensitivityInput) [2]string {
	if in.Param == g2g.SensitivityTWI {
		return [2]string{"twi", "twi2"}
	}
	return [2]string{
		fmt.Sprintf("%s = %g", in.Param, in.Low),
		fmt.Sprintf("%s = %g", in.Param, in.High),
	}
}

// RunSAL runs a deficit sensitivity analysis and writes its table,
// plot and, if requested, local deficit rasters to a new directory in
// sc.OutputDir, whose path is returned.
func RunSAL(ctx context.Context, sc *SALConfig, log *logrus.Logger) (string, error) {
	frames, err := g2g.DeficitSensitivity(sc.Input)
	if err != nil {
		return "", err
	}
	dir, err := runDir(sc.OutputDir, sc.RunName+"_sal", time.Now())
	if err != nil {
		return "", err
	}
	restore, err := attachLogFile(log, dir)
	if err != nil {
		return dir, err
	}
	defer restore()
	log.WithFields(logrus.Fields{
		"param":  sc.Input.Param,
		"frames": len(frames),
	}).Info("g2g: deficit sensitivity analysis")

	if err := writeFile(filepath.Join(dir, SALFile), func(w io.Writer) error {
		return writeSAL(w, frames)
	}); err != nil {
		return dir, err
	}
	labels := salLabels(sc.Input)
	p, err := output.SensitivityPlot(frames, labels)
	if err != nil {
		return dir, err
	}
	if err := output.SavePNG(p, filepath.Join(dir, SALPlotFile), 6*vg.Inch, 4*vg.Inch); err != nil {
		return dir, err
	}
	if sc.Input.KeepGrids {
		for i, f := range frames {
			for k, g := range f.Grids {
				name := fmt.Sprintf("Di_%d_%03d.asc", k, i)
				if err := asc.WriteFile(filepath.Join(dir, name), g, sc.Header); err != nil {
					return dir, err
				}
			}
		}
	}
	if sc.S3Bucket != "" {
		restore()
		if err := Upload(ctx, dir, sc.S3Bucket, sc.S3Prefix, sc.S3Region, log); err != nil {
			return dir, err
		}
	}
	if sc.Open {
		if err := open.Run(filepath.Join(dir, SALPlotFile)); err != nil {
			log.WithError(err).Warn("g2g: could not open output")
		}
	}
	return dir, nil
}

// writeSAL writes the sensitivity frames as a semicolon separated table.
func writeSAL(w io.Writer, frames []g2g.SensitivityFrame) error {
	cw := csv.NewWriter(w)
	cw.Comma = g2g.Separator
	if err := cw.Write([]string{"D", "VSA_lo", "VSA_hi", "Di_lo", "Di_hi"}); err != nil {
		return err
	}
	f := func(v float64) string {
		return strconv.FormatFloat(math.Round(v*1e4)/1e4, 'f', -1, 64)
	}
	for _, fr := range frames {
		if err := cw.Write([]string{f(fr.D), f(fr.VSA[0]), f(fr.VSA[1]), f(fr.Di[0]), f(fr.Di[1])}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
