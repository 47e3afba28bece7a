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
)

// Field is a model parameter that is either uniform over the grid or
// spatially distributed.
type Field struct {
	// Value is used when Map is nil.
	Value float64

	// Map holds per-cell values. It is usually an index map already
	// multiplied by a reference value (see Distributed).
	Map *Grid
}

// Uniform returns a spatially uniform parameter.
func Uniform(v float64) Field { return Field{Value: v} }

// Distributed returns a spatially distributed parameter equal to
// index × value in every cell.
func Distributed(index *Grid, value float64) Field {
	return Field{Value: value, Map: index.Scale(value)}
}

// IsDistributed reports whether f varies by cell.
func (f Field) IsDistributed() bool { return f.Map != nil }

// At returns the parameter value in cell i.
func (f Field) At(i int) float64 {
	if f.Map != nil {
		return f.Map.Data[i]
	}
	return f.Value
}

// Parameters holds the hydrological parameters of a simulation.
type Parameters struct {
	CPMax Field // canopy storage capacity [mm]
	SFMax Field // surface storage capacity [mm]
	Roots Field // effective root zone depth [mm]
	Rho   Field // root zone depth factor [-]
	KSat  Field // saturated hydraulic conductivity [mm/d]

	Qo   float64 // baseflow at full saturation [mm/d]
	M    float64 // deficit decay parameter [mm]
	Lamb float64 // reference (basin mean) topographic wetness index [-]
	C    float64 // Oudin PET scaling parameter k1 [°C·m/mm]
	K    float64 // Nash cascade residence time [d]
	N    float64 // number of linear reservoirs in the Nash cascade [-]

	// Qt0 is the baseflow at the first time step [mm/d]. It sets
	// the initial global deficit.
	Qt0 float64

	// Latitude of the basin [degrees].
	Latitude float64

	// Scale is the fixed-point denominator of the simulation grids.
	// Values of at least 1000 are recommended.
	Scale int
}

// DefaultScale is the fixed-point scale used when none is given.
const DefaultScale = 1000

// rzd returns the root zone depth of cell i [mm].
func (p *Parameters) rzd(i int) float64 { return p.Roots.At(i) * p.Rho.At(i) }

// Validate checks the parameter domain. Spatial parameters must match
// the shape of basin and be finite in every cell with a non-zero weight.
func (p *Parameters) Validate(basin *Grid) error {
	scalars := []struct {
		name string
		v    float64
	}{
		{"qo", p.Qo}, {"m", p.M}, {"lamb", p.Lamb}, {"c", p.C},
		{"k", p.K}, {"n", p.N}, {"qt0", p.Qt0}, {"lat", p.Latitude},
	}
	for _, s := range scalars {
		if math.IsNaN(s.v) || math.IsInf(s.v, 0) {
			return configErr(s.name, s.v, ErrNonFinite, "")
		}
	}
	switch {
	case p.Qo <= 0:
		return configErr("qo", p.Qo, ErrParameterDomain, "must be > 0")
	case p.Qt0 <= 0:
		return configErr("qt0", p.Qt0, ErrParameterDomain, "must be > 0")
	case p.Qt0 > p.Qo:
		return configErr("qt0", p.Qt0, ErrParameterDomain, "must not exceed qo=%g", p.Qo)
	case p.M <= 0:
		return configErr("m", p.M, ErrParameterDomain, "must be > 0")
	case p.K < 1:
		return configErr("k", p.K, ErrParameterDomain, "must be >= 1")
	case p.C <= 0:
		return configErr("c", p.C, ErrParameterDomain, "must be > 0")
	case p.Scale < 1:
		return configErr("scale", p.Scale, ErrParameterDomain, "must be >= 1")
	case math.Abs(p.Latitude) > 90:
		return configErr("lat", p.Latitude, ErrParameterDomain, "must be within [-90, 90] degrees")
	}
	fields := []struct {
		name string
		f    Field
	}{
		{"cpmax", p.CPMax}, {"sfmax", p.SFMax}, {"roots", p.Roots},
		{"rho", p.Rho}, {"ksat", p.KSat},
	}
	for _, f := range fields {
		if err := f.f.validate(f.name, basin); err != nil {
			return err
		}
	}
	return nil
}

func (f Field) validate(name string, basin *Grid) error {
	if f.Map == nil {
		if math.IsNaN(f.Value) || math.IsInf(f.Value, 0) {
			return configErr(name, f.Value, ErrNonFinite, "")
		}
		if f.Value < 0 {
			return configErr(name, f.Value, ErrParameterDomain, "must be >= 0")
		}
		return nil
	}
	if !f.Map.SameShape(basin) {
		return configErr(name, nil, ErrShapeMismatch, "map is %dx%d; basin is %dx%d",
			f.Map.Rows, f.Map.Cols, basin.Rows, basin.Cols)
	}
	for i, v := range f.Map.Data {
		if basin.Data[i] == 0 {
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return configErr(name, v, ErrNonFinite, "in basin cell %d", i)
		}
		if v < 0 {
			return configErr(name, v, ErrParameterDomain, "negative value in basin cell %d", i)
		}
	}
	return nil
}
