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

import "math"

// Physical constants used by the PET estimator.
const (
	solarConstant = 1360.0 // W/m²
	latentHeat    = 2.45   // latent heat of vaporization of water [MJ/kg]
	waterDensity  = 1000.0 // kg/m³
	secondsPerDay = 24 * 3600.
)

// PETThreshold is the default temperature offset k2 of the Oudin
// formula [°C]. PET is zero when T+k2 <= 0.
const PETThreshold = 5.0

// SolarRadiation returns the instantaneous extraterrestrial solar
// radiation for Julian day `day` [W/m²].
func SolarRadiation(day int) float64 {
	return solarConstant * (1 + 0.033*math.Cos(2*math.Pi*float64(day)/365))
}

// Declination returns the solar declination angle for Julian day `day`
// [radians].
func Declination(day int) float64 {
	return (2 * math.Pi * 23.45 / 360) * math.Sin(2*math.Pi*(284+float64(day))/365)
}

// SunsetHourAngle returns the sunset hour angle [radians] given the
// declination and latitude, both in radians. Polar day and night give NaN.
func SunsetHourAngle(declination, latitude float64) float64 {
	return math.Acos(-math.Tan(latitude) * math.Tan(declination))
}

// ExtraterrestrialRadiation returns the daily integral of horizontal
// extraterrestrial radiation [MJ/(d·m²)] for Julian day `day` at
// `latitude` [radians].
func ExtraterrestrialRadiation(day int, latitude float64) float64 {
	g := SolarRadiation(day)
	decl := Declination(day)
	hss := SunsetHourAngle(decl, latitude)
	het := (secondsPerDay / math.Pi) * g * (math.Cos(latitude)*math.Cos(decl)*math.Sin(hss) +
		hss*math.Sin(latitude)*math.Sin(decl)) // J/(d·m²)
	return het / 1e6
}

// OudinPET returns potential evapotranspiration [mm/d] from the
// temperature- and radiation-based formula of Oudin et al. (2005).
// temperature is in °C, latitude in radians, k1 [°C·m/mm] is the
// scaling parameter and k2 [°C] the temperature threshold.
func OudinPET(temperature float64, day int, latitude, k1, k2 float64) float64 {
	het := ExtraterrestrialRadiation(day, latitude)
	t := temperature + k2
	if !(t > 0) {
		return 0
	}
	return (1000 * het / (latentHeat * waterDensity * k1)) * t
}

// DeficitFromBaseflow inverts the baseflow law to give the global
// deficit [mm] that produces baseflow qt0 [mm/d] (Beven and Kirkby, 1979).
// It requires 0 < qt0 and 0 < qo.
func DeficitFromBaseflow(qt0, qo, m float64) float64 {
	return -m * math.Log(qt0/qo)
}

// Baseflow returns the baseflow [mm/d] for global deficit d [mm].
func Baseflow(d, qo, m float64) float64 {
	return qo * math.Exp(-d/m)
}

// LocalDeficit returns the local deficit [mm] of a cell with
// topographic wetness index twi, given the global deficit d.
// Cells wetter than lamb have a smaller deficit; negative values
// are truncated to zero.
func LocalDeficit(d, twi, m, lamb float64) float64 {
	di := d + m*(lamb-twi)
	var mask float64
	if di > 0 {
		mask = 1
	}
	return math.Abs(di * mask)
}

// SaturationIndicator returns 1 if the stored local deficit is exactly
// zero and 0 otherwise.
func SaturationIndicator(di int32) int32 {
	if di == 0 {
		return 1
	}
	return 0
}
