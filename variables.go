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

import "strings"

// Variable identifies a simulated quantity.
type Variable int

// Simulation variables, in output column order.
const (
	VarD   Variable = iota // saturated zone deficit
	VarVz                  // vadose zone stock
	VarSf                  // surface stock
	VarCp                  // canopy stock
	VarVSA                 // variable source area
	VarP                   // precipitation
	VarPET                 // potential evapotranspiration
	VarIRI                 // drip or inundation irrigation
	VarIRA                 // aspersion irrigation
	VarInc                 // canopy interception
	VarIns                 // surface interception
	VarTF                  // throughfall
	VarR                   // runoff
	VarRIE                 // infiltration excess runoff
	VarRSE                 // saturation excess runoff
	VarRC                  // runoff coefficient
	VarInf                 // infiltration
	VarQv                  // recharge
	VarEvc                 // canopy evaporation
	VarEvs                 // surface evaporation
	VarEv                  // evaporation
	VarTpv                 // vadose zone transpiration
	VarTps                 // saturated zone transpiration
	VarTp                  // transpiration
	VarET                  // evapotranspiration
	VarQb                  // baseflow
	VarQs                  // stormflow
	VarQ                   // streamflow
	numVariables
)

type variableInfo struct {
	name, desc, units string
	stock             bool // integrations are averaged rather than summed
	grid              bool // has a per-cell representation
}

var variables = [numVariables]variableInfo{
	VarD:   {"D", "Saturated zone water deficit", "mm", true, true},
	VarVz:  {"Vz", "Vadose zone water stock", "mm", true, true},
	VarSf:  {"Sf", "Surface water stock", "mm", true, true},
	VarCp:  {"Cp", "Canopy water stock", "mm", true, true},
	VarVSA: {"VSA", "Variable source area", "%", true, true},
	VarP:   {"P", "Precipitation", "mm/d", false, true},
	VarPET: {"PET", "Potential evapotranspiration", "mm/d", false, true},
	VarIRI: {"IRI", "Irrigation by dripping or inundation", "mm/d", false, true},
	VarIRA: {"IRA", "Irrigation by aspersion", "mm/d", false, true},
	VarInc: {"Inc", "Interception in the canopy", "mm/d", false, true},
	VarIns: {"Ins", "Interception in the surface", "mm/d", false, true},
	VarTF:  {"TF", "Throughfall", "mm/d", false, true},
	VarR:   {"R", "Runoff", "mm/d", false, true},
	VarRIE: {"RIE", "Infiltration excess runoff (Hortonian)", "mm/d", false, true},
	VarRSE: {"RSE", "Saturation excess runoff (Dunnean)", "mm/d", false, true},
	VarRC:  {"RC", "Runoff coefficient", "%", true, true},
	VarInf: {"Inf", "Infiltration", "mm/d", false, true},
	VarQv:  {"Qv", "Recharge", "mm/d", false, true},
	VarEvc: {"Evc", "Evaporation from the canopy", "mm/d", false, true},
	VarEvs: {"Evs", "Evaporation from the surface", "mm/d", false, true},
	VarEv:  {"Ev", "Evaporation", "mm/d", false, true},
	VarTpv: {"Tpv", "Transpiration from the vadose zone", "mm/d", false, true},
	VarTps: {"Tps", "Transpiration from the saturated zone", "mm/d", false, true},
	VarTp:  {"Tp", "Transpiration", "mm/d", false, true},
	VarET:  {"ET", "Evapotranspiration", "mm/d", false, true},
	VarQb:  {"Qb", "Baseflow", "mm/d", false, false},
	VarQs:  {"Qs", "Stormflow", "mm/d", false, false},
	VarQ:   {"Q", "Streamflow", "mm/d", false, false},
}

var variablesByName map[string]Variable

func init() {
	variablesByName = make(map[string]Variable, numVariables)
	for v := Variable(0); v < numVariables; v++ {
		variablesByName[variables[v].name] = v
	}
}

// Variables returns all simulation variables in output column order.
func Variables() []Variable {
	o := make([]Variable, numVariables)
	for i := range o {
		o[i] = Variable(i)
	}
	return o
}

func (v Variable) valid() bool { return v >= 0 && v < numVariables }

func (v Variable) String() string {
	if !v.valid() {
		return "Variable(?)"
	}
	return variables[v].name
}

// Description returns a human-readable description of v.
func (v Variable) Description() string { return variables[v].desc }

// Units returns the physical units of v.
func (v Variable) Units() string { return variables[v].units }

// IsStock reports whether v is stock-like, i.e. whether its
// integration is a time average instead of a time sum.
func (v Variable) IsStock() bool { return variables[v].stock }

// IsGrid reports whether v has a per-cell representation that can be
// traced or integrated.
func (v Variable) IsGrid() bool { return variables[v].grid }

// ParseVariable returns the variable with the given name.
func ParseVariable(name string) (Variable, error) {
	v, ok := variablesByName[strings.TrimSpace(name)]
	if !ok {
		return 0, configErr("variable", name, ErrUnknownVariable, "valid names are %s", strings.Join(variableNames(), ", "))
	}
	return v, nil
}

// ParseVariables parses a hyphen-delimited list of variable names such
// as "D-Qv-VSA". Duplicates are removed and the input order is kept.
// An empty list returns no variables.
func ParseVariables(list string) ([]Variable, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil, nil
	}
	var o []Variable
	seen := make(map[Variable]bool)
	for _, tok := range strings.Split(list, "-") {
		v, err := ParseVariable(tok)
		if err != nil {
			return nil, err
		}
		if !seen[v] {
			seen[v] = true
			o = append(o, v)
		}
	}
	return o, nil
}

// ParseGridVariables is like ParseVariables but also rejects variables
// that only exist as basin-wide scalars.
func ParseGridVariables(list string) ([]Variable, error) {
	vars, err := ParseVariables(list)
	if err != nil {
		return nil, err
	}
	if err := checkGridVariables("variable", vars); err != nil {
		return nil, err
	}
	return vars, nil
}

func checkGridVariables(field string, vars []Variable) error {
	for _, v := range vars {
		if !v.valid() {
			return configErr(field, int(v), ErrUnknownVariable, "")
		}
		if !v.IsGrid() {
			return configErr(field, v.String(), ErrNotGridVariable, "%s is only available as a basin-wide series", v)
		}
	}
	return nil
}

// FormatVariables is the inverse of ParseVariables.
func FormatVariables(vars []Variable) string {
	s := make([]string, len(vars))
	for i, v := range vars {
		s[i] = v.String()
	}
	return strings.Join(s, "-")
}

func variableNames() []string {
	s := make([]string, numVariables)
	for i := range s {
		s[i] = variables[i].name
	}
	return s
}
