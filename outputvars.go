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
	"math"
	"sort"

	"github.com/Knetic/govaluate"
)

// DefaultFunctions are the functions available to derived column
// expressions in addition to any user-defined ones:
//
// 'exp(x)' and 'log(x)' apply the exponential and natural logarithm.
//
// 'max(a, b)' and 'min(a, b)' return the larger and smaller argument.
func DefaultFunctions() map[string]govaluate.ExpressionFunction {
	return map[string]govaluate.ExpressionFunction{
		"exp": unary("exp", math.Exp),
		"log": unary("log", math.Log),
		"max": binary("max", math.Max),
		"min": binary("min", math.Min),
	}
}

func unary(name string, f func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("g2g: got %d arguments for function '%s', but needs 1", len(args), name)
		}
		x, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("g2g: argument of '%s' is not a number", name)
		}
		return f(x), nil
	}
}

func binary(name string, f func(a, b float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("g2g: got %d arguments for function '%s', but needs 2", len(args), name)
		}
		a, aok := args[0].(float64)
		b, bok := args[1].(float64)
		if !aok || !bok {
			return nil, fmt.Errorf("g2g: arguments of '%s' are not numbers", name)
		}
		return f(a, b), nil
	}
}

// DeriveColumns adds a column to the series for each entry of exprs,
// which maps column names to expressions of other columns, e.g.
// {"Qfast": "Q - Qb"}. Columns are added in name order, so an expression
// may use derived columns whose names sort before its own. It belongs
// in CleanupFuncs after Route, once the series is complete.
func DeriveColumns(exprs map[string]string, funcs map[string]govaluate.ExpressionFunction) Manipulator {
	return func(s *Simulation) error {
		return AddDerivedColumns(s.Series, exprs, funcs)
	}
}

// AddDerivedColumns evaluates exprs over every row of s. See DeriveColumns.
func AddDerivedColumns(s *Series, exprs map[string]string, funcs map[string]govaluate.ExpressionFunction) error {
	allFuncs := DefaultFunctions()
	for k, f := range funcs {
		allFuncs[k] = f
	}
	names := make([]string, 0, len(exprs))
	for name := range exprs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, ok := s.Column(name); ok {
			return configErr("derived_vars", name, ErrParameterDomain, "column already exists")
		}
		expression, err := govaluate.NewEvaluableExpressionWithFunctions(exprs[name], allFuncs)
		if err != nil {
			return fmt.Errorf("g2g: derived column %s: %v", name, err)
		}
		vars := removeDuplicates(expression.Vars())
		cols := make([][]float64, len(vars))
		for i, v := range vars {
			c, ok := s.Column(v)
			if !ok {
				return configErr("derived_vars", v, ErrUnknownVariable, "used in expression for %s", name)
			}
			cols[i] = c
		}
		out := make([]float64, s.Len())
		params := make(map[string]interface{}, len(vars))
		for t := range out {
			for i, v := range vars {
				params[v] = cols[i][t]
			}
			r, err := expression.Evaluate(params)
			if err != nil {
				return fmt.Errorf("g2g: derived column %s, row %d: %v", name, t, err)
			}
			switch x := r.(type) {
			case float64:
				out[t] = x
			case bool:
				if x {
					out[t] = 1
				}
			default:
				return fmt.Errorf("g2g: derived column %s: expression returns %T", name, r)
			}
		}
		s.AddColumn(name, out)
	}
	return nil
}

// removeDuplicates removes all duplicated strings from a slice, returning a
// slice that contains only unique strings.
func removeDuplicates(s []string) []string {
	result := make([]string, 0, len(s))
	seen := make(map[string]bool)
	for _, val := range s {
		if !seen[val] {
			result = append(result, val)
			seen[val] = true
		}
	}
	return result
}
