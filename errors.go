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
	"errors"
	"fmt"
)

// Kinds of configuration problems. A *ConfigurationError wraps one of these.
var (
	ErrShapeMismatch   = errors.New("grid shapes do not match")
	ErrParameterDomain = errors.New("parameter out of domain")
	ErrUnknownVariable = errors.New("unknown variable")
	ErrNotGridVariable = errors.New("not a grid variable")
	ErrNonFinite       = errors.New("non-finite value")
	ErrMissingInput    = errors.New("missing input")
)

// ConfigurationError is returned when a simulation is set up with invalid
// inputs. It is always detected before the time loop starts.
type ConfigurationError struct {
	// Field is the name of the offending input.
	Field string
	// Value is the offending value, if any.
	Value interface{}
	// Err is the kind of problem.
	Err error
	// Reason gives additional detail.
	Reason string
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("g2g: invalid %s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf(" (%v)", e.Value)
	}
	msg += ": " + e.Err.Error()
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Unwrap returns the kind of configuration problem.
func (e *ConfigurationError) Unwrap() error { return e.Err }

func configErr(field string, value interface{}, kind error, format string, args ...interface{}) error {
	return &ConfigurationError{
		Field:  field,
		Value:  value,
		Err:    kind,
		Reason: fmt.Sprintf(format, args...),
	}
}
