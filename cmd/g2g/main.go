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

// Command g2g is a command-line interface for the G2G distributed
// rainfall-runoff model.
package main

import (
	"os"

	"github.com/spatialmodel/g2g/g2gutil"
)

func main() {
	if err := g2gutil.Root.Execute(); err != nil {
		g2gutil.Log.WithError(err).Error("g2g: command failed")
		os.Exit(1)
	}
}
