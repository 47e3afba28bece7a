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
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

const forcingFile = `Date;P;T;IRA
2020-01-01;10;20.5;0
2020-01-02; 0;19;1.5
2020-01-03;3.25;-2;0
`

func TestReadForcing(t *testing.T) {
	recs, err := ReadForcing(strings.NewReader(forcingFile))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("read %d records; want 3", len(recs))
	}
	want := Record{Date: time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), P: 0, T: 19, IRA: 1.5}
	if recs[1] != want {
		t.Errorf("record 1 = %+v; want %+v", recs[1], want)
	}
	if recs[2].P != 3.25 || recs[2].T != -2 || recs[2].IRI != 0 {
		t.Errorf("record 2 = %+v", recs[2])
	}
}

func TestReadForcingErrors(t *testing.T) {
	tests := []struct {
		name, in string
		err      error
	}{
		{name: "missing T column", in: "Date;P\n2020-01-01;1\n", err: ErrMissingInput},
		{name: "bad date", in: "Date;P;T\n01/02/2020;1;2\n"},
		{name: "bad number", in: "Date;P;T\n2020-01-01;x;2\n"},
		{name: "short row without date", in: "P;T;Date\n5;20\n", err: ErrMissingInput},
		{name: "short row without T", in: "Date;P;T\n2020-01-01;5\n", err: ErrMissingInput},
		{name: "short row without IRI", in: "Date;P;T;IRA;IRI\n2020-01-01;5;20;1\n", err: ErrMissingInput},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			recs, err := ReadForcing(strings.NewReader(test.in))
			if err == nil {
				t.Fatalf("expected an error; read %+v", recs)
			}
			if test.err != nil && !errors.Is(err, test.err) {
				t.Errorf("error = %v; want %v", err, test.err)
			}
		})
	}
}

func TestWriteReadSeries(t *testing.T) {
	r, err := Simulate(scenarioInput())
	if err != nil {
		t.Fatal(err)
	}
	r.Series.AddColumn("Qfast", []float64{1, 2, 3, 4, 5})
	var buf bytes.Buffer
	if err := WriteSeries(&buf, r.Series); err != nil {
		t.Fatal(err)
	}
	header := strings.SplitN(buf.String(), "\n", 2)[0]
	if !strings.HasPrefix(header, "Date;P;T;D;Vz;Sf;Cp;VSA;PET;") || !strings.HasSuffix(header, ";Qb;Qs;Q;Qfast") {
		t.Errorf("unexpected header %q", header)
	}
	s, err := ReadSeries(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 5 || !s.Date[4].Equal(day0.AddDate(0, 0, 4)) {
		t.Fatalf("read %d rows, last date %v", s.Len(), s.Date[len(s.Date)-1])
	}
	for _, name := range r.Series.ColumnNames() {
		a, _ := r.Series.Column(name)
		b, ok := s.Column(name)
		if !ok {
			t.Errorf("column %s missing", name)
			continue
		}
		for i := range a {
			if a[i] != b[i] {
				t.Errorf("%s[%d]: %g != %g", name, i, a[i], b[i])
			}
		}
	}
}
