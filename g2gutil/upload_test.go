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
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus/hooks/test"
)

// fakeUploader records uploaded objects. The first upload of each key
// fails failures times.
type fakeUploader struct {
	s3manageriface.UploaderAPI

	failures int

	mu      sync.Mutex
	tries   map[string]int
	objects map[string]string
}

func (f *fakeUploader) UploadWithContext(ctx aws.Context, in *s3manager.UploadInput, _ ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := *in.Bucket + "/" + *in.Key
	f.tries[key]++
	if f.tries[key] <= f.failures {
		return nil, errors.New("connection reset")
	}
	b, err := ioutil.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[key] = string(b)
	return &s3manager.UploadOutput{Location: key}, nil
}

func fastBackOff(t *testing.T) {
	old := newBackOff
	newBackOff = func() backoff.BackOff {
		return backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Millisecond), 2)
	}
	t.Cleanup(func() { newBackOff = old })
}

func TestUploadDir(t *testing.T) {
	fastBackOff(t)
	dir := filepath.Join(t.TempDir(), "run_1")
	if err := os.MkdirAll(filepath.Join(dir, "asc"), os.ModePerm); err != nil {
		t.Fatal(err)
	}
	for name, content := range map[string]string{
		"series.txt": "Date;P",
		"asc/R.asc":  "ncols 1",
		"params.txt": "Parameter;Set;Min;Max",
	} {
		if err := ioutil.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	up := &fakeUploader{failures: 1, tries: make(map[string]int), objects: make(map[string]string)}
	log, hook := test.NewNullLogger()
	if err := uploadDir(context.Background(), up, dir, "bucket", "results", log); err != nil {
		t.Fatal(err)
	}
	var keys []string
	for k := range up.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	want := []string{
		"bucket/results/run_1/asc/R.asc",
		"bucket/results/run_1/params.txt",
		"bucket/results/run_1/series.txt",
	}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v; want %v", keys, want)
	}
	for i, k := range want {
		if keys[i] != k {
			t.Errorf("key %d = %s; want %s", i, keys[i], k)
		}
	}
	if c := up.objects["bucket/results/run_1/asc/R.asc"]; c != "ncols 1" {
		t.Errorf("content = %q", c)
	}
	if n := len(hook.AllEntries()); n != 3 {
		t.Errorf("%d retry warnings; want 3", n)
	}
}

func TestUploadDirFailure(t *testing.T) {
	fastBackOff(t)
	dir := t.TempDir()
	if err := ioutil.WriteFile(filepath.Join(dir, "series.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	up := &fakeUploader{failures: 10, tries: make(map[string]int), objects: make(map[string]string)}
	log, _ := test.NewNullLogger()
	if err := uploadDir(context.Background(), up, dir, "bucket", "", log); err == nil {
		t.Fatal("expected an error")
	}
	for k, n := range up.tries {
		if n != 3 {
			t.Errorf("%s tried %d times; want 3", k, n)
		}
	}
}
