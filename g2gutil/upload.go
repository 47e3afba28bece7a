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
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
)

// maxUploadRetries is the number of times an upload is retried.
const maxUploadRetries = 5

// newBackOff returns the retry policy of uploads.
var newBackOff = func() backoff.BackOff {
	return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxUploadRetries)
}

// s3Uploader returns an S3 uploader. It assumes the environment
// variables AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are set.
func s3Uploader(region string) (s3manageriface.UploaderAPI, error) {
	if region == "" {
		region = "us-east-2"
	}
	s, err := session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	})
	if err != nil {
		return nil, fmt.Errorf("g2gutil: creating AWS session: %v", err)
	}
	return s3manager.NewUploader(s), nil
}

// Upload copies the files in dir to bucket, under the key prefix
// followed by the name of dir.
func Upload(ctx context.Context, dir, bucket, prefix, region string, log logrus.FieldLogger) error {
	up, err := s3Uploader(region)
	if err != nil {
		return err
	}
	return uploadDir(ctx, up, dir, bucket, prefix, log)
}

func uploadDir(ctx context.Context, up s3manageriface.UploaderAPI, dir, bucket, prefix string, log logrus.FieldLogger) error {
	base := filepath.Base(dir)
	return filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		key := path.Join(prefix, base, filepath.ToSlash(rel))
		err = backoff.RetryNotify(
			func() error {
				f, err := os.Open(p)
				if err != nil {
					return err
				}
				defer f.Close()
				_, err = up.UploadWithContext(ctx, &s3manager.UploadInput{
					Bucket: aws.String(bucket),
					Key:    aws.String(key),
					Body:   f,
				})
				return err
			},
			backoff.WithContext(newBackOff(), ctx),
			func(err error, d time.Duration) {
				log.WithError(err).WithField("key", key).Warnf("g2gutil: upload failed; retrying in %v", d)
			},
		)
		if err != nil {
			return fmt.Errorf("g2gutil: uploading %s to s3://%s/%s: %v", p, bucket, key, err)
		}
		log.WithField("key", key).Debug("g2gutil: uploaded")
		return nil
	})
}
