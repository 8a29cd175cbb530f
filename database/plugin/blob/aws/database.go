// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package aws

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/blinklabs-io/enshrine/database/plugin/blob/internal/objectstore"
	"github.com/blinklabs-io/enshrine/database/types"
	"github.com/prometheus/client_golang/prometheus"
)

const s3MetricNamePrefix = "database_blob_s3_"

// BlobStoreS3 stores record accounts as objects in an AWS S3 bucket
type BlobStoreS3 struct {
	*objectstore.Store
	promRegistry prometheus.Registerer
	logger       *slog.Logger
	client       *s3.Client
	bucket       string
	prefix       string
	region       string
	endpoint     string
	timeout      time.Duration
	encrypt      bool
}

// New creates a new S3-backed blob store. dataDir must be "s3://bucket" or
// "s3://bucket/prefix"
func New(
	dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*BlobStoreS3, error) {
	bucket, keyPrefix, err := parseURL(dataDir)
	if err != nil {
		return nil, err
	}
	return NewWithOptions(
		WithBucket(bucket),
		WithPrefix(keyPrefix),
		WithLogger(logger),
		WithPromRegistry(promRegistry),
	)
}

func parseURL(dataDir string) (string, string, error) {
	path, ok := strings.CutPrefix(dataDir, "s3://")
	if !ok {
		return "", "", errors.New(
			"s3 blob: expected dataDir='s3://<bucket>[/prefix]'",
		)
	}
	bucket, keyPrefix, _ := strings.Cut(path, "/")
	if bucket == "" {
		return "", "", errors.New("s3 blob: bucket not set")
	}
	return bucket, normalizePrefix(keyPrefix), nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

// NewWithOptions creates a new S3-backed blob store using options. The
// client is created in Start
func NewWithOptions(opts ...BlobStoreS3OptionFunc) (*BlobStoreS3, error) {
	db := &BlobStoreS3{
		timeout: objectstore.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(db)
	}
	if db.logger == nil {
		db.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return db, nil
}

// Close implements the BlobStore interface
func (d *BlobStoreS3) Close() error {
	return d.Stop()
}

// Client returns the S3 client
func (d *BlobStoreS3) Client() *s3.Client {
	return d.client
}

// Bucket returns the bucket name
func (d *BlobStoreS3) Bucket() string {
	return d.bucket
}

// Start implements the plugin.Plugin interface
func (d *BlobStoreS3) Start() error {
	if d.bucket == "" {
		return errors.New("s3 blob: bucket not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	awsCfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithLogger(NewS3Logger(d.logger)),
		config.WithClientLogMode(aws.LogRetries),
	)
	if err != nil {
		return fmt.Errorf("s3 blob: load default AWS config: %w", err)
	}
	if d.region != "" {
		awsCfg.Region = d.region
	}
	d.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if d.endpoint != "" {
			// Custom endpoints are S3-compatible services such as minio
			o.BaseEndpoint = aws.String(d.endpoint)
			o.UsePathStyle = true
		}
	})
	d.Store = objectstore.New(
		&s3Backend{
			client: d.client,
			bucket: d.bucket,
			prefix: d.prefix,
		},
		objectstore.WithLogger(d.logger),
		objectstore.WithTimeout(d.timeout),
		objectstore.WithEncryption(d.encrypt),
		objectstore.WithPromRegistry(d.promRegistry, s3MetricNamePrefix),
	)
	d.logger.Info(
		"using S3 blob store",
		"component", "database",
		"bucket", d.bucket,
		"prefix", d.prefix,
	)
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *BlobStoreS3) Stop() error {
	// The S3 client holds no resources that need closing
	return nil
}

type s3Backend struct {
	client *s3.Client
	bucket string
	prefix string
}

func (b *s3Backend) fullKey(key string) *string {
	return aws.String(b.prefix + key)
}

func (b *s3Backend) GetObject(ctx context.Context, key string) ([]byte, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    b.fullKey(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, types.ErrBlobKeyNotFound
		}
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (b *s3Backend) PutObject(ctx context.Context, key string, data []byte) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    b.fullKey(key),
		Body:   bytes.NewReader(data),
	})
	return err
}

func (b *s3Backend) DeleteObject(ctx context.Context, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    b.fullKey(key),
	})
	if err != nil && !isS3NotFound(err) {
		return err
	}
	return nil
}

func isS3NotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
		return true
	}
	var noSuchKey *s3types.NoSuchKey
	return errors.As(err, &noSuchKey)
}
