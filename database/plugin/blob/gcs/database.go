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

package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/blinklabs-io/enshrine/database/plugin/blob/internal/objectstore"
	"github.com/blinklabs-io/enshrine/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/api/option"
)

const gcsMetricNamePrefix = "database_blob_gcs_"

type BlobStoreGCS struct {
	*objectstore.Store
	promRegistry    prometheus.Registerer
	logger          *slog.Logger
	client          *storage.Client
	bucket          *storage.BucketHandle
	bucketName      string
	prefix          string
	credentialsFile string
	timeout         time.Duration
	encrypt         bool
}

// New creates a GCS-backed blob store. dataDir must be "gcs://bucket" or
// "gcs://bucket/prefix"
func New(
	dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*BlobStoreGCS, error) {
	path, _ := strings.CutPrefix(dataDir, "gcs://")
	bucketName, keyPrefix, _ := strings.Cut(path, "/")
	if !strings.HasPrefix(dataDir, "gcs://") || bucketName == "" {
		return nil, errors.New(
			"gcs blob: bucket not set (expected dataDir='gcs://<bucket>[/prefix]')",
		)
	}
	return NewWithOptions(
		WithBucket(bucketName),
		WithPrefix(keyPrefix),
		WithLogger(logger),
		WithPromRegistry(promRegistry),
	)
}

func NewWithOptions(opts ...BlobStoreGCSOptionFunc) (*BlobStoreGCS, error) {
	db := &BlobStoreGCS{
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

// ValidateCredentials checks that a configured credentials file exists. An
// empty path means application default credentials
func ValidateCredentials(credentialsFile string) error {
	if credentialsFile == "" {
		return nil
	}
	info, err := os.Stat(credentialsFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf(
				"GCS credentials file does not exist: %s",
				credentialsFile,
			)
		}
		return fmt.Errorf("GCS credentials file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf(
			"GCS credentials file is a directory: %s",
			credentialsFile,
		)
	}
	return nil
}

func (d *BlobStoreGCS) Close() error {
	if d.client == nil {
		return nil
	}
	err := d.client.Close()
	d.client = nil
	d.Store = nil
	return err
}

func (d *BlobStoreGCS) Client() *storage.Client {
	return d.client
}

func (d *BlobStoreGCS) Bucket() *storage.BucketHandle {
	return d.bucket
}

func (d *BlobStoreGCS) Start() error {
	if d.bucketName == "" {
		return errors.New("gcs blob: bucket not set")
	}
	if err := ValidateCredentials(d.credentialsFile); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOpts := []option.ClientOption{
		storage.WithDisabledClientMetrics(),
	}
	if d.credentialsFile != "" {
		clientOpts = append(
			clientOpts,
			option.WithCredentialsFile(d.credentialsFile),
		)
	}
	client, err := storage.NewGRPCClient(ctx, clientOpts...)
	if err != nil {
		return fmt.Errorf(
			"gcs blob: failed in creating storage client: %w",
			err,
		)
	}
	d.client = client
	d.bucket = client.Bucket(d.bucketName)
	d.Store = objectstore.New(
		&gcsBackend{bucket: d.bucket, prefix: d.prefix},
		objectstore.WithLogger(d.logger),
		objectstore.WithTimeout(d.timeout),
		objectstore.WithEncryption(d.encrypt),
		objectstore.WithPromRegistry(d.promRegistry, gcsMetricNamePrefix),
	)
	d.logger.Info(
		"using GCS blob store",
		"component", "database",
		"bucket", d.bucketName,
		"prefix", d.prefix,
	)
	return nil
}

func (d *BlobStoreGCS) Stop() error {
	return d.Close()
}

type gcsBackend struct {
	bucket *storage.BucketHandle
	prefix string
}

func (b *gcsBackend) object(key string) *storage.ObjectHandle {
	return b.bucket.Object(b.prefix + key)
}

func (b *gcsBackend) GetObject(ctx context.Context, key string) ([]byte, error) {
	r, err := b.object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, types.ErrBlobKeyNotFound
		}
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (b *gcsBackend) PutObject(ctx context.Context, key string, data []byte) error {
	w := b.object(key).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (b *gcsBackend) DeleteObject(ctx context.Context, key string) error {
	err := b.object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return err
	}
	return nil
}
