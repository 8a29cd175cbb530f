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
	"testing"
	"time"

	"github.com/blinklabs-io/enshrine/database/plugin"
	"github.com/blinklabs-io/enshrine/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURL(t *testing.T) {
	bucket, prefix, err := parseURL("s3://archive/legacy/records/")
	require.NoError(t, err)
	assert.Equal(t, "archive", bucket)
	assert.Equal(t, "legacy/records/", prefix)

	bucket, prefix, err = parseURL("s3://archive")
	require.NoError(t, err)
	assert.Equal(t, "archive", bucket)
	assert.Empty(t, prefix)

	_, _, err = parseURL("gcs://archive")
	require.Error(t, err)
	_, _, err = parseURL("s3:///prefix")
	require.Error(t, err)
}

func TestNewFromCmdlineOptions(t *testing.T) {
	cmdlineOptionsMutex.Lock()
	original := cmdlineOptions
	cmdlineOptions.bucket = "test-bucket"
	cmdlineOptions.region = "us-east-1"
	cmdlineOptions.prefix = "test-prefix"
	cmdlineOptions.timeout = 5
	cmdlineOptionsMutex.Unlock()
	t.Cleanup(func() {
		cmdlineOptionsMutex.Lock()
		cmdlineOptions = original
		cmdlineOptionsMutex.Unlock()
	})

	p := NewFromCmdlineOptions(plugin.StartOptions{})
	store, ok := p.(*BlobStoreS3)
	require.True(t, ok)
	assert.Equal(t, "test-bucket", store.Bucket())
	assert.Equal(t, "us-east-1", store.region)
	assert.Equal(t, "test-prefix/", store.prefix)
	assert.Equal(t, 5*time.Second, store.timeout)
}

func TestUnstartedStore(t *testing.T) {
	store, err := NewWithOptions(WithBucket("test-bucket"))
	require.NoError(t, err)
	txn := store.NewTransaction(false)
	_, err = store.Get(txn, []byte("key"))
	require.ErrorIs(t, err, types.ErrBlobStoreUnavailable)
	require.NoError(t, store.Close())
}

func TestStartRequiresBucket(t *testing.T) {
	store, err := NewWithOptions()
	require.NoError(t, err)
	require.Error(t, store.Start())
}
