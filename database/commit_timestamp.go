// Copyright 2026 Blink Labs Software
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

package database

import "fmt"

// CommitTimestampError means the two stores last committed at different
// times, usually after a crash between the blob and metadata commits
type CommitTimestampError struct {
	MetadataTimestamp int64
	BlobTimestamp     int64
}

func (e CommitTimestampError) Error() string {
	return fmt.Sprintf(
		"commit timestamp mismatch: metadata at %d, blob at %d",
		e.MetadataTimestamp,
		e.BlobTimestamp,
	)
}

// checkCommitTimestamp compares the stored commit timestamps. A metadata
// store that has never committed is treated as fresh.
func (d *Database) checkCommitTimestamp() error {
	metaTs, err := d.metadata.GetCommitTimestamp()
	if err != nil {
		return fmt.Errorf("read metadata commit timestamp: %w", err)
	}
	if metaTs <= 0 {
		return nil
	}
	blobTs, err := d.blob.GetCommitTimestamp()
	if err != nil {
		return fmt.Errorf("read blob commit timestamp: %w", err)
	}
	if blobTs != metaTs {
		return CommitTimestampError{
			MetadataTimestamp: metaTs,
			BlobTimestamp:     blobTs,
		}
	}
	return nil
}

func (d *Database) updateCommitTimestamp(txn *Txn, timestamp int64) error {
	if err := d.metadata.SetCommitTimestamp(timestamp, txn.Metadata()); err != nil {
		return fmt.Errorf("metadata: %w", err)
	}
	if err := d.blob.SetCommitTimestamp(timestamp, txn.Blob()); err != nil {
		return fmt.Errorf("blob: %w", err)
	}
	return nil
}
