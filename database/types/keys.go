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

package types

import (
	"math/big"
	"slices"
)

const (
	LegacyAccountKeyPrefix = "la"
	CommitTimestampBlobKey = "metadata_commit_timestamp"
)

// LegacyAccountKey returns the blob key holding the account data of the
// record at the given address
func LegacyAccountKey(address []byte) []byte {
	return slices.Concat([]byte(LegacyAccountKeyPrefix), address)
}

// EncodeCommitTimestamp renders a commit timestamp as the minimal big-endian
// bytes stored under CommitTimestampBlobKey
func EncodeCommitTimestamp(timestamp int64) []byte {
	return new(big.Int).SetInt64(timestamp).Bytes()
}

func DecodeCommitTimestamp(data []byte) int64 {
	return new(big.Int).SetBytes(data).Int64()
}
