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

package types_test

import (
	"bytes"
	"testing"

	"github.com/blinklabs-io/enshrine/database/types"
)

func TestLegacyAccountKey(t *testing.T) {
	address := bytes.Repeat([]byte{0xab}, 32)
	key := types.LegacyAccountKey(address)
	if len(key) != len(types.LegacyAccountKeyPrefix)+len(address) {
		t.Fatalf("unexpected key length: %d", len(key))
	}
	if !bytes.HasPrefix(key, []byte(types.LegacyAccountKeyPrefix)) {
		t.Fatalf("key missing prefix: %x", key)
	}
	if !bytes.Equal(key[len(types.LegacyAccountKeyPrefix):], address) {
		t.Fatalf("key does not end with address: %x", key)
	}
	// The input must not be aliased by the returned key
	key[len(key)-1] = 0x00
	if address[len(address)-1] != 0xab {
		t.Fatalf("address was modified through the returned key")
	}
}

func TestCommitTimestampEncoding(t *testing.T) {
	for _, ts := range []int64{0, 1, 255, 256, 1767225600000} {
		got := types.DecodeCommitTimestamp(types.EncodeCommitTimestamp(ts))
		if got != ts {
			t.Fatalf("timestamp %d decoded as %d", ts, got)
		}
	}
	if len(types.EncodeCommitTimestamp(0)) != 0 {
		t.Fatalf("zero timestamp should encode to no bytes")
	}
}
