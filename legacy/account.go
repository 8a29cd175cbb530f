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

package legacy

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
)

var ErrAccountSize = errors.New("account data has the wrong size")

// accountDiscriminator prefixes every record account so that foreign data
// stored under a record key is rejected on load
var accountDiscriminator = func() []byte {
	hash := lcommon.Blake2b256Hash([]byte("account:LegacyState"))
	return hash.Bytes()[:discriminatorSize]
}()

// MarshalAccount encodes a record into its fixed-size account layout. The
// result is always exactly Space bytes, zero padded.
func MarshalAccount(r *Record) ([]byte, error) {
	w := &accountWriter{buf: make([]byte, 0, Space)}
	w.raw(accountDiscriminator)
	w.raw(r.Authority[:])
	w.str(r.Title, MaxTitleLen)
	w.str(r.Artist, MaxNameLen)
	w.u8(r.ArtistAgeAtCreation)
	w.str(r.OriginCity, MaxCityLen)
	w.str(r.SanctuaryLocation, MaxCityLen)
	w.str(r.CurrentFamilyHome, MaxCityLen)
	w.i64(r.CreationTimestamp)
	w.str(r.StoryHash, MaxHashLen)
	w.str(r.Dedication, MaxDedicationLen)
	w.boolean(r.IsEnshrined)
	w.str(r.PhysicalStatus, MaxStatusLen)
	w.u8(uint8(r.CurrentAura))
	w.i64(r.LastAuraUpdate)
	w.u8(r.Bump)
	w.raw(r.SeedKey[:])
	if w.err != nil {
		return nil, w.err
	}
	if len(w.buf) > Space {
		return nil, fmt.Errorf("%w: encoded %d bytes", ErrAccountSize, len(w.buf))
	}
	// Pad out to the full allocation
	ret := make([]byte, Space)
	copy(ret, w.buf)
	return ret, nil
}

// UnmarshalAccount decodes a record from its account layout
func UnmarshalAccount(data []byte) (*Record, error) {
	if len(data) != Space {
		return nil, fmt.Errorf(
			"%w: expected %d bytes, got %d",
			ErrAccountSize,
			Space,
			len(data),
		)
	}
	if !bytes.Equal(data[:discriminatorSize], accountDiscriminator) {
		return nil, ErrAccountDiscriminatorMismatch
	}
	r := &accountReader{buf: data, pos: discriminatorSize}
	ret := &Record{}
	r.key(&ret.Authority)
	ret.Title = r.str(MaxTitleLen)
	ret.Artist = r.str(MaxNameLen)
	ret.ArtistAgeAtCreation = r.u8()
	ret.OriginCity = r.str(MaxCityLen)
	ret.SanctuaryLocation = r.str(MaxCityLen)
	ret.CurrentFamilyHome = r.str(MaxCityLen)
	ret.CreationTimestamp = r.i64()
	ret.StoryHash = r.str(MaxHashLen)
	ret.Dedication = r.str(MaxDedicationLen)
	ret.IsEnshrined = r.u8() != 0
	ret.PhysicalStatus = r.str(MaxStatusLen)
	ret.CurrentAura = Aura(r.u8())
	ret.LastAuraUpdate = r.i64()
	ret.Bump = r.u8()
	r.key(&ret.SeedKey)
	if r.err != nil {
		return nil, r.err
	}
	if !ret.CurrentAura.Valid() {
		return nil, fmt.Errorf(
			"%w: invalid aura %d",
			ErrAccountDiscriminatorMismatch,
			uint8(ret.CurrentAura),
		)
	}
	return ret, nil
}

type accountWriter struct {
	err error
	buf []byte
}

func (w *accountWriter) raw(data []byte) {
	w.buf = append(w.buf, data...)
}

func (w *accountWriter) u8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *accountWriter) boolean(v bool) {
	if v {
		w.u8(1)
		return
	}
	w.u8(0)
}

func (w *accountWriter) i64(v int64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(v)) // #nosec G115
}

func (w *accountWriter) str(v string, maxLen int) {
	if len(v) > maxLen {
		if w.err == nil {
			w.err = fmt.Errorf(
				"%w: string of %d bytes exceeds bound %d",
				ErrAccountSize,
				len(v),
				maxLen,
			)
		}
		return
	}
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(len(v))) // #nosec G115
	w.buf = append(w.buf, v...)
}

type accountReader struct {
	err error
	buf []byte
	pos int
}

func (r *accountReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.pos+n > len(r.buf) {
		r.err = fmt.Errorf("%w: truncated at offset %d", ErrAccountSize, r.pos)
		return nil
	}
	ret := r.buf[r.pos : r.pos+n]
	r.pos += n
	return ret
}

func (r *accountReader) u8() uint8 {
	data := r.take(1)
	if data == nil {
		return 0
	}
	return data[0]
}

func (r *accountReader) i64() int64 {
	data := r.take(int64Size)
	if data == nil {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(data)) // #nosec G115
}

func (r *accountReader) key(dst *PublicKey) {
	data := r.take(PublicKeySize)
	if data == nil {
		return
	}
	copy(dst[:], data)
}

func (r *accountReader) str(maxLen int) string {
	lenData := r.take(stringPrefixSize)
	if lenData == nil {
		return ""
	}
	strLen := binary.LittleEndian.Uint32(lenData)
	if int(strLen) > maxLen {
		r.err = fmt.Errorf(
			"%w: stored string of %d bytes exceeds bound %d",
			ErrAccountSize,
			strLen,
			maxLen,
		)
		return ""
	}
	return string(r.take(int(strLen)))
}
