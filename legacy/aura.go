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

import "fmt"

// LocalUTCOffsetSeconds is the fixed offset of the sanctuary's local time
// from UTC. No daylight saving adjustment is applied.
const LocalUTCOffsetSeconds int64 = 2 * 60 * 60

const (
	secondsPerDay  int64 = 86400
	secondsPerHour int64 = 3600
)

// Aura is the time-of-day visual state of the painting
type Aura uint8

const (
	AuraSereneDawn      Aura = iota // 05:00 - 11:59 local
	AuraGoldenRadiance              // 12:00 - 16:59 local
	AuraMysticalShadows             // 17:00 - 20:59 local
	AuraSilentGuardian              // 21:00 - 04:59 local
)

var auraNames = map[Aura]string{
	AuraSereneDawn:      "SereneDawn",
	AuraGoldenRadiance:  "GoldenRadiance",
	AuraMysticalShadows: "MysticalShadows",
	AuraSilentGuardian:  "SilentGuardian",
}

var auraLabels = map[Aura]string{
	AuraSereneDawn:      "Serene Dawn",
	AuraGoldenRadiance:  "Golden Radiance",
	AuraMysticalShadows: "Mystical Shadows",
	AuraSilentGuardian:  "Silent Guardian",
}

// Valid reports whether a is one of the four defined states
func (a Aura) Valid() bool {
	_, ok := auraNames[a]
	return ok
}

// Name returns the identifier form, e.g. "SereneDawn"
func (a Aura) Name() string {
	if name, ok := auraNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Aura(%d)", uint8(a))
}

// String returns the human readable label, e.g. "Serene Dawn"
func (a Aura) String() string {
	if label, ok := auraLabels[a]; ok {
		return label
	}
	return fmt.Sprintf("Aura(%d)", uint8(a))
}

func (a Aura) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid aura value: %d", uint8(a))
	}
	return []byte(a.Name()), nil
}

func (a *Aura) UnmarshalText(text []byte) error {
	for tmpAura, name := range auraNames {
		if name == string(text) {
			*a = tmpAura
			return nil
		}
	}
	return fmt.Errorf("unknown aura: %q", string(text))
}

// LocalHour converts a Unix timestamp to the hour of day in [0,23] at the
// fixed local offset
func LocalHour(unixTimestamp int64) uint8 {
	localTimestamp := unixTimestamp + LocalUTCOffsetSeconds
	secondsInDay := localTimestamp % secondsPerDay
	// Timestamps before the epoch still map onto the same 24h cycle
	if secondsInDay < 0 {
		secondsInDay += secondsPerDay
	}
	return uint8(secondsInDay / secondsPerHour)
}

// AuraForHour maps a local hour to its aura
func AuraForHour(hour uint8) Aura {
	switch {
	case hour >= 5 && hour <= 11:
		return AuraSereneDawn
	case hour >= 12 && hour <= 16:
		return AuraGoldenRadiance
	case hour >= 17 && hour <= 20:
		return AuraMysticalShadows
	default:
		return AuraSilentGuardian
	}
}

// AuraAt returns the aura for a Unix timestamp
func AuraAt(unixTimestamp int64) Aura {
	return AuraForHour(LocalHour(unixTimestamp))
}
