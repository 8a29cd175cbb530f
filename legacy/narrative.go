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

// Narrative renders the journey of the painting as display lines
func Narrative(r *Record) []string {
	enshrined := "No"
	if r.IsEnshrined {
		enshrined = "Forever"
	}
	return []string{
		fmt.Sprintf("=== THE JOURNEY OF '%s' ===", r.Title),
		"",
		fmt.Sprintf("Artist: %s, age %d at creation", r.Artist, r.ArtistAgeAtCreation),
		"",
		"ORIGIN: " + r.OriginCity,
		"SANCTUARY: " + r.SanctuaryLocation,
		"FAMILY HOME: " + r.CurrentFamilyHome,
		"",
		"DEDICATION: " + r.Dedication,
		"",
		fmt.Sprintf("Current Aura: %s", r.CurrentAura),
		"Physical Status: " + r.PhysicalStatus,
		"Enshrined: " + enshrined,
		"",
		"Full story: " + r.StoryHash,
	}
}
