// Copyright 2024 TeamUp Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logics

import (
	"strings"

	"github.com/teamup-io/teamup/data"
)

// EligibilityFilter returns a pure predicate that decides whether a candidate
// may be shown to the target:
//   - candidates with a known age are rejected outside the target's inclusive
//     preferred age window, when the target specifies both bounds;
//   - candidates with a known gender are rejected when the target prefers a
//     specific gender (anything but empty or "any", case-insensitive) and the
//     genders do not match case-insensitively.
//
// Missing candidate fields never cause rejection. Liked and disliked lists
// are not consulted.
func EligibilityFilter(target *data.User) func(candidate *data.User) bool {
	preferredGender := strings.ToLower(strings.TrimSpace(target.PreferenceGender))
	genderConstrained := preferredGender != "" && preferredGender != "any"
	return func(candidate *data.User) bool {
		if target.PreferenceAgeMin != nil && target.PreferenceAgeMax != nil && candidate.Age != nil {
			if *candidate.Age < *target.PreferenceAgeMin || *candidate.Age > *target.PreferenceAgeMax {
				return false
			}
		}
		if genderConstrained && candidate.Gender != "" {
			if !strings.EqualFold(strings.TrimSpace(candidate.Gender), preferredGender) {
				return false
			}
		}
		return true
	}
}
