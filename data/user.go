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

package data

import (
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/samber/lo"
)

// User stores the profile of a player. Users are created by the ingestion
// layer and are never mutated by the recommendation core.
type User struct {
	UserId               string     `json:"id"`
	DisplayName          string     `json:"displayName,omitempty"`
	Email                string     `json:"email,omitempty"`
	Age                  *int       `json:"age,omitempty"`
	Gender               string     `json:"gender,omitempty"`
	Description          string     `json:"description,omitempty"`
	PhotoURL             string     `json:"photoUrl,omitempty"`
	FavoriteCategory     string     `json:"favoriteCategory,omitempty"`
	PreferenceGender     string     `json:"preferenceGender,omitempty"`
	PreferenceAgeMin     *int       `json:"preferenceAgeMin,omitempty"`
	PreferenceAgeMax     *int       `json:"preferenceAgeMax,omitempty"`
	FavoriteGames        []string   `json:"favoriteGames,omitempty"`
	Languages            []string   `json:"languages,omitempty"`
	PreferenceCategories []string   `json:"preferenceCategories,omitempty"`
	PreferenceLanguages  []string   `json:"preferenceLanguages,omitempty"`
	Liked                []string   `json:"liked,omitempty"`
	Disliked             []string   `json:"disliked,omitempty"`
	CreatedAt            *time.Time `json:"createdAt,omitempty"`
}

// DedupKeepOrder removes duplicates while preserving the original order.
func DedupKeepOrder(items []string) []string {
	seen := mapset.NewThreadUnsafeSet[string]()
	out := make([]string, 0, len(items))
	for _, item := range items {
		if !seen.Contains(item) {
			seen.Add(item)
			out = append(out, item)
		}
	}
	return out
}

// NormalizeTokens trims tokens, drops empties and removes duplicates.
func NormalizeTokens(items []string) []string {
	trimmed := lo.FilterMap(items, func(item string, _ int) (string, bool) {
		token := strings.TrimSpace(item)
		return token, token != ""
	})
	return DedupKeepOrder(trimmed)
}

// NormalizeLanguages lowercases language tags (EN -> en) besides trimming
// and deduplication.
func NormalizeLanguages(items []string) []string {
	lowered := lo.Map(items, func(item string, _ int) string {
		return strings.ToLower(item)
	})
	return NormalizeTokens(lowered)
}
