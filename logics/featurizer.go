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
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/teamup-io/teamup/config"
	"github.com/teamup-io/teamup/data"
)

// Featurizer converts users into sparse weighted feature vectors over three
// facet vocabularies (games, categories, languages). A featurizer is fitted
// at construction and immutable afterwards, so one instance can serve any
// number of concurrent Transform calls. Refitting means building a new
// Featurizer and discarding the old one.
type Featurizer struct {
	config config.ContentBasedConfig

	vocabGames      map[string]int32
	vocabCategories map[string]int32
	vocabLanguages  map[string]int32

	offsetGames      int32
	offsetCategories int32
	offsetLanguages  int32
	dim              int32
	numUsers         int
}

// NewFeaturizer builds facet vocabularies from the user population. Tokens
// are trimmed, deduplicated and sorted lexicographically, so index
// assignment is reproducible regardless of input order. Indices are
// contiguous per facet, offset by the cumulative size of preceding facets.
func NewFeaturizer(cfg config.ContentBasedConfig, users []data.User) *Featurizer {
	var rawGames, rawCategories, rawLanguages []string
	for i := range users {
		user := &users[i]
		rawGames = append(rawGames, user.FavoriteGames...)
		if user.FavoriteCategory != "" {
			rawCategories = append(rawCategories, user.FavoriteCategory)
		}
		rawCategories = append(rawCategories, user.PreferenceCategories...)
		rawLanguages = append(rawLanguages, user.Languages...)
		rawLanguages = append(rawLanguages, user.PreferenceLanguages...)
	}
	games := collectTokens(rawGames)
	categories := collectTokens(rawCategories)
	languages := collectTokens(rawLanguages)

	f := &Featurizer{
		config:           cfg,
		vocabGames:       make(map[string]int32, len(games)),
		vocabCategories:  make(map[string]int32, len(categories)),
		vocabLanguages:   make(map[string]int32, len(languages)),
		offsetGames:      0,
		offsetCategories: int32(len(games)),
		offsetLanguages:  int32(len(games) + len(categories)),
		dim:              int32(len(games) + len(categories) + len(languages)),
		numUsers:         len(users),
	}
	for i, token := range games {
		f.vocabGames[token] = f.offsetGames + int32(i)
	}
	for i, token := range categories {
		f.vocabCategories[token] = f.offsetCategories + int32(i)
	}
	for i, token := range languages {
		f.vocabLanguages[token] = f.offsetLanguages + int32(i)
	}
	return f
}

// collectTokens trims, drops empties, deduplicates and sorts facet tokens.
func collectTokens(raw []string) []string {
	seen := mapset.NewThreadUnsafeSet[string]()
	for _, token := range raw {
		token = strings.TrimSpace(token)
		if token != "" {
			seen.Add(token)
		}
	}
	tokens := seen.ToSlice()
	sort.Strings(tokens)
	return tokens
}

// Transform converts a user into a sparse feature vector. Tokens absent from
// the fitted vocabularies are dropped silently. Duplicate tokens within a
// facet contribute a single feature. The result is L2-normalized when the
// configuration asks for it; a vector with no recognized facets stays empty.
func (f *Featurizer) Transform(user *data.User) SparseVector {
	vec := make(SparseVector)
	f.setFacet(vec, f.vocabGames, user.FavoriteGames, f.config.WeightGames)
	if user.FavoriteCategory != "" {
		if index, exist := f.vocabCategories[user.FavoriteCategory]; exist {
			vec[index] = f.config.WeightCategories
		}
	}
	f.setFacet(vec, f.vocabCategories, user.PreferenceCategories, f.config.WeightCategories)
	f.setFacet(vec, f.vocabLanguages, user.Languages, f.config.WeightLanguages)
	f.setFacet(vec, f.vocabLanguages, user.PreferenceLanguages, f.config.WeightLanguages)
	if f.config.Normalize {
		vec.L2Normalize()
	}
	return vec
}

func (f *Featurizer) setFacet(vec SparseVector, vocab map[string]int32, tokens []string, weight float32) {
	seen := mapset.NewThreadUnsafeSet[string]()
	for _, token := range tokens {
		if seen.Contains(token) {
			continue
		}
		seen.Add(token)
		if index, exist := vocab[token]; exist {
			vec[index] = weight
		}
	}
}

// FeatureNames returns a human-readable facet::token label for every feature
// column. Intended for debugging and introspection, not for scoring.
func (f *Featurizer) FeatureNames() []string {
	names := make([]string, f.dim)
	for token, index := range f.vocabGames {
		names[index] = "game::" + token
	}
	for token, index := range f.vocabCategories {
		names[index] = "cat::" + token
	}
	for token, index := range f.vocabLanguages {
		names[index] = "lang::" + token
	}
	return names
}

// Dim returns the total number of feature columns.
func (f *Featurizer) Dim() int {
	return int(f.dim)
}

// NumUsers returns the size of the fitted population.
func (f *Featurizer) NumUsers() int {
	return f.numUsers
}

// VocabSizes returns the size of each facet vocabulary.
func (f *Featurizer) VocabSizes() (games, categories, languages int) {
	return len(f.vocabGames), len(f.vocabCategories), len(f.vocabLanguages)
}
