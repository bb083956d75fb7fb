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

import "sort"

// Score is a scored candidate.
type Score struct {
	Id    string  `json:"userId"`
	Score float64 `json:"score"`
}

// ScoreAgainstPool computes the cosine similarity of the query against every
// pool vector except the optionally excluded id. All vectors entering here
// are L2-normalized, so cosine reduces to a dot product. The result is
// sorted by score descending; equal scores break ties by ascending id so the
// order never depends on map iteration.
func ScoreAgainstPool(query SparseVector, pool map[string]SparseVector, excludeId string) []Score {
	scores := make([]Score, 0, len(pool))
	for id, vec := range pool {
		if excludeId != "" && id == excludeId {
			continue
		}
		scores = append(scores, Score{Id: id, Score: float64(query.Dot(vec))})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Id < scores[j].Id
	})
	return scores
}

// TopK returns the first k entries of an already sorted score list, or the
// whole list when it is shorter.
func TopK(scores []Score, k int) []Score {
	if k < 0 {
		k = 0
	}
	if len(scores) <= k {
		return scores
	}
	return scores[:k]
}
