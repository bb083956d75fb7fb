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

import mapset "github.com/deckarep/golang-set/v2"

// BuildCentroid returns the weighted mean of the pool vectors referenced by
// ids, re-normalized to unit length. Ids are traversed first-occurrence-wins
// and ids absent from the pool are skipped. Every id weighs 1 unless an entry
// exists in weights. A nil result means no id resolved to a vector ("no
// centroid"), which is distinct from a zero vector.
func BuildCentroid(ids []string, pool map[string]SparseVector, weights map[string]float32) SparseVector {
	accum := make(SparseVector)
	var sumWeight float32
	seen := mapset.NewThreadUnsafeSet[string]()
	for _, id := range ids {
		if id == "" || seen.Contains(id) {
			continue
		}
		seen.Add(id)
		vec, exist := pool[id]
		if !exist || len(vec) == 0 {
			continue
		}
		weight := float32(1)
		if weights != nil {
			if w, exist := weights[id]; exist {
				weight = w
			}
		}
		accum.AddScaled(vec, weight)
		sumWeight += weight
	}
	if sumWeight == 0 {
		return nil
	}
	for index := range accum {
		accum[index] /= sumWeight
	}
	accum.L2Normalize()
	return accum
}

// BuildLikeDislikeCentroids builds the liked and disliked centroids against
// the same pool. Either may independently be nil when its id list yields no
// pool hits.
func BuildLikeDislikeCentroids(likedIds, dislikedIds []string, pool map[string]SparseVector) (liked, disliked SparseVector) {
	liked = BuildCentroid(likedIds, pool, nil)
	disliked = BuildCentroid(dislikedIds, pool, nil)
	return
}

// RocchioQuery reformulates the base query vector by relevance feedback:
//
//	q' = normalize(alpha*q + beta*liked - gamma*disliked)
//
// A nil centroid or a zero coefficient contributes nothing.
func RocchioQuery(base, liked, disliked SparseVector, alpha, beta, gamma float32) SparseVector {
	accum := make(SparseVector)
	accum.AddScaled(base, alpha)
	if liked != nil && beta != 0 {
		accum.AddScaled(liked, beta)
	}
	if disliked != nil && gamma != 0 {
		accum.AddScaled(disliked, -gamma)
	}
	accum.L2Normalize()
	return accum
}
