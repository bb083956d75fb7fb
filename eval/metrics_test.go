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

package eval

import (
	"math"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
)

const epsilon = 1e-6

func relevantSet(ids ...string) mapset.Set[string] {
	return mapset.NewThreadUnsafeSet[string](ids...)
}

func TestNormalizeIds(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, NormalizeIds([]string{"a", "", "b", "a", "c", "b"}))
	assert.Empty(t, NormalizeIds([]string{"", ""}))
	assert.Empty(t, NormalizeIds(nil))
}

func TestPrecision(t *testing.T) {
	assert.InDelta(t, 0.5, Precision([]string{"a", "b", "c"}, relevantSet("a", "c"), 2), epsilon)
	assert.InDelta(t, 2.0/3.0, Precision([]string{"a", "b", "c"}, relevantSet("a", "c"), 3), epsilon)
	// k beyond the list length falls back to the list length
	assert.InDelta(t, 2.0/3.0, Precision([]string{"a", "b", "c"}, relevantSet("a", "c"), 10), epsilon)
	assert.Zero(t, Precision(nil, relevantSet("a"), 5))
	assert.Zero(t, Precision([]string{"a"}, relevantSet("a"), 0))
	// duplicates collapse before the cutoff applies
	assert.InDelta(t, 0.5, Precision([]string{"a", "a", "b"}, relevantSet("a"), 2), epsilon)
}

func TestRecall(t *testing.T) {
	assert.InDelta(t, 0.5, Recall([]string{"a", "b", "c"}, relevantSet("a", "c"), 2), epsilon)
	assert.InDelta(t, 1.0, Recall([]string{"a", "b", "c"}, relevantSet("a", "c"), 3), epsilon)
	assert.Zero(t, Recall([]string{"a", "b"}, relevantSet(), 2))
	assert.Zero(t, Recall(nil, relevantSet("a"), 2))
}

func TestNDCG(t *testing.T) {
	// perfect ranking
	assert.InDelta(t, 1.0, NDCG([]string{"a", "b"}, relevantSet("a", "b"), 2), epsilon)
	// single relevant id at rank 2 of 2
	expected := (1 / math.Log2(3)) / (1 / math.Log2(2))
	assert.InDelta(t, expected, NDCG([]string{"x", "a"}, relevantSet("a"), 2), epsilon)
	// nothing relevant
	assert.Zero(t, NDCG([]string{"x", "y"}, relevantSet("a"), 2))
	assert.Zero(t, NDCG([]string{"a"}, relevantSet(), 2))
	// monotone in rank: relevant id earlier scores at least as high
	early := NDCG([]string{"a", "x", "y"}, relevantSet("a"), 3)
	late := NDCG([]string{"x", "y", "a"}, relevantSet("a"), 3)
	assert.Greater(t, early, late)
}

func TestHitRate(t *testing.T) {
	assert.Equal(t, 1.0, HitRate([]string{"x", "a"}, relevantSet("a"), 2))
	assert.Equal(t, 0.0, HitRate([]string{"x", "a"}, relevantSet("a"), 1))
	assert.Equal(t, 0.0, HitRate([]string{}, relevantSet("a"), 5))
	assert.Equal(t, 0.0, HitRate([]string{"a"}, relevantSet(), 5))
}

func TestEvaluate(t *testing.T) {
	report := Evaluate([]string{"a", "b", "c"}, []string{"a", "c"}, []int{2, 3})
	assert.Len(t, report, 4)
	assert.InDelta(t, 0.5, report["precision"][2], epsilon)
	assert.InDelta(t, 2.0/3.0, report["precision"][3], epsilon)
	assert.InDelta(t, 0.5, report["recall"][2], epsilon)
	assert.InDelta(t, 1.0, report["recall"][3], epsilon)
	assert.Equal(t, 1.0, report["hit_rate"][2])
	// ground truth duplicates and empties do not change the result
	clean := Evaluate([]string{"a", "b", "c"}, []string{"a", "c", "", "a"}, []int{2, 3})
	assert.Equal(t, report, clean)
}

func TestEvaluateProduct(t *testing.T) {
	report := EvaluateProduct(
		[]string{"a", "b", "c", "d"},
		[]string{"a", "c"},
		[]string{"c"},
		[]int{2, 4})
	assert.InDelta(t, 0.5, report["mutual_accept_rate"][2], epsilon)
	assert.InDelta(t, 0.5, report["mutual_accept_rate"][4], epsilon)
	assert.InDelta(t, 0.0, report["chat_start_rate"][2], epsilon)
	assert.InDelta(t, 0.25, report["chat_start_rate"][4], epsilon)
	// slate shorter than K divides by the effective slate size
	short := EvaluateProduct([]string{"a"}, []string{"a"}, nil, []int{5})
	assert.InDelta(t, 1.0, short["mutual_accept_rate"][5], epsilon)
	assert.Zero(t, short["chat_start_rate"][5])
}
