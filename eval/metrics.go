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

// Package eval provides offline evaluation metrics for ranked
// recommendation lists. All functions are pure. Recommendation lists coming
// from logs are normalized first: empty ids are dropped and duplicates
// collapse to their first occurrence.
package eval

import (
	"math"

	mapset "github.com/deckarep/golang-set/v2"
)

/* Evaluate Candidate Ranking */

// Metric scores a ranked recommendation list against a relevant set at a
// cutoff K.
type Metric func(recommended []string, relevant mapset.Set[string], k int) float64

// NormalizeIds drops empty ids and collapses duplicates, keeping first
// occurrence order.
func NormalizeIds(ids []string) []string {
	seen := mapset.NewThreadUnsafeSet[string]()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen.Contains(id) {
			continue
		}
		seen.Add(id)
		out = append(out, id)
	}
	return out
}

// effectiveK bounds the cutoff by the length of the recommendation list.
func effectiveK(recommended []string, k int) int {
	if k > len(recommended) {
		return len(recommended)
	}
	return k
}

func hits(recommended []string, relevant mapset.Set[string], k int) int {
	count := 0
	for _, id := range recommended[:k] {
		if relevant.Contains(id) {
			count++
		}
	}
	return count
}

// Precision is the fraction of relevant ids among the top-K recommended ids.
//
//	|relevant ∩ top-K| / K
func Precision(recommended []string, relevant mapset.Set[string], k int) float64 {
	recommended = NormalizeIds(recommended)
	n := effectiveK(recommended, k)
	if k <= 0 || n == 0 {
		return 0
	}
	return float64(hits(recommended, relevant, n)) / float64(n)
}

// Recall is the fraction of the relevant set found in the top-K recommended
// ids.
//
//	|relevant ∩ top-K| / |relevant|
func Recall(recommended []string, relevant mapset.Set[string], k int) float64 {
	recommended = NormalizeIds(recommended)
	if relevant.Cardinality() == 0 {
		return 0
	}
	n := effectiveK(recommended, k)
	if k <= 0 || n == 0 {
		return 0
	}
	return float64(hits(recommended, relevant, n)) / float64(relevant.Cardinality())
}

// NDCG means Normalized Discounted Cumulative Gain with binary relevance.
// The ideal ranking places all relevant ids first, capped at
// min(|relevant|, K).
func NDCG(recommended []string, relevant mapset.Set[string], k int) float64 {
	recommended = NormalizeIds(recommended)
	if relevant.Cardinality() == 0 || k <= 0 {
		return 0
	}
	n := effectiveK(recommended, k)
	// DCG = \sum_{i=1}^{K} \frac{rel_i}{\log_2(i+1)}
	dcg := 0.0
	for i, id := range recommended[:n] {
		if relevant.Contains(id) {
			dcg += 1 / math.Log2(float64(i)+2)
		}
	}
	// IDCG = \sum_{i=1}^{min(|REL|,K)} \frac{1}{\log_2(i+1)}
	idcg := 0.0
	for i := 0; i < relevant.Cardinality() && i < k; i++ {
		idcg += 1 / math.Log2(float64(i)+2)
	}
	if idcg == 0 {
		return 0
	}
	return dcg / idcg
}

// HitRate is 1 when at least one relevant id appears in the top-K
// recommended ids.
func HitRate(recommended []string, relevant mapset.Set[string], k int) float64 {
	recommended = NormalizeIds(recommended)
	if relevant.Cardinality() == 0 || k <= 0 {
		return 0
	}
	n := effectiveK(recommended, k)
	for _, id := range recommended[:n] {
		if relevant.Contains(id) {
			return 1
		}
	}
	return 0
}

// Report maps metric name to per-K values.
type Report map[string]map[int]float64

// Evaluate computes precision, recall, NDCG and hit rate for every K.
func Evaluate(recommended []string, groundTruth []string, kValues []int) Report {
	relevant := mapset.NewThreadUnsafeSet[string](NormalizeIds(groundTruth)...)
	metrics := map[string]Metric{
		"precision": Precision,
		"recall":    Recall,
		"ndcg":      NDCG,
		"hit_rate":  HitRate,
	}
	report := make(Report, len(metrics))
	for name, metric := range metrics {
		report[name] = make(map[int]float64, len(kValues))
		for _, k := range kValues {
			report[name][k] = metric(recommended, relevant, k)
		}
	}
	return report
}

/* Product Metrics */

// rateAtK is the density of a membership set within the shown top-K slate:
//
//	|members ∩ top-K| / K
//
// unlike Recall it divides by the slate size, not the set size.
func rateAtK(recommended []string, members mapset.Set[string], k int) float64 {
	recommended = NormalizeIds(recommended)
	n := effectiveK(recommended, k)
	if k <= 0 || n == 0 {
		return 0
	}
	return float64(hits(recommended, members, n)) / float64(n)
}

// MutualAcceptRate is the fraction of the shown slate that led to mutual
// accepts.
func MutualAcceptRate(recommended []string, mutualAccepts mapset.Set[string], k int) float64 {
	return rateAtK(recommended, mutualAccepts, k)
}

// ChatStartRate is the fraction of the shown slate that led to started
// chats.
func ChatStartRate(recommended []string, chatStarts mapset.Set[string], k int) float64 {
	return rateAtK(recommended, chatStarts, k)
}

// EvaluateProduct computes the product metrics for every K.
func EvaluateProduct(recommended []string, mutualAccepts, chatStarts []string, kValues []int) Report {
	accepts := mapset.NewThreadUnsafeSet[string](NormalizeIds(mutualAccepts)...)
	chats := mapset.NewThreadUnsafeSet[string](NormalizeIds(chatStarts)...)
	report := Report{
		"mutual_accept_rate": make(map[int]float64, len(kValues)),
		"chat_start_rate":    make(map[int]float64, len(kValues)),
	}
	for _, k := range kValues {
		report["mutual_accept_rate"][k] = MutualAcceptRate(recommended, accepts, k)
		report["chat_start_rate"][k] = ChatStartRate(recommended, chats, k)
	}
	return report
}
