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
	"github.com/teamup-io/teamup/base/log"
	"github.com/teamup-io/teamup/config"
	"github.com/teamup-io/teamup/data"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Recommendation modes.
const (
	ModeStrict   = "strict"   // rank by the target's profile vector only
	ModeFeedback = "feedback" // rank by the Rocchio-reformulated query
)

// ModelVersion identifies the output contract of this recommender.
const ModelVersion = "content-based-v1"

// Recommender ranks candidate users for a target user with sparse feature
// vectors and cosine similarity. It holds at most one fitted featurizer
// generation, published with an atomic pointer swap: every in-flight
// Recommend observes one complete generation, old or new, never a torn
// mixture. Concurrent Fit calls may race; the last to publish wins.
type Recommender struct {
	cfg        config.ContentBasedConfig
	generation atomic.Pointer[Featurizer]
}

// NewRecommender creates an unfit recommender. Recommend returns empty
// results until the first successful Fit.
func NewRecommender(cfg config.ContentBasedConfig) *Recommender {
	return &Recommender{cfg: cfg}
}

// Fit builds a fresh featurizer generation from the user population and
// publishes it wholesale. Fitting against an empty population is rejected so
// a usable generation is never replaced by a vacuous one.
func (r *Recommender) Fit(users []data.User) {
	if len(users) == 0 {
		log.Logger().Warn("refuse to fit featurizer on empty population")
		return
	}
	featurizer := NewFeaturizer(r.cfg, users)
	r.generation.Store(featurizer)
	games, categories, languages := featurizer.VocabSizes()
	log.Logger().Info("featurizer fitted",
		zap.Int("dim", featurizer.Dim()),
		zap.Int("vocab_games", games),
		zap.Int("vocab_categories", categories),
		zap.Int("vocab_languages", languages),
		zap.Int("num_users", len(users)))
}

// Fitted reports whether a generation has been published.
func (r *Recommender) Fitted() bool {
	return r.generation.Load() != nil
}

// Recommend ranks candidates for the target and returns at most topK scored
// ids, best first. "No signal" conditions (unfit recommender, target or pool
// without recognized facets, nobody eligible) return an empty result rather
// than an error. An unrecognized mode falls back to feedback mode.
func (r *Recommender) Recommend(target *data.User, candidates []data.User, topK int, mode string) []Score {
	featurizer := r.generation.Load()
	if featurizer == nil {
		log.Logger().Error("recommend before fit", zap.String("user_id", target.UserId))
		return nil
	}
	// transform the target
	base := featurizer.Transform(target)
	if len(base) == 0 {
		log.Logger().Warn("target produced empty vector", zap.String("user_id", target.UserId))
		return nil
	}
	// hard eligibility constraints
	eligible := EligibilityFilter(target)
	pool := make(map[string]SparseVector)
	for i := range candidates {
		candidate := &candidates[i]
		if candidate.UserId == target.UserId || !eligible(candidate) {
			continue
		}
		vec := featurizer.Transform(candidate)
		if len(vec) > 0 {
			pool[candidate.UserId] = vec
		}
	}
	if len(pool) == 0 {
		log.Logger().Warn("no eligible candidates with recognized facets",
			zap.String("user_id", target.UserId),
			zap.Int("num_candidates", len(candidates)))
		return nil
	}
	// build the query vector
	var query SparseVector
	switch mode {
	case ModeStrict:
		query = base
	case ModeFeedback:
		query = r.feedbackQuery(target, base, pool)
	default:
		log.Logger().Warn("unknown recommendation mode, falling back to feedback",
			zap.String("mode", mode))
		query = r.feedbackQuery(target, base, pool)
	}
	// score and truncate
	scores := TopK(ScoreAgainstPool(query, pool, ""), topK)
	if len(scores) < topK {
		log.Logger().Info("fewer recommendations than requested",
			zap.String("user_id", target.UserId),
			zap.Int("top_k", topK),
			zap.Int("returned", len(scores)))
	}
	return scores
}

// feedbackQuery reformulates the base vector with Rocchio relevance
// feedback. Centroids are built only from likes and dislikes present in the
// current request's candidate pool; references outside the pool contribute
// nothing.
func (r *Recommender) feedbackQuery(target *data.User, base SparseVector, pool map[string]SparseVector) SparseVector {
	liked, disliked := BuildLikeDislikeCentroids(target.Liked, target.Disliked, pool)
	return RocchioQuery(base, liked, disliked, r.cfg.Alpha, r.cfg.Beta, r.cfg.Gamma)
}

// ModelInfo is a read-only snapshot of the published generation, exposed for
// observability endpoints.
type ModelInfo struct {
	Fitted          bool    `json:"fitted"`
	Version         string  `json:"version"`
	Dimension       int     `json:"dimension"`
	VocabGames      int     `json:"vocabGames"`
	VocabCategories int     `json:"vocabCategories"`
	VocabLanguages  int     `json:"vocabLanguages"`
	Alpha           float32 `json:"alpha"`
	Beta            float32 `json:"beta"`
	Gamma           float32 `json:"gamma"`
	UsersFitted     int     `json:"usersFitted"`
}

// ModelInfo returns a snapshot of the currently published generation.
func (r *Recommender) ModelInfo() ModelInfo {
	info := ModelInfo{
		Version: ModelVersion,
		Alpha:   r.cfg.Alpha,
		Beta:    r.cfg.Beta,
		Gamma:   r.cfg.Gamma,
	}
	featurizer := r.generation.Load()
	if featurizer == nil {
		return info
	}
	info.Fitted = true
	info.Dimension = featurizer.Dim()
	info.VocabGames, info.VocabCategories, info.VocabLanguages = featurizer.VocabSizes()
	info.UsersFitted = featurizer.NumUsers()
	return info
}

// FeatureNames exposes the published generation's feature labels for
// debugging. Returns nil when unfit.
func (r *Recommender) FeatureNames() []string {
	featurizer := r.generation.Load()
	if featurizer == nil {
		return nil
	}
	return featurizer.FeatureNames()
}
