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
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/teamup-io/teamup/data"
)

func gamerPopulation() []data.User {
	return []data.User{
		{UserId: "t", Age: lo.ToPtr(25), Gender: "male", PreferenceGender: "Female",
			FavoriteGames: []string{"valorant", "cs2"}},
		{UserId: "x", Gender: "female", FavoriteGames: []string{"valorant"}},
		{UserId: "y", Gender: "female", FavoriteGames: []string{"cs2"}},
		{UserId: "z", Gender: "female", FavoriteGames: []string{"cs2"}},
		{UserId: "w", Gender: "female", FavoriteGames: []string{"valorant"}},
		{UserId: "m1", Gender: "male", FavoriteGames: []string{"valorant", "cs2"}},
		{UserId: "m2", Gender: "male", FavoriteGames: []string{"cs2"}},
	}
}

func newFittedRecommender(t *testing.T) (*Recommender, []data.User) {
	users := gamerPopulation()
	recommender := NewRecommender(testConfig())
	recommender.Fit(users)
	assert.True(t, recommender.Fitted())
	return recommender, users
}

func findScore(t *testing.T, scores []Score, id string) float64 {
	for _, score := range scores {
		if score.Id == id {
			return score.Score
		}
	}
	t.Fatalf("id %s not found in scores", id)
	return 0
}

func TestRecommendStrictExcludesByGender(t *testing.T) {
	recommender, users := newFittedRecommender(t)
	target := users[0]
	scores := recommender.Recommend(&target, users[1:], 10, ModeStrict)
	// the two male candidates are excluded regardless of game overlap
	assert.Equal(t, []string{"w", "x", "y", "z"}, scoreIds(scores))
}

func TestRecommendFeedbackShiftsScores(t *testing.T) {
	recommender, users := newFittedRecommender(t)
	target := users[0]
	target.Liked = []string{"x"}    // shares valorant
	target.Disliked = []string{"y"} // shares cs2
	strict := recommender.Recommend(&target, users[1:], 10, ModeStrict)
	feedback := recommender.Recommend(&target, users[1:], 10, ModeFeedback)
	// a candidate sharing only the disliked game drops
	assert.Less(t, findScore(t, feedback, "z"), findScore(t, strict, "z"))
	// a candidate sharing only the liked game rises
	assert.Greater(t, findScore(t, feedback, "w"), findScore(t, strict, "w"))
}

func TestRecommendFeedbackOutsidePool(t *testing.T) {
	recommender, users := newFittedRecommender(t)
	target := users[0]
	target.Liked = []string{"nobody"}
	target.Disliked = []string{"also-nobody"}
	strict := recommender.Recommend(&target, users[1:], 10, ModeStrict)
	feedback := recommender.Recommend(&target, users[1:], 10, ModeFeedback)
	// likes outside the candidate pool contribute nothing
	assertSameScores(t, strict, feedback)
}

func assertSameScores(t *testing.T, expected, actual []Score) {
	assert.Equal(t, scoreIds(expected), scoreIds(actual))
	for i := range expected {
		assert.InDelta(t, expected[i].Score, actual[i].Score, epsilon)
	}
}

func TestRecommendEmptyTargetVector(t *testing.T) {
	recommender, users := newFittedRecommender(t)
	target := data.User{UserId: "stranger", FavoriteGames: []string{"chess"}}
	assert.Empty(t, recommender.Recommend(&target, users, 10, ModeStrict))
}

func TestRecommendExcludesSelf(t *testing.T) {
	recommender, users := newFittedRecommender(t)
	target := users[0]
	scores := recommender.Recommend(&target, users, 10, ModeStrict)
	assert.NotContains(t, scoreIds(scores), "t")
}

func TestRecommendTopK(t *testing.T) {
	recommender, users := newFittedRecommender(t)
	target := users[0]
	scores := recommender.Recommend(&target, users[1:], 2, ModeStrict)
	assert.Len(t, scores, 2)
	assert.Empty(t, recommender.Recommend(&target, users[1:], 0, ModeStrict))
}

func TestRecommendDeterministic(t *testing.T) {
	recommender, users := newFittedRecommender(t)
	target := users[0]
	first := recommender.Recommend(&target, users[1:], 10, ModeFeedback)
	for i := 0; i < 10; i++ {
		assertSameScores(t, first, recommender.Recommend(&target, users[1:], 10, ModeFeedback))
	}
}

func TestRecommendUnknownModeFallsBack(t *testing.T) {
	recommender, users := newFittedRecommender(t)
	target := users[0]
	target.Liked = []string{"x"}
	feedback := recommender.Recommend(&target, users[1:], 10, ModeFeedback)
	unknown := recommender.Recommend(&target, users[1:], 10, "bogus")
	assertSameScores(t, feedback, unknown)
}

func TestRecommendBeforeFit(t *testing.T) {
	recommender := NewRecommender(testConfig())
	users := gamerPopulation()
	assert.False(t, recommender.Fitted())
	assert.Empty(t, recommender.Recommend(&users[0], users[1:], 10, ModeStrict))
}

func TestFitRefusesEmptyPopulation(t *testing.T) {
	recommender := NewRecommender(testConfig())
	recommender.Fit(nil)
	assert.False(t, recommender.Fitted())
	// an empty refresh never replaces a usable generation
	recommender.Fit(gamerPopulation())
	assert.True(t, recommender.Fitted())
	dimension := recommender.ModelInfo().Dimension
	recommender.Fit(nil)
	assert.True(t, recommender.Fitted())
	assert.Equal(t, dimension, recommender.ModelInfo().Dimension)
}

func TestModelInfo(t *testing.T) {
	recommender := NewRecommender(testConfig())
	info := recommender.ModelInfo()
	assert.False(t, info.Fitted)
	assert.Equal(t, ModelVersion, info.Version)

	recommender.Fit(gamerPopulation())
	info = recommender.ModelInfo()
	assert.True(t, info.Fitted)
	assert.Equal(t, 2, info.Dimension) // valorant, cs2
	assert.Equal(t, 2, info.VocabGames)
	assert.Zero(t, info.VocabCategories)
	assert.Equal(t, 7, info.UsersFitted)
	assert.InDelta(t, 1.0, info.Alpha, epsilon)
	assert.InDelta(t, 0.6, info.Beta, epsilon)
	assert.InDelta(t, 0.3, info.Gamma, epsilon)
}

func TestFeatureNames(t *testing.T) {
	recommender := NewRecommender(testConfig())
	assert.Nil(t, recommender.FeatureNames())
	recommender.Fit(gamerPopulation())
	assert.Equal(t, []string{"game::cs2", "game::valorant"}, recommender.FeatureNames())
}
