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

package client

type ErrorMessage string

func (e ErrorMessage) Error() string {
	return string(e)
}

// UserProfile is the minimal user representation sent to the recommendation
// service. Known ids are enriched server-side.
type UserProfile struct {
	Id        string   `json:"id"`
	Age       *int     `json:"age,omitempty"`
	Gender    string   `json:"gender,omitempty"`
	Games     []string `json:"games,omitempty"`
	Languages []string `json:"languages,omitempty"`
}

type RecommendRequest struct {
	TargetUser        *UserProfile  `json:"targetUser"`
	Candidates        []UserProfile `json:"candidates"`
	TopK              int           `json:"topK,omitempty"`
	Mode              string        `json:"mode,omitempty"`
	TargetLikedIds    []string      `json:"targetLikedIds,omitempty"`
	TargetDislikedIds []string      `json:"targetDislikedIds,omitempty"`
}

type Score struct {
	Id    string  `json:"userId"`
	Score float64 `json:"score"`
}

type RecommendResponse struct {
	Results          []Score `json:"results"`
	ModelVersion     string  `json:"modelVersion"`
	Timestamp        string  `json:"timestamp"`
	ProcessingTimeMs int64   `json:"processingTimeMs"`
	TotalCandidates  int     `json:"totalCandidates"`
}

type Health struct {
	Status       string `json:"status"`
	ModelLoaded  bool   `json:"modelLoaded"`
	ModelVersion string `json:"modelVersion"`
	Timestamp    string `json:"timestamp"`
}

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

type MetricsRequest struct {
	RecommendedIds []string `json:"recommendedIds"`
	GroundTruth    []string `json:"groundTruth,omitempty"`
	MutualAccepts  []string `json:"mutualAccepts,omitempty"`
	ChatStarts     []string `json:"chatStarts,omitempty"`
	KValues        []int    `json:"kValues,omitempty"`
}

// MetricsReport maps metric name to per-K values.
type MetricsReport map[string]map[int]float64
