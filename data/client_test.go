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
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/teamup-io/teamup/config"
)

func backendConfig(url string) config.BackendConfig {
	return config.BackendConfig{URL: url, Timeout: time.Second}
}

func TestNewClientAppendsPath(t *testing.T) {
	assert.Equal(t, "http://backend:8080/api/users", NewClient(backendConfig("http://backend:8080")).URL())
	assert.Equal(t, "http://backend:8080/api/users", NewClient(backendConfig("http://backend:8080/")).URL())
	assert.Equal(t, "http://backend:8080/api/users", NewClient(backendConfig("http://backend:8080/api/users")).URL())
}

func TestFetchUsersTopLevelArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": "alice", "age": 25, "favorite_games": ["valorant"], "languages": ["EN"]},
			{"id": "bob", "age": "26", "favoriteGames": "{cs2,\"dota 2\"}"}
		]`))
	}))
	defer server.Close()
	users, err := NewClient(backendConfig(server.URL)).FetchUsers(context.Background())
	assert.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].UserId)
	assert.Equal(t, 25, *users[0].Age)
	assert.Equal(t, []string{"valorant"}, users[0].FavoriteGames)
	// languages are lowercased
	assert.Equal(t, []string{"en"}, users[0].Languages)
	// numeric strings and PostgreSQL text arrays are accepted
	assert.Equal(t, 26, *users[1].Age)
	assert.Equal(t, []string{"cs2", "dota 2"}, users[1].FavoriteGames)
}

func TestFetchUsersWrappedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": [{"id": "alice"}]}`))
	}))
	defer server.Close()
	users, err := NewClient(backendConfig(server.URL)).FetchUsers(context.Background())
	assert.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestFetchUsersSkipsMalformedRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": "alice"}, 42, "junk"]`))
	}))
	defer server.Close()
	users, err := NewClient(backendConfig(server.URL)).FetchUsers(context.Background())
	assert.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestFetchUsersErrors(t *testing.T) {
	// bad status
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()
	_, err := NewClient(backendConfig(server.URL)).FetchUsers(context.Background())
	assert.Error(t, err)
	// non-JSON payload
	server2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer server2.Close()
	_, err = NewClient(backendConfig(server2.URL)).FetchUsers(context.Background())
	assert.Error(t, err)
	// unexpected shape
	server3 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"users": []}`))
	}))
	defer server3.Close()
	_, err = NewClient(backendConfig(server3.URL)).FetchUsers(context.Background())
	assert.Error(t, err)
}

func TestUnmarshalUserRowAliases(t *testing.T) {
	snake := UnmarshalUserRow(map[string]any{
		"user_id":            "alice",
		"display_name":       "Alice",
		"photo_url":          "http://example.com/alice.png",
		"favorite_category":  "fps",
		"preference_gender":  "female",
		"preference_age_min": float64(20),
		"preference_age_max": float64(30),
	})
	assert.Equal(t, "alice", snake.UserId)
	assert.Equal(t, "Alice", snake.DisplayName)
	assert.Equal(t, "http://example.com/alice.png", snake.PhotoURL)
	assert.Equal(t, "fps", snake.FavoriteCategory)
	assert.Equal(t, "female", snake.PreferenceGender)
	assert.Equal(t, 20, *snake.PreferenceAgeMin)
	assert.Equal(t, 30, *snake.PreferenceAgeMax)

	camel := UnmarshalUserRow(map[string]any{
		"userId":           "bob",
		"displayName":      "Bob",
		"preferenceGender": "any",
	})
	assert.Equal(t, "bob", camel.UserId)
	assert.Equal(t, "Bob", camel.DisplayName)
	assert.Equal(t, "any", camel.PreferenceGender)
}

func TestUnmarshalUserRowSwapsInvertedAgeWindow(t *testing.T) {
	user := UnmarshalUserRow(map[string]any{
		"id":                 "alice",
		"preference_age_min": float64(35),
		"preference_age_max": float64(20),
	})
	assert.Equal(t, 20, *user.PreferenceAgeMin)
	assert.Equal(t, 35, *user.PreferenceAgeMax)
}

func TestUnmarshalUserRowCreatedAt(t *testing.T) {
	user := UnmarshalUserRow(map[string]any{
		"id":         "alice",
		"created_at": "2024-03-05T12:30:45Z",
	})
	assert.NotNil(t, user.CreatedAt)
	assert.Equal(t, time.Date(2024, 3, 5, 12, 30, 45, 0, time.UTC), user.CreatedAt.UTC())

	user = UnmarshalUserRow(map[string]any{
		"id":         "bob",
		"created_at": "2024-03-05 12:30:45",
	})
	assert.NotNil(t, user.CreatedAt)

	user = UnmarshalUserRow(map[string]any{
		"id":         "carol",
		"created_at": "not a date",
	})
	assert.Nil(t, user.CreatedAt)
}
