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
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/teamup-io/teamup/base/log"
	"github.com/teamup-io/teamup/config"
	"go.uber.org/zap"
)

// Client fetches the user population from the backend user store.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a backend client from configuration.
func NewClient(cfg config.BackendConfig) *Client {
	url := cfg.URL
	if !strings.HasSuffix(url, "/api/users") {
		url = strings.TrimSuffix(url, "/") + "/api/users"
	}
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// URL returns the resolved endpoint.
func (c *Client) URL() string {
	return c.url
}

// FetchUsers loads the user population from the backend and maps raw rows
// into normalized users. The payload may be a top-level array or wrapped as
// {"data": [...]}.
func (c *Client) FetchUsers(ctx context.Context) ([]User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, errors.Trace(err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("unexpected status code %d from %s", resp.StatusCode, log.RedactURL(c.url))
	}
	var payload any
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Annotate(err, "backend returned non-JSON payload")
	}
	var rows []any
	switch typed := payload.(type) {
	case []any:
		rows = typed
	case map[string]any:
		wrapped, ok := typed["data"].([]any)
		if !ok {
			return nil, errors.Errorf("unexpected payload shape (expected list or {\"data\": [...]})")
		}
		rows = wrapped
	default:
		return nil, errors.Errorf("unexpected payload shape (expected list or {\"data\": [...]})")
	}
	users := make([]User, 0, len(rows))
	for _, row := range rows {
		fields, ok := row.(map[string]any)
		if !ok {
			log.Logger().Warn("skip malformed user row", zap.Any("row", row))
			continue
		}
		users = append(users, UnmarshalUserRow(fields))
	}
	return users, nil
}

// UnmarshalUserRow converts a raw backend row into a normalized user. Field
// names are accepted in both snake_case and camelCase; array fields may be
// JSON arrays or PostgreSQL text arrays.
func UnmarshalUserRow(row map[string]any) User {
	user := User{
		UserId:               stringField(row, "id", "userId", "user_id"),
		DisplayName:          stringField(row, "display_name", "displayName", "name"),
		Email:                stringField(row, "email"),
		Age:                  intField(row, "age"),
		Gender:               stringField(row, "gender"),
		Description:          stringField(row, "description", "bio"),
		PhotoURL:             stringField(row, "photo_url", "photoUrl", "avatarUrl", "avatar"),
		FavoriteCategory:     stringField(row, "favorite_category", "favoriteCategory"),
		PreferenceGender:     stringField(row, "preference_gender", "preferenceGender"),
		PreferenceAgeMin:     intField(row, "preference_age_min", "preferenceAgeMin"),
		PreferenceAgeMax:     intField(row, "preference_age_max", "preferenceAgeMax"),
		FavoriteGames:        NormalizeTokens(arrayField(row, "favorite_games", "favoriteGames")),
		Languages:            NormalizeLanguages(arrayField(row, "languages")),
		PreferenceCategories: NormalizeTokens(arrayField(row, "preference_categories", "preferenceCategories")),
		PreferenceLanguages:  NormalizeLanguages(arrayField(row, "preference_languages", "preferenceLanguages")),
		Liked:                NormalizeTokens(arrayField(row, "liked")),
		Disliked:             NormalizeTokens(arrayField(row, "disliked")),
		CreatedAt:            timeField(row, "created_at", "createdAt"),
	}
	// repair an inverted partner age window
	if user.PreferenceAgeMin != nil && user.PreferenceAgeMax != nil &&
		*user.PreferenceAgeMin > *user.PreferenceAgeMax {
		log.Logger().Warn("preference age window inverted, swapping",
			zap.String("user_id", user.UserId),
			zap.Int("preference_age_min", *user.PreferenceAgeMin),
			zap.Int("preference_age_max", *user.PreferenceAgeMax))
		user.PreferenceAgeMin, user.PreferenceAgeMax = user.PreferenceAgeMax, user.PreferenceAgeMin
	}
	return user
}

func firstField(row map[string]any, names ...string) any {
	for _, name := range names {
		if value, exist := row[name]; exist && value != nil {
			return value
		}
	}
	return nil
}

func stringField(row map[string]any, names ...string) string {
	value := firstField(row, names...)
	if value == nil {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return fmt.Sprint(typed)
	}
}

func intField(row map[string]any, names ...string) *int {
	value := firstField(row, names...)
	switch typed := value.(type) {
	case float64:
		parsed := int(typed)
		return &parsed
	case string:
		trimmed := strings.TrimSpace(typed)
		if trimmed == "" {
			return nil
		}
		parsed, err := strconv.Atoi(trimmed)
		if err != nil {
			return nil
		}
		return &parsed
	default:
		return nil
	}
}

func arrayField(row map[string]any, names ...string) []string {
	value := firstField(row, names...)
	switch typed := value.(type) {
	case []any:
		return lo.FilterMap(typed, func(item any, _ int) (string, bool) {
			if item == nil {
				return "", false
			}
			token := strings.TrimSpace(fmt.Sprint(item))
			return token, token != ""
		})
	case string:
		return ParseTextArray(typed)
	default:
		return nil
	}
}

func timeField(row map[string]any, names ...string) *time.Time {
	raw := stringField(row, names...)
	if raw == "" {
		return nil
	}
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05.999999", "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed
		}
	}
	log.Logger().Warn("failed to parse created_at", zap.String("created_at", raw))
	return nil
}
