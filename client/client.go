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

// Package client is a typed Go client for the TeamUp recommendation service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

type TeamupClient struct {
	entryPoint string
	httpClient http.Client
}

func NewTeamupClient(entryPoint string) *TeamupClient {
	return &TeamupClient{
		entryPoint: strings.TrimSuffix(entryPoint, "/"),
	}
}

// Recommend ranks candidate users for a target user.
func (c *TeamupClient) Recommend(ctx context.Context, request RecommendRequest) (*RecommendResponse, error) {
	var response RecommendResponse
	if err := c.do(ctx, http.MethodPost, "/api/recommend", request, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Health checks the liveness of the service and of the fitted model.
func (c *TeamupClient) Health(ctx context.Context) (*Health, error) {
	var health Health
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// ModelInfo fetches information about the fitted model.
func (c *TeamupClient) ModelInfo(ctx context.Context) (*ModelInfo, error) {
	var info ModelInfo
	if err := c.do(ctx, http.MethodGet, "/api/model-info", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// EvaluateMetrics evaluates a logged recommendation list against outcomes.
func (c *TeamupClient) EvaluateMetrics(ctx context.Context, request MetricsRequest) (MetricsReport, error) {
	var report MetricsReport
	if err := c.do(ctx, http.MethodPost, "/api/metrics", request, &report); err != nil {
		return nil, err
	}
	return report, nil
}

func (c *TeamupClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.entryPoint+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	buf := new(strings.Builder)
	if _, err = io.Copy(buf, resp.Body); err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return ErrorMessage(buf.String())
	}
	return json.Unmarshal([]byte(buf.String()), out)
}
