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

package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	LabelApi    = "api"
	LabelMode   = "mode"
	LabelStatus = "status"
)

var (
	RestApiRequestSecondsVec = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "teamup",
		Subsystem: "server",
		Name:      "rest_api_request_seconds",
	}, []string{LabelApi})
	RecommendRequestsTotalVec = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "teamup",
		Subsystem: "server",
		Name:      "recommend_requests_total",
	}, []string{LabelMode, LabelStatus})
	RecommendedResultsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "teamup",
		Subsystem: "server",
		Name:      "recommended_results_total",
	})
	ModelDimension = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "teamup",
		Subsystem: "server",
		Name:      "model_dimension",
	})
	ModelUsersFitted = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "teamup",
		Subsystem: "server",
		Name:      "model_users_fitted",
	})
	LastFitUnixTime = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "teamup",
		Subsystem: "server",
		Name:      "last_fit_unix_time",
	})
)
