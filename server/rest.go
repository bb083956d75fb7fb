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
	"context"
	"fmt"
	"net/http"
	"time"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
	"github.com/teamup-io/teamup/base/log"
	"github.com/teamup-io/teamup/config"
	"github.com/teamup-io/teamup/data"
	"github.com/teamup-io/teamup/eval"
	"github.com/teamup-io/teamup/logics"
	"go.uber.org/zap"
)

// UserFetcher loads the user population from the backend user store.
type UserFetcher interface {
	FetchUsers(ctx context.Context) ([]data.User, error)
}

// RestServer implements the REST-ful recommendation API server.
type RestServer struct {
	Config      *config.Config
	Recommender *logics.Recommender
	Fetcher     UserFetcher
	HttpHost    string
	HttpPort    int
	WebService  *restful.WebService

	// populationCache keeps the latest known profile per user id so request
	// profiles can be enriched with fields the caller does not send.
	populationCache *ttlcache.Cache[string, data.User]
}

// NewRestServer creates a REST server around an unfit recommender. Call
// Serve to fit against the backend population and start listening.
func NewRestServer(cfg *config.Config, fetcher UserFetcher) *RestServer {
	return &RestServer{
		Config:      cfg,
		Recommender: logics.NewRecommender(cfg.Recommend.ContentBased),
		Fetcher:     fetcher,
		HttpHost:    cfg.Server.HttpHost,
		HttpPort:    cfg.Server.HttpPort,
		WebService:  new(restful.WebService),
		populationCache: ttlcache.New(
			ttlcache.WithTTL[string, data.User](cfg.Recommend.PopulationTTL)),
	}
}

// Serve fits the model against the backend population and starts the HTTP
// server. It blocks until the HTTP server fails.
func (s *RestServer) Serve() {
	s.initialFit(context.Background())
	go s.populationCache.Start()
	go s.refreshLoop(context.Background())
	s.StartHttpServer()
}

// StartHttpServer starts the REST-ful API server.
func (s *RestServer) StartHttpServer() {
	// register restful APIs
	s.CreateWebService()
	restful.DefaultContainer.Add(s.WebService)
	// register swagger
	specConfig := restfulspec.Config{
		WebServices: restful.RegisteredWebServices(),
		APIPath:     "/apidocs.json",
	}
	restful.DefaultContainer.Add(restfulspec.NewOpenAPIService(specConfig))
	// register prometheus
	http.Handle("/metrics", promhttp.Handler())

	log.Logger().Info("start http server",
		zap.String("url", fmt.Sprintf("http://%s:%d", s.HttpHost, s.HttpPort)))
	log.Logger().Fatal("failed to start http server",
		zap.Error(http.ListenAndServe(fmt.Sprintf("%s:%d", s.HttpHost, s.HttpPort), nil)))
}

// initialFit fits against the backend population, retrying while the backend
// comes up. A fully failed startup is tolerated: the model is lazily fitted
// on the first recommendation request instead.
func (s *RestServer) initialFit(ctx context.Context) {
	retries := s.Config.Backend.FetchRetries
	for attempt := 0; ; attempt++ {
		err := s.FetchAndFit(ctx)
		if err == nil {
			return
		}
		if attempt >= retries {
			log.Logger().Warn("failed to fit on startup, will fit lazily", zap.Error(err))
			return
		}
		log.Logger().Info("backend not ready, retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("retries", retries),
			zap.Duration("retry_interval", s.Config.Backend.RetryInterval))
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.Config.Backend.RetryInterval):
		}
	}
}

// refreshLoop refits against a refreshed population periodically.
func (s *RestServer) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(s.Config.Recommend.RefreshPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.FetchAndFit(ctx); err != nil {
				log.Logger().Error("failed to refresh population", zap.Error(err))
			}
		}
	}
}

// FetchAndFit loads the population from the backend, refreshes the profile
// cache and publishes a new model generation.
func (s *RestServer) FetchAndFit(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.Config.Backend.Timeout)
	defer cancel()
	users, err := s.Fetcher.FetchUsers(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	for i := range users {
		if users[i].UserId != "" {
			s.populationCache.Set(users[i].UserId, users[i], ttlcache.DefaultTTL)
		}
	}
	s.Recommender.Fit(users)
	if info := s.Recommender.ModelInfo(); info.Fitted {
		ModelDimension.Set(float64(info.Dimension))
		ModelUsersFitted.Set(float64(info.UsersFitted))
		LastFitUnixTime.Set(float64(time.Now().Unix()))
	}
	return nil
}

// RequestIDFilter assigns a request id to requests that carry none and
// echoes it back in the response.
func RequestIDFilter(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	requestId := req.HeaderParameter("X-Request-ID")
	if requestId == "" {
		requestId = uuid.NewString()
	}
	resp.Header().Set("X-Request-ID", requestId)
	chain.ProcessFilter(req, resp)
}

func LogFilter(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	start := time.Now()
	chain.ProcessFilter(req, resp)
	RestApiRequestSecondsVec.WithLabelValues(req.SelectedRoutePath()).
		Observe(time.Since(start).Seconds())
	log.ResponseLogger(resp).Info(fmt.Sprintf("%s %s", req.Request.Method, req.Request.URL),
		zap.Int("status_code", resp.StatusCode()))
}

// CreateWebService creates web service.
func (s *RestServer) CreateWebService() {
	ws := s.WebService
	ws.Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	ws.Path("/api/")
	ws.Filter(RequestIDFilter)
	ws.Filter(LogFilter)

	// Health check
	ws.Route(ws.GET("/health").To(s.getHealth).
		Doc("Check the liveness of the service and of the fitted model.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
		Writes(HealthResponse{}))
	// Recommend candidates for a target user
	ws.Route(ws.POST("/recommend").To(s.recommend).
		Doc("Rank candidate users for a target user.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"recommendation"}).
		Reads(RecommendRequest{}).
		Writes(RecommendResponse{}))
	// Model information
	ws.Route(ws.GET("/model-info").To(s.getModelInfo).
		Doc("Get information about the fitted model.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"model"}).
		Writes(logics.ModelInfo{}))
	// Offline evaluation
	ws.Route(ws.POST("/metrics").To(s.computeMetrics).
		Doc("Evaluate a logged recommendation list against outcomes.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"measurements"}).
		Reads(MetricsRequest{}).
		Writes(eval.Report{}))
}

// UserProfile is the minimal user representation carried in requests. Known
// users are enriched from the population cache by id; unknown users are used
// as sent.
type UserProfile struct {
	Id        string   `json:"id"`
	Age       *int     `json:"age,omitempty"`
	Gender    string   `json:"gender,omitempty"`
	Games     []string `json:"games,omitempty"`
	Languages []string `json:"languages,omitempty"`
}

// RecommendRequest is the payload of POST /api/recommend.
type RecommendRequest struct {
	TargetUser        *UserProfile  `json:"targetUser"`
	Candidates        []UserProfile `json:"candidates"`
	TopK              int           `json:"topK"`
	Mode              string        `json:"mode"`
	TargetLikedIds    []string      `json:"targetLikedIds"`
	TargetDislikedIds []string      `json:"targetDislikedIds"`
}

// RecommendResponse is the response of POST /api/recommend.
type RecommendResponse struct {
	Results          []logics.Score `json:"results"`
	ModelVersion     string         `json:"modelVersion"`
	Timestamp        string         `json:"timestamp"`
	ProcessingTimeMs int64          `json:"processingTimeMs"`
	TotalCandidates  int            `json:"totalCandidates"`
}

// HealthResponse is the response of GET /api/health.
type HealthResponse struct {
	Status       string `json:"status"`
	ModelLoaded  bool   `json:"modelLoaded"`
	ModelVersion string `json:"modelVersion"`
	Timestamp    string `json:"timestamp"`
}

// MetricsRequest is the payload of POST /api/metrics.
type MetricsRequest struct {
	RecommendedIds []string `json:"recommendedIds"`
	GroundTruth    []string `json:"groundTruth"`
	MutualAccepts  []string `json:"mutualAccepts"`
	ChatStarts     []string `json:"chatStarts"`
	KValues        []int    `json:"kValues"`
}

func (s *RestServer) getHealth(_ *restful.Request, response *restful.Response) {
	Ok(response, HealthResponse{
		Status:       "healthy",
		ModelLoaded:  s.Recommender.Fitted(),
		ModelVersion: logics.ModelVersion,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *RestServer) getModelInfo(_ *restful.Request, response *restful.Response) {
	info := s.Recommender.ModelInfo()
	if !info.Fitted {
		ServiceUnavailable(response, errors.New("model not loaded"))
		return
	}
	Ok(response, info)
}

func (s *RestServer) recommend(request *restful.Request, response *restful.Response) {
	start := time.Now()
	var body RecommendRequest
	if err := request.ReadEntity(&body); err != nil {
		BadRequest(response, err)
		return
	}
	if body.TargetUser == nil || body.TargetUser.Id == "" {
		BadRequest(response, errors.BadRequestf("targetUser is required"))
		return
	}
	if len(body.Candidates) == 0 {
		BadRequest(response, errors.BadRequestf("candidates list is required"))
		return
	}
	topK := body.TopK
	if topK <= 0 {
		topK = s.Config.Server.DefaultN
	} else if topK > s.Config.Server.MaxN {
		log.ResponseLogger(response).Warn("topK exceeds limit, clamping",
			zap.Int("top_k", body.TopK), zap.Int("max_n", s.Config.Server.MaxN))
		topK = s.Config.Server.MaxN
	}
	mode := body.Mode
	if mode == "" {
		mode = s.Config.Recommend.ContentBased.DefaultMode
	}
	if mode != logics.ModeStrict && mode != logics.ModeFeedback {
		log.ResponseLogger(response).Warn("unknown mode, defaulting to feedback",
			zap.String("mode", mode))
		mode = logics.ModeFeedback
	}
	// lazily fit against the backend when startup fitting failed
	if !s.Recommender.Fitted() {
		if err := s.FetchAndFit(request.Request.Context()); err != nil || !s.Recommender.Fitted() {
			RecommendRequestsTotalVec.WithLabelValues(mode, "unavailable").Inc()
			ServiceUnavailable(response, errors.New("recommendation service not ready"))
			return
		}
	}
	target := s.resolveProfile(body.TargetUser)
	if body.TargetLikedIds != nil {
		target.Liked = body.TargetLikedIds
	}
	if body.TargetDislikedIds != nil {
		target.Disliked = body.TargetDislikedIds
	}
	candidates := lo.Map(body.Candidates, func(profile UserProfile, _ int) data.User {
		return s.resolveProfile(&profile)
	})

	scores := s.Recommender.Recommend(&target, candidates, topK, mode)
	if scores == nil {
		scores = []logics.Score{}
	}
	RecommendRequestsTotalVec.WithLabelValues(mode, "ok").Inc()
	RecommendedResultsTotal.Add(float64(len(scores)))
	processingTime := time.Since(start)
	log.ResponseLogger(response).Info("generated recommendations",
		zap.String("user_id", target.UserId),
		zap.String("mode", mode),
		zap.Int("top_k", topK),
		zap.Int("returned", len(scores)),
		zap.Duration("processing_time", processingTime))
	Ok(response, RecommendResponse{
		Results:          scores,
		ModelVersion:     logics.ModelVersion,
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
		ProcessingTimeMs: processingTime.Milliseconds(),
		TotalCandidates:  len(body.Candidates),
	})
}

// resolveProfile turns a request profile into a full user. A cached profile
// for the same id wins over the request fields; unknown ids keep only what
// the request carries.
func (s *RestServer) resolveProfile(profile *UserProfile) data.User {
	if item := s.populationCache.Get(profile.Id); item != nil {
		return item.Value()
	}
	return data.User{
		UserId:        profile.Id,
		Age:           profile.Age,
		Gender:        profile.Gender,
		FavoriteGames: data.NormalizeTokens(profile.Games),
		Languages:     data.NormalizeLanguages(profile.Languages),
	}
}

func (s *RestServer) computeMetrics(request *restful.Request, response *restful.Response) {
	var body MetricsRequest
	if err := request.ReadEntity(&body); err != nil {
		BadRequest(response, err)
		return
	}
	if len(body.RecommendedIds) == 0 {
		BadRequest(response, errors.BadRequestf("recommendedIds is required"))
		return
	}
	kValues := body.KValues
	if len(kValues) == 0 {
		kValues = []int{5, 10, 20}
	}
	report := eval.Evaluate(body.RecommendedIds, body.GroundTruth, kValues)
	for name, values := range eval.EvaluateProduct(body.RecommendedIds, body.MutualAccepts, body.ChatStarts, kValues) {
		report[name] = values
	}
	Ok(response, report)
}

// BadRequest returns a bad request error.
func BadRequest(response *restful.Response, err error) {
	log.ResponseLogger(response).Error("bad request", zap.Error(err))
	if err = response.WriteError(http.StatusBadRequest, err); err != nil {
		log.Logger().Error("failed to write error", zap.Error(err))
	}
}

// InternalServerError returns an internal server error.
func InternalServerError(response *restful.Response, err error) {
	log.ResponseLogger(response).Error("internal server error", zap.Error(err))
	if err = response.WriteError(http.StatusInternalServerError, err); err != nil {
		log.Logger().Error("failed to write error", zap.Error(err))
	}
}

// ServiceUnavailable reports that no model generation is available yet.
func ServiceUnavailable(response *restful.Response, err error) {
	log.ResponseLogger(response).Error("service unavailable", zap.Error(err))
	if err = response.WriteError(http.StatusServiceUnavailable, err); err != nil {
		log.Logger().Error("failed to write error", zap.Error(err))
	}
}

// Ok sends the content as JSON to the client.
func Ok(response *restful.Response, content interface{}) {
	if err := response.WriteAsJson(content); err != nil {
		log.Logger().Error("failed to write json", zap.Error(err))
	}
}
