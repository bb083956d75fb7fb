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

package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

// Config is the configuration of the recommendation service.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Recommend RecommendConfig `mapstructure:"recommend"`
}

// ServerConfig is the configuration of the REST server.
type ServerConfig struct {
	HttpHost string `mapstructure:"http_host"`
	HttpPort int    `mapstructure:"http_port" validate:"gt=0"`
	// DefaultN is the default number of returned recommendations.
	DefaultN int `mapstructure:"default_n" validate:"gt=0"`
	// MaxN is the maximal number of returned recommendations.
	MaxN int `mapstructure:"max_n" validate:"gt=0"`
}

// BackendConfig is the configuration of the backend user store.
type BackendConfig struct {
	// URL is the endpoint returning the user population as JSON.
	URL     string        `mapstructure:"url" validate:"required"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
	// FetchRetries is the number of retries on startup when the backend is not ready yet.
	FetchRetries  int           `mapstructure:"fetch_retries" validate:"gte=0"`
	RetryInterval time.Duration `mapstructure:"retry_interval" validate:"gt=0"`
}

// RecommendConfig is the configuration of recommendation behaviors.
type RecommendConfig struct {
	ContentBased ContentBasedConfig `mapstructure:"content_based"`
	// RefreshPeriod is the period of refitting against a refreshed user population.
	RefreshPeriod time.Duration `mapstructure:"refresh_period" validate:"gt=0"`
	// PopulationTTL is the lifetime of cached user profiles between refreshes.
	PopulationTTL time.Duration `mapstructure:"population_ttl" validate:"gt=0"`
}

// ContentBasedConfig is the configuration of the content-based model.
type ContentBasedConfig struct {
	// facet weights used by the featurizer
	WeightGames      float32 `mapstructure:"weight_games" validate:"gte=0"`
	WeightCategories float32 `mapstructure:"weight_categories" validate:"gte=0"`
	WeightLanguages  float32 `mapstructure:"weight_languages" validate:"gte=0"`
	// Normalize enables L2 normalization of feature vectors.
	Normalize bool `mapstructure:"normalize"`
	// Rocchio coefficients for feedback mode.
	Alpha float32 `mapstructure:"alpha" validate:"gte=0"`
	Beta  float32 `mapstructure:"beta" validate:"gte=0"`
	Gamma float32 `mapstructure:"gamma" validate:"gte=0"`
	// DefaultMode is used when a request omits the mode.
	DefaultMode string `mapstructure:"default_mode" validate:"oneof=strict feedback"`
}

func setDefault() {
	// [server]
	viper.SetDefault("server.http_host", "0.0.0.0")
	viper.SetDefault("server.http_port", 8087)
	viper.SetDefault("server.default_n", 20)
	viper.SetDefault("server.max_n", 100)
	// [backend]
	viper.SetDefault("backend.url", "http://backend:8080/api/users")
	viper.SetDefault("backend.timeout", 15*time.Second)
	viper.SetDefault("backend.fetch_retries", 3)
	viper.SetDefault("backend.retry_interval", 5*time.Second)
	// [recommend]
	viper.SetDefault("recommend.refresh_period", 10*time.Minute)
	viper.SetDefault("recommend.population_ttl", time.Hour)
	// [recommend.content_based]
	viper.SetDefault("recommend.content_based.weight_games", 1.0)
	viper.SetDefault("recommend.content_based.weight_categories", 0.8)
	viper.SetDefault("recommend.content_based.weight_languages", 0.6)
	viper.SetDefault("recommend.content_based.normalize", true)
	viper.SetDefault("recommend.content_based.alpha", 1.0)
	viper.SetDefault("recommend.content_based.beta", 0.6)
	viper.SetDefault("recommend.content_based.gamma", 0.3)
	viper.SetDefault("recommend.content_based.default_mode", "feedback")
}

// GetDefaultConfig returns the default configuration.
func GetDefaultConfig() *Config {
	setDefault()
	var conf Config
	if err := viper.Unmarshal(&conf); err != nil {
		panic(err)
	}
	return &conf
}

type configBinding struct {
	key string
	env string
}

func bindEnv() {
	bindings := []configBinding{
		{"server.http_host", "TEAMUP_SERVER_HTTP_HOST"},
		{"server.http_port", "TEAMUP_SERVER_HTTP_PORT"},
		{"server.default_n", "TEAMUP_SERVER_DEFAULT_N"},
		{"server.max_n", "TEAMUP_SERVER_MAX_N"},
		{"backend.url", "TEAMUP_BACKEND_URL"},
		{"backend.timeout", "TEAMUP_BACKEND_TIMEOUT"},
		{"recommend.refresh_period", "TEAMUP_RECOMMEND_REFRESH_PERIOD"},
		{"recommend.content_based.default_mode", "TEAMUP_RECOMMEND_DEFAULT_MODE"},
	}
	for _, binding := range bindings {
		err := viper.BindEnv(binding.key, binding.env)
		if err != nil {
			panic(err)
		}
	}
}

// LoadConfig loads the configuration from a TOML file. Missing values fall
// back to defaults and environment variables override the file.
func LoadConfig(path string) (*Config, error) {
	setDefault()
	bindEnv()
	if path != "" {
		viper.SetConfigType("toml")
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return nil, errors.Trace(err)
		}
	}
	var conf Config
	if err := viper.Unmarshal(&conf); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}

// Validate checks the configuration against its constraints.
func (config *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			messages := make([]string, 0, len(validationErrors))
			for _, fieldError := range validationErrors {
				messages = append(messages, fieldError.Error())
			}
			return errors.BadRequestf("invalid configuration: %s", strings.Join(messages, "; "))
		}
		return errors.Trace(err)
	}
	if config.Server.DefaultN > config.Server.MaxN {
		return errors.BadRequestf("server.default_n must not exceed server.max_n")
	}
	return nil
}
