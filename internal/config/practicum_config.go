package config

import (
	"errors"
	"fmt"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"time"
)

const (
	DefaultRetryPeriod    = 600 * time.Second
	DefaultRequestTimeout = 30 * time.Second
)

type PracticumConfig struct {
	Token                string        `mapstructure:"token"`
	Endpoint             string        `mapstructure:"endpoint"`
	RetryPeriod          time.Duration `mapstructure:"retry_period"`
	RequestTimeout       time.Duration `mapstructure:"request_timeout"`
	MaxRequestsPerSecond float32       `mapstructure:"max_requests_per_second"`
	HeartbeatCron        string        `mapstructure:"heartbeat_cron"`
}

func (config PracticumConfig) validate() error {
	var errs []error

	if config.Endpoint == "" {
		errs = append(errs, fmt.Errorf("missing variable: endpoint"))
	}
	if config.RetryPeriod <= 0 {
		errs = append(errs, fmt.Errorf("retry_period must be positive, got %v", config.RetryPeriod))
	}
	if config.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("request_timeout must not be negative, got %v", config.RequestTimeout))
	}
	if config.MaxRequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("max_requests_per_second must not be negative"))
	}
	if config.HeartbeatCron != "" {
		if _, err := cron.ParseStandard(config.HeartbeatCron); err != nil {
			errs = append(errs, fmt.Errorf("invalid heartbeat_cron: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config PracticumConfig) missingTokens() []string {
	if config.Token == "" {
		return []string{"PRACTICUM_TOKEN"}
	}
	return nil
}

func (config PracticumConfig) bindEnvironmentVariables() error {

	bindings := map[string]string{
		"practicum.token":                   "PRACTICUM_TOKEN",
		"practicum.endpoint":                "PRACTICUM_ENDPOINT",
		"practicum.retry_period":            "RETRY_PERIOD",
		"practicum.request_timeout":         "REQUEST_TIMEOUT",
		"practicum.max_requests_per_second": "PRACTICUM_MAX_REQUESTS_PER_SECOND",
		"practicum.heartbeat_cron":          "HEARTBEAT_CRON",
	}

	var errs []error
	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}
