package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config aggregates configuration for the command-line tools.
type Config struct {
	Graph   GraphConfig
	Logging LoggingConfig
}

// GraphConfig describes connectivity to the graph database endpoint.
type GraphConfig struct {
	URI            string
	Database       string
	Username       string
	Password       string
	RequestTimeout time.Duration
	// UseBolt selects the Bolt adapter instead of the HTTP endpoint.
	UseBolt        bool
	MaxConnections int
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	IncludeCaller bool
}

const (
	defaultRequestTimeout = 30 * time.Second
	defaultLoggingLevel   = "info"
	defaultLoggingFormat  = "text"
	defaultMaxConnections = 10
)

// Load reads configuration from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Graph: GraphConfig{
			URI:            os.Getenv("GRAPH_URI"),
			Database:       valueOrDefault("GRAPH_DATABASE", ""),
			Username:       os.Getenv("GRAPH_USERNAME"),
			Password:       os.Getenv("GRAPH_PASSWORD"),
			RequestTimeout: defaultRequestTimeout,
			UseBolt:        parseBoolWithDefault("GRAPH_USE_BOLT", false),
			MaxConnections: parseIntWithDefault("GRAPH_MAX_CONNECTIONS", defaultMaxConnections),
		},
		Logging: LoggingConfig{
			Level:         valueOrDefault("LOG_LEVEL", defaultLoggingLevel),
			Format:        valueOrDefault("LOG_FORMAT", defaultLoggingFormat),
			IncludeCaller: parseBoolWithDefault("LOG_INCLUDE_CALLER", false),
		},
	}

	if v := os.Getenv("GRAPH_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid GRAPH_REQUEST_TIMEOUT: %w", err)
		}
		cfg.Graph.RequestTimeout = d
	}

	return cfg, nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}
