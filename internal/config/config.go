package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete application configuration. Values come from the
// environment (MSY_ prefix) with an optional config.yaml underneath; the
// environment wins.
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Dashboard DashboardConfig `yaml:"dashboard" envconfig:"DASHBOARD"`
	Insights  InsightsConfig  `yaml:"insights" envconfig:"INSIGHTS"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// SecurityConfig contains CORS and rate limiting configuration. The API is
// unauthenticated by design; CORS stays open to the serving origin.
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"*" validate:"min=1"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// PathsConfig contains file system paths.
type PathsConfig struct {
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data" validate:"required"`
	WebDir  string `yaml:"web_dir" envconfig:"WEB_DIR" default:"web"`
	LogsDir string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// DashboardConfig tunes the aggregation run and the optional scheduled
// refresh. An empty RefreshCron disables the scheduler; reloads then happen
// only at startup and on the explicit reload endpoint.
type DashboardConfig struct {
	ForecastMethod      string   `yaml:"forecast_method" envconfig:"FORECAST_METHOD" default:"linear_trend" validate:"oneof=linear_trend moving_average"`
	MovingAverageWindow int      `yaml:"moving_average_window" envconfig:"MOVING_AVERAGE_WINDOW" default:"3"`
	TopDrivers          int      `yaml:"top_drivers" envconfig:"TOP_DRIVERS" default:"5" validate:"min=1"`
	CriticalIngredients []string `yaml:"critical_ingredients" envconfig:"CRITICAL_INGREDIENTS" default:"egg"`
	RefreshCron         string   `yaml:"refresh_cron" envconfig:"REFRESH_CRON"`
}

// InsightsConfig controls the AI-assisted recommendation service. Without an
// API key the service degrades to rule-based recommendations only.
type InsightsConfig struct {
	GeminiAPIKey string `yaml:"gemini_api_key" envconfig:"GEMINI_API_KEY"`
	Model        string `yaml:"model" envconfig:"MODEL" default:"gemini-1.5-flash"`
}

// Load reads configuration from the environment and an optional YAML file,
// then validates the result.
func Load() (*Config, error) {
	var cfg Config

	if path := findConfigFile(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Environment overrides the file and fills defaults.
	if err := envconfig.Process("MSY", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration with the struct tags above.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// DataDir returns the resolved data directory.
func (c *Config) DataDir() string {
	return absPath(c.Paths.DataDir)
}

// WebDir returns the resolved static dashboard directory.
func (c *Config) WebDir() string {
	return absPath(c.Paths.WebDir)
}

// LogsDir returns the resolved logs directory.
func (c *Config) LogsDir() string {
	return absPath(c.Paths.LogsDir)
}

func absPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}

func findConfigFile() string {
	for _, location := range []string{"config.yaml", "configs/config.yaml"} {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns the built-in configuration used by tests.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"*"},
			EnableCORS:     true,
			RateLimit:      RateLimitConfig{Enabled: true, RPS: 100, Burst: 50},
		},
		Logging: LoggingConfig{Level: "info", Output: "stdout", FilePath: "logs/app.log"},
		Paths:   PathsConfig{DataDir: "data", WebDir: "web", LogsDir: "logs"},
		Dashboard: DashboardConfig{
			ForecastMethod:      "linear_trend",
			MovingAverageWindow: 3,
			TopDrivers:          5,
			CriticalIngredients: []string{"egg"},
		},
		Insights: InsightsConfig{Model: "gemini-1.5-flash"},
	}
}
