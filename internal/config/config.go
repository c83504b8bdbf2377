// Package config provides configuration loading and validation for the CLI
// and API server.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/cv-architect/internal/history"
	"github.com/jonathan/cv-architect/internal/llm"
	"github.com/jonathan/cv-architect/internal/logger"
	"github.com/jonathan/cv-architect/internal/types"
)

// DefaultPort is the API listen port when none is configured.
const DefaultPort = 8080

// Config is the application configuration. It can be loaded from a JSON file;
// environment variables override file values. All fields are optional.
type Config struct {
	// AI
	APIKey string `json:"api_key,omitempty"` // Gemini API key; absence is reported on first use
	Model  string `json:"model,omitempty"`   // Gemini model name
	Market string `json:"market,omitempty"`  // Default target market

	// History
	HistoryBackend string `json:"history_backend,omitempty" validate:"omitempty,oneof=file memory sqlite postgres s3"`
	HistoryPath    string `json:"history_path,omitempty"` // JSON file or SQLite database
	DatabaseURL    string `json:"database_url,omitempty"` // PostgreSQL connection URL
	S3Bucket       string `json:"s3_bucket,omitempty" validate:"required_if=HistoryBackend s3"`
	S3Endpoint     string `json:"s3_endpoint,omitempty" validate:"omitempty,url"`
	S3Region       string `json:"s3_region,omitempty"`
	S3AccessKey    string `json:"s3_access_key,omitempty"`
	S3SecretKey    string `json:"s3_secret_key,omitempty"`

	// Events
	AMQPURL      string `json:"amqp_url,omitempty"`
	AMQPExchange string `json:"amqp_exchange,omitempty"`

	// Runtime
	ChromePath string `json:"chrome_path,omitempty"`
	UseBrowser bool   `json:"use_browser,omitempty"` // Render job pages in headless Chrome when static HTML is thin
	Port       int    `json:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	LogLevel   string `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn warning error DEBUG INFO WARN WARNING ERROR"`
	LogFormat  string `json:"log_format,omitempty" validate:"omitempty,oneof=text json"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Model:          llm.DefaultAnalysisModel,
		Market:         string(types.DefaultMarket),
		HistoryBackend: history.BackendFile,
		HistoryPath:    history.FileName,
		Port:           DefaultPort,
		LogLevel:       string(logger.LevelInfo),
		LogFormat:      string(logger.FormatText),
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Load builds the effective configuration: the optional file at path, then
// environment overrides, then defaults for anything still unset.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	merged := cfg.MergeWithDefaults(Defaults())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// ApplyEnv overrides fields with the environment variables that are set.
// GEMINI_API_KEY wins over the legacy API_KEY.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	set := func(dst *string, keys ...string) {
		for _, key := range keys {
			if v := strings.TrimSpace(getenv(key)); v != "" {
				*dst = v
				return
			}
		}
	}

	set(&c.APIKey, "GEMINI_API_KEY", "API_KEY")
	set(&c.Model, "GEMINI_MODEL")
	set(&c.Market, "CV_MARKET")
	set(&c.HistoryBackend, "HISTORY_BACKEND")
	set(&c.HistoryPath, "HISTORY_PATH")
	set(&c.DatabaseURL, "DATABASE_URL")
	set(&c.S3Bucket, "S3_BUCKET")
	set(&c.S3Endpoint, "S3_ENDPOINT")
	set(&c.S3Region, "S3_REGION")
	set(&c.S3AccessKey, "S3_ACCESS_KEY")
	set(&c.S3SecretKey, "S3_SECRET_KEY")
	set(&c.AMQPURL, "AMQP_URL")
	set(&c.AMQPExchange, "AMQP_EXCHANGE")
	set(&c.ChromePath, "CHROME_PATH")
	set(&c.LogLevel, "LOG_LEVEL")
	set(&c.LogFormat, "LOG_FORMAT")

	if v := strings.TrimSpace(getenv("USE_BROWSER")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid USE_BROWSER: %v", err)
		}
		c.UseBrowser = b
	}
	if v := strings.TrimSpace(getenv("PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT: %v", err)
		}
		c.Port = port
	}
	return nil
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that the configuration has valid values. A missing API key
// is not an error here.
func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config error: invalid value for '%s' (%s)", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}

	if _, err := types.ParseMarket(c.Market); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if strings.EqualFold(c.HistoryBackend, history.BackendPostgres) && c.DatabaseURL == "" {
		return fmt.Errorf("config error: 'database_url' is required for the postgres history backend")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&result.APIKey, defaults.APIKey)
	fill(&result.Model, defaults.Model)
	fill(&result.Market, defaults.Market)
	fill(&result.HistoryBackend, defaults.HistoryBackend)
	fill(&result.HistoryPath, defaults.HistoryPath)
	fill(&result.DatabaseURL, defaults.DatabaseURL)
	fill(&result.S3Bucket, defaults.S3Bucket)
	fill(&result.S3Endpoint, defaults.S3Endpoint)
	fill(&result.S3Region, defaults.S3Region)
	fill(&result.AMQPURL, defaults.AMQPURL)
	fill(&result.AMQPExchange, defaults.AMQPExchange)
	fill(&result.ChromePath, defaults.ChromePath)
	fill(&result.LogLevel, defaults.LogLevel)
	fill(&result.LogFormat, defaults.LogFormat)

	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bools cannot distinguish unset from false, so they are not merged.

	return result
}

// HistorySettings returns the history backend selection.
func (c *Config) HistorySettings() history.Settings {
	return history.Settings{
		Backend:     c.HistoryBackend,
		Path:        c.HistoryPath,
		DatabaseURL: c.DatabaseURL,
		S3: history.S3Config{
			Bucket:    c.S3Bucket,
			Endpoint:  c.S3Endpoint,
			Region:    c.S3Region,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
		},
	}
}

// LoggerConfig returns the logger settings.
func (c *Config) LoggerConfig() *logger.Config {
	return &logger.Config{Level: logger.Level(c.LogLevel), Format: logger.Format(strings.ToLower(c.LogFormat))}
}

// DefaultMarket returns the configured market, falling back to the built-in default.
func (c *Config) DefaultMarket() types.Market {
	m, err := types.ParseMarket(c.Market)
	if err != nil {
		return types.DefaultMarket
	}
	return m
}
