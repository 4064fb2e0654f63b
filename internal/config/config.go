// Package config loads the CLI settings from the environment.
package config

import (
	"errors"
	"io"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed into the config struct
	ErrParsingConfig = errors.New("failed to parse environment variables into config")
	// ErrInvalidConfig is returned when a parsed value fails validation
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config holds the settings flags fall back to.
type Config struct {
	LogLevel         string        `env:"ASYNCSCHEMA_LOG_LEVEL" envDefault:"warn" validate:"oneof=trace debug info warn error disabled"`
	LogFormat        string        `env:"ASYNCSCHEMA_LOG_FORMAT" envDefault:"console" validate:"oneof=console json"`
	Locale           string        `env:"ASYNCSCHEMA_LOCALE" envDefault:"en" validate:"bcp47_language_tag"`
	Timeout          time.Duration `env:"ASYNCSCHEMA_TIMEOUT" envDefault:"30s" validate:"gt=0"`
	MetricsNamespace string        `env:"ASYNCSCHEMA_METRICS_NAMESPACE" envDefault:"asyncschema" validate:"required,excludesall=-"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads the given .env files (or ./.env when none is given and it
// exists), then parses and validates the environment. Variables already set
// in the environment win over file values.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}
	return cfg, nil
}

// Logger builds the zerolog logger described by the config.
func (c Config) Logger(w io.Writer) zerolog.Logger {
	if c.LogFormat == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
