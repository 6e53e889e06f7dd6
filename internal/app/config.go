package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sheets_quota_client/internal/config"
)

// Config holds application configuration
type Config struct {
	SpreadsheetID   string              `toml:"spreadsheet_id"`
	CredentialsFile string              `toml:"credentials_file"`
	Client          config.ClientConfig `toml:"client"`
}

// SetupEnvironment loads .env file and configures zerolog output and log level.
func SetupEnvironment() {
	// Load .env file if it exists
	err := godotenv.Load()

	// Configure logging
	if os.Getenv("ENV") == "production" {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(os.Stderr)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	levelStr := strings.ToLower(os.Getenv("LOGLEVEL"))
	switch levelStr {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	case "disabled":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	case "":
		// Default based on environment
		if os.Getenv("ENV") == "production" {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Warn().Msgf("Unknown LOGLEVEL '%s', defaulting to info.", levelStr)
	}

	// wait until now to report on the .env file so we have the chance to set up logging first
	if err == nil {
		log.Debug().Msg("Loaded environment variables from .env file.")
	} else {
		log.Debug().Msg("No .env file found or error loading .env file; proceeding with existing environment variables.")
	}
}

// LoadConfig builds the configuration from defaults, then the TOML file at
// path (optional; an empty path skips it), then environment variables.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		CredentialsFile: "credentials.json",
		Client:          config.DefaultClientConfig,
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("decode config %s: %w", path, err)
			}
			log.Debug().Str("path", path).Msg("Loaded config file")
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat config %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Client.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("SPREADSHEET_ID"); v != "" {
		cfg.SpreadsheetID = v
	}
	if v := os.Getenv("GOOGLE_CREDENTIALS_FILE"); v != "" {
		cfg.CredentialsFile = v
	}
	if v := os.Getenv("SHEETS_BASE_URL"); v != "" {
		cfg.Client.BaseURL = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"SHEETS_READ_QUOTA", &cfg.Client.Quota.ReadPerMinute},
		{"SHEETS_WRITE_QUOTA", &cfg.Client.Quota.WritePerMinute},
		{"SHEETS_BATCH_UPDATE_QUOTA", &cfg.Client.Quota.BatchUpdatePerMinute},
		{"SHEETS_METADATA_QUOTA", &cfg.Client.Quota.DeveloperMetadataPerMinute},
		{"SHEETS_MAX_BATCH_SIZE", &cfg.Client.MaxBatchSize},
		{"SHEETS_MAX_RETRIES", &cfg.Client.Retry.MaxRetries},
	}
	for _, e := range ints {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", e.key, v)
		}
		*e.dst = n
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"SHEETS_REQUEST_TIMEOUT", &cfg.Client.Retry.Timeout},
		{"SHEETS_MAX_BACKOFF", &cfg.Client.Retry.MaxWait},
	}
	for _, e := range durations {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s must be a duration, got %q", e.key, v)
		}
		*e.dst = d
	}
	return nil
}
