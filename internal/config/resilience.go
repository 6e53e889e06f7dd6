package config

import (
	"fmt"
	"time"
)

// Retry configuration constants
const (
	DefaultMaxRetries     = 5
	DefaultInitialWait    = 1 * time.Second
	DefaultMaxWait        = 32 * time.Second
	DefaultMultiplier     = 2.0
	DefaultJitter         = 1 * time.Second
	DefaultRequestTimeout = 30 * time.Second
)

// Quota defaults, in requests per window
const (
	DefaultReadPerMinute              = 300
	DefaultWritePerMinute             = 60
	DefaultBatchUpdatePerMinute       = 60
	DefaultDeveloperMetadataPerMinute = 100
	DefaultQuotaWindow                = 60 * time.Second
)

const (
	DefaultBaseURL      = "https://sheets.googleapis.com/v4/"
	DefaultMaxBatchSize = 100
	DefaultUserAgent    = "sheets-quota-client/1.0"
)

// RetryConfig defines retry behavior for operations.
// MaxRetries counts retries after the first attempt.
type RetryConfig struct {
	MaxRetries  int           `toml:"max_retries"`
	InitialWait time.Duration `toml:"initial_wait"`
	MaxWait     time.Duration `toml:"max_wait"`
	Multiplier  float64       `toml:"multiplier"`
	Jitter      time.Duration `toml:"jitter"`
	Timeout     time.Duration `toml:"timeout"` // per attempt
}

// Validate checks for reasonable values
func (c RetryConfig) Validate() error {
	switch {
	case c.MaxRetries < 0:
		return fmt.Errorf("max retries must not be negative, got %d", c.MaxRetries)
	case c.InitialWait < 0:
		return fmt.Errorf("initial wait must not be negative, got %v", c.InitialWait)
	case c.MaxWait < c.InitialWait:
		return fmt.Errorf("max wait %v is below initial wait %v", c.MaxWait, c.InitialWait)
	case c.Multiplier < 1:
		return fmt.Errorf("multiplier must be at least 1, got %f", c.Multiplier)
	case c.Jitter < 0:
		return fmt.Errorf("jitter must not be negative, got %v", c.Jitter)
	case c.Timeout <= 0:
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	return nil
}

// QuotaConfig sets the capacity of each quota pool over one sliding window.
type QuotaConfig struct {
	ReadPerMinute              int           `toml:"read_per_minute"`
	WritePerMinute             int           `toml:"write_per_minute"`
	BatchUpdatePerMinute       int           `toml:"batch_update_per_minute"`
	DeveloperMetadataPerMinute int           `toml:"developer_metadata_per_minute"`
	Window                     time.Duration `toml:"window"`
	// AcquireTimeout bounds the wait for a quota slot. Zero waits as long as the caller's context allows.
	AcquireTimeout time.Duration `toml:"acquire_timeout"`
}

func (c QuotaConfig) Validate() error {
	for name, v := range map[string]int{
		"read":               c.ReadPerMinute,
		"write":              c.WritePerMinute,
		"batch update":       c.BatchUpdatePerMinute,
		"developer metadata": c.DeveloperMetadataPerMinute,
	} {
		if v <= 0 {
			return fmt.Errorf("%s quota must be positive, got %d", name, v)
		}
	}
	if c.Window <= 0 {
		return fmt.Errorf("quota window must be positive, got %v", c.Window)
	}
	if c.AcquireTimeout < 0 {
		return fmt.Errorf("acquire timeout must not be negative, got %v", c.AcquireTimeout)
	}
	return nil
}

// ClientConfig contains everything the Sheets client needs besides its collaborators
type ClientConfig struct {
	BaseURL          string      `toml:"base_url"`
	UserAgent        string      `toml:"user_agent"`
	MaxBatchSize     int         `toml:"max_batch_size"`
	ValidateSheetIDs bool        `toml:"validate_sheet_ids"` // check structural requests against known sheets
	Quota            QuotaConfig `toml:"quota"`
	Retry            RetryConfig `toml:"retry"`
}

// DefaultClientConfig provides sensible defaults
var DefaultClientConfig = ClientConfig{
	BaseURL:          DefaultBaseURL,
	UserAgent:        DefaultUserAgent,
	MaxBatchSize:     DefaultMaxBatchSize,
	ValidateSheetIDs: true,
	Quota: QuotaConfig{
		ReadPerMinute:              DefaultReadPerMinute,
		WritePerMinute:             DefaultWritePerMinute,
		BatchUpdatePerMinute:       DefaultBatchUpdatePerMinute,
		DeveloperMetadataPerMinute: DefaultDeveloperMetadataPerMinute,
		Window:                     DefaultQuotaWindow,
	},
	Retry: RetryConfig{
		MaxRetries:  DefaultMaxRetries,
		InitialWait: DefaultInitialWait,
		MaxWait:     DefaultMaxWait,
		Multiplier:  DefaultMultiplier,
		Jitter:      DefaultJitter,
		Timeout:     DefaultRequestTimeout,
	},
}

func (c ClientConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	if c.MaxBatchSize <= 0 {
		return fmt.Errorf("max batch size must be positive, got %d", c.MaxBatchSize)
	}
	if err := c.Quota.Validate(); err != nil {
		return fmt.Errorf("quota: %w", err)
	}
	if err := c.Retry.Validate(); err != nil {
		return fmt.Errorf("retry: %w", err)
	}
	return nil
}
