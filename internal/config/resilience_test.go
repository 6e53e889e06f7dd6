package config

import (
	"strings"
	"testing"
	"time"
)

func TestRetryConfig(t *testing.T) {
	config := RetryConfig{
		MaxRetries:  5,
		InitialWait: 2 * time.Second,
		MaxWait:     30 * time.Second,
		Multiplier:  3.0,
		Jitter:      500 * time.Millisecond,
		Timeout:     60 * time.Second,
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
	if config.MaxRetries != 5 {
		t.Errorf("Expected MaxRetries 5, got %d", config.MaxRetries)
	}
	if config.Multiplier != 3.0 {
		t.Errorf("Expected Multiplier 3.0, got %f", config.Multiplier)
	}
}

func TestDefaultClientConfig(t *testing.T) {
	if err := DefaultClientConfig.Validate(); err != nil {
		t.Fatalf("Expected default config to be valid, got %v", err)
	}

	if DefaultClientConfig.Retry.MaxRetries != 5 {
		t.Errorf("Expected default MaxRetries 5, got %d", DefaultClientConfig.Retry.MaxRetries)
	}

	if DefaultClientConfig.Retry.InitialWait != 1*time.Second {
		t.Errorf("Expected default InitialWait 1s, got %v", DefaultClientConfig.Retry.InitialWait)
	}

	if DefaultClientConfig.Retry.Jitter != 1*time.Second {
		t.Errorf("Expected default Jitter 1s, got %v", DefaultClientConfig.Retry.Jitter)
	}

	if DefaultClientConfig.Retry.Timeout != 30*time.Second {
		t.Errorf("Expected default Timeout 30s, got %v", DefaultClientConfig.Retry.Timeout)
	}

	// Quota defaults
	if DefaultClientConfig.Quota.ReadPerMinute != 300 {
		t.Errorf("Expected default read quota 300, got %d", DefaultClientConfig.Quota.ReadPerMinute)
	}

	if DefaultClientConfig.Quota.WritePerMinute != 60 {
		t.Errorf("Expected default write quota 60, got %d", DefaultClientConfig.Quota.WritePerMinute)
	}

	if DefaultClientConfig.Quota.DeveloperMetadataPerMinute != 100 {
		t.Errorf("Expected default developer metadata quota 100, got %d", DefaultClientConfig.Quota.DeveloperMetadataPerMinute)
	}

	if DefaultClientConfig.Quota.Window != time.Minute {
		t.Errorf("Expected default window 1m, got %v", DefaultClientConfig.Quota.Window)
	}

	if DefaultClientConfig.MaxBatchSize != 100 {
		t.Errorf("Expected default MaxBatchSize 100, got %d", DefaultClientConfig.MaxBatchSize)
	}
}

func TestDefaultClientConfigImmutability(t *testing.T) {
	// Test that modifying a copy doesn't affect the default
	original := DefaultClientConfig

	modified := DefaultClientConfig
	modified.Retry.MaxRetries = 999
	modified.Quota.ReadPerMinute = 1

	if DefaultClientConfig.Retry.MaxRetries != original.Retry.MaxRetries {
		t.Error("DefaultClientConfig was unexpectedly modified")
	}

	if DefaultClientConfig.Quota.ReadPerMinute == 1 {
		t.Error("DefaultClientConfig should not have been modified")
	}
}

func TestRetryConfigValidation(t *testing.T) {
	valid := DefaultClientConfig.Retry

	testCases := []struct {
		name   string
		mutate func(*RetryConfig)
		valid  bool
	}{
		{"valid config", func(*RetryConfig) {}, true},
		{"zero retries", func(c *RetryConfig) { c.MaxRetries = 0 }, true},
		{"negative retries", func(c *RetryConfig) { c.MaxRetries = -1 }, false},
		{"max below initial", func(c *RetryConfig) { c.MaxWait = c.InitialWait / 2 }, false},
		{"shrinking multiplier", func(c *RetryConfig) { c.Multiplier = 0.5 }, false},
		{"negative jitter", func(c *RetryConfig) { c.Jitter = -time.Second }, false},
		{"zero timeout", func(c *RetryConfig) { c.Timeout = 0 }, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := valid
			tc.mutate(&config)

			err := config.Validate()
			if (err == nil) != tc.valid {
				t.Errorf("Expected validity %v, got %v for config %+v", tc.valid, err, config)
			}
		})
	}
}

func TestClientConfigValidation(t *testing.T) {
	testCases := []struct {
		name     string
		mutate   func(*ClientConfig)
		contains string
	}{
		{"missing base URL", func(c *ClientConfig) { c.BaseURL = "" }, "base URL"},
		{"zero batch size", func(c *ClientConfig) { c.MaxBatchSize = 0 }, "batch size"},
		{"zero write quota", func(c *ClientConfig) { c.Quota.WritePerMinute = 0 }, "write quota"},
		{"zero window", func(c *ClientConfig) { c.Quota.Window = 0 }, "window"},
		{"negative acquire timeout", func(c *ClientConfig) { c.Quota.AcquireTimeout = -1 }, "acquire timeout"},
		{"bad retry", func(c *ClientConfig) { c.Retry.Multiplier = 0 }, "retry"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultClientConfig
			tc.mutate(&config)

			err := config.Validate()
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.contains) {
				t.Errorf("Expected error to mention %q, got %q", tc.contains, err.Error())
			}
		})
	}
}
