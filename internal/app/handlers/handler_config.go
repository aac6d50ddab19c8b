package handlers

import (
	"os"
	"strconv"
)

// HandlerConfig provides environment-aware configuration for handlers
type HandlerConfig struct {
	// Pagination settings
	MaxPageSize     int `json:"max_page_size"`
	DefaultPageSize int `json:"default_page_size"`

	// Error handling settings
	EnableDebugErrors bool `json:"enable_debug_errors"`

	// Environment
	Environment string `json:"environment"`
}

// NewHandlerConfig creates a new handler configuration with environment-specific defaults
func NewHandlerConfig() *HandlerConfig {
	config := &HandlerConfig{
		MaxPageSize:       100,
		DefaultPageSize:   20,
		EnableDebugErrors: false,
		Environment:       "production",
	}

	config.loadFromEnv()
	config.applyEnvironmentDefaults()

	return config
}

// loadFromEnv loads configuration from environment variables
func (c *HandlerConfig) loadFromEnv() {
	if val := os.Getenv("MAX_PAGE_SIZE"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			c.MaxPageSize = parsed
		}
	}

	if val := os.Getenv("DEFAULT_PAGE_SIZE"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			c.DefaultPageSize = parsed
		}
	}

	if val := os.Getenv("ENVIRONMENT"); val != "" {
		c.Environment = val
	}
}

// applyEnvironmentDefaults loosens error reporting outside production
func (c *HandlerConfig) applyEnvironmentDefaults() {
	if c.Environment == "development" || c.Environment == "test" {
		c.EnableDebugErrors = true
	}
}

// ValidatePageSize clamps a requested page size into the allowed range
func (c *HandlerConfig) ValidatePageSize(pageSize int) int {
	if pageSize < 1 {
		return c.DefaultPageSize
	}
	if pageSize > c.MaxPageSize {
		return c.MaxPageSize
	}
	return pageSize
}
