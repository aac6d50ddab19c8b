package services

import (
	"context"
	"time"
)

// CacheService interface for caching operations
type CacheService interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)

	// Atomic operations
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Increment(ctx context.Context, key string) (int64, error)

	// Health check
	Ping(ctx context.Context) error
	Close() error
}

// Cache key patterns for the application
const (
	// Dashboard stats per company
	DashboardCacheKeyPattern = "dashboard:%s"

	// Advisory lock taken while an invoice generation run is in flight
	InvoiceRunLockKeyPattern = "invoice_run:%s:%s" // scope:period

	// Anonymous share access counters
	ShareAccessKeyPattern = "share_access:%s"
)

// Common cache durations
const (
	CacheShortTerm  = 5 * time.Minute
	CacheMediumTerm = 30 * time.Minute

	// Invoice run locks outlive any reasonable generation pass
	InvoiceRunLockTTL = 10 * time.Minute
)
