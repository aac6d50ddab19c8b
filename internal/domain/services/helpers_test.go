package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/docuflow/docuflow/internal/domain/services"
	"github.com/docuflow/docuflow/internal/infrastructure/auth"
	"github.com/docuflow/docuflow/internal/infrastructure/database/models"
	"github.com/docuflow/docuflow/internal/infrastructure/repositories/postgresql"
	"github.com/docuflow/docuflow/internal/infrastructure/repositories/postgresql/testutil"
	"github.com/docuflow/docuflow/pkg/logger"
)

// memoryCache is an in-process CacheService for tests.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]string)}
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = fmt.Sprintf("%v", value)
	return nil
}

func (c *memoryCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.entries[key]
	if !ok {
		return "", errors.New("cache miss")
	}
	return value, nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok, nil
}

func (c *memoryCache) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return false, nil
	}
	c.entries[key] = fmt.Sprintf("%v", value)
	return true, nil
}

func (c *memoryCache) Increment(ctx context.Context, key string) (int64, error) {
	return 0, errors.New("not implemented")
}

func (c *memoryCache) Ping(ctx context.Context) error { return nil }
func (c *memoryCache) Close() error                   { return nil }

// recordingEmail captures outgoing messages instead of delivering them.
type recordingEmail struct {
	mu       sync.Mutex
	messages []services.EmailMessage
	fail     bool
}

func (e *recordingEmail) Send(ctx context.Context, msg services.EmailMessage) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fail {
		return errors.New("smtp unavailable")
	}
	e.messages = append(e.messages, msg)
	return nil
}

func (e *recordingEmail) sent() []services.EmailMessage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]services.EmailMessage(nil), e.messages...)
}

// testEnv wires every domain service against one sqlite database.
type testEnv struct {
	db    *testutil.TestDB
	repos *postgresql.Repositories
	cache *memoryCache
	email *recordingEmail

	Identity *services.IdentityService
	Tenant   *services.TenantService
	Users    *services.UserService
	Tags     *services.TagService
	Usage    *services.UsageService
	Docs     *services.DocumentService
	Invoices *services.InvoiceService
	Sharing  *services.SharingService
	Disputes *services.DisputeService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	t.Cleanup(func() { db.Cleanup(t) })

	repos := postgresql.NewRepositories(db.DB)
	cache := newMemoryCache()
	email := &recordingEmail{}
	log := logger.NewForTesting().Logger

	jwtService := auth.NewJWTService("test-secret", time.Hour, "docuflow-test")
	usage := services.NewUsageService(repos.CompanyRepo, repos.ClientRepo, repos.UserRepo, repos.DocumentRepo, cache, log)

	return &testEnv{
		db:    db,
		repos: repos,
		cache: cache,
		email: email,

		Identity: services.NewIdentityService(repos.UserRepo, repos.ClientRepo, repos.CompanyRepo, jwtService, log),
		Tenant:   services.NewTenantService(repos.CompanyRepo, repos.UserRepo, repos.ClientRepo, repos.PlanRepo, repos.ClientPlanRepo, email, log),
		Users:    services.NewUserService(repos.UserRepo, repos.ClientRepo, log),
		Tags:     services.NewTagService(repos.TagRepo, log),
		Usage:    usage,
		Docs:     services.NewDocumentService(repos.DocumentRepo, repos.TagRepo, repos.UserRepo, repos.ClientRepo, repos.EditHistoryRepo, usage, log),
		Invoices: services.NewInvoiceService(repos.InvoiceRepo, repos.CompanyRepo, repos.ClientRepo, repos.PlanRepo, repos.ClientPlanRepo, usage, email, cache, log),
		Sharing:  services.NewSharingService(repos.SharedLinkRepo, repos.DocumentRepo, repos.CompanyRepo, repos.PlanRepo, usage, log),
		Disputes: services.NewDisputeService(repos.DisputeRepo, repos.DocumentRepo, log),
	}
}

func actorFor(user *models.User) services.Actor {
	return services.Actor{ID: user.ID, CompanyID: user.CompanyID, Role: user.Role, Name: user.Name}
}

func clientActor(client *models.Client) services.Actor {
	return services.Actor{ID: client.ID, CompanyID: client.CompanyID, Role: models.RoleClient, Name: client.Name}
}
