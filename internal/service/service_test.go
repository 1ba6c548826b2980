package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sergioamr/farm-management/internal/events"
	"github.com/sergioamr/farm-management/internal/repository"
	"github.com/sergioamr/farm-management/internal/testdb"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.DomainEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type memoryCache struct {
	mu          sync.Mutex
	values      map[string]interface{}
	invalidated []string
	gets        int
}

func (c *memoryCache) Get(_ context.Context, entity string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.values[entity]
	if !ok {
		return false, nil
	}
	switch d := dest.(type) {
	case *repository.SupplierStats:
		*d = *v.(*repository.SupplierStats)
	case *repository.InventoryStats:
		*d = *v.(*repository.InventoryStats)
	case *repository.PricingStats:
		*d = *v.(*repository.PricingStats)
	default:
		return false, errors.New("unexpected type")
	}
	return true, nil
}

func (c *memoryCache) Set(_ context.Context, entity string, v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.values == nil {
		c.values = map[string]interface{}{}
	}
	c.values[entity] = v
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, entity string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, entity)
	c.invalidated = append(c.invalidated, entity)
	return nil
}

type fixture struct {
	suppliers *SupplierService
	inventory *InventoryService
	pricing   *PricingService
	auth      *AuthService
	events    *recordingPublisher
	cache     *memoryCache
}

type staticTokens struct{}

func (staticTokens) GenerateToken(userID, _, role string) (string, error) {
	return "token-" + userID + "-" + role, nil
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.New(t)

	f := &fixture{events: &recordingPublisher{}, cache: &memoryCache{}}
	deps := Deps{Events: f.events, Cache: f.cache}

	supplierRepo := repository.NewSupplierRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)

	f.suppliers = NewSupplierService(supplierRepo, deps)
	f.inventory = NewInventoryService(inventoryRepo, supplierRepo, nil, deps)
	f.pricing = NewPricingService(repository.NewPricingRepository(db), supplierRepo, inventoryRepo, deps)
	f.auth = NewAuthService(repository.NewUserRepository(db), staticTokens{}, deps)
	return f
}

func ptr(f float64) *float64 { return &f }

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }
