package handlers_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/facilities-collector/internal/application/services"
	"github.com/zatekoja/facilities-collector/internal/domain/entities"
	"github.com/zatekoja/facilities-collector/internal/domain/providers"
)

type MockFacilityReader struct {
	mock.Mock
}

func (m *MockFacilityReader) GetByID(ctx context.Context, id string) (*entities.Facility, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Facility), args.Error(1)
}

func (m *MockFacilityReader) ListByDomain(ctx context.Context, domain entities.Domain) ([]*entities.Facility, error) {
	args := m.Called(ctx, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Facility), args.Error(1)
}

func (m *MockFacilityReader) Search(ctx context.Context, params providers.SearchParams) (*providers.SearchResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.SearchResult), args.Error(1)
}

type MockCollectionRunner struct {
	mock.Mock
}

func (m *MockCollectionRunner) CollectAll(ctx context.Context) (*entities.CollectionResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CollectionResult), args.Error(1)
}

func (m *MockCollectionRunner) Collect(ctx context.Context, domains ...entities.Domain) (*entities.CollectionResult, error) {
	args := m.Called(ctx, domains)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CollectionResult), args.Error(1)
}

type MockLatestResultReader struct {
	mock.Mock
}

func (m *MockLatestResultReader) LatestResult(ctx context.Context) (*entities.CollectionResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CollectionResult), args.Error(1)
}

type stubHealthChecker struct {
	report *services.HealthReport
}

func (s stubHealthChecker) Check(ctx context.Context) *services.HealthReport {
	return s.report
}

// memoryCache implements only what the handlers need from a cache
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memoryCache) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data[key]; ok {
		return false, nil
	}
	c.data[key] = value
	return true, nil
}

func (c *memoryCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.data, key)
	}
	return nil
}

func (c *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok, nil
}

// MockEventBus for testing
type MockEventBus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan *entities.CollectionEvent
	published   []*entities.CollectionEvent
}

func NewMockEventBus() *MockEventBus {
	return &MockEventBus{
		subscribers: make(map[string][]chan *entities.CollectionEvent),
	}
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.CollectionEvent) error {
	m.mu.Lock()
	m.published = append(m.published, event)
	channels := append([]chan *entities.CollectionEvent(nil), m.subscribers[channel]...)
	m.mu.Unlock()

	for _, ch := range channels {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.CollectionEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan *entities.CollectionEvent, 10)
	m.subscribers[channel] = append(m.subscribers[channel], ch)
	return ch, nil
}

func (m *MockEventBus) Recent(ctx context.Context, channel string, limit int) ([]*entities.CollectionEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	start := max(len(m.published)-limit, 0)
	return append([]*entities.CollectionEvent(nil), m.published[start:]...), nil
}

func (m *MockEventBus) Close() error {
	return nil
}

func (m *MockEventBus) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, channels := range m.subscribers {
		count += len(channels)
	}
	return count
}
