package services_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/zatekoja/facilities-collector/internal/application/collectors"
	"github.com/zatekoja/facilities-collector/internal/domain/entities"
	"github.com/zatekoja/facilities-collector/internal/domain/providers"
	apperrors "github.com/zatekoja/facilities-collector/pkg/errors"
)

// MockCacheProvider for testing
type MockCacheProvider struct {
	mu      sync.RWMutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	deleted []string
	setErr  error
}

func NewMockCacheProvider() *MockCacheProvider {
	return &MockCacheProvider{
		data: make(map[string][]byte),
		ttls: make(map[string]time.Duration),
	}
}

func (m *MockCacheProvider) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if val, ok := m.data[key]; ok {
		return val, nil
	}
	return nil, apperrors.NewNotFoundError("key not found: " + key)
}

func (m *MockCacheProvider) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *MockCacheProvider) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return true, nil
}

func (m *MockCacheProvider) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
		m.deleted = append(m.deleted, key)
	}
	return nil
}

func (m *MockCacheProvider) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *MockCacheProvider) Deleted() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.deleted...)
}

// MockEventBus for testing
type MockEventBus struct {
	mu          sync.Mutex
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
	defer m.mu.Unlock()
	m.published = append(m.published, event)
	for _, ch := range m.subscribers[channel] {
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
	m.mu.Lock()
	defer m.mu.Unlock()
	start := max(len(m.published)-limit, 0)
	return append([]*entities.CollectionEvent(nil), m.published[start:]...), nil
}

func (m *MockEventBus) Close() error {
	return nil
}

func (m *MockEventBus) Published() []*entities.CollectionEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*entities.CollectionEvent(nil), m.published...)
}

func (m *MockEventBus) SubscriberCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, channels := range m.subscribers {
		count += len(channels)
	}
	return count
}

// stubCollector returns fixed facilities or a fixed error
type stubCollector struct {
	domain     entities.Domain
	facilities []*entities.Facility
	dropped    int
	err        error
	panics     bool
	calls      int
	mu         sync.Mutex
}

func (c *stubCollector) Domain() entities.Domain {
	return c.domain
}

func (c *stubCollector) Collect(ctx context.Context) (*collectors.Result, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	if c.panics {
		panic("index out of range")
	}
	if c.err != nil {
		return nil, apperrors.NewCollectorError(string(c.domain), c.err)
	}
	return &collectors.Result{Facilities: c.facilities, Dropped: c.dropped}, nil
}

func (c *stubCollector) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func facility(id, name string) *entities.Facility {
	return entities.NewFacility(id, &entities.FacilityAttributes{Name: name})
}

// MockSnapshotRepository keeps snapshots in memory
type MockSnapshotRepository struct {
	mu         sync.Mutex
	byDomain   map[entities.Domain][]*entities.Facility
	replaced   []entities.Domain
	listCalls  int
	replaceErr error
}

func NewMockSnapshotRepository() *MockSnapshotRepository {
	return &MockSnapshotRepository{byDomain: make(map[entities.Domain][]*entities.Facility)}
}

func (m *MockSnapshotRepository) ReplaceDomain(ctx context.Context, snapshot *entities.DomainSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.byDomain[snapshot.Domain] = snapshot.Facilities
	m.replaced = append(m.replaced, snapshot.Domain)
	return nil
}

func (m *MockSnapshotRepository) GetByID(ctx context.Context, id string) (*entities.Facility, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, facilities := range m.byDomain {
		for _, f := range facilities {
			if f.ID == id {
				return f, nil
			}
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility with id %s not found", id))
}

func (m *MockSnapshotRepository) ListByDomain(ctx context.Context, domain entities.Domain) ([]*entities.Facility, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	facilities := append([]*entities.Facility{}, m.byDomain[domain]...)
	sort.Slice(facilities, func(i, j int) bool { return facilities[i].ID < facilities[j].ID })
	return facilities, nil
}

func (m *MockSnapshotRepository) Replaced() []entities.Domain {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entities.Domain(nil), m.replaced...)
}

// MockSearchIndexer records indexed snapshots
type MockSearchIndexer struct {
	mu      sync.Mutex
	indexed []entities.Domain
	params  []providers.SearchParams
	result  *providers.SearchResult
}

func (m *MockSearchIndexer) IndexSnapshot(ctx context.Context, snapshot *entities.DomainSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexed = append(m.indexed, snapshot.Domain)
	return nil
}

func (m *MockSearchIndexer) Search(ctx context.Context, params providers.SearchParams) (*providers.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.params = append(m.params, params)
	if m.result == nil {
		return &providers.SearchResult{Hits: []providers.SearchHit{}}, nil
	}
	return m.result, nil
}
