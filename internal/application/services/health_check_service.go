package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"

	healthCheckTimeout = 3 * time.Second
	healthCacheSize    = 32
)

// HealthCheck checks one downstream dependency
type HealthCheck func(ctx context.Context) error

// DependencyStatus is the last known state of a dependency
type DependencyStatus struct {
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// HealthReport aggregates the state of every dependency
type HealthReport struct {
	Status       string             `json:"status"`
	Dependencies []DependencyStatus `json:"dependencies"`
}

type namedCheck struct {
	name  string
	check HealthCheck
}

// HealthCheckService caches dependency checks for a fixed TTL so that
// frequent checks do not hammer the databases and upstreams
type HealthCheckService struct {
	mu      sync.RWMutex
	checks  []namedCheck
	cache   *expirable.LRU[string, DependencyStatus]
	cleared atomic.Bool
	now     func() time.Time
}

// NewHealthCheckService creates a health check service
func NewHealthCheckService(ttl time.Duration) *HealthCheckService {
	s := &HealthCheckService{now: time.Now}
	s.cache = expirable.NewLRU[string, DependencyStatus](healthCacheSize, s.onEvict, ttl)
	return s
}

// Register adds a dependency check
func (s *HealthCheckService) Register(name string, check HealthCheck) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks = append(s.checks, namedCheck{name: name, check: check})
}

// only the first eviction after a fresh check is logged
func (s *HealthCheckService) onEvict(name string, _ DependencyStatus) {
	if s.cleared.CompareAndSwap(false, true) {
		log.Debug().Str("dependency", name).Msg("health check cache cleared")
	}
}

// Check returns the state of every registered dependency, running only the
// checks whose cached status expired
func (s *HealthCheckService) Check(ctx context.Context) *HealthReport {
	s.mu.RLock()
	checks := append([]namedCheck(nil), s.checks...)
	s.mu.RUnlock()

	statuses := make([]DependencyStatus, len(checks))
	var wg sync.WaitGroup
	for i, c := range checks {
		if cached, ok := s.cache.Get(c.name); ok {
			statuses[i] = cached
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			statuses[i] = s.run(ctx, c)
		}()
	}
	wg.Wait()

	report := &HealthReport{Status: StatusHealthy, Dependencies: statuses}
	for _, status := range statuses {
		if status.Status != StatusHealthy {
			report.Status = StatusUnhealthy
			break
		}
	}
	return report
}

func (s *HealthCheckService) run(ctx context.Context, c namedCheck) DependencyStatus {
	checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	status := DependencyStatus{Name: c.name, Status: StatusHealthy, CheckedAt: s.now().UTC()}
	if err := c.check(checkCtx); err != nil {
		status.Status = StatusUnhealthy
		status.Error = err.Error()
		log.Warn().Err(err).Str("dependency", c.name).Msg("health check failed")
	}

	s.cache.Add(c.name, status)
	s.cleared.Store(false)
	return status
}

// Invalidate drops every cached status
func (s *HealthCheckService) Invalidate() {
	s.cache.Purge()
}
