package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/facilities-collector/internal/domain/entities"
	"github.com/zatekoja/facilities-collector/internal/domain/providers"
)

// CacheInvalidationService drops cached domain listings when a collection
// run replaces the domain's snapshot
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	done     chan struct{}
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start begins listening for collection events
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelCollectionRuns)
	if err != nil {
		return fmt.Errorf("failed to subscribe to collection runs: %w", err)
	}

	s.started = true
	go s.processEvents(eventChan)
	log.Info().Msg("cache invalidation service started")
	return nil
}

// Stop stops the cache invalidation service
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	if s.started {
		<-s.done
	}
	log.Info().Msg("cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.CollectionEvent) {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

// Only a collected domain changes stored data; failed domains keep their
// previous snapshot.
func (s *CacheInvalidationService) handleEvent(event *entities.CollectionEvent) {
	if event.EventType != entities.CollectionEventDomainCollected || event.Domain == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.InvalidateDomain(ctx, event.Domain); err != nil {
		log.Warn().Err(err).Str("run_id", event.RunID).Str("domain", string(event.Domain)).Msg("failed to invalidate domain cache")
	}
}

// InvalidateDomain drops the cached listing of a domain
func (s *CacheInvalidationService) InvalidateDomain(ctx context.Context, domain entities.Domain) error {
	if err := s.cache.Delete(ctx, DomainCacheKey(domain)); err != nil {
		return fmt.Errorf("failed to invalidate domain cache: %w", err)
	}
	log.Debug().Str("domain", string(domain)).Msg("invalidated domain cache")
	return nil
}
