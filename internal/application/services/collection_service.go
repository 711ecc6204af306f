package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zatekoja/facilities-collector/internal/application/collectors"
	"github.com/zatekoja/facilities-collector/internal/domain/entities"
	"github.com/zatekoja/facilities-collector/internal/domain/providers"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/facilities-collector/pkg/errors"
)

// CollectionService runs domain collectors and hands the result to the
// configured sinks
type CollectionService struct {
	collectors map[entities.Domain]collectors.Collector
	publisher  *SnapshotPublisher
	eventBus   providers.EventBus
	metrics    *observability.Metrics
	now        func() time.Time
}

// NewCollectionService creates a collection service. publisher, eventBus
// and metrics are optional.
func NewCollectionService(
	registered []collectors.Collector,
	publisher *SnapshotPublisher,
	eventBus providers.EventBus,
	metrics *observability.Metrics,
) *CollectionService {
	byDomain := make(map[entities.Domain]collectors.Collector, len(registered))
	for _, c := range registered {
		byDomain[c.Domain()] = c
	}
	return &CollectionService{
		collectors: byDomain,
		publisher:  publisher,
		eventBus:   eventBus,
		metrics:    metrics,
		now:        time.Now,
	}
}

// Domains returns the registered domains in reporting order
func (s *CollectionService) Domains() []entities.Domain {
	var domains []entities.Domain
	for _, d := range entities.AllDomains() {
		if _, ok := s.collectors[d]; ok {
			domains = append(domains, d)
		}
	}
	return domains
}

// CollectAll runs every registered collector
func (s *CollectionService) CollectAll(ctx context.Context) (*entities.CollectionResult, error) {
	return s.Collect(ctx, s.Domains()...)
}

// Collect runs the collectors of the given domains concurrently. A failed
// domain is reported in its summary and never cancels the others; the
// returned error only covers an invalid request.
func (s *CollectionService) Collect(ctx context.Context, domains ...entities.Domain) (*entities.CollectionResult, error) {
	domains, err := s.resolve(domains)
	if err != nil {
		return nil, err
	}

	result := &entities.CollectionResult{
		RunID:     uuid.NewString(),
		StartedAt: s.now().UTC(),
		ByDomain:  make(map[entities.Domain][]*entities.Facility, len(domains)),
	}

	ctx, span := observability.StartSpan(ctx, "collection.run")
	defer span.End()
	observability.SetSpanAttributes(span,
		attribute.String("collector.run_id", result.RunID),
		attribute.Int("collector.domains", len(domains)),
	)

	outcomes := make([]domainOutcome, len(domains))
	var wg sync.WaitGroup
	for i, domain := range domains {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i] = s.runCollector(ctx, s.collectors[domain])
		}()
	}
	wg.Wait()

	for _, outcome := range outcomes {
		result.Domains = append(result.Domains, outcome.summary)
		if !outcome.summary.Succeeded() {
			continue
		}
		result.ByDomain[outcome.summary.Domain] = outcome.facilities
		result.Facilities = append(result.Facilities, outcome.facilities...)
	}
	sort.SliceStable(result.Facilities, func(i, j int) bool {
		return result.Facilities[i].ID < result.Facilities[j].ID
	})
	result.FinishedAt = s.now().UTC()

	logger := observability.LoggerFromContext(ctx)
	logger.Info().
		Str("run_id", result.RunID).
		Int("facilities", len(result.Facilities)).
		Int("failed_domains", len(result.Failed())).
		Dur("duration", result.FinishedAt.Sub(result.StartedAt)).
		Msg("collection run finished")

	s.publish(ctx, result)
	return result, nil
}

func (s *CollectionService) resolve(domains []entities.Domain) ([]entities.Domain, error) {
	if len(domains) == 0 {
		return nil, apperrors.NewValidationError("no collector registered")
	}

	seen := make(map[entities.Domain]bool, len(domains))
	resolved := make([]entities.Domain, 0, len(domains))
	var unknown []string
	for _, d := range domains {
		if seen[d] {
			continue
		}
		seen[d] = true
		if _, ok := s.collectors[d]; !ok {
			unknown = append(unknown, string(d))
			continue
		}
		resolved = append(resolved, d)
	}
	if len(unknown) > 0 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown domain: %s", strings.Join(unknown, ", ")))
	}
	return resolved, nil
}

type domainOutcome struct {
	summary    entities.DomainSummary
	facilities []*entities.Facility
}

func (s *CollectionService) runCollector(ctx context.Context, collector collectors.Collector) (outcome domainOutcome) {
	domain := collector.Domain()
	ctx, span := observability.StartSpan(ctx, "collector."+string(domain))
	defer span.End()

	logger := observability.DomainLogger(ctx, string(domain))
	logger.Info().Msg("collecting")

	start := s.now()
	outcome.summary.Domain = domain

	var (
		result *collectors.Result
		err    error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = apperrors.NewCollectorError(string(domain), fmt.Errorf("panic: %v", r))
			}
		}()
		result, err = collector.Collect(ctx)
	}()
	if err == nil && result == nil {
		err = apperrors.NewCollectorError(string(domain), fmt.Errorf("collector returned no result"))
	}

	duration := s.now().Sub(start)
	outcome.summary.Duration = duration

	if err != nil {
		observability.RecordError(span, err)
		observability.RecordCollection(ctx, s.metrics, string(domain), 0, 0, duration, err)
		logger.Error().Err(err).Dur("duration", duration).Msg("collection failed")
		outcome.summary.Error = err.Error()
		return outcome
	}

	observability.RecordCollection(ctx, s.metrics, string(domain), len(result.Facilities), result.Dropped, duration, nil)
	observability.SetSpanAttributes(span,
		attribute.Int("collector.facilities", len(result.Facilities)),
		attribute.Int("collector.dropped", result.Dropped),
	)
	logger.Info().
		Int("facilities", len(result.Facilities)).
		Int("dropped", result.Dropped).
		Dur("duration", duration).
		Msg("collection finished")

	outcome.summary.Facilities = len(result.Facilities)
	outcome.facilities = result.Facilities
	return outcome
}

// publish never fails the run; sink errors are logged
func (s *CollectionService) publish(ctx context.Context, result *entities.CollectionResult) {
	logger := observability.LoggerFromContext(ctx)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, result); err != nil {
			logger.Error().Err(err).Str("run_id", result.RunID).Msg("failed to publish collection result")
		}
	}

	if s.eventBus == nil {
		return
	}
	for _, summary := range result.Domains {
		if err := s.eventBus.Publish(ctx, providers.EventChannelCollectionRuns, entities.NewDomainEvent(result.RunID, summary)); err != nil {
			logger.Warn().Err(err).Str("domain", string(summary.Domain)).Msg("failed to publish domain event")
		}
	}
	if err := s.eventBus.Publish(ctx, providers.EventChannelCollectionRuns, entities.NewRunCompletedEvent(result)); err != nil {
		logger.Warn().Err(err).Str("run_id", result.RunID).Msg("failed to publish run event")
	}
}
