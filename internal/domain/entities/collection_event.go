package entities

import (
	"time"
)

// CollectionEventType represents the type of collection event
type CollectionEventType string

const (
	CollectionEventDomainCollected CollectionEventType = "domain_collected"
	CollectionEventDomainFailed    CollectionEventType = "domain_failed"
	CollectionEventRunCompleted    CollectionEventType = "run_completed"
)

// CollectionEvent reports the progress of a collection run
type CollectionEvent struct {
	RunID      string              `json:"run_id"`
	EventType  CollectionEventType `json:"event_type"`
	Domain     Domain              `json:"domain,omitempty"`
	Facilities int                 `json:"facilities"`
	Error      string              `json:"error,omitempty"`
	Timestamp  time.Time           `json:"timestamp"`
}

// NewDomainEvent reports the outcome of one domain
func NewDomainEvent(runID string, summary DomainSummary) *CollectionEvent {
	eventType := CollectionEventDomainCollected
	if !summary.Succeeded() {
		eventType = CollectionEventDomainFailed
	}
	return &CollectionEvent{
		RunID:      runID,
		EventType:  eventType,
		Domain:     summary.Domain,
		Facilities: summary.Facilities,
		Error:      summary.Error,
		Timestamp:  time.Now(),
	}
}

// NewRunCompletedEvent reports the end of a run
func NewRunCompletedEvent(result *CollectionResult) *CollectionEvent {
	return &CollectionEvent{
		RunID:      result.RunID,
		EventType:  CollectionEventRunCompleted,
		Facilities: len(result.Facilities),
		Timestamp:  result.FinishedAt,
	}
}
