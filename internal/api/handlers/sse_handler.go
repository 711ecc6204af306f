package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/facilities-collector/internal/domain/entities"
	"github.com/zatekoja/facilities-collector/internal/domain/providers"
)

const (
	heartbeatInterval = 30 * time.Second
	maxReplay         = 100
)

// SSEHandler streams collection events as Server-Sent Events
type SSEHandler struct {
	eventBus  providers.EventBus
	clients   atomic.Int64
	heartbeat time.Duration
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(eventBus providers.EventBus) *SSEHandler {
	return &SSEHandler{
		eventBus:  eventBus,
		heartbeat: heartbeatInterval,
	}
}

// StreamCollectionEvents handles GET /api/collect/events.
//
// Query parameters:
//   - domain: only stream events of this domain; run_completed is always sent
//   - replay: send up to this many recent events first (max 100). Events
//     published while the replay is read may arrive twice.
func (h *SSEHandler) StreamCollectionEvents(w http.ResponseWriter, r *http.Request) {
	var domain entities.Domain
	if raw := r.URL.Query().Get("domain"); raw != "" {
		parsed, ok := entities.ParseDomain(raw)
		if !ok {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("unknown domain: %s", raw))
			return
		}
		domain = parsed
	}

	replay, err := parseReplay(r.URL.Query().Get("replay"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid replay parameter")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	ctx := r.Context()
	events, err := h.eventBus.Subscribe(ctx, providers.EventChannelCollectionRuns)
	if err != nil {
		log.Error().Err(err).Msg("failed to subscribe to collection runs")
		respondWithError(w, http.StatusServiceUnavailable, "event stream unavailable")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	clients := h.clients.Add(1)
	defer h.clients.Add(-1)
	log.Debug().Int64("clients", clients).Str("domain", string(domain)).Msg("stream client connected")

	h.sendEvent(w, "connected", map[string]interface{}{
		"domain":    domain,
		"timestamp": time.Now(),
	})
	if replay > 0 {
		recent, err := h.eventBus.Recent(ctx, providers.EventChannelCollectionRuns, replay)
		if err != nil {
			log.Warn().Err(err).Msg("failed to replay collection events")
		}
		for _, event := range recent {
			if matchesDomain(event, domain) {
				h.sendEvent(w, string(event.EventType), event)
			}
		}
	}
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("client disconnected from collection stream")
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{
				"timestamp": time.Now(),
			})
			flusher.Flush()
		case event, ok := <-events:
			if !ok {
				return
			}
			if !matchesDomain(event, domain) {
				continue
			}
			h.sendEvent(w, string(event.EventType), event)
			flusher.Flush()
		}
	}
}

func parseReplay(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	replay, err := strconv.Atoi(raw)
	if err != nil || replay < 0 {
		return 0, fmt.Errorf("invalid replay: %s", raw)
	}
	return min(replay, maxReplay), nil
}

func matchesDomain(event *entities.CollectionEvent, domain entities.Domain) bool {
	if event == nil {
		return false
	}
	return domain == "" || event.EventType == entities.CollectionEventRunCompleted || event.Domain == domain
}

func (h *SSEHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Warn().Err(err).Msg("failed to marshal event data")
		return
	}

	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
}

// GetClientCount returns the number of connected stream clients
func (h *SSEHandler) GetClientCount() int {
	return int(h.clients.Load())
}
