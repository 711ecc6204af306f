package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/facilities-collector/internal/domain/entities"
	"github.com/zatekoja/facilities-collector/internal/domain/providers"
	redisclient "github.com/zatekoja/facilities-collector/internal/infrastructure/clients/redis"
	apperrors "github.com/zatekoja/facilities-collector/pkg/errors"
)

const (
	// historyLimit caps the events kept per channel
	historyLimit     = 100
	subscriberBuffer = 64
)

// RedisEventBus fans collection events out over Redis pub/sub. Every
// channel also keeps its newest events in a capped list, so a client that
// connects during a run can catch up on the domains already finished.
type RedisEventBus struct {
	client *redisclient.Client
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	channels map[string]*channelSubscription
}

// channelSubscription is one Redis subscription shared by the local
// subscribers of a channel
type channelSubscription struct {
	pubsub      *redis.PubSub
	subscribers map[chan *entities.CollectionEvent]struct{}
}

// NewRedisEventBus creates a Redis backed event bus
func NewRedisEventBus(client *redisclient.Client) providers.EventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client:   client,
		ctx:      ctx,
		cancel:   cancel,
		channels: make(map[string]*channelSubscription),
	}
}

func historyKey(channel string) string {
	return channel + ":history"
}

// Publish sends the event and appends it to the channel history in one
// transaction
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.CollectionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return apperrors.NewInternalError("failed to encode collection event", err)
	}

	_, err = b.client.Client().TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Publish(ctx, channel, data)
		pipe.LPush(ctx, historyKey(channel), data)
		pipe.LTrim(ctx, historyKey(channel), 0, historyLimit-1)
		return nil
	})
	if err != nil {
		return apperrors.NewExternalError("failed to publish collection event", err)
	}

	log.Debug().
		Str("channel", channel).
		Str("run_id", event.RunID).
		Str("event_type", string(event.EventType)).
		Str("domain", string(event.Domain)).
		Msg("published collection event")
	return nil
}

// Recent returns up to limit of the newest events of a channel, oldest
// first. Undecodable history entries are skipped.
func (b *RedisEventBus) Recent(ctx context.Context, channel string, limit int) ([]*entities.CollectionEvent, error) {
	if limit <= 0 {
		return nil, nil
	}
	limit = min(limit, historyLimit)

	payloads, err := b.client.Client().LRange(ctx, historyKey(channel), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, apperrors.NewExternalError("failed to read collection event history", err)
	}

	events := make([]*entities.CollectionEvent, 0, len(payloads))
	for i := len(payloads) - 1; i >= 0; i-- {
		event, err := decodeEvent(payloads[i])
		if err != nil {
			log.Warn().Err(err).Str("channel", channel).Msg("skipping malformed collection event in history")
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func decodeEvent(payload string) (*entities.CollectionEvent, error) {
	var event entities.CollectionEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return nil, fmt.Errorf("failed to decode collection event: %w", err)
	}
	return &event, nil
}

// Subscribe streams the events of a channel until ctx is done or the bus
// is closed. The Redis subscription is confirmed before it returns.
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.CollectionEvent, error) {
	if b.ctx.Err() != nil {
		return nil, apperrors.NewInternalError("event bus closed", b.ctx.Err())
	}

	b.mu.Lock()
	sub, ok := b.channels[channel]
	if !ok {
		pubsub := b.client.Client().Subscribe(b.ctx, channel)
		if _, err := pubsub.Receive(ctx); err != nil {
			b.mu.Unlock()
			_ = pubsub.Close()
			return nil, apperrors.NewExternalError(fmt.Sprintf("failed to subscribe to %s", channel), err)
		}
		sub = &channelSubscription{
			pubsub:      pubsub,
			subscribers: make(map[chan *entities.CollectionEvent]struct{}),
		}
		b.channels[channel] = sub
		go b.dispatch(channel, sub)
	}

	events := make(chan *entities.CollectionEvent, subscriberBuffer)
	sub.subscribers[events] = struct{}{}
	count := len(sub.subscribers)
	b.mu.Unlock()

	log.Debug().Str("channel", channel).Int("subscribers", count).Msg("subscribed to collection events")

	go func() {
		select {
		case <-ctx.Done():
		case <-b.ctx.Done():
		}
		b.unsubscribe(channel, events)
	}()

	return events, nil
}

// dispatch copies the messages of one Redis subscription to its local
// subscribers. A full subscriber misses the event rather than stalling
// the others.
func (b *RedisEventBus) dispatch(channel string, sub *channelSubscription) {
	for msg := range sub.pubsub.Channel() {
		event, err := decodeEvent(msg.Payload)
		if err != nil {
			log.Warn().Err(err).Str("channel", channel).Msg("skipping malformed collection event")
			continue
		}

		b.mu.Lock()
		for events := range sub.subscribers {
			select {
			case events <- event:
			default:
				log.Warn().Str("channel", channel).Str("run_id", event.RunID).Msg("subscriber too slow, dropped collection event")
			}
		}
		b.mu.Unlock()
	}
}

func (b *RedisEventBus) unsubscribe(channel string, events chan *entities.CollectionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.channels[channel]
	if !ok {
		return
	}
	if _, ok := sub.subscribers[events]; !ok {
		return
	}
	delete(sub.subscribers, events)
	close(events)

	if len(sub.subscribers) > 0 {
		return
	}
	delete(b.channels, channel)
	if err := sub.pubsub.Close(); err != nil {
		log.Warn().Err(err).Str("channel", channel).Msg("failed to close subscription")
	}
}

// Close ends every subscription and closes the subscriber channels
func (b *RedisEventBus) Close() error {
	b.cancel()

	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	for channel, sub := range b.channels {
		for events := range sub.subscribers {
			close(events)
		}
		if err := sub.pubsub.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close subscription %s: %w", channel, err))
		}
		delete(b.channels, channel)
	}

	log.Info().Msg("event bus closed")
	return errors.Join(errs...)
}
