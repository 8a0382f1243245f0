// Package feed fans material announcements out to WebSocket subscribers
// through Redis PubSub, so every server instance sees every upload.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/daleel/daleel-backend/internal/config"
	ws "github.com/daleel/daleel-backend/internal/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// subscriberBuffer bounds how far a slow socket may lag before events drop.
const subscriberBuffer = 16

// Broker publishes and subscribes to per-course material channels.
type Broker struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewBroker creates a new Broker.
func NewBroker(rdb *redis.Client, log zerolog.Logger) *Broker {
	return &Broker{
		rdb: rdb,
		log: log.With().Str("component", "material_feed").Logger(),
	}
}

// Publish announces ev on its course channel.
func (b *Broker) Publish(ctx context.Context, ev ws.MaterialEvent) error {
	ev.Event = ws.EventMaterialUploaded
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return b.rdb.Publish(ctx, config.CacheKey.CourseMaterialsChannel(ev.CourseCode), payload).Err()
}

// Subscription is a live stream of events for one course.
type Subscription struct {
	events <-chan ws.MaterialEvent
	closer io.Closer
}

// NewSubscription wraps an event channel and the resource that feeds it.
func NewSubscription(events <-chan ws.MaterialEvent, closer io.Closer) *Subscription {
	return &Subscription{events: events, closer: closer}
}

// Events is closed when the subscription ends.
func (s *Subscription) Events() <-chan ws.MaterialEvent {
	return s.events
}

// Close unsubscribes and ends the event stream.
func (s *Subscription) Close() error {
	return s.closer.Close()
}

// Subscribe starts listening on a course channel. The subscription is
// confirmed before returning.
func (b *Broker) Subscribe(ctx context.Context, courseCode string) (*Subscription, error) {
	ps := b.rdb.Subscribe(ctx, config.CacheKey.CourseMaterialsChannel(courseCode))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", courseCode, err)
	}

	events := make(chan ws.MaterialEvent, subscriberBuffer)
	go b.pump(ctx, ps.Channel(), events)
	return NewSubscription(events, ps), nil
}

func (b *Broker) pump(ctx context.Context, in <-chan *redis.Message, out chan<- ws.MaterialEvent) {
	defer close(out)
	for msg := range in {
		ev, err := Decode(msg.Payload)
		if err != nil {
			b.log.Warn().Err(err).Str("channel", msg.Channel).Msg("Dropping undecodable event")
			continue
		}
		select {
		case out <- ev:
		case <-ctx.Done():
			return
		default:
			b.log.Warn().Str("channel", msg.Channel).Int("material_id", ev.MaterialID).Msg("Subscriber lagging, event dropped")
		}
	}
}

// Decode parses a channel payload.
func Decode(payload string) (ws.MaterialEvent, error) {
	var ev ws.MaterialEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return ev, fmt.Errorf("decode event: %w", err)
	}
	if ev.Event != ws.EventMaterialUploaded || ev.MaterialID == 0 {
		return ev, fmt.Errorf("decode event: unexpected payload %q", payload)
	}
	return ev, nil
}
