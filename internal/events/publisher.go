// Package events publishes platform activity to a Redis stream.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lectio/lectio/internal/metrics"
)

const (
	// StreamKey is the Redis stream for activity events.
	StreamKey = "stream:activity"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 100000

	// PublishTimeout is the max time to wait for Redis publish.
	PublishTimeout = 100 * time.Millisecond
)

// Type identifies an activity event.
type Type string

const (
	TypeUserCreated    Type = "user_created"
	TypeClubCreated    Type = "club_created"
	TypeClubSubscribed Type = "club_subscribed"
)

// Event is the compressed event format for the Redis stream.
type Event struct {
	Type       Type  `json:"e"`
	UserID     int64 `json:"uid,omitempty"`
	ClubID     int64 `json:"cid,omitempty"`
	BookID     int64 `json:"bid,omitempty"`
	OccurredAt int64 `json:"t"` // Unix milliseconds
}

// UserCreated builds a user_created event.
func UserCreated(userID int64, at time.Time) Event {
	return Event{Type: TypeUserCreated, UserID: userID, OccurredAt: at.UnixMilli()}
}

// ClubCreated builds a club_created event. bookID is 0 when the club has no reading.
func ClubCreated(clubID, bookID int64, at time.Time) Event {
	return Event{Type: TypeClubCreated, ClubID: clubID, BookID: bookID, OccurredAt: at.UnixMilli()}
}

// ClubSubscribed builds a club_subscribed event.
func ClubSubscribed(userID, clubID int64, at time.Time) Event {
	return Event{Type: TypeClubSubscribed, UserID: userID, ClubID: clubID, OccurredAt: at.UnixMilli()}
}

// Sink accepts activity events without blocking the caller.
type Sink interface {
	PublishAsync(event Event)
}

// Noop discards every event.
type Noop struct{}

// PublishAsync is a no-op.
func (Noop) PublishAsync(Event) {}

// Publisher enqueues activity events to a Redis stream.
type Publisher struct {
	redis   *redis.Client
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewPublisher creates a new activity event publisher.
func NewPublisher(client *redis.Client, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		redis:   client,
		logger:  logger.With("component", "events.publisher"),
		metrics: recorder,
	}
}

// Publish adds an event to the stream synchronously.
func (p *Publisher) Publish(ctx context.Context, event Event) (string, error) {
	if err := Validate(event); err != nil {
		return "", err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	result, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: MaxStreamLen,
		Approx: true, // ~MAXLEN for performance
		ID:     "*",
		Values: map[string]interface{}{
			"type":    string(event.Type),
			"payload": string(data),
		},
	}).Result()

	if err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}

	return result, nil
}

// PublishAsync publishes without blocking the caller.
// Errors are logged but not returned (fire-and-forget).
func (p *Publisher) PublishAsync(event Event) {
	if err := Validate(event); err != nil {
		p.logger.Warn("invalid activity event", "type", event.Type, "error", err)
		p.metrics.IncActivityEventPublished("invalid")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
		defer cancel()

		streamID, err := p.Publish(ctx, event)
		if err != nil {
			p.logger.Warn("failed to publish activity event",
				"type", event.Type,
				"error", err,
			)
			p.metrics.IncActivityEventPublished("dropped")
			return
		}

		p.logger.Debug("activity event published",
			"type", event.Type,
			"stream_id", streamID,
		)
		p.metrics.IncActivityEventPublished("success")
	}()
}
