package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Event actions published by the grading core.
const (
	EventAssignmentPublished = "assignment.published"
	EventAssignmentClosed    = "assignment.closed"
	EventSubmissionReceived  = "submission.received"
	EventSubmissionGraded    = "submission.graded"
)

// Event is a domain event fanned out to downstream consumers (notification
// delivery itself lives outside this service).
type Event struct {
	Type       string                 `json:"type"`
	CourseID   uint                   `json:"course_id"`
	EntityID   uint                   `json:"entity_id"`
	ActorID    uint                   `json:"actor_id"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}

// EventPublisher publishes domain events. Publication is best-effort: failures
// are logged, never surfaced to the caller.
type EventPublisher interface {
	Publish(ctx context.Context, event Event)
}

type eventEnvelope struct {
	Source string    `json:"source"`
	Event  Event     `json:"event"`
	SentAt time.Time `json:"sent_at"`
}

type eventPublisher struct {
	redis   *redis.Client
	stream  string
	nats    *nats.Conn
	subject string
	logger  zerolog.Logger
	nodeID  string
	now     func() time.Time
}

// NewEventPublisher constructs a publisher that fans events out to a Redis
// stream and a NATS subject. Either backend may be nil.
func NewEventPublisher(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) EventPublisher {
	stream := ""
	subject := ""
	if channelBase != "" {
		stream = channelBase + ":events"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".events"
	}

	return &eventPublisher{
		redis:   redisClient,
		stream:  stream,
		nats:    natsConn,
		subject: subject,
		logger:  logger.With().Str("component", "event_publisher").Logger(),
		nodeID:  uuid.NewString(),
		now:     time.Now,
	}
}

func (p *eventPublisher) Publish(ctx context.Context, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = p.now()
	}

	envelope := eventEnvelope{
		Source: p.nodeID,
		Event:  event,
		SentAt: p.now(),
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		p.logger.Error().Err(err).Str("type", event.Type).Msg("failed to encode event")
		return
	}

	if p.redis != nil && p.stream != "" {
		if err := p.redis.XAdd(ctx, &redis.XAddArgs{
			Stream: p.stream,
			Values: map[string]interface{}{"payload": string(data)},
		}).Err(); err != nil {
			p.logger.Warn().Err(err).Str("type", event.Type).Msg("failed to publish event to redis")
		}
	}

	if p.nats != nil && p.subject != "" {
		if err := p.nats.Publish(p.subject, data); err != nil {
			p.logger.Warn().Err(err).Str("type", event.Type).Msg("failed to publish event to nats")
		}
	}
}
