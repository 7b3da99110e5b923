package observer

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Kosench/shortlink/internal/model"
	"github.com/Kosench/shortlink/internal/service"
)

const (
	DefaultEventChannel = "shortlink.events"

	EventLinkCreated  = "link.created"
	EventLinkResolved = "link.resolved"

	publishTimeout = 500 * time.Millisecond
)

// Publisher is the subset of *redis.Client used to send events.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

var _ service.Observer = (*EventPublisher)(nil)

// EventPublisher sends link.created and link.resolved events over Redis pub/sub as
// {"event": ..., "data": {...}}. Publish errors are logged and never reach the caller.
type EventPublisher struct {
	service.NopObserver
	publisher Publisher
	channel   string
	logger    *log.Logger
}

func NewEventPublisher(publisher Publisher, channel string, logger *log.Logger) *EventPublisher {
	if channel == "" {
		channel = DefaultEventChannel
	}
	if logger == nil {
		logger = log.Default()
	}
	return &EventPublisher{
		publisher: publisher,
		channel:   channel,
		logger:    logger,
	}
}

type event struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

func (p *EventPublisher) Created(ctx context.Context, link *model.Link) {
	p.publish(ctx, EventLinkCreated, map[string]interface{}{
		"short_code": link.ShortCode,
		"long_url":   link.LongURL,
		"created_at": link.CreatedAt.Format(time.RFC3339Nano),
	})
}

func (p *EventPublisher) Resolved(ctx context.Context, shortCode, longURL string) {
	p.publish(ctx, EventLinkResolved, map[string]interface{}{
		"short_code": shortCode,
		"long_url":   longURL,
	})
}

func (p *EventPublisher) publish(ctx context.Context, name string, data map[string]interface{}) {
	payload, err := json.Marshal(event{Event: name, Data: data})
	if err != nil {
		p.logger.Printf("Failed to encode %s event: %v", name, err)
		return
	}

	// Клиент мог уже отключиться, событие все равно отправляем
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.publisher.Publish(ctx, p.channel, payload).Err(); err != nil {
		p.logger.Printf("Failed to publish %s event: %v", name, err)
	}
}
