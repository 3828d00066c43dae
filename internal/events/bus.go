//go:generate go run go.uber.org/mock/mockgen -source=bus.go -destination=../mocks/mock_events.go -package=mocks
package events

import (
	"context"
	"sync"

	"groupchat/pkg/logger"

	"go.uber.org/zap"
)

// Publisher sends a raw payload to a named channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Subscriber blocks delivering every message on channels matching patterns
// until ctx is done or the connection fails.
type Subscriber interface {
	Subscribe(ctx context.Context, patterns []string, handler func(channel string, payload []byte)) error
}

type Handler func(ctx context.Context, env Envelope) error

type Bus interface {
	Publish(ctx context.Context, channel string, env Envelope) error
	Subscribe(eventType string, h Handler)
}

type registry struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func (r *registry) Subscribe(eventType string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handlers == nil {
		r.handlers = make(map[string][]Handler)
	}
	r.handlers[eventType] = append(r.handlers[eventType], h)
}

// dispatch runs every handler for env in registration order. Handler errors
// are logged and do not stop the remaining handlers.
func (r *registry) dispatch(ctx context.Context, log *logger.Logger, channel string, env Envelope) {
	r.mu.RLock()
	handlers := append([]Handler(nil), r.handlers[env.EventType]...)
	r.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ctx, env); err != nil {
			log.Error(ctx, "event handler failed",
				zap.String("channel", channel),
				zap.String("event_type", env.EventType),
				zap.String("aggregate_id", env.AggregateID),
				zap.Error(err),
			)
		}
	}
}

// LocalBus delivers events in-process, synchronously, inside Publish.
// It is used when no Redis is configured and in tests.
type LocalBus struct {
	registry
	log *logger.Logger
}

func NewLocalBus(log *logger.Logger) *LocalBus {
	return &LocalBus{log: log}
}

func (b *LocalBus) Publish(ctx context.Context, channel string, env Envelope) error {
	b.dispatch(ctx, b.log, channel, env)
	return nil
}
