package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Replay positions accepted by Subscribe.
const (
	// ReplayNew delivers only events published after the subscription is live.
	ReplayNew = -1
	// ReplayAll asks for every retained event. No transport here retains events.
	ReplayAll = -2
)

var (
	// ErrPoison indicates non-retriable "bad content" (e.g., JSON decode fail).
	ErrPoison              = errors.New("poison message")
	ErrReplayUnsupported   = errors.New("replay position not supported")
	ErrClosed              = errors.New("transport closed")
	ErrUnknownSubscription = errors.New("unknown subscription")
)

// Delivery is a transport-neutral view of one pushed event.
type Delivery struct {
	Topic         string
	MessageID     string
	CorrelationID string
	Timestamp     time.Time
	Body          []byte
}

type Handler func(ctx context.Context, d Delivery) error

// Subscription is the opaque handle returned by Subscribe. Holding one means
// "currently subscribed".
type Subscription struct {
	ID         string
	Topic      string
	ReplayFrom int
}

// Transport is the push-event channel contract consumed by the display.
type Transport interface {
	Subscribe(ctx context.Context, topic string, replayFrom int, h Handler) (*Subscription, error)
	Unsubscribe(ctx context.Context, sub *Subscription) error
	// OnError registers an observer for channel-level errors.
	OnError(fn func(error))
}

// JSONHandler wraps a typed handler and turns JSON decode failure into ErrPoison.
func JSONHandler[T any](h func(context.Context, T) error) Handler {
	return func(ctx context.Context, d Delivery) error {
		var v T
		if err := json.Unmarshal(d.Body, &v); err != nil {
			return ErrPoison
		}
		return h(ctx, v)
	}
}
