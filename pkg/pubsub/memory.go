package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/roboricindustries/raycon-display/pkg/schemas/common"
)

// Bus is an in-process Transport and Publisher. Publish delivers
// synchronously to every live subscription on the topic, in subscribe order.
type Bus struct {
	log *slog.Logger

	mu     sync.RWMutex
	subs   []*memSubscription
	errFns []func(error)
	closed bool
}

type memSubscription struct {
	sub     *Subscription
	handler Handler
}

var (
	_ Transport = (*Bus)(nil)
	_ Publisher = (*Bus)(nil)
)

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{log: logger}
}

func (b *Bus) Subscribe(ctx context.Context, topic string, replayFrom int, h Handler) (*Subscription, error) {
	if replayFrom != ReplayNew {
		return nil, fmt.Errorf("replay %d: %w", replayFrom, ErrReplayUnsupported)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	s := &memSubscription{
		sub:     &Subscription{ID: uuid.NewString(), Topic: topic, ReplayFrom: replayFrom},
		handler: h,
	}
	b.subs = append(b.subs, s)
	return s.sub, nil
}

func (b *Bus) Unsubscribe(ctx context.Context, sub *Subscription) error {
	if sub == nil {
		return ErrUnknownSubscription
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.sub.ID == sub.ID {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return nil
		}
	}
	return ErrUnknownSubscription
}

func (b *Bus) OnError(fn func(error)) {
	if fn == nil {
		return
	}
	b.mu.Lock()
	b.errFns = append(b.errFns, fn)
	b.mu.Unlock()
}

// ReportError fans err out to the registered error observers.
func (b *Bus) ReportError(err error) {
	b.mu.RLock()
	fns := append([]func(error){}, b.errFns...)
	b.mu.RUnlock()
	for _, fn := range fns {
		fn(err)
	}
}

// Subscribers returns the number of live subscriptions on topic.
func (b *Bus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, s := range b.subs {
		if s.sub.Topic == topic {
			n++
		}
	}
	return n
}

func (b *Bus) Publish(ctx context.Context, topic string, msg common.Envelope) error {
	if msg.Meta.ID == "" {
		msg.Meta.ID = uuid.NewString()
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	return b.PublishRaw(ctx, topic, Delivery{
		MessageID:     msg.Meta.ID,
		CorrelationID: msg.Meta.Correlation(),
		Timestamp:     msg.Meta.Time,
		Body:          body,
	})
}

// PublishRaw delivers d as-is; used to push bodies that are not envelopes.
func (b *Bus) PublishRaw(ctx context.Context, topic string, d Delivery) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrClosed
	}
	var targets []*memSubscription
	for _, s := range b.subs {
		if s.sub.Topic == topic {
			targets = append(targets, s)
		}
	}
	b.mu.RUnlock()

	d.Topic = topic
	for _, s := range targets {
		err := s.handler(ctx, d)
		switch {
		case errors.Is(err, ErrPoison):
			b.log.Warn("poison message dropped", slog.String("topic", topic), slog.String("message_id", d.MessageID))
		case err != nil:
			b.log.Error("handler error", slog.String("topic", topic), slog.Any("err", err))
		}
	}
	return nil
}

func (b *Bus) Close() error {
	b.mu.Lock()
	b.closed = true
	b.subs = nil
	b.mu.Unlock()
	return nil
}
