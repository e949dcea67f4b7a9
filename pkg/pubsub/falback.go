package pubsub

import (
	"context"
	"log/slog"

	"github.com/roboricindustries/raycon-display/pkg/schemas/common"
)

// FallbackPublisher stands in when no broker is configured.
type FallbackPublisher struct {
	log *slog.Logger
}

func (p *FallbackPublisher) Publish(ctx context.Context, topic string, msg common.Envelope) error {
	p.log.Warn("FallbackPublisher: skipped publish",
		slog.String("topic", topic),
		slog.String("type", msg.Meta.Type),
	)
	return nil
}

func (p *FallbackPublisher) Close() error {
	return nil
}

func NewFallback(logger *slog.Logger) Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackPublisher{
		log: logger,
	}
}
