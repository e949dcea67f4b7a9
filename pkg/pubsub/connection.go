package pubsub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

type ConnectionOptions struct {
	URL           string
	RetryAttempts int
	Delay         time.Duration
	Logger        *slog.Logger

	// Dialer overrides amqp091.Dial.
	Dialer func(url string) (*amqp091.Connection, error)
}

const MaxDelay = 60 * time.Second

// DialWithRetry tries to connect to RabbitMQ with jittered exponential backoff.
// It respects context cancellation for graceful shutdown.
func DialWithRetry(ctx context.Context, cfg ConnectionOptions) (*amqp091.Connection, error) {
	if cfg.URL == "" {
		return nil, errors.New("rabbitmq URL is required")
	}
	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = 1
	}
	delay := cfg.Delay
	if delay <= 0 {
		delay = time.Second
	}
	dial := cfg.Dialer
	if dial == nil {
		dial = amqp091.Dial
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var lastErr error
	for i := 1; i <= attempts; i++ {
		conn, err := dial(cfg.URL)
		if err == nil {
			if i > 1 {
				logger.Info("rabbit connected", slog.Int("attempt", i))
			}
			return conn, nil
		}
		lastErr = err
		if i == attempts {
			break
		}

		backoff := delay << (i - 1)
		if backoff <= 0 || backoff > MaxDelay {
			backoff = MaxDelay
		}
		sleep := JitteredDelay(backoff, MaxDelay, 0)

		logger.Warn("rabbit dial failed",
			slog.Int("attempt", i),
			slog.Duration("sleep", sleep),
			slog.Any("error", err),
		)

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("dial cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w",
		attempts, lastErr)
}
