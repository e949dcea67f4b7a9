package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/roboricindustries/raycon-display/pkg/schemas/common"
)

type Publisher interface {
	Publish(ctx context.Context, topic string, msg common.Envelope) error
	Close() error
}

type rmqClient struct {
	conn     *amqp091.Connection
	exchange string
	log      *slog.Logger
}

// NewPublisher declares the exchange and returns a publisher that owns conn.
func NewPublisher(conn *amqp091.Connection, exchange string, logger *slog.Logger) (Publisher, error) {
	if exchange == "" {
		return nil, errors.New("exchange is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(
		exchange, "topic", true, false, false, false, nil,
	); err != nil {
		conn.Close()
		return nil, err
	}

	return &rmqClient{
		conn:     conn,
		exchange: exchange,
		log:      logger,
	}, nil
}

func (r *rmqClient) Publish(ctx context.Context, topic string, msg common.Envelope) error {
	ch, err := r.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	if err := ch.Confirm(false); err != nil {
		return fmt.Errorf("confirm mode: %w", err)
	}

	if msg.Meta.ID == "" {
		msg.Meta.ID = uuid.NewString()
	}
	if msg.Meta.Time.IsZero() {
		msg.Meta.Time = time.Now().UTC()
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	conf, err := ch.PublishWithDeferredConfirmWithContext(
		ctx, r.exchange, topic, false, false,
		amqp091.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp091.Transient,
			MessageId:     msg.Meta.ID,
			CorrelationId: msg.Meta.Correlation(),
			Type:          msg.Meta.Type,
			Timestamp:     msg.Meta.Time,
			Body:          body,
		},
	)
	if err != nil {
		return err
	}
	ok, err := conf.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("publish %s: nacked by broker", msg.Meta.ID)
	}
	r.log.Info("published", slog.String("topic", topic), slog.String("exchange", r.exchange), slog.String("id", msg.Meta.ID))
	return nil
}

func (r *rmqClient) Close() error {
	return r.conn.Close()
}
