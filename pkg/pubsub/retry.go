package pubsub

import (
	"errors"

	"github.com/rabbitmq/amqp091-go"
)

// DeadLetterConfig describes where deliveries go when a handler fails.
type DeadLetterConfig struct {
	Exchange string
	Queue    string
}

// SetupDeadLetter declares a fanout exchange and a durable queue bound to it.
// Subscription queues name the exchange via x-dead-letter-exchange.
func SetupDeadLetter(ch *amqp091.Channel, cfg DeadLetterConfig) error {
	if ch == nil {
		return errors.New("nil channel")
	}
	if cfg.Exchange == "" || cfg.Queue == "" {
		return errors.New("dead letter exchange and queue are required")
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, "fanout", true, false, false, false, nil); err != nil {
		return err
	}
	q, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil)
	if err != nil {
		return err
	}
	return ch.QueueBind(q.Name, "", cfg.Exchange, false, nil)
}

// queueArgs returns the subscription queue arguments for dl (nil when unset).
func (dl *DeadLetterConfig) queueArgs() amqp091.Table {
	if dl == nil || dl.Exchange == "" {
		return nil
	}
	return amqp091.Table{"x-dead-letter-exchange": dl.Exchange}
}
