package pubsub

import (
	"math/rand"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

func JitteredDelay(base, cap time.Duration, jitterPct int) time.Duration {
	if jitterPct <= 0 {
		jitterPct = 25
	}
	delta := (rand.Float64()*2 - 1) * float64(jitterPct) / 100.0
	wait := time.Duration(float64(base) * (1 + delta))
	if wait < 0 {
		wait = base
	}
	if wait > cap {
		wait = cap
	}
	return wait
}

func SafeClose(ch *amqp.Channel) error {
	if ch == nil {
		return nil
	}
	defer func() { _ = recover() }()
	return ch.Close()
}

func toDelivery(d amqp.Delivery) Delivery {
	return Delivery{
		Topic:         d.RoutingKey,
		MessageID:     d.MessageId,
		CorrelationID: d.CorrelationId,
		Timestamp:     d.Timestamp,
		Body:          d.Body,
	}
}
