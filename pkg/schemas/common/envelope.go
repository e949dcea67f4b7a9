package common

import (
	"time"

	"github.com/google/uuid"
)

type Envelope struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}

type GenericEnvelope[T any] struct {
	Meta Meta `json:"meta"`
	Data T    `json:"data"`
}

// NewEnvelope stamps a fresh id and time for an event of the given type.
func NewEnvelope[T any](eventType string, data T) GenericEnvelope[T] {
	return GenericEnvelope[T]{
		Meta: Meta{
			ID:   uuid.NewString(),
			Time: time.Now().UTC(),
			Type: eventType,
		},
		Data: data,
	}
}

// Untyped drops the payload type so the envelope can go through a Publisher.
func (e GenericEnvelope[T]) Untyped() Envelope {
	return Envelope{Meta: e.Meta, Data: e.Data}
}
