// Package audit records every UI instruction the display handled and what it
// did with it.
package audit

import (
	"context"
	"log/slog"
	"time"
)

// Outcome of handling one instruction.
type Outcome string

const (
	Applied Outcome = "applied"
	// Dropped: the instruction was malformed or unknown.
	Dropped Outcome = "dropped"
	// Ignored: valid, but nothing to act on (e.g. threshold on an empty display).
	Ignored Outcome = "ignored"
)

type Entry struct {
	ID         string    `json:"id"`
	ReceivedAt time.Time `json:"received_at"`
	Command    string    `json:"command"`
	Parameters *string   `json:"parameters,omitempty"`
	RecordID   *string   `json:"record_id,omitempty"`
	Outcome    Outcome   `json:"outcome"`
	Reason     string    `json:"reason,omitempty"`
	StackSize  int       `json:"stack_size"`
}

type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Nop discards entries, logging them at debug level.
type Nop struct {
	Log *slog.Logger
}

func (n Nop) Record(ctx context.Context, e Entry) error {
	if n.Log != nil {
		n.Log.Debug("audit skipped", slog.String("command", e.Command), slog.String("outcome", string(e.Outcome)))
	}
	return nil
}
