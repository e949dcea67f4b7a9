// Package display keeps the bounded stack of dashboard widgets driven by UI
// instructions pushed over the event channel.
//
// A Display subscribes to the channel on Mount and unsubscribes on Unmount.
// Each received instruction is interpreted synchronously under a lock, so a
// push and its eviction are atomic with respect to other instructions. No
// instruction ever surfaces an error: malformed input degrades to a no-op or
// to defaults, and the last good stack is kept.
package display

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roboricindustries/raycon-display/pkg/audit"
	"github.com/roboricindustries/raycon-display/pkg/pubsub"
	uiv1 "github.com/roboricindustries/raycon-display/pkg/schemas/uiinstruction/v1"
)

type Options struct {
	// Channel defaults to uiv1.Channel.
	Channel string
	// MaxDisplayCount is the initial bound; values below 1 become 1.
	MaxDisplayCount int
	// HistorySize defaults to DefaultHistorySize.
	HistorySize int
	Recorder    audit.Recorder
	// OnChange is called after every handled instruction and after the
	// subscription state changes, one call at a time and in order. It may
	// read the Display (View, IsDisplayEmpty) but must not call HandleEvent.
	OnChange func(View)
	Now      func() time.Time
	Logger   *slog.Logger
}

// View is what the rendering layer observes. Slices are copies.
type View struct {
	Components      []Descriptor
	Empty           bool
	MaxDisplayCount int
	Subscribed      bool
	History         []Received
	LastEvent       *Received
	LastError       string
}

type Display struct {
	transport pubsub.Transport
	channel   string
	history   int
	recorder  audit.Recorder
	onChange  func(View)
	now       func() time.Time
	log       *slog.Logger

	mu        sync.Mutex
	stack     []Descriptor
	max       int
	received  []Received
	lastError string
	lastStamp int64

	// notifyMu is taken before mu and held until OnChange returns.
	notifyMu sync.Mutex

	subMu         sync.Mutex
	sub           *pubsub.Subscription
	mounted       bool
	pending       bool
	gen           uint64
	errRegistered bool
	inflight      sync.WaitGroup
}

func New(transport pubsub.Transport, opts Options) *Display {
	d := &Display{
		transport: transport,
		channel:   opts.Channel,
		history:   opts.HistorySize,
		recorder:  opts.Recorder,
		onChange:  opts.OnChange,
		now:       opts.Now,
		log:       opts.Logger,
		max:       opts.MaxDisplayCount,
	}
	if d.channel == "" {
		d.channel = uiv1.Channel
	}
	if d.history <= 0 {
		d.history = DefaultHistorySize
	}
	if d.max < 1 {
		d.max = 1
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.log == nil {
		d.log = slog.Default()
	}
	d.log = d.log.With(slog.String("channel", d.channel))
	if d.recorder == nil {
		d.recorder = audit.Nop{Log: d.log}
	}
	return d
}

// Mount registers the error observer and subscribes to the channel. The
// subscription completes in the background; calling Mount while subscribed
// or while a subscribe is pending does nothing.
func (d *Display) Mount(ctx context.Context) {
	d.subMu.Lock()
	defer d.subMu.Unlock()

	d.mounted = true
	if !d.errRegistered {
		d.transport.OnError(func(err error) {
			d.log.Error("received error from channel", slog.Any("error", err))
		})
		d.errRegistered = true
	}
	if d.sub != nil || d.pending {
		return
	}
	d.pending = true
	d.gen++
	gen := d.gen
	d.inflight.Add(1)
	go d.subscribe(ctx, gen)
}

func (d *Display) subscribe(ctx context.Context, gen uint64) {
	defer d.inflight.Done()

	handler := pubsub.JSONHandler(func(ctx context.Context, m uiv1.Message) error {
		d.subMu.Lock()
		mounted := d.mounted
		d.subMu.Unlock()
		if !mounted {
			d.log.Debug("instruction after unmount dropped", slog.String("command", m.Data.Payload.Command))
			return nil
		}
		d.HandleEvent(ctx, m.Data.Payload)
		return nil
	})
	sub, err := d.transport.Subscribe(ctx, d.channel, pubsub.ReplayNew, handler)

	d.subMu.Lock()
	stale := !d.mounted || d.gen != gen
	if !stale {
		d.pending = false
		if err == nil {
			d.sub = sub
		}
	}
	d.subMu.Unlock()

	switch {
	case err != nil:
		d.log.Error("subscribe failed", slog.Any("error", err))
	case stale:
		// unmounted while the subscribe was in flight
		d.log.Info("discarding subscription resolved after unmount")
		if uerr := d.transport.Unsubscribe(context.WithoutCancel(ctx), sub); uerr != nil {
			d.log.Error("unsubscribe of late subscription failed", slog.Any("error", uerr))
		}
	default:
		d.log.Info("successfully subscribed to channel")
		d.notify()
	}
}

// Unmount clears the subscription handle and unsubscribes in the background.
// The handle is cleared whether or not the transport acknowledges.
func (d *Display) Unmount(ctx context.Context) {
	d.subMu.Lock()
	d.mounted = false
	d.pending = false
	d.gen++
	sub := d.sub
	d.sub = nil
	if sub != nil {
		d.inflight.Add(1)
	}
	d.subMu.Unlock()

	if sub == nil {
		return
	}
	go func() {
		defer d.inflight.Done()
		d.notify()
		if err := d.transport.Unsubscribe(context.WithoutCancel(ctx), sub); err != nil {
			d.log.Error("unsubscribe failed", slog.Any("error", err))
			return
		}
		d.log.Info("successfully unsubscribed from channel")
	}()
}

// Wait blocks until background subscribe/unsubscribe calls have returned.
func (d *Display) Wait() {
	d.inflight.Wait()
}

func (d *Display) Subscribed() bool {
	d.subMu.Lock()
	defer d.subMu.Unlock()
	return d.sub != nil
}

func (d *Display) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.viewLocked()
}

func (d *Display) IsDisplayEmpty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.stack) == 0
}

func (d *Display) viewLocked() View {
	v := View{
		Components:      append([]Descriptor{}, d.stack...),
		Empty:           len(d.stack) == 0,
		MaxDisplayCount: d.max,
		History:         append([]Received{}, d.received...),
		LastError:       d.lastError,
		Subscribed:      d.Subscribed(),
	}
	if len(d.received) > 0 {
		last := d.received[0]
		v.LastEvent = &last
	}
	return v
}

type outcome struct {
	status audit.Outcome
	reason string
}

// HandleEvent interprets one instruction. It never fails; see View.LastError
// for why the most recent instruction was dropped, if it was.
func (d *Display) HandleEvent(ctx context.Context, in uiv1.Instruction) {
	now := d.now()
	cmd := ParseCommand(in.Command)

	d.notifyMu.Lock()
	defer d.notifyMu.Unlock()

	d.mu.Lock()
	d.received = prependHistory(d.received, Received{
		Command:    in.Command,
		Parameters: in.ParamsString(),
		RecordID:   in.Record(),
		ReceivedAt: now,
	}, d.history)
	out := d.apply(cmd, in, now)
	if out.status == audit.Applied {
		d.lastError = ""
	} else {
		d.lastError = out.reason
	}
	size := len(d.stack)
	view := d.viewLocked()
	d.mu.Unlock()

	log := d.log.With(
		slog.String("command", in.Command),
		slog.String("outcome", string(out.status)),
		slog.Int("stack_size", size),
	)
	switch out.status {
	case audit.Applied:
		log.Debug("instruction applied")
	case audit.Ignored:
		log.Debug("instruction ignored", slog.String("reason", out.reason))
	default:
		log.Warn("instruction dropped", slog.String("reason", out.reason))
	}

	if err := d.recorder.Record(ctx, audit.Entry{
		ReceivedAt: now,
		Command:    in.Command,
		Parameters: in.Parameters,
		RecordID:   in.RecordID,
		Outcome:    out.status,
		Reason:     out.reason,
		StackSize:  size,
	}); err != nil {
		log.Error("audit record failed", slog.Any("error", err))
	}

	if d.onChange != nil {
		d.onChange(view)
	}
}

// notify sends the current view to OnChange outside of instruction handling.
func (d *Display) notify() {
	if d.onChange == nil {
		return
	}
	d.notifyMu.Lock()
	defer d.notifyMu.Unlock()
	d.onChange(d.View())
}

// apply mutates the stack for cmd. Caller holds d.mu.
func (d *Display) apply(cmd Command, in uiv1.Instruction, now time.Time) outcome {
	switch cmd {
	case CommandShowAccountInfo:
		rec := in.Record()
		if rec == "" {
			return outcome{audit.Dropped, "record id is required for showAccountInfo"}
		}
		d.stack = push(d.stack, AccountDetail{
			Key:      fmt.Sprintf("account-%s-%d", rec, d.stamp(now)),
			RecordID: rec,
		}, d.max)
		return outcome{status: audit.Applied}

	case CommandShowSalesTrendTable:
		p := ParseSalesTrend(in.Parameters)
		d.stack = push(d.stack, SalesTrendTable{
			Key:       fmt.Sprintf("sales-trend-%d", d.stamp(now)),
			Title:     p.Value.Title,
			StartDate: p.Value.StartDate,
			EndDate:   p.Value.EndDate,
			RecordID:  copyString(in.RecordID),
		}, d.max)
		if !p.OK {
			return outcome{audit.Applied, "malformed parameters, defaults used"}
		}
		return outcome{status: audit.Applied}

	case CommandClearDisplay:
		d.stack = nil
		return outcome{status: audit.Applied}

	case CommandSetMaxDisplayCount:
		r := ParseCount(in.Parameters)
		d.max = r.Value
		d.stack = trim(d.stack, d.max)
		return outcome{audit.Applied, "count from " + r.Source.String()}

	case CommandSetHighlightThreshold:
		if len(d.stack) == 0 {
			return outcome{audit.Ignored, "display is empty"}
		}
		last, ok := d.stack[len(d.stack)-1].(SalesTrendTable)
		if !ok {
			return outcome{audit.Ignored, "last component is not a SalesTrendTable"}
		}
		r := ParseThreshold(in.Parameters)
		if !r.OK {
			return outcome{audit.Dropped, "threshold is not a number"}
		}
		d.stack = replaceLast(d.stack, last.WithHighlightThreshold(r.Value))
		return outcome{status: audit.Applied}

	default:
		return outcome{audit.Dropped, fmt.Sprintf("unknown command %q", in.Command)}
	}
}

// stamp returns a millisecond timestamp strictly greater than the previous one,
// so identity keys stay unique within a millisecond.
func (d *Display) stamp(now time.Time) int64 {
	ms := now.UnixMilli()
	if ms <= d.lastStamp {
		ms = d.lastStamp + 1
	}
	d.lastStamp = ms
	return ms
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
