package pubsub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

type SubscriberOptions struct {
	Exchange       string
	Prefetch       int
	BufferCap      int
	WorkerCnt      int
	HandlerTimeout time.Duration
	// DeadLetter, when set, receives deliveries whose handler failed with a
	// non-poison error instead of requeueing them.
	DeadLetter *DeadLetterConfig
}

// AMQPTransport maps push-channel topics onto a topic exchange. Each
// subscription gets its own exclusive, auto-delete queue bound with the topic
// as routing key, so only events published after Subscribe are seen.
type AMQPTransport struct {
	conn *amqp091.Connection
	opts SubscriberOptions
	log  *slog.Logger

	mu       sync.Mutex
	subs     map[string]*rmqSubscription
	errFns   []func(error)
	closed   bool
	stopOnce sync.Once
	done     chan struct{}
}

type rmqSubscription struct {
	sub     *Subscription
	ch      *amqp091.Channel
	tag     string
	handler Handler
	msgChan chan amqp091.Delivery
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

var _ Transport = (*AMQPTransport)(nil)

func NewSubscriber(conn *amqp091.Connection, opts SubscriberOptions, logger *slog.Logger) (*AMQPTransport, error) {
	if opts.Exchange == "" {
		return nil, errors.New("exchange is required")
	}
	if opts.BufferCap <= 0 {
		opts.BufferCap = 64
	}
	if opts.WorkerCnt <= 0 {
		opts.WorkerCnt = 1
	}
	if opts.Prefetch <= 0 {
		opts.Prefetch = 10
	}
	if opts.HandlerTimeout <= 0 {
		opts.HandlerTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(opts.Exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %q: %w", opts.Exchange, err)
	}
	if opts.DeadLetter != nil {
		if err := SetupDeadLetter(ch, *opts.DeadLetter); err != nil {
			return nil, fmt.Errorf("dead letter topology: %w", err)
		}
	}

	t := &AMQPTransport{
		conn: conn,
		opts: opts,
		log:  logger,
		subs: make(map[string]*rmqSubscription),
		done: make(chan struct{}),
	}
	go t.watchConnection(conn.NotifyClose(make(chan *amqp091.Error, 1)))
	return t, nil
}

func (t *AMQPTransport) OnError(fn func(error)) {
	if fn == nil {
		return
	}
	t.mu.Lock()
	t.errFns = append(t.errFns, fn)
	t.mu.Unlock()
}

func (t *AMQPTransport) Subscribe(ctx context.Context, topic string, replayFrom int, h Handler) (*Subscription, error) {
	if replayFrom != ReplayNew {
		return nil, fmt.Errorf("replay %d: %w", replayFrom, ErrReplayUnsupported)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	ch, err := t.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.Qos(t.opts.Prefetch, 0, false); err != nil {
		_ = ch.Close()
		return nil, err
	}
	q, err := ch.QueueDeclare("", false, true, true, false, t.opts.DeadLetter.queueArgs())
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, topic, t.opts.Exchange, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("bind %q: %w", topic, err)
	}
	tag := "raycon-display-" + uuid.NewString()
	msgs, err := ch.Consume(q.Name, tag, false, true, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("consume: %w", err)
	}

	s := &rmqSubscription{
		sub:     &Subscription{ID: tag, Topic: topic, ReplayFrom: replayFrom},
		ch:      ch,
		tag:     tag,
		handler: h,
		msgChan: make(chan amqp091.Delivery, t.opts.BufferCap),
		done:    make(chan struct{}),
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		_ = ch.Close()
		return nil, ErrClosed
	}
	t.subs[tag] = s
	t.mu.Unlock()

	go s.pump(msgs)
	for i := 0; i < t.opts.WorkerCnt; i++ {
		s.wg.Add(1)
		go t.workerLoop(s)
	}
	go t.watchChannel(s, ch.NotifyClose(make(chan *amqp091.Error, 1)))

	t.log.Info("subscribed", slog.String("topic", topic), slog.String("queue", q.Name))
	return s.sub, nil
}

func (t *AMQPTransport) Unsubscribe(ctx context.Context, sub *Subscription) error {
	if sub == nil {
		return ErrUnknownSubscription
	}
	t.mu.Lock()
	s, ok := t.subs[sub.ID]
	delete(t.subs, sub.ID)
	t.mu.Unlock()
	if !ok {
		return ErrUnknownSubscription
	}
	err := s.stop()
	t.log.Info("unsubscribed", slog.String("topic", sub.Topic))
	return err
}

// Close stops every subscription and closes the connection.
func (t *AMQPTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	subs := make([]*rmqSubscription, 0, len(t.subs))
	for id, s := range t.subs {
		subs = append(subs, s)
		delete(t.subs, id)
	}
	t.mu.Unlock()

	t.stopOnce.Do(func() { close(t.done) })
	for _, s := range subs {
		_ = s.stop()
	}
	return t.conn.Close()
}

func (t *AMQPTransport) report(err error) {
	t.mu.Lock()
	fns := append([]func(error){}, t.errFns...)
	t.mu.Unlock()
	for _, fn := range fns {
		fn(err)
	}
}

func (t *AMQPTransport) watchConnection(errCh <-chan *amqp091.Error) {
	select {
	case <-t.done:
	case err, ok := <-errCh:
		if !ok {
			return
		}
		t.log.Error("amqp connection closed", slog.Any("error", err))
		t.report(err)
	}
}

func (t *AMQPTransport) watchChannel(s *rmqSubscription, errCh <-chan *amqp091.Error) {
	select {
	case <-s.done:
	case err, ok := <-errCh:
		if !ok || err == nil {
			return
		}
		t.log.Error("amqp channel closed", slog.String("topic", s.sub.Topic), slog.Any("error", err))
		t.report(err)
	}
}

func (t *AMQPTransport) workerLoop(s *rmqSubscription) {
	defer s.wg.Done()
	for msg := range s.msgChan {
		ctx, cancel := context.WithTimeout(context.Background(), t.opts.HandlerTimeout)
		err := s.handler(ctx, toDelivery(msg))
		cancel()
		switch {
		case errors.Is(err, ErrPoison):
			t.log.Warn("poison message dropped", slog.String("topic", s.sub.Topic), slog.String("message_id", msg.MessageId))
			_ = msg.Ack(false)
		case err != nil:
			t.log.Error("handler error", slog.String("topic", s.sub.Topic), slog.Any("err", err))
			// requeue only when there is nowhere else for it to go
			_ = msg.Nack(false, t.opts.DeadLetter == nil)
		default:
			_ = msg.Ack(false)
		}
	}
}

func (s *rmqSubscription) pump(msgs <-chan amqp091.Delivery) {
	defer close(s.msgChan)
	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			select {
			case s.msgChan <- msg:
			case <-s.done:
				_ = msg.Nack(false, true)
				return
			}
		}
	}
}

func (s *rmqSubscription) stop() error {
	var err error
	s.once.Do(func() {
		err = s.ch.Cancel(s.tag, false)
		close(s.done)
		s.wg.Wait()
		if cerr := SafeClose(s.ch); err == nil {
			err = cerr
		}
	})
	return err
}
