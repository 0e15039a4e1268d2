package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/klubfitness/fitness-club/internal/core/domain"
)

const DefaultReservationQueue = "reservation.events"

// AMQPConfig configures the broker sink.
type AMQPConfig struct {
	URL   string
	Queue string
}

// AMQPPublisher publishes reservation events as persistent JSON messages to a
// durable queue on the default exchange. The connection is reopened lazily
// after a failure.
type AMQPPublisher struct {
	cfg  AMQPConfig
	log  zerolog.Logger
	dial func(url string) (*amqp.Connection, error)

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPPublisher(cfg AMQPConfig, log zerolog.Logger) *AMQPPublisher {
	if cfg.Queue == "" {
		cfg.Queue = DefaultReservationQueue
	}
	return &AMQPPublisher{cfg: cfg, log: log, dial: amqp.Dial}
}

// Connect opens the connection and declares the queue up front so a
// misconfigured broker fails at startup.
func (p *AMQPPublisher) Connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ensureChannel()
}

func (p *AMQPPublisher) Name() string { return "amqp" }

// Ping reopens the channel if the broker dropped it; used by readiness.
func (p *AMQPPublisher) Ping(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ensureChannel()
}

func (p *AMQPPublisher) Handle(ctx context.Context, event domain.ReservationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("amqp: marshal event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Type:         string(event.Type),
		Timestamp:    event.OccurredAt.UTC(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureChannel(); err != nil {
		return err
	}
	if err := p.ch.PublishWithContext(ctx, "", p.cfg.Queue, false, false, msg); err != nil {
		p.reset()
		return fmt.Errorf("amqp: publish: %w", err)
	}
	return nil
}

// Close shuts the channel and connection down.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	if p.ch != nil {
		err = multierr.Append(err, p.ch.Close())
	}
	if p.conn != nil {
		err = multierr.Append(err, p.conn.Close())
	}
	p.ch, p.conn = nil, nil
	return err
}

// ensureChannel must be called with mu held.
func (p *AMQPPublisher) ensureChannel() error {
	if p.ch != nil && !p.ch.IsClosed() {
		return nil
	}
	p.reset()

	conn, err := p.dial(p.cfg.URL)
	if err != nil {
		return fmt.Errorf("amqp: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("amqp: open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(p.cfg.Queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("amqp: declare queue %q: %w", p.cfg.Queue, err)
	}

	p.conn, p.ch = conn, ch
	p.log.Info().Str("queue", p.cfg.Queue).Msg("amqp channel ready")
	return nil
}

func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}

// LogSink writes every event to the structured log. It is always installed
// so the pipeline has at least one consumer.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) LogSink {
	return LogSink{log: log}
}

func (s LogSink) Name() string { return "log" }

func (s LogSink) Handle(_ context.Context, event domain.ReservationEvent) error {
	s.log.Info().
		Str("event_id", event.ID).
		Str("type", string(event.Type)).
		Int64("reservation_id", event.ReservationID).
		Int64("user_id", event.UserID).
		Int64("session_id", event.SessionID).
		Str("policy", event.Policy).
		Int64("discount_bp", event.DiscountBasisPoints).
		Time("occurred_at", event.OccurredAt).
		Msg("reservation event")
	return nil
}

