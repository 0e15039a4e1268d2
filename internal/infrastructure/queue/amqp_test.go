package queue

import (
	"context"
	"errors"
	"strings"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/klubfitness/fitness-club/internal/core/domain"
)

func TestAMQPPublisher_DefaultQueue(t *testing.T) {
	p := NewAMQPPublisher(AMQPConfig{URL: "amqp://localhost"}, zerolog.Nop())
	if p.cfg.Queue != DefaultReservationQueue {
		t.Fatalf("queue = %q, want %q", p.cfg.Queue, DefaultReservationQueue)
	}
	if p.Name() != "amqp" {
		t.Fatalf("unexpected name %q", p.Name())
	}
}

func TestAMQPPublisher_DialFailure(t *testing.T) {
	p := NewAMQPPublisher(AMQPConfig{URL: "amqp://nowhere"}, zerolog.Nop())
	dials := 0
	p.dial = func(string) (*amqp.Connection, error) {
		dials++
		return nil, errors.New("connection refused")
	}

	if err := p.Connect(); err == nil || !strings.Contains(err.Error(), "dial") {
		t.Fatalf("expected dial error, got %v", err)
	}

	// every publish retries the dial
	err := p.Handle(context.Background(), domain.ReservationEvent{ID: "e1", Type: domain.ReservationCreated})
	if err == nil {
		t.Fatal("expected error from Handle")
	}
	if dials != 2 {
		t.Fatalf("dials = %d, want 2", dials)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close on unopened publisher: %v", err)
	}
}

func TestLogSink(t *testing.T) {
	var buf strings.Builder
	s := NewLogSink(zerolog.New(&buf))
	if err := s.Handle(context.Background(), domain.ReservationEvent{ID: "e1", Type: domain.ReservationCreated, ReservationID: 9}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(buf.String(), `"reservation_id":9`) {
		t.Fatalf("log line missing reservation id: %s", buf.String())
	}
}
