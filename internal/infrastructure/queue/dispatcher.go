package queue

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/klubfitness/fitness-club/internal/api/metrics"
	"github.com/klubfitness/fitness-club/internal/core/domain"
	"github.com/klubfitness/fitness-club/internal/core/ports"
)

const (
	defaultWorkers  = 4
	channelBuffer   = 256
	deliveryTimeout = 10 * time.Second
)

// Dispatcher fans reservation events out to every sink on a fixed set of
// workers. Events are sharded by user id, so every event of one user (and
// therefore created/cancelled of one reservation) is delivered in order.
type Dispatcher struct {
	workers []chan domain.ReservationEvent
	sinks   []ports.ReservationEventSink
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger, sinks ...ports.ReservationEventSink) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.ReservationEvent, numWorkers),
		sinks:   sinks,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.ReservationEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers exit when Close drains their
// channel or when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Publish never blocks: when the owning worker is saturated the event is
// dropped and counted.
func (d *Dispatcher) Publish(event domain.ReservationEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	idx := d.shardIndex(event.UserID)
	select {
	case d.workers[idx] <- event:
		metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.EventsDroppedTotal.WithLabelValues(string(event.Type)).Inc()
		d.log.Warn().
			Str("event_id", event.ID).
			Str("type", string(event.Type)).
			Int64("reservation_id", event.ReservationID).
			Int("worker_id", idx).
			Msg("event queue full, dropping event")
	}
}

// Close stops accepting events and waits for queued ones to be delivered or
// for ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID int64) int {
	n := int64(len(d.workers))
	return int(((userID % n) + n) % n)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.ReservationEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.EventsQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.deliver(ctx, id, event)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, workerID int, event domain.ReservationEvent) {
	for _, sink := range d.sinks {
		start := time.Now()
		sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
		err := sink.Handle(sinkCtx, event)
		cancel()
		metrics.EventDeliveryDuration.WithLabelValues(sink.Name()).Observe(time.Since(start).Seconds())

		if err != nil {
			metrics.EventsDeliveredTotal.WithLabelValues(sink.Name(), "error").Inc()
			d.log.Error().Err(err).
				Str("sink", sink.Name()).
				Str("event_id", event.ID).
				Str("type", string(event.Type)).
				Int64("reservation_id", event.ReservationID).
				Int("worker_id", workerID).
				Msg("event delivery failed")
			continue
		}
		metrics.EventsDeliveredTotal.WithLabelValues(sink.Name(), "ok").Inc()
	}
}
