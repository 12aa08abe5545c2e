package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/marketly/storefront/internal/core/domain"
	"github.com/marketly/storefront/internal/core/ports"
	"github.com/marketly/storefront/internal/pkg/metrics"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
	publishTimeout = 5 * time.Second
)

// Dispatcher routes order events to a fixed set of workers using consistent
// hashing on the order id, guaranteeing per-order event ordering.
type Dispatcher struct {
	workers   []chan domain.OrderEvent
	publisher ports.EventPublisher
	log       zerolog.Logger
	wg        sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, publisher ports.EventPublisher, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan domain.OrderEvent, numWorkers),
		publisher: publisher,
		log:       log.With().Str("component", "dispatcher").Logger(),
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.OrderEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// Enqueue hands an event to the worker responsible for its order. It never
// blocks: when that worker's buffer is full the event is dropped and counted.
func (d *Dispatcher) Enqueue(event domain.OrderEvent) {
	idx := d.shardIndex(event.OrderID)
	select {
	case d.workers[idx] <- event:
		metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.EventsErrorsTotal.WithLabelValues("queue_full").Inc()
		d.log.Error().
			Str("order_id", event.OrderID).
			Str("type", string(event.Type)).
			Int("worker_id", idx).
			Msg("event queue full, dropping event")
	}
}

// shardIndex maps an order id deterministically to a worker index.
func (d *Dispatcher) shardIndex(orderID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(orderID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.OrderEvent) {
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
			d.publish(ctx, id, event)
		}
	}
}

func (d *Dispatcher) publish(ctx context.Context, worker int, event domain.OrderEvent) {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	start := time.Now()
	err := d.publisher.Publish(pubCtx, event)
	metrics.EventPublishDuration.WithLabelValues(string(event.Type)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.EventsErrorsTotal.WithLabelValues("publish_failed").Inc()
		d.log.Error().Err(err).
			Str("order_id", event.OrderID).
			Str("type", string(event.Type)).
			Int("worker_id", worker).
			Msg("event publishing failed")
		return
	}
	metrics.EventsPublishedTotal.WithLabelValues(string(event.Type)).Inc()
}
