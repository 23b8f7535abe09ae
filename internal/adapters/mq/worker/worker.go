// Package worker runs the pool of goroutines that drain the event queue
// into the dispatcher. Each event is handled end to end by a single worker,
// which preserves the in-order processing of commands within one event.
package worker

import (
	"context"
	"strconv"
	"time"

	"kudos/internal/domain/model"
	"kudos/pkg/logger"
	"kudos/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount    = 4
	workerShutdownTimeout = 5 * time.Second
)

// Handler processes one chat event to completion, replies included.
type Handler interface {
	HandleEvent(ctx context.Context, e model.Event) error
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Event
}

// worker is a single dispatch loop.
type worker struct {
	queue   Queue
	handler Handler
	name    string

	done chan struct{}

	logger logger.Logger
}

func newWorker(queue Queue, handler Handler, name string) *worker {
	return &worker{
		queue:   queue,
		handler: handler,
		name:    name,
		done:    make(chan struct{}),
		logger:  logger.Get().Named(name),
	}
}

// run drains the queue until ctx is canceled or the queue closes.
func (w *worker) run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			w.process(ctx, event)
		}
	}
}

func (w *worker) process(ctx context.Context, event model.Event) {
	start := time.Now()
	defer func() {
		metrics.RecordHandlerLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := w.handler.HandleEvent(ctx, event); err != nil {
		// Storage faults end the event here; there is no retry policy.
		w.logger.Error(ctx, "event handling failed",
			logger.String("eventID", event.EventID),
			logger.String("kind", string(event.Kind)),
			logger.Error(err),
		)
	}
}

// Pool manages the dispatch workers.
type Pool struct {
	workers []*worker
}

// NewPool creates workerCount workers reading queue into handler.
func NewPool(workerCount int, queue Queue, handler Handler) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	p := &Pool{workers: make([]*worker, workerCount)}
	for i := range p.workers {
		p.workers[i] = newWorker(queue, handler, "worker-"+strconv.Itoa(i))
	}

	metrics.UpdateWorkerCount(workerCount)

	return p
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.run(ctx)
	}
}

// Stop waits for every worker to finish its current event. Workers exit on
// queue close or context cancellation; Stop only waits.
func (p *Pool) Stop() {
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
	metrics.UpdateWorkerCount(0)
}
