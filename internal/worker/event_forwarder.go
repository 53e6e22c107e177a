package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/dispute-portal/internal/events"
)

const (
	defaultQueueSize   = 256
	defaultSendTimeout = 10 * time.Second
)

// EventForwarder drains a bounded queue of events into a sink on its own goroutine so
// request handlers never wait on the broker.
type EventForwarder struct {
	sink    events.Sink
	queue   chan events.Event
	logger  *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewEventForwarder creates a forwarder. A non-positive size uses the default.
func NewEventForwarder(sink events.Sink, size int, logger *zap.Logger) *EventForwarder {
	if size <= 0 {
		size = defaultQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventForwarder{
		sink:    sink,
		queue:   make(chan events.Event, size),
		logger:  logger,
		timeout: defaultSendTimeout,
	}
}

// Enqueue offers an event without blocking. It reports false when the queue is full.
func (f *EventForwarder) Enqueue(event events.Event) bool {
	select {
	case f.queue <- event:
		return true
	default:
		return false
	}
}

// Start runs the drain loop until ctx is cancelled, then flushes what is still queued.
func (f *EventForwarder) Start(ctx context.Context) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		for {
			select {
			case event := <-f.queue:
				f.send(event)
			case <-ctx.Done():
				f.flush()
				return
			}
		}
	}()
}

// Wait blocks until the drain loop has exited.
func (f *EventForwarder) Wait() {
	f.wg.Wait()
}

func (f *EventForwarder) flush() {
	for {
		select {
		case event := <-f.queue:
			f.send(event)
		default:
			return
		}
	}
}

func (f *EventForwarder) send(event events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()
	if err := f.sink.Publish(ctx, event); err != nil {
		f.logger.Warn("failed to forward event",
			zap.String("event_type", string(event.Type)),
			zap.String("dispute_id", event.DisputeID),
			zap.Error(err))
	}
}
