package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/dispute-portal/internal/config"
	"github.com/spec-kit/dispute-portal/internal/events"
	"github.com/spec-kit/dispute-portal/internal/service"
)

type recordingSink struct {
	mu   sync.Mutex
	got  []string
	fail bool
}

func (s *recordingSink) Publish(_ context.Context, e events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, e.DisputeID)
	if s.fail {
		return errors.New("broker unavailable")
	}
	return nil
}

func TestForwarderDrainsOnShutdown(t *testing.T) {
	sink := &recordingSink{}
	f := NewEventForwarder(sink, 4, nil)

	for _, id := range []string{"a", "b", "c"} {
		if !f.Enqueue(events.Event{DisputeID: id}) {
			t.Fatalf("enqueue %s rejected", id)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	f.Start(ctx)
	cancel()
	f.Wait()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.got) != 3 {
		t.Fatalf("expected 3 forwarded events, got %v", sink.got)
	}
}

func TestForwarderRejectsWhenFull(t *testing.T) {
	f := NewEventForwarder(&recordingSink{}, 1, nil)
	if !f.Enqueue(events.Event{DisputeID: "a"}) {
		t.Fatal("first enqueue should fit")
	}
	if f.Enqueue(events.Event{DisputeID: "b"}) {
		t.Fatal("second enqueue should be rejected")
	}
}

func TestNotificationWorkerForwardsThroughQueue(t *testing.T) {
	sink := &recordingSink{fail: true}
	f := NewEventForwarder(sink, 8, zap.NewNop())
	dispatcher := events.NewInMemoryDispatcher()
	StartNotificationWorker(service.NewNotificationService(dispatcher, f, zap.NewNop(), config.NotificationConfig{}))

	if err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventDisputeCreated, DisputeID: "d-9"}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	f.Start(ctx)
	cancel()
	f.Wait()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.got) != 1 || sink.got[0] != "d-9" {
		t.Fatalf("sink errors are logged, not retried: %v", sink.got)
	}
}
