package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/dispute-portal/internal/domain"
)

func TestDispatcherInvokesAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	boom := errors.New("boom")

	d.Subscribe(EventDisputeCreated, func(context.Context, Event) error {
		calls = append(calls, "first")
		return boom
	})
	d.Subscribe(EventDisputeCreated, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventDisputeStatusChanged, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventDisputeCreated})
	if !errors.Is(err, boom) {
		t.Fatalf("expected handler error to be reported, got %v", err)
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Fatalf("unexpected calls %v", calls)
	}

	if err := d.Publish(context.Background(), Event{Type: "unknown"}); err != nil {
		t.Fatalf("no handlers should mean no error, got %v", err)
	}
}

func TestEncodeMessage(t *testing.T) {
	event := Event{
		ID:        "evt-1",
		Type:      EventDisputeStatusChanged,
		DisputeID: "D-1",
		Actor:     ActorFrom(domain.Identity{Email: "admin@demo", SupplierID: "ADMIN", Role: domain.RoleAdmin}),
		Timestamp: time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC),
		Payload:   DisputeStatusChangedPayload{OldStatus: domain.DisputeStatusPending, NewStatus: domain.DisputeStatusPaid},
	}

	msg, err := encodeMessage("dispute-events", event)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if msg.Topic != "dispute-events" || string(msg.Key) != "D-1" {
		t.Fatalf("unexpected message routing %q %q", msg.Topic, msg.Key)
	}
	if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != "dispute_status_changed" {
		t.Fatalf("unexpected headers %v", msg.Headers)
	}

	var decoded struct {
		Type    string `json:"type"`
		Actor   Actor  `json:"actor"`
		Payload struct {
			NewStatus string `json:"new_status"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Type != "dispute_status_changed" || decoded.Payload.NewStatus != "Paid" || decoded.Actor.Role != domain.RoleAdmin {
		t.Fatalf("unexpected body %+v", decoded)
	}
}

func TestNewKafkaPublisherRequiresBrokers(t *testing.T) {
	if _, err := NewKafkaPublisher(nil, "dispute-events"); err == nil {
		t.Fatalf("expected error without brokers")
	}
	if _, err := NewKafkaPublisher([]string{"localhost:9092"}, ""); err == nil {
		t.Fatalf("expected error without topic")
	}
	p, err := NewKafkaPublisher([]string{"localhost:9092"}, "dispute-events")
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	_ = p.Close()
}
