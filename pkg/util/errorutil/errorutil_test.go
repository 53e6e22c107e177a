package errorutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestToDomainError(t *testing.T) {
	wrappedMissing := fmt.Errorf("table Disputes: %w", ErrNotFound)

	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{name: "validation", err: NewFieldError("trackingId", "trackingId is required"), code: "VALIDATION_FAILED", status: http.StatusBadRequest},
		{name: "not found sentinel", err: wrappedMissing, code: "NOT_FOUND", status: http.StatusNotFound},
		{name: "transport", err: NewTransportError(errors.New("dial tcp")), code: "TRANSPORT_ERROR", status: http.StatusBadGateway},
		{name: "deadline", err: context.DeadlineExceeded, code: "TRANSPORT_ERROR", status: http.StatusGatewayTimeout},
		{name: "plain", err: errors.New("boom"), code: "INTERNAL_ERROR", status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			if got.Code != tt.code {
				t.Fatalf("expected code %s got %s", tt.code, got.Code)
			}
			if got.HTTPStatus != tt.status {
				t.Fatalf("expected status %d got %d", tt.status, got.HTTPStatus)
			}
		})
	}
}

func TestNotFoundWrapsSentinel(t *testing.T) {
	err := NewNotFound("dispute", map[string]any{"id": "abc"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("expected NewNotFound to wrap ErrNotFound")
	}
	if Message(err) != "dispute not found" {
		t.Fatalf("unexpected message %q", Message(err))
	}
}

func TestTransportMessageIsGeneric(t *testing.T) {
	err := NewTransportError(errors.New("connection refused 10.0.0.1:443"))
	if Message(err) != "connection error, check your network" {
		t.Fatalf("unexpected message %q", Message(err))
	}
	if Code(nil) != "" || Message(nil) != "" {
		t.Fatal("expected empty code and message for nil")
	}
}
