package rowstore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spec-kit/dispute-portal/pkg/util/errorutil"
)

// endpointStub serves the generic table actions from a MemoryStore.
func endpointStub(t *testing.T, backing *MemoryStore) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		reply := func(env Envelope) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(env)
		}
		fail := func(err error) {
			reply(Envelope{Success: false, Message: err.Error(), Code: ErrorCode(err)})
		}

		if r.Method == http.MethodGet {
			tab := r.URL.Query().Get("tab")
			if r.URL.Query().Get("meta") == "headers" {
				headers, err := backing.Headers(ctx, tab)
				if err != nil {
					fail(err)
					return
				}
				reply(Envelope{Success: true, Headers: headers})
				return
			}
			rows, err := backing.List(ctx, tab)
			if err != nil {
				fail(err)
				return
			}
			data, _ := json.Marshal(rows)
			reply(Envelope{Success: true, Data: data})
			return
		}

		var req RowRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		var err error
		switch req.Action {
		case ActionAppendRow:
			err = backing.Append(ctx, req.Tab, req.Row)
		case ActionUpdateRow:
			err = backing.Update(ctx, req.Tab, *req.Index, req.Values)
		case ActionEnsureTable:
			err = backing.EnsureTable(ctx, req.Tab, req.Headers)
		default:
			t.Errorf("unexpected action %q", req.Action)
		}
		if err != nil {
			fail(err)
			return
		}
		reply(Envelope{Success: true})
	}))
}

func TestRemoteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	backing := NewMemoryStore()
	srv := endpointStub(t, backing)
	defer srv.Close()

	store := NewRemoteStore(srv.URL, 5*time.Second)

	if err := store.EnsureTable(ctx, "Supplier Disputes", []string{"Tracking ID", "Status", "Amount"}); err != nil {
		t.Fatalf("ensure table: %v", err)
	}
	if err := store.Append(ctx, "Supplier Disputes", Row{"Tracking ID": "TRK-1", "Status": "Pending", "Amount": 12.5}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Update(ctx, "Supplier Disputes", 0, Row{"Status": "Resolved"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	headers, err := store.Headers(ctx, "Supplier Disputes")
	if err != nil {
		t.Fatalf("headers: %v", err)
	}
	if len(headers) != 3 || headers[2] != "Amount" {
		t.Fatalf("unexpected headers %v", headers)
	}

	rows, err := store.List(ctx, "Supplier Disputes")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0]["Status"] != "Resolved" || Text(rows[0]["Amount"]) != "12.5" {
		t.Fatalf("unexpected row %v", rows[0])
	}
}

func TestRemoteStoreMapsNotFoundCodes(t *testing.T) {
	ctx := context.Background()
	backing := NewMemoryStore()
	srv := endpointStub(t, backing)
	defer srv.Close()
	store := NewRemoteStore(srv.URL, time.Second)

	if _, err := store.List(ctx, "Nope"); !errors.Is(err, ErrTableNotFound) {
		t.Fatalf("expected ErrTableNotFound, got %v", err)
	}
	_ = backing.EnsureTable(ctx, "Disputes", []string{"Status"})
	if err := store.Update(ctx, "Disputes", 3, Row{"Status": "Paid"}); !errors.Is(err, ErrRowNotFound) {
		t.Fatalf("expected ErrRowNotFound, got %v", err)
	}
}

func TestRemoteStoreTransportErrors(t *testing.T) {
	ctx := context.Background()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer failing.Close()

	_, err := NewRemoteStore(failing.URL, time.Second).List(ctx, "Disputes")
	if errorutil.Code(err) != "TRANSPORT_ERROR" {
		t.Fatalf("expected TRANSPORT_ERROR for non-OK status, got %v", err)
	}
	if errorutil.Message(err) != "connection error, check your network" {
		t.Fatalf("unexpected message %q", errorutil.Message(err))
	}

	closed := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := closed.URL
	closed.Close()
	if err := NewRemoteStore(url, time.Second).Append(ctx, "Disputes", Row{}); errorutil.Code(err) != "TRANSPORT_ERROR" {
		t.Fatalf("expected TRANSPORT_ERROR for unreachable endpoint, got %v", err)
	}
}

func TestRemoteStoreApplicationFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Envelope{Success: false, Message: "sheet locked"})
	}))
	defer srv.Close()

	err := NewRemoteStore(srv.URL, time.Second).EnsureTable(context.Background(), "Disputes", []string{"A"})
	if err == nil || errorutil.Message(err) != "sheet locked" {
		t.Fatalf("expected endpoint message, got %v", err)
	}
}
