// Package sheetapi serves the row-store endpoint: table reads over GET and action-tagged
// JSON commands over POST. Application failures are reported in the body with HTTP 200.
package sheetapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/dispute-portal/internal/rowstore"
	"github.com/spec-kit/dispute-portal/internal/service"
	"github.com/spec-kit/dispute-portal/pkg/util/errorutil"
)

// Dispute and login actions. Generic table actions are defined by rowstore.
const (
	ActionLoginSupplier       = "loginSupplier"
	ActionCreateDispute       = "createDispute"
	ActionUpdateDisputeStatus = "updateDisputeStatus"
)

// MetaHeaders is the GET meta value that returns the header row instead of data.
const MetaHeaders = "headers"

// Gateway implements the endpoint independently of the HTTP framework in front of it.
type Gateway struct {
	store        rowstore.Store
	disputes     *service.DisputeService
	auth         *service.AuthService
	primaryTable string
	logger       *zap.Logger
}

// Dependencies bundles collaborators for the gateway.
type Dependencies struct {
	Store        rowstore.Store
	Disputes     *service.DisputeService
	Auth         *service.AuthService
	PrimaryTable string
	Logger       *zap.Logger
}

// NewGateway builds a gateway.
func NewGateway(deps Dependencies) *Gateway {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		store:        deps.Store,
		disputes:     deps.Disputes,
		auth:         deps.Auth,
		primaryTable: deps.PrimaryTable,
		logger:       logger,
	}
}

type actionProbe struct {
	Action string `json:"action"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type statusRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Get returns the rows of tab, or its header row when meta is "headers". An empty tab
// reads the primary dispute table.
func (g *Gateway) Get(ctx context.Context, tab, meta string) (int, rowstore.Envelope) {
	tab = strings.TrimSpace(tab)
	if tab == "" {
		tab = g.primaryTable
	}

	if meta == MetaHeaders {
		headers, err := g.store.Headers(ctx, tab)
		if err != nil {
			return g.fail(err)
		}
		return http.StatusOK, rowstore.Envelope{Success: true, Headers: headers}
	}

	rows, err := g.store.List(ctx, tab)
	if err != nil {
		return g.fail(err)
	}
	if rows == nil {
		rows = []rowstore.Row{}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return g.fail(errorutil.NewInternalError(err))
	}
	return http.StatusOK, rowstore.Envelope{Success: true, Data: data}
}

// Post dispatches on the body's action. A missing or unknown action creates a dispute.
func (g *Gateway) Post(ctx context.Context, body []byte) (int, rowstore.Envelope) {
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	var probe actionProbe
	if err := json.Unmarshal(body, &probe); err != nil {
		return g.fail(errorutil.NewValidationError("invalid request body", nil))
	}

	switch probe.Action {
	case ActionLoginSupplier:
		return g.login(ctx, body)
	case ActionUpdateDisputeStatus:
		return g.updateStatus(ctx, body)
	case rowstore.ActionAppendRow, rowstore.ActionUpdateRow, rowstore.ActionEnsureTable:
		return g.rowAction(ctx, body)
	default:
		return g.createDispute(ctx, body)
	}
}

func (g *Gateway) login(ctx context.Context, body []byte) (int, rowstore.Envelope) {
	var req loginRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return g.fail(errorutil.NewValidationError("invalid request body", nil))
	}
	identity, err := g.auth.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return g.fail(err)
	}
	user, err := json.Marshal(identity)
	if err != nil {
		return g.fail(errorutil.NewInternalError(err))
	}
	return http.StatusOK, rowstore.Envelope{Success: true, Message: "Login successful", User: user}
}

func (g *Gateway) createDispute(ctx context.Context, body []byte) (int, rowstore.Envelope) {
	var payload rowstore.Row
	if err := json.Unmarshal(body, &payload); err != nil {
		return g.fail(errorutil.NewValidationError("invalid request body", nil))
	}
	delete(payload, "action")

	d, err := g.disputes.SubmitRaw(ctx, payload)
	if err != nil {
		return g.fail(err)
	}
	data, _ := json.Marshal(map[string]string{"id": d.ID})
	return http.StatusOK, rowstore.Envelope{Success: true, Message: "Dispute submitted successfully", Data: data}
}

func (g *Gateway) updateStatus(ctx context.Context, body []byte) (int, rowstore.Envelope) {
	var req statusRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return g.fail(errorutil.NewValidationError("invalid request body", nil))
	}
	d, err := g.disputes.ChangeStatus(ctx, req.ID, req.Status)
	if err != nil {
		return g.fail(err)
	}
	data, _ := json.Marshal(map[string]string{"id": d.ID, "status": string(d.Status)})
	return http.StatusOK, rowstore.Envelope{Success: true, Message: "Status updated", Data: data}
}

func (g *Gateway) rowAction(ctx context.Context, body []byte) (int, rowstore.Envelope) {
	var req rowstore.RowRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return g.fail(errorutil.NewValidationError("invalid request body", nil))
	}
	if strings.TrimSpace(req.Tab) == "" {
		return g.fail(errorutil.NewFieldError("tab", "tab is required"))
	}

	var err error
	switch req.Action {
	case rowstore.ActionAppendRow:
		err = g.store.Append(ctx, req.Tab, req.Row)
	case rowstore.ActionUpdateRow:
		if req.Index == nil {
			return g.fail(errorutil.NewFieldError("index", "index is required"))
		}
		err = g.store.Update(ctx, req.Tab, *req.Index, req.Values)
	case rowstore.ActionEnsureTable:
		err = g.store.EnsureTable(ctx, req.Tab, req.Headers)
		if errors.Is(err, rowstore.ErrNoHeaders) {
			err = errorutil.NewFieldError("headers", "headers are required")
		}
	}
	if err != nil {
		return g.fail(err)
	}
	return http.StatusOK, rowstore.Envelope{Success: true}
}

// fail renders err into the failure envelope. Only internal faults leave HTTP 200.
func (g *Gateway) fail(err error) (int, rowstore.Envelope) {
	de := errorutil.ToDomainError(err)
	code := rowstore.ErrorCode(err)
	if code == "" {
		code = de.Code
	}

	status := http.StatusOK
	if de.Code == "INTERNAL_ERROR" {
		status = http.StatusInternalServerError
		g.logger.Error("row store endpoint failed", zap.Error(err))
	}
	return status, rowstore.Envelope{Success: false, Message: de.Message, Code: code}
}
