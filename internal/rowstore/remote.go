package rowstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/spec-kit/dispute-portal/pkg/util/errorutil"
)

// Endpoint actions understood by the row-store endpoint for generic table access.
const (
	ActionAppendRow   = "appendRow"
	ActionUpdateRow   = "updateRow"
	ActionEnsureTable = "ensureTable"
)

// Failure codes the endpoint reports for missing tables and rows.
const (
	CodeTableNotFound = "TABLE_NOT_FOUND"
	CodeRowNotFound   = "ROW_NOT_FOUND"
)

// ErrorCode returns the endpoint code for store sentinels, or "" for anything else.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrTableNotFound):
		return CodeTableNotFound
	case errors.Is(err, ErrRowNotFound):
		return CodeRowNotFound
	}
	return ""
}

// Envelope is the JSON body every endpoint response carries.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Headers []string        `json:"headers,omitempty"`
	Message string          `json:"message,omitempty"`
	Code    string          `json:"code,omitempty"`
	User    json.RawMessage `json:"user,omitempty"`
}

// RowRequest is the POST body of the generic table actions.
type RowRequest struct {
	Action  string   `json:"action"`
	Tab     string   `json:"tab"`
	Row     Row      `json:"row,omitempty"`
	Index   *int     `json:"index,omitempty"`
	Values  Row      `json:"values,omitempty"`
	Headers []string `json:"headers,omitempty"`
}

// RemoteStore talks to a row-store endpoint over HTTP.
type RemoteStore struct {
	baseURL string
	client  *http.Client
}

// NewRemoteStore returns a client of the endpoint at baseURL.
func NewRemoteStore(baseURL string, timeout time.Duration) *RemoteStore {
	return &RemoteStore{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *RemoteStore) List(ctx context.Context, table string) ([]Row, error) {
	env, err := s.get(ctx, table, false)
	if err != nil {
		return nil, err
	}
	var rows []Row
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &rows); err != nil {
			return nil, errorutil.NewTransportError(fmt.Errorf("decode rows of %s: %w", table, err))
		}
	}
	return rows, nil
}

func (s *RemoteStore) Headers(ctx context.Context, table string) ([]string, error) {
	env, err := s.get(ctx, table, true)
	if err != nil {
		return nil, err
	}
	return env.Headers, nil
}

func (s *RemoteStore) Append(ctx context.Context, table string, row Row) error {
	_, err := s.post(ctx, RowRequest{Action: ActionAppendRow, Tab: table, Row: row})
	return err
}

func (s *RemoteStore) Update(ctx context.Context, table string, index int, values Row) error {
	_, err := s.post(ctx, RowRequest{Action: ActionUpdateRow, Tab: table, Index: &index, Values: values})
	return err
}

func (s *RemoteStore) EnsureTable(ctx context.Context, table string, headers []string) error {
	_, err := s.post(ctx, RowRequest{Action: ActionEnsureTable, Tab: table, Headers: headers})
	return err
}

func (s *RemoteStore) get(ctx context.Context, table string, headersOnly bool) (*Envelope, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("tab", table)
	if headersOnly {
		q.Set("meta", "headers")
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	return s.do(req, table)
}

func (s *RemoteStore) post(ctx context.Context, body RowRequest) (*Envelope, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, body.Tab)
}

func (s *RemoteStore) do(req *http.Request, table string) (*Envelope, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errorutil.NewTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errorutil.NewTransportError(fmt.Errorf("row store responded %s", resp.Status))
	}
	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, errorutil.NewTransportError(fmt.Errorf("decode response: %w", err))
	}
	if !env.Success {
		return nil, remoteFailure(env, table)
	}
	return &env, nil
}

func remoteFailure(env Envelope, table string) error {
	switch env.Code {
	case CodeTableNotFound:
		return tableError(ErrTableNotFound, table)
	case CodeRowNotFound:
		return tableError(ErrRowNotFound, table)
	}
	code := env.Code
	if code == "" {
		code = "REMOTE_ERROR"
	}
	message := env.Message
	if message == "" {
		message = "row store request failed"
	}
	return errorutil.NewDomainError(code, message, http.StatusBadGateway, nil)
}
