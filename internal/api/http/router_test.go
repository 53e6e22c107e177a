package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/dispute-portal/internal/api/http/handlers"
	"github.com/spec-kit/dispute-portal/internal/auth"
	"github.com/spec-kit/dispute-portal/internal/config"
	"github.com/spec-kit/dispute-portal/internal/normalize"
	"github.com/spec-kit/dispute-portal/internal/observability"
	"github.com/spec-kit/dispute-portal/internal/repository"
	"github.com/spec-kit/dispute-portal/internal/rowstore"
	"github.com/spec-kit/dispute-portal/internal/service"
	"github.com/spec-kit/dispute-portal/internal/session"
	"github.com/spec-kit/dispute-portal/internal/sheetapi"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

type urlPresigner struct{}

func (urlPresigner) PresignPutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	return &v4.PresignedHTTPRequest{URL: "https://evidence.test/" + *params.Key, Method: http.MethodPut}, nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	mr := miniredis.RunT(t)
	sessions := session.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	store := rowstore.NewMemoryStore()
	n := normalize.New(config.DefaultSchema())
	tokens := auth.NewTokenManager("router-test", time.Hour)

	disputes := service.NewDisputeService(service.DisputeDependencies{
		DisputeRepo: repository.NewDisputeRepository(store, n, []string{"Disputes"}),
		Normalizer:  n,
	})
	authSvc := service.NewAuthService(service.AuthDependencies{
		CredentialRepo: repository.NewCredentialRepository(store, n, "Suppliers"),
		ActivityRepo:   repository.NewActivityRepository(store, "Login Activity"),
		Tokens:         tokens,
		Sessions:       sessions,
		DemoLogins:     true,
	})

	attachments := service.NewAttachmentService(service.AttachmentDependencies{
		Presigner: urlPresigner{},
		Uploads:   repository.NewAttachmentRepository(store, "Attachment Uploads"),
		Bucket:    "evidence",
		TTL:       5 * time.Minute,
	})

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterMiddlewares(app, logger, metrics, 5*time.Second, config.CORSConfig{AllowOrigins: "*"})
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("dispute-portal", "test", map[string]handlers.Pinger{"redis": sessions}, metrics),
		Auth:           handlers.NewAuthHandler(authSvc),
		Disputes:       handlers.NewDisputesHandler(disputes),
		Dashboard:      handlers.NewDashboardHandler(disputes),
		Attachments:    handlers.NewAttachmentsHandler(attachments),
		Sheet:          sheetapi.NewHandler(sheetapi.NewGateway(sheetapi.Dependencies{Store: store, Disputes: disputes, Auth: authSvc, PrimaryTable: "Disputes"})),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, sessions),
	})
	return app
}

func do(t *testing.T, app *fiber.App, method, path, token, body string) (*http.Response, apiResponse) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	raw, _ := io.ReadAll(resp.Body)
	var out apiResponse
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, raw)
		}
	} else {
		out.Data = raw
	}
	return resp, out
}

func login(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	resp, out := do(t, app, http.MethodPost, "/api/auth/login", "", `{"email":"`+email+`","password":"Passw0rd!"}`)
	if resp.StatusCode != http.StatusOK || !out.Success {
		t.Fatalf("login %s: %d %+v", email, resp.StatusCode, out)
	}
	var data struct {
		Auth struct {
			Token string `json:"token"`
		} `json:"auth"`
	}
	if err := json.Unmarshal(out.Data, &data); err != nil {
		t.Fatal(err)
	}
	return data.Auth.Token
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)

	resp, out := do(t, app, http.MethodGet, "/api/disputes", "", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if out.Success || out.Error.Code != "UNAUTHORIZED" || out.Message == "" {
		t.Fatalf("unexpected error body: %+v", out)
	}

	resp, out = do(t, app, http.MethodPost, "/api/auth/login", "", `{"email":"admin@demo","password":"wrong"}`)
	if resp.StatusCode != http.StatusUnauthorized || out.Message != "invalid email or password" {
		t.Fatalf("unexpected login failure: %d %+v", resp.StatusCode, out)
	}
}

func TestDisputeLifecycle(t *testing.T) {
	app := newTestApp(t)
	supplier := login(t, app, "supplier@demo")
	admin := login(t, app, "admin@demo")

	resp, out := do(t, app, http.MethodPost, "/api/disputes", supplier, `{"orderItemId":"OI-1","trackingId":"TRK-1","city":"Lagos","amount":"12.50"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: %d %+v", resp.StatusCode, out)
	}
	var created struct {
		ID            string `json:"id"`
		SupplierEmail string `json:"supplierEmail"`
		Status        string `json:"status"`
	}
	if err := json.Unmarshal(out.Data, &created); err != nil {
		t.Fatal(err)
	}
	if created.SupplierEmail != "supplier@demo" || created.Status != "Pending" {
		t.Fatalf("unexpected dispute: %+v", created)
	}

	resp, out = do(t, app, http.MethodPost, "/api/disputes", supplier, `{"orderItemId":"OI-2","amount":"lots"}`)
	if resp.StatusCode != http.StatusBadRequest || out.Error.Details["field"] != "trackingId" {
		t.Fatalf("expected trackingId validation error: %d %+v", resp.StatusCode, out)
	}

	resp, _ = do(t, app, http.MethodPatch, "/api/disputes/"+created.ID+"/status", supplier, `{"status":"Resolved"}`)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("supplier status change = %d", resp.StatusCode)
	}
	resp, out = do(t, app, http.MethodPatch, "/api/disputes/"+created.ID+"/status", admin, `{"status":"Resolved"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin status change: %d %+v", resp.StatusCode, out)
	}
	resp, out = do(t, app, http.MethodPatch, "/api/disputes/missing/status", admin, `{"status":"Resolved"}`)
	if resp.StatusCode != http.StatusNotFound || out.Error.Code != "NOT_FOUND" {
		t.Fatalf("missing dispute: %d %+v", resp.StatusCode, out)
	}

	resp, out = do(t, app, http.MethodGet, "/api/disputes?status=Resolved&city=Lagos", admin, "")
	var list []map[string]any
	if err := json.Unmarshal(out.Data, &list); err != nil || resp.StatusCode != http.StatusOK || len(list) != 1 {
		t.Fatalf("filtered list: %d %s", resp.StatusCode, out.Data)
	}

	resp, out = do(t, app, http.MethodGet, "/api/dashboard", supplier, "")
	var view struct {
		Summary struct {
			TotalSubmitted int `json:"totalSubmitted"`
			TotalResolved  int `json:"totalResolved"`
		} `json:"summary"`
		AgeBuckets []map[string]any `json:"ageBuckets"`
	}
	if err := json.Unmarshal(out.Data, &view); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard: %d %s", resp.StatusCode, out.Data)
	}
	if view.Summary.TotalSubmitted != 1 || view.Summary.TotalResolved != 1 || len(view.AgeBuckets) != 4 {
		t.Fatalf("unexpected dashboard: %+v", view)
	}

	resp, out = do(t, app, http.MethodGet, "/api/disputes/export", admin, "")
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/csv") {
		t.Fatalf("export: %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if lines := strings.Split(strings.TrimSpace(string(out.Data)), "\n"); len(lines) != 2 {
		t.Fatalf("export should hold header and one row: %q", out.Data)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "supplier@demo")

	resp, out := do(t, app, http.MethodGet, "/api/auth/me", token, "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(out.Data), "SUP-001") {
		t.Fatalf("me: %d %s", resp.StatusCode, out.Data)
	}
	if resp, _ := do(t, app, http.MethodPost, "/api/auth/logout", token, ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("logout = %d", resp.StatusCode)
	}
	resp, out = do(t, app, http.MethodGet, "/api/auth/me", token, "")
	if resp.StatusCode != http.StatusUnauthorized || out.Message != "session expired" {
		t.Fatalf("revoked session: %d %+v", resp.StatusCode, out)
	}
}

func TestHealthAndSheetEndpoint(t *testing.T) {
	app := newTestApp(t)

	if resp, _ := do(t, app, http.MethodGet, "/health/ready", "", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("ready = %d", resp.StatusCode)
	}

	resp, out := do(t, app, http.MethodPost, SheetEndpointPath, "", `{"action":"loginSupplier","email":"admin@demo","password":"Passw0rd!"}`)
	if resp.StatusCode != http.StatusOK || !out.Success {
		t.Fatalf("sheet login: %d %+v", resp.StatusCode, out)
	}
	if resp.Header.Get("Access-Control-Allow-Methods") != "GET, POST, OPTIONS" {
		t.Fatalf("sheet endpoint must keep its own CORS headers: %v", resp.Header)
	}

	resp, out = do(t, app, http.MethodGet, "/health/metrics", "", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(out.Data), "/exec|POST|200") {
		t.Fatalf("metrics: %s", out.Data)
	}
}

func TestUnknownRouteUsesErrorShape(t *testing.T) {
	app := newTestApp(t)
	resp, out := do(t, app, http.MethodGet, "/nowhere", "", "")
	if resp.StatusCode != http.StatusNotFound || out.Error.Code != "NOT_FOUND" || out.Success {
		t.Fatalf("unexpected 404 body: %d %+v", resp.StatusCode, out)
	}
}

func TestAttachmentRoutes(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "supplier@demo")

	resp, out := do(t, app, http.MethodPost, "/api/attachments/presign", token, `{"filename":"label.pdf","contentType":"application/pdf"}`)
	if resp.StatusCode != http.StatusOK || !out.Success {
		t.Fatalf("presign: %d %+v", resp.StatusCode, out)
	}
	var upload struct {
		Key string `json:"key"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(out.Data, &upload); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(upload.Key, "disputes/SUP-001/") || upload.URL != "https://evidence.test/"+upload.Key {
		t.Fatalf("unexpected upload %+v", upload)
	}

	resp, out = do(t, app, http.MethodPost, "/api/attachments/presign", token, `{"filename":"run.sh","contentType":"text/x-shellscript"}`)
	if resp.StatusCode != http.StatusBadRequest || out.Error.Code != "VALIDATION_FAILED" {
		t.Fatalf("expected validation failure, got %d %+v", resp.StatusCode, out)
	}

	_, out = do(t, app, http.MethodGet, "/api/attachments", token, "")
	var listed []struct {
		Key string `json:"key"`
	}
	if err := json.Unmarshal(out.Data, &listed); err != nil {
		t.Fatal(err)
	}
	if len(listed) != 1 || listed[0].Key != upload.Key {
		t.Fatalf("unexpected uploads %+v", listed)
	}
}
