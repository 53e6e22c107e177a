package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/dispute-portal/internal/config"
	"github.com/spec-kit/dispute-portal/internal/dashboard"
	"github.com/spec-kit/dispute-portal/internal/domain"
)

func memoryConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "dispute-portal", Version: "test", DemoSeed: true},
		RowStore: config.RowStoreConfig{
			Backend:          config.BackendMemory,
			DisputeTables:    []string{"Disputes", "Supplier Disputes"},
			CredentialsTable: "Suppliers",
			ActivityTable:    "Login Activity",
		},
		Auth:   config.AuthConfig{JWTSecret: "container-test", AccessTokenTTLMinutes: 5, DemoLogins: true},
		CORS:   config.CORSConfig{AllowOrigins: "*"},
		Schema: config.DefaultSchema(),
	}
}

func TestNewMemoryContainerSeedsDemoData(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, memoryConfig(), zap.NewNop())
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	defer c.Close()

	if c.Sessions != nil {
		t.Fatal("no redis configured, sessions must be disabled")
	}
	if c.Attachments.Enabled() {
		t.Fatal("no bucket configured, attachments must be disabled")
	}

	admin := domain.Identity{Role: domain.RoleAdmin}
	records, err := c.Disputes.List(ctx, admin, dashboard.Criteria{})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != len(demoDisputes) {
		t.Fatalf("expected %d seeded disputes, got %d", len(demoDisputes), len(records))
	}
	summary := dashboard.Tally(records)
	if summary.BucketSum() != summary.TotalSubmitted || summary.TotalPending != 3 {
		t.Fatalf("unexpected seeded summary: %+v", summary)
	}

	identity, err := c.Auth.Authenticate(ctx, "acme@example.com", "Acme#2024")
	if err != nil {
		t.Fatalf("hashed seed credential: %v", err)
	}
	mine, err := c.Disputes.List(ctx, identity, dashboard.Criteria{})
	if err != nil || len(mine) != 4 {
		t.Fatalf("supplier should see their 4 disputes, got %d (%v)", len(mine), err)
	}

	if err := SeedDemo(ctx, c.Store, c.Normalizer, c.Config.RowStore); err != nil {
		t.Fatal(err)
	}
	again, _ := c.Disputes.List(ctx, admin, dashboard.Criteria{})
	if len(again) != len(demoDisputes) {
		t.Fatal("seeding twice must not duplicate rows")
	}
}

func TestFiberAppServesPortalAndEndpoint(t *testing.T) {
	c, err := New(context.Background(), memoryConfig(), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	app := c.NewFiberApp()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"globex@example.com","password":"Globex#2024"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("login: %v %v", resp.StatusCode, err)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/exec?tab=Suppliers", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	var env struct {
		Success bool             `json:"success"`
		Data    []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil || !env.Success || len(env.Data) != len(demoSuppliers) {
		t.Fatalf("endpoint read: %s (%v)", body, err)
	}

	resp, _ = app.Test(httptest.NewRequest(http.MethodPost, "/api/attachments/presign", nil), -1)
	if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusNotFound {
		t.Fatalf("presign route without bucket = %d", resp.StatusCode)
	}
}
