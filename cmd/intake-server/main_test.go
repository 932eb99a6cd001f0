package main

import (
	"bytes"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/ehr/intake/internal/config"
	"github.com/ehr/intake/internal/domain/catalog"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:           "0",
		Env:            "test",
		CORSOrigins:    []string{"http://localhost:3000"},
		SessionTTL:     time.Hour,
		RequestTimeout: 5 * time.Second,
		BodyLimit:      "64K",
	}
}

func newTestApp() *app {
	return newApp(testConfig(), zerolog.Nop(), catalog.NewMemoryRepo(nil), nil)
}

func do(t *testing.T, a *app, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)
	return rec
}

func TestApp_Health(t *testing.T) {
	a := newTestApp()

	rec := do(t, a, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"version":"0.1.0"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a request id header")
	}

	rec = do(t, a, http.MethodGet, "/health/db", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"backend":"memory"`) {
		t.Errorf("expected memory backend, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestApp_IntakeToQueue(t *testing.T) {
	a := newTestApp()

	rec := do(t, a, http.MethodPost, "/api/v1/intakes", `{"pacienteId":"pac-9","atendimentoId":"enc-9"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("open: expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	var opened struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &opened); err != nil {
		t.Fatalf("decode open response: %v", err)
	}
	base := "/api/v1/intakes/" + opened.ID

	rec = do(t, a, http.MethodPost, base+"/submit", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("empty submit: expected 422, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"motivoConsulta"`) {
		t.Errorf("expected reason error, got %s", rec.Body.String())
	}

	steps := []struct {
		method, path, body string
	}{
		{http.MethodPost, "/select/motivoConsulta", `{"code":"A03"}`},
		{http.MethodPut, "/fields/peso", `{"value":"70,5"}`},
		{http.MethodPut, "/fields/altura", `{"value":"170"}`},
		{http.MethodPut, "/fields/classificacaoRisco", `{"value":"alto"}`},
		{http.MethodPut, "/fields/desfecho", `{"value":"adicionar_lista"}`},
		{http.MethodPost, "/select/profissionalDesfecho", `{"code":"P001"}`},
	}
	for _, s := range steps {
		rec = do(t, a, s.method, base+s.path, s.body)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s %s: expected 200, got %d %s", s.method, s.path, rec.Code, rec.Body.String())
		}
	}

	rec = do(t, a, http.MethodPost, base+"/submit", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "A03 - Febre") {
		t.Errorf("expected reason label in intake, got %s", rec.Body.String())
	}

	rec = do(t, a, http.MethodGet, base, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected submitted session to be gone, got %d", rec.Code)
	}

	rec = do(t, a, http.MethodGet, "/api/v1/queue", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("queue: expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"pacienteId":"pac-9"`) || !strings.Contains(body, `"classificacaoRisco":"alto"`) {
		t.Errorf("expected queued patient, got %s", body)
	}
	if a.queue.Len() != 1 {
		t.Errorf("expected 1 queue entry, got %d", a.queue.Len())
	}

	rec = do(t, a, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", rec.Code)
	}
	metricsBody := rec.Body.String()
	for _, want := range []string{
		`intake_submissions_total{outcome="adicionar_lista"} 1`,
		`intake_submissions_blocked_total 1`,
		`queue_entries{risk="alto"} 1`,
	} {
		if !strings.Contains(metricsBody, want) {
			t.Errorf("expected metrics to contain %q", want)
		}
	}
}

func TestApp_CatalogSearch(t *testing.T) {
	a := newTestApp()

	rec := do(t, a, http.MethodGet, "/api/v1/catalog/ciap2?q=febre", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"code":"A03"`) {
		t.Errorf("expected A03 in results, got %s", rec.Body.String())
	}

	rec = do(t, a, http.MethodGet, "/api/v1/catalog/unknown", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown kind, got %d", rec.Code)
	}
}

func TestApp_BodyLimit(t *testing.T) {
	a := newTestApp()
	big := `{"value":"` + strings.Repeat("a", 70*1024) + `"}`

	rec := do(t, a, http.MethodPost, "/api/v1/intakes", "{}")
	var opened struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &opened)

	rec = do(t, a, http.MethodPut, "/api/v1/intakes/"+opened.ID+"/fields/descricao", big)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}
}

func TestApp_LiveRejectsForeignOrigin(t *testing.T) {
	a := newTestApp()
	rec := do(t, a, http.MethodPost, "/api/v1/intakes", "{}")
	var opened struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &opened); err != nil {
		t.Fatalf("decode open response: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/intakes/"+opened.ID+"/live", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for foreign origin, got %d", rec.Code)
	}
}

func TestSweepInterval(t *testing.T) {
	tests := []struct {
		ttl  time.Duration
		want time.Duration
	}{
		{2 * time.Second, time.Second},
		{time.Minute, 15 * time.Second},
		{2 * time.Hour, 5 * time.Minute},
	}
	for _, tt := range tests {
		if got := sweepInterval(tt.ttl); got != tt.want {
			t.Errorf("sweepInterval(%s): expected %s, got %s", tt.ttl, tt.want, got)
		}
	}
}

func TestMigrationSource(t *testing.T) {
	cfg := testConfig()
	if _, err := fs.Stat(migrationSource(cfg), "001_catalog.sql"); err != nil {
		t.Errorf("expected embedded migrations: %v", err)
	}

	cfg.MigrationsDir = t.TempDir()
	entries, err := fs.ReadDir(migrationSource(cfg), ".")
	if err != nil || len(entries) != 0 {
		t.Errorf("expected empty migrations dir, got %v %v", entries, err)
	}
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := rootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCheckCmd(t *testing.T) {
	out, err := runCmd(t, "check", "peso", "80")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"severity": "none"`) {
		t.Errorf("expected no verdict, got %s", out)
	}

	out, err = runCmd(t, "check", "peso", "900")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"severity": "block"`) || !strings.Contains(out, "Peso deve estar entre") {
		t.Errorf("expected blocking verdict, got %s", out)
	}

	if _, err := runCmd(t, "check", "nope", "1"); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestMaskCmd(t *testing.T) {
	out, err := runCmd(t, "mask", "peso", "70,500")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"display": "70,500"`) || !strings.Contains(out, `"value": "70.5"`) {
		t.Errorf("unexpected mask output %s", out)
	}

	if _, err := runCmd(t, "mask", "volume", "1"); err == nil {
		t.Error("expected error for unknown mask type")
	}
}

func TestCatalogSearchCmd(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	out, err := runCmd(t, "catalog", "search", "ciap2", "febre")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "A03 - Febre") {
		t.Errorf("expected A03 in output, got %s", out)
	}

	if _, err := runCmd(t, "catalog", "search", "bogus"); err == nil {
		t.Error("expected error for unknown kind")
	}
}
