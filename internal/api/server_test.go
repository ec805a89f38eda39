package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/underwrite-cli/internal/comps"
	"github.com/sells-group/underwrite-cli/internal/config"
	"github.com/sells-group/underwrite-cli/internal/fixtures"
	"github.com/sells-group/underwrite-cli/internal/metrics"
	"github.com/sells-group/underwrite-cli/internal/model"
	"github.com/sells-group/underwrite-cli/internal/screening"
)

type testEnv struct {
	handler http.Handler
	store   *screening.Store
	clock   *clockwork.FakeClock
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.CORSOrigins = []string{"*"}
	cfg.Comps.DefaultMonths = 12
	return cfg
}

func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()
	cat, err := fixtures.Load()
	require.NoError(t, err)

	clock := clockwork.NewFakeClockAt(time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC))
	registry := prometheus.NewRegistry()
	m, err := metrics.New(registry)
	require.NoError(t, err)

	svc, err := comps.NewService(cat.Subject, cat.SaleComps, cat.RentComps, comps.DefaultWeights(),
		comps.WithClock(clock), comps.WithRecorder(m))
	require.NoError(t, err)
	store := screening.New(cat, screening.DefaultConfig(),
		screening.WithClock(clock),
		screening.WithRecorder(m),
		screening.WithRiskAssigner(func() model.RiskLevel { return model.RiskLow }),
	)
	t.Cleanup(func() { _ = store.Close() })

	return &testEnv{
		handler: New(cfg, svc, store, registry).Routes(),
		store:   store,
		clock:   clock,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, testConfig())

	rec := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.do(t, http.MethodGet, "/api/comps/sales", nil)

	rec := env.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `comps_ranked_total{kind="sale"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, testConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/entities", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestErrorMapping(t *testing.T) {
	env := newTestEnv(t, testConfig())

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"validation", http.MethodPost, "/api/entities", map[string]string{"name": "Acme"}, http.StatusBadRequest},
		{"unknown entity", http.MethodGet, "/api/entities/999", nil, http.StatusNotFound},
		{"malformed id", http.MethodGet, "/api/entities/abc", nil, http.StatusBadRequest},
		{"unknown comp", http.MethodGet, "/api/comps/sales/nope", nil, http.StatusNotFound},
		{"unknown finding", http.MethodPut, "/api/entities/4/findings/lf-1", map[string]any{"is_false_positive": true}, http.StatusNotFound},
		{"unknown custom term", http.MethodDelete, "/api/screening/terms/Fraud", nil, http.StatusNotFound},
		{"empty term", http.MethodPost, "/api/screening/terms", map[string]string{"term": "  "}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode(t, rec)["error"])
		})
	}
}

func TestInvalidBody(t *testing.T) {
	env := newTestEnv(t, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/entities", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", decode(t, rec)["error"])
}

func TestClosedStore(t *testing.T) {
	env := newTestEnv(t, testConfig())
	require.NoError(t, env.store.Close())

	rec := env.do(t, http.MethodPost, "/api/screening/run", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	// Reads keep working.
	rec = env.do(t, http.MethodGet, "/api/entities", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Server.RateLimit = 0.001
	cfg.Server.RateBurst = 1
	env := newTestEnv(t, cfg)

	rec := env.do(t, http.MethodPost, "/api/screening/terms", map[string]string{"term": "Bankruptcy"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/screening/terms", map[string]string{"term": "Tax Lien"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Reads are not limited.
	rec = env.do(t, http.MethodGet, "/api/screening/terms", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIntakeUpload(t *testing.T) {
	env := newTestEnv(t, testConfig())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "borrower-package.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF-1.7"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/intake", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	added := decode(t, rec)["entities"].([]any)
	require.Len(t, added, 2)
	assert.Equal(t, "Riverside Holdings LLC", added[0].(map[string]any)["name"])
	assert.Len(t, env.store.Entities(), 18)
}

func TestIntakeMissingFile(t *testing.T) {
	env := newTestEnv(t, testConfig())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("note", "no file"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/intake", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, env.store.Entities(), 16)
}
