package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/partsbin/internal/config"
	"github.com/JonMunkholm/partsbin/internal/core"
	_ "github.com/JonMunkholm/partsbin/internal/core/vocab"
	"github.com/JonMunkholm/partsbin/internal/logging"
)

// memPersistence keeps the last saved set in memory.
type memPersistence struct {
	mu      sync.Mutex
	records []core.Record
	saved   bool
}

func (m *memPersistence) Load(ctx context.Context) ([]core.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.saved {
		return nil, core.ErrStateNotFound
	}
	return append([]core.Record(nil), m.records...), nil
}

func (m *memPersistence) Save(ctx context.Context, records []core.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append([]core.Record(nil), records...)
	m.saved = true
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			RequestTimeout:  10 * time.Second,
			ShutdownTimeout: time.Second,
		},
		Import: config.ImportConfig{MaxFileSize: 1 << 20, MaxConcurrent: 2, MaxWaitTime: time.Second, Timeout: 10 * time.Second},
		Export: config.ExportConfig{BaseName: "archivio-componenti", Vocabulary: core.CanonicalVocabulary},
		Security: config.SecurityConfig{
			EnableCSP: true,
		},
		Logging: config.LoggingConfig{Level: "info", Format: "text"},
	}
}

type testEnv struct {
	server  *Server
	persist *memPersistence
}

func newTestEnv(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}
	persist := &memPersistence{}
	svc := core.NewService(context.Background(), persist, core.ServiceConfig{
		MaxImportBytes:       cfg.Import.MaxFileSize,
		ImportTimeout:        cfg.Import.Timeout,
		MaxConcurrentImports: cfg.Import.MaxConcurrent,
		ImportWait:           cfg.Import.MaxWaitTime,
		ExportBaseName:       cfg.Export.BaseName,
	}, logging.Discard())
	s := NewServer(svc, cfg, logging.Discard())
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return &testEnv{server: s, persist: persist}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.server.Router().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doJSON(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return e.do(req)
}

func multipartRequest(t *testing.T, path, fileName, content, mode string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	if mode != "" {
		require.NoError(t, mw.WriteField("mode", mode))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[HealthResponse](t, rec)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 4, health.Records)
	assert.Equal(t, 2, health.Imports.MaxConcurrent)
}

func TestSecurityHeaders(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))

	env = newTestEnv(t, func(c *config.Config) { c.Security.EnableCSP = false })
	rec = env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestListParts(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/parts", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[core.ViewResult](t, rec)
	assert.Equal(t, 4, view.Totals.Items)
	assert.Equal(t, 361, view.Totals.Quantity)
	assert.Equal(t, "A1", view.Records[0].Drawer)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/parts?low=1", nil))
	view = decode[core.ViewResult](t, rec)
	require.Len(t, view.Records, 1)
	assert.Equal(t, "ESP32-WROOM-32", view.Records[0].Name)
	assert.Equal(t, 4, view.Totals.Items)
	assert.Equal(t, 6, view.Totals.Quantity)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/parts?q=ceramico", nil))
	view = decode[core.ViewResult](t, rec)
	require.Len(t, view.Records, 1)
	assert.Equal(t, "Condensatore 100nF", view.Records[0].Name)
}

func TestSavePart(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.doJSON(http.MethodPost, "/api/parts", map[string]any{
		"name": "Diodo 1N4148", "quantity": "7,5", "drawer": "D1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[core.Record](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 7, created.Quantity)

	rec = env.doJSON(http.MethodPost, "/api/parts", map[string]any{
		"id": created.ID, "name": "Diodo 1N4148", "quantity": 9,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 9, decode[core.Record](t, rec).Quantity)

	rec = env.doJSON(http.MethodGet, "/api/parts/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 9, decode[core.Record](t, rec).Quantity)

	assert.Len(t, env.persist.records, 5)
}

func TestSavePart_Errors(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name     string
		method   string
		path     string
		body     any
		status   int
		code     string
		badField string
	}{
		{"blank name", http.MethodPost, "/api/parts", map[string]any{"name": "  ", "quantity": 1}, http.StatusUnprocessableEntity, "VAL001", "name"},
		{"negative quantity", http.MethodPost, "/api/parts", map[string]any{"name": "x", "quantity": -1}, http.StatusUnprocessableEntity, "VAL002", "quantity"},
		{"text quantity", http.MethodPost, "/api/parts", map[string]any{"name": "x", "quantity": "tanti"}, http.StatusUnprocessableEntity, "VAL002", "quantity"},
		{"unknown id", http.MethodPut, "/api/parts/missing", map[string]any{"name": "x", "quantity": 1}, http.StatusNotFound, "REC001", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.doJSON(tt.method, tt.path, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			resp := decode[ErrorResponse](t, rec)
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Action)
			if tt.badField != "" {
				assert.Contains(t, resp.Fields, tt.badField)
			}
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/parts", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		rec := env.do(req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "JSON001", decode[ErrorResponse](t, rec).Code)
	})
}

func TestSavePart_FormRedirects(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/parts",
		strings.NewReader("name=Trimmer&quantity=3&drawer=E2"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html")
	rec := env.do(req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Len(t, env.persist.records, 5)
}

func TestDeletePart(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.server.service.Records()[0].ID

	rec := env.doJSON(http.MethodDelete, "/api/parts/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, MutationResponse{ID: id, Total: 3}, decode[MutationResponse](t, rec))

	rec = env.doJSON(http.MethodDelete, "/api/parts/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClearAndResetSample(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.doJSON(http.MethodPost, "/api/clear", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[MutationResponse](t, rec).Total)
	assert.Empty(t, env.persist.records)

	rec = env.doJSON(http.MethodPost, "/api/reset-sample", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, decode[MutationResponse](t, rec).Total)
}

func TestImport(t *testing.T) {
	csv := "Nome;Qtà;Cassetto\nLED verde;12;C2\nLED blu;3,9;C3\n"

	t.Run("replace", func(t *testing.T) {
		env := newTestEnv(t, nil)
		rec := env.do(multipartRequest(t, "/api/import", "parti.csv", csv, ""))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		res := decode[core.ImportResult](t, rec)
		assert.Equal(t, core.ImportResult{FileName: "parti.csv", Format: core.FormatCSV, Mode: core.ImportReplace, Imported: 2, Total: 2}, res)
		assert.Len(t, env.persist.records, 2)
		assert.Equal(t, 3, env.persist.records[1].Quantity)
	})

	t.Run("merge", func(t *testing.T) {
		env := newTestEnv(t, nil)
		rec := env.do(multipartRequest(t, "/api/import", "parti.csv", csv, "merge"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 6, decode[core.ImportResult](t, rec).Total)
	})

	t.Run("raw json body", func(t *testing.T) {
		env := newTestEnv(t, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/import?filename=parti.json",
			strings.NewReader(`[{"nome":"Quarzo","quantità":"2"}]`))
		req.Header.Set("Content-Type", "application/octet-stream")
		rec := env.do(req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		res := decode[core.ImportResult](t, rec)
		assert.Equal(t, core.FormatJSON, res.Format)
		assert.Equal(t, "Quarzo", env.persist.records[0].Name)
	})

	t.Run("form post redirects with notice", func(t *testing.T) {
		env := newTestEnv(t, nil)
		req := multipartRequest(t, "/api/import", "parti.csv", csv, "")
		req.Header.Set("Accept", "text/html")
		rec := env.do(req)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Contains(t, rec.Header().Get("Location"), "/?notice=")
	})
}

func TestImport_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		status  int
		code    string
	}{
		{"not an array", "parti.json", `{"name":"x"}`, http.StatusBadRequest, "JSON002"},
		{"broken json", "parti.json", `[{"name":`, http.StatusBadRequest, "JSON001"},
		{"no file", "", "", http.StatusBadRequest, "FILE003"},
		{"too large", "big.csv", "name\n" + strings.Repeat("x", 2048), http.StatusRequestEntityTooLarge, "FILE001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, func(c *config.Config) { c.Import.MaxFileSize = 1024 })
			before := len(env.server.service.Records())

			rec := env.do(multipartRequest(t, "/api/import", tt.file, tt.content, ""))
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decode[ErrorResponse](t, rec).Code)
			assert.Len(t, env.server.service.Records(), before)
		})
	}
}

func TestExport(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/export/csv", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="archivio-componenti-`)
	assert.Equal(t, "4", rec.Header().Get("X-Record-Count"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "id,name,category,quantity,drawer,value,package,notes\n"))

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/export/json?vocab=it", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="archivio-componenti.json"`)
	assert.Contains(t, rec.Body.String(), `"quantità": 120`)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/export/json?vocab=klingon", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VOC001", decode[ErrorResponse](t, rec).Code)
}

func TestVocabularies(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/vocabularies", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	vocabs := decode[[]VocabularyResponse](t, rec)
	require.NotEmpty(t, vocabs)
	assert.Equal(t, core.CanonicalVocabulary, vocabs[0].Key)
	assert.Equal(t, "quantity", vocabs[0].Keys["quantity"])

	var found bool
	for _, v := range vocabs {
		if v.Key == "it" {
			found = true
			assert.Equal(t, "cassetto", v.Keys["drawer"])
		}
	}
	assert.True(t, found)
}

func TestAPIKeyProtectsMutations(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) {
		c.Security.RequireAPIKey = true
		c.Security.APIKeys = []string{"secret"}
	})

	rec := env.doJSON(http.MethodPost, "/api/clear", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Len(t, env.server.service.Records(), 4)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/parts", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/clear", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = env.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) {
		c.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}
	})

	assert.Equal(t, http.StatusOK, env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE001")
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) {
		c.Security.AllowedOrigins = []string{"https://bench.example"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/parts", nil)
	req.Header.Set("Origin", "https://bench.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := env.do(req)
	assert.Equal(t, "https://bench.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/parts", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = env.do(req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestIndexPage(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/?q=led", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "LED 5mm Rosso")
	assert.NotContains(t, body, "ESP32-WROOM-32")

	id := env.server.service.Records()[2].ID
	rec = env.do(httptest.NewRequest(http.MethodGet, "/?edit="+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="id" value="`+id+`"`)

	req := httptest.NewRequest(http.MethodGet, "/?edit=missing", nil)
	req.Header.Set("Accept", "text/html")
	rec = env.do(req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "REC001")
}

func TestHTMXErrorFragment(t *testing.T) {
	env := newTestEnv(t, nil)
	req := httptest.NewRequest(http.MethodDelete, "/api/parts/missing", nil)
	req.Header.Set("HX-Request", "true")
	rec := env.do(req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), `<div class="alert alert-error"`))
}

func TestStatusForCode(t *testing.T) {
	tests := map[string]int{
		"JSON001": http.StatusBadRequest,
		"FILE001": http.StatusRequestEntityTooLarge,
		"FILE003": http.StatusBadRequest,
		"VAL002":  http.StatusUnprocessableEntity,
		"REC001":  http.StatusNotFound,
		"IMP001":  http.StatusServiceUnavailable,
		"IMP002":  http.StatusRequestTimeout,
		"VOC001":  http.StatusBadRequest,
		"STO001":  http.StatusServiceUnavailable,
		"RATE001": http.StatusTooManyRequests,
		"ERR000":  http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, statusForCode(code), code)
	}
}
