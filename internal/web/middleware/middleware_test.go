package middleware

import (
	"net/http"
	"net/url"
	"strings"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/JonMunkholm/partsbin/internal/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.RemoteAddr))
	})
}

func TestAPIKeyAuth(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.SecurityConfig
		key     string
		want    int
		wantErr string
	}{
		{"disabled", config.SecurityConfig{}, "", http.StatusOK, ""},
		{"missing", config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1"}}, "", http.StatusUnauthorized, "AUTH_MISSING_KEY"},
		{"invalid", config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1"}}, "nope", http.StatusForbidden, "AUTH_INVALID_KEY"},
		{"second key", config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1", "k2"}}, "k2", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			h := APIKeyAuth(&cfg)(okHandler())

			req := httptest.NewRequest(http.MethodPost, "/api/clear", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.wantErr != "" {
				assert.Contains(t, rec.Body.String(), tt.wantErr)
				assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestAPIKeyAuth_BrowserSources(t *testing.T) {
	cfg := config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1"}}

	tests := []struct {
		name string
		req  func() *http.Request
		want int
	}{
		{"cookie", func() *http.Request {
			req := httptest.NewRequest(http.MethodPost, "/api/clear", nil)
			req.AddCookie(&http.Cookie{Name: APIKeyCookie, Value: "k1"})
			return req
		}, http.StatusOK},
		{"bad cookie", func() *http.Request {
			req := httptest.NewRequest(http.MethodPost, "/api/clear", nil)
			req.AddCookie(&http.Cookie{Name: APIKeyCookie, Value: "nope"})
			return req
		}, http.StatusForbidden},
		{"form field", func() *http.Request {
			body := url.Values{"api_key": {"k1"}, "name": {"LED"}}.Encode()
			req := httptest.NewRequest(http.MethodPost, "/api/parts", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			return req
		}, http.StatusOK},
		{"multipart field ignored", func() *http.Request {
			body := "--b\r\nContent-Disposition: form-data; name=\"api_key\"\r\n\r\nk1\r\n--b--\r\n"
			req := httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader(body))
			req.Header.Set("Content-Type", "multipart/form-data; boundary=b")
			return req
		}, http.StatusUnauthorized},
		{"header wins over cookie", func() *http.Request {
			req := httptest.NewRequest(http.MethodPost, "/api/clear", nil)
			req.Header.Set("X-API-Key", "nope")
			req.AddCookie(&http.Cookie{Name: APIKeyCookie, Value: "k1"})
			return req
		}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := APIKeyAuth(&cfg)(okHandler())
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, tt.req())
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name    string
		trusted []string
		remote  string
		headers map[string]string
		want    string
	}{
		{"untrusted keeps remote", nil, "1.2.3.4:5555", map[string]string{"X-Real-IP": "9.9.9.9"}, "1.2.3.4:5555"},
		{"trusted cidr uses real ip", []string{"10.0.0.0/8"}, "10.1.2.3:80", map[string]string{"X-Real-IP": "9.9.9.9"}, "9.9.9.9"},
		{"trusted single ip uses xff", []string{"127.0.0.1"}, "127.0.0.1:80", map[string]string{"X-Forwarded-For": "8.8.8.8, 10.0.0.1"}, "8.8.8.8"},
		{"garbage header ignored", []string{"10.0.0.0/8"}, "10.1.2.3:80", map[string]string{"X-Real-IP": "not-an-ip"}, "10.1.2.3:80"},
		{"invalid entry skipped", []string{"bogus"}, "10.1.2.3:80", map[string]string{"X-Real-IP": "9.9.9.9"}, "10.1.2.3:80"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := TrustedRealIP(tt.trusted)(okHandler())
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(60, 2)
	defer rl.Stop()
	h := rl.Handler(okHandler())

	do := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/parts", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do("1.1.1.1:1").Code)
	assert.Equal(t, http.StatusOK, do("1.1.1.1:2").Code)

	rec := do("1.1.1.1:3")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE001")
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	// Another client has its own bucket.
	assert.Equal(t, http.StatusOK, do("2.2.2.2:1").Code)
	assert.Equal(t, 2, rl.Len())
}

func TestRateLimiter_Evict(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	defer rl.Stop()

	now := time.Now()
	rl.now = func() time.Time { return now }
	rl.Allow("old")
	now = now.Add(idleTTL + time.Second)
	rl.Allow("fresh")

	rl.evict()
	assert.Equal(t, 1, rl.Len())
}

func TestLogger_PassesStatus(t *testing.T) {
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
