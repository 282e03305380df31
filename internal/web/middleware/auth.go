package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"

	"github.com/JonMunkholm/partsbin/internal/config"
)

const (
	apiKeyHeader = "X-API-Key"
	// APIKeyCookie carries the key for browser sessions, where forms cannot set headers.
	APIKeyCookie = "partsbin_api_key"
	apiKeyField  = "api_key"
)

// APIKeyAuth guards a route group with the configured API keys. The key is
// read from the X-API-Key header, then the partsbin_api_key cookie, then an
// api_key field of a url-encoded form body. With RequireAPIKey off it is a
// pass-through.
func APIKeyAuth(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.RequireAPIKey {
				next.ServeHTTP(w, r)
				return
			}

			key, source := apiKeyFrom(r)
			switch {
			case key == "":
				slog.Warn("auth: request without key",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				writeJSONError(w, http.StatusUnauthorized, "Missing API key", "AUTH_MISSING_KEY")
			case !isValidAPIKey(key, cfg.APIKeys):
				slog.Warn("auth: key rejected",
					"path", r.URL.Path,
					"method", r.Method,
					"source", source,
					"remote_addr", r.RemoteAddr,
				)
				writeJSONError(w, http.StatusForbidden, "Invalid API key", "AUTH_INVALID_KEY")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// apiKeyFrom returns the presented key and where it came from. Multipart
// bodies are left alone so upload size limits still apply in the handler.
func apiKeyFrom(r *http.Request) (key, source string) {
	if k := r.Header.Get(apiKeyHeader); k != "" {
		return k, "header"
	}
	if c, err := r.Cookie(APIKeyCookie); err == nil && c.Value != "" {
		return c.Value, "cookie"
	}
	if r.Body == nil || r.Method == http.MethodGet || r.Method == http.MethodHead {
		return "", ""
	}
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt != "application/x-www-form-urlencoded" {
		return "", ""
	}
	if k := r.PostFormValue(apiKeyField); k != "" {
		return k, "form"
	}
	return "", ""
}

func isValidAPIKey(key string, validKeys []string) bool {
	match := 0
	for _, k := range validKeys {
		match |= subtle.ConstantTimeCompare([]byte(key), []byte(k))
	}
	return match == 1
}

// writeJSONError writes the same error shape the web handlers use.
func writeJSONError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   message,
		"message": message,
		"code":    code,
	})
}
