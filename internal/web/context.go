package web

import (
	"net"
	"net/http"

	"github.com/JonMunkholm/partsbin/internal/core"
)

// requestMetadata tags the request context with the client IP and the web
// origin so service logs can attribute imports and mutations.
// It must run after TrustedRealIP.
func requestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := core.ContextWithClientIP(r.Context(), clientIP(r.RemoteAddr))
		ctx = core.ContextWithOrigin(ctx, core.OriginWeb)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
