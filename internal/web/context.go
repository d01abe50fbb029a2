package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/BRMReports/internal/core"
)

// WithRequestMetadata adds the client IP and User-Agent to ctx so the run
// history can record who generated a report.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, clientIP(r))
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}

// clientIP returns the request's client address without a port.
// RemoteAddr is already rewritten by TrustedRealIP for trusted proxies.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
