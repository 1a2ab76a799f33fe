package ratelimit

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
)

// AnonymousClient groups requests with no usable origin signal when the
// User-Agent fallback is disabled.
const AnonymousClient = "anonymous"

// ClientIP extracts the best available network origin from proxy headers,
// in priority order, falling back to the socket address.
func ClientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// first hop is the original client
		first := xff
		if idx := strings.IndexByte(xff, ','); idx >= 0 {
			first = xff[:idx]
		}
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		return r.RemoteAddr
	}
	return ""
}

// ClientID derives the rate-limiting identity for a request. Without an
// IP signal it degrades to a hashed User-Agent bucket when uaFallback is
// set; the bucket is deliberately coarse and shared by many anonymous
// clients.
func ClientID(r *http.Request, uaFallback bool) string {
	if ip := ClientIP(r); ip != "" {
		return ip
	}
	if uaFallback {
		if ua := r.UserAgent(); ua != "" {
			sum := sha256.Sum256([]byte(ua))
			return "ua:" + hex.EncodeToString(sum[:8])
		}
	}
	return AnonymousClient
}
