package httpserver

import "github.com/inkwell-press/inkwell/utils"

const (
	ServerDefaultReadTimeout  = 600
	ServerDefaultWriteTimeout = 600
	ServerDefaultPort         = 5000
	ServerDefaultName         = "http"

	HeaderAccept      = "Accept"
	HeaderContentType = "Content-Type"

	ContentTypeHtml   = "text/html"
	ContentTypeJson   = "application/json"
	ContentTypeBinary = "application/octet-stream"

	// HeaderSessionWarning carries a non-fatal fingerprint drift notice.
	HeaderSessionWarning = "X-Session-Warning"

	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
	HeaderRetryAfter         = "Retry-After"

	// ContextUserKey holds the authenticated principal set by the gate.
	ContextUserKey = "auth_user"

	ErrNilConfig = utils.Error("config is nil")
)
