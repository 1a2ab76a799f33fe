package security

import "github.com/gin-gonic/gin"

// SecurityConfig contains the response security headers.
type SecurityConfig struct {
	CSP                string `json:"csp"`
	XSSProtection      string `json:"xssProtection"`
	ContentTypeOptions string `json:"contentTypeOptions"`
	ReferrerPolicy     string `json:"referrerPolicy"`
	HSTS               string `json:"hsts"`
	FrameOptions       string `json:"frameOptions"`
	CacheControl       string `json:"cacheControl"`
}

// DefaultSecurityConfig returns security headers with sane defaults for
// a JSON API.
func DefaultSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		CSP:                "default-src 'none'; frame-ancestors 'none'",
		XSSProtection:      "1; mode=block",
		ContentTypeOptions: "nosniff",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		HSTS:               "max-age=31536000; includeSubDomains",
		FrameOptions:       "DENY",
		CacheControl:       "no-store, no-cache, must-revalidate, max-age=0",
	}
}

// SecurityMiddleware adds the configured headers to each response.
func SecurityMiddleware(config *SecurityConfig) gin.HandlerFunc {
	if config == nil {
		config = DefaultSecurityConfig()
	}
	return func(c *gin.Context) {
		if config.ContentTypeOptions != "" {
			c.Header("X-Content-Type-Options", config.ContentTypeOptions)
		}
		if config.XSSProtection != "" {
			c.Header("X-XSS-Protection", config.XSSProtection)
		}
		if config.FrameOptions != "" {
			c.Header("X-Frame-Options", config.FrameOptions)
		}
		if config.ReferrerPolicy != "" {
			c.Header("Referrer-Policy", config.ReferrerPolicy)
		}
		if config.CSP != "" {
			c.Header("Content-Security-Policy", config.CSP)
		}
		if config.HSTS != "" && c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", config.HSTS)
		}
		if config.CacheControl != "" {
			c.Header("Cache-Control", config.CacheControl)
		}
		c.Next()
	}
}
