package httpserver

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/inkwell-press/inkwell/auth/ratelimit"
	"github.com/inkwell-press/inkwell/auth/token"
	"github.com/inkwell-press/inkwell/httpserver/request"
	"github.com/inkwell-press/inkwell/httpserver/response"
)

// RateLimitMiddleware consumes budget from the given operation class and
// attaches the X-RateLimit-* feedback headers. Exhausted budgets abort
// with 429 and Retry-After.
func RateLimitMiddleware(limiter *ratelimit.Limiter, class string) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := ratelimit.ClientID(c.Request, limiter.UAFallback())
		result, err := limiter.Check(clientID, class)
		if err != nil {
			response.Http500(c, err)
			return
		}

		setRateHeaders(c, result)
		if !result.Allowed {
			response.Http429(c, result.RetryAfter)
			return
		}
		c.Next()
	}
}

func setRateHeaders(c *gin.Context, result ratelimit.Result) {
	c.Header(HeaderRateLimitLimit, strconv.Itoa(result.Limit))
	c.Header(HeaderRateLimitRemaining, strconv.Itoa(result.Remaining))
	c.Header(HeaderRateLimitReset, strconv.FormatInt(result.ResetAt.Unix(), 10))
}

// AuthGateMiddleware validates the Bearer token and runs the fingerprint
// risk evaluation. On success the principal lands in the gin context and
// drift warnings surface as a response header.
func AuthGateMiddleware(svc *token.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := request.BearerToken(c)
		if tok == "" {
			response.Http401(c)
			return
		}

		result, err := svc.Validate(tok, c.Request)
		switch {
		case err == nil:
			if result.Warning != "" {
				c.Header(HeaderSessionWarning, result.Warning)
			}
			c.Set(ContextUserKey, result.User)
			c.Next()
		case errors.Is(err, token.ErrForbidden):
			response.Http403(c)
		case errors.Is(err, token.ErrStoreUnavailable):
			response.Http503(c)
		default:
			response.Http401(c)
		}
	}
}

// AuthUser returns the principal set by the gate, or "" outside it.
func AuthUser(c *gin.Context) string {
	if v, ok := c.Get(ContextUserKey); ok {
		if user, ok := v.(string); ok {
			return user
		}
	}
	return ""
}
