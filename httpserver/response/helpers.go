package response

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inkwell-press/inkwell/httpserver/log"
)

// JSON generates a success envelope.
func JSON(ctx *gin.Context, status int, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Success: true,
		Data:    data,
	})
}

// Http400 generates a 400 Bad Request response.
func Http400(ctx *gin.Context, message string) {
	if message == "" {
		message = http.StatusText(http.StatusBadRequest)
	}
	log.RequestWarn(ctx, "bad request", map[string]interface{}{
		"status":  http.StatusBadRequest,
		"message": message,
	})
	ctx.AbortWithStatusJSON(http.StatusBadRequest, newError(CodeValidationError, message))
}

// ValidationError generates a 400 response carrying field-level details.
func ValidationError(ctx *gin.Context, errors interface{}) {
	log.RequestWarn(ctx, "validation failed", map[string]interface{}{
		"status": http.StatusBadRequest,
	})
	body := newError(CodeValidationError, "request validation failed")
	body.Error.RequestError = errors
	ctx.AbortWithStatusJSON(http.StatusBadRequest, body)
}

// Http401 generates a 401 Unauthorized response.
func Http401(ctx *gin.Context) {
	log.RequestWarn(ctx, "unauthorized access attempt", map[string]interface{}{
		"status": http.StatusUnauthorized,
	})
	ctx.AbortWithStatusJSON(http.StatusUnauthorized,
		newError(CodeUnauthorized, http.StatusText(http.StatusUnauthorized)))
}

// Http403 generates a 403 Forbidden response.
func Http403(ctx *gin.Context) {
	log.RequestWarn(ctx, "forbidden access attempt", map[string]interface{}{
		"status": http.StatusForbidden,
	})
	ctx.AbortWithStatusJSON(http.StatusForbidden,
		newError(CodeForbidden, http.StatusText(http.StatusForbidden)))
}

// Http404 generates a 404 Not Found response.
func Http404(ctx *gin.Context) {
	ctx.AbortWithStatusJSON(http.StatusNotFound,
		newError(CodeNotFound, http.StatusText(http.StatusNotFound)))
}

// Http429 generates a 429 Too Many Requests response with Retry-After
// guidance covering the rest of the window.
func Http429(ctx *gin.Context, retryAfter time.Duration) {
	seconds := int(math.Ceil(retryAfter.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	ctx.Header("Retry-After", strconv.Itoa(seconds))

	log.RequestWarn(ctx, "rate limit exceeded", map[string]interface{}{
		"status":      http.StatusTooManyRequests,
		"retry_after": seconds,
	})
	ctx.AbortWithStatusJSON(http.StatusTooManyRequests,
		newError(CodeRateLimited, "rate limit exceeded"))
}

// Http500 generates a 500 response; the underlying error is logged and
// never sent to the client.
func Http500(ctx *gin.Context, err error) {
	log.RequestError(ctx, err, "internal server error", map[string]interface{}{
		"status": http.StatusInternalServerError,
	})
	ctx.AbortWithStatusJSON(http.StatusInternalServerError,
		newError(CodeInternalError, http.StatusText(http.StatusInternalServerError)))
}

// Http503 generates a 503 response for downstream store trouble.
func Http503(ctx *gin.Context) {
	log.RequestError(ctx, nil, "service unavailable", map[string]interface{}{
		"status": http.StatusServiceUnavailable,
	})
	ctx.AbortWithStatusJSON(http.StatusServiceUnavailable,
		newError(CodeServiceUnavailable, http.StatusText(http.StatusServiceUnavailable)))
}
