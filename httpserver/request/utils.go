package request

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// IsJSONRequest reports whether the caller expects a JSON response.
func IsJSONRequest(c *gin.Context) bool {
	accept := c.GetHeader("Accept")
	contentType := c.GetHeader("Content-Type")
	return strings.Contains(accept, "application/json") ||
		strings.Contains(contentType, "application/json") ||
		accept == "" || accept == "*/*"
}

// BearerToken extracts the token from an "Authorization: Bearer" header,
// or "" when absent or malformed.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
