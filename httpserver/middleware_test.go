package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-press/inkwell/auth/fingerprint"
	"github.com/inkwell-press/inkwell/auth/ratelimit"
	"github.com/inkwell-press/inkwell/auth/seclog"
	"github.com/inkwell-press/inkwell/auth/token"
	"github.com/inkwell-press/inkwell/provider/kv"
)

const chromeUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

func init() {
	gin.SetMode(gin.TestMode)
}

func clientRequest(method, path string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "192.0.2.1:1234"
	req.Header.Set("User-Agent", chromeUA)
	req.Header.Set("Accept-Language", "en-US")
	req.Header.Set(fingerprint.HeaderTimezone, "Europe/Lisbon")
	req.Header.Set(fingerprint.HeaderScreen, "1920x1080")
	return req
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter, err := ratelimit.NewLimiter(kv.NewMemoryKV(), &ratelimit.Config{
		Classes:    map[string]ratelimit.Class{"read": {Limit: 2, WindowMs: 60_000}},
		Strategy:   ratelimit.StrategyFixed,
		UAFallback: true,
	})
	require.NoError(t, err)

	router := gin.New()
	router.GET("/articles", RateLimitMiddleware(limiter, "read"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, clientRequest("GET", "/articles"))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get(HeaderRateLimitLimit))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, clientRequest("GET", "/articles"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get(HeaderRateLimitRemaining))
	assert.NotEmpty(t, w.Header().Get(HeaderRetryAfter))
	assert.NotEmpty(t, w.Header().Get(HeaderRateLimitReset))
}

func testTokenService(t *testing.T) (*token.Service, kv.KV) {
	t.Helper()
	store := kv.NewMemoryKV()
	engine, err := fingerprint.NewEvaluator(nil, seclog.NewLogger(store, time.Hour), nil)
	require.NoError(t, err)
	return token.NewService(store, fingerprint.NewDeriver(), engine, nil), store
}

func gatedRouter(svc *token.Service) *gin.Engine {
	router := gin.New()
	gated := router.Group("/", AuthGateMiddleware(svc))
	gated.GET("/articles", func(c *gin.Context) {
		c.String(http.StatusOK, AuthUser(c))
	})
	gated.DELETE("/articles/:id", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestAuthGateAllows(t *testing.T) {
	svc, _ := testTokenService(t)
	router := gatedRouter(svc)

	tok, err := svc.Issue("admin", clientRequest("POST", "/auth/login"))
	require.NoError(t, err)

	req := clientRequest("GET", "/articles")
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", w.Body.String())
	assert.Empty(t, w.Header().Get(HeaderSessionWarning))
}

func TestAuthGateMissingToken(t *testing.T) {
	svc, _ := testTokenService(t)
	router := gatedRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, clientRequest("GET", "/articles"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := clientRequest("GET", "/articles")
	req.Header.Set("Authorization", "Bearer bogus")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthGateBlocksHijack(t *testing.T) {
	svc, _ := testTokenService(t)
	router := gatedRouter(svc)

	tok, err := svc.Issue("admin", clientRequest("POST", "/auth/login"))
	require.NoError(t, err)

	// critical operation from a completely different client context
	req := httptest.NewRequest("DELETE", "/articles/42", nil)
	req.RemoteAddr = "198.51.100.7:9999"
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0) Gecko/20100101 Firefox/127.0")
	req.Header.Set("Accept-Language", "ru-RU")
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// the session is gone afterwards
	req = clientRequest("GET", "/articles")
	req.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
