package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/inkwell-press/inkwell/auth/credential"
	"github.com/inkwell-press/inkwell/auth/fingerprint"
	"github.com/inkwell-press/inkwell/auth/ratelimit"
	"github.com/inkwell-press/inkwell/auth/seclog"
	"github.com/inkwell-press/inkwell/auth/token"
	"github.com/inkwell-press/inkwell/content"
	"github.com/inkwell-press/inkwell/httpserver"
	"github.com/inkwell-press/inkwell/httpserver/request"
	"github.com/inkwell-press/inkwell/httpserver/response"
	"github.com/inkwell-press/inkwell/httpserver/security"
	"github.com/inkwell-press/inkwell/log"
	"github.com/inkwell-press/inkwell/provider/kv"
	"github.com/inkwell-press/inkwell/provider/pgsql"
	"github.com/inkwell-press/inkwell/provider/redis"
	"github.com/inkwell-press/inkwell/provider/s3"
)

const readyTimeout = 5 * time.Second

type ApiServer struct {
	srv      *httpserver.Server
	logger   *log.Logger
	verifier *credential.Verifier
	tokens   *token.Service
	limiter  *ratelimit.Limiter
	db       *sqlx.DB
	objects  *s3.Client
	redis    *redis.Client
	cfg      *Config
}

func NewApiServer(cfg *Config) (*ApiServer, error) {
	logger := log.New("api-server")

	srv, err := httpserver.NewServer(cfg.Api)
	if err != nil {
		return nil, err
	}

	// session, rate-limit and security-log state share one kv backend
	var store kv.KV
	var redisClient *redis.Client
	if cfg.KVBackend == KVBackendRedis {
		redisClient, err = redis.NewClient(cfg.Redis)
		if err != nil {
			return nil, err
		}
		if err = redisClient.Connect(); err != nil {
			return nil, err
		}
		store = redisClient
	} else {
		store = kv.NewMemoryKV()
	}

	audit := seclog.NewLogger(store, time.Duration(cfg.SecurityLogDays)*24*time.Hour)
	history := fingerprint.NewHistory(store,
		cfg.Fingerprint.HistorySize,
		time.Duration(cfg.Fingerprint.HistoryTTLDays)*24*time.Hour)

	engine, err := fingerprint.NewEvaluator(cfg.Fingerprint, audit, history)
	if err != nil {
		return nil, err
	}

	verifier, err := credential.NewVerifier(cfg.Credentials)
	if err != nil {
		return nil, err
	}

	limiter, err := ratelimit.NewLimiter(store, cfg.RateLimit)
	if err != nil {
		return nil, err
	}

	db, err := pgsql.NewClient(cfg.Database)
	if err != nil {
		return nil, err
	}

	objects, err := s3.NewClient(cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	api := &ApiServer{
		srv:      srv,
		logger:   logger,
		verifier: verifier,
		tokens:   token.NewService(store, fingerprint.NewDeriver(), engine, cfg.Tokens),
		limiter:  limiter,
		db:       db,
		objects:  objects,
		redis:    redisClient,
		cfg:      cfg,
	}

	srv.AddMiddleware(security.SecurityMiddleware(security.DefaultSecurityConfig()))
	api.registerRoutes(content.NewHandler(content.NewRepository(db), objects))
	return api, nil
}

func (a *ApiServer) registerRoutes(contentAPI *content.Handler) {
	read := httpserver.RateLimitMiddleware(a.limiter, ratelimit.ClassRead)
	mutate := httpserver.RateLimitMiddleware(a.limiter, ratelimit.ClassMutate)
	upload := httpserver.RateLimitMiddleware(a.limiter, ratelimit.ClassUpload)
	gate := httpserver.AuthGateMiddleware(a.tokens)

	r := a.srv.Route()
	r.GET("/live", a.live)
	r.GET("/ready", a.ready)

	auth := a.srv.Group("/auth")
	auth.POST("/login", httpserver.RateLimitMiddleware(a.limiter, ratelimit.ClassLogin), a.login)
	auth.POST("/logout", gate, a.logout)

	r.GET("/articles", read, contentAPI.ListArticles)
	r.GET("/articles/:slug", read, contentAPI.GetArticle)
	r.POST("/articles", gate, mutate, contentAPI.CreateArticle)
	r.PUT("/articles/:id", gate, mutate, contentAPI.UpdateArticle)
	r.DELETE("/articles/:id", gate, mutate, contentAPI.DeleteArticle)

	r.GET("/albums", read, contentAPI.ListAlbums)
	r.POST("/albums", gate, mutate, contentAPI.CreateAlbum)

	r.POST("/images", gate, upload, contentAPI.UploadImage)
	r.GET("/images/:id", read, contentAPI.GetImage)
	r.DELETE("/images/:id", gate, mutate, contentAPI.DeleteImage)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// login verifies the credential pair and issues a session token.
func (a *ApiServer) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	if !a.verifier.Verify(c.Request.Context(), req.Username, req.Password) {
		response.Http401(c)
		return
	}

	tok, err := a.tokens.Issue(req.Username, c.Request)
	if err != nil {
		if errors.Is(err, token.ErrStoreUnavailable) {
			response.Http503(c)
			return
		}
		response.Http500(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"token":     tok,
		"expiresIn": a.cfg.Tokens.SessionTTLSeconds,
	})
}

// logout revokes the current session token.
func (a *ApiServer) logout(c *gin.Context) {
	if err := a.tokens.Revoke(request.BearerToken(c)); err != nil {
		response.Http503(c)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *ApiServer) live(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"status": "ok"})
}

// ready checks the database and the object store.
func (a *ApiServer) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	if err := a.db.PingContext(ctx); err != nil {
		a.logger.Warn("database not ready", map[string]interface{}{"error": err.Error()})
		response.Http503(c)
		return
	}
	if err := a.objects.Ping(ctx); err != nil {
		a.logger.Warn("object store not ready", map[string]interface{}{"error": err.Error()})
		response.Http503(c)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "ready"})
}

func (a *ApiServer) Start() error {
	return a.srv.Start()
}

func (a *ApiServer) Stop(ctx context.Context) error {
	err := a.srv.Shutdown(ctx)
	if closeErr := a.db.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if a.redis != nil {
		if closeErr := a.redis.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}
