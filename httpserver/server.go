package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inkwell-press/inkwell/httpserver/log"
)

type ServerConfig struct {
	Host         string            `json:"host"`
	Port         int               `json:"port"`
	ReadTimeout  int               `json:"readTimeout"`
	WriteTimeout int               `json:"writeTimeout"`
	Debug        bool              `json:"debug"`
	Options      map[string]string `json:"options"`
}

func NewServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:         "",
		Port:         ServerDefaultPort,
		ReadTimeout:  ServerDefaultReadTimeout,
		WriteTimeout: ServerDefaultWriteTimeout,
		Debug:        false,
		Options:      make(map[string]string),
	}
}

// GetOption retrieves a named option, or defaultValue when unset.
func (c *ServerConfig) GetOption(key string, defaultValue string) string {
	if v, ok := c.Options[key]; ok {
		return v
	}
	return defaultValue
}

func (c *ServerConfig) Validate() error {
	return nil
}

type Server struct {
	Config *ServerConfig
	Router *gin.Engine
	Server *http.Server
}

// NewRouter creates a gin router with structured request logging and
// panic recovery.
func NewRouter(serverName string, debug bool) *gin.Engine {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(log.HTTPLogMiddleware(serverName))
	router.Use(gin.Recovery())
	return router
}

func (c *ServerConfig) NewServer() (*Server, error) {
	return NewServer(c)
}

func NewServer(cfg *ServerConfig) (*Server, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	router := NewRouter(cfg.GetOption("serverName", ServerDefaultName), cfg.Debug)
	return &Server{
		Config: cfg,
		Router: router,
		Server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      router,
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		},
	}, nil
}

// AddMiddleware registers middleware on the server's router.
func (s *Server) AddMiddleware(middlewareFunc gin.HandlerFunc) {
	s.Router.Use(middlewareFunc)
}

// Group creates a RouterGroup rooted at relativePath.
func (s *Server) Group(relativePath string) *gin.RouterGroup {
	return s.Router.Group(relativePath)
}

// Route returns the underlying gin engine.
func (s *Server) Route() *gin.Engine {
	return s.Router
}

// Start runs the server until Shutdown is called; a clean shutdown is
// not reported as an error.
func (s *Server) Start() error {
	err := s.Server.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.Server.Shutdown(ctx)
}
