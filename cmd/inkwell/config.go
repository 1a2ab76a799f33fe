package main

import (
	"errors"

	"github.com/inkwell-press/inkwell/auth/credential"
	"github.com/inkwell-press/inkwell/auth/fingerprint"
	"github.com/inkwell-press/inkwell/auth/ratelimit"
	"github.com/inkwell-press/inkwell/auth/token"
	"github.com/inkwell-press/inkwell/httpserver"
	"github.com/inkwell-press/inkwell/log"
	"github.com/inkwell-press/inkwell/provider/pgsql"
	"github.com/inkwell-press/inkwell/provider/redis"
	"github.com/inkwell-press/inkwell/provider/s3"
)

const (
	// session and security-log backends
	KVBackendMemory = "memory"
	KVBackendRedis  = "redis"

	DefaultSecurityLogDays = 7
)

type Config struct {
	Api             *httpserver.ServerConfig `json:"api"`
	Log             *log.Config              `json:"log"`
	KVBackend       string                   `json:"kvBackend"`
	Redis           *redis.Config            `json:"redis"`
	Database        *pgsql.ClientConfig      `json:"database"`
	Storage         *s3.Config               `json:"storage"`
	Credentials     *credential.Config       `json:"credentials"`
	Tokens          *token.Config            `json:"tokens"`
	RateLimit       *ratelimit.Config        `json:"rateLimit"`
	Fingerprint     *fingerprint.Config      `json:"fingerprint"`
	SecurityLogDays int                      `json:"securityLogDays"`
}

// NewConfig build default config options
func NewConfig() *Config {
	return &Config{
		Api:             httpserver.NewServerConfig(),
		Log:             log.NewDefaultConfig(),
		KVBackend:       KVBackendMemory,
		Redis:           redis.NewConfig(),
		Database:        pgsql.NewConfig(),
		Storage:         s3.NewConfig(),
		Credentials:     credential.NewConfig(),
		Tokens:          token.NewConfig(),
		RateLimit:       ratelimit.NewConfig(),
		Fingerprint:     fingerprint.NewConfig(),
		SecurityLogDays: DefaultSecurityLogDays,
	}
}

// Validate app config
func (c *Config) Validate() error {
	if c.Api == nil {
		return errors.New("api configuration is required")
	}
	if err := c.Api.Validate(); err != nil {
		return err
	}

	if c.Log == nil {
		return errors.New("log configuration is required")
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}

	switch c.KVBackend {
	case KVBackendMemory:
	case KVBackendRedis:
		if c.Redis == nil {
			return errors.New("redis configuration is required")
		}
		if err := c.Redis.Validate(); err != nil {
			return err
		}
	default:
		return errors.New("kvBackend must be \"memory\" or \"redis\"")
	}

	if c.Database == nil {
		return errors.New("database configuration is required")
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}

	if c.Storage == nil {
		return errors.New("storage configuration is required")
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}

	if c.Credentials == nil {
		return errors.New("credentials configuration is required")
	}
	if err := c.Credentials.Validate(); err != nil {
		return err
	}

	if c.Tokens == nil {
		return errors.New("tokens configuration is required")
	}

	if c.RateLimit == nil {
		return errors.New("rateLimit configuration is required")
	}
	if err := c.RateLimit.Validate(); err != nil {
		return err
	}

	if c.Fingerprint == nil {
		return errors.New("fingerprint configuration is required")
	}
	return c.Fingerprint.Validate()
}
