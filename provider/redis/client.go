package redis

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/inkwell-press/inkwell/utils"
)

const ErrMissingAddress = utils.Error("missing address")

// Config holds redis connection settings. Password may be given inline or
// via PasswordEnvVar, the env var wins when both are set.
type Config struct {
	Address        string `json:"address"`
	DB             int    `json:"db"`
	KeyPrefix      string `json:"keyPrefix"`
	Password       string `json:"password"`
	PasswordEnvVar string `json:"passwordEnvVar"`
	TTL            uint   `json:"ttl"`            // default TTL in seconds for Set
	TimeoutSeconds uint   `json:"timeoutSeconds"` // per-operation timeout
}

// NewConfig returns a default redis configuration.
func NewConfig() *Config {
	return &Config{
		Address:        "localhost:6379",
		DB:             0,
		KeyPrefix:      "",
		TTL:            3600 * 24 * 30,
		TimeoutSeconds: 10,
	}
}

func (c *Config) Validate() error {
	if len(c.Address) == 0 {
		return ErrMissingAddress
	}
	return nil
}

func (c *Config) password() string {
	if c.PasswordEnvVar != "" {
		if v, ok := os.LookupEnv(c.PasswordEnvVar); ok {
			return v
		}
	}
	return c.Password
}

// Client wraps go-redis and implements kv.KV, so redis can back any
// component written against the KV contract.
type Client struct {
	Client  *redis.Client
	config  *Config
	timeout time.Duration
	ttl     time.Duration
}

func NewClient(config *Config) (*Client, error) {
	if config == nil {
		config = NewConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Client{
		config:  config,
		timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		ttl:     time.Duration(config.TTL) * time.Second,
		Client: redis.NewClient(&redis.Options{
			Addr:     config.Address,
			Password: config.password(),
			DB:       config.DB,
		}),
	}, nil
}

// Connect verifies server reachability.
func (c *Client) Connect() error {
	ctx, cancel := c.opContext()
	defer cancel()

	return c.Client.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.Client.Close()
}

func (c *Client) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.timeout)
}

// Key assembles a prefixed key.
func (c *Client) Key(key string) string {
	return c.config.KeyPrefix + key
}

// TTL returns the default ttl used by Set.
func (c *Client) TTL() time.Duration {
	return c.ttl
}

// Get fetches a key; missing keys return (nil, nil).
func (c *Client) Get(key string) ([]byte, error) {
	ctx, cancel := c.opContext()
	defer cancel()

	data, err := c.Client.Get(ctx, c.Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return data, err
}

// Set stores a value with the default TTL.
func (c *Client) Set(key string, value []byte) error {
	return c.SetTTL(key, value, c.ttl)
}

// SetTTL stores a value with a custom TTL; ttl == 0 means no expiration.
func (c *Client) SetTTL(key string, value []byte, ttl time.Duration) error {
	ctx, cancel := c.opContext()
	defer cancel()

	return c.Client.Set(ctx, c.Key(key), value, ttl).Err()
}

// Delete removes a key.
func (c *Client) Delete(key string) error {
	ctx, cancel := c.opContext()
	defer cancel()

	return c.Client.Del(ctx, c.Key(key)).Err()
}

// Keys scans for keys matching the prefix. Results carry the configured
// KeyPrefix stripped, mirroring the keys callers wrote.
func (c *Client) Keys(prefix string) ([]string, error) {
	ctx, cancel := c.opContext()
	defer cancel()

	keys := make([]string, 0)
	iter := c.Client.Scan(ctx, 0, c.Key(prefix)+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val()[len(c.config.KeyPrefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// Prune is a no-op; redis expires keys server-side.
func (c *Client) Prune() error {
	return nil
}
