package ratelimit

import (
	"encoding/json"
	"time"

	"github.com/inkwell-press/inkwell/log"
	"github.com/inkwell-press/inkwell/provider/kv"
	"github.com/inkwell-press/inkwell/utils"
)

const (
	ErrUnknownClass    = utils.Error("ratelimit: unknown operation class")
	ErrInvalidClass    = utils.Error("ratelimit: class limit and window must be positive")
	ErrInvalidStrategy = utils.Error("ratelimit: unknown strategy")

	StrategyFixed   = "fixed"
	StrategySliding = "sliding"

	// Well-known operation classes.
	ClassLogin  = "login"
	ClassUpload = "upload"
	ClassMutate = "mutate"
	ClassRead   = "read"

	fixedKeyPrefix   = "rate_limit:"
	slidingKeyPrefix = "rate_limit_sw:"
)

// Class is one operation class budget.
type Class struct {
	Limit    int `json:"limit"`
	WindowMs int `json:"windowMs"`
}

func (c Class) window() time.Duration {
	return time.Duration(c.WindowMs) * time.Millisecond
}

// Config holds the per-class budgets and the counting strategy.
type Config struct {
	Classes    map[string]Class `json:"classes"`
	Strategy   string           `json:"strategy"`
	UAFallback bool             `json:"uaFallback"`
}

// NewConfig returns the reference budgets.
func NewConfig() *Config {
	return &Config{
		Classes: map[string]Class{
			ClassLogin:  {Limit: 5, WindowMs: 300_000},
			ClassUpload: {Limit: 10, WindowMs: 60_000},
			ClassMutate: {Limit: 20, WindowMs: 60_000},
			ClassRead:   {Limit: 100, WindowMs: 60_000},
		},
		Strategy:   StrategyFixed,
		UAFallback: true,
	}
}

func (c *Config) Validate() error {
	if c.Strategy != StrategyFixed && c.Strategy != StrategySliding {
		return ErrInvalidStrategy
	}
	for _, class := range c.Classes {
		if class.Limit <= 0 || class.WindowMs <= 0 {
			return ErrInvalidClass
		}
	}
	return nil
}

// Result is the outcome of one limiter check, carrying everything the
// HTTP layer needs for X-RateLimit-* and Retry-After headers.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter counts requests per (client, class) in the kv store. The
// store offers no atomic increment, so the read-then-write update can
// under-count concurrent requests in the same window; the limiter
// tolerates that rather than over-blocking. Store failures fail open.
type Limiter struct {
	store  kv.KV
	cfg    *Config
	logger *log.Logger
}

func NewLimiter(store kv.KV, cfg *Config) (*Limiter, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Limiter{
		store:  store,
		cfg:    cfg,
		logger: log.NewWithComponent("auth", "ratelimit"),
	}, nil
}

// Check consumes one unit of budget for clientID in the given class.
// A denied Result reports Allowed=false; error is reserved for unknown
// classes, never for store trouble.
func (l *Limiter) Check(clientID, class string) (Result, error) {
	budget, ok := l.cfg.Classes[class]
	if !ok {
		return Result{}, ErrUnknownClass
	}

	if l.cfg.Strategy == StrategySliding {
		return l.checkSliding(clientID, class, budget), nil
	}
	return l.checkFixed(clientID, class, budget), nil
}

type fixedCounter struct {
	Count int       `json:"count"`
	Reset time.Time `json:"reset"`
}

func (l *Limiter) checkFixed(clientID, class string, budget Class) Result {
	key := fixedKeyPrefix + class + ":" + clientID
	now := time.Now()

	data, err := l.store.Get(key)
	if err != nil {
		return l.failOpen(clientID, class, budget, err)
	}

	var counter fixedCounter
	if data != nil {
		if err := json.Unmarshal(data, &counter); err != nil {
			counter = fixedCounter{}
		}
	}
	if counter.Reset.IsZero() || !counter.Reset.After(now) {
		// fresh window
		counter = fixedCounter{Count: 0, Reset: now.Add(budget.window())}
	}

	if counter.Count >= budget.Limit {
		return Result{
			Allowed:    false,
			Limit:      budget.Limit,
			Remaining:  0,
			ResetAt:    counter.Reset,
			RetryAfter: counter.Reset.Sub(now),
		}
	}

	counter.Count++
	encoded, _ := json.Marshal(counter)
	if err := l.store.SetTTL(key, encoded, counter.Reset.Sub(now)); err != nil {
		return l.failOpen(clientID, class, budget, err)
	}

	return Result{
		Allowed:   true,
		Limit:     budget.Limit,
		Remaining: budget.Limit - counter.Count,
		ResetAt:   counter.Reset,
	}
}

func (l *Limiter) checkSliding(clientID, class string, budget Class) Result {
	key := slidingKeyPrefix + class + ":" + clientID
	now := time.Now()
	window := budget.window()
	cutoff := now.Add(-window)

	data, err := l.store.Get(key)
	if err != nil {
		return l.failOpen(clientID, class, budget, err)
	}

	var stamps []int64
	if data != nil {
		if err := json.Unmarshal(data, &stamps); err != nil {
			stamps = nil
		}
	}

	live := stamps[:0]
	for _, ts := range stamps {
		if time.Unix(0, ts).After(cutoff) {
			live = append(live, ts)
		}
	}

	if len(live) >= budget.Limit {
		oldest := time.Unix(0, live[0])
		return Result{
			Allowed:    false,
			Limit:      budget.Limit,
			Remaining:  0,
			ResetAt:    oldest.Add(window),
			RetryAfter: oldest.Add(window).Sub(now),
		}
	}

	live = append(live, now.UnixNano())
	encoded, _ := json.Marshal(live)
	if err := l.store.SetTTL(key, encoded, window); err != nil {
		return l.failOpen(clientID, class, budget, err)
	}

	return Result{
		Allowed:   true,
		Limit:     budget.Limit,
		Remaining: budget.Limit - len(live),
		ResetAt:   time.Unix(0, live[0]).Add(window),
	}
}

// failOpen allows the request when the store itself is broken.
// Throttling is defense in depth, not the only line of defense.
func (l *Limiter) failOpen(clientID, class string, budget Class, err error) Result {
	l.logger.Warn("rate limit store failure, allowing request", map[string]interface{}{
		"clientId": clientID,
		"class":    class,
		"error":    err.Error(),
	})
	return Result{
		Allowed:   true,
		Limit:     budget.Limit,
		Remaining: budget.Limit,
		ResetAt:   time.Now().Add(budget.window()),
	}
}

// UAFallback exposes the configured fallback policy for ClientID callers.
func (l *Limiter) UAFallback() bool {
	return l.cfg.UAFallback
}
