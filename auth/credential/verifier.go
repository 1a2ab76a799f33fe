package credential

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"os"
	"time"

	"github.com/inkwell-press/inkwell/crypt/hashing"
	"github.com/inkwell-press/inkwell/log"
	"github.com/inkwell-press/inkwell/utils"
)

const (
	ErrMissingUsername     = utils.Error("credential: admin username is required")
	ErrMissingPasswordHash = utils.Error("credential: admin password hash is required")

	DefaultMinDuration = 200 * time.Millisecond
	DefaultMaxLength   = 256
)

// Config holds the configured admin identity. PasswordHash is an
// argon2id encoded hash of password+pepper; the pepper itself is read
// from PepperEnvVar at construction so it never sits in config files.
type Config struct {
	Username       string `json:"username"`
	PasswordHash   string `json:"passwordHash"`
	Pepper         string `json:"pepper"`
	PepperEnvVar   string `json:"pepperEnvVar"`
	MinDurationMs  int    `json:"minDurationMs"`
	MaxInputLength int    `json:"maxInputLength"`
}

func NewConfig() *Config {
	return &Config{
		MinDurationMs:  int(DefaultMinDuration / time.Millisecond),
		MaxInputLength: DefaultMaxLength,
	}
}

func (c *Config) Validate() error {
	if c.Username == "" {
		return ErrMissingUsername
	}
	if c.PasswordHash == "" {
		return ErrMissingPasswordHash
	}
	return nil
}

func (c *Config) pepper() string {
	if c.PepperEnvVar != "" {
		if v, ok := os.LookupEnv(c.PepperEnvVar); ok {
			return v
		}
	}
	return c.Pepper
}

// Verifier checks a username/password pair against the configured admin
// identity. Both halves of the pair are always evaluated and the whole
// call takes at least the configured minimum duration, so rejected
// usernames and rejected passwords are indistinguishable by timing.
type Verifier struct {
	username     [32]byte
	passwordHash string
	pepper       string
	minDuration  time.Duration
	maxLength    int
	logger       *log.Logger
}

func NewVerifier(cfg *Config) (*Verifier, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	minDuration := time.Duration(cfg.MinDurationMs) * time.Millisecond
	if minDuration <= 0 {
		minDuration = DefaultMinDuration
	}
	maxLength := cfg.MaxInputLength
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	return &Verifier{
		// fixed-size digest comparison avoids leaking the configured
		// username length
		username:     sha256.Sum256([]byte(cfg.Username)),
		passwordHash: cfg.PasswordHash,
		pepper:       cfg.pepper(),
		minDuration:  minDuration,
		maxLength:    maxLength,
		logger:       log.NewWithComponent("auth", "credential"),
	}, nil
}

// Verify reports whether the pair matches the admin identity. Malformed
// input is rejected before any timing-sensitive work; valid-shaped input
// always pays the full evaluation plus the duration floor.
func (v *Verifier) Verify(ctx context.Context, username, password string) bool {
	if username == "" || password == "" {
		return false
	}
	if len(username) > v.maxLength || len(password) > v.maxLength {
		return false
	}

	started := time.Now()

	submitted := sha256.Sum256([]byte(username))
	userOK := subtle.ConstantTimeCompare(submitted[:], v.username[:]) == 1

	// evaluated even when the username already failed
	passOK, _, err := hashing.Argon2IdComparePassword(password+v.pepper, v.passwordHash)
	if err != nil {
		v.logger.Error(err, "stored password hash is malformed")
		passOK = false
	}

	v.sleepFloor(ctx, started)
	return userOK && passOK
}

// sleepFloor pads the call out to the minimum duration.
func (v *Verifier) sleepFloor(ctx context.Context, started time.Time) {
	remaining := v.minDuration - time.Since(started)
	if remaining <= 0 {
		return
	}
	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
