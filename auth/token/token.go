package token

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/inkwell-press/inkwell/auth/fingerprint"
	"github.com/inkwell-press/inkwell/auth/ratelimit"
	"github.com/inkwell-press/inkwell/log"
	"github.com/inkwell-press/inkwell/provider/kv"
	"github.com/inkwell-press/inkwell/utils"
)

const (
	// ErrUnauthorized covers missing, unknown and expired tokens.
	ErrUnauthorized = utils.Error("token: missing or invalid session token")
	// ErrForbidden is a fingerprint block; the session is revoked.
	ErrForbidden = utils.Error("token: session rejected by fingerprint evaluation")
	// ErrStoreUnavailable signals session store trouble; unlike the rate
	// limiter, token validation never fails open.
	ErrStoreUnavailable = utils.Error("token: session store unavailable")

	DefaultSessionTTL  = time.Hour
	DefaultTokenLength = 32 // bytes of entropy before encoding

	sessionKeyPrefix = "token:"
	clientKeyPrefix  = "client_tokens:"
)

// Session is the record written at login and consulted on every
// authenticated request. Valid iff now < Expires; validators treat an
// expired record as absent and delete it eagerly.
type Session struct {
	Token       string                  `json:"token"`
	User        string                  `json:"user"`
	Created     time.Time               `json:"created"`
	Expires     time.Time               `json:"expires"`
	ClientIP    string                  `json:"clientIp"`
	UserAgent   string                  `json:"userAgentRaw"`
	Fingerprint fingerprint.Fingerprint `json:"fingerprint"`
}

func (s *Session) expired(now time.Time) bool {
	return !now.Before(s.Expires)
}

// Config for the token service.
type Config struct {
	SessionTTLSeconds int  `json:"sessionTtlSeconds"`
	TokenLength       int  `json:"tokenLength"`
	UAFallback        bool `json:"uaFallback"`
}

func NewConfig() *Config {
	return &Config{
		SessionTTLSeconds: int(DefaultSessionTTL / time.Second),
		TokenLength:       DefaultTokenLength,
		UAFallback:        true,
	}
}

func (c *Config) sessionTTL() time.Duration {
	if c.SessionTTLSeconds <= 0 {
		return DefaultSessionTTL
	}
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

func (c *Config) tokenLength() uint32 {
	if c.TokenLength <= 0 {
		return DefaultTokenLength
	}
	return uint32(c.TokenLength)
}

// Result is a successful validation: the session's user plus an optional
// drift warning for the response headers.
type Result struct {
	User    string
	Warning string
}

// Service mints, validates and revokes opaque session tokens. Token
// state machine: issued, then valid until expiry, revocation or a
// fingerprint block; no way back to valid.
type Service struct {
	store   kv.KV
	deriver *fingerprint.Deriver
	engine  *fingerprint.Evaluator
	cfg     *Config
	logger  *log.Logger
}

func NewService(store kv.KV, deriver *fingerprint.Deriver, engine *fingerprint.Evaluator, cfg *Config) *Service {
	if cfg == nil {
		cfg = NewConfig()
	}
	return &Service{
		store:   store,
		deriver: deriver,
		engine:  engine,
		cfg:     cfg,
		logger:  log.NewWithComponent("auth", "token"),
	}
}

// Issue mints a fresh random token for user, capturing the request
// fingerprint in the session record. Prior tokens known for the same
// client are purged best-effort (session fixation mitigation; the store
// offers no atomic scan-and-delete, so this is advisory only).
func (s *Service) Issue(user string, r *http.Request) (string, error) {
	raw, err := utils.GenerateRandomBytes(s.cfg.tokenLength())
	if err != nil {
		return "", err
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	clientID := ratelimit.ClientID(r, s.cfg.UAFallback)
	s.purgeClientTokens(clientID)

	now := time.Now().UTC()
	session := Session{
		Token:       token,
		User:        user,
		Created:     now,
		Expires:     now.Add(s.cfg.sessionTTL()),
		ClientIP:    ratelimit.ClientIP(r),
		UserAgent:   r.UserAgent(),
		Fingerprint: s.deriver.Derive(r),
	}

	data, err := json.Marshal(&session)
	if err != nil {
		return "", err
	}
	if err := s.store.SetTTL(sessionKeyPrefix+token, data, s.cfg.sessionTTL()); err != nil {
		return "", ErrStoreUnavailable
	}

	s.rememberClientToken(clientID, token)

	s.logger.Info("session issued", map[string]interface{}{
		"user":     user,
		"clientIp": session.ClientIP,
	})
	return token, nil
}

// Validate looks up the session and delegates trust to the fingerprint
// engine. Absent or expired sessions yield ErrUnauthorized; a block
// decision deletes the record and yields ErrForbidden.
func (s *Service) Validate(token string, r *http.Request) (*Result, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	data, err := s.store.Get(sessionKeyPrefix + token)
	if err != nil {
		return nil, ErrStoreUnavailable
	}
	if data == nil {
		return nil, ErrUnauthorized
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		// unreadable record, drop it
		_ = s.store.Delete(sessionKeyPrefix + token)
		return nil, ErrUnauthorized
	}

	if session.expired(time.Now()) {
		_ = s.store.Delete(sessionKeyPrefix + token)
		return nil, ErrUnauthorized
	}

	live := s.deriver.Derive(r)
	evaluation := s.engine.Evaluate(fingerprint.RequestMeta{
		User:     session.User,
		ClientIP: ratelimit.ClientIP(r),
		Method:   r.Method,
		Path:     r.URL.Path,
	}, session.Fingerprint, live)

	if evaluation.Decision == fingerprint.DecisionBlock {
		_ = s.store.Delete(sessionKeyPrefix + token)
		s.logger.Warn("session blocked and revoked", map[string]interface{}{
			"user":       session.User,
			"similarity": evaluation.Similarity,
			"tier":       string(evaluation.Tier),
		})
		return nil, ErrForbidden
	}

	return &Result{
		User:    session.User,
		Warning: evaluation.Warning,
	}, nil
}

// Revoke deletes the session record; idempotent.
func (s *Service) Revoke(token string) error {
	if token == "" {
		return nil
	}
	return s.store.Delete(sessionKeyPrefix + token)
}

// purgeClientTokens drops sessions previously issued to this client.
func (s *Service) purgeClientTokens(clientID string) {
	data, err := s.store.Get(clientKeyPrefix + clientID)
	if err != nil || data == nil {
		return
	}
	var tokens []string
	if err := json.Unmarshal(data, &tokens); err != nil {
		return
	}
	for _, t := range tokens {
		_ = s.store.Delete(sessionKeyPrefix + t)
	}
	_ = s.store.Delete(clientKeyPrefix + clientID)
}

// rememberClientToken maintains the advisory issue-time purge index.
func (s *Service) rememberClientToken(clientID, token string) {
	data, err := json.Marshal([]string{token})
	if err != nil {
		return
	}
	if err := s.store.SetTTL(clientKeyPrefix+clientID, data, s.cfg.sessionTTL()); err != nil {
		s.logger.Warn("client token index write failed", map[string]interface{}{
			"clientId": clientID,
			"error":    err.Error(),
		})
	}
}
