package hashing

// RehashFn returns a new hash for a password; Verify returns a non-nil
// RehashFn when the stored hash was created with outdated parameters.
type RehashFn = func() (string, error)

// PasswordHasher is the contract for password hashing implementations.
type PasswordHasher interface {
	// Generate creates a secure hash from the given password, embedding
	// a random salt and all parameters needed for verification.
	Generate(password string) (string, error)

	// Verify checks if the given password matches the hash. When the
	// password is valid but the hash parameters are stale, the returned
	// RehashFn generates a replacement hash.
	Verify(password, hash string) (bool, RehashFn, error)
}

type a2Hasher struct {
	cfg Argon2Config
}

// NewArgon2Hasher creates a PasswordHasher using Argon2id. A zero-value
// cfg argument selects NewArgon2IdConfig defaults.
func NewArgon2Hasher(cfg Argon2Config) PasswordHasher {
	if cfg == (Argon2Config{}) {
		cfg = NewArgon2IdConfig()
	}
	return &a2Hasher{cfg: cfg}
}

func (h *a2Hasher) Generate(password string) (string, error) {
	return Argon2IdCreateHash(password, h.cfg)
}

func (h *a2Hasher) Verify(password, hash string) (bool, RehashFn, error) {
	valid, cfg, err := Argon2IdComparePassword(password, hash)
	if !valid || err != nil {
		return false, nil, err
	}

	if *cfg == h.cfg {
		return true, nil, nil
	}

	return true, func() (string, error) {
		return Argon2IdCreateHash(password, h.cfg)
	}, nil
}
