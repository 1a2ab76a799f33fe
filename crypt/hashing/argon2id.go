package hashing

/*
 Argon2id password hashing

  Adapted from https://github.com/alexedwards/argon2id
  All changes are made available under the original MIT License:

	MIT License

	Copyright (c) 2018 Alex Edwards

	Permission is hereby granted, free of charge, to any person obtaining a copy
	of this software and associated documentation files (the "Software"), to deal
	in the Software without restriction, including without limitation the rights
	to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
	copies of the Software, and to permit persons to whom the Software is
	furnished to do so, subject to the following conditions:

	The above copyright notice and this permission notice shall be included in all
	copies or substantial portions of the Software.

	THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
	IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
	FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
	AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
	LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
	OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
	SOFTWARE.
*/

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/inkwell-press/inkwell/utils"
)

const (
	// ErrInvalidHash is returned when the provided hash string is not in
	// the expected $argon2id$... format.
	ErrInvalidHash = utils.Error("argon2id: hash is not in the correct format")

	// ErrIncompatibleVersion is returned when the provided hash was created
	// with a different version of Argon2.
	ErrIncompatibleVersion = utils.Error("argon2id: incompatible version of argon2")
)

// Argon2Config holds the Argon2id parameters embedded in generated hashes.
type Argon2Config struct {
	Memory      uint32 `json:"memory"`
	Iterations  uint32 `json:"iterations"`
	Parallelism uint8  `json:"parallelism"`
	SaltLength  uint32 `json:"saltLength"`
	KeyLength   uint32 `json:"keyLength"`
}

func NewArgon2IdConfig() Argon2Config {
	return Argon2Config{
		Memory:      64 * 1024, // KiB
		Iterations:  4,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Argon2IdCreateHash hashes password with a fresh random salt and returns
// the standard encoded representation:
//
//	$argon2id$v=19$m=65536,t=4,p=2$<salt>$<hash>
func Argon2IdCreateHash(password string, c Argon2Config) (string, error) {
	salt, err := utils.GenerateRandomBytes(c.SaltLength)
	if err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password), salt, c.Iterations, c.Memory, c.Parallelism, c.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, c.Memory, c.Iterations, c.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// Argon2IdDecodeHash parses an encoded hash into its parameters, salt and key.
func Argon2IdDecodeHash(hash string) (*Argon2Config, []byte, []byte, error) {
	tokens := strings.Split(hash, "$")
	if len(tokens) != 6 {
		return nil, nil, nil, ErrInvalidHash
	}
	// no variants allowed
	if tokens[1] != "argon2id" {
		return nil, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(tokens[2], "v=%d", &version); err != nil {
		return nil, nil, nil, err
	}
	if version != argon2.Version {
		return nil, nil, nil, ErrIncompatibleVersion
	}

	cfg := &Argon2Config{}
	if _, err := fmt.Sscanf(tokens[3], "m=%d,t=%d,p=%d", &cfg.Memory, &cfg.Iterations, &cfg.Parallelism); err != nil {
		return nil, nil, nil, err
	}

	salt, err := base64.RawStdEncoding.Strict().DecodeString(tokens[4])
	if err != nil {
		return nil, nil, nil, err
	}
	cfg.SaltLength = uint32(len(salt))

	key, err := base64.RawStdEncoding.Strict().DecodeString(tokens[5])
	if err != nil {
		return nil, nil, nil, err
	}
	cfg.KeyLength = uint32(len(key))

	return cfg, salt, key, nil
}

// Argon2IdComparePassword compares password against an encoded hash in
// constant time, returning the decoded parameters for rehash decisions.
func Argon2IdComparePassword(password, hash string) (bool, *Argon2Config, error) {
	cfg, salt, key, err := Argon2IdDecodeHash(hash)
	if err != nil {
		return false, nil, err
	}

	otherKey := argon2.IDKey([]byte(password), salt, cfg.Iterations, cfg.Memory, cfg.Parallelism, cfg.KeyLength)

	if subtle.ConstantTimeEq(int32(len(key)), int32(len(otherKey))) == 0 {
		return false, cfg, nil
	}
	if subtle.ConstantTimeCompare(key, otherKey) == 1 {
		return true, cfg, nil
	}
	return false, cfg, nil
}
