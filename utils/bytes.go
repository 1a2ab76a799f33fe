package utils

import "crypto/rand"

// GenerateRandomBytes returns n cryptographically secure random bytes.
func GenerateRandomBytes(n uint32) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
