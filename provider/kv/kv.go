package kv

import "time"

// KV is a minimal key-value store contract with per-key TTL. Get returns
// (nil, nil) for missing or expired keys; expired keys are removed on
// read. No atomic read-modify-write primitive is offered, callers that
// maintain counters must tolerate lost updates between Get and SetTTL.
type KV interface {
	SetTTL(k string, v []byte, ttl time.Duration) error
	Set(k string, v []byte) error
	Get(k string) ([]byte, error)
	Delete(k string) error
	Keys(prefix string) ([]string, error)
	Prune() error
}
