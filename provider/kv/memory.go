package kv

import (
	"sort"
	"strings"
	"sync"
	"time"
)

type record struct {
	data    []byte
	created time.Time
	ttl     time.Duration
}

func (r *record) expired(now time.Time) bool {
	return r.ttl > 0 && now.Sub(r.created) > r.ttl
}

type memkv struct {
	data map[string]*record
	m    sync.Mutex
}

// NewMemoryKV returns an in-process KV, suitable for tests and
// single-instance deployments.
func NewMemoryKV() KV {
	return &memkv{
		data: make(map[string]*record),
	}
}

// Set stores a value without expiration.
func (mkv *memkv) Set(k string, v []byte) error {
	return mkv.SetTTL(k, v, 0)
}

// SetTTL stores a value; ttl == 0 means no expiration.
func (mkv *memkv) SetTTL(k string, v []byte, ttl time.Duration) error {
	mkv.m.Lock()
	defer mkv.m.Unlock()
	mkv.data[k] = &record{
		data:    v,
		created: time.Now(),
		ttl:     ttl,
	}
	return nil
}

// Get fetches a value; expired entries are deleted on read.
func (mkv *memkv) Get(k string) ([]byte, error) {
	mkv.m.Lock()
	defer mkv.m.Unlock()
	v, ok := mkv.data[k]
	if !ok {
		return nil, nil
	}
	if v.expired(time.Now()) {
		delete(mkv.data, k)
		return nil, nil
	}
	return v.data, nil
}

// Delete removes a key.
func (mkv *memkv) Delete(k string) error {
	mkv.m.Lock()
	defer mkv.m.Unlock()
	delete(mkv.data, k)
	return nil
}

// Keys returns live keys matching the prefix, in lexicographic order.
func (mkv *memkv) Keys(prefix string) ([]string, error) {
	mkv.m.Lock()
	defer mkv.m.Unlock()
	now := time.Now()
	keys := make([]string, 0)
	for k, v := range mkv.data {
		if v.expired(now) {
			continue
		}
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Prune removes expired records.
func (mkv *memkv) Prune() error {
	mkv.m.Lock()
	defer mkv.m.Unlock()
	now := time.Now()
	for k, v := range mkv.data {
		if v.expired(now) {
			delete(mkv.data, k)
		}
	}
	return nil
}
