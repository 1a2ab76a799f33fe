package fingerprint

import (
	"encoding/json"
	"time"

	"github.com/inkwell-press/inkwell/provider/kv"
)

const historyKeyPrefix = "fingerprint_history:"

// HistoryEntry is one observed fingerprint with its similarity at the
// time of evaluation. Diagnostic only; it does not feed back into
// thresholds.
type HistoryEntry struct {
	Fingerprint Fingerprint `json:"fingerprint"`
	Similarity  float64     `json:"similarity"`
	SeenAt      time.Time   `json:"seenAt"`
}

// History keeps a bounded per-user ring of observed fingerprints,
// evicting the oldest entry when full.
type History struct {
	store kv.KV
	size  int
	ttl   time.Duration
}

func NewHistory(store kv.KV, size int, ttl time.Duration) *History {
	if size <= 0 {
		size = 10
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &History{
		store: store,
		size:  size,
		ttl:   ttl,
	}
}

// Append adds an observation for user, evicting the oldest when the
// ring is full.
func (h *History) Append(user string, fp Fingerprint, similarity float64) error {
	entries, err := h.List(user)
	if err != nil {
		return err
	}

	entries = append(entries, HistoryEntry{
		Fingerprint: fp,
		Similarity:  similarity,
		SeenAt:      time.Now().UTC(),
	})
	if len(entries) > h.size {
		entries = entries[len(entries)-h.size:]
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return h.store.SetTTL(historyKeyPrefix+user, data, h.ttl)
}

// List returns the recorded observations for user, oldest first.
func (h *History) List(user string) ([]HistoryEntry, error) {
	data, err := h.store.Get(historyKeyPrefix + user)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var entries []HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
