package seclog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-press/inkwell/log"
	"github.com/inkwell-press/inkwell/provider/kv"
)

const (
	keyPrefix = "security_log:"

	DefaultRetention = 7 * 24 * time.Hour
)

// Entry is one validation outcome. Entries are append-only; they are
// written once with a retention TTL and never mutated.
type Entry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	User       string    `json:"user"`
	ClientIP   string    `json:"clientIp"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Similarity float64   `json:"similarity"`
	Tier       string    `json:"tier"`
	Decision   string    `json:"decision"`
	Alert      bool      `json:"alert"`
}

// Logger persists security events to the kv store and mirrors them to
// the application log.
type Logger struct {
	store     kv.KV
	retention time.Duration
	logger    *log.Logger
}

func NewLogger(store kv.KV, retention time.Duration) *Logger {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Logger{
		store:     store,
		retention: retention,
		logger:    log.New("seclog"),
	}
}

// Record persists the entry, filling ID and Timestamp if unset.
func (l *Logger) Record(entry *Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("%s%d:%s", keyPrefix, entry.Timestamp.UnixNano(), entry.ID)
	if err := l.store.SetTTL(key, data, l.retention); err != nil {
		return err
	}

	l.logger.Info("security event", entry.fields())
	return nil
}

// Alert records a blocked attempt; the entry is flagged and mirrored at
// warning level so alerting pipelines can key off it.
func (l *Logger) Alert(entry *Entry) error {
	entry.Alert = true
	if err := l.Record(entry); err != nil {
		return err
	}
	l.logger.Warn("security alert", entry.fields())
	return nil
}

// ListRecent returns up to limit entries, oldest first. Key order is
// chronological because keys embed a fixed-width unix-nano timestamp.
func (l *Logger) ListRecent(limit int) ([]Entry, error) {
	keys, err := l.store.Keys(keyPrefix)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(keys) > limit {
		keys = keys[len(keys)-limit:]
	}

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		data, err := l.store.Get(k)
		if err != nil {
			return nil, err
		}
		if data == nil {
			continue // expired between Keys and Get
		}
		var e Entry
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (e *Entry) fields() map[string]interface{} {
	return map[string]interface{}{
		"id":         e.ID,
		"user":       e.User,
		"clientIp":   e.ClientIP,
		"method":     e.Method,
		"path":       e.Path,
		"similarity": e.Similarity,
		"tier":       e.Tier,
		"decision":   e.Decision,
		"alert":      e.Alert,
	}
}
