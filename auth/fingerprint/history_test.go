package fingerprint

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-press/inkwell/provider/kv"
)

func TestHistoryAppend(t *testing.T) {
	store := kv.NewMemoryKV()
	history := NewHistory(store, 3, time.Hour)

	for i := 0; i < 5; i++ {
		fp := Fingerprint{
			Components: map[string]string{CompScreen: strconv.Itoa(i)},
			Hash:       strconv.Itoa(i),
		}
		require.NoError(t, history.Append("admin", fp, 1.0))
	}

	entries, err := history.List("admin")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// oldest entries are evicted
	assert.Equal(t, "2", entries[0].Fingerprint.Hash)
	assert.Equal(t, "4", entries[2].Fingerprint.Hash)
}

func TestHistoryListEmpty(t *testing.T) {
	history := NewHistory(kv.NewMemoryKV(), 10, time.Hour)

	entries, err := history.List("nobody")
	assert.NoError(t, err)
	assert.Nil(t, entries)
}

func TestEvaluateLearningMode(t *testing.T) {
	store := kv.NewMemoryKV()
	cfg := NewConfig()
	cfg.LearningMode = true

	eval, err := NewEvaluator(cfg, nil, NewHistory(store, 10, time.Hour))
	require.NoError(t, err)

	fp := Fingerprint{
		Components: map[string]string{
			CompBrowser:  "chrome/120",
			CompLanguage: "en-us",
			CompTimezone: "utc",
			CompScreen:   "1920x1080",
		},
		Hash: "h",
	}
	eval.Evaluate(RequestMeta{User: "admin", Method: "GET", Path: "/articles"}, fp, fp)

	entries, err := eval.history.List("admin")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1.0, entries[0].Similarity)
}
