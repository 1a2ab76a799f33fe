package fingerprint

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chromeUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

func makeRequest(ua, lang, tz, screen string) map[string]string {
	return map[string]string{
		"User-Agent":      ua,
		"Accept-Language": lang,
		HeaderTimezone:    tz,
		HeaderScreen:      screen,
	}
}

func derive(t *testing.T, headers map[string]string) Fingerprint {
	t.Helper()
	req := httptest.NewRequest("GET", "/articles", nil)
	for k, v := range headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}
	return NewDeriver().Derive(req)
}

func TestDerive(t *testing.T) {
	fp := derive(t, makeRequest(chromeUA, "en-US,en;q=0.9", "Europe/Lisbon", "1920x1080"))

	assert.Equal(t, "chrome/120", fp.Components[CompBrowser])
	assert.Equal(t, "en-us", fp.Components[CompLanguage])
	assert.Equal(t, "europe/lisbon", fp.Components[CompTimezone])
	assert.Equal(t, "1920x1080", fp.Components[CompScreen])
	assert.NotEmpty(t, fp.Hash)
}

func TestDeriveMissingSignals(t *testing.T) {
	fp := derive(t, makeRequest("", "", "", ""))

	assert.Equal(t, UnknownValue, fp.Components[CompBrowser])
	assert.Equal(t, UnknownValue, fp.Components[CompLanguage])
	assert.Equal(t, UnknownValue, fp.Components[CompTimezone])
	assert.Equal(t, UnknownValue, fp.Components[CompScreen])
}

func TestDeriveStability(t *testing.T) {
	a := derive(t, makeRequest(chromeUA, "en-US", "UTC", "1920x1080"))
	b := derive(t, makeRequest(chromeUA, "en-US", "UTC", "1920x1080"))
	assert.Equal(t, a.Hash, b.Hash)

	// versions within the same ten-bucket hash identically
	c := derive(t, makeRequest(
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36",
		"en-US", "UTC", "1920x1080"))
	assert.Equal(t, a.Hash, c.Hash)
}

func TestNormalizeBrowser(t *testing.T) {
	assert.Equal(t, "firefox/120", normalizeBrowser("Mozilla/5.0 (X11; Linux x86_64; rv:127.0) Gecko/20100101 Firefox/127.0"))
	assert.Equal(t, "edge/120", normalizeBrowser("Mozilla/5.0 AppleWebKit/537.36 Chrome/124.0.0.0 Safari/537.36 Edg/124.0.2478.51"))
	assert.Equal(t, "safari/10", normalizeBrowser("Mozilla/5.0 (Macintosh) AppleWebKit/605.1.15 Version/17.4 Safari/605.1.15"))
	assert.Equal(t, "other/0", normalizeBrowser("curl/8.5.0"))
	assert.Equal(t, UnknownValue, normalizeBrowser(""))
}

func TestNormalizeLanguage(t *testing.T) {
	assert.Equal(t, "en-us", normalizeLanguage("en-US,en;q=0.9"))
	assert.Equal(t, "pt-pt", normalizeLanguage("pt-PT"))
	assert.Equal(t, "de", normalizeLanguage("de"))
	assert.Equal(t, UnknownValue, normalizeLanguage(""))
	assert.Equal(t, UnknownValue, normalizeLanguage("!!!"))
}

func TestSimilarityIdentical(t *testing.T) {
	eval, err := NewEvaluator(nil, nil, nil)
	require.NoError(t, err)

	fp := derive(t, makeRequest(chromeUA, "en-US", "UTC", "1920x1080"))
	assert.Equal(t, 1.0, eval.Similarity(fp, fp))
}

func TestSimilarityMonotonic(t *testing.T) {
	eval, err := NewEvaluator(nil, nil, nil)
	require.NoError(t, err)

	stored := derive(t, makeRequest(chromeUA, "en-US", "UTC", "1920x1080"))

	// flip one component at a time; similarity must strictly decrease
	// from the identical baseline
	variants := []map[string]string{
		makeRequest("Mozilla/5.0 Firefox/127.0", "en-US", "UTC", "1920x1080"),
		makeRequest(chromeUA, "pt-PT", "UTC", "1920x1080"),
		makeRequest(chromeUA, "en-US", "Asia/Tokyo", "1920x1080"),
		makeRequest(chromeUA, "en-US", "UTC", "1280x720"),
	}
	for _, headers := range variants {
		live := derive(t, headers)
		assert.Less(t, eval.Similarity(stored, live), 1.0)
	}

	// partial credit: same browser family, different version bucket
	live := derive(t, makeRequest(
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/136.0.0.0 Safari/537.36",
		"en-US", "UTC", "1920x1080"))
	sim := eval.Similarity(stored, live)
	assert.Greater(t, sim, eval.Similarity(stored, derive(t, makeRequest("Mozilla/5.0 Firefox/127.0", "en-US", "UTC", "1920x1080"))))
	assert.Less(t, sim, 1.0)

	// same language root, different region
	live = derive(t, makeRequest(chromeUA, "en-GB", "UTC", "1920x1080"))
	sim = eval.Similarity(stored, live)
	assert.Greater(t, sim, eval.Similarity(stored, derive(t, makeRequest(chromeUA, "pt-PT", "UTC", "1920x1080"))))
	assert.Less(t, sim, 1.0)
}

func TestClassifyTier(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, TierLow, cfg.ClassifyTier("GET", "/articles"))
	assert.Equal(t, TierLow, cfg.ClassifyTier("GET", "/articles/hello"))
	assert.Equal(t, TierMedium, cfg.ClassifyTier("POST", "/articles"))
	assert.Equal(t, TierHigh, cfg.ClassifyTier("POST", "/images"))
	assert.Equal(t, TierCritical, cfg.ClassifyTier("DELETE", "/articles/42"))
	assert.Equal(t, TierMedium, cfg.ClassifyTier("PATCH", "/weird"))
}

func TestDecide(t *testing.T) {
	eval, err := NewEvaluator(nil, nil, nil)
	require.NoError(t, err)

	// low tier: safe 0.75, suspicious 0.55, dangerous 0.35
	assert.Equal(t, DecisionAllow, eval.decide(0.76, TierLow))
	assert.Equal(t, DecisionWarn, eval.decide(0.6, TierLow))
	assert.Equal(t, DecisionWarn, eval.decide(0.4, TierLow))
	assert.Equal(t, DecisionBlock, eval.decide(0.3, TierLow))

	// critical tier: safe 0.9, suspicious 0.7, dangerous 0.5; the
	// dangerous band blocks instead of warning
	assert.Equal(t, DecisionAllow, eval.decide(0.95, TierCritical))
	assert.Equal(t, DecisionWarn, eval.decide(0.75, TierCritical))
	assert.Equal(t, DecisionBlock, eval.decide(0.55, TierCritical))
	assert.Equal(t, DecisionBlock, eval.decide(0.2, TierCritical))
}

func TestTierOrdering(t *testing.T) {
	eval, err := NewEvaluator(nil, nil, nil)
	require.NoError(t, err)

	// a similarity high enough for a low-tier allow is not enough for
	// a critical-tier allow
	assert.Equal(t, DecisionAllow, eval.decide(0.8, TierLow))
	assert.NotEqual(t, DecisionAllow, eval.decide(0.8, TierCritical))
}

func TestEvaluateFastPath(t *testing.T) {
	eval, err := NewEvaluator(nil, nil, nil)
	require.NoError(t, err)

	fp := derive(t, makeRequest(chromeUA, "en-US", "UTC", "1920x1080"))
	result := eval.Evaluate(RequestMeta{Method: "GET", Path: "/articles"}, fp, fp)

	assert.Equal(t, 1.0, result.Similarity)
	assert.Equal(t, DecisionAllow, result.Decision)
	assert.Equal(t, TierLow, result.Tier)
	assert.Empty(t, result.Warning)
}

func TestEvaluateBlockOnDivergence(t *testing.T) {
	eval, err := NewEvaluator(nil, nil, nil)
	require.NoError(t, err)

	stored := derive(t, makeRequest(chromeUA, "en-US", "UTC", "1920x1080"))
	live := derive(t, makeRequest("Mozilla/5.0 Firefox/127.0", "pt-PT", "Asia/Tokyo", "800x600"))

	result := eval.Evaluate(RequestMeta{Method: "DELETE", Path: "/articles/42"}, stored, live)
	assert.Equal(t, DecisionBlock, result.Decision)
	assert.Equal(t, TierCritical, result.Tier)
}

func TestInvalidWeights(t *testing.T) {
	cfg := NewConfig()
	cfg.Weights = map[string]float64{}

	_, err := NewEvaluator(cfg, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidWeights)
}
