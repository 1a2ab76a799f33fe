package fingerprint

import (
	"path"
	"strings"

	"github.com/inkwell-press/inkwell/auth/seclog"
	"github.com/inkwell-press/inkwell/log"
	"github.com/inkwell-press/inkwell/utils"
)

const ErrInvalidWeights = utils.Error("fingerprint: component weights must sum to a positive value")

// Decision is the outcome of a fingerprint evaluation.
type Decision string

const (
	DecisionAllow Decision = "allow"
	DecisionWarn  Decision = "allow_with_warning"
	DecisionBlock Decision = "block"
)

// Tier classifies an operation's potential impact; riskier tiers demand
// stricter fingerprint agreement.
type Tier string

const (
	TierLow      Tier = "low"
	TierMedium   Tier = "medium"
	TierHigh     Tier = "high"
	TierCritical Tier = "critical"
)

// TierRule maps a method and path pattern to a tier. Pattern matching
// uses path.Match semantics; "*" in a pattern does not cross "/".
type TierRule struct {
	Method  string `json:"method"`
	Pattern string `json:"pattern"`
	Tier    Tier   `json:"tier"`
}

// Config drives the evaluator. Thresholds and weights are fixed at
// construction; evaluation is deterministic for a given config.
type Config struct {
	Weights             map[string]float64 `json:"weights"`
	SafeThreshold       float64            `json:"safeThreshold"`
	SuspiciousThreshold float64            `json:"suspiciousThreshold"`
	DangerousThreshold  float64            `json:"dangerousThreshold"`
	TierOffsets         map[Tier]float64   `json:"tierOffsets"`
	TierRules           []TierRule         `json:"tierRules"`
	DefaultTier         Tier               `json:"defaultTier"`
	LearningMode        bool               `json:"learningMode"`
	HistorySize         int                `json:"historySize"`
	HistoryTTLDays      int                `json:"historyTtlDays"`
}

// NewConfig returns the reference evaluation policy.
func NewConfig() *Config {
	return &Config{
		Weights: map[string]float64{
			CompBrowser:  0.4,
			CompLanguage: 0.25,
			CompTimezone: 0.2,
			CompScreen:   0.15,
		},
		SafeThreshold:       0.8,
		SuspiciousThreshold: 0.6,
		DangerousThreshold:  0.4,
		TierOffsets: map[Tier]float64{
			TierLow:      -0.05,
			TierMedium:   0,
			TierHigh:     0.05,
			TierCritical: 0.1,
		},
		TierRules: []TierRule{
			{Method: "DELETE", Pattern: "/*/*", Tier: TierCritical},
			{Method: "DELETE", Pattern: "/*", Tier: TierCritical},
			{Method: "POST", Pattern: "/images", Tier: TierHigh},
			{Method: "PUT", Pattern: "/*/*", Tier: TierMedium},
			{Method: "POST", Pattern: "/*", Tier: TierMedium},
			{Method: "GET", Pattern: "/*/*", Tier: TierLow},
			{Method: "GET", Pattern: "/*", Tier: TierLow},
		},
		DefaultTier:    TierMedium,
		LearningMode:   false,
		HistorySize:    10,
		HistoryTTLDays: 30,
	}
}

func (c *Config) Validate() error {
	total := 0.0
	for _, w := range c.Weights {
		total += w
	}
	if total <= 0 {
		return ErrInvalidWeights
	}
	return nil
}

// ClassifyTier resolves the risk tier for a method and path. First
// matching rule wins; unmatched operations fall back to DefaultTier.
func (c *Config) ClassifyTier(method, reqPath string) Tier {
	for _, rule := range c.TierRules {
		if !strings.EqualFold(rule.Method, method) {
			continue
		}
		if ok, err := path.Match(rule.Pattern, reqPath); err == nil && ok {
			return rule.Tier
		}
	}
	return c.DefaultTier
}

// Evaluation is the full outcome of a single risk evaluation.
type Evaluation struct {
	Similarity float64
	Tier       Tier
	Decision   Decision
	Warning    string
}

// RequestMeta carries the request identity fed into the security log.
type RequestMeta struct {
	User     string
	ClientIP string
	Method   string
	Path     string
}

// Evaluator scores live fingerprints against the one stored at issuance.
type Evaluator struct {
	cfg     *Config
	history *History
	audit   *seclog.Logger
	logger  *log.Logger
}

// NewEvaluator creates an evaluator. audit may be nil (no persisted
// security log); history may be nil (learning mode disabled regardless
// of config).
func NewEvaluator(cfg *Config, audit *seclog.Logger, history *History) (*Evaluator, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{
		cfg:     cfg,
		history: history,
		audit:   audit,
		logger:  log.NewWithComponent("auth", "fingerprint"),
	}, nil
}

// Similarity computes the weighted component agreement in [0, 1].
// Exact match earns the full component weight, a partial match half,
// anything else nothing.
func (e *Evaluator) Similarity(stored, live Fingerprint) float64 {
	total, matched := 0.0, 0.0
	for comp, weight := range e.cfg.Weights {
		if weight <= 0 {
			continue
		}
		total += weight

		sv, lv := stored.Components[comp], live.Components[comp]
		switch {
		case sv == lv:
			matched += weight
		case partialMatch(comp, sv, lv):
			matched += weight / 2
		}
	}
	if total == 0 {
		return 0
	}
	return matched / total
}

// partialMatch applies the component-specific half-credit rules: same
// browser family with a different version bucket, or same language root
// with a different region.
func partialMatch(comp, a, b string) bool {
	if a == UnknownValue || b == UnknownValue {
		return false
	}
	switch comp {
	case CompBrowser:
		return browserFamily(a) == browserFamily(b)
	case CompLanguage:
		return languageRoot(a) == languageRoot(b)
	}
	return false
}

// Evaluate scores the live fingerprint against the stored one, renders
// the decision for the operation's tier and emits a security log entry.
func (e *Evaluator) Evaluate(meta RequestMeta, stored, live Fingerprint) Evaluation {
	tier := e.cfg.ClassifyTier(meta.Method, meta.Path)

	var similarity float64
	if stored.Hash != "" && stored.Hash == live.Hash {
		// identical fast path
		similarity = 1.0
	} else {
		similarity = e.Similarity(stored, live)
	}

	decision := e.decide(similarity, tier)

	result := Evaluation{
		Similarity: similarity,
		Tier:       tier,
		Decision:   decision,
	}
	if decision == DecisionWarn {
		result.Warning = "session fingerprint drift detected"
	}

	e.record(meta, result)

	if e.cfg.LearningMode && e.history != nil && decision != DecisionBlock {
		if err := e.history.Append(meta.User, live, similarity); err != nil {
			e.logger.Warn("fingerprint history append failed", map[string]interface{}{
				"user":  meta.User,
				"error": err.Error(),
			})
		}
	}
	return result
}

// decide applies the tier-shifted thresholds. The dangerous band only
// degrades to block for critical operations.
func (e *Evaluator) decide(similarity float64, tier Tier) Decision {
	offset := e.cfg.TierOffsets[tier]
	safe := clamp01(e.cfg.SafeThreshold + offset)
	suspicious := clamp01(e.cfg.SuspiciousThreshold + offset)
	dangerous := clamp01(e.cfg.DangerousThreshold + offset)

	switch {
	case similarity >= safe:
		return DecisionAllow
	case similarity >= suspicious:
		return DecisionWarn
	case similarity >= dangerous:
		if tier == TierCritical {
			return DecisionBlock
		}
		return DecisionWarn
	default:
		return DecisionBlock
	}
}

func (e *Evaluator) record(meta RequestMeta, result Evaluation) {
	if e.audit == nil {
		return
	}
	entry := &seclog.Entry{
		User:       meta.User,
		ClientIP:   meta.ClientIP,
		Method:     meta.Method,
		Path:       meta.Path,
		Similarity: result.Similarity,
		Tier:       string(result.Tier),
		Decision:   string(result.Decision),
	}

	var err error
	if result.Decision == DecisionBlock {
		err = e.audit.Alert(entry)
	} else {
		err = e.audit.Record(entry)
	}
	if err != nil {
		e.logger.Warn("security log write failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func clamp01(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
