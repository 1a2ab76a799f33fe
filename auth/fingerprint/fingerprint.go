package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// Component keys. Every component is deliberately coarse so that routine
// client drift (browser auto-update, locale tweaks) keeps the value stable.
const (
	CompBrowser  = "browser"
	CompLanguage = "language"
	CompTimezone = "timezone"
	CompScreen   = "screen"

	// UnknownValue marks a signal the client did not provide.
	UnknownValue = "unknown"

	HeaderTimezone = "X-Timezone"
	HeaderScreen   = "X-Screen"
)

// Fingerprint is a coarse summary of request metadata, attached to a
// session at issuance and compared component-wise on every validation.
// Hash equality is only an identical fast path, never the comparison itself.
type Fingerprint struct {
	Components map[string]string `json:"components"`
	Hash       string            `json:"hash"`
}

// Deriver builds fingerprints from requests. Issuance and validation must
// share one Deriver so both sides normalize identically.
type Deriver struct{}

func NewDeriver() *Deriver {
	return &Deriver{}
}

// Derive extracts the canonical component set from the request and seals
// it with a content hash.
func (d *Deriver) Derive(r *http.Request) Fingerprint {
	components := map[string]string{
		CompBrowser:  normalizeBrowser(r.UserAgent()),
		CompLanguage: normalizeLanguage(r.Header.Get("Accept-Language")),
		CompTimezone: normalizeHint(r.Header.Get(HeaderTimezone)),
		CompScreen:   normalizeHint(r.Header.Get(HeaderScreen)),
	}
	return Fingerprint{
		Components: components,
		Hash:       hashComponents(components),
	}
}

// normalizeBrowser reduces a User-Agent to "family/bucket", with the major
// version rounded down to the nearest ten.
func normalizeBrowser(ua string) string {
	if ua == "" {
		return UnknownValue
	}
	lower := strings.ToLower(ua)

	family, version := "other", 0
	switch {
	case strings.Contains(lower, "edg/"):
		family, version = "edge", majorVersion(lower, "edg/")
	case strings.Contains(lower, "opr/"):
		family, version = "opera", majorVersion(lower, "opr/")
	case strings.Contains(lower, "firefox/"):
		family, version = "firefox", majorVersion(lower, "firefox/")
	case strings.Contains(lower, "chrome/"):
		family, version = "chrome", majorVersion(lower, "chrome/")
	case strings.Contains(lower, "safari/"):
		family, version = "safari", majorVersion(lower, "version/")
	}

	bucket := (version / 10) * 10
	return family + "/" + strconv.Itoa(bucket)
}

func majorVersion(ua, marker string) int {
	idx := strings.Index(ua, marker)
	if idx < 0 {
		return 0
	}
	rest := ua[idx+len(marker):]
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	v, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0
	}
	return v
}

// normalizeLanguage keeps the first Accept-Language tag, lowercased.
// The language root before the region is what partial matching keys on.
func normalizeLanguage(header string) string {
	if header == "" {
		return UnknownValue
	}
	first := header
	if idx := strings.IndexByte(first, ','); idx >= 0 {
		first = first[:idx]
	}
	if idx := strings.IndexByte(first, ';'); idx >= 0 {
		first = first[:idx]
	}
	tag, err := language.Parse(strings.TrimSpace(first))
	if err != nil {
		return UnknownValue
	}
	return strings.ToLower(tag.String())
}

func normalizeHint(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return UnknownValue
	}
	return strings.ToLower(v)
}

// languageRoot returns the primary subtag of a normalized language value.
func languageRoot(v string) string {
	if idx := strings.IndexByte(v, '-'); idx >= 0 {
		return v[:idx]
	}
	return v
}

// browserFamily returns the family part of a normalized browser value.
func browserFamily(v string) string {
	if idx := strings.IndexByte(v, '/'); idx >= 0 {
		return v[:idx]
	}
	return v
}

// hashComponents builds a sha256 over the canonical "k:v|k:v" form with
// keys in lexicographic order.
func hashComponents(components map[string]string) string {
	keys := make([]string, 0, len(components))
	for k := range components {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(k)
		sb.WriteByte(':')
		sb.WriteString(components[k])
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}
