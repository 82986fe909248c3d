package logger

import (
	"regexp"
	"strings"
)

// Marker is the replacement string emitted in place of redacted content.
const Marker = "[REDACTED]"

// sensitiveKeys are case-insensitive fragments that mark a structured
// field for unconditional redaction, whatever its value.
var sensitiveKeys = []string{
	"password", "secret", "token", "key", "auth", "credential",
	"session", "cookie", "bearer", "authorization", "cert",
}

// valuePattern is one content matcher. Patterns with keepPrefix replace
// only the second capture group, preserving the recognizable prefix
// (password=, token:, bearer ...).
type valuePattern struct {
	re         *regexp.Regexp
	keepPrefix bool
}

// Default value patterns, applied in order. They are deliberately
// conservative: digit runs must sit on non-digit boundaries and match a
// recognized grouping, so legitimate content is left alone.
var defaultPatterns = []valuePattern{
	// The value class excludes "[" so an already-inserted marker never
	// matches as a value.
	{re: regexp.MustCompile(`(?i)(password\s*[:=]\s*)([^\s,\[\]})]+)`), keepPrefix: true},
	{re: regexp.MustCompile(`(?i)(secret\s*[:=]\s*)([^\s,\[\]})]+)`), keepPrefix: true},
	{re: regexp.MustCompile(`(?i)(token\s*[:=]\s*)([^\s,\[\]})]+)`), keepPrefix: true},
	{re: regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]?\s*)([^\s,\[\]})]+)`), keepPrefix: true},
	{re: regexp.MustCompile(`(?i)(auth\w*\s*[:=]\s*)([^\s,\[\]})]+)`), keepPrefix: true},
	{re: regexp.MustCompile(`(?i)(bearer\s+)([^\s,\[\]})]+)`), keepPrefix: true},

	// Card-like: 13-16 digits with optional single space/dash separators.
	{re: regexp.MustCompile(`\b\d(?:[ -]?\d){12,15}\b`)},
	// SSN-like: exactly 9 digits, dashed 3-2-4 or undashed.
	{re: regexp.MustCompile(`\b(?:\d{3}-\d{2}-\d{4}|\d{9})\b`)},
	// Long alphanumeric runs that look like tokens or keys.
	{re: regexp.MustCompile(`\b[A-Za-z0-9]{32,}\b`)},
}

// Redactor sanitizes log content before it reaches any sink. It holds no
// mutable state: a single instance is safe for concurrent use and each
// record is processed independently.
type Redactor struct {
	keys     []string
	patterns []valuePattern
}

// NewRedactor returns a Redactor with the default sensitive field names
// and value patterns.
func NewRedactor() *Redactor {
	return &Redactor{keys: sensitiveKeys, patterns: defaultPatterns}
}

// SensitiveKey reports whether a field name marks its value for
// unconditional redaction.
func (r *Redactor) SensitiveKey(name string) bool {
	lower := strings.ToLower(name)
	for _, k := range r.keys {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// SanitizeText applies every value pattern to s in order and replaces each
// match with the marker. The marker itself matches no pattern, so
// sanitizing twice is a no-op.
func (r *Redactor) SanitizeText(s string) string {
	for _, p := range r.patterns {
		if p.keepPrefix {
			s = p.re.ReplaceAllString(s, "${1}"+Marker)
		} else {
			s = p.re.ReplaceAllString(s, Marker)
		}
	}
	return s
}

// SanitizeFields returns a sanitized copy of a structured field map.
// Field-name redaction runs first; surviving string values (and nested
// maps and slices, recursively) go through the pattern scan.
func (r *Redactor) SanitizeFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if r.SensitiveKey(k) {
			out[k] = Marker
			continue
		}
		out[k] = r.SanitizeValue(v)
	}
	return out
}

// SanitizeValue sanitizes a single value of any shape. Non-string scalars
// pass through unchanged.
func (r *Redactor) SanitizeValue(v any) any {
	switch tv := v.(type) {
	case string:
		return r.SanitizeText(tv)
	case map[string]any:
		return r.SanitizeFields(tv)
	case map[string]string:
		out := make(map[string]string, len(tv))
		for k, s := range tv {
			if r.SensitiveKey(k) {
				out[k] = Marker
			} else {
				out[k] = r.SanitizeText(s)
			}
		}
		return out
	case []any:
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = r.SanitizeValue(item)
		}
		return out
	case []string:
		out := make([]string, len(tv))
		for i, s := range tv {
			out[i] = r.SanitizeText(s)
		}
		return out
	case error:
		if tv == nil {
			return tv
		}
		return r.SanitizeText(tv.Error())
	default:
		return v
	}
}
