package config

import (
	"os"
	"strconv"
	"strings"
)

// Reserved variable suffixes handled by the loader itself rather than
// mapped to config paths. {PREFIX}_LOG_LEVEL is aliased to logging.level
// for convenience; {PREFIX}_CONFIG_FILE selects the config file.
const (
	suffixConfigFile = "CONFIG_FILE"
	suffixLogLevel   = "LOG_LEVEL"
)

// envOverlay builds the environment layer: every {PREFIX}_SECTION_KEY
// variable becomes the dotted path section.key, with the string value
// coerced against the type of the corresponding default. Only scalar
// leaves can be overridden from the environment; sequence-valued paths are
// file-layer only.
func envOverlay(prefix string, defaults map[string]any) map[string]any {
	overlay := make(map[string]any)
	p := prefix + "_"

	for _, entry := range os.Environ() {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(key, p) {
			continue
		}
		suffix := strings.TrimPrefix(key, p)
		if suffix == "" || suffix == suffixConfigFile {
			continue
		}

		path := envKeyToPath(suffix, defaults)
		if path == "" {
			continue
		}
		def := lookupDefault(defaults, path)
		switch def.(type) {
		case map[string]any, []any:
			// Sections and sequences have no scalar environment
			// representation; those paths are file-layer only.
			continue
		}
		setNested(overlay, path, coerceEnvValue(value, def))
	}

	return overlay
}

// envKeyToPath converts an environment variable suffix (prefix already
// stripped) to a dotted config path. Candidate splits are matched against
// the default layer first so multi-word keys resolve to existing paths
// (LOGGING_FILE_LEVEL -> logging.file_level); with no match the first
// underscore splits section from key.
func envKeyToPath(suffix string, defaults map[string]any) string {
	if suffix == suffixLogLevel {
		return "logging.level"
	}

	lower := strings.ToLower(suffix)
	parts := strings.Split(lower, "_")
	if len(parts) == 1 {
		return lower
	}

	for _, candidate := range envPathCandidates(parts) {
		if _, ok := lookupDefaultOK(defaults, candidate); ok {
			return candidate
		}
	}

	// No default defines this path; keep section.rest_of_key.
	return parts[0] + "." + strings.Join(parts[1:], "_")
}

// envPathCandidates generates dotted-path interpretations of an underscore
// separated key, most-nested first.
func envPathCandidates(parts []string) []string {
	candidates := []string{strings.Join(parts, ".")}
	for i := 1; i < len(parts); i++ {
		candidates = append(candidates, strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"))
	}
	return candidates
}

// coerceEnvValue converts the raw string value to the type implied by the
// default for the same path. With no default (or a string default) the
// value stays a string. Empty strings are kept as-is: an empty variable is
// present-and-set.
func coerceEnvValue(value string, def any) any {
	switch def.(type) {
	case bool:
		return parseBoolWord(value)
	case int, int32, int64:
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		return value
	case float32, float64:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		return value
	default:
		return value
	}
}

// parseBoolWord accepts the usual boolean words case-insensitively.
// Anything unrecognized is false.
func parseBoolWord(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}

// setNested sets a dotted-path value, creating intermediate maps. A scalar
// in the way is replaced by a map so the overlay always has map shape.
func setNested(m map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	cur := m
	for _, part := range parts[:len(parts)-1] {
		next, ok := cur[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[part] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}

func lookupDefault(defaults map[string]any, path string) any {
	v, _ := lookupDefaultOK(defaults, path)
	return v
}

func lookupDefaultOK(defaults map[string]any, path string) (any, bool) {
	var cur any = defaults
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
