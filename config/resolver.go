package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync/atomic"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Resolver resolves configuration values from defaults, an optional config
// file, and environment variable overrides. The merged view is built once
// at construction and swapped atomically on Reload, so concurrent reads
// need no locking.
type Resolver struct {
	appName  string
	prefix   string
	filePath string
	envFile  string
	opts     Options

	defaults map[string]any
	merged   atomic.Pointer[map[string]any]
}

// New creates a Resolver for the named application.
//
// The config file path is resolved from WithConfigFile, the
// {PREFIX}_CONFIG_FILE environment variable, or standard search locations.
// A missing file leaves the file layer empty; an existing file that cannot
// be parsed fails with a *ParseError.
func New(appName string, opts ...Option) (*Resolver, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.FileSystem == nil {
		o.FileSystem = &RealFileSystem{}
	}
	prefix := o.EnvPrefix
	if prefix == "" {
		prefix = envPrefix(appName)
	}

	r := &Resolver{
		appName:  appName,
		prefix:   prefix,
		opts:     o,
		defaults: normalizeMap(o.Defaults),
	}

	// Load the .env file into the process environment, if present, so the
	// environment overlay below picks its variables up.
	if envFile := resolveEnvFile(appName, o); envFile != "" {
		r.envFile = envFile
		if err := o.FileSystem.LoadEnv(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	r.filePath = resolveConfigFile(appName, prefix, o)

	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload rebuilds the merged view from all layers and atomically swaps it
// in. In-flight readers keep the previous snapshot until they next call a
// getter.
func (r *Resolver) Reload() error {
	merged, err := r.build()
	if err != nil {
		return err
	}
	r.merged.Store(&merged)
	return nil
}

func (r *Resolver) build() (map[string]any, error) {
	merged := deepCopyMap(r.defaults)

	if r.filePath != "" {
		overlay, err := readConfigFile(r.filePath)
		if err != nil {
			return nil, err
		}
		if overlay != nil {
			mergeLayer(merged, overlay)
		}
	}

	mergeLayer(merged, envOverlay(r.prefix, r.defaults))
	return merged, nil
}

// AppName returns the application name the resolver was built for.
func (r *Resolver) AppName() string { return r.appName }

// EnvPrefix returns the environment variable prefix in use.
func (r *Resolver) EnvPrefix() string { return r.prefix }

// ConfigFile returns the resolved config file path, or "" when no file
// layer is in use.
func (r *Resolver) ConfigFile() string { return r.filePath }

// Get returns the value at the dotted path, or nil when no layer defines
// it. Lookups never fail: a path segment that lands on a scalar is treated
// as not found.
func (r *Resolver) Get(path string) any {
	v, _ := r.lookup(path)
	return v
}

// GetDefault returns the value at the dotted path, or fallback when no
// layer defines it.
func (r *Resolver) GetDefault(path string, fallback any) any {
	if v, ok := r.lookup(path); ok {
		return v
	}
	return fallback
}

// Has reports whether any layer defines the dotted path.
func (r *Resolver) Has(path string) bool {
	_, ok := r.lookup(path)
	return ok
}

// GetString returns the value at path coerced to a string, or fallback.
func (r *Resolver) GetString(path, fallback string) string {
	if v, ok := r.lookup(path); ok {
		if s, err := cast.ToStringE(v); err == nil {
			return s
		}
	}
	return fallback
}

// GetInt returns the value at path coerced to an int, or fallback.
func (r *Resolver) GetInt(path string, fallback int) int {
	if v, ok := r.lookup(path); ok {
		if n, err := cast.ToIntE(v); err == nil {
			return n
		}
	}
	return fallback
}

// GetFloat returns the value at path coerced to a float64, or fallback.
func (r *Resolver) GetFloat(path string, fallback float64) float64 {
	if v, ok := r.lookup(path); ok {
		if f, err := cast.ToFloat64E(v); err == nil {
			return f
		}
	}
	return fallback
}

// GetBool returns the value at path coerced to a bool, or fallback.
func (r *Resolver) GetBool(path string, fallback bool) bool {
	if v, ok := r.lookup(path); ok {
		if b, err := cast.ToBoolE(v); err == nil {
			return b
		}
	}
	return fallback
}

// Section returns a copy of an entire top-level section, or an empty map
// when the section does not exist.
func (r *Resolver) Section(name string) map[string]any {
	v, ok := r.lookup(name)
	if !ok {
		return map[string]any{}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return deepCopyMap(m)
}

// All returns a copy of the entire merged configuration.
func (r *Resolver) All() map[string]any {
	return deepCopyMap(*r.merged.Load())
}

func (r *Resolver) lookup(path string) (any, bool) {
	var cur any = *r.merged.Load()
	for _, seg := range strings.Split(strings.ToLower(path), ".") {
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

// readConfigFile parses the file at path into a nested map. A file that
// disappeared since resolution is treated as an empty layer.
func readConfigFile(path string) (map[string]any, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &pathErr) || errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, &ParseError{File: path, Err: err}
	}
	return normalizeMap(v.AllSettings()), nil
}

// mergeLayer deep-merges overlay into dst in place. Keys defined in
// overlay win, including empty values, so an empty-string environment
// variable counts as set. Sibling keys absent from overlay are retained
// at every nesting level. A scalar in overlay replaces a whole section in
// dst and vice versa.
func mergeLayer(dst, overlay map[string]any) {
	for k, v := range overlay {
		if om, ok := v.(map[string]any); ok {
			if dm, ok := dst[k].(map[string]any); ok {
				mergeLayer(dm, om)
				continue
			}
			dst[k] = deepCopyMap(om)
			continue
		}
		dst[k] = v
	}
}

// deepCopyMap copies a nested configuration map so snapshots handed to
// callers cannot alias resolver state.
func deepCopyMap(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		switch tv := v.(type) {
		case map[string]any:
			dst[k] = deepCopyMap(tv)
		case []any:
			s := make([]any, len(tv))
			for i, item := range tv {
				if m, ok := item.(map[string]any); ok {
					s[i] = deepCopyMap(m)
				} else {
					s[i] = item
				}
			}
			dst[k] = s
		default:
			dst[k] = v
		}
	}
	return dst
}

// normalizeMap lower-cases keys and converts nested map types to
// map[string]any so all layers share one shape. Viper lower-cases file
// keys already; defaults supplied by callers are normalized to match.
func normalizeMap(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[strings.ToLower(k)] = normalizeValue(v)
	}
	return dst
}

func normalizeValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return normalizeMap(tv)
	case map[any]any:
		m := make(map[string]any, len(tv))
		for k, val := range tv {
			m[strings.ToLower(cast.ToString(k))] = normalizeValue(val)
		}
		return m
	case []any:
		s := make([]any, len(tv))
		for i, val := range tv {
			s[i] = normalizeValue(val)
		}
		return s
	default:
		return v
	}
}
