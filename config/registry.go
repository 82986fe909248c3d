package config

import "sync"

// Process-wide resolver: first call to Default constructs it, subsequent
// calls reuse the same instance. ResetDefault exists for test isolation.
var global struct {
	mu       sync.Mutex
	appName  string
	opts     []Option
	resolver *Resolver
}

// SetDefaultOptions configures how Default constructs the process-wide
// resolver. It has no effect once Default has been called, unless
// ResetDefault is called first.
func SetDefaultOptions(appName string, opts ...Option) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.appName = appName
	global.opts = opts
}

// Default returns the process-wide resolver, constructing it on first
// call from the options given to SetDefaultOptions.
func Default() (*Resolver, error) {
	global.mu.Lock()
	defer global.mu.Unlock()
	if global.resolver != nil {
		return global.resolver, nil
	}
	name := global.appName
	if name == "" {
		name = "app"
	}
	r, err := New(name, global.opts...)
	if err != nil {
		return nil, err
	}
	global.resolver = r
	return r, nil
}

// SetDefault installs a pre-built resolver as the process-wide instance.
func SetDefault(r *Resolver) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.resolver = r
}

// ResetDefault discards the process-wide resolver so the next Default call
// constructs a fresh one. Intended for tests.
func ResetDefault() {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.resolver = nil
	global.appName = ""
	global.opts = nil
}
