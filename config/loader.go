package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// FileSystem interface for file operations (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Options holds construction dependencies and overrides for a Resolver.
type Options struct {
	FileSystem   FileSystem
	ConfigFile   string // Direct config file path (optional)
	EnvFile      string // Direct .env file path (optional)
	EnvExample   string // Path to .env.example for environment validation (optional)
	EnvPrefix    string // Environment variable prefix; derived from app name if empty
	Defaults     map[string]any
	RequiredVars []string
	OptionalVars []string
}

// Option is a functional option for New.
type Option func(*Options)

// WithFileSystem sets a custom filesystem for the resolver.
func WithFileSystem(fs FileSystem) Option {
	return func(o *Options) { o.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) Option {
	return func(o *Options) { o.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path, loaded into the process
// environment before the environment overlay is built.
func WithEnvFile(path string) Option {
	return func(o *Options) { o.EnvFile = path }
}

// WithEnvExample sets the .env.example path used by ValidateEnvironment.
func WithEnvExample(path string) Option {
	return func(o *Options) { o.EnvExample = path }
}

// WithEnvPrefix overrides the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(o *Options) { o.EnvPrefix = prefix }
}

// WithDefaults sets the default configuration layer.
func WithDefaults(defaults map[string]any) Option {
	return func(o *Options) { o.Defaults = defaults }
}

// WithRequiredVars declares environment variables that ValidateEnvironment
// reports as warnings when absent.
func WithRequiredVars(names ...string) Option {
	return func(o *Options) { o.RequiredVars = append(o.RequiredVars, names...) }
}

// WithOptionalVars declares environment variables that ValidateEnvironment
// reports at info level.
func WithOptionalVars(names ...string) Option {
	return func(o *Options) { o.OptionalVars = append(o.OptionalVars, names...) }
}

// envPrefix derives the environment variable prefix from the application
// name: upper-cased, with dashes and dots folded to underscores.
func envPrefix(appName string) string {
	p := strings.ToUpper(appName)
	p = strings.ReplaceAll(p, "-", "_")
	p = strings.ReplaceAll(p, ".", "_")
	return p
}

// resolveConfigFile finds the config file for an application.
// Precedence: explicit option, {PREFIX}_CONFIG_FILE environment variable,
// then standard search locations. Returns "" when nothing is found.
func resolveConfigFile(appName, prefix string, opts Options) string {
	if opts.ConfigFile != "" {
		return opts.ConfigFile
	}
	if env := os.Getenv(prefix + "_CONFIG_FILE"); env != "" {
		return env
	}

	searchPaths := []string{
		fmt.Sprintf("./%s.yml", appName),
		fmt.Sprintf("./%s.yaml", appName),
		"./config.yml",
		"./config.yaml",
		"./config/config.yml",
		"./config/config.yaml",
		"../config/config.yml",
	}
	for _, path := range searchPaths {
		if opts.FileSystem.Exists(path) {
			return path
		}
	}
	return ""
}

// resolveEnvFile finds the .env file for an application.
func resolveEnvFile(appName string, opts Options) string {
	if opts.EnvFile != "" {
		return opts.EnvFile
	}
	searchPaths := []string{
		fmt.Sprintf(".env.%s", appName),
		".env",
	}
	for _, path := range searchPaths {
		if opts.FileSystem.Exists(path) {
			return path
		}
	}
	return ""
}
