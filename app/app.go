package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/appkit-dev/appkit/config"
	"github.com/appkit-dev/appkit/logger"
	"github.com/appkit-dev/appkit/version"
)

// App holds the process-wide configuration resolver and logger.
type App struct {
	Name    string
	Config  *config.Resolver
	Logger  *logger.Logger
	Version version.Info
}

type options struct {
	configOpts []config.Option
	logger     *logger.Logger
}

// Option is a functional option for New.
type Option func(*options)

// WithConfigOptions forwards options to the configuration resolver.
func WithConfigOptions(opts ...config.Option) Option {
	return func(o *options) { o.configOpts = append(o.configOpts, opts...) }
}

// WithLogger installs a pre-built logger instead of initializing one from
// the resolved configuration.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New builds the application context for the named application: resolves
// configuration, initializes logging from the logging.* section, and logs
// the environment validation report. Construction fails only when an
// existing config file cannot be parsed.
func New(name string, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfgOpts := append([]config.Option{config.WithDefaults(baseDefaults(name))}, o.configOpts...)
	res, err := config.New(name, cfgOpts...)
	if err != nil {
		return nil, fmt.Errorf("load configuration for %s: %w", name, err)
	}
	config.SetDefault(res)

	a := &App{
		Name:    name,
		Config:  res,
		Version: version.Get(),
	}

	if o.logger != nil {
		a.Logger = o.logger
		logger.SetGlobalLogger(o.logger)
	} else {
		logger.Init(loggingConfig(name, res))
		a.Logger = logger.GetGlobalLogger()
	}

	a.Logger.Info("application initialized", logger.Fields(
		"app", name,
		"version", a.Version.String(),
		"config_file", res.ConfigFile(),
	))
	a.reportEnvironment()

	return a, nil
}

// Run executes a finite task with signal-aware context cancellation:
// SIGINT or SIGTERM cancels the context handed to fn.
func (a *App) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := fn(ctx); err != nil {
		a.Logger.Error("task failed", logger.ErrorFields("run", err))
		return err
	}
	return nil
}

// reportEnvironment logs the advisory environment validation findings.
// Missing required variables are warnings only: values may legitimately
// come from the file layer instead.
func (a *App) reportEnvironment() {
	for _, f := range a.Config.ValidateEnvironment() {
		fields := logger.Fields("var", f.Name)
		switch {
		case f.Level == config.LevelWarning:
			if f.Description != "" {
				fields["description"] = f.Description
			}
			a.Logger.Warn("required environment variable not set", fields)
		case f.Present:
			a.Logger.Info("environment variable found", fields)
		default:
			a.Logger.Debug("optional environment variable not set", fields)
		}
	}
}

// baseDefaults is the default layer every application starts from.
// Callers extend or override it through config.WithDefaults.
func baseDefaults(name string) map[string]any {
	return map[string]any{
		"app": map[string]any{
			"name":    name,
			"version": version.Version,
			"debug":   false,
		},
		"logging": map[string]any{
			"level":      "info",
			"format":     "console",
			"output":     "stdout",
			"file_path":  "",
			"audit_file": "",
		},
	}
}

// loggingConfig maps the logging.* section of the resolved configuration
// onto the logger's config type.
func loggingConfig(name string, res *config.Resolver) logger.Config {
	return logger.Config{
		Level:       res.GetString("logging.level", "info"),
		Format:      res.GetString("logging.format", "console"),
		Output:      res.GetString("logging.output", "stdout"),
		FilePath:    res.GetString("logging.file_path", ""),
		NoColor:     res.GetBool("logging.no_color", false),
		Caller:      res.GetBool("logging.caller", false),
		AuditFile:   res.GetString("logging.audit_file", ""),
		ServiceName: name,
	}
}
