package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/appkit-dev/appkit/config"
	"github.com/appkit-dev/appkit/logger"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func reset(t *testing.T) {
	t.Helper()
	config.ResetDefault()
	logger.SetGlobalLogger(nil)
	t.Cleanup(func() {
		config.ResetDefault()
		logger.SetGlobalLogger(nil)
	})
}

func TestNewWiresConfigAndLogger(t *testing.T) {
	reset(t)
	dir := t.TempDir()
	configPath := writeFile(t, dir, "config.yml", `
logging:
  level: warn
  format: json
app:
  debug: true
`)

	a, err := New("myapp", WithConfigOptions(
		config.WithConfigFile(configPath),
		config.WithEnvPrefix("APPT1"),
	))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if a.Config == nil || a.Logger == nil {
		t.Fatal("app must carry config and logger")
	}
	if got := a.Config.GetString("logging.level", ""); got != "warn" {
		t.Errorf("expected warn, got %q", got)
	}
	if !a.Config.GetBool("app.debug", false) {
		t.Error("file overlay should override app.debug default")
	}
	if got := a.Config.GetString("app.name", ""); got != "myapp" {
		t.Errorf("base defaults should define app.name, got %q", got)
	}

	// The resolver is installed as the process-wide default.
	def, err := config.Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}
	if def != a.Config {
		t.Error("app resolver should be the process default")
	}
}

func TestNewFailsOnMalformedConfig(t *testing.T) {
	reset(t)
	dir := t.TempDir()
	configPath := writeFile(t, dir, "config.yml", "app: [broken\n")

	_, err := New("myapp", WithConfigOptions(
		config.WithConfigFile(configPath),
		config.WithEnvPrefix("APPT2"),
	))
	if err == nil {
		t.Fatal("expected error for malformed config file")
	}
	var parseErr *config.ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("expected *config.ParseError in chain, got %v", err)
	}
}

func TestNewWithoutConfigFile(t *testing.T) {
	reset(t)

	a, err := New("myapp", WithConfigOptions(config.WithEnvPrefix("APPT3")))
	if err != nil {
		t.Fatalf("New must succeed without a config file: %v", err)
	}
	if got := a.Config.GetString("logging.level", ""); got != "info" {
		t.Errorf("expected default level info, got %q", got)
	}
}

func TestRunExecutesTask(t *testing.T) {
	reset(t)

	a, err := New("myapp", WithConfigOptions(config.WithEnvPrefix("APPT4")))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var ran bool
	if err := a.Run(context.Background(), func(ctx context.Context) error {
		ran = true
		return nil
	}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !ran {
		t.Error("task did not run")
	}

	wantErr := errors.New("boom")
	if err := a.Run(context.Background(), func(ctx context.Context) error {
		return wantErr
	}); !errors.Is(err, wantErr) {
		t.Errorf("expected task error back, got %v", err)
	}
}

func TestEnvironmentReportDoesNotFail(t *testing.T) {
	reset(t)
	t.Setenv("APPT5_PRESENT", "1")

	_, err := New("myapp", WithConfigOptions(
		config.WithEnvPrefix("APPT5"),
		config.WithRequiredVars("APPT5_PRESENT", "APPT5_MISSING"),
		config.WithOptionalVars("APPT5_OPTIONAL"),
	))
	if err != nil {
		t.Fatalf("validation findings must never fail construction: %v", err)
	}
}
