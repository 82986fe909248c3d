package version

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()
	if info.Version == "" {
		t.Error("version should never be empty")
	}
}

func TestString(t *testing.T) {
	info := Info{Version: "1.2.3"}
	if got := info.String(); got != "1.2.3" {
		t.Errorf("expected 1.2.3, got %q", got)
	}

	info.GitCommit = "abc1234"
	if got := info.String(); !strings.Contains(got, "1.2.3") || !strings.Contains(got, "abc1234") {
		t.Errorf("expected version and commit, got %q", got)
	}
}
