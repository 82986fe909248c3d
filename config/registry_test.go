package config

import "testing"

func TestDefaultIsProcessWideSingleton(t *testing.T) {
	ResetDefault()
	t.Cleanup(ResetDefault)

	SetDefaultOptions("testapp",
		WithDefaults(map[string]any{"app": map[string]any{"name": "testapp"}}),
		WithEnvPrefix("RG1"),
	)

	first, err := Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}
	second, err := Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}
	if first != second {
		t.Error("Default must return the same instance for the process lifetime")
	}
}

func TestResetDefaultGivesFreshInstance(t *testing.T) {
	ResetDefault()
	t.Cleanup(ResetDefault)

	SetDefaultOptions("testapp", WithEnvPrefix("RG2"))
	first, err := Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}

	ResetDefault()
	SetDefaultOptions("testapp", WithEnvPrefix("RG2"))
	second, err := Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}
	if first == second {
		t.Error("ResetDefault must discard the previous instance")
	}
}

func TestSetDefaultInstallsResolver(t *testing.T) {
	ResetDefault()
	t.Cleanup(ResetDefault)

	r, err := New("testapp", WithEnvPrefix("RG3"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	SetDefault(r)

	got, err := Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}
	if got != r {
		t.Error("Default should return the installed resolver")
	}
}
