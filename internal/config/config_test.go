package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
anthropic:
  api_key: sk-ant-test-key
  model: claude-sonnet-4-20250514
provider:
  kind: anthropic
store:
  path: /tmp/quorum-test.db
logging:
  enhanced: true
  path: /tmp/quorum-test.log
team:
  name: platform
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	if cfg.Anthropic.APIKey != "sk-ant-test-key" {
		t.Errorf("api_key = %q", cfg.Anthropic.APIKey)
	}
	if cfg.Anthropic.Model != "claude-sonnet-4-20250514" {
		t.Errorf("model = %q", cfg.Anthropic.Model)
	}
	if cfg.Provider.Kind != "anthropic" {
		t.Errorf("provider.kind = %q", cfg.Provider.Kind)
	}
	if cfg.Store.Path != "/tmp/quorum-test.db" {
		t.Errorf("store.path = %q", cfg.Store.Path)
	}
	if !cfg.Logging.Enhanced {
		t.Error("logging.enhanced should be true")
	}
	if cfg.Team.Name != "platform" {
		t.Errorf("team.name = %q", cfg.Team.Name)
	}
}

func TestLoadFromPathDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("team:\n  name: minimal\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	if cfg.Provider.Kind != "rules" {
		t.Errorf("provider.kind = %q, want rules", cfg.Provider.Kind)
	}
	if cfg.Logging.Enhanced {
		t.Error("logging.enhanced should default false")
	}
	if cfg.Team.Name != "minimal" {
		t.Errorf("team.name = %q", cfg.Team.Name)
	}
}

func TestLoadFromPathMissingFile(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("QUORUM_TEST_SECRET", "sk-ant-expanded")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain value", "sk-ant-literal", "sk-ant-literal"},
		{"env reference", "${QUORUM_TEST_SECRET}", "sk-ant-expanded"},
		{"unset reference", "${QUORUM_TEST_UNSET_VAR}", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandEnv(tt.in); got != tt.want {
				t.Errorf("expandEnv(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
