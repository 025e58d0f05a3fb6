package main

import (
	"path/filepath"
	"testing"

	"github.com/forgelight/quorum/internal/config"
)

func TestBuildTeam(t *testing.T) {
	cfg := &config.Config{Team: config.TeamConfig{Name: "platform"}}

	t.Run("default trio", func(t *testing.T) {
		runAgents = nil
		tm, err := buildTeam(cfg)
		if err != nil {
			t.Fatalf("buildTeam: %v", err)
		}
		if tm.Size() != 3 {
			t.Errorf("size = %d, want 3", tm.Size())
		}
		if tm.Name() != "platform" {
			t.Errorf("name = %q", tm.Name())
		}
	})

	t.Run("explicit agents", func(t *testing.T) {
		runAgents = []string{"ada=architecture, planning", "grace=coding"}
		defer func() { runAgents = nil }()

		tm, err := buildTeam(cfg)
		if err != nil {
			t.Fatalf("buildTeam: %v", err)
		}
		ada := tm.Member("ada")
		if ada == nil {
			t.Fatal("ada not added")
		}
		tags := ada.Expertise()
		if len(tags) != 2 || tags[1] != "planning" {
			t.Errorf("tags = %v, want [architecture planning]", tags)
		}
	})

	t.Run("malformed spec", func(t *testing.T) {
		runAgents = []string{"no-tags-here"}
		defer func() { runAgents = nil }()

		if _, err := buildTeam(cfg); err == nil {
			t.Error("expected error for spec without =")
		}
	})

	t.Run("duplicate agent", func(t *testing.T) {
		runAgents = []string{"ada=planning", "ada=coding"}
		defer func() { runAgents = nil }()

		if _, err := buildTeam(cfg); err == nil {
			t.Error("expected error for duplicate agent name")
		}
	})
}

func TestBuildProviderKinds(t *testing.T) {
	cfg := &config.Config{}

	runProvider = "rules"
	defer func() { runProvider = "" }()
	if _, err := buildProvider(cfg); err != nil {
		t.Errorf("rules provider: %v", err)
	}

	runProvider = "carrier-pigeon"
	if _, err := buildProvider(cfg); err == nil {
		t.Error("expected error for unknown provider kind")
	}
}

func TestDefaultLogPath(t *testing.T) {
	got := defaultLogPath(filepath.Join("data", "quorum", "quorum.db"))
	want := filepath.Join("data", "quorum", "quorum-debug.log")
	if got != want {
		t.Errorf("defaultLogPath = %q, want %q", got, want)
	}
}
