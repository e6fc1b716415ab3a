package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cleancal/internal/config"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	cfg.PrefsPath = filepath.Join(dir, "prefs.db")
	cfg.ICSCacheDir = filepath.Join(dir, "ics-cache")
	path := filepath.Join(dir, "config.yaml")
	if err := config.Save(path, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("cleancal %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func TestViewSetGet(t *testing.T) {
	path := writeTestConfig(t)

	if got := run(t, "--config", path, "view", "get"); strings.TrimSpace(got) != "TWO_WEEK" {
		t.Fatalf("initial default = %q, want TWO_WEEK", got)
	}
	run(t, "--config", path, "view", "set", "month")
	if got := run(t, "--config", path, "view", "get"); strings.TrimSpace(got) != "MONTH" {
		t.Fatalf("default after set = %q, want MONTH", got)
	}
}

func TestShowPrintsPageForDate(t *testing.T) {
	path := writeTestConfig(t)

	out := run(t, "--config", path, "show", "--view", "month", "--date", "2024-03-15")
	if !strings.Contains(out, "March 2024") {
		t.Fatalf("expected March 2024 page, got:\n%s", out)
	}
	showView, showDate = "", ""
}

func TestNewProviderNoneIsNil(t *testing.T) {
	cfg := config.DefaultConfig()
	p, err := newProvider(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p != nil {
		t.Fatalf("provider none should yield nil, got %T", p)
	}
}

func TestNewGoogleClientMissingCredentials(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Provider = config.ProviderGoogle
	cfg.Google.CredentialsFile = filepath.Join(t.TempDir(), "missing.json")
	if _, err := newProvider(cfg, nil); err == nil {
		t.Fatal("expected error for a missing credentials file")
	}
	if _, err := os.Stat(cfg.Google.CredentialsFile); !os.IsNotExist(err) {
		t.Fatalf("credentials file should not be created: %v", err)
	}
}
