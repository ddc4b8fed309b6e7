package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Project != "fi.wikipedia.org" {
		t.Errorf("Expected default project fi.wikipedia.org, got %s", cfg.Project)
	}
	if cfg.Access != "all-access" {
		t.Errorf("Expected default access all-access, got %s", cfg.Access)
	}
	if cfg.ReportLimit != 1000 {
		t.Errorf("Expected default limit 1000, got %d", cfg.ReportLimit)
	}
	if cfg.ArchiveType != "local" {
		t.Errorf("Expected default archive type local, got %s", cfg.ArchiveType)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}

	target, ok := cfg.Targets["default"]
	if !ok {
		t.Fatalf("Expected a default target, got %v", cfg.Targets)
	}
	if target.Project != "fi.wikipedia.org" || !target.Enabled {
		t.Errorf("Unexpected default target: %+v", target)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("WIKI_PROJECT", "sv.wikipedia.org")
	t.Setenv("REPORT_LIMIT", "500")
	t.Setenv("OUTPUT_DIR", "/var/reports")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Project != "sv.wikipedia.org" {
		t.Errorf("Expected project override, got %s", cfg.Project)
	}
	if cfg.ReportLimit != 500 {
		t.Errorf("Expected limit override, got %d", cfg.ReportLimit)
	}
	if cfg.OutputDir != "/var/reports" {
		t.Errorf("Expected output dir override, got %s", cfg.OutputDir)
	}
}

func TestLoadInvalidArchiveType(t *testing.T) {
	t.Setenv("ARCHIVE_TYPE", "ftp")

	_, err := Load()

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected *ConfigError, got %v", err)
	}
	if cfgErr.Field != "ARCHIVE_TYPE" {
		t.Errorf("Expected ARCHIVE_TYPE error, got %s", cfgErr.Field)
	}
}

func TestLoadGCSRequiresBucket(t *testing.T) {
	t.Setenv("ARCHIVE_TYPE", "gcs")

	_, err := Load()

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected *ConfigError, got %v", err)
	}
	if cfgErr.Field != "ARCHIVE_BUCKET" {
		t.Errorf("Expected ARCHIVE_BUCKET error, got %s", cfgErr.Field)
	}

	t.Setenv("ARCHIVE_BUCKET", "wikiviews-reports")
	if _, err := Load(); err != nil {
		t.Errorf("Expected no error with bucket set, got %v", err)
	}
}

func TestLoadTargetsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.yaml")
	content := `targets:
  - name: fi
    project: fi.wikipedia.org
    schedule: "0 6 2 * *"
    enabled: true
  - name: sv
    project: sv.wikipedia.org
    enabled: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing targets file: %v", err)
	}
	t.Setenv("TARGETS_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(cfg.Targets) != 2 {
		t.Fatalf("Expected 2 targets, got %d", len(cfg.Targets))
	}

	fi := cfg.Targets["fi"]
	if fi.Project != "fi.wikipedia.org" || fi.Schedule != "0 6 2 * *" || !fi.Enabled {
		t.Errorf("Unexpected fi target: %+v", fi)
	}

	sv := cfg.Targets["sv"]
	if sv.Enabled {
		t.Errorf("Expected sv target disabled, got %+v", sv)
	}
	if sv.Schedule == "" {
		t.Errorf("Expected default schedule filled in, got %+v", sv)
	}
}

func TestLoadTargetsFileMissingName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.yaml")
	if err := os.WriteFile(path, []byte("targets:\n  - project: fi.wikipedia.org\n"), 0o644); err != nil {
		t.Fatalf("writing targets file: %v", err)
	}
	t.Setenv("TARGETS_FILE", path)

	if _, err := Load(); err == nil {
		t.Error("Expected error for target without a name")
	}
}
