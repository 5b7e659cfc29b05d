package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// clearEnv blanks every override so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		EnvContactEmail, EnvAPIKey, EnvClassifierURL, EnvCrossrefURL,
		EnvCachePath, EnvIndexPath, EnvCreditLimit, EnvDebug,
	} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got, want := Path(), "/custom/config/doibadge/config.yml"; got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	if got, want := Path(), filepath.Join(home, ".config", "doibadge", "config.yml"); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if *cfg != Defaults() {
		t.Errorf("LoadFrom() = %+v, want defaults %+v", *cfg, Defaults())
	}
	if cfg.ClassifierConfigured() {
		t.Error("ClassifierConfigured() = true without key")
	}
}

func TestLoadFrom_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yml")
	writeFile(t, path, `contact_email: ops@example.org
classifier_api_key: file-key
classifier_url: https://classifier.example.org/v1/classify
cache_path: /var/lib/doibadge/cache.json
credit_limit: 0
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.ContactEmail != "ops@example.org" || cfg.ClassifierAPIKey != "file-key" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.CachePath != "/var/lib/doibadge/cache.json" {
		t.Errorf("CachePath = %q", cfg.CachePath)
	}
	if cfg.CreditLimit != 0 {
		t.Errorf("CreditLimit = %d, want explicit 0", cfg.CreditLimit)
	}
	if cfg.IndexPath != DefaultIndexPath {
		t.Errorf("IndexPath = %q, want default", cfg.IndexPath)
	}
	if !cfg.ClassifierConfigured() {
		t.Error("ClassifierConfigured() = false")
	}
}

func TestLoadFrom_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yml")
	writeFile(t, path, "classifier_api_key: file-key\ncredit_limit: 5\n")

	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv(EnvCreditLimit, "42")
	t.Setenv(EnvDebug, "true")
	t.Setenv(EnvCachePath, "/tmp/override.json")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.ClassifierAPIKey != "env-key" {
		t.Errorf("ClassifierAPIKey = %q, want env-key", cfg.ClassifierAPIKey)
	}
	if cfg.CreditLimit != 42 {
		t.Errorf("CreditLimit = %d, want 42", cfg.CreditLimit)
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true")
	}
	if cfg.CachePath != "/tmp/override.json" {
		t.Errorf("CachePath = %q", cfg.CachePath)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{name: "negative limit", yaml: "credit_limit: -1\n"},
		{name: "bad limit env", env: map[string]string{EnvCreditLimit: "lots"}},
		{name: "bad debug env", env: map[string]string{EnvDebug: "sometimes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := filepath.Join(t.TempDir(), "config.yml")
			writeFile(t, path, tt.yaml)

			_, err := LoadFrom(path)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("LoadFrom() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoadFrom_MalformedYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yml")
	writeFile(t, path, "credit_limit: [oops\n")

	if _, err := LoadFrom(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	if got := ExpandPath("~/cache.json"); got != filepath.Join(home, "cache.json") {
		t.Errorf("ExpandPath(~/cache.json) = %q", got)
	}
	if got := ExpandPath("/abs/cache.json"); got != "/abs/cache.json" {
		t.Errorf("ExpandPath(/abs) = %q", got)
	}
	if got := ExpandPath(""); got != "" {
		t.Errorf("ExpandPath(\"\") = %q", got)
	}
}
