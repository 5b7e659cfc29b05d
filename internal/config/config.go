// Package config loads doibadge settings from .env, a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/matsen/doibadge/internal/classify"
	"github.com/matsen/doibadge/internal/crossref"
)

// Config holds every setting the pipeline needs.
type Config struct {
	ContactEmail     string `yaml:"contact_email,omitempty"`      // Sent to Crossref and the classifier
	ClassifierAPIKey string `yaml:"classifier_api_key,omitempty"` // Empty disables classification
	ClassifierURL    string `yaml:"classifier_url,omitempty"`
	CrossrefURL      string `yaml:"crossref_url,omitempty"`
	CachePath        string `yaml:"cache_path,omitempty"`
	IndexPath        string `yaml:"index_path,omitempty"`
	CreditLimit      int    `yaml:"credit_limit"`
	Debug            bool   `yaml:"debug,omitempty"`
}

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "doibadge"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"

	DefaultCachePath = "doi-cache.json"
	DefaultIndexPath = "doi-cache.db"
)

// Environment variables that override the config file.
const (
	EnvContactEmail  = "DOIBADGE_CONTACT_EMAIL"
	EnvAPIKey        = "CLASSIFIER_API_KEY"
	EnvClassifierURL = "CLASSIFIER_URL"
	EnvCrossrefURL   = "CROSSREF_URL"
	EnvCachePath     = "DOIBADGE_CACHE"
	EnvIndexPath     = "DOIBADGE_INDEX"
	EnvCreditLimit   = "DOIBADGE_CREDIT_LIMIT"
	EnvDebug         = "DOIBADGE_DEBUG"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		CrossrefURL: crossref.BaseURL,
		CachePath:   DefaultCachePath,
		IndexPath:   DefaultIndexPath,
		CreditLimit: classify.DefaultCreditLimit,
	}
}

// Path returns the path to the config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/doibadge/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// Load reads .env (if present), the config file at Path and the environment.
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()
	return LoadFrom(Path())
}

// LoadFrom reads the YAML file at path (a missing file is not an error),
// applies environment overrides and validates the result.
func LoadFrom(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			// Keys absent from the file keep their defaults.
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.CachePath = ExpandPath(cfg.CachePath)
	cfg.IndexPath = ExpandPath(cfg.IndexPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.ContactEmail, EnvContactEmail)
	setString(&c.ClassifierAPIKey, EnvAPIKey)
	setString(&c.ClassifierURL, EnvClassifierURL)
	setString(&c.CrossrefURL, EnvCrossrefURL)
	setString(&c.CachePath, EnvCachePath)
	setString(&c.IndexPath, EnvIndexPath)

	if v := os.Getenv(EnvCreditLimit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, EnvCreditLimit, v)
		}
		c.CreditLimit = n
	}
	if v := os.Getenv(EnvDebug); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidConfig, EnvDebug, v)
		}
		c.Debug = b
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks settings that would make the pipeline misbehave.
// A missing API key is allowed; classification then fails per call.
func (c *Config) Validate() error {
	if c.CreditLimit < 0 {
		return fmt.Errorf("%w: credit_limit must not be negative (got %d)", ErrInvalidConfig, c.CreditLimit)
	}
	if c.CachePath == "" {
		return fmt.Errorf("%w: cache_path is empty", ErrInvalidConfig)
	}
	if c.CrossrefURL == "" {
		return fmt.Errorf("%w: crossref_url is empty", ErrInvalidConfig)
	}
	return nil
}

// ClassifierConfigured reports whether classification can be attempted at all.
func (c *Config) ClassifierConfigured() bool {
	return c.ClassifierAPIKey != "" && c.ClassifierURL != ""
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
