// Package config loads the tool's own configuration (forum credentials and
// run defaults) and a repository's metadata.yaml, layering a YAML file
// under environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/canonical/upload-charm-docs/internal/errs"
)

// Config is the tool's own configuration: forum credentials and run
// defaults, unmarshalled from YAML and then overridden field-by-field from
// the environment.
type Config struct {
	Discourse DiscourseConfig `yaml:"discourse"`
	Run       RunDefaults     `yaml:"run"`
}

// DiscourseConfig names the forum instance and credentials docsync talks to.
type DiscourseConfig struct {
	Host        string `yaml:"host"`
	APIUsername string `yaml:"api_username"`
	APIKey      string `yaml:"api_key"`
	CategoryID  int    `yaml:"category_id"`
}

// RunDefaults are CLI-flag defaults a config file may pre-set; explicit
// flags always take precedence over these.
type RunDefaults struct {
	DryRun      bool   `yaml:"dry_run"`
	DeletePages bool   `yaml:"delete_pages"`
	BranchName  string `yaml:"branch_name"`
}

// DefaultConfig returns the built-in run defaults: no credentials, and safe
// (non-mutating) run behavior with DryRun on and DeletePages off.
func DefaultConfig() *Config {
	return &Config{
		Run: RunDefaults{
			DryRun:      true,
			DeletePages: false,
		},
	}
}

// Load loads configuration using the real environment.
func Load() (*Config, error) {
	return LoadWithEnv(os.Getenv)
}

// LoadWithEnv loads configuration using the provided environment lookup
// function, so tests can supply an isolated environment.
func LoadWithEnv(getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()

	configPath := getConfigPathWithEnv(getenv)
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if host := getenv("DISCOURSE_HOST"); host != "" {
		cfg.Discourse.Host = host
	}
	if username := getenv("DISCOURSE_API_USERNAME"); username != "" {
		cfg.Discourse.APIUsername = username
	}
	if apiKey := getenv("DISCOURSE_API_KEY"); apiKey != "" {
		cfg.Discourse.APIKey = apiKey
	}
	if categoryID := getenv("DISCOURSE_CATEGORY_ID"); categoryID != "" {
		var parsed int
		if _, err := fmt.Sscanf(categoryID, "%d", &parsed); err == nil {
			cfg.Discourse.CategoryID = parsed
		}
	}

	return cfg, nil
}

func getConfigPath() string {
	return getConfigPathWithEnv(os.Getenv)
}

func getConfigPathWithEnv(getenv func(string) string) string {
	if explicit := getenv("DOCSYNC_CONFIG"); explicit != "" {
		return explicit
	}
	if xdgConfig := getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "docsync", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "docsync", "config.yaml")
}

// Metadata is the parsed form of a charm repository's metadata.yaml: just
// the two fields docsync cares about.
type Metadata struct {
	Docs string `yaml:"docs"`
	Name string `yaml:"name"`
}

// LoadMetadata reads and validates metadata.yaml at path. The "name" field
// is always required. The "docs" field is required too, unless
// createIfNotExists is set: a charm onboarding for the first time has no
// index topic yet, so its absence is only an error when the caller has no
// way to create one.
func LoadMetadata(path string, createIfNotExists bool) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.WrapInputError(fmt.Sprintf("failed to read metadata file %q", path), err)
	}

	var meta Metadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, errs.WrapInputError(fmt.Sprintf("failed to parse metadata file %q", path), err)
	}

	if meta.Name == "" {
		return nil, errs.NewInputError(fmt.Sprintf("metadata file %q is missing the required %q field", path, "name"))
	}
	if meta.Docs == "" && !createIfNotExists {
		return nil, errs.NewInputError(fmt.Sprintf(
			"metadata file %q is missing the required %q field (pass create_if_not_exists to create a new index topic instead)", path, "docs"))
	}

	return &meta, nil
}
