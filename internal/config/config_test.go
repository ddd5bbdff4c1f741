package config

import (
	"os"
	"path/filepath"
	"testing"
)

// mockEnv creates an environment lookup function from a map.
func mockEnv(env map[string]string) func(string) string {
	return func(key string) string {
		return env[key]
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}
	if !cfg.Run.DryRun {
		t.Error("DefaultConfig() Run.DryRun should be true, a run must be opted into mutating the forum")
	}
	if cfg.Run.DeletePages {
		t.Error("DefaultConfig() Run.DeletePages should be false")
	}
	if cfg.Discourse.Host != "" {
		t.Errorf("DefaultConfig() Discourse.Host should be empty, got %q", cfg.Discourse.Host)
	}
}

func TestLoadWithConfigFile(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, "docsync")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	configContent := `
discourse:
  host: https://discourse.example.com
  api_username: file-user
  api_key: file-key
  category_id: 42
run:
  dry_run: false
  delete_pages: true
  branch_name: docs-migration
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	env := mockEnv(map[string]string{
		"XDG_CONFIG_HOME": tmpDir,
	})

	cfg, err := LoadWithEnv(env)
	if err != nil {
		t.Fatalf("LoadWithEnv() error: %v", err)
	}

	if cfg.Discourse.Host != "https://discourse.example.com" {
		t.Errorf("LoadWithEnv() Discourse.Host = %q, want %q", cfg.Discourse.Host, "https://discourse.example.com")
	}
	if cfg.Discourse.APIUsername != "file-user" {
		t.Errorf("LoadWithEnv() Discourse.APIUsername = %q, want %q", cfg.Discourse.APIUsername, "file-user")
	}
	if cfg.Discourse.CategoryID != 42 {
		t.Errorf("LoadWithEnv() Discourse.CategoryID = %d, want 42", cfg.Discourse.CategoryID)
	}
	if cfg.Run.DryRun {
		t.Error("LoadWithEnv() Run.DryRun should be false per file")
	}
	if !cfg.Run.DeletePages {
		t.Error("LoadWithEnv() Run.DeletePages should be true per file")
	}
	if cfg.Run.BranchName != "docs-migration" {
		t.Errorf("LoadWithEnv() Run.BranchName = %q, want %q", cfg.Run.BranchName, "docs-migration")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, "docsync")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	configContent := `discourse:
  api_key: "file_api_key"`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	env := mockEnv(map[string]string{
		"XDG_CONFIG_HOME":   tmpDir,
		"DISCOURSE_API_KEY": "env_api_key",
	})

	cfg, err := LoadWithEnv(env)
	if err != nil {
		t.Fatalf("LoadWithEnv() error: %v", err)
	}

	if cfg.Discourse.APIKey != "env_api_key" {
		t.Errorf("LoadWithEnv() Discourse.APIKey = %q, want %q (env override)", cfg.Discourse.APIKey, "env_api_key")
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()

	env := mockEnv(map[string]string{
		"XDG_CONFIG_HOME": tmpDir,
	})

	cfg, err := LoadWithEnv(env)
	if err != nil {
		t.Fatalf("LoadWithEnv() error: %v", err)
	}

	if !cfg.Run.DryRun {
		t.Error("LoadWithEnv() without file should use default Run.DryRun = true")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, "docsync")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	invalidContent := `
discourse: [this is invalid yaml
run:
  dry_run: not-a-bool
`
	if err := os.WriteFile(configPath, []byte(invalidContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	env := mockEnv(map[string]string{
		"XDG_CONFIG_HOME": tmpDir,
	})

	_, err := LoadWithEnv(env)
	if err == nil {
		t.Error("LoadWithEnv() with invalid YAML should return error")
	}
}

func TestGetConfigPathXDG(t *testing.T) {
	t.Parallel()
	tmpDir := "/custom/config/path"

	env := mockEnv(map[string]string{
		"XDG_CONFIG_HOME": tmpDir,
	})

	path := getConfigPathWithEnv(env)
	expected := filepath.Join(tmpDir, "docsync", "config.yaml")
	if path != expected {
		t.Errorf("getConfigPathWithEnv() = %q, want %q", path, expected)
	}
}

func TestGetConfigPathExplicit(t *testing.T) {
	t.Parallel()
	env := mockEnv(map[string]string{
		"DOCSYNC_CONFIG":  "/explicit/config.yaml",
		"XDG_CONFIG_HOME": "/ignored",
	})

	path := getConfigPathWithEnv(env)
	if path != "/explicit/config.yaml" {
		t.Errorf("getConfigPathWithEnv() = %q, want %q", path, "/explicit/config.yaml")
	}
}

func TestGetConfigPathFallback(t *testing.T) {
	t.Parallel()
	env := mockEnv(map[string]string{})

	path := getConfigPathWithEnv(env)
	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".config", "docsync", "config.yaml")
	if path != expected {
		t.Errorf("getConfigPathWithEnv() = %q, want %q", path, expected)
	}
}

func TestLoadMetadata(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "metadata.yaml")
	content := "docs: https://discourse.example.com/t/my-charm-documentation-overview/10\nname: my-charm\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write metadata file: %v", err)
	}

	meta, err := LoadMetadata(path, false)
	if err != nil {
		t.Fatalf("LoadMetadata() error: %v", err)
	}
	if meta.Docs != "https://discourse.example.com/t/my-charm-documentation-overview/10" {
		t.Errorf("LoadMetadata() Docs = %q", meta.Docs)
	}
	if meta.Name != "my-charm" {
		t.Errorf("LoadMetadata() Name = %q", meta.Name)
	}
}

func TestLoadMetadataMissingField(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "metadata.yaml")
	content := "name: my-charm\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write metadata file: %v", err)
	}

	if _, err := LoadMetadata(path, false); err == nil {
		t.Error("LoadMetadata() with missing docs field and createIfNotExists=false should return error")
	}
}

func TestLoadMetadataMissingFieldToleratedWithCreateIfNotExists(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "metadata.yaml")
	content := "name: my-charm\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write metadata file: %v", err)
	}

	meta, err := LoadMetadata(path, true)
	if err != nil {
		t.Fatalf("LoadMetadata() with createIfNotExists=true should tolerate a missing docs field: %v", err)
	}
	if meta.Docs != "" {
		t.Errorf("LoadMetadata() Docs = %q, want empty", meta.Docs)
	}
	if meta.Name != "my-charm" {
		t.Errorf("LoadMetadata() Name = %q, want %q", meta.Name, "my-charm")
	}
}

func TestLoadMetadataMissingNameFailsEvenWithCreateIfNotExists(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "metadata.yaml")
	content := "docs: https://discourse.example.com/t/index/1\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write metadata file: %v", err)
	}

	if _, err := LoadMetadata(path, true); err == nil {
		t.Error("LoadMetadata() with missing name field should fail regardless of createIfNotExists")
	}
}

func TestLoadMetadataMissingFile(t *testing.T) {
	t.Parallel()
	if _, err := LoadMetadata(filepath.Join(t.TempDir(), "missing.yaml"), false); err == nil {
		t.Error("LoadMetadata() with missing file should return error")
	}
}
