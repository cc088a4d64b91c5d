package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func setupTestConfig(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	viper.Reset()
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(dir)
	setDefaults()

	t.Setenv("HOME", dir)
	t.Cleanup(func() {
		viper.Reset()
	})
}

func TestLoadDefaults(t *testing.T) {
	setupTestConfig(t)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Provider != "openai" {
		t.Errorf("default provider = %q", cfg.Provider)
	}
	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("default model = %q", cfg.Model)
	}
	if cfg.Workbook.Path != "genai_rpa.xlsx" {
		t.Errorf("default workbook = %q", cfg.Workbook.Path)
	}
	if cfg.Search.Display != 20 || cfg.Search.Sort != "date" {
		t.Errorf("search defaults = %d/%q", cfg.Search.Display, cfg.Search.Sort)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	setupTestConfig(t)
	t.Setenv("RPA_WORKBOOK_PATH", "/tmp/other.xlsx")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Workbook.Path != "/tmp/other.xlsx" {
		t.Errorf("workbook path = %q, want env override", cfg.Workbook.Path)
	}
}

func TestLoadEnvOverrideKeysWithoutDefault(t *testing.T) {
	setupTestConfig(t)
	t.Setenv("RPA_AI_BASE_URL", "http://llm.local/v1")
	t.Setenv("RPA_NAVER_BASE_URL", "http://search.local")
	t.Setenv("RPA_NAVER_CLIENT_ID", "env-id")
	t.Setenv("RPA_API_KEYS_OPENAI", "sk-env")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AI.BaseURL != "http://llm.local/v1" {
		t.Errorf("ai.base_url = %q", cfg.AI.BaseURL)
	}
	if cfg.Naver.BaseURL != "http://search.local" {
		t.Errorf("naver.base_url = %q", cfg.Naver.BaseURL)
	}
	if cfg.Naver.ClientID != "env-id" {
		t.Errorf("naver.client_id = %q", cfg.Naver.ClientID)
	}
	if cfg.APIKeys.OpenAI != "sk-env" {
		t.Errorf("api_keys.openai = %q", cfg.APIKeys.OpenAI)
	}
}

func TestLoadMalformedConfig(t *testing.T) {
	setupTestConfig(t)
	dir := filepath.Dir(ConfigPath())
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ConfigPath(), []byte("provider: [openai\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a malformed config.yaml")
	}
}

func TestLoadMissingConfig(t *testing.T) {
	setupTestConfig(t)
	if _, err := Load(); err != nil {
		t.Fatalf("missing config.yaml should not fail: %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("RPA_TEST_DOTENV=from-file\n"), 0600); err != nil {
		t.Fatal(err)
	}
	os.Unsetenv("RPA_TEST_DOTENV")
	t.Cleanup(func() { os.Unsetenv("RPA_TEST_DOTENV") })

	loaded, err := LoadDotEnv(path, filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 1 {
		t.Errorf("loaded %v, want only the existing file", loaded)
	}
	if got := os.Getenv("RPA_TEST_DOTENV"); got != "from-file" {
		t.Errorf("RPA_TEST_DOTENV = %q", got)
	}
}

func TestNaverCredentialsMissing(t *testing.T) {
	setupTestConfig(t)
	t.Setenv("NAVER_CLIENT_ID", "")
	t.Setenv("NAVER_CLIENT_SECRET", "")

	_, _, err := NaverCredentials()
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestNaverCredentialsFromConfig(t *testing.T) {
	setupTestConfig(t)
	t.Setenv("NAVER_CLIENT_ID", "")
	t.Setenv("NAVER_CLIENT_SECRET", "")
	viper.Set("naver.client_id", "cfg-id")
	viper.Set("naver.client_secret", "cfg-secret")

	id, secret, err := NaverCredentials()
	if err != nil {
		t.Fatal(err)
	}
	if id != "cfg-id" || secret != "cfg-secret" {
		t.Errorf("got %q/%q", id, secret)
	}
}

func TestNaverCredentialsEnvWins(t *testing.T) {
	setupTestConfig(t)
	t.Setenv("NAVER_CLIENT_ID", "env-id")
	t.Setenv("NAVER_CLIENT_SECRET", "env-secret")
	viper.Set("naver.client_id", "cfg-id")

	id, _, err := NaverCredentials()
	if err != nil {
		t.Fatal(err)
	}
	if id != "env-id" {
		t.Errorf("id = %q, want env value", id)
	}
}

func TestValidateNoAPIKey(t *testing.T) {
	setupTestConfig(t)
	t.Setenv("OPENAI_API_KEY", "")
	viper.Set("provider", "openai")

	issues := Validate()
	hasError := false
	for _, issue := range issues {
		if issue.Severity == "error" && strings.Contains(issue.Message, "OPENAI_API_KEY") {
			hasError = true
		}
	}
	if !hasError {
		t.Error("expected error about missing API key")
	}
}

func TestValidateDisplayRange(t *testing.T) {
	setupTestConfig(t)
	viper.Set("search.display", 500)

	issues := Validate()
	found := false
	for _, issue := range issues {
		if issue.Key == "search.display" && issue.Severity == "warning" {
			found = true
		}
	}
	if !found {
		t.Error("expected warning for out of range display")
	}
}

func TestToEnv(t *testing.T) {
	setupTestConfig(t)
	viper.Set("model", "gpt-4o")
	viper.Set("api_keys.openai", "sk-test")
	viper.Set("naver.client_id", "abc")

	env := ToEnv()
	if env["RPA_PROVIDER"] != "openai" {
		t.Errorf("RPA_PROVIDER = %q", env["RPA_PROVIDER"])
	}
	if env["RPA_MODEL"] != "gpt-4o" {
		t.Errorf("RPA_MODEL = %q", env["RPA_MODEL"])
	}
	if env["OPENAI_API_KEY"] != "sk-test" {
		t.Errorf("OPENAI_API_KEY = %q", env["OPENAI_API_KEY"])
	}
	if env["NAVER_CLIENT_ID"] != "abc" {
		t.Errorf("NAVER_CLIENT_ID = %q", env["NAVER_CLIENT_ID"])
	}
}

func TestSetAndGet(t *testing.T) {
	setupTestConfig(t)

	if err := Set("search.query", "노트북"); err != nil {
		t.Fatal(err)
	}
	if got := Get("search.query"); got != "노트북" {
		t.Errorf("Get(search.query) = %q", got)
	}
	if _, err := os.Stat(ConfigPath()); err != nil {
		t.Errorf("config file not written: %v", err)
	}
}

func TestShowConfigMasksSecrets(t *testing.T) {
	setupTestConfig(t)
	viper.Set("api_keys.openai", "sk-abcdefghijklmnop")

	out := ShowConfig()
	if strings.Contains(out, "sk-abcdefghijklmnop") {
		t.Error("ShowConfig should mask the API key")
	}
	if !strings.Contains(out, "gpt-4o-mini") {
		t.Error("ShowConfig should contain the model")
	}
}

func TestWizardInteractive(t *testing.T) {
	setupTestConfig(t)

	input := strings.NewReader("my-id\nmy-secret\n1\nsk-key\n\nnotebook\n")
	if err := Wizard(input); err != nil {
		t.Fatal(err)
	}

	if viper.GetString("naver.client_id") != "my-id" {
		t.Errorf("client_id = %q", viper.GetString("naver.client_id"))
	}
	if viper.GetString("api_keys.openai") != "sk-key" {
		t.Errorf("api key = %q", viper.GetString("api_keys.openai"))
	}
	if viper.GetString("search.query") != "notebook" {
		t.Errorf("query = %q", viper.GetString("search.query"))
	}
}

func TestResetConfig(t *testing.T) {
	setupTestConfig(t)
	viper.Set("provider", "ollama")
	if err := SaveConfig(); err != nil {
		t.Fatal(err)
	}

	if err := ResetConfig(); err != nil {
		t.Fatal(err)
	}
	if viper.GetString("provider") != "openai" {
		t.Errorf("provider should reset to default, got %q", viper.GetString("provider"))
	}
}

func TestConfigPath(t *testing.T) {
	path := ConfigPath()
	if !strings.Contains(path, ".rpa") || !strings.HasSuffix(path, "config.yaml") {
		t.Errorf("unexpected path: %q", path)
	}
}
