// Package config manages application configuration from files, .env files and environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
	APIKeys  struct {
		OpenAI string `mapstructure:"openai"`
	} `mapstructure:"api_keys"`
	AI struct {
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"ai"`
	Naver struct {
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
		BaseURL      string `mapstructure:"base_url"`
	} `mapstructure:"naver"`
	Workbook struct {
		Path      string `mapstructure:"path"`
		BackupDir string `mapstructure:"backup_dir"`
	} `mapstructure:"workbook"`
	Search struct {
		Query     string `mapstructure:"query"`
		Display   int    `mapstructure:"display"`
		Sort      string `mapstructure:"sort"`
		StripTags bool   `mapstructure:"strip_tags"`
	} `mapstructure:"search"`
	History struct {
		Path    string `mapstructure:"path"`
		Enabled bool   `mapstructure:"enabled"`
	} `mapstructure:"history"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// Load reads the configuration from ~/.rpa/config.yaml and environment variables.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir())

	setDefaults()

	viper.SetEnvPrefix("RPA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	bindEnv()

	// A missing file is fine; a broken one is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("could not read %s: %w", ConfigPath(), err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("provider", "openai")
	viper.SetDefault("model", "gpt-4o-mini")
	viper.SetDefault("workbook.path", "genai_rpa.xlsx")
	viper.SetDefault("search.query", "포켄스")
	viper.SetDefault("search.display", 20)
	viper.SetDefault("search.sort", "date")
	viper.SetDefault("search.strip_tags", true)
	viper.SetDefault("history.enabled", true)
	viper.SetDefault("history.path", filepath.Join(configDir(), "history.jsonl"))
	viper.SetDefault("log.level", "info")
}

// envKeys have no default, so viper only sees their RPA_ variables when bound.
var envKeys = []string{
	"api_keys.openai",
	"ai.base_url",
	"naver.client_id",
	"naver.client_secret",
	"naver.base_url",
	"workbook.backup_dir",
}

func bindEnv() {
	for _, key := range envKeys {
		_ = viper.BindEnv(key)
	}
}

// LoadDotEnv loads .env files into the process environment. Variables that are
// already set win. Missing files are ignored; with no paths, ./.env is tried.
func LoadDotEnv(paths ...string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	var loaded []string
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return loaded, err
		}
		loaded = append(loaded, p)
	}
	return loaded, nil
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".rpa"
	}
	return filepath.Join(home, ".rpa")
}

// Dir returns the directory holding config.yaml and the run history.
func Dir() string {
	return configDir()
}
