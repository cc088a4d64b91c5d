package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ConfigIssue represents a validation finding.
type ConfigIssue struct {
	Key      string `json:"key"`
	Severity string `json:"severity"` // "error", "warning", "info"
	Message  string `json:"message"`
	Fix      string `json:"fix,omitempty"`
}

// Wizard runs the interactive setup wizard.
// If reader is nil, reads from os.Stdin.
func Wizard(reader io.Reader) error {
	if reader == nil {
		reader = os.Stdin
	}
	scanner := bufio.NewScanner(reader)
	ask := func(prompt string) string {
		fmt.Print(prompt)
		scanner.Scan()
		return strings.TrimSpace(scanner.Text())
	}

	fmt.Println("rpakit setup")
	fmt.Println(strings.Repeat("-", 48))
	fmt.Println()

	fmt.Println("Step 1/3: Search API")
	if id := ask("  Client ID (empty to skip): "); id != "" {
		viper.Set("naver.client_id", id)
		if secret := ask("  Client secret: "); secret != "" {
			viper.Set("naver.client_secret", secret)
		}
		fmt.Println("  Search credentials saved")
	} else {
		fmt.Println("  Skipped")
	}
	fmt.Println()

	fmt.Println("Step 2/3: Language model")
	fmt.Println("  [1] OpenAI")
	fmt.Println("  [2] Ollama (local, OpenAI-compatible)")
	fmt.Println("  [3] Skip for now")
	switch ask("  Choice: ") {
	case "1":
		viper.Set("provider", "openai")
		if key := ask("  Paste your OpenAI API key (sk-...): "); key != "" {
			viper.Set("api_keys.openai", key)
			fmt.Println("  API key saved")
		}
	case "2":
		viper.Set("provider", "ollama")
		if model := ask("  Model (default: llama3.1): "); model != "" {
			viper.Set("model", model)
		} else {
			viper.Set("model", "llama3.1")
		}
		fmt.Println("  Ollama configured")
	default:
		fmt.Println("  Skipped")
	}
	fmt.Println()

	fmt.Println("Step 3/3: Workbook")
	if path := ask(fmt.Sprintf("  Workbook path (default: %s): ", viper.GetString("workbook.path"))); path != "" {
		viper.Set("workbook.path", path)
	}
	if query := ask(fmt.Sprintf("  Search keyword (default: %s): ", viper.GetString("search.query"))); query != "" {
		viper.Set("search.query", query)
	}
	fmt.Println()

	if err := SaveConfig(); err != nil {
		return fmt.Errorf("could not save config: %w", err)
	}

	fmt.Println("Done.")
	fmt.Printf("Config file: %s\n", ConfigPath())
	fmt.Println("Next: rpa doctor, then rpa refresh")
	return nil
}

// WizardNonInteractive sets up config with defaults only (no user input).
func WizardNonInteractive() error {
	setDefaults()
	viper.Set("provider", viper.GetString("provider"))
	viper.Set("model", viper.GetString("model"))
	viper.Set("workbook.path", viper.GetString("workbook.path"))
	return SaveConfig()
}

// Validate checks config values and returns a list of issues.
func Validate() []ConfigIssue {
	var issues []ConfigIssue

	if _, _, err := NaverCredentials(); err != nil {
		issues = append(issues, ConfigIssue{
			Key:      "naver.client_id",
			Severity: "error",
			Message:  "NAVER_CLIENT_ID / NAVER_CLIENT_SECRET are not set",
			Fix:      "add them to .env or: rpa config set naver.client_id <id>",
		})
	} else {
		issues = append(issues, ConfigIssue{
			Key:      "naver.client_id",
			Severity: "info",
			Message:  "search API credentials configured",
		})
	}

	provider := viper.GetString("provider")
	switch provider {
	case "openai":
		if _, err := GetAPIKey(provider); err != nil {
			issues = append(issues, ConfigIssue{
				Key:      "provider",
				Severity: "error",
				Message:  fmt.Sprintf("provider is %q but OPENAI_API_KEY is not set", provider),
				Fix:      "export OPENAI_API_KEY=sk-...\nOr: rpa config set api_keys.openai sk-...",
			})
		} else {
			issues = append(issues, ConfigIssue{
				Key:      "provider",
				Severity: "info",
				Message:  "OpenAI API key configured",
			})
		}
	case "ollama":
		issues = append(issues, ConfigIssue{
			Key:      "provider",
			Severity: "info",
			Message:  "Ollama configured (no API key needed)",
		})
	default:
		issues = append(issues, ConfigIssue{
			Key:      "provider",
			Severity: "error",
			Message:  fmt.Sprintf("unknown provider %q", provider),
			Fix:      "rpa config set provider openai",
		})
	}

	if d := viper.GetInt("search.display"); d < 1 || d > 100 {
		issues = append(issues, ConfigIssue{
			Key:      "search.display",
			Severity: "warning",
			Message:  fmt.Sprintf("search.display is %d, the API accepts 1-100", d),
			Fix:      "rpa config set search.display 20",
		})
	}

	wb := viper.GetString("workbook.path")
	if _, err := os.Stat(wb); os.IsNotExist(err) {
		issues = append(issues, ConfigIssue{
			Key:      "workbook.path",
			Severity: "warning",
			Message:  fmt.Sprintf("workbook %s does not exist yet — it will be created on the first refresh", wb),
		})
	}

	return issues
}

// ToEnv returns all config values as a map of env var name -> value.
func ToEnv() map[string]string {
	env := make(map[string]string)

	if p := viper.GetString("provider"); p != "" {
		env["RPA_PROVIDER"] = p
	}
	if m := viper.GetString("model"); m != "" {
		env["RPA_MODEL"] = m
	}
	if k := viper.GetString("api_keys.openai"); k != "" {
		env["OPENAI_API_KEY"] = k
	}
	if id := viper.GetString("naver.client_id"); id != "" {
		env["NAVER_CLIENT_ID"] = id
	}
	if s := viper.GetString("naver.client_secret"); s != "" {
		env["NAVER_CLIENT_SECRET"] = s
	}
	if p := viper.GetString("workbook.path"); p != "" {
		env["RPA_WORKBOOK_PATH"] = p
	}
	if q := viper.GetString("search.query"); q != "" {
		env["RPA_SEARCH_QUERY"] = q
	}

	return env
}

// Set sets a config value and saves to disk.
func Set(key, value string) error {
	viper.Set(key, value)
	return SaveConfig()
}

// Get retrieves a config value.
func Get(key string) string {
	return viper.GetString(key)
}

// ResetConfig deletes the config file and restores defaults.
func ResetConfig() error {
	path := ConfigPath()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not delete config: %w", err)
	}
	viper.Reset()
	setDefaults()
	return nil
}

// SaveConfig writes the current config to ~/.rpa/config.yaml.
func SaveConfig() error {
	dir := configDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}

	path := filepath.Join(dir, "config.yaml")
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("could not write config: %w", err)
	}

	// Secrets live in this file
	os.Chmod(path, 0600)
	return nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// ShowConfig returns a formatted string of the current configuration.
func ShowConfig() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Config: %s\n\n", ConfigPath()))

	sb.WriteString("AI\n")
	sb.WriteString(fmt.Sprintf("  provider:  %s\n", viper.GetString("provider")))
	sb.WriteString(fmt.Sprintf("  model:     %s\n", viper.GetString("model")))
	if k := viper.GetString("api_keys.openai"); k != "" {
		sb.WriteString(fmt.Sprintf("  key:       %s\n", mask(k)))
	}
	sb.WriteString("\n")

	sb.WriteString("Search\n")
	if id := viper.GetString("naver.client_id"); id != "" {
		sb.WriteString(fmt.Sprintf("  client_id: %s\n", mask(id)))
	}
	sb.WriteString(fmt.Sprintf("  query:     %s\n", viper.GetString("search.query")))
	sb.WriteString(fmt.Sprintf("  display:   %d\n", viper.GetInt("search.display")))
	sb.WriteString(fmt.Sprintf("  sort:      %s\n", viper.GetString("search.sort")))
	sb.WriteString("\n")

	sb.WriteString("Workbook\n")
	sb.WriteString(fmt.Sprintf("  path:      %s\n", viper.GetString("workbook.path")))
	if d := viper.GetString("workbook.backup_dir"); d != "" {
		sb.WriteString(fmt.Sprintf("  backups:   %s\n", d))
	}
	sb.WriteString("\n")

	return sb.String()
}

func mask(s string) string {
	return s[:min(6, len(s))] + "****"
}
