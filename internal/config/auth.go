package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// ErrMissingCredentials is returned when an API credential is not configured.
var ErrMissingCredentials = errors.New("missing credentials")

// NaverCredentials returns the search API client id and secret, checking
// environment variables first and falling back to the config file.
func NaverCredentials() (string, string, error) {
	id := os.Getenv("NAVER_CLIENT_ID")
	if id == "" {
		id = viper.GetString("naver.client_id")
	}
	secret := os.Getenv("NAVER_CLIENT_SECRET")
	if secret == "" {
		secret = viper.GetString("naver.client_secret")
	}

	if id == "" || secret == "" {
		return "", "", fmt.Errorf("%w: NAVER_CLIENT_ID or NAVER_CLIENT_SECRET is not set — add them to .env or run 'rpa config set naver.client_id ...'", ErrMissingCredentials)
	}
	return id, secret, nil
}

// GetAPIKey retrieves the API key for the given AI provider, checking environment
// variables first and falling back to the config file.
func GetAPIKey(provider string) (string, error) {
	switch provider {
	case "openai":
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			return key, nil
		}
		if key := viper.GetString("api_keys.openai"); key != "" {
			return key, nil
		}
		return "", fmt.Errorf("%w: OPENAI_API_KEY not found — set it in .env or in ~/.rpa/config.yaml", ErrMissingCredentials)

	case "ollama":
		return "", nil

	default:
		return "", fmt.Errorf("no API key management for provider %q", provider)
	}
}
