package config

import (
	"os"
	"path/filepath"
	"strings"
)

const defaultSecretsPath = "/etc/wetta/secrets.env"

// secretsFile returns the first existing env-style secrets file, or "" when
// there is none. The DB password never has to live in the YAML config.
func secretsFile() string {
	candidates := make([]string, 0, 3)
	if explicit := strings.TrimSpace(os.Getenv("APP_SECRETS_FILE")); explicit != "" {
		candidates = append(candidates, explicit)
	}
	if credDir := strings.TrimSpace(os.Getenv("CREDENTIALS_DIRECTORY")); credDir != "" {
		credName := strings.TrimSpace(os.Getenv("APP_SECRETS_CREDENTIAL_NAME"))
		if credName == "" {
			credName = "wetta-secrets"
		}
		candidates = append(candidates, filepath.Join(credDir, credName))
	}
	candidates = append(candidates, defaultSecretsPath)

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// envKey maps APP_DB_HOST to db_host.
func envKey(s string) string {
	return strings.TrimPrefix(strings.ToLower(s), "app_")
}
