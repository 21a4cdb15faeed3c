package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variable names for credentials.
const (
	EnvPageSpeedAPIKey = "PAGESPEED_API_KEY"
	EnvJiraBaseURL     = "JIRA_BASE_URL"
	EnvJiraUsername    = "JIRA_USERNAME"
	EnvJiraAPIToken    = "JIRA_API_TOKEN"
	EnvJiraProjectKey  = "JIRA_PROJECT_KEY"
)

// Secrets holds credentials that never belong in the YAML file.
type Secrets struct {
	PageSpeedAPIKey string
	JiraBaseURL     string
	JiraUsername    string
	JiraAPIToken    string
	JiraProjectKey  string
}

// LoadEnv loads variables from the given .env files into the process
// environment. Variables that are already set are not overridden and
// missing files are ignored. With no arguments, ".env" is tried.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// SecretsFromEnv reads credentials from the process environment.
func SecretsFromEnv() Secrets {
	return Secrets{
		PageSpeedAPIKey: os.Getenv(EnvPageSpeedAPIKey),
		JiraBaseURL:     os.Getenv(EnvJiraBaseURL),
		JiraUsername:    os.Getenv(EnvJiraUsername),
		JiraAPIToken:    os.Getenv(EnvJiraAPIToken),
		JiraProjectKey:  os.Getenv(EnvJiraProjectKey),
	}
}

// JiraSettings combines the file settings with environment credentials.
// Environment values win over the file.
func JiraSettings(file JiraConfig, secrets Secrets) (JiraConfig, string, error) {
	result := file
	if secrets.JiraBaseURL != "" {
		result.BaseURL = secrets.JiraBaseURL
	}
	if secrets.JiraUsername != "" {
		result.Username = secrets.JiraUsername
	}
	if secrets.JiraProjectKey != "" {
		result.ProjectKey = secrets.JiraProjectKey
	}
	if result.BaseURL == "" || result.Username == "" || result.ProjectKey == "" || secrets.JiraAPIToken == "" {
		return result, "", ErrMissingJiraCredentials
	}
	return result, secrets.JiraAPIToken, nil
}
