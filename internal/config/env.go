package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"sniffer.dev/regression-sniffer/internal/jira"
)

// AppName names the configuration and state directories
const AppName = "regression-sniffer"

// Environment variables holding the API tokens
const (
	JiraTokenEnv   = "JIRA_API_TOKEN"
	GitHubTokenEnv = "GITHUB_API_TOKEN"
)

// EnvFiles returns the dotenv files in precedence order
func EnvFiles(cwd, home string) []string {
	return []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(home, ".config", AppName, ".env"),
		filepath.Join(home, ".env."+AppName),
		filepath.Join(home, ".env"),
	}
}

// DefaultEnvFiles returns EnvFiles for the working and home directories
func DefaultEnvFiles() []string {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return EnvFiles(cwd, home)
}

// LoadEnv exports the variables of every readable file in files. The real
// environment always wins, and earlier files win over later ones. It returns
// the files that were read.
func LoadEnv(files []string) []string {
	var loaded []string
	for _, file := range files {
		envMap, err := godotenv.Read(file)
		if err != nil {
			continue
		}
		loaded = append(loaded, file)
		for k, v := range envMap {
			if _, exists := os.LookupEnv(k); !exists {
				_ = os.Setenv(k, v)
			}
		}
	}
	return loaded
}

// NewEnv returns a viper instance reading option defaults from the environment
func NewEnv() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("jira_url", jira.DefaultURL)
	v.SetDefault("github_hostname", "")

	for _, k := range []string{
		"component", "release", "epic", "upstream", "downstream", "label",
		"cleanup", "nocolor", "dry", "nodefaults",
		"jira_url", "github_hostname", "jira_api_token", "github_api_token",
	} {
		_ = v.BindEnv(k)
	}
	return v
}
