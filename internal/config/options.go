package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	snifferrors "sniffer.dev/regression-sniffer/internal/errors"
	"sniffer.dev/regression-sniffer/internal/git"
)

// Options are the resolved command line options of one run
type Options struct {
	Component  string
	Release    string
	Epic       string
	Downstream string
	Upstream   string
	From       string
	Label      string
	Cleanup    bool
	NoColor    bool
	Dry        bool

	JiraURL        string
	GitHubHostname string
}

// ApplyEnv fills options that were not given on the command line from the
// environment. Nothing is filled when NODEFAULTS is set.
func (o *Options) ApplyEnv(v *viper.Viper) {
	o.JiraURL = firstNonEmpty(o.JiraURL, v.GetString("jira_url"))
	o.GitHubHostname = firstNonEmpty(o.GitHubHostname, v.GetString("github_hostname"))

	if v.GetString("nodefaults") != "" {
		return
	}

	o.Component = firstNonEmpty(o.Component, v.GetString("component"))
	o.Release = firstNonEmpty(o.Release, v.GetString("release"))
	o.Epic = firstNonEmpty(o.Epic, v.GetString("epic"))
	o.Downstream = firstNonEmpty(o.Downstream, v.GetString("downstream"))
	o.Upstream = firstNonEmpty(o.Upstream, v.GetString("upstream"))
	o.Label = firstNonEmpty(o.Label, v.GetString("label"))
	o.Cleanup = o.Cleanup || v.GetBool("cleanup")
	o.NoColor = o.NoColor || v.GetBool("nocolor")
	o.Dry = o.Dry || v.GetBool("dry")
}

// ApplyDefaults derives the label and upstream repository from the component
// when they are not set
func (o *Options) ApplyDefaults() {
	if o.Label == "" && o.Component != "" {
		o.Label = o.Component + "-followup"
	}
	if o.Upstream == "" && o.Component != "" {
		o.Upstream = o.Component + "/" + o.Component
	}
}

// Validate checks that required options are present and repositories are
// given as owner/repo
func (o *Options) Validate() error {
	var missing []string
	for _, req := range []struct{ name, value string }{
		{"component", o.Component},
		{"release", o.Release},
		{"epic", o.Epic},
		{"downstream", o.Downstream},
	} {
		if strings.TrimSpace(req.value) == "" {
			missing = append(missing, "--"+req.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required option(s) not specified: %s", strings.Join(missing, ", "))
	}

	if _, _, err := git.ParseOwnerRepo(o.Downstream); err != nil {
		return fmt.Errorf("invalid --downstream: %w", err)
	}
	if o.Upstream != "" {
		if _, _, err := git.ParseOwnerRepo(o.Upstream); err != nil {
			return fmt.Errorf("invalid --upstream: %w", err)
		}
	}
	return nil
}

// Tokens returns the Jira and GitHub API tokens. A missing token is a
// MissingTokenError listing files where it may be set.
func Tokens(v *viper.Viper, locations []string) (jiraToken, githubToken string, err error) {
	jiraToken = v.GetString("jira_api_token")
	if jiraToken == "" {
		return "", "", snifferrors.NewMissingTokenError(JiraTokenEnv, displayLocations(locations))
	}
	githubToken = v.GetString("github_api_token")
	if githubToken == "" {
		return "", "", snifferrors.NewMissingTokenError(GitHubTokenEnv, displayLocations(locations))
	}
	return jiraToken, githubToken, nil
}

// StatePath returns the state file of component
func StatePath(home, component string) string {
	return filepath.Join(home, ".config", AppName, component+".json")
}

// DefaultStatePath returns StatePath under the user's home directory
func DefaultStatePath(component string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return StatePath(home, component), nil
}

// CloneDir returns the directory a repository is cloned into
func CloneDir(workDir, owner, repo string) string {
	return filepath.Join(workDir, fmt.Sprintf("abc_%s-%s_cba", owner, repo))
}

func displayLocations(locations []string) []string {
	home, err := os.UserHomeDir()
	out := make([]string, 0, len(locations))
	for _, loc := range locations {
		if err == nil && home != "" && strings.HasPrefix(loc, home+string(filepath.Separator)) {
			loc = "~" + strings.TrimPrefix(loc, home)
		}
		out = append(out, loc)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
