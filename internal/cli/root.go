// Package cli wires the regression-sniffer command line to its actions.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sniffer.dev/regression-sniffer/internal/actions/sniff"
	"sniffer.dev/regression-sniffer/internal/config"
	"sniffer.dev/regression-sniffer/internal/git"
	"sniffer.dev/regression-sniffer/internal/github"
	"sniffer.dev/regression-sniffer/internal/jira"
	"sniffer.dev/regression-sniffer/internal/runtime"
	"sniffer.dev/regression-sniffer/internal/tui"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	var opts config.Options
	env := config.NewEnv()
	envFiles := config.DefaultEnvFiles()

	rootCmd := &cobra.Command{
		Use:   "regression-sniffer",
		Short: "🔍 Find upstream follow-ups and reverts of backported commits",
		Long: `regression-sniffer searches upstream history for follow-up and revert commits
of changes that were backported downstream, and files Jira issues to track the
ones that are still missing.

Options default to the COMPONENT, RELEASE, EPIC, UPSTREAM, DOWNSTREAM, LABEL,
CLEANUP, NOCOLOR and DRY environment variables unless NODEFAULTS is set.
JIRA_API_TOKEN and GITHUB_API_TOKEN are required and may be set in
./.env, ~/.config/regression-sniffer/.env, ~/.env.regression-sniffer or ~/.env.`,
		Version:      fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			config.LoadEnv(envFiles)
			opts.ApplyEnv(env)
			opts.ApplyDefaults()
			tui.SetNoColor(opts.NoColor)
			return opts.Validate()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, env, envFiles, opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.Component, "component", "c", "", "component name")
	flags.StringVarP(&opts.Release, "release", "r", "", "RHEL major release version, e.g. 8, 9, 10")
	flags.StringVarP(&opts.Epic, "epic", "e", "", "Jira epic name")
	flags.StringVarP(&opts.Downstream, "downstream", "d", "", "GitHub downstream source-git org/repo")
	flags.StringVarP(&opts.From, "from", "f", "", "upstream version (tag) from which to start searching for backported commits")
	flags.StringVarP(&opts.Upstream, "upstream", "u", "", "GitHub upstream org/repo (default <component>/<component>)")
	flags.StringVarP(&opts.Label, "label", "L", "", "Jira issue label that indicates issues reported by this tool (default <component>-followup)")
	flags.BoolVarP(&opts.Cleanup, "cleanup", "w", false, "cleanup cloned repositories")
	flags.BoolVarP(&opts.NoColor, "nocolor", "n", false, "disable color output")
	flags.BoolVarP(&opts.Dry, "dry", "x", false, "dry run")

	return rootCmd
}

func run(cmd *cobra.Command, env *viper.Viper, envFiles []string, opts config.Options) error {
	jiraToken, githubToken, err := config.Tokens(env, envFiles)
	if err != nil {
		return err
	}

	splog, err := tui.NewSplog(cmd.OutOrStdout(), tui.GetLogFilePath())
	if err != nil {
		splog, _ = tui.NewSplog(cmd.OutOrStdout(), "")
		splog.Warn("File logging disabled: %v", err)
	}
	defer splog.Close()

	ctx, err := runtime.NewContext(cmd.Context(), splog)
	if err != nil {
		return err
	}
	if ctx.StatePath, err = config.DefaultStatePath(opts.Component); err != nil {
		return err
	}

	ctx.Jira = jira.NewClient(opts.JiraURL, jiraToken, opts.Dry, splog)

	owner, repo, err := git.ParseOwnerRepo(opts.Downstream)
	if err != nil {
		return err
	}
	if ctx.GitHub, err = github.NewClient(ctx, opts.GitHubHostname, githubToken, owner, repo); err != nil {
		return err
	}

	return sniff.Action(ctx, sniff.Options{
		Component:  opts.Component,
		Release:    opts.Release,
		Epic:       opts.Epic,
		Label:      opts.Label,
		Upstream:   opts.Upstream,
		Downstream: opts.Downstream,
		From:       opts.From,
		Cleanup:    opts.Cleanup,
		Dry:        opts.Dry,
	})
}
