// Package sniff runs one regression-sniffer pass: seed state from tracked
// tickets, scan the downstream clone for backports and reconcile what is new.
package sniff

import (
	"errors"
	"fmt"

	"sniffer.dev/regression-sniffer/internal/config"
	snifferrors "sniffer.dev/regression-sniffer/internal/errors"
	"sniffer.dev/regression-sniffer/internal/git"
	"sniffer.dev/regression-sniffer/internal/lineage"
	"sniffer.dev/regression-sniffer/internal/model"
	"sniffer.dev/regression-sniffer/internal/reconcile"
	"sniffer.dev/regression-sniffer/internal/runtime"
	"sniffer.dev/regression-sniffer/internal/state"
	"sniffer.dev/regression-sniffer/internal/tui"
)

// Options contains options for a sniff run
type Options struct {
	Component  string
	Release    string
	Epic       string
	Label      string
	Upstream   string
	Downstream string
	From       string
	Cleanup    bool
	Dry        bool
}

// Action seeds the state from tracked tickets, scans the downstream history,
// reconciles the result and writes the state back
func Action(ctx *runtime.Context, opts Options) error {
	splog := ctx.Splog

	upstream, err := openRepository(ctx.WorkDir, opts.Upstream)
	if err != nil {
		return fmt.Errorf("invalid upstream: %w", err)
	}
	downstream, err := openRepository(ctx.WorkDir, opts.Downstream)
	if err != nil {
		return fmt.Errorf("invalid downstream: %w", err)
	}

	seed, err := ctx.Jira.SearchTrackedIssues(ctx, opts.Component, opts.Label)
	switch {
	case errors.Is(err, snifferrors.ErrInvalidResponse):
		return err
	case err != nil:
		splog.Warn("Unable to fetch tracked issues: %v", err)
		seed = nil
	}

	snap, err := state.Load(ctx.StatePath, upstream.RemoteURL(), downstream.RemoteURL())
	if err != nil {
		return err
	}
	snap.Merge(seed)
	save(ctx, snap, opts.Dry)

	for _, repo := range []*git.Repository{upstream, downstream} {
		cloned, err := repo.Clone(ctx)
		if err != nil {
			return err
		}
		if !cloned {
			splog.Info("%s is already cloned", repo.RemoteURL())
		}
	}

	if opts.From != "" {
		if _, err := downstream.ResolveRevision(opts.From); err != nil {
			return fmt.Errorf("unknown --from revision %q in %s: %w", opts.From, downstream.FullName(), err)
		}
	}

	scanner := &lineage.Scanner{
		Downstream: downstream,
		Upstream:   upstream,
		Log:        splog,
		Progress:   ctx.ScanProgress(),
	}
	scan := scanner.Scan(ctx, opts.From)

	engine := &reconcile.Engine{
		Tickets:      ctx.Jira,
		PullRequests: ctx.GitHub,
		Log:          splog,
		Options: reconcile.Options{
			Release:   opts.Release,
			Component: opts.Component,
			Epic:      opts.Epic,
			Label:     opts.Label,
		},
	}
	result := engine.Reconcile(ctx, snap, scan.Commits)

	splog.Newline()
	tui.ShowCommits(splog, snap.Commits)
	splog.Info("Tracked %d commits: %d new, %d updated, %d issues created, %d reopened",
		len(snap.Commits), result.Added, result.Updated, result.Created, result.Reopened)
	if outstanding := countOutstanding(snap.Commits); outstanding > 0 {
		splog.Tip("%d follow-ups and reverts are still waiting for a backport", outstanding)
	}

	save(ctx, snap, opts.Dry)

	if opts.Cleanup {
		for _, repo := range []*git.Repository{downstream, upstream} {
			if err := repo.Remove(); err != nil {
				splog.Warn("%v", err)
			}
		}
	}
	return nil
}

func openRepository(workDir, slug string) (*git.Repository, error) {
	owner, name, err := git.ParseOwnerRepo(slug)
	if err != nil {
		return nil, err
	}
	return git.NewRepository(owner, name, config.CloneDir(workDir, owner, name)), nil
}

// save writes the state file. Failures are reported but never abort a run.
func save(ctx *runtime.Context, snap *state.Snapshot, dry bool) {
	// A dry snapshot holds placeholder trackers that no ticket backs.
	if dry {
		ctx.Splog.Info("Would write to %s", ctx.StatePath)
		return
	}
	ctx.Splog.Info("💾 Writing to %s", ctx.StatePath)
	if err := snap.Save(ctx.StatePath); err != nil {
		ctx.Splog.Error("%v", err)
	}
}

func countOutstanding(commits []model.Commit) int {
	n := 0
	for i := range commits {
		n += len(commits[i].Outstanding())
	}
	return n
}
