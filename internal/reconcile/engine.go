// Package reconcile merges freshly scanned backport commits into the persisted
// state and drives the ticket lifecycle as a side effect.
package reconcile

import (
	"context"
	"slices"

	"sniffer.dev/regression-sniffer/internal/github"
	"sniffer.dev/regression-sniffer/internal/jira"
	"sniffer.dev/regression-sniffer/internal/model"
	"sniffer.dev/regression-sniffer/internal/state"
)

// ReopenStatus is the status a resolved ticket is moved back to
const ReopenStatus = "In Progress"

// Tickets files, links and transitions tickets
type Tickets interface {
	CreateIssue(ctx context.Context, req jira.IssueRequest) (*model.Tracker, error)
	CreateExternalLink(ctx context.Context, key string, kind model.LinkKind, title, url string) error
	TransitionIssue(ctx context.Context, key, status string) error
}

// PullRequests finds the pull request that introduced a commit
type PullRequests interface {
	FindPullRequestForCommit(ctx context.Context, sha string) (*github.PullRequestInfo, error)
}

// Logger receives progress and degraded-call warnings
type Logger interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

// Options are the ticket fields shared by every ticket filed in a run
type Options struct {
	Release   string
	Component string
	Epic      string
	Label     string
}

// Engine reconciles scans against persisted state
type Engine struct {
	Tickets      Tickets
	PullRequests PullRequests
	Log          Logger
	Options      Options
}

// Result counts what a reconciliation pass did
type Result struct {
	// Added is the number of commits appended to the state
	Added int
	// Updated is the number of known commits that gained references
	Updated int
	// Created is the number of tickets filed
	Created int
	// Reopened is the number of resolved tickets moved back to ReopenStatus
	Reopened int
	// Links is the number of external links attached to existing tickets
	Links int
	// Skipped is the number of scanned commits with nothing left to resolve
	Skipped int
}

// Reconcile merges scanned into snap, in order. Only commits with at least one
// reference whose waiver is unresolved are considered. References are never
// removed from snap.
func (e *Engine) Reconcile(ctx context.Context, snap *state.Snapshot, scanned []model.Commit) Result {
	var result Result
	for i := range scanned {
		commit := scanned[i]
		commit.FollowUps = slices.Clone(commit.FollowUps)
		commit.Reverts = slices.Clone(commit.Reverts)
		if !commit.HasUnresolved() {
			result.Skipped++
			continue
		}

		pr := e.findPullRequest(ctx, commit.SHA)
		resolveWaivers(&commit, pr)

		if existing := snap.Find(commit.SHA); existing != nil {
			e.update(ctx, existing, &commit, pr, &result)
			continue
		}
		e.add(ctx, snap, &commit, &result)
	}
	return result
}

func (e *Engine) findPullRequest(ctx context.Context, sha string) *github.PullRequestInfo {
	pr, err := e.PullRequests.FindPullRequestForCommit(ctx, sha)
	if err != nil {
		e.log().Warn("Unable to look up the pull request of %s: %v", sha, err)
	}
	return pr
}

// resolveWaivers sets waived on every reference of commit from the pull
// request's waiver marker. Without a pull request nothing is waived.
func resolveWaivers(commit *model.Commit, pr *github.PullRequestInfo) {
	for _, refs := range [][]model.Reference{commit.FollowUps, commit.Reverts} {
		for i := range refs {
			refs[i].Waived = model.Bool(pr.IsReferenceWaived(refs[i].SHA))
		}
	}
	if pr != nil {
		commit.PR = pr.Summary()
	}
}

func (e *Engine) add(ctx context.Context, snap *state.Snapshot, commit *model.Commit, result *Result) {
	entry := snap.Add(*commit)
	result.Added++
	e.log().Info("📝 New backport %s with %d follow-ups and %d reverts",
		shortSHA(entry.SHA), len(entry.FollowUps), len(entry.Reverts))
	e.createTicket(ctx, entry, result)
}

func (e *Engine) update(ctx context.Context, entry, fresh *model.Commit, pr *github.PullRequestInfo, result *Result) {
	followUps := e.appendUnseen(ctx, entry, &entry.FollowUps, fresh.FollowUps, model.LinkFollowUp, result)
	reverts := e.appendUnseen(ctx, entry, &entry.Reverts, fresh.Reverts, model.LinkRevert, result)
	if followUps || reverts {
		result.Updated++
	}

	if pr != nil {
		entry.PR = pr.Summary()
	}

	// An earlier run may have failed to file the ticket
	if entry.Tracker == nil && len(entry.References()) > 0 {
		e.createTicket(ctx, entry, result)
	}
}

// appendUnseen appends every reference of fresh that entry does not know yet to
// dst. With a ticket attached, each one reopens a resolved ticket and is linked.
func (e *Engine) appendUnseen(ctx context.Context, entry *model.Commit, dst *[]model.Reference, fresh []model.Reference, kind model.LinkKind, result *Result) bool {
	appended := false
	for _, ref := range fresh {
		if knows(entry, ref.SHA) {
			continue
		}
		*dst = append(*dst, ref)
		appended = true
		e.log().Info("🔗 New %s %s for %s", kind, shortSHA(ref.SHA), shortSHA(entry.SHA))

		if entry.Tracker == nil {
			continue
		}
		e.reopen(ctx, entry.Tracker, result)
		if err := e.Tickets.CreateExternalLink(ctx, entry.Tracker.ID, kind, ref.Message, ref.URL); err != nil {
			e.log().Warn("Unable to link %s to %s: %v", shortSHA(ref.SHA), entry.Tracker.ID, err)
			continue
		}
		result.Links++
	}
	return appended
}

// reopen moves a resolved ticket back to ReopenStatus. The local tracker only
// changes once the remote transition succeeded.
func (e *Engine) reopen(ctx context.Context, tracker *model.Tracker, result *Result) {
	if !tracker.IsDone() {
		return
	}
	if err := e.Tickets.TransitionIssue(ctx, tracker.ID, ReopenStatus); err != nil {
		e.log().Warn("Unable to reopen %s: %v", tracker.ID, err)
		return
	}
	tracker.Status = ReopenStatus
	tracker.StatusCategory = model.StatusInProgress
	result.Reopened++
	e.log().Info("🔁 Reopened %s", tracker.ID)
}

func (e *Engine) createTicket(ctx context.Context, entry *model.Commit, result *Result) {
	tracker, err := e.Tickets.CreateIssue(ctx, jira.IssueRequest{
		Release:   e.Options.Release,
		Component: e.Options.Component,
		Epic:      e.Options.Epic,
		Label:     e.Options.Label,
		Commit:    entry,
	})
	if err != nil {
		e.log().Warn("Unable to create a ticket for %s: %v", shortSHA(entry.SHA), err)
		return
	}
	entry.Tracker = tracker
	result.Created++
	e.log().Info("🎫 Created %s for %s", tracker.ID, shortSHA(entry.SHA))
}

func (e *Engine) log() Logger {
	if e.Log == nil {
		return nopLogger{}
	}
	return e.Log
}

// knows checks both lists, so a SHA recorded as a follow-up is never added again as a revert
func knows(entry *model.Commit, sha string) bool {
	for _, ref := range entry.References() {
		if ref.SHA == sha {
			return true
		}
	}
	return false
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Debug(string, ...interface{}) {}
