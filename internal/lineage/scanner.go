package lineage

import (
	"context"

	"sniffer.dev/regression-sniffer/internal/model"
	"sniffer.dev/regression-sniffer/internal/pattern"
)

// Scanner walks downstream history for backports and correlates them with upstream
type Scanner struct {
	Downstream History
	Upstream   History
	Log        Logger
	Progress   Progress
}

// Result is the outcome of one downstream scan. A nil *Result means the scan
// has not run; a non-nil Result may still be Empty.
type Result struct {
	Commits []model.Commit
}

// Empty reports whether no backport commits were found
func (r *Result) Empty() bool {
	return r != nil && len(r.Commits) == 0
}

// Scan finds every downstream commit carrying a cherry-pick trailer (limited to
// from...HEAD when from is set), builds its record and marks references that are
// already backported.
func (s *Scanner) Scan(ctx context.Context, from string) *Result {
	log := s.Log
	if log == nil {
		log = NopLogger
	}
	progress := s.Progress
	if progress == nil {
		progress = NopProgress
	}

	log.Info("🔍 Searching for backported commits...")
	candidates, err := s.Downstream.GrepLog(ctx, pattern.AnySHA, pattern.CherryPick, from)
	if err != nil {
		log.Warn("Unable to search downstream history: %v", err)
		candidates = nil
	}

	result := &Result{Commits: make([]model.Commit, 0, len(candidates))}
	if len(candidates) == 0 {
		log.Info("No backported commits found.")
		return result
	}

	log.Info("✅ Found %d backported commits", len(candidates))
	log.Info("📊 Processing commit details...")

	progress.Start(len(candidates))
	for i, sha := range candidates {
		message, err := s.Downstream.CommitMessage(ctx, sha)
		if err != nil {
			log.Warn("Unable to read downstream commit %s: %v", sha, err)
		}
		result.Commits = append(result.Commits,
			Build(ctx, s.Upstream, log, sha, s.Downstream.CommitURL(sha), message))
		progress.Update(i + 1)
	}
	progress.Complete()
	log.Info("✅ Commit processing completed")

	MarkBackported(result.Commits)
	return result
}

// MarkBackported sets Backported on every reference that some commit in commits
// has cherry-picked. It must run after all records of a scan are built.
func MarkBackported(commits []model.Commit) {
	picked := make(map[string]struct{})
	for _, commit := range commits {
		for _, cp := range commit.CherryPicks {
			picked[cp.SHA] = struct{}{}
		}
	}

	for i := range commits {
		markRefs(commits[i].FollowUps, picked)
		markRefs(commits[i].Reverts, picked)
	}
}

func markRefs(refs []model.Reference, picked map[string]struct{}) {
	for i := range refs {
		if _, ok := picked[refs[i].SHA]; ok {
			refs[i].Backported = model.Bool(true)
		}
	}
}
