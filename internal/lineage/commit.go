package lineage

import (
	"context"

	"sniffer.dev/regression-sniffer/internal/model"
	"sniffer.dev/regression-sniffer/internal/pattern"
)

// Build constructs the commit record for a downstream commit. Cherry-pick
// trailers are read from message; follow-ups and reverts of every cherry-picked
// commit are searched for in upstream.
//
// A failed upstream query only removes that query's contribution.
func Build(ctx context.Context, upstream History, log Logger, sha, url, message string) model.Commit {
	if log == nil {
		log = NopLogger
	}

	commit := model.Commit{
		SHA:         sha,
		URL:         url,
		Message:     message,
		CherryPicks: CherryPicks(upstream, message),
		FollowUps:   []model.Reference{},
		Reverts:     []model.Reference{},
	}

	var followUps, reverts []model.Reference
	for _, cp := range commit.CherryPicks {
		followUps = append(followUps, search(ctx, upstream, log, cp.SHA, pattern.FollowUpSearch())...)
		reverts = append(reverts, search(ctx, upstream, log, cp.SHA, pattern.Revert)...)
	}

	commit.Reverts = append(commit.Reverts, reverts...)
	commit.FollowUps = RemoveDuplicates(followUps, reverts)
	return commit
}

// CherryPicks extracts the cherry-pick provenance of message, in order
func CherryPicks(upstream History, message string) []model.CherryPick {
	shas := pattern.CherryPickedSHAs(message)
	picks := make([]model.CherryPick, 0, len(shas))
	for _, sha := range shas {
		picks = append(picks, model.CherryPick{SHA: sha, URL: upstream.CommitURL(sha)})
	}
	return picks
}

// RemoveDuplicates drops follow-ups that are also reverts or that repeat an
// earlier follow-up. The first occurrence wins and order is preserved.
func RemoveDuplicates(followUps, reverts []model.Reference) []model.Reference {
	seen := make(map[string]struct{}, len(followUps)+len(reverts))
	for _, revert := range reverts {
		seen[revert.SHA] = struct{}{}
	}

	result := make([]model.Reference, 0, len(followUps))
	for _, followUp := range followUps {
		if _, ok := seen[followUp.SHA]; ok {
			continue
		}
		seen[followUp.SHA] = struct{}{}
		result = append(result, followUp)
	}
	return result
}

func search(ctx context.Context, upstream History, log Logger, sha string, templates pattern.Templates) []model.Reference {
	shas, err := upstream.GrepLog(ctx, sha, templates, "")
	if err != nil {
		log.Warn("Unable to search upstream history for %s: %v", sha, err)
		return nil
	}

	refs := make([]model.Reference, 0, len(shas))
	for _, match := range shas {
		message, err := upstream.CommitMessage(ctx, match)
		if err != nil {
			log.Warn("Unable to read upstream commit %s: %v", match, err)
		}
		refs = append(refs, model.Reference{
			SHA:     match,
			Message: message,
			URL:     upstream.CommitURL(match),
		})
	}
	return refs
}
