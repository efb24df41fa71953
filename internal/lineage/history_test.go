package lineage_test

import (
	"context"
	"errors"
	"fmt"

	"sniffer.dev/regression-sniffer/internal/pattern"
)

type fakeCommit struct {
	sha     string
	message string
}

// fakeHistory greps an in-memory log with the same templates git would use
type fakeHistory struct {
	repo      string
	commits   []fakeCommit
	grepCalls []string
	failGrep  map[string]bool
}

func newFakeHistory(repo string, commits ...fakeCommit) *fakeHistory {
	return &fakeHistory{repo: repo, commits: commits, failGrep: map[string]bool{}}
}

func (h *fakeHistory) GrepLog(_ context.Context, sha string, templates pattern.Templates, _ string) ([]string, error) {
	expr := templates.Expand(sha)
	h.grepCalls = append(h.grepCalls, expr)
	if h.failGrep[expr] {
		return nil, errors.New("git log failed")
	}

	re, err := templates.Compile(sha)
	if err != nil {
		return nil, err
	}

	var shas []string
	for _, c := range h.commits {
		if re.MatchString(c.message) {
			shas = append(shas, c.sha)
		}
	}
	return shas, nil
}

func (h *fakeHistory) CommitMessage(_ context.Context, sha string) (string, error) {
	for _, c := range h.commits {
		if c.sha == sha {
			return c.message, nil
		}
	}
	return "", fmt.Errorf("unknown commit %s", sha)
}

func (h *fakeHistory) CommitURL(sha string) string {
	return "https://github.com/" + h.repo + "/commit/" + sha
}
