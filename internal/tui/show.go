package tui

import (
	"strings"

	"sniffer.dev/regression-sniffer/internal/model"
)

// ShowCommits prints every tracked commit with its cherry-picks, pull request
// and outstanding references. Follow-ups are yellow and reverts red.
func ShowCommits(splog *Splog, commits []model.Commit) {
	for _, commit := range commits {
		picks := make([]string, 0, len(commit.CherryPicks))
		for _, cp := range commit.CherryPicks {
			picks = append(picks, ColorMagenta(cp.URL))
		}
		splog.Info("Commit: %s - %s", ColorBlue(commit.URL), strings.Join(picks, "\n"))

		if commit.PR != nil {
			splog.Info("PR: %s", ColorGreen(commit.PR.URL))
		} else {
			splog.Info("PR: %s", ColorDim("none"))
		}
		if commit.Tracker != nil {
			splog.Info("Issue: %s (%s)", commit.Tracker.URL, commit.Tracker.Status)
		}

		for _, ref := range commit.FollowUps {
			splog.Info("%s", ColorYellow(ref.URL))
		}
		for _, ref := range commit.Reverts {
			splog.Info("%s", ColorRed(ref.URL))
		}
		splog.Newline()
	}
}
