package lineage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"sniffer.dev/regression-sniffer/internal/lineage"
	"sniffer.dev/regression-sniffer/internal/model"
)

type recordingProgress struct {
	total   int
	updates []int
	done    bool
}

func (p *recordingProgress) Start(total int) { p.total = total }
func (p *recordingProgress) Update(done int) { p.updates = append(p.updates, done) }
func (p *recordingProgress) Complete()       { p.done = true }

func TestScanner(t *testing.T) {
	ctx := context.Background()

	t.Run("empty downstream yields an empty but non-nil result", func(t *testing.T) {
		downstream := newFakeHistory("down/repo", fakeCommit{sha: "d1", message: "regular commit"})
		progress := &recordingProgress{}
		scanner := &lineage.Scanner{Downstream: downstream, Upstream: newFakeHistory("up/repo"), Progress: progress}

		result := scanner.Scan(ctx, "")

		require.NotNil(t, result)
		require.True(t, result.Empty())
		require.Zero(t, progress.total)
		require.False(t, progress.done)
	})

	t.Run("nil result is not empty", func(t *testing.T) {
		var result *lineage.Result
		require.False(t, result.Empty())
	})

	t.Run("marks a follow-up that was cherry-picked by another backport", func(t *testing.T) {
		upstream := newFakeHistory("up/repo",
			fakeCommit{sha: "xxxx999", message: "fix: follow-up to aaaa111"},
			fakeCommit{sha: "yyyy888", message: "another follow-up to aaaa111"},
			fakeCommit{sha: "aaaa111", message: "feature"},
		)
		downstream := newFakeHistory("down/repo",
			fakeCommit{sha: "dA", message: "fix: follow-up\n(cherry picked from commit xxxx999)\n"},
			fakeCommit{sha: "dB", message: "feature\n(cherry picked from commit aaaa111)\n"},
		)
		progress := &recordingProgress{}
		scanner := &lineage.Scanner{Downstream: downstream, Upstream: upstream, Progress: progress}

		result := scanner.Scan(ctx, "")

		require.Len(t, result.Commits, 2)
		require.Equal(t, 2, progress.total)
		require.Equal(t, []int{1, 2}, progress.updates)
		require.True(t, progress.done)

		b := result.Commits[1]
		require.Equal(t, "dB", b.SHA)
		require.Equal(t, "https://github.com/down/repo/commit/dB", b.URL)
		require.Len(t, b.FollowUps, 2)
		require.Equal(t, "xxxx999", b.FollowUps[0].SHA)
		require.True(t, b.FollowUps[0].IsBackported())
		require.Equal(t, "yyyy888", b.FollowUps[1].SHA)
		require.Nil(t, b.FollowUps[1].Backported)
	})
}

func TestMarkBackported(t *testing.T) {
	t.Run("marks reverts as well as follow-ups", func(t *testing.T) {
		commits := []model.Commit{
			{SHA: "a", CherryPicks: []model.CherryPick{{SHA: "X"}}},
			{SHA: "b", Reverts: []model.Reference{{SHA: "X"}}, FollowUps: []model.Reference{{SHA: "Y"}}},
		}

		lineage.MarkBackported(commits)

		require.True(t, commits[1].Reverts[0].IsBackported())
		require.Nil(t, commits[1].FollowUps[0].Backported)
	})
}
