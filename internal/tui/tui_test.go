package tui_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"sniffer.dev/regression-sniffer/internal/model"
	"sniffer.dev/regression-sniffer/internal/tui"
)

func newBufferSplog(t *testing.T) (*tui.Splog, *bytes.Buffer) {
	t.Helper()
	tui.SetNoColor(true)
	t.Cleanup(func() { tui.SetNoColor(false) })

	var buf bytes.Buffer
	splog, err := tui.NewSplog(&buf, "")
	require.NoError(t, err)
	return splog, &buf
}

func TestSplog(t *testing.T) {
	t.Run("prefixes warnings and errors", func(t *testing.T) {
		splog, buf := newBufferSplog(t)

		splog.Info("plain %d", 1)
		splog.Warn("careful")
		splog.Error("broken: %s", "x")

		require.Equal(t, "plain 1\n⚠️  careful\n❌ broken: x\n", buf.String())
	})

	t.Run("prefixes tips and hides debug output", func(t *testing.T) {
		splog, buf := newBufferSplog(t)

		splog.Debug("noise")
		splog.Tip("run again with --dry")

		require.Equal(t, "💡 run again with --dry\n", buf.String())
	})

	t.Run("shows debug output when DEBUG is set", func(t *testing.T) {
		t.Setenv("DEBUG", "1")
		splog, buf := newBufferSplog(t)

		splog.Debug("details %s", "here")

		require.Equal(t, "details here\n", buf.String())
	})

	t.Run("quiet suppresses console output", func(t *testing.T) {
		splog, buf := newBufferSplog(t)

		splog.SetQuiet(true)
		splog.Info("hidden")
		splog.Newline()
		splog.SetQuiet(false)
		splog.Info("shown")

		require.Equal(t, "shown\n", buf.String())
	})

	t.Run("mirrors messages into the log file", func(t *testing.T) {
		logPath := filepath.Join(t.TempDir(), "logs", "sniffer.log")
		var buf bytes.Buffer
		splog, err := tui.NewSplog(&buf, logPath)
		require.NoError(t, err)

		splog.Debug("only in the file")
		splog.Info("everywhere")
		splog.Tip("a hint")
		splog.SetQuiet(true)
		splog.Warn("while quiet")
		require.NoError(t, splog.Close())

		require.NotContains(t, buf.String(), "only in the file")
		data, err := os.ReadFile(logPath)
		require.NoError(t, err)
		require.Contains(t, string(data), "only in the file")
		require.Contains(t, string(data), "everywhere")
		require.Contains(t, string(data), `level=TIP msg="a hint"`)
		require.Contains(t, string(data), `level=WARN msg="while quiet"`)
		require.NotContains(t, buf.String(), "while quiet")
	})
}

func TestGetLogFilePath(t *testing.T) {
	t.Setenv("SNIFFER_LOG_FILE", "/tmp/custom.log")
	require.Equal(t, "/tmp/custom.log", tui.GetLogFilePath())

	t.Setenv("SNIFFER_LOG_FILE", "")
	t.Setenv("HOME", "/home/tester")
	require.Equal(t, "/home/tester/.regression-sniffer/logs/regression-sniffer.log", tui.GetLogFilePath())
}

func TestShowCommits(t *testing.T) {
	splog, buf := newBufferSplog(t)

	tui.ShowCommits(splog, []model.Commit{
		{
			SHA:         "d1",
			URL:         "https://github.com/down/repo/commit/d1",
			CherryPicks: []model.CherryPick{{SHA: "u1", URL: "https://github.com/up/repo/commit/u1"}},
			PR:          &model.PullRequest{Number: 5, URL: "https://github.com/down/repo/pull/5"},
			Tracker:     &model.Tracker{ID: "RHEL-1", URL: "https://issues.redhat.com/browse/RHEL-1", Status: "New"},
			FollowUps:   []model.Reference{{SHA: "f1", URL: "https://github.com/up/repo/commit/f1"}},
			Reverts:     []model.Reference{{SHA: "r1", URL: "https://github.com/up/repo/commit/r1"}},
		},
		{
			SHA: "d2",
			URL: "https://github.com/down/repo/commit/d2",
		},
	})

	lines := strings.Split(buf.String(), "\n")
	require.Equal(t, []string{
		"Commit: https://github.com/down/repo/commit/d1 - https://github.com/up/repo/commit/u1",
		"PR: https://github.com/down/repo/pull/5",
		"Issue: https://issues.redhat.com/browse/RHEL-1 (New)",
		"https://github.com/up/repo/commit/f1",
		"https://github.com/up/repo/commit/r1",
		"",
		"Commit: https://github.com/down/repo/commit/d2 - ",
		"PR: none",
		"",
		"",
	}, lines)
}

func TestSimpleScanProgress(t *testing.T) {
	splog, buf := newBufferSplog(t)
	progress := tui.NewSimpleScanProgress(splog)

	progress.Start(20)
	for i := 1; i <= 20; i++ {
		progress.Update(i)
	}
	progress.Complete()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 10)
	require.Equal(t, "  Processing commits 2/20 (10%)", lines[0])
	require.Equal(t, "  Processing commits 20/20 (100%)", lines[9])
}
