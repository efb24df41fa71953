package jira_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/require"

	snifferrors "sniffer.dev/regression-sniffer/internal/errors"
	"sniffer.dev/regression-sniffer/internal/jira"
	"sniffer.dev/regression-sniffer/internal/model"
	"sniffer.dev/regression-sniffer/testhelpers"
)

type recordingLogger struct {
	infos []string
	warns []string
}

func (l *recordingLogger) Info(format string, args ...interface{}) {
	l.infos = append(l.infos, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Warn(format string, args ...interface{}) {
	l.warns = append(l.warns, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Debug(string, ...interface{}) {}

func newClient(t *testing.T, config *testhelpers.MockJiraServerConfig, dry bool) (*jira.Client, *recordingLogger) {
	t.Helper()
	server := testhelpers.NewMockJiraServer(t, config)
	log := &recordingLogger{}
	client := jira.NewClient(server.URL, "token", dry, log)
	client.NewBackOff = func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 2)
	}
	return client, log
}

func trackedIssue(key, category string, links ...testhelpers.MockJiraLink) *testhelpers.MockJiraIssue {
	return &testhelpers.MockJiraIssue{
		Key:            key,
		Summary:        "[follow-up to] - core: fix",
		Status:         "New",
		StatusCategory: category,
		Versions:       []string{"CentOS Stream 10"},
		Links:          links,
	}
}

func sampleCommit() *model.Commit {
	return &model.Commit{
		SHA:         "d1",
		URL:         "https://github.com/down/repo/commit/d1",
		Message:     "core: fix\n\n(cherry picked from commit a1)",
		CherryPicks: []model.CherryPick{{SHA: "a1", URL: "https://github.com/up/repo/commit/a1"}},
		FollowUps:   []model.Reference{{SHA: "f1", Message: "core: follow\n\nbody", URL: "https://github.com/up/repo/commit/f1"}},
		Reverts:     []model.Reference{{SHA: "r1", Message: "Revert it", URL: "https://github.com/up/repo/commit/r1"}},
	}
}

func TestLinkTitles(t *testing.T) {
	require.Equal(t, "[follow-up] - core: follow", jira.LinkTitle(model.LinkFollowUp, "core: follow\n\nbody"))

	kind, title, ok := jira.ParseLinkTitle("[cherry-pick] - core: fix")
	require.True(t, ok)
	require.Equal(t, model.LinkCherryPick, kind)
	require.Equal(t, "core: fix", title)

	_, title, ok = jira.ParseLinkTitle("[unknown] - core: fix")
	require.False(t, ok)
	require.Equal(t, "[unknown] - core: fix", title)
}

func TestReleaseVersion(t *testing.T) {
	require.Equal(t, "CentOS Stream 9", jira.ReleaseVersion("9"))
	require.Equal(t, "CentOS Stream 8", jira.ReleaseVersion("8"))
	require.Equal(t, "CentOS Stream 10", jira.ReleaseVersion("7"))
	require.Equal(t, "CentOS Stream 10", jira.ReleaseVersion("eleven"))
	require.Equal(t, "CentOS Stream 10", jira.ReleaseVersion(""))
}

func TestSearchTrackedIssues(t *testing.T) {
	ctx := context.Background()

	t.Run("rebuilds commits from remote links across pages", func(t *testing.T) {
		config := testhelpers.NewMockJiraServerConfig()
		config.PageSize = 1
		config.Issues = []*testhelpers.MockJiraIssue{
			trackedIssue("RHEL-1", "Done",
				testhelpers.MockJiraLink{Title: "[backport] - core: fix", URL: "https://github.com/down/repo/commit/d1"},
				testhelpers.MockJiraLink{Title: "[cherry-pick] - core: fix", URL: "https://github.com/up/repo/commit/a1"},
				testhelpers.MockJiraLink{Title: "[follow-up] - core: follow", URL: "https://github.com/up/repo/commit/f1"},
				testhelpers.MockJiraLink{Title: "[revert] - Revert it", URL: "https://github.com/up/repo/commit/r1"},
				testhelpers.MockJiraLink{Title: "unrelated", URL: "https://example.com/x"},
			),
			trackedIssue("RHEL-2", "To Do",
				testhelpers.MockJiraLink{Title: "[backport] - other", URL: "https://github.com/down/repo/commit/d2"},
			),
		}
		client, _ := newClient(t, config, false)

		commits, err := client.SearchTrackedIssues(ctx, "systemd", "systemd-followup")
		require.NoError(t, err)
		require.Len(t, commits, 2)

		c := commits[0]
		require.Equal(t, "d1", c.SHA)
		require.Equal(t, "https://github.com/down/repo/commit/d1", c.URL)
		require.Equal(t, "core: fix", c.Message)
		require.Equal(t, []model.CherryPick{{SHA: "a1", URL: "https://github.com/up/repo/commit/a1"}}, c.CherryPicks)
		require.Equal(t, "f1", c.FollowUps[0].SHA)
		require.Equal(t, "core: follow", c.FollowUps[0].Message)
		require.Nil(t, c.FollowUps[0].Waived)
		require.Equal(t, "r1", c.Reverts[0].SHA)
		require.Equal(t, "RHEL-1", c.Tracker.ID)
		require.Equal(t, model.StatusDone, c.Tracker.StatusCategory)
		require.Equal(t, client.URL+"/browse/RHEL-1", c.Tracker.URL)
		require.Equal(t, []string{"CentOS Stream 10"}, c.Tracker.Versions)
		require.Equal(t, "d2", commits[1].SHA)

		var search struct {
			JQL string `json:"jql"`
		}
		require.NoError(t, json.Unmarshal([]byte(config.Requests()[0].Body), &search))
		require.Equal(t, "project = RHEL AND component = systemd AND labels in (systemd-followup) ORDER BY created DESC", search.JQL)
	})

	t.Run("skips issues without a backport link", func(t *testing.T) {
		config := testhelpers.NewMockJiraServerConfig()
		config.Issues = []*testhelpers.MockJiraIssue{trackedIssue("RHEL-1", "To Do")}
		client, log := newClient(t, config, false)

		commits, err := client.SearchTrackedIssues(ctx, "systemd", "l")
		require.NoError(t, err)
		require.Empty(t, commits)
		require.Len(t, log.warns, 1)
	})

	t.Run("unknown status category is invalid", func(t *testing.T) {
		config := testhelpers.NewMockJiraServerConfig()
		config.Issues = []*testhelpers.MockJiraIssue{trackedIssue("RHEL-1", "Limbo")}
		client, _ := newClient(t, config, false)

		_, err := client.SearchTrackedIssues(ctx, "systemd", "l")
		require.ErrorIs(t, err, snifferrors.ErrInvalidResponse)
	})

	t.Run("relative link url is invalid", func(t *testing.T) {
		config := testhelpers.NewMockJiraServerConfig()
		config.Issues = []*testhelpers.MockJiraIssue{
			trackedIssue("RHEL-1", "To Do", testhelpers.MockJiraLink{Title: "[backport] - x", URL: "d1"}),
		}
		client, _ := newClient(t, config, false)

		_, err := client.SearchTrackedIssues(ctx, "systemd", "l")
		require.ErrorIs(t, err, snifferrors.ErrInvalidResponse)
	})

	t.Run("retries transient failures", func(t *testing.T) {
		config := testhelpers.NewMockJiraServerConfig()
		config.FailStatus["POST /rest/api/2/search"] = http.StatusServiceUnavailable
		config.FailTimes["POST /rest/api/2/search"] = 1
		client, _ := newClient(t, config, false)

		commits, err := client.SearchTrackedIssues(ctx, "systemd", "l")
		require.NoError(t, err)
		require.Empty(t, commits)
		require.Len(t, config.Requests(), 2)
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		config := testhelpers.NewMockJiraServerConfig()
		config.FailStatus["POST /rest/api/2/search"] = http.StatusBadRequest
		client, _ := newClient(t, config, false)

		_, err := client.SearchTrackedIssues(ctx, "systemd", "l")
		var httpErr *snifferrors.HTTPError
		require.ErrorAs(t, err, &httpErr)
		require.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
		require.Len(t, config.Requests(), 1)
	})
}

func TestCreateIssue(t *testing.T) {
	ctx := context.Background()
	req := jira.IssueRequest{Release: "9", Component: "systemd", Epic: "EPIC-1", Label: "systemd-followup", Commit: sampleCommit()}

	t.Run("creates the issue and its links", func(t *testing.T) {
		config := testhelpers.NewMockJiraServerConfig()
		client, _ := newClient(t, config, false)

		tracker, err := client.CreateIssue(ctx, req)
		require.NoError(t, err)
		require.Equal(t, "RHEL-101", tracker.ID)
		require.Equal(t, client.URL+"/browse/RHEL-101", tracker.URL)
		require.Equal(t, model.StatusToDo, tracker.StatusCategory)
		require.Equal(t, "New", tracker.Status)
		require.Equal(t, []string{"CentOS Stream 9"}, tracker.Versions)
		require.Equal(t, "[follow-up to] - core: fix", tracker.Summary)

		issue := config.Issue("RHEL-101")
		require.Equal(t, []testhelpers.MockJiraLink{
			{Title: "[backport] - core: fix", URL: "https://github.com/down/repo/commit/d1"},
			{Title: "[cherry-pick] - core: fix", URL: "https://github.com/up/repo/commit/a1"},
			{Title: "[follow-up] - core: follow", URL: "https://github.com/up/repo/commit/f1"},
			{Title: "[revert] - Revert it", URL: "https://github.com/up/repo/commit/r1"},
		}, issue.Links)
		require.Equal(t, []interface{}{"systemd-followup"}, issue.Fields["labels"])
		require.Equal(t, map[string]interface{}{"value": "EPIC-1"}, issue.Fields[jira.EpicField])
		require.Equal(t, map[string]interface{}{"key": "RHEL"}, issue.Fields["project"])
	})

	t.Run("dry run performs no mutating calls", func(t *testing.T) {
		config := testhelpers.NewMockJiraServerConfig()
		client, log := newClient(t, config, true)

		tracker, err := client.CreateIssue(ctx, req)
		require.NoError(t, err)
		require.Equal(t, jira.DryRunKey, tracker.ID)
		require.Equal(t, model.StatusToDo, tracker.StatusCategory)
		require.Empty(t, config.Requests())
		require.Contains(t, log.infos, "Would create external link: [revert] - Revert it - https://github.com/up/repo/commit/r1")
	})
}

func TestTransitionIssue(t *testing.T) {
	ctx := context.Background()

	t.Run("matches the target status", func(t *testing.T) {
		config := testhelpers.NewMockJiraServerConfig()
		config.Issues = []*testhelpers.MockJiraIssue{trackedIssue("RHEL-1", "Done")}
		client, _ := newClient(t, config, false)

		require.NoError(t, client.TransitionIssue(ctx, "RHEL-1", "In Progress"))
		require.Equal(t, "In Progress", config.Issue("RHEL-1").StatusCategory)
	})

	t.Run("unknown status is an error", func(t *testing.T) {
		config := testhelpers.NewMockJiraServerConfig()
		config.Issues = []*testhelpers.MockJiraIssue{trackedIssue("RHEL-1", "Done")}
		client, _ := newClient(t, config, false)

		require.Error(t, client.TransitionIssue(ctx, "RHEL-1", "Verified"))
		require.Empty(t, config.MutatingRequests())
	})

	t.Run("dry run", func(t *testing.T) {
		config := testhelpers.NewMockJiraServerConfig()
		client, log := newClient(t, config, true)

		require.NoError(t, client.TransitionIssue(ctx, "RHEL-1", "In Progress"))
		require.Empty(t, config.Requests())
		require.Equal(t, []string{"Would transition issue RHEL-1 to In Progress"}, log.infos)
	})
}
