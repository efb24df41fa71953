package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	snifferrors "sniffer.dev/regression-sniffer/internal/errors"
)

func TestValidationError(t *testing.T) {
	stateErr := fmt.Errorf("load: %w", snifferrors.NewStateError("commits[0].sha", "must not be empty"))
	require.ErrorIs(t, stateErr, snifferrors.ErrInvalidState)
	require.NotErrorIs(t, stateErr, snifferrors.ErrInvalidResponse)
	require.Contains(t, stateErr.Error(), "invalid persisted state: commits[0].sha: must not be empty")

	responseErr := snifferrors.NewResponseError("", "bad payload")
	require.ErrorIs(t, responseErr, snifferrors.ErrInvalidResponse)
	require.Equal(t, "invalid response: bad payload", responseErr.Error())
}

func TestMissingTokenError(t *testing.T) {
	err := snifferrors.NewMissingTokenError("GITHUB_API_TOKEN", []string{"./.env", "~/.env"})
	require.ErrorIs(t, err, snifferrors.ErrMissingToken)
	require.Equal(t, "GITHUB_API_TOKEN not set.\nPlease set the GITHUB_API_TOKEN environment variable in './.env' or '~/.env'", err.Error())
}

func TestHTTPError(t *testing.T) {
	for _, tc := range []struct {
		status    int
		temporary bool
	}{
		{400, false},
		{404, false},
		{429, true},
		{500, true},
		{503, true},
	} {
		err := &snifferrors.HTTPError{Service: "Jira", Method: "GET", URL: "/x", StatusCode: tc.status}
		require.Equal(t, tc.temporary, err.Temporary(), "status %d", tc.status)
	}
}

func TestGitCommandError(t *testing.T) {
	cause := errors.New("exit status 128")
	err := snifferrors.NewGitCommandError("git", []string{"log"}, "", "fatal: bad revision", cause)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "stderr: fatal: bad revision")
}
