// Package testhelpers provides fixtures shared by the package tests: scratch
// git repositories and httptest doubles of the GitHub and Jira REST APIs.
package testhelpers

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// GitRepo represents a Git repository for testing purposes.
type GitRepo struct {
	Dir string
}

// NewGitRepo initializes a new Git repository in the specified directory using 'git init'.
func NewGitRepo(dir string) (*GitRepo, error) {
	repo := &GitRepo{Dir: dir}

	// Use git -c flags to avoid reading global config and set local configs
	cmd := exec.Command("git", "-c", "init.defaultBranch=main", "-c", "core.autocrlf=false", "init", dir, "-b", "main")
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to init repo: %w", err)
	}

	// Configure Git user (required for commits)
	if err := repo.RunGitCommand("config", "user.name", "Test User"); err != nil {
		return nil, err
	}
	if err := repo.RunGitCommand("config", "user.email", "test@example.com"); err != nil {
		return nil, err
	}
	return repo, nil
}

// NewTestGitRepo creates a repository under t.TempDir, failing the test on error.
// Tests are skipped when git is not installed.
func NewTestGitRepo(t *testing.T, name string) *GitRepo {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	repo, err := NewGitRepo(filepath.Join(t.TempDir(), name))
	if err != nil {
		t.Fatalf("failed to create git repo: %v", err)
	}
	return repo
}

// RunGitCommand executes a git command and returns an error if it fails.
// Uses GIT_CONFIG_GLOBAL=/dev/null to avoid reading global config.
func (r *GitRepo) RunGitCommand(args ...string) error {
	_, err := r.RunGitCommandAndGetOutput(args...)
	return err
}

// RunGitCommandAndGetOutput executes a git command and returns its trimmed output.
func (r *GitRepo) RunGitCommandAndGetOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s failed: %s: %w", strings.Join(args, " "), output, err)
	}
	return strings.TrimSpace(string(output)), nil
}

// Commit records an empty commit with message and returns its SHA
func (r *GitRepo) Commit(message string) (string, error) {
	if err := r.RunGitCommand("commit", "--allow-empty", "--quiet", "-m", message); err != nil {
		return "", err
	}
	return r.GetCurrentSHA()
}

// MustCommit is Commit for tests
func (r *GitRepo) MustCommit(t *testing.T, message string) string {
	t.Helper()
	sha, err := r.Commit(message)
	if err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
	return sha
}

// GetCurrentSHA returns the SHA of HEAD
func (r *GitRepo) GetCurrentSHA() (string, error) {
	return r.RunGitCommandAndGetOutput("rev-parse", "HEAD")
}

// SupportsPerlRegexp reports whether the installed git was built with PCRE
func (r *GitRepo) SupportsPerlRegexp() bool {
	return r.RunGitCommand("log", "--perl-regexp", "--grep", `\d`, "-1") == nil
}
