package git

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	snifferrors "sniffer.dev/regression-sniffer/internal/errors"
	"sniffer.dev/regression-sniffer/internal/pattern"
)

// Repository is a local clone of one GitHub repository
type Repository struct {
	Owner string
	Name  string
	Dir   string

	runner *CommandRunner

	// Synchronize go-git operations to prevent concurrent packfile access
	mu   sync.Mutex
	repo *gogit.Repository
}

// NewRepository returns a handle for owner/name cloned (or to be cloned) into dir
func NewRepository(owner, name, dir string) *Repository {
	return &Repository{
		Owner:  owner,
		Name:   name,
		Dir:    dir,
		runner: NewCommandRunner(dir),
	}
}

// ParseOwnerRepo splits an "owner/repo" slug
func ParseOwnerRepo(slug string) (string, string, error) {
	owner, name, ok := strings.Cut(slug, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("invalid repository %q: expected owner/repo", slug)
	}
	return owner, name, nil
}

// FullName returns owner/name
func (r *Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// RemoteURL returns the HTTPS clone URL
func (r *Repository) RemoteURL() string {
	return fmt.Sprintf("https://github.com/%s/%s.git", r.Owner, r.Name)
}

// CommitURL returns the GitHub web URL of a commit
func (r *Repository) CommitURL(sha string) string {
	return fmt.Sprintf("https://github.com/%s/%s/commit/%s", r.Owner, r.Name, sha)
}

// Exists reports whether the clone directory is present
func (r *Repository) Exists() bool {
	_, err := os.Stat(r.Dir)
	return err == nil
}

// Clone clones the repository into Dir unless the directory already exists.
// It reports whether a clone was performed.
func (r *Repository) Clone(ctx context.Context) (bool, error) {
	if r.Exists() {
		return false, nil
	}
	parent := NewCommandRunner("")
	if _, err := parent.Run(ctx, "clone", "--quiet", r.RemoteURL(), r.Dir); err != nil {
		return false, fmt.Errorf("failed to clone %s: %w", r.FullName(), err)
	}
	return true, nil
}

// Remove deletes the clone directory
func (r *Repository) Remove() error {
	r.mu.Lock()
	r.repo = nil
	r.mu.Unlock()

	if err := os.RemoveAll(r.Dir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", r.Dir, err)
	}
	return nil
}

// GrepLog lists the SHAs of commits whose message matches templates expanded
// for sha. The match is case-insensitive PCRE. When from is set only from...HEAD
// is searched. No matches yield an empty slice.
func (r *Repository) GrepLog(ctx context.Context, sha string, templates pattern.Templates, from string) ([]string, error) {
	if !r.Exists() {
		return nil, fmt.Errorf("%w: %s", snifferrors.ErrNotCloned, r.Dir)
	}

	args := []string{
		"--no-pager", "log",
		"--pretty=format:%H",
		"--regexp-ignore-case",
		"--perl-regexp",
		"--grep", templates.Expand(sha),
	}
	if from != "" {
		args = append(args, from+"...HEAD")
	}
	return r.runner.RunLines(ctx, args...)
}

// CommitMessage returns the full message of the commit identified by sha
func (r *Repository) CommitMessage(_ context.Context, sha string) (string, error) {
	repo, err := r.open()
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	hash, err := repo.ResolveRevision(plumbing.Revision(sha))
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", sha, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return "", fmt.Errorf("failed to get commit %s: %w", sha, err)
	}
	return commit.Message, nil
}

// ResolveRevision resolves a tag, branch or SHA to a full commit SHA
func (r *Repository) ResolveRevision(rev string) (string, error) {
	repo, err := r.open()
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", rev, err)
	}
	return hash.String(), nil
}

func (r *Repository) open() (*gogit.Repository, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.repo != nil {
		return r.repo, nil
	}
	repo, err := gogit.PlainOpen(r.Dir)
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) || errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", snifferrors.ErrNotCloned, r.Dir)
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	r.repo = repo
	return repo, nil
}
