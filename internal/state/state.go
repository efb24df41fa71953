// Package state persists the record of what has already been reported for one
// upstream/downstream pair, so that later runs only act on new signals.
package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	snifferrors "sniffer.dev/regression-sniffer/internal/errors"
	"sniffer.dev/regression-sniffer/internal/model"
)

// Snapshot is the durable state of one tracked component
type Snapshot struct {
	Upstream   string         `json:"upstream"`
	Downstream string         `json:"downstream"`
	Commits    []model.Commit `json:"commits"`
}

// New returns an empty snapshot for the repository pair
func New(upstream, downstream string) *Snapshot {
	return &Snapshot{
		Upstream:   upstream,
		Downstream: downstream,
		Commits:    []model.Commit{},
	}
}

// Load reads the snapshot at path. A missing file yields an empty snapshot for
// the given repositories; unreadable JSON or schema violations are errors
// wrapping ErrInvalidState.
func Load(path, upstream, downstream string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(upstream, downstream), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file %s: %w", path, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", snifferrors.ErrInvalidState, path, err)
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if snap.Commits == nil {
		snap.Commits = []model.Commit{}
	}
	return &snap, nil
}

// Validate checks the snapshot and every commit in it
func (s *Snapshot) Validate() error {
	if _, err := model.ParseURL(s.Upstream); err != nil {
		return snifferrors.NewStateError("upstream", err.Error())
	}
	if _, err := model.ParseURL(s.Downstream); err != nil {
		return snifferrors.NewStateError("downstream", err.Error())
	}
	for i := range s.Commits {
		if err := s.Commits[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the snapshot as indented JSON, replacing path atomically
func (s *Snapshot) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write state file %s: %w", path, err)
	}
	return nil
}

// Find returns the commit with sha, or nil
func (s *Snapshot) Find(sha string) *model.Commit {
	for i := range s.Commits {
		if s.Commits[i].SHA == sha {
			return &s.Commits[i]
		}
	}
	return nil
}

// Add appends commit and returns a pointer to the stored copy
func (s *Snapshot) Add(commit model.Commit) *model.Commit {
	s.Commits = append(s.Commits, commit)
	return &s.Commits[len(s.Commits)-1]
}

// Merge folds already-reported commits (typically rebuilt from tickets) into
// the snapshot. Unknown commits are appended; known commits take the seed's
// tracker, since the ticketing system owns the ticket lifecycle.
func (s *Snapshot) Merge(seed []model.Commit) {
	for _, commit := range seed {
		existing := s.Find(commit.SHA)
		if existing == nil {
			s.Add(commit)
			continue
		}
		if commit.Tracker != nil {
			existing.Tracker = commit.Tracker
		}
	}
}
