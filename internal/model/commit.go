// Package model defines the commit lineage records shared by the scanner, the
// reconciliation engine and the persisted state.
package model

import (
	"fmt"
	"net/url"
	"strings"

	snifferrors "sniffer.dev/regression-sniffer/internal/errors"
)

// Reference is one follow-up or revert commit found in upstream history.
// Backported and Waived are nil until a later stage resolves them.
type Reference struct {
	SHA        string `json:"sha"`
	Message    string `json:"message"`
	URL        string `json:"url"`
	Backported *bool  `json:"backported,omitempty"`
	Waived     *bool  `json:"waived,omitempty"`
}

// IsBackported reports whether the reference is known to be cherry-picked downstream
func (r Reference) IsBackported() bool {
	return r.Backported != nil && *r.Backported
}

// IsWaived reports whether the reference was explicitly waived
func (r Reference) IsWaived() bool {
	return r.Waived != nil && *r.Waived
}

// CherryPick points at the upstream commit a downstream commit was copied from
type CherryPick struct {
	SHA string `json:"sha"`
	URL string `json:"url"`
}

// PullRequest summarises the downstream pull request that introduced a commit
type PullRequest struct {
	Number int    `json:"number"`
	URL    string `json:"url"`
	Waived *bool  `json:"waived,omitempty"`
}

// Commit is a downstream backport commit together with its lineage
type Commit struct {
	SHA         string       `json:"sha"`
	URL         string       `json:"url"`
	CherryPicks []CherryPick `json:"cherryPicks"`
	Message     string       `json:"message"`
	FollowUps   []Reference  `json:"followUps"`
	Reverts     []Reference  `json:"reverts"`
	Tracker     *Tracker     `json:"tracker,omitempty"`
	PR          *PullRequest `json:"pr,omitempty"`
}

// Headline returns the first line of the commit message
func (c *Commit) Headline() string {
	return Headline(c.Message)
}

// References returns follow-ups followed by reverts
func (c *Commit) References() []Reference {
	refs := make([]Reference, 0, len(c.FollowUps)+len(c.Reverts))
	refs = append(refs, c.FollowUps...)
	return append(refs, c.Reverts...)
}

// HasUnresolved reports whether any reference has not had its waiver resolved yet
func (c *Commit) HasUnresolved() bool {
	for _, ref := range c.References() {
		if ref.Waived == nil {
			return true
		}
	}
	return false
}

// Outstanding returns references that are neither backported nor waived
func (c *Commit) Outstanding() []Reference {
	var out []Reference
	for _, ref := range c.References() {
		if !ref.IsBackported() && !ref.IsWaived() {
			out = append(out, ref)
		}
	}
	return out
}

// Validate checks the commit against the persisted schema
func (c *Commit) Validate() error {
	if c.SHA == "" {
		return snifferrors.NewStateError("sha", "must not be empty")
	}
	for i, cp := range c.CherryPicks {
		if cp.SHA == "" {
			return snifferrors.NewStateError(fmt.Sprintf("%s.cherryPicks[%d].sha", c.SHA, i), "must not be empty")
		}
	}
	for i, ref := range c.FollowUps {
		if err := ref.validate(fmt.Sprintf("%s.followUps[%d]", c.SHA, i)); err != nil {
			return err
		}
	}
	for i, ref := range c.Reverts {
		if err := ref.validate(fmt.Sprintf("%s.reverts[%d]", c.SHA, i)); err != nil {
			return err
		}
	}
	if c.Tracker != nil {
		if err := c.Tracker.Validate(); err != nil {
			return fmt.Errorf("%s.tracker: %w", c.SHA, err)
		}
	}
	if c.PR != nil {
		if _, err := ParseURL(c.PR.URL); err != nil {
			return snifferrors.NewStateError(c.SHA+".pr.url", err.Error())
		}
	}
	return nil
}

func (r Reference) validate(field string) error {
	if r.SHA == "" {
		return snifferrors.NewStateError(field+".sha", "must not be empty")
	}
	if _, err := ParseURL(r.URL); err != nil {
		return snifferrors.NewStateError(field+".url", err.Error())
	}
	return nil
}

// Headline returns the first line of a commit message
func Headline(message string) string {
	headline, _, _ := strings.Cut(message, "\n")
	return strings.TrimSpace(headline)
}

// ParseURL parses an absolute URL, rejecting relative or empty values
func ParseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%q is not an absolute URL", raw)
	}
	return u, nil
}

// Bool returns a pointer to v
func Bool(v bool) *bool {
	return &v
}
