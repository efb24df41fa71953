// Package pattern holds the regular-expression templates used to find cherry-pick
// trailers, follow-ups and reverts in commit messages.
//
// Every template contains the Placeholder, which is replaced by a literal commit
// SHA (or AnySHA) before matching. Templates are written in the subset shared by
// PCRE (git log --perl-regexp) and Go's RE2 so the same text serves both.
package pattern

import (
	"regexp"
	"strings"
)

// Placeholder is substituted with a commit SHA before a template is used
const Placeholder = "%{sha}%"

// AnySHA matches any commit identifier in a template
const AnySHA = `\S+`

// HexSHA matches abbreviated or full hexadecimal commit identifiers
const HexSHA = `\b[0-9a-f]{5,40}\b`

// commitURLPrefix matches an optional GitHub commit URL in front of a SHA
const commitURLPrefix = `(https:\/\/github\.com\/[\w.-]+\/[\w.-]+\/commit\/)?`

// Templates is an ordered list of alternative templates for one category
type Templates []string

// Categories of templates
var (
	// CherryPick detects the "(cherry picked from commit SHA)" trailer
	CherryPick = Templates{
		`^\(cherry picked from commit (` + Placeholder + `)\) *$`,
	}

	// Mention detects any bare reference to a SHA, optionally as a commit URL
	Mention = Templates{
		commitURLPrefix + `(` + Placeholder + `)`,
	}

	// FollowUp detects "follow-up"/"followup" phrasing referencing a SHA
	FollowUp = Templates{
		`follow-?up *(|:|-|for|to) *` + commitURLPrefix + `(` + Placeholder + `)`,
	}

	// Revert detects "revert(s)"/"This reverts commit" phrasing referencing a SHA
	Revert = Templates{
		`(This)? *reverts? *(commit)? *(|:|-) *` + commitURLPrefix + `(` + Placeholder + `)`,
	}
)

// FollowUpSearch is the combined template used to search for follow-ups.
// Mention alternatives come first, then the explicit follow-up phrasing.
func FollowUpSearch() Templates {
	combined := make(Templates, 0, len(Mention)+len(FollowUp))
	combined = append(combined, Mention...)
	combined = append(combined, FollowUp...)
	return combined
}

// Expand joins the alternatives with "|" and substitutes sha for the placeholder
func (t Templates) Expand(sha string) string {
	return strings.ReplaceAll(strings.Join(t, "|"), Placeholder, sha)
}

// Compile expands the templates for sha and compiles a case-insensitive,
// multi-line Go regular expression.
func (t Templates) Compile(sha string) (*regexp.Regexp, error) {
	return regexp.Compile("(?im)" + t.Expand(sha))
}

// trailerRegexp extracts cherry-pick trailers anywhere in a message, including
// the indented trailers of squashed commits. CherryPick stays anchored for the
// downstream log search.
var trailerRegexp = regexp.MustCompile(`(?i)\(cherry picked from commit (` + HexSHA + `)\)`)

// CherryPickedSHAs returns the SHAs of every cherry-pick trailer in message, in order
func CherryPickedSHAs(message string) []string {
	matches := trailerRegexp.FindAllStringSubmatch(message, -1)
	shas := make([]string, 0, len(matches))
	for _, match := range matches {
		shas = append(shas, strings.ToLower(match[1]))
	}
	return shas
}
