// Package lineage correlates downstream backport commits with the upstream
// commits that follow up on or revert the change they were cherry-picked from.
//
// It handles:
//   - Extracting cherry-pick provenance from a commit message (Build)
//   - Searching upstream history for follow-ups and reverts of each cherry-pick
//   - Classifying every reference once, with reverts taking precedence
//   - Scanning downstream history for backports and marking references that
//     were themselves backported (Scanner)
//
// The package never talks to a terminal directly; progress and warnings are
// reported through the Logger and Progress observers.
package lineage
