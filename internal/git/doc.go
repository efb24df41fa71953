// Package git provides the repository operations regression-sniffer relies on.
//
// It wraps git command execution and go-git for:
//   - Cloning the upstream and downstream repositories into the working directory
//   - Searching commit messages with PCRE patterns (git log --grep)
//   - Reading full commit messages and resolving revisions
//
// This package should be the only place where direct git commands are executed.
package git
