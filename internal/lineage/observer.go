package lineage

import (
	"context"

	"sniffer.dev/regression-sniffer/internal/pattern"
)

// History is a read-only view of one repository's commit log
type History interface {
	// GrepLog returns the SHAs of commits whose message matches the templates
	// expanded for sha, optionally limited to from...HEAD.
	GrepLog(ctx context.Context, sha string, templates pattern.Templates, from string) ([]string, error)
	// CommitMessage returns the full message of a commit
	CommitMessage(ctx context.Context, sha string) (string, error)
	// CommitURL returns the web URL of a commit
	CommitURL(sha string) string
}

// Logger receives informational output and degraded-query warnings
type Logger interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

// Progress observes a long running scan
type Progress interface {
	Start(total int)
	Update(done int)
	Complete()
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Debug(string, ...interface{}) {}

type nopProgress struct{}

func (nopProgress) Start(int)  {}
func (nopProgress) Update(int) {}
func (nopProgress) Complete()  {}

// NopLogger discards everything
var NopLogger Logger = nopLogger{}

// NopProgress discards progress updates
var NopProgress Progress = nopProgress{}
