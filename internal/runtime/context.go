package runtime

import (
	"context"
	"fmt"
	"os"

	"sniffer.dev/regression-sniffer/internal/github"
	"sniffer.dev/regression-sniffer/internal/jira"
	"sniffer.dev/regression-sniffer/internal/lineage"
	"sniffer.dev/regression-sniffer/internal/tui"
)

// Context provides access to clients and output for commands
type Context struct {
	context.Context

	Splog  *tui.Splog
	Jira   *jira.Client
	GitHub *github.Client

	// WorkDir is where repositories are cloned
	WorkDir string
	// StatePath is the persisted state of the component
	StatePath string
	// Progress overrides the scan progress display
	Progress lineage.Progress
}

// NewContext creates a context cloning into the current directory
func NewContext(ctx context.Context, splog *tui.Splog) (*Context, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return &Context{
		Context: ctx,
		Splog:   splog,
		WorkDir: workDir,
	}, nil
}

// ScanProgress returns the progress display for downstream scans
func (c *Context) ScanProgress() lineage.Progress {
	if c.Progress != nil {
		return c.Progress
	}
	return tui.NewScanProgress(c.Splog)
}
