package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ScanProgress reports how many downstream commits have been processed
type ScanProgress interface {
	// Start initializes the display for total commits
	Start(total int)
	// Update records that done commits have been processed
	Update(done int)
	// Complete finalizes the display
	Complete()
}

// NewScanProgress creates the appropriate progress display based on TTY availability
func NewScanProgress(splog *Splog) ScanProgress {
	if IsTTY() {
		return NewTTYScanProgress(splog)
	}
	return NewSimpleScanProgress(splog)
}

// SimpleScanProgress logs a line every tenth of the way (non-TTY)
type SimpleScanProgress struct {
	splog    *Splog
	total    int
	lastStep int
}

// NewSimpleScanProgress creates a new line based progress display
func NewSimpleScanProgress(splog *Splog) *SimpleScanProgress {
	return &SimpleScanProgress{splog: splog}
}

func (p *SimpleScanProgress) Start(total int) {
	p.total = total
	p.lastStep = 0
}

func (p *SimpleScanProgress) Update(done int) {
	if p.total <= 0 {
		return
	}
	step := done * 10 / p.total
	if step <= p.lastStep {
		return
	}
	p.lastStep = step
	p.splog.Info("  Processing commits %d/%d (%d%%)", done, p.total, done*100/p.total)
}

func (p *SimpleScanProgress) Complete() {}

// TTYScanProgress renders an animated progress bar with bubbletea (TTY)
type TTYScanProgress struct {
	splog   *Splog
	program *tea.Program
}

// NewTTYScanProgress creates a new TTY progress display
func NewTTYScanProgress(splog *Splog) *TTYScanProgress {
	return &TTYScanProgress{splog: splog}
}

func (p *TTYScanProgress) Start(total int) {
	// Lookup warnings would tear the bar, keep them out of the console while it runs
	p.splog.SetQuiet(true)
	p.program = tea.NewProgram(newScanProgressModel(total), tea.WithInput(nil), tea.WithOutput(os.Stdout))

	// Run program in background
	go func() {
		_, _ = p.program.Run()
	}()
}

func (p *TTYScanProgress) Update(done int) {
	if p.program == nil {
		return
	}
	p.program.Send(scanUpdateMsg{done: done})
}

func (p *TTYScanProgress) Complete() {
	if p.program == nil {
		return
	}
	p.program.Send(scanCompleteMsg{})
	p.program.Wait()
	p.program = nil
	p.splog.SetQuiet(false)
}

// Internal bubbletea model for the scan progress bar
type scanProgressModel struct {
	total    int
	done     int
	finished bool
	spinner  spinner.Model
	bar      progress.Model
	dimStyle lipgloss.Style
}

type scanUpdateMsg struct {
	done int
}

type scanCompleteMsg struct{}

func newScanProgressModel(total int) *scanProgressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &scanProgressModel{
		total:    total,
		spinner:  s,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		dimStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

func (m *scanProgressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *scanProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case scanUpdateMsg:
		m.done = msg.done
		return m, nil

	case scanCompleteMsg:
		m.done = m.total
		m.finished = true
		return m, tea.Quit
	}

	return m, nil
}

func (m *scanProgressModel) percent() float64 {
	if m.total <= 0 {
		return 1
	}
	return float64(m.done) / float64(m.total)
}

func (m *scanProgressModel) View() string {
	var b strings.Builder
	if m.finished {
		b.WriteString("✓ ")
	} else {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
	}
	b.WriteString("Processing commits ")
	b.WriteString(m.bar.ViewAs(m.percent()))
	b.WriteString(m.dimStyle.Render(fmt.Sprintf(" %d/%d commits", m.done, m.total)))
	b.WriteString("\n")
	return b.String()
}
