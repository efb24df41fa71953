// Package tui provides the terminal output of regression-sniffer.
//
// It handles:
//   - Structured logging to the console and a rotating log file (Splog)
//   - Terminal styling and colors (using lipgloss)
//   - Scan progress indicators (bubbletea on a TTY, plain lines otherwise)
//   - The end-of-run summary of tracked commits
package tui
