package tui

import (
	"os"
	"path/filepath"
)

// GetLogFilePath returns the path to the log file.
// If SNIFFER_LOG_FILE is set, uses that path.
// Otherwise, uses ~/.regression-sniffer/logs/regression-sniffer.log
func GetLogFilePath() string {
	if customPath := os.Getenv("SNIFFER_LOG_FILE"); customPath != "" {
		return customPath
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if we can't get home dir
		return "regression-sniffer.log"
	}

	return filepath.Join(homeDir, ".regression-sniffer", "logs", "regression-sniffer.log")
}
