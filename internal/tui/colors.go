package tui

import "github.com/charmbracelet/lipgloss"

// ColorRed colors text red
func ColorRed(text string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("1")).
		Render(text)
}

// ColorGreen colors text green
func ColorGreen(text string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("2")).
		Render(text)
}

// ColorYellow colors text yellow
func ColorYellow(text string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("3")).
		Render(text)
}

// ColorBlue colors text blue
func ColorBlue(text string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("4")).
		Render(text)
}

// ColorMagenta colors text magenta
func ColorMagenta(text string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("5")).
		Render(text)
}

// ColorDim renders text in a muted gray
func ColorDim(text string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Render(text)
}
