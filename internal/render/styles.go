// Package render formats assistant output for a line-oriented terminal.
package render

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Colors
var (
	ColorSuccess = lipgloss.Color("#10B981") // green
	ColorError   = lipgloss.Color("#EF4444") // red
	ColorMuted   = lipgloss.Color("#6B7280") // gray
	ColorAccent  = lipgloss.Color("#60A5FA") // blue
	ColorWarn    = lipgloss.Color("#FBBF24") // amber
	ColorText    = lipgloss.Color("#D1D5DB")
	ColorDim     = lipgloss.Color("#9CA3AF")
	ColorBorder  = lipgloss.Color("#374151") // dark gray for borders
)

// Icons
const (
	IconRead    = "\U0001F4C4" // 📄
	IconGlob    = "\U0001F50D" // 🔍
	IconGrep    = "\U0001F50E" // 🔎
	IconWeb     = "\U0001F310" // 🌐
	IconHistory = "\U0001F4DC" // 📜
	IconConfig  = "\u2699"     // ⚙
	IconError   = "\u274C"     // ❌
	IconSuccess = "\u2713"     // ✓
	IconWarn    = "\u26A0"     // ⚠
)

// Styles
var (
	PanelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Padding(0, 1)

	CommandStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#E5E7EB"))

	ExplanationStyle = lipgloss.NewStyle().
				Foreground(ColorDim)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	MetaStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	OutputStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	WarnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWarn)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	ErrorMsgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FCA5A5"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)
)

// FormatSize formats bytes to human readable size
func FormatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatDuration formats duration to human readable string
func FormatDuration(d time.Duration) string {
	switch {
	case d >= time.Second:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
}

// Truncate shortens s to at most width terminal columns, counting wide
// characters as two columns.
func Truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}
