package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func boxWidth(width int) int {
	if width <= 0 {
		width = 50
	}
	if width > defaultWidth {
		width = defaultWidth
	}
	return width
}

// Panel draws lines inside a rounded border.
// ╭─────────────────────────────╮
// │ $ git push origin main      │
// │ Push the branch to origin   │
// ╰─────────────────────────────╯
func Panel(lines []string, width int, border lipgloss.Color) string {
	w := boxWidth(width)
	return PanelStyle.BorderForeground(border).Width(w - 4).Render(strings.Join(lines, "\n"))
}

// CommandPanel renders a proposed command with its explanation. Dangerous
// commands get a warning line and a red border.
func CommandPanel(cmd, explanation string, dangerous bool, width int) string {
	inner := boxWidth(width) - 6
	lines := []string{CommandStyle.Render("$ " + cmd)}
	if explanation != "" {
		lines = append(lines, ExplanationStyle.Render(Truncate(explanation, inner)))
	}
	border := ColorAccent
	if dangerous {
		lines = append(lines, WarnStyle.Render(IconWarn+" This command may be destructive"))
		border = ColorError
	}
	return Panel(lines, width, border)
}

// CommandOutput renders the combined output of an executed command. A
// non-zero exit code is reported below the output.
func CommandOutput(output string, exitCode int) string {
	var sb strings.Builder
	output = strings.TrimRight(output, "\n")
	if output != "" {
		for _, line := range strings.Split(output, "\n") {
			sb.WriteString("  ")
			sb.WriteString(OutputStyle.Render(line))
			sb.WriteString("\n")
		}
	}
	if exitCode != 0 {
		sb.WriteString(ErrorStyle.Render(fmt.Sprintf("  exit code %d", exitCode)))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Skipped renders a one-line notice for a command that did not run.
func Skipped(cmd, reason string) string {
	return MetaStyle.Render(fmt.Sprintf("  skipped %s (%s)", cmd, reason))
}

// ErrorLine renders a single user-facing error line.
func ErrorLine(msg string) string {
	return IconError + " " + ErrorStyle.Render("Error: ") + ErrorMsgStyle.Render(msg)
}

// HintLine renders a remediation hint under an error.
func HintLine(hint string) string {
	return MetaStyle.Render("  " + hint)
}

// ToolActivity renders a single line for an internal tool call
// 📄 read_file: go.mod (12ms)
func ToolActivity(icon, name, subtitle string, d time.Duration) string {
	meta := ""
	if d > 0 {
		meta = MetaStyle.Render(fmt.Sprintf(" (%s)", FormatDuration(d)))
	}
	if subtitle != "" {
		subtitle = ": " + subtitle
	}
	return fmt.Sprintf("%s %s%s%s", icon, TitleStyle.Render(name), MetaStyle.Render(subtitle), meta)
}
