package render

import (
	"strings"
	"testing"
	"time"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 * 1024 * 1024, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := FormatSize(tt.bytes); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{1500 * time.Millisecond, "1.5s"},
		{12 * time.Millisecond, "12ms"},
		{40 * time.Microsecond, "40µs"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate short = %q", got)
	}
	if got := Truncate("abcdefghijkl", 8); got != "abcde..." {
		t.Errorf("Truncate long = %q", got)
	}
	// wide characters count as two columns
	if got := Truncate("日本語テキスト", 7); got != "日本..." {
		t.Errorf("Truncate wide = %q", got)
	}
}

func TestCommandPanel(t *testing.T) {
	out := CommandPanel("ls -la", "List files", false, 60)
	if !strings.Contains(out, "$ ls -la") {
		t.Errorf("panel missing command: %q", out)
	}
	if !strings.Contains(out, "List files") {
		t.Errorf("panel missing explanation: %q", out)
	}
	if strings.Contains(out, "destructive") {
		t.Errorf("safe command should not carry a warning: %q", out)
	}

	out = CommandPanel("rm -rf /", "", true, 60)
	if !strings.Contains(out, "destructive") {
		t.Errorf("dangerous command should carry a warning: %q", out)
	}
}

func TestCommandOutput(t *testing.T) {
	out := CommandOutput("a\nb\n", 0)
	if !strings.Contains(out, "a") || !strings.Contains(out, "b") {
		t.Errorf("output lines missing: %q", out)
	}
	if strings.Contains(out, "exit code") {
		t.Errorf("zero exit should not be reported: %q", out)
	}
	if out := CommandOutput("", 124); !strings.Contains(out, "exit code 124") {
		t.Errorf("non-zero exit not reported: %q", out)
	}
}

func TestMarkdownFallback(t *testing.T) {
	out := Markdown("# Title\n\nsome **bold** text", 60)
	if !strings.Contains(out, "Title") || !strings.Contains(out, "bold") {
		t.Errorf("Markdown dropped content: %q", out)
	}
}
