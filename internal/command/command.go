// Package command turns free-form model text into shell commands.
package command

import (
	"regexp"
	"strings"
)

// Command is a candidate shell invocation proposed by the model.
type Command struct {
	Text             string `json:"command"`
	Explanation      string `json:"explanation,omitempty"`
	AllowlistPattern string `json:"allowlist_pattern,omitempty"`
}

// New builds a Command for text with its suggested allowlist pattern.
func New(text, explanation string) Command {
	text = strings.TrimSpace(text)
	return Command{
		Text:             text,
		Explanation:      explanation,
		AllowlistPattern: SuggestPattern(text),
	}
}

const (
	contextWindow     = 200
	maxExplanationLen = 100
)

var (
	fencedBlock  = regexp.MustCompile("(?s)```(?:bash|sh)\n(.*?)\n```")
	promptLine   = regexp.MustCompile(`(?m)^\$ (.+)$`)
	emphasisMark = regexp.MustCompile("[*_`]")
)

// Extract returns the commands found in text, in order of discovery:
// lines of ```bash and ```sh blocks first, then "$ " prompt lines outside
// those blocks. A command is reported once, at its first occurrence.
// Extract is pure: the same text always yields the same list.
func Extract(text string) []Command {
	var cmds []Command
	blocks := fencedBlock.FindAllStringSubmatchIndex(text, -1)
	seen := make(map[string]bool)
	add := func(line string) {
		if line == "" || seen[line] {
			return
		}
		seen[line] = true
		cmds = append(cmds, New(line, explain(text, line, blocks)))
	}
	for _, m := range blocks {
		for _, line := range strings.Split(text[m[2]:m[3]], "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			add(strings.TrimSpace(strings.TrimPrefix(line, "$ ")))
		}
	}

	for _, m := range promptLine.FindAllStringSubmatchIndex(text, -1) {
		if blockAt(m[0], blocks) != nil {
			continue
		}
		add(strings.TrimSpace(text[m[2]:m[3]]))
	}
	return cmds
}

// blockAt returns the fenced block span containing pos, or nil.
func blockAt(pos int, spans [][]int) []int {
	for _, s := range spans {
		if pos >= s[0] && pos < s[1] {
			return s
		}
	}
	return nil
}

// explain derives a short explanation from the last line of prose before
// the first occurrence of cmd. For a command inside a fenced block the
// prose before the block is used. A bare "$" prompt is skipped.
func explain(text, cmd string, blocks [][]int) string {
	idx := strings.Index(text, cmd)
	if b := blockAt(idx, blocks); b != nil {
		idx = b[0]
	}
	if idx <= 0 {
		return ""
	}
	start := max(0, idx-contextWindow)
	lines := strings.Split(strings.TrimSpace(text[start:idx]), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" || line == "$" {
			continue
		}
		line = strings.TrimSpace(emphasisMark.ReplaceAllString(line, ""))
		return truncateRunes(line, maxExplanationLen)
	}
	return ""
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
