// Package system builds the prompts sent to the model.
// The system prompt is assembled from embedded text files plus the user's
// custom instructions; the context prompt describes the environment
// snapshot gathered at startup.
package system

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/yanmxa/wtf/internal/log"
)

const (
	// maxImportDepth is the maximum recursion depth for @import resolution
	maxImportDepth = 5

	// templateMarker appears in the generated wtf.md until the user edits it.
	templateMarker = "Add your custom instructions here"
)

//go:embed prompts/*.txt
var promptFS embed.FS

// Mode selects how the model proposes commands.
type Mode int

const (
	// ModeAgent exposes the tool schemas.
	ModeAgent Mode = iota
	// ModeLegacy asks for commands in fenced bash blocks.
	ModeLegacy
)

// Prompt builds the system prompt for mode. instructions is the content
// of wtf.md and may be empty.
func Prompt(mode Mode, instructions string) string {
	parts := []string{load("base.txt")}
	switch mode {
	case ModeLegacy:
		parts = append(parts, load("legacy.txt"))
	default:
		parts = append(parts, load("tools.txt"))
	}
	if instructions != "" {
		parts = append(parts, "CUSTOM USER INSTRUCTIONS:\n"+instructions)
	}

	result := join(parts)
	log.Logger().Debug("system prompt assembled",
		zap.Int("mode", int(mode)),
		zap.Int("total_len", len(result)),
		zap.Bool("instructions", instructions != ""))
	return result
}

// load reads a prompt file from the embedded filesystem.
func load(name string) string {
	data, err := promptFS.ReadFile("prompts/" + name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// join concatenates non-empty parts with double newlines.
func join(parts []string) string {
	var filtered []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			filtered = append(filtered, p)
		}
	}
	return strings.Join(filtered, "\n\n")
}

// LoadInstructions reads the custom instructions file. Missing files and
// the untouched template yield "". Lines of the form "@other.md" are
// replaced by the referenced file.
func LoadInstructions(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	content := strings.TrimSpace(string(data))
	if content == "" || strings.Contains(content, templateMarker) {
		return ""
	}

	seen := map[string]bool{filepath.Clean(path): true}
	content = resolveImports(content, filepath.Dir(path), 0, seen)
	log.Logger().Debug("loaded instructions",
		zap.String("path", path),
		zap.Int("bytes", len(content)))
	return content
}

// DefaultInstructions is written to wtf.md on first run.
const DefaultInstructions = `# wtf custom instructions

` + templateMarker + `. They are appended to every prompt.
Other files can be included with a line like:

@rules.md
`

var importRe = regexp.MustCompile(`(?m)^@([^\s@]+\.md)\s*$`)

// resolveImports processes @import lines in content.
// Syntax: @path/to/file.md or @./relative/path.md, relative to basePath.
func resolveImports(content string, basePath string, depth int, seen map[string]bool) string {
	if depth >= maxImportDepth {
		return content
	}

	return importRe.ReplaceAllStringFunc(content, func(match string) string {
		importPath := strings.TrimPrefix(strings.TrimSpace(match), "@")
		fullPath := filepath.Clean(filepath.Join(basePath, importPath))

		if seen[fullPath] {
			return fmt.Sprintf("<!-- Skipped (cycle): @%s -->", importPath)
		}
		data, err := os.ReadFile(fullPath)
		if err != nil {
			return fmt.Sprintf("<!-- Import not found: @%s -->", importPath)
		}

		seen[fullPath] = true
		imported := resolveImports(strings.TrimSpace(string(data)), filepath.Dir(fullPath), depth+1, seen)
		return fmt.Sprintf("<!-- Imported: %s -->\n%s", importPath, imported)
	})
}

// CommandOutput is one executed command and what it printed.
type CommandOutput struct {
	Command  string
	Output   string
	ExitCode int
}

// QueryPrompt is the first user message of a turn.
func QueryPrompt(snap Snapshot, query string) string {
	return fmt.Sprintf(`CONTEXT:
%s

USER QUERY:
%s

Please help the user with their query. If you need to run commands, propose them clearly.`,
		ContextPrompt(snap), query)
}

// RequeryPrompt sends command outputs back to the model after a batch of
// commands has run.
func RequeryPrompt(snap Snapshot, query string, outputs []CommandOutput) string {
	var sb strings.Builder
	sb.WriteString("CONTEXT:\n")
	sb.WriteString(ContextPrompt(snap))
	sb.WriteString("\n\nCOMMAND OUTPUTS YOU JUST RAN:\n")
	for _, o := range outputs {
		fmt.Fprintf(&sb, "\n$ %s\n%s\n", o.Command, o.Output)
		if o.ExitCode != 0 {
			fmt.Fprintf(&sb, "(exit code %d)\n", o.ExitCode)
		}
	}
	fmt.Fprintf(&sb, `
ORIGINAL USER QUERY:
%s

The commands above have been executed. Please analyze their output and provide your response or run additional commands if needed.`, query)
	return sb.String()
}
