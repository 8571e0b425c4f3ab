package command

import (
	"slices"
	"strings"
)

// Tools whose first argument selects a subcommand. Their pattern keeps it,
// so allowing "git status" does not allow "git push".
var subcommandTools = []string{
	"git", "docker", "npm", "pip", "cargo", "go",
	"kubectl", "yarn", "pnpm", "brew", "apt",
}

var simpleCommands = []string{"ls", "cat", "echo", "pwd", "cd"}

// SuggestPattern proposes the allowlist pattern a user would accept for
// cmd when answering "always".
func SuggestPattern(cmd string) string {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return ""
	}
	exe := parts[0]

	switch {
	case slices.Contains(subcommandTools, exe) && len(parts) > 1:
		return exe + " " + parts[1]
	case slices.Contains(simpleCommands, exe):
		return exe
	case exe == "rm" && (slices.Contains(parts, "-i") || slices.Contains(parts, "--interactive")):
		return "rm -i"
	case len(parts) > 1:
		return exe + " " + parts[1]
	default:
		return exe
	}
}
