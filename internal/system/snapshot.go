package system

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/yanmxa/wtf/internal/config"
	"github.com/yanmxa/wtf/internal/executor"
)

const gitTimeout = 2 * time.Second

// Snapshot is the environment gathered once per turn.
type Snapshot struct {
	Cwd            string
	Shell          string
	OS             string
	ProjectType    string
	ProjectFiles   []string
	Git            *GitStatus
	RecentCommands []string
}

// GitStatus describes the repository containing the working directory.
type GitStatus struct {
	Branch      string
	HasChanges  bool
	AheadBehind string
}

// Gather collects a Snapshot. Every probe is best effort; failures leave
// the corresponding field empty.
func Gather(ctx context.Context, cwd string, shell config.Shell, historySize int) Snapshot {
	snap := Snapshot{
		Cwd:   cwd,
		Shell: DetectShell(shell.Type),
		OS:    runtime.GOOS,
	}
	snap.ProjectType, snap.ProjectFiles = DetectProject(cwd)
	snap.Git = gitStatus(ctx, &executor.Shell{Dir: cwd})
	if historySize > 0 {
		path := shell.HistoryFile
		if path == "" {
			path = defaultHistoryFile(snap.Shell)
		}
		snap.RecentCommands = RecentCommands(config.ExpandHome(path), snap.Shell, historySize)
	}
	return snap
}

// DetectShell prefers $SHELL and falls back to the configured type.
func DetectShell(configured string) string {
	env := os.Getenv("SHELL")
	for _, name := range []string{"zsh", "bash", "fish"} {
		if strings.Contains(env, name) {
			return name
		}
	}
	if configured != "" {
		return configured
	}
	return "unknown"
}

func defaultHistoryFile(shell string) string {
	if f := os.Getenv("HISTFILE"); f != "" {
		return f
	}
	switch shell {
	case "bash":
		return "~/.bash_history"
	case "fish":
		return "~/.local/share/fish/fish_history"
	default:
		return "~/.zsh_history"
	}
}

// projectMarkers maps a project type to the files that identify it, in
// detection order.
var projectMarkers = []struct {
	kind  string
	files []string
}{
	{"python", []string{"pyproject.toml", "requirements.txt", "setup.py", "Pipfile"}},
	{"node", []string{"package.json"}},
	{"ruby", []string{"Gemfile", "Rakefile"}},
	{"go", []string{"go.mod", "go.sum"}},
	{"rust", []string{"Cargo.toml"}},
	{"java", []string{"pom.xml", "build.gradle", "build.gradle.kts"}},
}

var commonFiles = []string{"Makefile", "Dockerfile", "docker-compose.yml", "README.md", ".gitignore"}

// DetectProject returns the project type of dir and the marker files found.
func DetectProject(dir string) (string, []string) {
	kind := "unknown"
	var found []string
	for _, m := range projectMarkers {
		for _, f := range m.files {
			if exists(filepath.Join(dir, f)) {
				if kind == "unknown" {
					kind = m.kind
				}
				found = append(found, f)
			}
		}
	}
	for _, f := range commonFiles {
		if exists(filepath.Join(dir, f)) {
			found = append(found, f)
		}
	}
	return kind, found
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func gitStatus(ctx context.Context, sh executor.Runner) *GitStatus {
	out, code := sh.Execute(ctx, "git rev-parse --abbrev-ref HEAD", gitTimeout)
	if code != 0 {
		return nil
	}
	status := &GitStatus{Branch: strings.TrimSpace(out)}

	if out, code := sh.Execute(ctx, "git status --short", gitTimeout); code == 0 {
		status.HasChanges = strings.TrimSpace(out) != ""
	}
	if out, code := sh.Execute(ctx, "git rev-list --left-right --count 'HEAD...@{upstream}'", gitTimeout); code == 0 {
		status.AheadBehind = aheadBehind(out)
	}
	return status
}

// aheadBehind formats `git rev-list --left-right --count` output.
func aheadBehind(out string) string {
	fields := strings.Fields(out)
	if len(fields) != 2 {
		return ""
	}
	ahead, err1 := strconv.Atoi(fields[0])
	behind, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil {
		return ""
	}
	var parts []string
	if ahead > 0 {
		parts = append(parts, fmt.Sprintf("ahead %d", ahead))
	}
	if behind > 0 {
		parts = append(parts, fmt.Sprintf("behind %d", behind))
	}
	return strings.Join(parts, ", ")
}

// RecentCommands returns the last n commands from a shell history file,
// oldest first. Invocations of wtf itself are left out.
func RecentCommands(path, shell string, n int) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var cmds []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		cmd := parseHistoryLine(scanner.Text(), shell)
		if cmd == "" || cmd == "wtf" || strings.HasPrefix(cmd, "wtf ") {
			continue
		}
		cmds = append(cmds, cmd)
	}
	if len(cmds) > n {
		cmds = cmds[len(cmds)-n:]
	}
	return cmds
}

// parseHistoryLine handles the zsh extended format ": ts:dur;cmd" and
// fish "- cmd: ..." entries. Anything else is taken as a bare command.
func parseHistoryLine(line, shell string) string {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return ""
	case strings.HasPrefix(line, ": "):
		if _, cmd, ok := strings.Cut(line, ";"); ok {
			return strings.TrimSpace(cmd)
		}
		return ""
	case shell == "fish":
		if cmd, ok := strings.CutPrefix(line, "- cmd: "); ok {
			return strings.TrimSpace(cmd)
		}
		return ""
	case strings.HasPrefix(line, "#"):
		// bash HISTTIMEFORMAT timestamps
		return ""
	}
	return line
}

// ContextPrompt renders the snapshot for the model.
func ContextPrompt(s Snapshot) string {
	var parts []string

	if len(s.RecentCommands) > 0 {
		lines := make([]string, len(s.RecentCommands))
		for i, cmd := range s.RecentCommands {
			lines[i] = fmt.Sprintf("  %d. %s", i+1, cmd)
		}
		parts = append(parts, fmt.Sprintf("SHELL HISTORY (last %d commands):\n%s", len(lines), strings.Join(lines, "\n")))
	} else {
		parts = append(parts, "SHELL HISTORY: Not available")
	}

	parts = append(parts, "CURRENT DIRECTORY:\n  "+s.Cwd)

	if s.Shell != "" || s.OS != "" {
		parts = append(parts, fmt.Sprintf("ENVIRONMENT:\n  Shell: %s\n  OS: %s", s.Shell, s.OS))
	}

	if s.ProjectType != "" && s.ProjectType != "unknown" {
		project := "PROJECT TYPE: " + s.ProjectType
		if len(s.ProjectFiles) > 0 {
			files := s.ProjectFiles
			if len(files) > 5 {
				files = files[:5]
			}
			project += "\nPROJECT FILES: " + strings.Join(files, ", ")
		}
		parts = append(parts, project)
	}

	if s.Git != nil {
		lines := []string{"  Branch: " + s.Git.Branch}
		if s.Git.AheadBehind != "" {
			lines = append(lines, "  "+s.Git.AheadBehind)
		}
		if s.Git.HasChanges {
			lines = append(lines, "  Has uncommitted changes")
		}
		parts = append(parts, "GIT STATUS:\n"+strings.Join(lines, "\n"))
	}

	return strings.Join(parts, "\n\n")
}
