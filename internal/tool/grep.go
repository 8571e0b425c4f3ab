package tool

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/yanmxa/wtf/internal/render"
)

const (
	maxGrepMatches = 50
	maxGrepFiles   = 1000
)

// GrepTool searches file contents with a regular expression.
type GrepTool struct {
	Cwd string
}

func (t *GrepTool) Name() string { return "grep" }
func (t *GrepTool) Description() string {
	return "Search for a pattern in files. Internal tool - use this to find code or content."
}
func (t *GrepTool) Icon() string { return render.IconGrep }

func (t *GrepTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"pattern":      prop("string", "Regex pattern to search for"),
		"path":         prop("string", "Directory to search in (default: current directory)"),
		"file_pattern": prop("string", "Glob pattern for files to search, e.g. '*.go' or 'src/**/*.ts' (default: all files)"),
	}, "pattern")
}

func (t *GrepTool) Execute(ctx context.Context, params map[string]any) Result {
	pattern := stringParam(params, "pattern")
	if pattern == "" {
		return Failure("pattern is required")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return &SearchResult{Base: Base{Error: "invalid pattern: " + err.Error()}, Pattern: pattern}
	}

	basePath := t.Cwd
	if p := stringParam(params, "path"); p != "" {
		basePath = resolvePath(t.Cwd, p)
	}
	filePattern := stringParam(params, "file_pattern")
	if filePattern == "*" {
		filePattern = ""
	}

	info, err := os.Stat(basePath)
	if err != nil {
		return &SearchResult{Base: Base{Error: "path not found: " + basePath}, Pattern: pattern}
	}

	result := &SearchResult{Pattern: pattern, Matches: []string{}}

	searchFile := func(filePath, relPath string) error {
		if IsSensitivePath(filePath) {
			return nil
		}
		file, err := os.Open(filePath)
		if err != nil {
			return nil
		}
		defer file.Close()

		buf := make([]byte, 512)
		n, _ := file.Read(buf)
		if isBinary(buf[:n]) {
			return nil
		}
		if _, err := file.Seek(0, 0); err != nil {
			return nil
		}

		scanner := bufio.NewScanner(file)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := scanner.Text()
			if !re.MatchString(line) {
				continue
			}
			if len(line) > maxLineLength {
				line = line[:maxLineLength] + "..."
			}
			result.Matches = append(result.Matches, fmt.Sprintf("%s:%d:%s", relPath, lineNo, strings.TrimSpace(line)))
			if len(result.Matches) >= maxGrepMatches {
				result.Truncated = true
				return filepath.SkipAll
			}
		}
		return nil
	}

	if !info.IsDir() {
		searchFile(basePath, filepath.Base(basePath))
	} else {
		filesSearched := 0
		err := filepath.WalkDir(basePath, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if d.IsDir() {
				if ignoredDirs[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}

			relPath, err := filepath.Rel(basePath, path)
			if err != nil {
				relPath = path
			}
			if filePattern != "" && !matchPattern(filePattern, filepath.ToSlash(relPath)) {
				return nil
			}

			filesSearched++
			if filesSearched > maxGrepFiles {
				result.Truncated = true
				return filepath.SkipAll
			}
			return searchFile(path, relPath)
		})
		if err != nil && ctx.Err() != nil {
			result.Error = ctx.Err().Error()
		}
	}

	result.Count = len(result.Matches)
	return result
}

// matchPattern checks a slash-separated relative path against a glob. A
// pattern without a slash matches the base name, like grep --include.
func matchPattern(pattern, relPath string) bool {
	if !strings.Contains(pattern, "/") {
		matched, _ := doublestar.Match(pattern, filepath.Base(relPath))
		return matched
	}
	matched, _ := doublestar.Match(pattern, relPath)
	return matched
}
