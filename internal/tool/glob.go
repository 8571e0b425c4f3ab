package tool

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/yanmxa/wtf/internal/render"
)

const maxGlobResults = 100

// ignoredDirs are directories to skip during glob
var ignoredDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	".svn":         true,
	".hg":          true,
	"vendor":       true,
	"__pycache__":  true,
	".cache":       true,
	".venv":        true,
}

// GlobFilesTool finds files matching a pattern.
type GlobFilesTool struct {
	Cwd string
}

func (t *GlobFilesTool) Name() string { return "glob_files" }
func (t *GlobFilesTool) Description() string {
	return "Find files matching a glob pattern. Supports ** for recursive matching. Results are sorted by modification time (newest first). Internal tool - use this to discover files."
}
func (t *GlobFilesTool) Icon() string { return render.IconGlob }

func (t *GlobFilesTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"pattern": prop("string", "Glob pattern (e.g., '*.py', '**/*.js')"),
		"path":    prop("string", "Directory to search in (default: current directory)"),
	}, "pattern")
}

func (t *GlobFilesTool) Execute(ctx context.Context, params map[string]any) Result {
	pattern := stringParam(params, "pattern")
	if pattern == "" {
		return Failure("pattern is required")
	}
	if !doublestar.ValidatePattern(pattern) {
		return &ListResult{Base: Base{Error: "invalid pattern: " + pattern}, Pattern: pattern}
	}

	basePath := t.Cwd
	if p := stringParam(params, "path"); p != "" {
		basePath = resolvePath(t.Cwd, p)
	}
	if _, err := os.Stat(basePath); err != nil {
		if os.IsNotExist(err) {
			return &ListResult{Base: Base{Error: "path not found: " + basePath}, Pattern: pattern}
		}
		return &ListResult{Base: Base{Error: "failed to access path: " + err.Error()}, Pattern: pattern}
	}

	type fileInfo struct {
		path    string
		modTime time.Time
	}
	var files []fileInfo

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
			return nil
		}
		if matched, _ := doublestar.Match(pattern, filepath.ToSlash(relPath)); !matched {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		files = append(files, fileInfo{path: relPath, modTime: info.ModTime()})
		return nil
	})
	if err != nil && ctx.Err() != nil {
		return &ListResult{Base: Base{Error: ctx.Err().Error()}, Pattern: pattern}
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].modTime.After(files[j].modTime)
	})

	result := &ListResult{Pattern: pattern, Files: []string{}}
	if len(files) > maxGlobResults {
		files = files[:maxGlobResults]
		result.Truncated = true
	}
	for _, f := range files {
		result.Files = append(result.Files, f.path)
	}
	result.Count = len(result.Files)
	return result
}
