package tool

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/yanmxa/wtf/internal/config"
	"github.com/yanmxa/wtf/internal/render"
)

const (
	maxReadLines  = 2000
	maxLineLength = 500
)

// sensitivePatterns name files that may hold credentials. Reading them is
// refused and reported to the model as requiring permission.
var sensitivePatterns = []string{
	"**/.env",
	"**/.env.*",
	"**/.ssh/**",
	"**/.gnupg/**",
	"**/.aws/credentials",
	"**/.netrc",
	"**/.git-credentials",
	"**/.npmrc",
	"**/.pypirc",
	"**/id_rsa*",
	"**/id_ed25519*",
	"**/*.pem",
	"**/*.key",
	"**/wtf/config.yaml",
}

// IsSensitivePath reports whether path matches a credential file pattern.
func IsSensitivePath(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	p := strings.TrimPrefix(filepath.ToSlash(abs), "/")
	for _, pattern := range sensitivePatterns {
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
	}
	return false
}

// resolvePath expands ~ and makes path absolute against cwd.
func resolvePath(cwd, path string) string {
	path = config.ExpandHome(path)
	if !filepath.IsAbs(path) && cwd != "" {
		path = filepath.Join(cwd, path)
	}
	return path
}

// ReadFileTool reads a text file.
type ReadFileTool struct {
	Cwd string
}

func (t *ReadFileTool) Name() string { return "read_file" }
func (t *ReadFileTool) Description() string {
	return "Read the contents of a file. Internal tool - output not shown to user unless you explicitly include it in your response."
}
func (t *ReadFileTool) Icon() string { return render.IconRead }

func (t *ReadFileTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"file_path": prop("string", "Path to the file to read"),
		"offset":    prop("integer", "Line number to start reading from (1-based). Default is 1."),
		"limit":     prop("integer", "Maximum number of lines to read. Default is 2000."),
	}, "file_path")
}

func (t *ReadFileTool) Execute(ctx context.Context, params map[string]any) Result {
	filePath := stringParam(params, "file_path")
	if filePath == "" {
		return Failure("file_path is required")
	}
	filePath = resolvePath(t.Cwd, filePath)

	if IsSensitivePath(filePath) {
		return &FileResult{
			Base: Base{
				Error:   "Reading this file requires permission: it may contain secrets. Ask the user to run the command themselves.",
				Blocked: true,
			},
			Path: filePath,
		}
	}

	offset := intParam(params, "offset", 0)
	limit := intParam(params, "limit", maxReadLines)
	if limit <= 0 {
		limit = maxReadLines
	}

	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &FileResult{Base: Base{Error: "File not found: " + filePath}, Path: filePath}
		}
		return &FileResult{Base: Base{Error: "Error reading file: " + err.Error()}, Path: filePath}
	}
	if info.IsDir() {
		return &FileResult{Base: Base{Error: "Not a file: " + filePath}, Path: filePath}
	}

	file, err := os.Open(filePath)
	if err != nil {
		return &FileResult{Base: Base{Error: "Error reading file: " + err.Error()}, Path: filePath}
	}
	defer file.Close()

	header := make([]byte, 512)
	n, _ := file.Read(header)
	if isBinary(header[:n]) {
		return &FileResult{Path: filePath, Content: "Binary file detected: " + filePath}
	}
	if _, err := file.Seek(0, 0); err != nil {
		return &FileResult{Base: Base{Error: "Error reading file: " + err.Error()}, Path: filePath}
	}

	var sb strings.Builder
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo, readCount := 0, 0
	truncated := false

	for scanner.Scan() {
		lineNo++
		if offset > 0 && lineNo < offset {
			continue
		}
		if readCount >= limit {
			truncated = true
			break
		}
		if ctx.Err() != nil {
			return &FileResult{Base: Base{Error: ctx.Err().Error()}, Path: filePath}
		}

		text := scanner.Text()
		if len(text) > maxLineLength {
			text = text[:maxLineLength] + "..."
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
		readCount++
	}
	if err := scanner.Err(); err != nil {
		return &FileResult{Base: Base{Error: "Error reading file: " + err.Error()}, Path: filePath}
	}

	return &FileResult{Path: filePath, Content: sb.String(), Truncated: truncated}
}

// isBinary checks if data appears to be binary
func isBinary(data []byte) bool {
	for _, b := range data {
		if b == 0 {
			return true
		}
	}
	return false
}
