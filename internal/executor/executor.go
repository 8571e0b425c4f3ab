// Package executor runs approved shell commands.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/yanmxa/wtf/internal/log"
)

const (
	// DefaultTimeout bounds a command when the caller passes zero.
	DefaultTimeout = 30 * time.Second

	// ExitTimeout is the exit code reported for a command that timed out.
	ExitTimeout = 124

	// ExitSpawnFailed is reported when the shell could not be started.
	ExitSpawnFailed = 1

	maxOutput = 30000
)

// Runner executes one shell command and reports its combined output and
// exit code. A timeout is not an error: it is reported as ExitTimeout.
type Runner interface {
	Execute(ctx context.Context, cmd string, timeout time.Duration) (string, int)
}

// Shell runs commands through bash -c.
type Shell struct {
	// Dir is the working directory; empty means the current one.
	Dir string
	// Shell is the interpreter, bash by default.
	Shell string
}

// Execute runs cmd and returns stdout followed by stderr.
func (s *Shell) Execute(ctx context.Context, cmd string, timeout time.Duration) (string, int) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	shell := s.Shell
	if shell == "" {
		shell = "bash"
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c := exec.CommandContext(ctx, shell, "-c", cmd)
	c.Dir = s.Dir
	c.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	output := truncate(stdout.String()+stderr.String(), maxOutput)

	exitCode := 0
	switch {
	case err == nil:
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		output = fmt.Sprintf("Command timed out after %ds", int(timeout.Seconds()))
		exitCode = ExitTimeout
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
			if exitCode < 0 {
				// killed by a signal, e.g. the parent context was cancelled
				exitCode = ExitSpawnFailed
			}
		} else {
			output = fmt.Sprintf("Error executing command: %v", err)
			exitCode = ExitSpawnFailed
		}
	}

	log.Logger().Debug("command executed",
		zap.String("command", cmd),
		zap.Int("exitCode", exitCode),
		zap.Duration("duration", time.Since(start)),
		zap.Int("outputLen", len(output)))
	return output, exitCode
}

// truncate cuts s to at most n bytes on a rune boundary and marks the cut.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "\n... (output truncated)"
}
