// Package history records completed turns in a JSON Lines file.
package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/yanmxa/wtf/internal/log"
)

const (
	// MaxSizeMB is the size at which the history file is rotated.
	MaxSizeMB = 10
	// MaxBackups is the number of rotated files kept.
	MaxBackups = 5
)

// Entry is one completed turn.
type Entry struct {
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	Commands  []string  `json:"commands"`
	ExitCode  int       `json:"exit_code"`
	Timestamp time.Time `json:"timestamp"`
}

// Log appends entries to a rotating history file.
type Log struct {
	path string
	mu   sync.Mutex
	w    *lumberjack.Logger
}

// Open returns a history log writing to path. The file is created on the
// first Append.
func Open(path string) *Log {
	return &Log{
		path: path,
		w: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    MaxSizeMB,
			MaxBackups: MaxBackups,
			LocalTime:  true,
		},
	}
}

// Path returns the current history file.
func (l *Log) Path() string {
	return l.path
}

// Append writes e as one line. A zero timestamp is set to now.
func (l *Log) Append(e Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if e.Commands == nil {
		e.Commands = []string{}
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return err
	}
	if _, err := l.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// Recent returns up to n entries, most recent first. Malformed lines are
// skipped. A missing file yields no entries.
func (l *Log) Recent(n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	l.mu.Lock()
	data, err := os.ReadFile(l.path)
	l.mu.Unlock()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	lines := bytes.Split(data, []byte("\n"))
	var entries []Entry
	for i := len(lines) - 1; i >= 0 && len(entries) < n; i-- {
		line := bytes.TrimSpace(lines[i])
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			log.Logger().Debug("skipping malformed history line", zap.Int("line", i+1), zap.Error(err))
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Close releases the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Close()
}
