package permission

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/yanmxa/wtf/internal/log"
)

// Store persists allow and deny patterns in a JSON file:
//
//	{"patterns": ["git status"], "denylist": ["rm -rf /"]}
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the current lists. It never fails: a missing, unreadable or
// corrupt file yields empty lists, so storage trouble can only make the
// engine ask more often.
func (s *Store) Load() Lists {
	s.mu.Lock()
	defer s.mu.Unlock()

	lists, err := s.read()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Logger().Warn("allowlist unreadable, treating as empty",
			zap.String("path", s.path), zap.Error(err))
		return Lists{}
	}
	return lists
}

func (s *Store) read() (Lists, error) {
	var lists Lists
	data, err := os.ReadFile(s.path)
	if err != nil {
		return lists, err
	}
	if err := json.Unmarshal(data, &lists); err != nil {
		return Lists{}, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return lists, nil
}

// AddToAllowlist appends pattern to the allowlist unless an equal pattern
// is already present. It reports whether the file changed.
func (s *Store) AddToAllowlist(pattern string) (bool, error) {
	return s.add(pattern, func(l *Lists) *[]string { return &l.Allow })
}

// AddToDenylist appends pattern to the denylist unless already present.
func (s *Store) AddToDenylist(pattern string) (bool, error) {
	return s.add(pattern, func(l *Lists) *[]string { return &l.Deny })
}

// RemoveFromAllowlist drops pattern from the allowlist.
func (s *Store) RemoveFromAllowlist(pattern string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lists, err := s.readForWrite()
	if err != nil {
		return false, err
	}
	pattern = NormalizePattern(pattern)
	kept := lists.Allow[:0]
	removed := false
	for _, p := range lists.Allow {
		if NormalizePattern(p) == pattern {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	if !removed {
		return false, nil
	}
	lists.Allow = kept
	return true, s.write(lists)
}

func (s *Store) add(pattern string, list func(*Lists) *[]string) (bool, error) {
	pattern = NormalizePattern(pattern)
	if pattern == "" {
		return false, errors.New("empty pattern")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lists, err := s.readForWrite()
	if err != nil {
		return false, err
	}
	target := list(&lists)
	for _, p := range *target {
		if NormalizePattern(p) == pattern {
			return false, nil
		}
	}
	*target = append(*target, pattern)
	if err := s.write(lists); err != nil {
		return false, err
	}
	log.Logger().Info("pattern added", zap.String("pattern", pattern), zap.String("path", s.path))
	return true, nil
}

// readForWrite refuses to rewrite a corrupt file, which would silently drop
// its denylist.
func (s *Store) readForWrite() (Lists, error) {
	lists, err := s.read()
	if errors.Is(err, fs.ErrNotExist) {
		return Lists{Deny: append([]string(nil), DefaultDenylist...)}, nil
	}
	if err != nil {
		return Lists{}, fmt.Errorf("refusing to overwrite allowlist: %w", err)
	}
	return lists, nil
}

func (s *Store) write(lists Lists) error {
	if lists.Allow == nil {
		lists.Allow = []string{}
	}
	if lists.Deny == nil {
		lists.Deny = []string{}
	}
	data, err := json.MarshalIndent(lists, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// EnsureDefault creates the file with the default denylist if it does not
// exist yet.
func (s *Store) EnsureDefault() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return nil
	}
	return s.write(Lists{Deny: append([]string(nil), DefaultDenylist...)})
}
