package permission

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func readLists(t *testing.T, path string) Lists {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var l Lists
	if err := json.Unmarshal(data, &l); err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return l
}

func TestStoreLoadMissing(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "allowlist.json"))
	l := s.Load()
	if len(l.Allow) != 0 || len(l.Deny) != 0 {
		t.Errorf("Load() on missing file = %+v, want empty", l)
	}
}

func TestStoreLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allowlist.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	s := NewStore(path)
	l := s.Load()
	if len(l.Allow) != 0 || len(l.Deny) != 0 {
		t.Errorf("Load() on corrupt file = %+v, want empty", l)
	}

	if _, err := s.AddToAllowlist("git status"); err == nil {
		t.Error("AddToAllowlist on corrupt file should fail instead of overwriting it")
	}
	data, _ := os.ReadFile(path)
	if string(data) != "{not json" {
		t.Errorf("corrupt file was modified: %q", data)
	}
}

func TestAddToAllowlistIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allowlist.json")
	s := NewStore(path)

	added, err := s.AddToAllowlist("git status")
	if err != nil || !added {
		t.Fatalf("first add = %v, %v", added, err)
	}
	added, err = s.AddToAllowlist("  git   status ")
	if err != nil || added {
		t.Fatalf("second add = %v, %v, want false, nil", added, err)
	}

	l := readLists(t, path)
	if !reflect.DeepEqual(l.Allow, []string{"git status"}) {
		t.Errorf("Allow = %v, want [git status]", l.Allow)
	}
	if !reflect.DeepEqual(l.Deny, DefaultDenylist) {
		t.Errorf("new file should be seeded with the default denylist, got %v", l.Deny)
	}
}

func TestAddToAllowlistEmpty(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "allowlist.json"))
	if _, err := s.AddToAllowlist("   "); err == nil {
		t.Error("expected error for empty pattern")
	}
}

func TestAddToDenylist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allowlist.json")
	s := NewStore(path)
	if err := s.EnsureDefault(); err != nil {
		t.Fatal(err)
	}
	added, err := s.AddToDenylist("git push --force")
	if err != nil || !added {
		t.Fatalf("AddToDenylist = %v, %v", added, err)
	}
	added, _ = s.AddToDenylist("mkfs")
	if added {
		t.Error("default pattern should not be added twice")
	}
	l := s.Load()
	if l.Deny[len(l.Deny)-1] != "git push --force" {
		t.Errorf("Deny = %v", l.Deny)
	}
}

func TestRemoveFromAllowlist(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "allowlist.json"))
	for _, p := range []string{"git status", "ls", "npm list"} {
		if _, err := s.AddToAllowlist(p); err != nil {
			t.Fatal(err)
		}
	}
	removed, err := s.RemoveFromAllowlist("ls")
	if err != nil || !removed {
		t.Fatalf("RemoveFromAllowlist = %v, %v", removed, err)
	}
	removed, _ = s.RemoveFromAllowlist("ls")
	if removed {
		t.Error("second remove should report false")
	}
	if got := s.Load().Allow; !reflect.DeepEqual(got, []string{"git status", "npm list"}) {
		t.Errorf("Allow = %v", got)
	}
}

func TestEnsureDefaultKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allowlist.json")
	if err := os.WriteFile(path, []byte(`{"patterns":["ls"],"denylist":[]}`), 0600); err != nil {
		t.Fatal(err)
	}
	s := NewStore(path)
	if err := s.EnsureDefault(); err != nil {
		t.Fatal(err)
	}
	l := s.Load()
	if !reflect.DeepEqual(l.Allow, []string{"ls"}) || len(l.Deny) != 0 {
		t.Errorf("EnsureDefault rewrote existing file: %+v", l)
	}
}
