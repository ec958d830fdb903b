package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/vancomm/maze-solver/internal/maze"
)

const ext = ".maze"

var (
	ErrBadName  = fmt.Errorf("bad name for save")
	ErrNotFound = fmt.Errorf("save not found")
)

func isNameRune(c rune) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' ||
		'0' <= c && c <= '9' || c == '-' || c == '_'
}

// ValidName reports whether name may be used for a save: non-empty, at most
// 64 characters, Latin letters, digits, '-' and '_' only.
func ValidName(name string) bool {
	if name == "" || len(name) > 64 {
		return false
	}
	for _, c := range name {
		if !isNameRune(c) {
			return false
		}
	}
	return true
}

// Files keeps one encoded solver state per file in a directory.
type Files struct {
	mu  sync.Mutex
	dir string
}

// NewFiles creates dir if needed.
func NewFiles(dir string) (*Files, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create save directory: %w", err)
	}
	return &Files{dir: dir}, nil
}

func (f *Files) path(name string) string {
	return filepath.Join(f.dir, name+ext)
}

// Save writes st under name, replacing any previous save atomically.
func (f *Files) Save(name string, st *maze.State) error {
	if !ValidName(name) {
		return ErrBadName
	}
	b, err := st.Bytes()
	if err != nil {
		return fmt.Errorf("unable to encode state: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, name+"-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path(name))
}

// Load reads the save called name. If it does not exist, [ErrNotFound] is
// returned.
func (f *Files) Load(name string) (*maze.State, error) {
	if !ValidName(name) {
		return nil, ErrBadName
	}
	b, err := os.ReadFile(f.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	st, err := maze.DecodeState(b)
	if err != nil {
		return nil, fmt.Errorf("save %s is corrupted: %w", name, err)
	}
	return st, nil
}

// Delete removes a save without checking if it existed.
func (f *Files) Delete(name string) error {
	if !ValidName(name) {
		return ErrBadName
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// List returns the names of all saves, sorted.
func (f *Files) List() ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ext)
		if ok && !e.IsDir() && ValidName(name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}
