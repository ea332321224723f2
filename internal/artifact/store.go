package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Store checks and prepares artifacts for one layout.
type Store struct {
	layout Layout
}

// NewStore builds a store for a layout.
func NewStore(layout Layout) *Store {
	return &Store{layout: layout}
}

// Layout returns the layout the store resolves against.
func (s *Store) Layout() Layout { return s.layout }

// Path resolves ref for key.
func (s *Store) Path(ref Ref, key Key) string {
	return ref.Path(s.layout, key)
}

// Check inspects the artifact on disk and returns its status.
func (s *Store) Check(ref Ref, key Key) (CheckResult, error) {
	path := ref.Path(s.layout, key)
	if path == "" {
		err := fmt.Errorf("artifact: %s path could not be resolved", ref.ID)
		return CheckResult{Ref: ref, Path: path, State: StateError, Err: err}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return CheckResult{Ref: ref, Path: path, State: StateMissing}, nil
		}
		return CheckResult{Ref: ref, Path: path, State: StateError, Err: err}, err
	}
	switch ref.Kind {
	case KindDirectory:
		if !info.IsDir() {
			return invalidResult(ref, path, fmt.Errorf("artifact: expected directory"))
		}
	default:
		if info.IsDir() {
			return invalidResult(ref, path, fmt.Errorf("artifact: expected file got directory"))
		}
	}
	return CheckResult{Ref: ref, Path: path, State: StateReady}, nil
}

// Ensure creates a directory artifact, or the parent directory of a file
// artifact, and returns the resolved path.
func (s *Store) Ensure(ref Ref, key Key) (string, error) {
	path := ref.Path(s.layout, key)
	if path == "" {
		return "", fmt.Errorf("artifact: %s path could not be resolved", ref.ID)
	}
	dir := path
	if ref.Kind != KindDirectory {
		dir = filepath.Dir(path)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("artifact: ensure %s: %w", ref.ID, err)
	}
	return path, nil
}

func invalidResult(ref Ref, path string, err error) (CheckResult, error) {
	return CheckResult{Ref: ref, Path: path, State: StateInvalid, Err: err}, err
}
