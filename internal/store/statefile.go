package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// StateFile persists the session snapshot as a JSON file next to the
// terminal's working directory. It fills the role a browser's local storage
// plays for a web client; no remote dependency is involved, so a plain file
// is the whole mechanism.
type StateFile struct {
	Path string
}

// NewStateFile returns a file-backed persistor at the given path.
func NewStateFile(path string) *StateFile { return &StateFile{Path: path} }

// Save writes the snapshot atomically (write temp file, rename over).
func (f *StateFile) Save(data []byte) error {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.Path)
}

// Load returns the stored snapshot, or nil when none exists yet.
func (f *StateFile) Load() ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

// Clear removes the stored snapshot.
func (f *StateFile) Clear() error {
	err := os.Remove(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
