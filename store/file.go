package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/moneyhero"
)

// File stores each player state as an indented JSON file, named after its
// key, in a directory.
type File struct {
	dir string
}

// NewFile returns a File store rooted at dir. The directory is created on
// first save.
func NewFile(dir string) *File { return &File{dir: dir} }

func (f *File) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(f.dir, key+".json"), nil
}

func (f *File) Load(key string) (*moneyhero.PlayerState, error) {
	path, err := f.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read %q: %w", path, err)
	}
	s, err := decodeState(data)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	return s, nil
}

// Save writes s to a temporary file and renames it over the previous state,
// so that a crash never leaves a truncated file behind.
func (f *File) Save(key string, s *moneyhero.PlayerState) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}
	data, err := encodeState(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("could not create %q: %w", f.dir, err)
	}
	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("could not save %q: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("could not save %q: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not save %q: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("could not save %q: %w", path, err)
	}
	return nil
}

func (f *File) Remove(key string) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("could not remove %q: %w", path, err)
	}
	return nil
}
