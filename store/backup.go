package store

import (
	"fmt"
	"io"
	"os"

	"github.com/etnz/moneyhero"
	"github.com/klauspost/compress/zstd"
)

// Backup writes s to w as zstd compressed JSON.
func Backup(w io.Writer, s *moneyhero.PlayerState) error {
	data, err := encodeState(s)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return fmt.Errorf("could not write backup: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("could not write backup: %w", err)
	}
	return nil
}

// Restore reads a state written by Backup.
func Restore(r io.Reader) (*moneyhero.PlayerState, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	return decodeState(data)
}

// BackupFile writes a backup of s to path.
func BackupFile(path string, s *moneyhero.PlayerState) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := Backup(f, s); err != nil {
		f.Close()
		return fmt.Errorf("%q: %w", path, err)
	}
	return f.Close()
}

// RestoreFile reads the backup at path.
func RestoreFile(path string) (*moneyhero.PlayerState, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := Restore(f)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	return s, nil
}
