package store

import (
	"fmt"
	"path/filepath"

	"github.com/etnz/moneyhero"
)

// Open returns the store described by cfg. Stores holding resources
// implement io.Closer.
func Open(cfg moneyhero.StorageConfig) (moneyhero.Store, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFile(cfg.Path), nil
	case "sqlite":
		path := cfg.Path
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "moneyhero.db")
		}
		db, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "memory":
		return moneyhero.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
