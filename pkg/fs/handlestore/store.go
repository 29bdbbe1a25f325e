// Package handlestore keeps the inode table that turns file handles back
// into export paths.
package handlestore

import (
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// ErrNotFound is returned by Get when an inode has no entry.
var ErrNotFound = errors.New("handle not found")

// Entry is what a handle resolves to.
type Entry struct {
	Path       string
	Generation uint32
}

// Store maps inode numbers to the path they were last seen under.
type Store interface {
	Get(inode uint64) (Entry, error)
	Put(inode uint64, e Entry) error
	Delete(inode uint64) error
	Close() error
}

// New builds a store of the given type ("memory" or "badger") from a
// loosely typed option map, as produced by the configuration loader.
func New(kind string, options map[string]any) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "badger":
		var cfg BadgerConfig
		if err := mapstructure.Decode(options, &cfg); err != nil {
			return nil, fmt.Errorf("invalid badger config: %w", err)
		}
		return NewBadgerStore(cfg)
	default:
		return nil, fmt.Errorf("unknown handle store type: %q", kind)
	}
}
