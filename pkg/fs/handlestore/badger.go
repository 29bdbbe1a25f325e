package handlestore

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// BadgerConfig configures a BadgerStore.
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string `mapstructure:"path"`

	InMemory bool `mapstructure:"in_memory"`

	SyncWrites bool `mapstructure:"sync_writes"`
}

// BadgerStore persists the inode table so handles survive server restarts.
type BadgerStore struct {
	db *badger.DB
}

const keyPrefix = "ino:"

func inodeKey(inode uint64) []byte {
	key := make([]byte, len(keyPrefix)+8)
	copy(key, keyPrefix)
	binary.BigEndian.PutUint64(key[len(keyPrefix):], inode)
	return key
}

// value layout: generation uint32 | path bytes
func encodeEntry(e Entry) []byte {
	buf := make([]byte, 4+len(e.Path))
	binary.BigEndian.PutUint32(buf[:4], e.Generation)
	copy(buf[4:], e.Path)
	return buf
}

func decodeEntry(buf []byte) (Entry, error) {
	if len(buf) < 4 {
		return Entry{}, fmt.Errorf("corrupt handle entry: %d bytes", len(buf))
	}
	return Entry{
		Generation: binary.BigEndian.Uint32(buf[:4]),
		Path:       string(buf[4:]),
	}, nil
}

func NewBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badger handle store: path is required")
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLoggingLevel(badger.WARNING).WithSyncWrites(cfg.SyncWrites)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", cfg.Path, err)
	}
	return &BadgerStore{db: db}, nil
}

func (b *BadgerStore) Get(inode uint64) (Entry, error) {
	var e Entry
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(inodeKey(inode))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			e, err = decodeEntry(val)
			return err
		})
	})
	return e, err
}

func (b *BadgerStore) Put(inode uint64, e Entry) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(inodeKey(inode), encodeEntry(e))
	})
}

func (b *BadgerStore) Delete(inode uint64) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(inodeKey(inode))
	})
}

func (b *BadgerStore) Close() error {
	return b.db.Close()
}
