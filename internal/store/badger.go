package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// BadgerBackend stores documents under "<collection>:<id>" keys.
type BadgerBackend struct {
	db     *badger.DB
	logger *slog.Logger
}

// OpenBadger opens a badger database at path, or an in-memory one.
func OpenBadger(path string, inMemory bool, logger *slog.Logger) (*BadgerBackend, error) {
	opts := badger.DefaultOptions(path)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil
	opts.SyncWrites = !inMemory
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("Badger document store opened", "path", path, "in_memory", inMemory)
	}
	return &BadgerBackend{db: db, logger: logger}, nil
}

func docKey(collection, id string) []byte {
	return []byte(collection + ":" + id)
}

// Scan calls fn for every document in collection, in key order.
func (b *BadgerBackend) Scan(ctx context.Context, collection string, fn func([]byte) error) error {
	prefix := []byte(collection + ":")
	return b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := it.Item().Value(fn); err != nil {
				return err
			}
		}
		return nil
	})
}

// Get calls fn for each id that exists. Missing ids are skipped.
func (b *BadgerBackend) Get(ctx context.Context, collection string, ids []string, fn func([]byte) error) error {
	return b.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}
			item, err := txn.Get(docKey(collection, id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to get key: %w", err)
			}
			if err := item.Value(fn); err != nil {
				return err
			}
		}
		return nil
	})
}

// Put writes a document, replacing any previous version.
func (b *BadgerBackend) Put(ctx context.Context, collection, id string, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(docKey(collection, id), doc)
	})
}

// Delete removes a document. Deleting a missing document is not an error.
func (b *BadgerBackend) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(docKey(collection, id))
	})
}

// Close closes the database.
func (b *BadgerBackend) Close() error {
	if b.logger != nil {
		b.logger.Info("Closing badger document store")
	}
	return b.db.Close()
}
