// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package docstore

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
)

const badgerKeyPrefix = "doc/"

// BadgerBackend stores documents as keys in a BadgerDB. Each Put is a single
// write transaction.
type BadgerBackend struct {
	db    *badger.DB
	owned bool
}

// NewBadgerBackend uses db without taking ownership; Close leaves it open.
func NewBadgerBackend(db *badger.DB) *BadgerBackend {
	return &BadgerBackend{db: db}
}

// NewOwnedBadgerBackend closes db when the backend is closed.
func NewOwnedBadgerBackend(db *badger.DB) *BadgerBackend {
	return &BadgerBackend{db: db, owned: true}
}

func badgerKey(name string) []byte {
	return []byte(badgerKeyPrefix + name)
}

// Get implements Backend.
func (b *BadgerBackend) Get(_ context.Context, name string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	return out, err
}

// Put implements Backend.
func (b *BadgerBackend) Put(_ context.Context, name string, data []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(name), data)
	})
}

// Delete implements Backend.
func (b *BadgerBackend) Delete(_ context.Context, name string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(badgerKey(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// Close implements Backend.
func (b *BadgerBackend) Close() error {
	if b.owned {
		return b.db.Close()
	}
	return nil
}

// Kind implements Backend.
func (b *BadgerBackend) Kind() string { return "badger" }
