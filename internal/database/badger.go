// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

// Package database opens and maintains the BadgerDB instances that back the
// vector index and, optionally, the product and feedback documents.
package database

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/sommelier/internal/logging"
)

// Options configures Open.
type Options struct {
	// Path is the badger directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps all data in memory; used by tests and by an empty
	// index.dir.
	InMemory bool

	// SyncWrites fsyncs every commit. Default on for file-backed stores.
	SyncWrites bool
}

// DB wraps a badger.DB with close-once semantics.
type DB struct {
	*badger.DB

	path      string
	closeOnce sync.Once
	closeErr  error
}

// Open opens (or creates) a badger database.
func Open(o Options) (*DB, error) {
	var opts badger.Options
	if o.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if o.Path == "" {
			return nil, errors.New("badger path is required")
		}
		opts = badger.DefaultOptions(o.Path)
		opts.SyncWrites = o.SyncWrites
	}

	// Badger's own logger is noisy at info; failures surface as errors.
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Debug().
		Str("path", o.Path).
		Bool("in_memory", o.InMemory).
		Bool("sync_writes", o.SyncWrites).
		Msg("BadgerDB opened")
	return &DB{DB: db, path: o.Path}, nil
}

// OpenInMemory opens a throwaway in-memory database.
func OpenInMemory() (*DB, error) {
	return Open(Options{InMemory: true})
}

// Path returns the directory the database was opened at, "" for in-memory.
func (d *DB) Path() string { return d.path }

// Close closes the database. Subsequent calls return the first result.
func (d *DB) Close() error {
	d.closeOnce.Do(func() {
		d.closeErr = d.DB.Close()
	})
	return d.closeErr
}

// RunGC runs value log GC until badger reports nothing left to rewrite.
// It returns the number of rewrites performed.
func (d *DB) RunGC(discardRatio float64) (int, error) {
	if d.Opts().InMemory {
		return 0, nil
	}
	rewrites := 0
	for {
		err := d.RunValueLogGC(discardRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return rewrites, nil
		}
		if err != nil {
			return rewrites, fmt.Errorf("run value log GC: %w", err)
		}
		rewrites++
	}
}
