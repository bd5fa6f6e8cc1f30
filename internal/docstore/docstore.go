// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

// Package docstore persists whole JSON documents.
//
// The product catalog and the feedback record are each stored as a single
// document that is rewritten in full on every mutation. A Backend replaces
// a document atomically: readers see either the previous or the new bytes,
// never a torn write.
package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned by Backend.Get for a document that was never written.
var ErrNotFound = errors.New("document not found")

// Backend stores opaque documents by name.
type Backend interface {
	// Get returns the stored bytes or ErrNotFound.
	Get(ctx context.Context, name string) ([]byte, error)

	// Put replaces the document atomically.
	Put(ctx context.Context, name string, data []byte) error

	// Delete removes the document. Absent documents are not an error.
	Delete(ctx context.Context, name string) error

	// Close releases backend resources.
	Close() error

	// Kind names the backend for logs.
	Kind() string
}

// Document is a typed view of one named document.
type Document[T any] struct {
	backend Backend
	name    string
	init    func() T
	logger  zerolog.Logger
}

// NewDocument binds name on backend. init produces the empty value used when
// the document is absent or unreadable.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewDocument[T any](backend Backend, name string, init func() T, logger zerolog.Logger) *Document[T] {
	return &Document[T]{
		backend: backend,
		name:    name,
		init:    init,
		logger:  logger.With().Str("document", name).Str("backend", backend.Kind()).Logger(),
	}
}

// Name returns the document name.
func (d *Document[T]) Name() string { return d.name }

// Load reads and decodes the document. An absent document, or one that does
// not decode, yields the empty value, which is written back so the next
// load is clean. A corrupt document is logged at warn before it is replaced.
// Backend read failures other than ErrNotFound are returned.
func (d *Document[T]) Load(ctx context.Context) (T, error) {
	raw, err := d.backend.Get(ctx, d.name)
	switch {
	case errors.Is(err, ErrNotFound):
		d.logger.Debug().Msg("Document absent, initializing empty")
		return d.reset(ctx)
	case err != nil:
		var zero T
		return zero, fmt.Errorf("read %s: %w", d.name, err)
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		d.logger.Warn().Err(err).Int("bytes", len(raw)).Msg("Document corrupt, initializing empty")
		return d.reset(ctx)
	}
	return v, nil
}

func (d *Document[T]) reset(ctx context.Context) (T, error) {
	v := d.init()
	if err := d.Save(ctx, v); err != nil {
		return v, err
	}
	return v, nil
}

// Save encodes v and replaces the stored document.
func (d *Document[T]) Save(ctx context.Context, v T) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", d.name, err)
	}
	if err := d.backend.Put(ctx, d.name, raw); err != nil {
		return fmt.Errorf("write %s: %w", d.name, err)
	}
	return nil
}

// Delete removes the stored document.
func (d *Document[T]) Delete(ctx context.Context) error {
	if err := d.backend.Delete(ctx, d.name); err != nil {
		return fmt.Errorf("delete %s: %w", d.name, err)
	}
	return nil
}
