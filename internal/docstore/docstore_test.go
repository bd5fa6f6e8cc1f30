// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package docstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sommelier/internal/config"
	"github.com/tomtom215/sommelier/internal/database"
)

type sample struct {
	Items []string `json:"items"`
}

func emptySample() sample { return sample{Items: []string{}} }

// backends returns a fresh instance of every backend that runs without
// external services.
func backends(t *testing.T) map[string]Backend {
	t.Helper()

	fb, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	db, err := database.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	bb := NewOwnedBadgerBackend(db.DB)
	t.Cleanup(func() { _ = bb.Close() })

	return map[string]Backend{"file": fb, "badger": bb}
}

func TestBackendContract(t *testing.T) {
	t.Parallel()

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			if _, err := b.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
			}
			if err := b.Put(ctx, "doc", []byte("one")); err != nil {
				t.Fatal(err)
			}
			if err := b.Put(ctx, "doc", []byte("two")); err != nil {
				t.Fatal(err)
			}
			got, err := b.Get(ctx, "doc")
			if err != nil || string(got) != "two" {
				t.Errorf("Get(doc) = %q, %v; want two", got, err)
			}
			if err := b.Delete(ctx, "doc"); err != nil {
				t.Fatal(err)
			}
			if err := b.Delete(ctx, "doc"); err != nil {
				t.Errorf("deleting an absent document should succeed: %v", err)
			}
			if _, err := b.Get(ctx, "doc"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get after Delete error = %v", err)
			}
		})
	}
}

func TestDocumentLoadAbsentInitializesAndPersists(t *testing.T) {
	t.Parallel()

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			doc := NewDocument(b, "things.json", emptySample, zerolog.Nop())

			v, err := doc.Load(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if v.Items == nil || len(v.Items) != 0 {
				t.Errorf("Load() = %+v, want empty", v)
			}
			if _, err := b.Get(ctx, "things.json"); err != nil {
				t.Errorf("empty document should have been written back: %v", err)
			}
		})
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fb, _ := NewFileBackend(t.TempDir())
	doc := NewDocument(fb, "things.json", emptySample, zerolog.Nop())

	if err := doc.Save(ctx, sample{Items: []string{"a", "b"}}); err != nil {
		t.Fatal(err)
	}
	v, err := doc.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Items) != 2 || v.Items[1] != "b" {
		t.Errorf("Load() = %+v", v)
	}
}

func TestDocumentLoadCorruptResets(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "things.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	fb, _ := NewFileBackend(dir)
	doc := NewDocument(fb, "things.json", emptySample, zerolog.Nop())

	v, err := doc.Load(ctx)
	if err != nil {
		t.Fatalf("corrupt document should not fail Load: %v", err)
	}
	if len(v.Items) != 0 {
		t.Errorf("Load() = %+v, want empty", v)
	}
	raw, _ := os.ReadFile(filepath.Join(dir, "things.json"))
	if string(raw) == "{not json" {
		t.Error("corrupt document should have been replaced")
	}
}

func TestFileBackendLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fb, _ := NewFileBackend(dir)
	for i := 0; i < 3; i++ {
		if err := fb.Put(context.Background(), "doc", []byte("x")); err != nil {
			t.Fatal(err)
		}
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only the document, found %v", names)
	}
}

func TestFileBackendRejectsPathNames(t *testing.T) {
	t.Parallel()

	fb, _ := NewFileBackend(t.TempDir())
	for _, name := range []string{"", "..", "a/b", `a\b`} {
		if err := fb.Put(context.Background(), name, []byte("x")); err == nil {
			t.Errorf("Put(%q) should fail", name)
		}
	}
}

func TestOpenBackend(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := config.Default()
	cfg.Data.Dir = t.TempDir()

	cfg.Data.Backend = config.BackendFile
	b, err := OpenBackend(ctx, cfg)
	if err != nil || b.Kind() != "file" {
		t.Fatalf("file backend: %v, %v", b, err)
	}

	cfg.Data.Backend = config.BackendBadger
	b, err = OpenBackend(ctx, cfg)
	if err != nil || b.Kind() != "badger" {
		t.Fatalf("badger backend: %v, %v", b, err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}

	cfg.Data.Backend = "tape"
	if _, err := OpenBackend(ctx, cfg); err == nil {
		t.Error("expected error for unknown backend")
	}
}
