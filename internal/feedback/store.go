// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

// Package feedback persists every user's up and down votes.
package feedback

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sommelier/internal/docstore"
	"github.com/tomtom215/sommelier/internal/models"
)

// Record is the persisted document.
type Record struct {
	Users map[string]models.UserFeedback `json:"users"`
}

func emptyRecord() Record {
	return Record{Users: map[string]models.UserFeedback{}}
}

// Store holds the feedback record.
type Store struct {
	mu     sync.RWMutex
	doc    *docstore.Document[Record]
	record Record
	logger zerolog.Logger
}

// NewStore returns an empty store persisting through backend under docName.
// Call Load before use.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewStore(backend docstore.Backend, docName string, logger zerolog.Logger) *Store {
	logger = logger.With().Str("component", "feedback").Logger()
	return &Store{
		doc:    docstore.NewDocument(backend, docName, emptyRecord, logger),
		record: emptyRecord(),
		logger: logger,
	}
}

// Load replaces the in-memory record with the persisted one.
func (s *Store) Load(ctx context.Context) error {
	rec, err := s.doc.Load(ctx)
	if err != nil {
		return fmt.Errorf("load feedback: %w", err)
	}
	if rec.Users == nil {
		rec.Users = map[string]models.UserFeedback{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = rec
	s.logger.Debug().Int("users", len(rec.Users)).Msg("Feedback loaded")
	return nil
}

// Record applies one vote and persists. On a failed write the in-memory
// record is left untouched. It returns the user's updated feedback.
func (s *Store) Record(ctx context.Context, userID, productID string, dir models.Direction, at time.Time) (models.UserFeedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	uf, ok := s.record.Users[userID]
	if ok {
		uf = uf.Clone()
	} else {
		uf = models.NewUserFeedback()
	}
	uf.Apply(productID, dir, at.UTC())

	next := Record{Users: make(map[string]models.UserFeedback, len(s.record.Users)+1)}
	for k, v := range s.record.Users {
		next.Users[k] = v
	}
	next.Users[userID] = uf

	if err := s.doc.Save(ctx, next); err != nil {
		return models.UserFeedback{}, fmt.Errorf("persist feedback: %w", err)
	}
	s.record = next
	return uf.Clone(), nil
}

// User returns a copy of userID's feedback and whether the user exists.
func (s *Store) User(userID string) (models.UserFeedback, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uf, ok := s.record.Users[userID]
	if !ok {
		return models.NewUserFeedback(), false
	}
	return uf.Clone(), true
}

// Users returns every user id, sorted.
func (s *Store) Users() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.record.Users))
	for id := range s.record.Users {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
