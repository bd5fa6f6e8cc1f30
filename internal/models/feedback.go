// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package models

import (
	"errors"
	"slices"
	"time"
)

// Direction is the vote carried by a feedback event.
type Direction string

const (
	// Up marks the product as liked.
	Up Direction = "up"
	// Down marks the product as disliked.
	Down Direction = "down"
)

// ErrInvalidDirection is returned for any direction other than up or down.
var ErrInvalidDirection = errors.New("direction must be \"up\" or \"down\"")

// ParseDirection validates s as a Direction.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Up, Down:
		return Direction(s), nil
	default:
		return "", ErrInvalidDirection
	}
}

// UserFeedback is one user's accumulated votes. Likes and Dislikes are
// ordered sets and never share an id.
type UserFeedback struct {
	Likes      []string             `json:"likes"`
	Dislikes   []string             `json:"dislikes"`
	Timestamps map[string]time.Time `json:"timestamps"`
}

// NewUserFeedback returns an empty record.
func NewUserFeedback() UserFeedback {
	return UserFeedback{
		Likes:      []string{},
		Dislikes:   []string{},
		Timestamps: map[string]time.Time{},
	}
}

// Apply records a vote. The product is removed from the opposite set and
// appended to the target set unless already present; the timestamp is
// always refreshed.
func (f *UserFeedback) Apply(productID string, dir Direction, at time.Time) {
	if f.Timestamps == nil {
		f.Timestamps = map[string]time.Time{}
	}
	target, opposite := &f.Likes, &f.Dislikes
	if dir == Down {
		target, opposite = &f.Dislikes, &f.Likes
	}
	*opposite = slices.DeleteFunc(*opposite, func(id string) bool { return id == productID })
	if !slices.Contains(*target, productID) {
		*target = append(*target, productID)
	}
	f.Timestamps[productID] = at
}

// Empty reports whether the user has no likes and no dislikes.
func (f *UserFeedback) Empty() bool {
	return len(f.Likes) == 0 && len(f.Dislikes) == 0
}

// Clone returns a deep copy.
func (f *UserFeedback) Clone() UserFeedback {
	c := UserFeedback{
		Likes:      append([]string{}, f.Likes...),
		Dislikes:   append([]string{}, f.Dislikes...),
		Timestamps: make(map[string]time.Time, len(f.Timestamps)),
	}
	for k, v := range f.Timestamps {
		c.Timestamps[k] = v
	}
	return c
}
