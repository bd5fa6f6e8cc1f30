// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide; it caches struct
// metadata after the first call. Field names in messages use the struct's
// JSON tag, so a failure on
//
//	type FeedbackInput struct {
//	    UserID string `json:"user_id" validate:"required,notblank"`
//	}
//
// reads "user_id is required". In addition to the built-in tags, notblank
// rejects whitespace-only strings.
//
// # Usage
//
//	if verr := validation.ValidateStruct(&in); verr != nil {
//	    return fmt.Errorf("%w: %s", ErrInvalidInput, verr.Error())
//	}
package validation
