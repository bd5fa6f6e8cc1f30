// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package recommend

import (
	"errors"

	"github.com/tomtom215/sommelier/internal/catalog"
	"github.com/tomtom215/sommelier/internal/models"
)

// Input validation errors. Each is returned wrapped with the validator's
// message, so match with errors.Is.
var (
	// ErrEmptyProductID is returned when a product id is required but blank.
	ErrEmptyProductID = errors.New("product id is required")

	// ErrEmptyUserID is returned when a user id is required but blank.
	ErrEmptyUserID = errors.New("user id is required")

	// ErrInvalidDirection is returned for a feedback direction other than
	// "up" or "down".
	ErrInvalidDirection = models.ErrInvalidDirection

	// ErrInvalidCount is returned for a negative result count.
	ErrInvalidCount = errors.New("result count must not be negative")

	// ErrInvalidProduct is returned when a product input fails validation.
	ErrInvalidProduct = errors.New("invalid product")

	// ErrProductExists is returned when adding a product whose id is taken.
	ErrProductExists = catalog.ErrProductExists
)
