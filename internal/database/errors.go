// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package database

import (
	"io"

	"github.com/rs/zerolog"
)

// CloseWithLog closes a resource and logs any error. Use it for cleanup
// where a failure should be seen but must not fail the operation.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func CloseWithLog(closer io.Closer, logger zerolog.Logger, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logger.Warn().Err(err).Str("type", resourceType).Msg("Failed to close resource")
	}
}

// CloseQuietly closes a resource and ignores the error. Use it only on
// error paths where a close failure is not actionable.
func CloseQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
