// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

/*
Package models defines the data structures shared across Sommelier.

Key Components:

  - Product: a wine in the catalog, persisted in the products document
  - UserFeedback: one user's liked and disliked product ids
  - Direction: the vote carried by a feedback event (up or down)

Optional product attributes (country, brand, alcohol content, rating) are
pointers so that a field that was never supplied can be told apart from a
field supplied as the empty string. The text encoder relies on that
distinction.
*/
package models
