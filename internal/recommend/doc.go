// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

// Package recommend is the wine recommendation engine.
//
// # Architecture
//
// The Engine coordinates four collaborators, all injected at construction:
//
//   - a product catalog (authoritative for which wines exist)
//   - a feedback store (per-user likes and dislikes)
//   - a vector store with two collections, "products" and "user_preferences"
//   - an embedder that turns product text into vectors
//
// Every product in the catalog has a vector in "products". Each user with
// feedback has at most one vector in "user_preferences", a materialized view
// recomputed in full on every feedback event:
//
//	preference = mean(liked) - 0.5 * mean(disliked)
//
// normalized to unit length only when the user has dislikes.
//
// # Recommendation
//
// Recommend looks up the user's preference vector, asks the products
// collection for the n + |excluded| nearest wines by cosine distance, drops
// excluded and unknown ids, and backfills any shortfall with a random sample
// of the remaining catalog. Users without a preference get a random sample.
// The random source is injectable (WithRand) so results are reproducible in
// tests.
//
// # Consistency
//
// Adds write the catalog first and remove the product again if the index
// write fails. Deletes are best effort on the index: a failure there is
// logged and counted, never returned, since the catalog decides what exists.
// RebuildPreferences repairs preference vectors left stale by deletes.
//
// # Thread Safety
//
// The engine is safe for concurrent use. Catalog mutations (add, delete,
// ingest, reset) are serialized. Feedback and preference updates are
// serialized per user, so different users proceed in parallel.
package recommend
