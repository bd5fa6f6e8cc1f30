// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package recommend

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/tomtom215/sommelier/internal/metrics"
	"github.com/tomtom215/sommelier/internal/models"
	"github.com/tomtom215/sommelier/internal/validation"
	"github.com/tomtom215/sommelier/internal/vecmath"
)

// RecordFeedback stores a vote and recomputes the user's preference vector.
// Invalid input is rejected before any state changes.
func (e *Engine) RecordFeedback(ctx context.Context, userID, productID, direction string) (models.UserFeedback, error) {
	in := FeedbackInput{UserID: userID, ProductID: productID, Direction: direction}
	if verr := validation.ValidateStruct(&in); verr != nil {
		switch {
		case verr.HasField("product_id"):
			return models.UserFeedback{}, fmt.Errorf("%w: %s", ErrEmptyProductID, verr.Error())
		case verr.HasField("user_id"):
			return models.UserFeedback{}, fmt.Errorf("%w: %s", ErrEmptyUserID, verr.Error())
		default:
			return models.UserFeedback{}, fmt.Errorf("%w: %s", ErrInvalidDirection, verr.Error())
		}
	}
	dir, err := models.ParseDirection(direction)
	if err != nil {
		return models.UserFeedback{}, err
	}

	unlock := e.userLocks.Lock(userID)
	defer unlock()

	uf, err := e.feedback.Record(ctx, userID, productID, dir, e.now())
	if err != nil {
		return models.UserFeedback{}, fmt.Errorf("record feedback: %w", err)
	}
	metrics.FeedbackEventsTotal.WithLabelValues(string(dir)).Inc()

	if _, _, err := e.refreshLocked(ctx, userID); err != nil {
		return uf, err
	}

	e.logger.Debug().
		Str("user_id", userID).
		Str("product_id", productID).
		Str("direction", string(dir)).
		Msg("Feedback recorded")
	return uf, nil
}

// ComputePreference derives userID's preference vector from current
// feedback and catalog state. Products are visited in catalog order and ids
// no longer in the catalog are ignored. The boolean is false when the user
// has no liked or disliked product left.
func (e *Engine) ComputePreference(ctx context.Context, userID string) ([]float32, bool, error) {
	uf, _ := e.feedback.User(userID)
	if uf.Empty() {
		return nil, false, nil
	}

	likes := toSet(uf.Likes)
	dislikes := toSet(uf.Dislikes)
	var liked, disliked []models.Product
	for _, p := range e.products.All() {
		if _, ok := likes[p.ID]; ok {
			liked = append(liked, p)
		} else if _, ok := dislikes[p.ID]; ok {
			disliked = append(disliked, p)
		}
	}
	if len(liked) == 0 && len(disliked) == 0 {
		return nil, false, nil
	}

	vecs, errs := e.embedAll(ctx, append(append([]models.Product{}, liked...), disliked...))
	for _, err := range errs {
		if err != nil {
			return nil, false, err
		}
	}

	dim := e.embedder.Dimensions()
	likedCentroid, err := vecmath.Mean(vecs[:len(liked)], dim)
	if err != nil {
		return nil, false, fmt.Errorf("liked centroid: %w", err)
	}
	dislikedCentroid, err := vecmath.Mean(vecs[len(liked):], dim)
	if err != nil {
		return nil, false, fmt.Errorf("disliked centroid: %w", err)
	}

	pref, err := vecmath.SubScaled(likedCentroid, dislikedCentroid, e.config.DislikeWeight)
	if err != nil {
		return nil, false, err
	}
	if len(disliked) > 0 && vecmath.Norm(pref) > 0 {
		pref = vecmath.Normalize(pref)
	}
	return pref, true, nil
}

// RefreshPreference recomputes and stores userID's preference vector. When
// the user no longer has one, any stored vector is removed. It reports
// whether a vector is now stored.
func (e *Engine) RefreshPreference(ctx context.Context, userID string) (bool, error) {
	unlock := e.userLocks.Lock(userID)
	defer unlock()

	_, ok, err := e.refreshLocked(ctx, userID)
	return ok, err
}

// refreshLocked is RefreshPreference for callers holding the user's lock.
func (e *Engine) refreshLocked(ctx context.Context, userID string) ([]float32, bool, error) {
	start := time.Now()
	defer func() {
		metrics.PreferenceRecomputeDuration.Observe(time.Since(start).Seconds())
	}()

	pref, ok, err := e.ComputePreference(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("compute preference for %s: %w", userID, err)
	}

	coll := e.preferenceCollection()
	if !ok {
		if err := coll.Delete(ctx, userID); err != nil {
			return nil, false, fmt.Errorf("clear preference for %s: %w", userID, err)
		}
		return nil, false, nil
	}

	uf, _ := e.feedback.User(userID)
	meta := map[string]string{
		"user_id":    userID,
		"likes":      strconv.Itoa(len(uf.Likes)),
		"dislikes":   strconv.Itoa(len(uf.Dislikes)),
		"updated_at": e.now().UTC().Format(time.RFC3339),
	}
	if err := coll.Upsert(ctx, userID, pref, meta); err != nil {
		return nil, false, fmt.Errorf("store preference for %s: %w", userID, err)
	}
	return pref, true, nil
}

// RebuildPreferences recomputes every user's preference vector. Failures
// for one user are logged and counted; the run continues unless ctx ends.
func (e *Engine) RebuildPreferences(ctx context.Context) (RebuildStats, error) {
	var stats RebuildStats
	for _, userID := range e.feedback.Users() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Users++
		ok, err := e.RefreshPreference(ctx, userID)
		switch {
		case err != nil:
			stats.Failed++
			e.logger.Warn().Err(err).Str("user_id", userID).Msg("Preference rebuild failed")
		case ok:
			stats.Updated++
		default:
			stats.Cleared++
		}
	}

	e.logger.Info().
		Int("users", stats.Users).
		Int("updated", stats.Updated).
		Int("cleared", stats.Cleared).
		Int("failed", stats.Failed).
		Msg("Preferences rebuilt")
	return stats, nil
}

func toSet(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
