// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package encoder

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"

	"github.com/tomtom215/sommelier/internal/vecmath"
)

// HashingModel is the model name reported by HashingEmbedder.
const HashingModel = "feature-hashing-v1"

// HashingEmbedder is a local, deterministic embedder based on signed
// feature hashing of lower-cased word unigrams and bigrams. It needs no
// network and gives texts that share vocabulary a high cosine similarity,
// which is enough to drive content-based ranking offline and in tests.
type HashingEmbedder struct {
	dim int
}

// NewHashingEmbedder returns an embedder producing unit vectors of length dim.
func NewHashingEmbedder(dim int) (*HashingEmbedder, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("hashing embedder: dimension must be positive, got %d", dim)
	}
	return &HashingEmbedder{dim: dim}, nil
}

// Embed never fails except on a cancelled context.
func (h *HashingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float32, h.dim)
	tokens := tokenize(text)
	for i, tok := range tokens {
		h.add(vec, tok, 1)
		if i > 0 {
			h.add(vec, tokens[i-1]+" "+tok, 0.5)
		}
	}
	return vecmath.Normalize(vec), nil
}

// add folds one feature into vec. The low bits of the hash pick the bucket
// and the top bit picks the sign, so collisions tend to cancel.
func (h *HashingEmbedder) add(vec []float32, feature string, weight float32) {
	sum := xxhash.Sum64String(feature)
	idx := sum % uint64(h.dim)
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[idx] += weight
}

// Dimensions implements Embedder.
func (h *HashingEmbedder) Dimensions() int { return h.dim }

// Model implements Embedder.
func (h *HashingEmbedder) Model() string { return HashingModel }

// tokenize lower-cases text and splits it into words. Dots survive inside a
// token so that "14.5" stays one feature, but sentence punctuation is trimmed.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.'
	})
	out := fields[:0]
	for _, f := range fields {
		if f = strings.Trim(f, "."); f != "" {
			out = append(out, f)
		}
	}
	return out
}
