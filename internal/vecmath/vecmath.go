// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

// Package vecmath holds the small amount of dense vector arithmetic used by
// the index and the preference aggregator. Accumulation is done in float64
// and results are returned as float32, the element type stored everywhere.
package vecmath

import (
	"errors"
	"math"
)

// ErrDimensionMismatch is returned when vectors of different lengths are combined.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Dot returns the dot product of a and b. Lengths must match.
func Dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// Norm returns the L2 norm of v.
func Norm(v []float32) float64 {
	return math.Sqrt(Dot(v, v))
}

// Normalize returns v scaled to unit length. A zero vector is returned as a
// copy, unchanged.
func Normalize(v []float32) []float32 {
	out := make([]float32, len(v))
	n := Norm(v)
	if n == 0 {
		copy(out, v)
		return out
	}
	for i, x := range v {
		out[i] = float32(float64(x) / n)
	}
	return out
}

// Mean returns the element-wise mean of vectors, each of length dim.
// An empty input yields the zero vector of length dim.
func Mean(vectors [][]float32, dim int) ([]float32, error) {
	acc := make([]float64, dim)
	for _, v := range vectors {
		if len(v) != dim {
			return nil, ErrDimensionMismatch
		}
		for i, x := range v {
			acc[i] += float64(x)
		}
	}
	out := make([]float32, dim)
	if len(vectors) == 0 {
		return out, nil
	}
	n := float64(len(vectors))
	for i, x := range acc {
		out[i] = float32(x / n)
	}
	return out, nil
}

// SubScaled returns a - w*b.
func SubScaled(a, b []float32, w float64) ([]float32, error) {
	if len(a) != len(b) {
		return nil, ErrDimensionMismatch
	}
	out := make([]float32, len(a))
	for i := range a {
		out[i] = float32(float64(a[i]) - w*float64(b[i]))
	}
	return out, nil
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0
// when either is a zero vector or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// CosineDistance returns 1 - CosineSimilarity(a, b), in [0, 2].
func CosineDistance(a, b []float32) float64 {
	return 1 - CosineSimilarity(a, b)
}
