// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package recommend

import (
	"github.com/tomtom215/sommelier/internal/ingest"
	"github.com/tomtom215/sommelier/internal/models"
)

// ProductInput is a product submitted for manual add. ID is optional; the
// engine assigns one when blank. The creation time is always assigned.
type ProductInput struct {
	ID             string  `json:"id,omitempty" yaml:"id"`
	Name           string  `json:"name" yaml:"name" validate:"required,notblank"`
	Description    string  `json:"description" yaml:"description"`
	Price          float64 `json:"price" yaml:"price" validate:"gte=0"`
	Category       string  `json:"category" yaml:"category"`
	Tags           string  `json:"tags" yaml:"tags"`
	Country        *string `json:"country,omitempty" yaml:"country"`
	Brand          *string `json:"brand,omitempty" yaml:"brand"`
	AlcoholContent *string `json:"alcohol_content,omitempty" yaml:"alcohol_content"`
	Rating         *string `json:"rating,omitempty" yaml:"rating"`
	Image          string  `json:"image,omitempty" yaml:"image"`
}

// product converts the input to a catalog record without id or timestamp.
func (in *ProductInput) product() models.Product {
	p := models.Product{
		ID:          in.ID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Tags:        in.Tags,
		Image:       in.Image,
	}
	p.Country = copyPtr(in.Country)
	p.Brand = copyPtr(in.Brand)
	p.AlcoholContent = copyPtr(in.AlcoholContent)
	p.Rating = copyPtr(in.Rating)
	return p
}

func copyPtr(s *string) *string {
	if s == nil {
		return nil
	}
	return models.StringPtr(*s)
}

// FeedbackInput is one vote.
type FeedbackInput struct {
	UserID    string `json:"user_id" validate:"required,notblank"`
	ProductID string `json:"product_id" validate:"required,notblank"`
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

// Request asks for recommendations.
type Request struct {
	// UserID selects the preference vector. Blank means anonymous, which
	// always takes the random path.
	UserID string `json:"user_id"`

	// N is the number of products wanted. Zero yields an empty result;
	// values above the configured maximum are capped.
	N int `json:"n" validate:"gte=0"`

	// ExcludeIDs are never returned, typically what the user has already
	// been shown.
	ExcludeIDs []string `json:"exclude_ids,omitempty"`
}

// BootstrapOptions controls Bootstrap.
type BootstrapOptions struct {
	// Reset drops both vector collections and empties the catalog first.
	Reset bool

	// CSVPath is ingested when set. A missing file is logged and skipped.
	CSVPath string
}

// BootstrapResult reports what Bootstrap did.
type BootstrapResult struct {
	Reset    bool          `json:"reset"`
	Ingest   *ingest.Stats `json:"ingest,omitempty"`
	Samples  int           `json:"samples_added"`
	Products int           `json:"products"`
}

// RebuildStats reports a RebuildPreferences run.
type RebuildStats struct {
	Users   int `json:"users"`
	Updated int `json:"updated"`
	Cleared int `json:"cleared"`
	Failed  int `json:"failed"`
}
