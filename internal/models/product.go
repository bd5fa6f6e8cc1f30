// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package models

import (
	"strconv"
	"strings"
	"time"
)

// Product is a wine in the catalog.
type Product struct {
	// ID is unique across the catalog. Generated as a UUID when absent.
	ID string `json:"id"`

	// Name is required.
	Name string `json:"name" validate:"required"`

	Description string `json:"description"`

	// Price is non-negative. Unparseable source prices become 0.
	Price float64 `json:"price" validate:"gte=0"`

	Category string `json:"category"`

	// Tags is a comma-separated list.
	Tags string `json:"tags"`

	Country        *string `json:"country,omitempty"`
	Brand          *string `json:"brand,omitempty"`
	AlcoholContent *string `json:"alcohol_content,omitempty"`
	Rating         *string `json:"rating,omitempty"`

	Image string `json:"image,omitempty"`

	// CreatedAt is set once when the product enters the catalog.
	CreatedAt time.Time `json:"created_at"`
}

// TagList splits Tags on commas, trimming whitespace and dropping empty entries.
func (p *Product) TagList() []string {
	if p.Tags == "" {
		return nil
	}
	parts := strings.Split(p.Tags, ",")
	out := make([]string, 0, len(parts))
	for _, t := range parts {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Metadata is the attribute map stored alongside a product's vector.
func (p *Product) Metadata() map[string]string {
	md := map[string]string{
		"product_id": p.ID,
		"name":       p.Name,
		"category":   p.Category,
		"price":      strconv.FormatFloat(p.Price, 'f', -1, 64),
	}
	if p.Country != nil {
		md["country"] = *p.Country
	}
	if p.AlcoholContent != nil {
		md["alcohol_content"] = *p.AlcoholContent
	}
	if p.Rating != nil {
		md["rating"] = *p.Rating
	}
	return md
}

// Clone returns a deep copy.
func (p *Product) Clone() Product {
	c := *p
	c.Country = cloneStr(p.Country)
	c.Brand = cloneStr(p.Brand)
	c.AlcoholContent = cloneStr(p.AlcoholContent)
	c.Rating = cloneStr(p.Rating)
	return c
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
