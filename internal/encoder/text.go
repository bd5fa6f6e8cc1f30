// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package encoder

import (
	"strings"

	"github.com/tomtom215/sommelier/internal/models"
)

// EncodeText builds the canonical description of p that is fed to the
// embedder. Segment order is fixed: name, category, description, then
// country, brand, alcohol content and rating when the field is present on
// the record (a present but empty field still yields its label), then the
// tags separated by spaces.
func EncodeText(p *models.Product) string {
	var b strings.Builder
	b.Grow(len(p.Name) + len(p.Description) + len(p.Tags) + 96)

	b.WriteString("Wine: ")
	b.WriteString(p.Name)
	b.WriteString(". Category: ")
	b.WriteString(p.Category)
	b.WriteString(". Description: ")
	b.WriteString(p.Description)
	b.WriteString(". ")

	writeOptional(&b, "Country", p.Country)
	writeOptional(&b, "Brand", p.Brand)
	writeOptional(&b, "Alcohol Content", p.AlcoholContent)
	writeOptional(&b, "Rating", p.Rating)

	b.WriteString("Tags: ")
	b.WriteString(strings.ReplaceAll(p.Tags, ",", " "))
	return b.String()
}

func writeOptional(b *strings.Builder, label string, v *string) {
	if v == nil {
		return
	}
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(*v)
	b.WriteString(". ")
}
