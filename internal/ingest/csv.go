// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

// Package ingest reads catalog exports and maps their rows to products.
//
// The expected input is a retailer product export with a header row. Only
// these columns are read; any others are ignored:
//
//	permanent_id, title, description, price, category, subcategory,
//	country, brand, alcohol_content, rating, image_url
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/tomtom215/sommelier/internal/models"
)

// Column names in the export header.
const (
	ColID             = "permanent_id"
	ColTitle          = "title"
	ColDescription    = "description"
	ColPrice          = "price"
	ColCategory       = "category"
	ColSubcategory    = "subcategory"
	ColCountry        = "country"
	ColBrand          = "brand"
	ColAlcoholContent = "alcohol_content"
	ColRating         = "rating"
	ColImage          = "image_url"
)

// ErrEmptyName marks a row whose title is blank. Such rows are skipped.
var ErrEmptyName = errors.New("row has no title")

// Stats summarizes one ingestion run.
type Stats struct {
	Rows    int `json:"rows"`
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Row is one data row keyed by header name. Line is the 1-based line number
// in the source, counting the header.
type Row struct {
	Line   int
	Fields map[string]string
}

// Get returns the value of column, or "" when the column is absent.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r.Fields[column])
}

// lookup returns the value of column and whether the column exists.
func (r Row) lookup(column string) (string, bool) {
	v, ok := r.Fields[column]
	return strings.TrimSpace(v), ok
}

// ReadFile opens path and calls fn for each data row. A malformed row is
// passed to onError and skipped; an error from fn stops the scan.
func ReadFile(ctx context.Context, path string, fn func(Row) error, onError func(line int, err error)) error {
	f, err := os.Open(path) //nolint:gosec // path is an operator-supplied import file
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return Read(ctx, f, fn, onError)
}

// Read is ReadFile over an arbitrary reader.
func Read(ctx context.Context, r io.Reader, fn func(Row) error, onError func(line int, err error)) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) && onError != nil {
				onError(perr.Line, err)
				continue
			}
			return fmt.Errorf("read row: %w", err)
		}

		line, _ := cr.FieldPos(0)
		fields := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				fields[name] = record[i]
			}
		}
		if err := fn(Row{Line: line, Fields: fields}); err != nil {
			return err
		}
	}
}

// MapRow converts a row to a product. newID supplies an id when the row has
// no permanent_id. An unparseable price becomes 0.
func MapRow(row Row, newID func() string) (models.Product, error) {
	name := row.Get(ColTitle)
	if name == "" {
		return models.Product{}, ErrEmptyName
	}

	id := row.Get(ColID)
	if id == "" {
		id = newID()
	}

	category, ok := row.lookup(ColSubcategory)
	if !ok {
		category = row.Get(ColCategory)
	}

	alcohol := row.Get(ColAlcoholContent)
	rating := "0"
	if v, ok := row.lookup(ColRating); ok {
		rating = v
	}

	p := models.Product{
		ID:          id,
		Name:        name,
		Description: row.Get(ColDescription),
		Price:       parsePrice(row.Get(ColPrice)),
		Category:    category,
		Tags:        strings.Join([]string{row.Get(ColCountry), row.Get(ColBrand), alcohol}, ","),
		Image:       row.Get(ColImage),
		Rating:      models.StringPtr(rating),
	}
	if _, ok := row.lookup(ColAlcoholContent); ok {
		p.AlcoholContent = models.StringPtr(alcohol)
	} else {
		p.AlcoholContent = models.StringPtr("0")
	}
	return p, nil
}

// IndexMetadata returns the vector metadata for a product mapped from row.
// Country lives only in the tags and here; it is not part of the product,
// so it never reaches the embedded text. Optional columns missing from the
// row are stored as empty strings.
func IndexMetadata(row Row, p *models.Product) map[string]string {
	md := p.Metadata()
	md["country"] = row.Get(ColCountry)
	md["alcohol_content"] = row.Get(ColAlcoholContent)
	md["rating"] = row.Get(ColRating)
	return md
}

// parsePrice parses a decimal price, tolerating a leading currency sign and
// thousands separators. Anything else, including negatives, yields 0.
func parsePrice(s string) float64 {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
