// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/sommelier/internal/encoder"
	"github.com/tomtom215/sommelier/internal/models"
	"github.com/tomtom215/sommelier/internal/vectorindex"
)

// ProductStore is the catalog the engine treats as authoritative.
type ProductStore interface {
	Add(ctx context.Context, p models.Product) (models.Product, error)
	AddBatch(ctx context.Context, batch []models.Product) ([]models.Product, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeleteMany(ctx context.Context, ids []string) (bool, error)
	Clear(ctx context.Context) error
	All() []models.Product
	Get(id string) (models.Product, bool)
	Contains(id string) bool
	Len() int
}

// FeedbackStore persists user votes.
type FeedbackStore interface {
	Record(ctx context.Context, userID, productID string, dir models.Direction, at time.Time) (models.UserFeedback, error)
	User(userID string) (models.UserFeedback, bool)
	Users() []string
}

// VectorStore hosts the engine's two collections.
type VectorStore interface {
	GetOrCreateCollection(ctx context.Context, name string) (*vectorindex.Collection, vectorindex.CollectionStatus, error)
	DeleteCollection(ctx context.Context, name string) error
	Collections() ([]string, error)
}

// Deps are the engine's collaborators. All are required.
type Deps struct {
	Products ProductStore
	Feedback FeedbackStore
	Vectors  VectorStore
	Embedder encoder.Embedder
}

// Engine produces wine recommendations. It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	products ProductStore
	feedback FeedbackStore
	vectors  VectorStore
	embedder encoder.Embedder

	// Collection handles are replaced by a reset.
	collMu      sync.RWMutex
	productVecs *vectorindex.Collection
	prefVecs    *vectorindex.Collection

	// catalogMu serializes catalog mutations with their index writes.
	catalogMu sync.Mutex

	userLocks  *keyedMutex
	prefFlight singleflight.Group

	// Random source (protected by rngMu for concurrent access)
	rng   *rand.Rand
	rngMu sync.Mutex

	now   func() time.Time
	newID func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand replaces the sampling random source.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithClock replaces the feedback timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator replaces product id generation.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) { e.newID = gen }
}

// NewEngine creates an engine and opens both vector collections. When the
// products collection had to be created while the catalog already holds
// products, the missing vectors are rebuilt before returning.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(ctx context.Context, deps Deps, cfg *Config, logger zerolog.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if deps.Products == nil || deps.Feedback == nil || deps.Vectors == nil || deps.Embedder == nil {
		return nil, errors.New("recommend: products, feedback, vectors and embedder are required")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := &Engine{
		config:    cfg,
		logger:    logger.With().Str("component", "recommend").Logger(),
		products:  deps.Products,
		feedback:  deps.Feedback,
		vectors:   deps.Vectors,
		embedder:  deps.Embedder,
		userLocks: newKeyedMutex(),
		rng:       rand.New(rand.NewSource(seed)), //nolint:gosec // math/rand is fine for recommendation sampling
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(e)
	}

	status, err := e.openCollections(ctx)
	if err != nil {
		return nil, err
	}
	if status == vectorindex.CollectionCreated && e.products.Len() > 0 {
		e.logger.Warn().
			Int("products", e.products.Len()).
			Msg("Products collection was missing; rebuilding product vectors")
		if _, err := e.Reindex(ctx); err != nil {
			return nil, fmt.Errorf("rebuild product vectors: %w", err)
		}
	}

	e.logger.Info().
		Int("products", e.products.Len()).
		Str("model", e.embedder.Model()).
		Int("dimensions", e.embedder.Dimensions()).
		Msg("Recommendation engine ready")
	return e, nil
}

// openCollections (re)acquires both collection handles and returns the
// status of the products collection.
func (e *Engine) openCollections(ctx context.Context) (vectorindex.CollectionStatus, error) {
	products, status, err := e.vectors.GetOrCreateCollection(ctx, vectorindex.ProductsCollection)
	if err != nil {
		return 0, fmt.Errorf("open %s collection: %w", vectorindex.ProductsCollection, err)
	}
	prefs, prefStatus, err := e.vectors.GetOrCreateCollection(ctx, vectorindex.PreferencesCollection)
	if err != nil {
		return 0, fmt.Errorf("open %s collection: %w", vectorindex.PreferencesCollection, err)
	}

	e.collMu.Lock()
	e.productVecs, e.prefVecs = products, prefs
	e.collMu.Unlock()

	e.logger.Debug().
		Stringer("products", status).
		Stringer("user_preferences", prefStatus).
		Msg("Vector collections opened")
	return status, nil
}

func (e *Engine) productCollection() *vectorindex.Collection {
	e.collMu.RLock()
	defer e.collMu.RUnlock()
	return e.productVecs
}

func (e *Engine) preferenceCollection() *vectorindex.Collection {
	e.collMu.RLock()
	defer e.collMu.RUnlock()
	return e.prefVecs
}

// embedProduct returns the vector for p's canonical text.
func (e *Engine) embedProduct(ctx context.Context, p *models.Product) ([]float32, error) {
	vec, err := e.embedder.Embed(ctx, encoder.EncodeText(p))
	if err != nil {
		return nil, fmt.Errorf("embed product %s: %w", p.ID, err)
	}
	return vec, nil
}

// Products returns the catalog in insertion order.
func (e *Engine) Products() []models.Product {
	return e.products.All()
}

// Product returns one catalog entry.
func (e *Engine) Product(id string) (models.Product, bool) {
	return e.products.Get(id)
}

// UserFeedback returns userID's votes; unknown users get an empty record.
func (e *Engine) UserFeedback(userID string) models.UserFeedback {
	uf, _ := e.feedback.User(userID)
	return uf
}
