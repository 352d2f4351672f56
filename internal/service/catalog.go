package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"frontofhouse/internal/cms"
	"frontofhouse/internal/model"
	"frontofhouse/internal/summary"
)

type Kind string

const (
	KindCategories    Kind = cms.CollectionCategories
	KindSubcategories Kind = cms.CollectionSubcategories
	KindExtras        Kind = cms.CollectionExtras
	KindQuickNotes    Kind = cms.CollectionQuickNotes
	KindProducts      Kind = cms.CollectionProducts
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindCategories, KindSubcategories, KindExtras, KindQuickNotes, KindProducts:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// CatalogBackend is satisfied by *cms.Client.
type CatalogBackend interface {
	Products(ctx context.Context) ([]model.Product, error)
	Categories(ctx context.Context) ([]model.Category, error)
	Subcategories(ctx context.Context) ([]model.Subcategory, error)
	Extras(ctx context.Context) ([]model.Extra, error)
	QuickNotes(ctx context.Context) ([]model.QuickNote, error)
	Create(ctx context.Context, collection string, payload, out any) error
	Update(ctx context.Context, collection, documentID string, payload, out any) error
	Delete(ctx context.Context, collection, documentID string) error
}

// Record is the write shape shared by every catalog kind; fields that do not
// apply to a kind are ignored.
type Record struct {
	Name           string           `json:"name"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	AlwaysPrepared bool             `json:"alwaysPrepared,omitempty"`
	Category       *int             `json:"category,omitempty"`
	Subcategory    *int             `json:"subcategory,omitempty"`
	Extras         []int            `json:"extras,omitempty"`
	QuickNotes     []int            `json:"quick_notes,omitempty"`
}

type CatalogService struct {
	backend CatalogBackend

	mu       sync.Mutex
	products []model.Product
	loaded   bool
}

func NewCatalogService(backend CatalogBackend) *CatalogService {
	return &CatalogService{backend: backend}
}

func (s *CatalogService) List(ctx context.Context, kind Kind) (any, error) {
	switch kind {
	case KindCategories:
		return s.backend.Categories(ctx)
	case KindSubcategories:
		return s.backend.Subcategories(ctx)
	case KindExtras:
		return s.backend.Extras(ctx)
	case KindQuickNotes:
		return s.backend.QuickNotes(ctx)
	case KindProducts:
		return s.loadProducts(ctx)
	}
	return nil, ErrUnknownKind
}

func (s *CatalogService) Create(ctx context.Context, kind Kind, rec Record) (json.RawMessage, error) {
	payload, err := rec.payload(kind)
	if err != nil {
		return nil, err
	}
	var out json.RawMessage
	if err := s.backend.Create(ctx, string(kind), payload, &out); err != nil {
		return nil, fmt.Errorf("create %s: %w", kind, err)
	}
	s.Invalidate()
	return out, nil
}

func (s *CatalogService) Update(ctx context.Context, kind Kind, documentID string, rec Record) (json.RawMessage, error) {
	payload, err := rec.payload(kind)
	if err != nil {
		return nil, err
	}
	var out json.RawMessage
	if err := s.backend.Update(ctx, string(kind), documentID, payload, &out); err != nil {
		return nil, fmt.Errorf("update %s: %w", kind, err)
	}
	s.Invalidate()
	return out, nil
}

func (s *CatalogService) Delete(ctx context.Context, kind Kind, documentID string) error {
	if _, err := ParseKind(string(kind)); err != nil {
		return err
	}
	if err := s.backend.Delete(ctx, string(kind), documentID); err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	s.Invalidate()
	return nil
}

// Menu returns the products matching term, grouped for ordering.
func (s *CatalogService) Menu(ctx context.Context, term string) ([]summary.MenuSection, error) {
	products, err := s.loadProducts(ctx)
	if err != nil {
		return nil, err
	}
	return summary.Menu(summary.Search(products, term)), nil
}

// Product resolves a product by id from the cached catalog, reloading once
// on a miss.
func (s *CatalogService) Product(ctx context.Context, id int) (model.Product, error) {
	products, err := s.loadProducts(ctx)
	if err != nil {
		return model.Product{}, err
	}
	if p, ok := productByID(products, id); ok {
		return p, nil
	}

	s.Invalidate()
	products, err = s.loadProducts(ctx)
	if err != nil {
		return model.Product{}, err
	}
	if p, ok := productByID(products, id); ok {
		return p, nil
	}
	return model.Product{}, ErrProductNotFound
}

func (s *CatalogService) loadProducts(ctx context.Context) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.products, nil
	}
	products, err := s.backend.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	s.products = products
	s.loaded = true
	return products, nil
}

// Invalidate drops the cached products; the next read reloads them.
func (s *CatalogService) Invalidate() {
	s.mu.Lock()
	s.loaded = false
	s.products = nil
	s.mu.Unlock()
}

func productByID(products []model.Product, id int) (model.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

func (r Record) payload(kind Kind) (map[string]any, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidRecord)
	}
	if r.Price != nil && r.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidRecord)
	}

	payload := map[string]any{"name": name}
	switch kind {
	case KindCategories, KindSubcategories, KindQuickNotes:
	case KindExtras:
		payload["price"] = priceOrZero(r.Price)
	case KindProducts:
		if r.Category == nil {
			return nil, fmt.Errorf("%w: category is required", ErrInvalidRecord)
		}
		payload["price"] = priceOrZero(r.Price)
		payload["alwaysPrepared"] = r.AlwaysPrepared
		payload["category"] = *r.Category
		if r.Subcategory != nil {
			payload["subcategory"] = *r.Subcategory
		}
		payload["extras"] = idsOrEmpty(r.Extras)
		payload["quick_notes"] = idsOrEmpty(r.QuickNotes)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return payload, nil
}

// priceOrZero sends prices as JSON numbers, which is what the backend's
// decimal fields accept.
func priceOrZero(p *decimal.Decimal) json.Number {
	if p == nil {
		return json.Number("0")
	}
	return json.Number(p.String())
}

func idsOrEmpty(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}
