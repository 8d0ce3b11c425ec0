// Package catalog fronts the product API with request deduplication and a
// short-lived cache, so rapid navigation between views does not hammer the
// same endpoints.
package catalog

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/giorgi-beruashvili/redseam-clothing/internal/api"
	"github.com/giorgi-beruashvili/redseam-clothing/internal/domain"
)

const productTTL = 5 * time.Minute

// Sort tokens accepted by the listing toolbar; anything else falls back to
// newest.
const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

var allowedSorts = map[string]bool{
	SortNewest:    true,
	SortOldest:    true,
	SortPriceAsc:  true,
	SortPriceDesc: true,
}

// ProductAPI is the slice of the gateway client the catalog reads through.
type ProductAPI interface {
	ListProducts(ctx context.Context, params api.ListParams) (*api.ProductPage, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
}

type cachedProduct struct {
	product   domain.Product
	expiresAt time.Time
}

type Service struct {
	api ProductAPI
	sfg singleflight.Group // collapses concurrent fetches of one product
	log *zap.Logger

	mu    sync.RWMutex
	cache map[int64]cachedProduct
}

func NewService(a ProductAPI, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		api:   a,
		log:   log,
		cache: make(map[int64]cachedProduct),
	}
}

// ListProducts sanitizes the toolbar inputs the way the UI does: page
// clamps to 1, unknown sorts fall back to newest, and a min above max
// swaps the pair.
func (s *Service) ListProducts(ctx context.Context, page int, sort string, priceFrom, priceTo *int) (*api.ProductPage, error) {
	if page < 1 {
		page = 1
	}
	if !allowedSorts[sort] {
		sort = SortNewest
	}
	if priceFrom != nil && priceTo != nil && *priceFrom > *priceTo {
		priceFrom, priceTo = priceTo, priceFrom
	}
	return s.api.ListProducts(ctx, api.ListParams{
		Page:      page,
		Sort:      sort,
		PriceFrom: priceFrom,
		PriceTo:   priceTo,
	})
}

// GetProduct serves from cache when fresh and otherwise fetches once per
// product id regardless of how many callers are waiting.
func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	if p, ok := s.cached(id); ok {
		return p, nil
	}

	v, err, _ := s.sfg.Do(strconv.FormatInt(id, 10), func() (interface{}, error) {
		if p, ok := s.cached(id); ok {
			return p, nil
		}
		p, err := s.api.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cache[id] = cachedProduct{product: *p, expiresAt: time.Now().Add(productTTL)}
		s.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Product), nil
}

func (s *Service) cached(id int64) (*domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.cache[id]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	p := entry.product
	return &p, true
}
