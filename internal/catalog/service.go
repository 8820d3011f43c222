package catalog

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/dataranlabs/storefront-backend/pkg/cache"
	"github.com/dataranlabs/storefront-backend/pkg/commerce"
	"github.com/dataranlabs/storefront-backend/pkg/errors"
	"github.com/dataranlabs/storefront-backend/pkg/logger"
)

// ListOptions filters a catalog listing. Zero values mean "no filter".
type ListOptions struct {
	Vendor     string
	Collection string
	Limit      int
}

type productFetcher interface {
	GetProducts(ctx context.Context) ([]commerce.Product, error)
	GetProductByHandle(ctx context.Context, handle string) (*commerce.Product, error)
}

// Service serves the product catalog from cache, falling back to the
// commerce platform on misses.
type Service interface {
	List(ctx context.Context, opts ListOptions) ([]commerce.Product, bool, error)
	Detail(ctx context.Context, handle string) (*commerce.Product, bool, error)
}

type service struct {
	fetcher productFetcher
	cache   cache.Namespace
	group   singleflight.Group
	logg    *logger.Logger
}

func NewService(fetcher productFetcher, ns cache.Namespace, logg *logger.Logger) (Service, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("product fetcher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{fetcher: fetcher, cache: ns, logg: logg}, nil
}

// List returns the filtered catalog. The full upstream listing is cached
// once and filters are applied per request, so distinct filter
// combinations never multiply upstream calls. Concurrent misses collapse
// into a single fetch. The second return reports a cache hit.
func (s *service) List(ctx context.Context, opts ListOptions) ([]commerce.Product, bool, error) {
	key := s.cache.Key("list")
	if products, ok := cache.Value[[]commerce.Product](s.cache, key); ok {
		return applyFilters(products, opts), true, nil
	}

	fetched, err, _ := s.group.Do(key, func() (any, error) {
		if products, ok := cache.Value[[]commerce.Product](s.cache, key); ok {
			return products, nil
		}
		products, err := s.fetcher.GetProducts(ctx)
		if err != nil {
			return nil, err
		}
		s.cache.Set(key, products)
		return products, nil
	})
	if err != nil {
		return nil, false, err
	}
	return applyFilters(fetched.([]commerce.Product), opts), false, nil
}

// Detail returns the product with the given handle, or NOT_FOUND.
func (s *service) Detail(ctx context.Context, handle string) (*commerce.Product, bool, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, false, errors.New(errors.CodeValidation, "product handle is required")
	}

	key := s.cache.Key("detail", handle)
	if product, ok := cache.Value[*commerce.Product](s.cache, key); ok {
		return product, true, nil
	}

	fetched, err, _ := s.group.Do(key, func() (any, error) {
		if product, ok := cache.Value[*commerce.Product](s.cache, key); ok {
			return product, nil
		}
		product, err := s.fetcher.GetProductByHandle(ctx, handle)
		if err != nil {
			return nil, err
		}
		s.cache.Set(key, product)
		return product, nil
	})
	if err != nil {
		return nil, false, err
	}
	return fetched.(*commerce.Product), false, nil
}

func applyFilters(products []commerce.Product, opts ListOptions) []commerce.Product {
	filtered := make([]commerce.Product, 0, len(products))
	for _, product := range products {
		if opts.Vendor != "" && !strings.EqualFold(product.Vendor, opts.Vendor) {
			continue
		}
		if opts.Collection != "" && !inCollection(product, opts.Collection) {
			continue
		}
		filtered = append(filtered, product)
	}
	if opts.Limit > 0 && len(filtered) > opts.Limit {
		filtered = filtered[:opts.Limit]
	}
	return filtered
}

func inCollection(product commerce.Product, handle string) bool {
	for _, collection := range product.Collections {
		if strings.EqualFold(collection.Handle, handle) {
			return true
		}
	}
	return false
}
