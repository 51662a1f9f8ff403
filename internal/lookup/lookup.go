// Package lookup resolves catalog ids and customer phone numbers to records.
// Catalog reads go through a read-through cache, and every read is retried
// with backoff when the store reports a persistence failure.
package lookup

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"sagepos/backend/internal/cache"
	"sagepos/backend/internal/cart"
	"sagepos/backend/internal/domain"
	"sagepos/backend/internal/store"
)

const (
	productsKey       = "catalog:products"
	rentalProductsKey = "catalog:rental-products"
)

type Reader interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListRentalProducts(ctx context.Context) ([]domain.RentalProduct, error)
	GetRentalProduct(ctx context.Context, id string) (*domain.RentalProduct, error)
	GetCustomerByPhone(ctx context.Context, phone string) (*domain.Customer, error)
}

type Catalog struct {
	reader   Reader
	cache    cache.Store
	cacheTTL time.Duration
}

func NewCatalog(reader Reader, cacheStore cache.Store, cacheTTL time.Duration) *Catalog {
	if cacheStore == nil {
		cacheStore = cache.NoopStore{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &Catalog{reader: reader, cache: cacheStore, cacheTTL: cacheTTL}
}

func (c *Catalog) Products(ctx context.Context) ([]domain.Product, error) {
	var cached []domain.Product
	if c.fromCache(ctx, productsKey, &cached) {
		return cached, nil
	}
	products, err := Retry(ctx, func() ([]domain.Product, error) {
		return c.reader.ListProducts(ctx)
	})
	if err != nil {
		return nil, err
	}
	c.toCache(ctx, productsKey, products)
	return products, nil
}

func (c *Catalog) Product(ctx context.Context, id string) (*domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, store.Invalid("product_id", "product id is required")
	}
	key := "catalog:product:" + id
	var cached domain.Product
	if c.fromCache(ctx, key, &cached) {
		return &cached, nil
	}
	product, err := Retry(ctx, func() (*domain.Product, error) {
		return c.reader.GetProduct(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	c.toCache(ctx, key, product)
	return product, nil
}

func (c *Catalog) RentalProducts(ctx context.Context) ([]domain.RentalProduct, error) {
	var cached []domain.RentalProduct
	if c.fromCache(ctx, rentalProductsKey, &cached) {
		return cached, nil
	}
	products, err := Retry(ctx, func() ([]domain.RentalProduct, error) {
		return c.reader.ListRentalProducts(ctx)
	})
	if err != nil {
		return nil, err
	}
	c.toCache(ctx, rentalProductsKey, products)
	return products, nil
}

func (c *Catalog) RentalProduct(ctx context.Context, id string) (*domain.RentalProduct, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, store.Invalid("product_id", "rental product id is required")
	}
	key := "catalog:rental-product:" + id
	var cached domain.RentalProduct
	if c.fromCache(ctx, key, &cached) {
		return &cached, nil
	}
	product, err := Retry(ctx, func() (*domain.RentalProduct, error) {
		return c.reader.GetRentalProduct(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	c.toCache(ctx, key, product)
	return product, nil
}

// Customer is never cached: a rental commit may create the row at any time.
func (c *Catalog) Customer(ctx context.Context, phone string) (*domain.Customer, error) {
	return Retry(ctx, func() (*domain.Customer, error) {
		return c.reader.GetCustomerByPhone(ctx, phone)
	})
}

// Invalidate drops cached entries whose stock a commit has just changed.
func (c *Catalog) Invalidate(ctx context.Context, productIDs []string, rentalProductIDs []string) {
	keys := make([]string, 0, len(productIDs)+len(rentalProductIDs)+2)
	if len(productIDs) > 0 {
		keys = append(keys, productsKey)
	}
	if len(rentalProductIDs) > 0 {
		keys = append(keys, rentalProductsKey)
	}
	for _, id := range productIDs {
		keys = append(keys, "catalog:product:"+id)
	}
	for _, id := range rentalProductIDs {
		keys = append(keys, "catalog:rental-product:"+id)
	}
	if len(keys) == 0 {
		return
	}
	if err := c.cache.Delete(ctx, keys...); err != nil {
		log.Printf("[lookup] WARN: cache invalidation failed keys=%d: %v", len(keys), err)
	}
}

func (c *Catalog) ProductResolver() cart.Resolver {
	return cart.ResolverFunc(func(ctx context.Context, id string) (cart.Item, error) {
		product, err := c.Product(ctx, id)
		if err != nil {
			return cart.Item{}, err
		}
		return cart.Item{ID: product.ID, Name: product.Name, UnitPrice: product.Price, Stock: product.Stock}, nil
	})
}

func (c *Catalog) RentalProductResolver() cart.Resolver {
	return cart.ResolverFunc(func(ctx context.Context, id string) (cart.Item, error) {
		product, err := c.RentalProduct(ctx, id)
		if err != nil {
			return cart.Item{}, err
		}
		return cart.Item{ID: product.ID, Name: product.Name, UnitPrice: product.RentalPrice, Stock: product.Stock}, nil
	})
}

func (c *Catalog) fromCache(ctx context.Context, key string, dest any) bool {
	found, err := c.cache.Get(ctx, key, dest)
	if err != nil {
		log.Printf("[lookup] WARN: cache read failed key=%s: %v", key, err)
		return false
	}
	return found
}

func (c *Catalog) toCache(ctx context.Context, key string, value any) {
	if err := c.cache.Set(ctx, key, value, c.cacheTTL); err != nil {
		log.Printf("[lookup] WARN: cache write failed key=%s: %v", key, err)
	}
}

const maxAttempts = 3

var initialRetryInterval = 50 * time.Millisecond

// Retry runs an idempotent read up to three times, backing off exponentially.
// Only persistence failures are retried; any other error is returned at once.
func Retry[T any](ctx context.Context, read func() (T, error)) (T, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = initialRetryInterval
	policy.MaxElapsedTime = 0

	var result T
	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		value, err := read()
		if err == nil {
			result = value
			return nil
		}
		if !errors.Is(err, store.ErrPersistence) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, maxAttempts-1), ctx), func(err error, wait time.Duration) {
		log.Printf("[lookup] WARN: read attempt %d failed, retrying in %s: %v", attempt, wait, err)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
