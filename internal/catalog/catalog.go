// Package catalog pages through the product listing.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/shashiranjanraj/storefront/internal/api"
)

// Backend is the subset of api.Client used here.
type Backend interface {
	Products(ctx context.Context, category string, q api.Query) (*api.Page, error)
}

// Catalog keeps the most recently loaded page.
type Catalog struct {
	api Backend
	log *slog.Logger

	mu   sync.RWMutex
	page api.Page
	err  error
}

func New(b Backend, log *slog.Logger) *Catalog {
	if log == nil {
		log = slog.Default()
	}
	return &Catalog{api: b, log: log.With("component", "catalog"), page: api.Page{Content: []api.Product{}, Size: api.DefaultPageSize}}
}

// List loads one page of the whole catalog.
func (c *Catalog) List(ctx context.Context, q api.Query) (api.Page, error) {
	return c.ListByCategory(ctx, "", q)
}

// ListByCategory loads one page of category; "" means every category.
// On failure the previous page is kept.
func (c *Catalog) ListByCategory(ctx context.Context, category string, q api.Query) (api.Page, error) {
	page, err := c.api.Products(ctx, category, q)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.log.Warn("catalog: fetch failed", "category", category, "error", err)
		kind := api.ErrNetwork
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			kind = apiErr.Kind
		}
		c.err = &api.Error{Op: "catalog.list", Kind: kind, Status: api.StatusOf(err), Message: "Failed to fetch products", Err: err}
		return c.page, c.err
	}
	c.page, c.err = *page, nil
	return c.page, nil
}

// Page returns the last loaded page.
func (c *Catalog) Page() api.Page {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p := c.page
	p.Content = append([]api.Product{}, c.page.Content...)
	return p
}

// Err is the last load error, nil after a success.
func (c *Catalog) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}
