// Package favourites is the locally persisted wish list.
package favourites

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/shashiranjanraj/storefront/internal/api"
	"github.com/shashiranjanraj/storefront/pkg/notify"
	"github.com/shashiranjanraj/storefront/pkg/store"
)

// Key is the store key holding the list.
const Key = "favourites"

// List holds favourite products in the order they were added, one per id.
type List struct {
	store  store.Store
	notify notify.Sink
	log    *slog.Logger

	mu       sync.RWMutex
	products []api.Product
}

// New loads the persisted list; unreadable data yields an empty one.
func New(ctx context.Context, s store.Store, n notify.Sink, log *slog.Logger) *List {
	if n == nil {
		n = notify.Discard{}
	}
	if log == nil {
		log = slog.Default()
	}
	l := &List{store: s, notify: n, log: log.With("component", "favourites"), products: []api.Product{}}

	var stored []api.Product
	err := store.GetJSON(ctx, s, Key, &stored)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		l.log.Warn("favourites: discarding unreadable list", "error", err)
	default:
		for _, p := range stored {
			if !contains(l.products, p.ID) {
				l.products = append(l.products, p)
			}
		}
	}
	return l
}

// Add appends p unless it is already present.
func (l *List) Add(ctx context.Context, p api.Product) {
	l.mu.Lock()
	if contains(l.products, p.ID) {
		l.mu.Unlock()
		return
	}
	l.products = append(l.products, p)
	l.persist(ctx)
	l.mu.Unlock()

	l.notify.Notify(p.Name+" added to favourites", notify.Success)
}

// Remove drops productID if present.
func (l *List) Remove(ctx context.Context, productID int64) {
	l.mu.Lock()
	out := make([]api.Product, 0, len(l.products))
	for _, p := range l.products {
		if p.ID != productID {
			out = append(out, p)
		}
	}
	if len(out) == len(l.products) {
		l.mu.Unlock()
		return
	}
	l.products = out
	l.persist(ctx)
	l.mu.Unlock()
}

// Toggle adds p when absent and removes it when present. It reports
// whether p is a favourite afterwards.
func (l *List) Toggle(ctx context.Context, p api.Product) bool {
	if l.Has(p.ID) {
		l.Remove(ctx, p.ID)
		return false
	}
	l.Add(ctx, p)
	return true
}

// Has reports whether productID is a favourite.
func (l *List) Has(productID int64) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return contains(l.products, productID)
}

// Products returns a copy of the list.
func (l *List) Products() []api.Product {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]api.Product{}, l.products...)
}

// persist writes the list. Callers hold mu. A failed write is logged and
// the in-memory list stays as it is, as the cart does.
func (l *List) persist(ctx context.Context) {
	if err := store.SetJSON(ctx, l.store, Key, l.products); err != nil {
		l.log.Error("favourites: persist failed", "error", err)
	}
}

func contains(ps []api.Product, id int64) bool {
	for _, p := range ps {
		if p.ID == id {
			return true
		}
	}
	return false
}
