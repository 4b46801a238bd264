// Package cart keeps the shopping cart in memory and mirrors every change
// to the persistent store under Key. Guest carts work the same as signed-in
// ones; the backend only sees the cart at checkout.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/storefront/internal/api"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/notify"
	"github.com/shashiranjanraj/storefront/pkg/store"
)

// Key is the store key holding the serialized cart.
const Key = "cart"

// ErrInvalidProduct is returned when a product cannot be a line item.
var ErrInvalidProduct = errors.New("cart: invalid product")

// Item is one line: the product as it was when added, plus a quantity >= 1.
type Item struct {
	api.Product
	Quantity int `json:"quantity"`
}

// Subtotal is price * quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Options configures a Manager. Store is required.
type Options struct {
	Store    store.Store
	Notifier notify.Sink
	Logger   *slog.Logger
}

// Manager owns the cart. It is safe for concurrent use; across processes
// sharing one store the last write wins.
type Manager struct {
	store  store.Store
	notify notify.Sink
	log    *slog.Logger

	mu        sync.RWMutex
	items     []Item
	listeners map[int]func([]Item)
	nextID    int
}

// New loads any persisted cart. Unreadable data yields an empty cart.
func New(ctx context.Context, opts Options) *Manager {
	m := &Manager{
		store:     opts.Store,
		notify:    opts.Notifier,
		log:       opts.Logger,
		listeners: map[int]func([]Item){},
	}
	if m.notify == nil {
		m.notify = notify.Discard{}
	}
	if m.log == nil {
		m.log = slog.Default()
	}
	m.log = m.log.With("component", "cart")
	m.items = m.hydrate(ctx)
	metrics.CartItems.Set(float64(count(m.items)))
	return m
}

func (m *Manager) hydrate(ctx context.Context) []Item {
	var items []Item
	err := store.GetJSON(ctx, m.store, Key, &items)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return []Item{}
	case err != nil:
		m.log.Warn("cart: discarding unreadable cart", "error", err)
		return []Item{}
	}

	// Drop anything a well-behaved writer would never have stored.
	valid := items[:0]
	seen := map[int64]bool{}
	for _, it := range items {
		if it.Quantity < 1 || it.Price.IsNegative() || seen[it.ID] {
			m.log.Warn("cart: dropping invalid line item", "product_id", it.ID, "quantity", it.Quantity)
			continue
		}
		seen[it.ID] = true
		valid = append(valid, it)
	}
	return valid
}

// AddToCart adds quantity of p, merging into an existing line for the same
// product. A quantity below 1 counts as 1.
func (m *Manager) AddToCart(ctx context.Context, p api.Product, quantity int) error {
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: negative price for product %d", ErrInvalidProduct, p.ID)
	}
	if quantity < 1 {
		quantity = 1
	}

	merged := false
	m.mutate(ctx, func(items []Item) []Item {
		for i := range items {
			if items[i].ID == p.ID {
				items[i].Quantity += quantity
				merged = true
				return items
			}
		}
		return append(items, Item{Product: p, Quantity: quantity})
	})

	if merged {
		m.notify.Notify(fmt.Sprintf("Updated %s quantity in cart", p.Name), notify.Cart)
	} else {
		m.notify.Notify(fmt.Sprintf("%s added to cart", p.Name), notify.Cart)
	}
	return nil
}

// Add adds one unit of p.
func (m *Manager) Add(ctx context.Context, p api.Product) error {
	return m.AddToCart(ctx, p, 1)
}

// RemoveFromCart drops the line for productID. Unknown ids are ignored.
func (m *Manager) RemoveFromCart(ctx context.Context, productID int64) {
	var removed *Item
	m.mutate(ctx, func(items []Item) []Item {
		out := items[:0]
		for _, it := range items {
			if it.ID == productID {
				it := it
				removed = &it
				continue
			}
			out = append(out, it)
		}
		return out
	})
	if removed != nil {
		m.notify.Notify(fmt.Sprintf("%s removed from cart", removed.Name), notify.Cart)
	}
}

// UpdateQuantity sets the quantity for productID. Values below 1 are
// ignored; use RemoveFromCart to drop a line.
func (m *Manager) UpdateQuantity(ctx context.Context, productID int64, quantity int) {
	if quantity < 1 {
		return
	}
	m.mutate(ctx, func(items []Item) []Item {
		for i := range items {
			if items[i].ID == productID {
				items[i].Quantity = quantity
			}
		}
		return items
	})
}

// ClearCart empties the cart.
func (m *Manager) ClearCart(ctx context.Context) {
	m.mutate(ctx, func([]Item) []Item { return []Item{} })
	m.notify.Notify("Cart cleared", notify.Cart)
}

// mutate applies fn to a copy of the items, swaps it in, persists the whole
// cart and notifies subscribers. A failed write is logged; memory wins.
func (m *Manager) mutate(ctx context.Context, fn func([]Item) []Item) {
	m.mu.Lock()
	next := fn(clone(m.items))
	m.items = next
	snapshot := clone(next)
	ls := make([]func([]Item), 0, len(m.listeners))
	for _, l := range m.listeners {
		ls = append(ls, l)
	}
	if err := store.SetJSON(ctx, m.store, Key, next); err != nil {
		m.log.Error("cart: persist failed", "error", err)
	}
	m.mu.Unlock()

	metrics.CartItems.Set(float64(count(snapshot)))
	for _, l := range ls {
		l(clone(snapshot))
	}
}

// ------------------- Read side -------------------

// Items returns a copy of the line items in insertion order.
func (m *Manager) Items() []Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clone(m.items)
}

// Total is the sum of price * quantity.
func (m *Manager) Total() decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := decimal.Zero
	for _, it := range m.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// ItemCount is the sum of quantities.
func (m *Manager) ItemCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return count(m.items)
}

// Subscribe calls fn with the new items after every change.
func (m *Manager) Subscribe(fn func([]Item)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func clone(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

func count(items []Item) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
