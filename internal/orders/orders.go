// Package orders mirrors the signed-in user's order list. The backend
// advances orders on its own schedule; a Watcher re-fetches the list so the
// client sees those transitions.
package orders

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shashiranjanraj/storefront/internal/api"
	"github.com/shashiranjanraj/storefront/internal/session"
	"github.com/shashiranjanraj/storefront/pkg/notify"
)

// DefaultInterval is the poll period when none is configured.
const DefaultInterval = 5 * time.Second

// Backend is the subset of api.Client used here.
type Backend interface {
	Orders(ctx context.Context, token string) ([]api.Order, error)
	CancelOrder(ctx context.Context, token, orderNumber string, reason api.CancelReason) (*api.Order, error)
}

// Session supplies the bearer token and reports when it changes.
type Session interface {
	Token() string
	Subscribe(fn func(session.Snapshot)) func()
}

// Options configures a Manager. API and Session are required.
type Options struct {
	API      Backend
	Session  Session
	Notifier notify.Sink
	Logger   *slog.Logger
}

// Manager holds the last fetched order list.
type Manager struct {
	api     Backend
	session Session
	notify  notify.Sink
	log     *slog.Logger

	unsub func()

	mu        sync.RWMutex
	owner     string // token the list was fetched with
	orders    []api.Order
	lastErr   error
	fetchedAt time.Time
	listeners map[int]func([]api.Order)
	nextID    int
}

var (
	errNotSignedIn = &api.Error{Op: "orders", Kind: api.ErrAuthRejected, Message: "You are not signed in"}
	errStale       = &api.Error{Op: "orders", Kind: api.ErrAuthRejected, Message: "Session changed"}
)

func New(opts Options) *Manager {
	m := &Manager{
		api:       opts.API,
		session:   opts.Session,
		notify:    opts.Notifier,
		log:       opts.Logger,
		orders:    []api.Order{},
		listeners: map[int]func([]api.Order){},
	}
	if m.notify == nil {
		m.notify = notify.Discard{}
	}
	if m.log == nil {
		m.log = slog.Default()
	}
	m.log = m.log.With("component", "orders")

	m.owner = m.session.Token()
	m.unsub = m.session.Subscribe(func(s session.Snapshot) {
		m.update(func() bool {
			if s.Token == m.owner {
				return false
			}
			m.owner = s.Token
			m.orders = []api.Order{}
			m.lastErr = nil
			m.fetchedAt = time.Time{}
			return true
		})
	})
	return m
}

// Close stops following the session.
func (m *Manager) Close() {
	if m.unsub != nil {
		m.unsub()
	}
}

// Fetch replaces the order list with the backend's. On failure the
// previous list is kept and the error is returned.
func (m *Manager) Fetch(ctx context.Context) error {
	token := m.session.Token()
	if token == "" {
		return errNotSignedIn
	}
	return m.fetch(ctx, token)
}

func (m *Manager) fetch(ctx context.Context, token string) error {
	list, err := m.api.Orders(ctx, token)
	if ctx.Err() != nil {
		// Stopped mid-flight; the answer belongs to nobody.
		return ctx.Err()
	}

	stale := false
	m.update(func() bool {
		// The session moved on while the request was in flight.
		if token != m.session.Token() {
			stale = true
			return false
		}
		m.owner = token
		if err != nil {
			m.lastErr = err
			return false
		}
		m.logTransitions(list)
		m.orders = list
		m.lastErr = nil
		m.fetchedAt = time.Now()
		return true
	})
	if stale {
		return errStale
	}
	return err
}

// logTransitions reports status changes between polls. Callers hold mu.
func (m *Manager) logTransitions(next []api.Order) {
	prev := make(map[string]api.Status, len(m.orders))
	for _, o := range m.orders {
		prev[o.OrderNumber] = o.Status
	}
	for _, o := range next {
		if was, ok := prev[o.OrderNumber]; ok && was != o.Status {
			m.log.Info("orders: status changed", "order", o.OrderNumber, "from", was, "to", o.Status)
		}
	}
}

// Cancel asks the backend to cancel orderNumber. On success only that order
// is replaced. On failure nothing changes, an error notification is shown
// and the error is returned; the backend may have advanced the order since
// the last poll.
func (m *Manager) Cancel(ctx context.Context, orderNumber string, reason api.CancelReason) error {
	if !reason.Valid() {
		return &api.Error{Op: "orders.cancel", Kind: api.ErrInvalidReason, Message: "Please select a reason for cancellation"}
	}
	token := m.session.Token()
	if token == "" {
		return errNotSignedIn
	}

	updated, err := m.api.CancelOrder(ctx, token, orderNumber, reason)
	if err != nil {
		m.log.Warn("orders: cancellation failed", "order", orderNumber, "reason", reason, "error", err)
		m.notify.Notify(api.Message(err), notify.Error)
		return err
	}

	m.update(func() bool {
		if token != m.session.Token() {
			return false
		}
		changed := false
		for i := range m.orders {
			if m.orders[i].OrderNumber == orderNumber {
				m.orders[i] = *updated
				changed = true
			}
		}
		return changed
	})
	m.log.Info("orders: cancelled", "order", orderNumber, "reason", reason)
	m.notify.Notify(fmt.Sprintf("Order %s cancelled", orderNumber), notify.Success)
	return nil
}

// ------------------- Read side -------------------

// Orders returns a copy of the last fetched list.
func (m *Manager) Orders() []api.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]api.Order{}, m.orders...)
}

// Order looks up one order by number.
func (m *Manager) Order(number string) (api.Order, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.OrderNumber == number {
			return o, true
		}
	}
	return api.Order{}, false
}

// Err is the error of the most recent failed fetch, cleared by a success.
func (m *Manager) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// FetchedAt is when the list was last replaced.
func (m *Manager) FetchedAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fetchedAt
}

// Subscribe calls fn with the new list after every change.
func (m *Manager) Subscribe(fn func([]api.Order)) func() {
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

// update applies fn under the lock and notifies listeners when it reports
// a change.
func (m *Manager) update(fn func() bool) {
	m.mu.Lock()
	if !fn() {
		m.mu.Unlock()
		return
	}
	snap := append([]api.Order{}, m.orders...)
	ls := make([]func([]api.Order), 0, len(m.listeners))
	for _, l := range m.listeners {
		ls = append(ls, l)
	}
	m.mu.Unlock()

	for _, l := range ls {
		l(append([]api.Order{}, snap...))
	}
}
