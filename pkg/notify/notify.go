// Package notify is the single-slot toast bridge. State-changing operations
// call Notify; whatever renders notifications subscribes and redraws.
//
// Only one notification is active at a time. A new one pre-empts the current
// one and restarts the dismissal timer; nothing is queued.
//
//	n := notify.New(3*time.Second, log)
//	defer n.Close()
//	cancel := n.Subscribe(func(cur notify.Notification) { render(cur) })
//	defer cancel()
//	n.Notify("Item added to cart", notify.Cart)
package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// Type selects how a notification is styled.
type Type string

const (
	Success Type = "success"
	Error   Type = "error"
	Cart    Type = "cart"
	Ban     Type = "ban"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 3 * time.Second

// Notification is the active slot. The zero value is "nothing shown".
type Notification struct {
	Message string `json:"message"`
	Type    Type   `json:"type"`
	Visible bool   `json:"visible"`
}

// Sink is what state managers depend on.
type Sink interface {
	Notify(message string, typ Type)
}

// Listener receives the slot after every change, including dismissal.
type Listener func(Notification)

// Notifier owns the slot and its dismissal timer.
type Notifier struct {
	mu        sync.Mutex
	current   Notification
	gen       uint64
	timer     *time.Timer
	ttl       time.Duration
	listeners map[int]Listener
	nextID    int
	closed    bool
	log       *slog.Logger
}

// New returns a Notifier whose notifications last ttl (DefaultTTL if <= 0).
func New(ttl time.Duration, log *slog.Logger) *Notifier {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{ttl: ttl, listeners: map[int]Listener{}, log: log}
}

// Notify replaces the active notification and restarts the timer.
func (n *Notifier) Notify(message string, typ Type) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	if n.timer != nil {
		n.timer.Stop()
	}
	n.gen++
	gen := n.gen
	n.current = Notification{Message: message, Type: typ, Visible: true}
	n.timer = time.AfterFunc(n.ttl, func() { n.expire(gen) })
	cur, ls := n.snapshot()
	n.mu.Unlock()

	metrics.Notifications.WithLabelValues(string(typ)).Inc()
	n.log.Debug("notify: show", "type", typ, "message", message)
	fire(ls, cur)
}

// Dismiss hides the active notification now.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	if !n.current.Visible {
		n.mu.Unlock()
		return
	}
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.gen++
	n.current = Notification{}
	cur, ls := n.snapshot()
	n.mu.Unlock()

	fire(ls, cur)
}

// expire runs on the timer goroutine. A timer from an older notification
// finds a different generation and does nothing.
func (n *Notifier) expire(gen uint64) {
	n.mu.Lock()
	if gen != n.gen || !n.current.Visible {
		n.mu.Unlock()
		return
	}
	n.timer = nil
	n.current = Notification{}
	cur, ls := n.snapshot()
	n.mu.Unlock()

	fire(ls, cur)
}

// Current returns the active slot.
func (n *Notifier) Current() Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Subscribe registers l and returns a func that removes it.
func (n *Notifier) Subscribe(l Listener) func() {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.listeners[id] = l
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.listeners, id)
		n.mu.Unlock()
	}
}

// Close stops the pending timer and ignores later Notify calls.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.gen++
}

func (n *Notifier) snapshot() (Notification, []Listener) {
	ls := make([]Listener, 0, len(n.listeners))
	for _, l := range n.listeners {
		ls = append(ls, l)
	}
	return n.current, ls
}

func fire(ls []Listener, cur Notification) {
	for _, l := range ls {
		l(cur)
	}
}

// Discard is a Sink that drops everything.
type Discard struct{}

func (Discard) Notify(string, Type) {}
