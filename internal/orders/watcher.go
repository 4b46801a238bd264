package orders

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shashiranjanraj/storefront/internal/session"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/schedule"
)

// Watcher polls the order list until stopped. It is bound to the token
// present when it started and stops itself once that token changes.
type Watcher struct {
	job   *schedule.Job
	unsub func()
	once  sync.Once
	done  chan struct{}
}

// Watch fetches immediately and then every interval. With no token it
// returns a Watcher that is already stopped.
func (m *Manager) Watch(ctx context.Context, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	w := &Watcher{done: make(chan struct{})}

	token := m.session.Token()
	if token == "" {
		w.once.Do(func() { close(w.done) })
		return w
	}

	w.job = schedule.Every(interval).
		Name("orders.poll").
		WithoutOverlapping().
		Logger(m.log).
		Start(ctx, func(ctx context.Context) {
			if err := m.fetch(ctx, token); err != nil {
				if ctx.Err() == nil && !errors.Is(err, errStale) {
					m.log.Warn("orders: poll failed", "error", err)
					metrics.PollTicks.WithLabelValues("error").Inc()
				}
				return
			}
			metrics.PollTicks.WithLabelValues("ok").Inc()
		})
	metrics.WatchersActive.Inc()

	w.unsub = m.session.Subscribe(func(s session.Snapshot) {
		if s.Token != token {
			m.log.Debug("orders: token changed, stopping watcher")
			go w.Stop()
		}
	})

	// A parent context ending stops the watcher too.
	go func() {
		<-w.job.Done()
		w.Stop()
	}()
	return w
}

// Stop cancels polling and waits for an in-flight fetch to return. It is
// idempotent and safe from any goroutine.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		if w.unsub != nil {
			w.unsub()
		}
		w.job.Stop()
		metrics.WatchersActive.Dec()
		close(w.done)
	})
	<-w.done
}

// Done is closed once the watcher has stopped.
func (w *Watcher) Done() <-chan struct{} { return w.done }

// Stopped reports whether polling has ended.
func (w *Watcher) Stopped() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}
