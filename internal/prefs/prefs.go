// Package prefs stores UI preferences that outlive a session.
package prefs

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shashiranjanraj/storefront/pkg/store"
)

// ThemeKey is the store key for the colour theme.
const ThemeKey = "theme"

type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Prefs caches preferences in memory and writes through to the store.
type Prefs struct {
	store store.Store
	log   *slog.Logger

	mu    sync.RWMutex
	theme Theme
}

// Load reads stored preferences. Missing or unknown values fall back to
// the defaults.
func Load(ctx context.Context, s store.Store, log *slog.Logger) *Prefs {
	if log == nil {
		log = slog.Default()
	}
	p := &Prefs{store: s, log: log.With("component", "prefs"), theme: Light}

	v, err := store.GetString(ctx, s, ThemeKey)
	if err == nil && Theme(v) == Dark {
		p.theme = Dark
	}
	return p
}

func (p *Prefs) Theme() Theme {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.theme
}

// SetTheme persists t. Anything other than Dark is stored as Light.
func (p *Prefs) SetTheme(ctx context.Context, t Theme) error {
	if t != Dark {
		t = Light
	}
	p.mu.Lock()
	p.theme = t
	p.mu.Unlock()

	if err := store.SetString(ctx, p.store, ThemeKey, string(t)); err != nil {
		p.log.Warn("prefs: persist theme", "error", err)
		return err
	}
	return nil
}

// ToggleTheme flips between light and dark and returns the new theme.
func (p *Prefs) ToggleTheme(ctx context.Context) (Theme, error) {
	next := Dark
	if p.Theme() == Dark {
		next = Light
	}
	return next, p.SetTheme(ctx, next)
}
