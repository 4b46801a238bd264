// Package app wires the storefront managers together. Everything is built
// once in New and passed down explicitly; no package holds global state.
//
//	a, err := app.New(ctx, app.Options{})
//	if err != nil { ... }
//	defer a.Close()
//	_ = a.Session.Verify(ctx)
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/internal/api"
	"github.com/shashiranjanraj/storefront/internal/cart"
	"github.com/shashiranjanraj/storefront/internal/catalog"
	"github.com/shashiranjanraj/storefront/internal/chat"
	"github.com/shashiranjanraj/storefront/internal/favourites"
	"github.com/shashiranjanraj/storefront/internal/orders"
	"github.com/shashiranjanraj/storefront/internal/prefs"
	"github.com/shashiranjanraj/storefront/internal/session"
	"github.com/shashiranjanraj/storefront/pkg/crypt"
	sfhttp "github.com/shashiranjanraj/storefront/pkg/http"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/notify"
	"github.com/shashiranjanraj/storefront/pkg/store"
)

// Options overrides configuration. Zero values come from config.
type Options struct {
	Store     store.Store       // nil opens the configured driver
	BaseURL   string            // "" uses BACKEND_URL
	Transport http.RoundTripper // nil uses the default transport
	AppKey    string            // "" uses APP_KEY; empty keeps the token unsealed
	Navigator session.Navigator
	Logger    *slog.Logger
	ToastTTL  time.Duration
}

// App is the assembled client.
type App struct {
	Log        *slog.Logger
	Store      store.Store
	HTTP       *sfhttp.Client
	API        *api.Client
	Notifier   *notify.Notifier
	Session    *session.Manager
	Cart       *cart.Manager
	Orders     *orders.Manager
	Favourites *favourites.List
	Prefs      *prefs.Prefs
	Catalog    *catalog.Catalog
	Chat       *chat.Chat
}

// New builds an App. The persisted cart, favourites and preferences are
// loaded here; the session is not verified until Session.Verify is called.
func New(ctx context.Context, opts Options) (*App, error) {
	log := opts.Logger
	if log == nil {
		log = logger.L
	}

	s := opts.Store
	if s == nil {
		var err error
		if s, err = store.Open(ctx); err != nil {
			return nil, fmt.Errorf("app: open store: %w", err)
		}
	}

	key := opts.AppKey
	if key == "" {
		key = config.AppKey()
	}
	var sealer *crypt.Sealer
	if key != "" {
		var err error
		if sealer, err = crypt.New(key); err != nil {
			return nil, fmt.Errorf("app: token sealer: %w", err)
		}
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = config.BackendURL()
	}
	ttl := opts.ToastTTL
	if ttl <= 0 {
		ttl = config.ToastTTL()
	}

	httpClient := sfhttp.NewClient(sfhttp.Options{
		BaseURL:   baseURL,
		Timeout:   config.HTTPTimeout(),
		Retries:   config.HTTPRetries(),
		Transport: opts.Transport,
		Logger:    log,
	})
	client := api.New(httpClient, log)
	notifier := notify.New(ttl, log)

	sess := session.New(session.Options{
		API:       client,
		Store:     s,
		Sealer:    sealer,
		Navigator: opts.Navigator,
		Logger:    log,
	})

	a := &App{
		Log:        log,
		Store:      s,
		HTTP:       httpClient,
		API:        client,
		Notifier:   notifier,
		Session:    sess,
		Cart:       cart.New(ctx, cart.Options{Store: s, Notifier: notifier, Logger: log}),
		Orders:     orders.New(orders.Options{API: client, Session: sess, Notifier: notifier, Logger: log}),
		Favourites: favourites.New(ctx, s, notifier, log),
		Prefs:      prefs.Load(ctx, s, log),
		Catalog:    catalog.New(client, log),
		Chat:       chat.New(client, sess, log),
	}
	log.Debug("app: ready", "store", s.Name(), "backend", baseURL)
	return a, nil
}

// Close detaches the order list from the session, stops the notification
// timer and releases the store.
func (a *App) Close() error {
	a.Orders.Close()
	a.Notifier.Close()
	return store.Close(a.Store)
}
