package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/internal/app"
	"github.com/shashiranjanraj/storefront/internal/session"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/notify"
)

// withApp builds the App, resumes any persisted session and runs fn. Toasts
// are echoed to stderr as they appear.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errOut := cmd.ErrOrStderr()
	a, err := app.New(ctx, app.Options{
		Logger: logger.L,
		Navigator: session.NavigatorFunc(func(route string) {
			if route == session.RouteLogin {
				fmt.Fprintln(errOut, "→ run `storefront login` to sign in")
			}
		}),
	})
	if err != nil {
		return err
	}
	defer a.Close()

	defer a.Notifier.Subscribe(func(n notify.Notification) {
		if n.Visible {
			printToast(errOut, n)
		}
	})()

	if err := a.Session.Verify(ctx); err != nil {
		logger.Debug("no resumable session", "error", err)
	}
	return fn(ctx, a)
}

func printToast(w io.Writer, n notify.Notification) {
	icon := map[notify.Type]string{
		notify.Success: "✓",
		notify.Error:   "✗",
		notify.Cart:    "🛒",
		notify.Ban:     "⛔",
	}[n.Type]
	fmt.Fprintf(w, "%s %s\n", icon, n.Message)
}

// requireLogin fails with a hint when no session is active.
func requireLogin(a *app.App) error {
	if !a.Session.IsAuthenticated() {
		return fmt.Errorf("not signed in: run `storefront login` first")
	}
	return nil
}
