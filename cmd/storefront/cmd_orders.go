package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/internal/api"
	"github.com/shashiranjanraj/storefront/internal/app"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

var (
	intervalFlag    time.Duration
	metricsAddrFlag string
	reasonFlag      string
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List, watch and cancel orders",
}

// storefront orders list
var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "Fetch the order history once",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireLogin(a); err != nil {
				return err
			}
			if err := a.Orders.Fetch(ctx); err != nil {
				return fmt.Errorf("%s", api.Message(err))
			}
			return printOrders(cmd.OutOrStdout(), a.Orders.Orders())
		})
	},
}

// storefront orders watch
var ordersWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the order list until interrupted or signed out",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireLogin(a); err != nil {
				return err
			}

			if metricsAddrFlag != "" {
				srv := &http.Server{Addr: metricsAddrFlag, Handler: opsRouter(), ReadHeaderTimeout: 5 * time.Second}
				go func() {
					logger.Info("metrics listening", "addr", metricsAddrFlag)
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error("metrics server failed", "error", err)
					}
				}()
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
			}

			out := cmd.OutOrStdout()
			defer a.Orders.Subscribe(func(list []api.Order) {
				fmt.Fprintf(out, "── %s ──\n", time.Now().Format(time.TimeOnly))
				_ = printOrders(out, list)
			})()

			interval := intervalFlag
			if interval <= 0 {
				interval = config.OrderPollInterval()
			}
			w := a.Orders.Watch(ctx, interval)
			<-w.Done()
			return nil
		})
	},
}

// storefront orders cancel <order-number>
var ordersCancelCmd = &cobra.Command{
	Use:   "cancel <order-number>",
	Short: "Cancel a pending order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireLogin(a); err != nil {
				return err
			}
			if err := a.Orders.Cancel(ctx, args[0], api.CancelReason(reasonFlag)); err != nil {
				return fmt.Errorf("%s", api.Message(err))
			}
			return nil
		})
	},
}

func opsRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", metrics.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	return r
}

func printOrders(out io.Writer, orders []api.Order) error {
	if len(orders) == 0 {
		fmt.Fprintln(out, "No orders yet")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tSTATUS\tDATE\tITEMS\tTOTAL")
	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			o.OrderNumber, o.Status.Normalize(), o.OrderDate, len(o.Items), o.TotalAmount.StringFixed(2))
	}
	return w.Flush()
}

func reasonList() string {
	rs := make([]string, len(api.CancelReasons))
	for i, r := range api.CancelReasons {
		rs[i] = string(r)
	}
	return strings.Join(rs, ", ")
}

func init() {
	ordersWatchCmd.Flags().DurationVar(&intervalFlag, "interval", 0, "poll interval (default ORDER_POLL_INTERVAL)")
	ordersWatchCmd.Flags().StringVar(&metricsAddrFlag, "metrics-addr", "", "serve /metrics and /healthz on this address")

	ordersCancelCmd.Flags().StringVarP(&reasonFlag, "reason", "r", "", "one of: "+reasonList())
	_ = ordersCancelCmd.MarkFlagRequired("reason")

	ordersCmd.AddCommand(ordersListCmd, ordersWatchCmd, ordersCancelCmd)
}
