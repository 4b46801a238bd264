package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	backendFlag string
	storeFlag   string

	closeLogs = func() {}
)

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Storefront client: session, cart, orders and more from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		if backendFlag != "" {
			config.Set("BACKEND_URL", backendFlag)
		}
		if storeFlag != "" {
			config.Set("STORE_DRIVER", storeFlag)
		}

		closer, err := logger.Setup()
		if err != nil {
			logger.Warn("log sink unavailable", "error", err)
		}
		closeLogs = closer
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLogs()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "backend base URL (overrides BACKEND_URL)")
	rootCmd.PersistentFlags().StringVar(&storeFlag, "store", "", "store driver: memory, file, redis, sql or s3")

	// Session
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(passwordCmd)

	// Shopping
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(favouritesCmd)
	rootCmd.AddCommand(themeCmd)

	// Orders & support
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(chatCmd)
}
