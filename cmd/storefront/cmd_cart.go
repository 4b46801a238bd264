package main

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/internal/api"
	"github.com/shashiranjanraj/storefront/internal/app"
)

var quantityFlag int

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Manage the shopping cart",
}

// storefront cart show
var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List cart lines and the total",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			items := a.Cart.Items()
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Your cart is empty")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPRODUCT\tQTY\tPRICE\tSUBTOTAL")
			for _, it := range items {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
					it.ID, it.Name, it.Quantity, it.Price.StringFixed(2), it.Subtotal().StringFixed(2))
			}
			fmt.Fprintf(w, "\t\t%d\t\t%s\n", a.Cart.ItemCount(), a.Cart.Total().StringFixed(2))
			return w.Flush()
		})
	},
}

// storefront cart add <product-id>
var cartAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product to the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := productID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			p, err := a.API.Product(ctx, id)
			if err != nil {
				return fmt.Errorf("lookup product %d: %s", id, api.Message(err))
			}
			return a.Cart.AddToCart(ctx, *p, quantityFlag)
		})
	},
}

// storefront cart remove <product-id>
var cartRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Remove a line from the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := productID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			a.Cart.RemoveFromCart(ctx, id)
			return nil
		})
	},
}

// storefront cart update <product-id> <quantity>
var cartUpdateCmd = &cobra.Command{
	Use:   "update <product-id> <quantity>",
	Short: "Set the quantity of a cart line",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := productID(args[0])
		if err != nil {
			return err
		}
		qty, err := strconv.Atoi(args[1])
		if err != nil || qty < 1 {
			return fmt.Errorf("quantity must be a positive integer, got %q", args[1])
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			a.Cart.UpdateQuantity(ctx, id, qty)
			return nil
		})
	},
}

// storefront cart clear
var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			a.Cart.ClearCart(ctx)
			return nil
		})
	},
}

func productID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid product id %q", s)
	}
	return id, nil
}

func init() {
	cartAddCmd.Flags().IntVarP(&quantityFlag, "quantity", "q", 1, "quantity to add")
	cartCmd.AddCommand(cartShowCmd, cartAddCmd, cartRemoveCmd, cartUpdateCmd, cartClearCmd)
}
