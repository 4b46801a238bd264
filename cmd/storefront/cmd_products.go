package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/internal/api"
	"github.com/shashiranjanraj/storefront/internal/app"
	"github.com/shashiranjanraj/storefront/internal/prefs"
)

var (
	categoryFlag  string
	searchFlag    string
	pageFlag      int
	sizeFlag      int
	sortByFlag    string
	sortOrderFlag string
	minPriceFlag  string
	maxPriceFlag  string
)

// storefront products
var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Browse the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := api.Query{
			Page:      pageFlag,
			Size:      sizeFlag,
			SortBy:    sortByFlag,
			SortOrder: sortOrderFlag,
			Search:    searchFlag,
		}
		if minPriceFlag != "" || maxPriceFlag != "" {
			lo, err := decimal.NewFromString(minPriceFlag)
			if err != nil {
				return fmt.Errorf("--min-price: %w", err)
			}
			hi, err := decimal.NewFromString(maxPriceFlag)
			if err != nil {
				return fmt.Errorf("--max-price: %w", err)
			}
			q.MinPrice, q.MaxPrice = &lo, &hi
		}

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			page, err := a.Catalog.ListByCategory(ctx, categoryFlag, q)
			if err != nil {
				return fmt.Errorf("%s", api.Message(err))
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK\t")
			for _, p := range page.Content {
				fav := ""
				if a.Favourites.Has(p.ID) {
					fav = "♥"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\n", p.ID, p.Name, p.Category, p.Price.StringFixed(2), p.Stock, fav)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d (%d products)\n",
				page.Number+1, max(page.TotalPages, 1), page.TotalElements)
			return nil
		})
	},
}

var favouritesCmd = &cobra.Command{
	Use:     "favourites",
	Aliases: []string{"favs"},
	Short:   "Manage favourite products",
}

// storefront favourites list
var favouritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favourite products",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			ps := a.Favourites.Products()
			if len(ps) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No favourites yet")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPRICE")
			for _, p := range ps {
				fmt.Fprintf(w, "%d\t%s\t%s\n", p.ID, p.Name, p.Price.StringFixed(2))
			}
			return w.Flush()
		})
	},
}

// storefront favourites add <product-id>
var favouritesAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Mark a product as favourite",
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
			a.Favourites.Add(ctx, *p)
			return nil
		})
	},
}

// storefront favourites remove <product-id>
var favouritesRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Unmark a favourite product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := productID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			a.Favourites.Remove(ctx, id)
			return nil
		})
	},
}

// storefront theme [light|dark|toggle]
var themeCmd = &cobra.Command{
	Use:       "theme [light|dark|toggle]",
	Short:     "Show or change the colour theme",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"light", "dark", "toggle"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if len(args) == 1 {
				var err error
				switch args[0] {
				case "toggle":
					_, err = a.Prefs.ToggleTheme(ctx)
				case string(prefs.Light), string(prefs.Dark):
					err = a.Prefs.SetTheme(ctx, prefs.Theme(args[0]))
				default:
					return fmt.Errorf("unknown theme %q", args[0])
				}
				if err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.Prefs.Theme())
			return nil
		})
	},
}

func init() {
	f := productsCmd.Flags()
	f.StringVarP(&categoryFlag, "category", "c", "", "only list this category")
	f.StringVarP(&searchFlag, "search", "s", "", "search term")
	f.IntVar(&pageFlag, "page", 0, "zero-based page number")
	f.IntVar(&sizeFlag, "size", api.DefaultPageSize, "page size")
	f.StringVar(&sortByFlag, "sort-by", "name", "sort field")
	f.StringVar(&sortOrderFlag, "sort-order", "asc", "asc or desc")
	f.StringVar(&minPriceFlag, "min-price", "", "lower price bound (needs --max-price)")
	f.StringVar(&maxPriceFlag, "max-price", "", "upper price bound (needs --min-price)")
	productsCmd.MarkFlagsRequiredTogether("min-price", "max-price")

	favouritesCmd.AddCommand(favouritesListCmd, favouritesAddCmd, favouritesRemoveCmd)
}
