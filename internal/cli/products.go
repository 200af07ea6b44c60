package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/roach88/verixa/internal/app"
	"github.com/roach88/verixa/internal/model"
)

// ProductsOptions holds flags for the products command.
type ProductsOptions struct {
	*RootOptions
	Category string
	Sort     string
}

// NewProductsCommand creates the products command and its subcommands.
func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProductsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List catalog products",
		Long: `List catalog products, optionally filtered by category and sorted.

Sort accepts the storefront labels ("Newest", "Price: Low to High",
"Price: High to Low") or the short forms newest, price-asc and price-desc.

Examples:
  verixa products
  verixa products --category Premium --sort price-desc
  verixa products reprice 1 40.00`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProducts(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Category, "category", model.AllCategories, "category filter")
	cmd.Flags().StringVar(&opts.Sort, "sort", string(model.SortNewest), "sort order")

	cmd.AddCommand(newRepriceCommand(rootOpts))
	cmd.AddCommand(newCategoriesCommand(rootOpts))

	return cmd
}

func runProducts(opts *ProductsOptions, cmd *cobra.Command) error {
	return opts.withApp(cmd, func(a *app.App, f *OutputFormatter) error {
		sort := model.ParseSortOption(opts.Sort)
		f.VerboseLog("Listing products: category=%q sort=%q", opts.Category, sort)

		products, err := a.Repo.ListProducts(cmd.Context(), opts.Category, sort)
		if err != nil {
			return err
		}

		if f.Format == "json" {
			return f.Success(products)
		}

		if len(products) == 0 {
			fmt.Fprintln(f.Writer, "No products found.")
			return nil
		}
		tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tRATING\tNEW")
		for _, p := range products {
			isNew := ""
			if p.IsNew {
				isNew = "new"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s (%d)\t%s\n",
				p.ID, p.Name, p.Category, money(p.Price), p.Rating.StringFixed(1), p.ReviewCount, isNew)
		}
		return tw.Flush()
	})
}

// NewProductCommand creates the product command, which shows one product.
func NewProductCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "product <id>",
		Short:         "Show one product",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(a *app.App, f *OutputFormatter) error {
				p, err := requireProduct(cmd, a, args[0])
				if err != nil {
					return err
				}
				if f.Format == "json" {
					return f.Success(p)
				}
				printProduct(f, p)
				return nil
			})
		},
	}
}

func printProduct(f *OutputFormatter, p model.Product) {
	w := f.Writer
	fmt.Fprintf(w, "%s (%s)\n", p.Name, p.ID)
	fmt.Fprintf(w, "  Category: %s\n", p.Category)
	fmt.Fprintf(w, "  Price:    %s\n", money(p.Price))
	fmt.Fprintf(w, "  Rating:   %s (%d reviews)\n", p.Rating.StringFixed(1), p.ReviewCount)
	fmt.Fprintf(w, "  Sizes:    %s\n", strings.Join(p.Sizes, ", "))
	fmt.Fprintf(w, "  Colors:   %s\n", strings.Join(p.Colors, ", "))
	if p.Description != "" {
		fmt.Fprintf(w, "  %s\n", p.Description)
	}
}

func newRepriceCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reprice <id> <price>",
		Short: "Change a product's price",
		Long: `Change a product's price.

Orders already placed keep the price captured at checkout; carts keep the
price captured when the item was added.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(a *app.App, f *OutputFormatter) error {
				price, err := decimal.NewFromString(args[1])
				if err != nil {
					return model.NewValidationError("price", "not a decimal: %q", args[1])
				}
				if err := a.Repo.UpdateProductPrice(cmd.Context(), args[0], price); err != nil {
					return err
				}
				if f.Format == "json" {
					return f.Success(map[string]string{"id": args[0], "price": price.StringFixed(2)})
				}
				fmt.Fprintf(f.Writer, "✓ Product %s now costs %s\n", args[0], money(price))
				return nil
			})
		},
	}
}

func newCategoriesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "categories",
		Short:         "List product categories",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(a *app.App, f *OutputFormatter) error {
				categories, err := a.Repo.Categories(cmd.Context())
				if err != nil {
					return err
				}
				if f.Format == "json" {
					return f.Success(categories)
				}
				for _, c := range categories {
					fmt.Fprintln(f.Writer, c)
				}
				return nil
			})
		},
	}
}

// requireProduct looks up a product and turns a miss into ErrNotFound.
func requireProduct(cmd *cobra.Command, a *app.App, id string) (model.Product, error) {
	p, found, err := a.Repo.GetProduct(cmd.Context(), id)
	if err != nil {
		return model.Product{}, err
	}
	if !found {
		return model.Product{}, fmt.Errorf("product %q: %w", id, model.ErrNotFound)
	}
	return p, nil
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
