package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/roach88/verixa/internal/app"
	"github.com/roach88/verixa/internal/checkout"
	"github.com/roach88/verixa/internal/model"
)

// CartView is the cart as reported by the cart commands.
type CartView struct {
	Items []model.CartItem `json:"items"`
	Count int              `json:"count"`
	Quote checkout.Quote   `json:"quote"`
}

// VariantOptions selects a cart entry.
type VariantOptions struct {
	*RootOptions
	Size  string
	Color string
}

func (o *VariantOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Size, "size", "", "selected size")
	cmd.Flags().StringVar(&o.Color, "color", "", "selected color")
}

// NewCartCommand creates the cart command and its subcommands. The cart is
// kept in the state directory between invocations.
func NewCartCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and change the shopping cart",
		Long: `Show and change the shopping cart.

Examples:
  verixa cart add 1 --size M --color White
  verixa cart update 1 --size M --color White --quantity 3
  verixa cart remove 1 --size M --color White
  verixa cart show --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, showCart)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "show",
		Short:         "Show the cart",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, showCart)
		},
	})
	cmd.AddCommand(newCartAddCommand(rootOpts))
	cmd.AddCommand(newCartUpdateCommand(rootOpts))
	cmd.AddCommand(newCartRemoveCommand(rootOpts))
	cmd.AddCommand(&cobra.Command{
		Use:           "clear",
		Short:         "Empty the cart",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(a *app.App, f *OutputFormatter) error {
				if err := a.Session.ClearCart(); err != nil {
					return err
				}
				return showCart(a, f)
			})
		},
	})

	return cmd
}

func newCartAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VariantOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:           "add <product-id>",
		Short:         "Add one unit of a product variant",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app.App, f *OutputFormatter) error {
				p, err := requireProduct(cmd, a, args[0])
				if err != nil {
					return err
				}
				if err := a.Session.AddToCart(p, opts.Size, opts.Color); err != nil {
					return err
				}
				f.VerboseLog("Added %s (%s, %s)", p.Name, opts.Size, opts.Color)
				return showCart(a, f)
			})
		},
	}
	opts.bind(cmd)
	return cmd
}

func newCartUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VariantOptions{RootOptions: rootOpts}
	var quantity int
	cmd := &cobra.Command{
		Use:   "update <product-id>",
		Short: "Set the quantity of a cart entry",
		Long: `Set the quantity of a cart entry.

A quantity below 1 leaves the entry unchanged; use "cart remove" to drop it.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app.App, f *OutputFormatter) error {
				if err := a.Session.UpdateQuantity(args[0], opts.Size, opts.Color, quantity); err != nil {
					return err
				}
				return showCart(a, f)
			})
		},
	}
	opts.bind(cmd)
	cmd.Flags().IntVar(&quantity, "quantity", 1, "new quantity")
	return cmd
}

func newCartRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VariantOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:           "remove <product-id>",
		Short:         "Remove a cart entry",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app.App, f *OutputFormatter) error {
				if err := a.Session.RemoveFromCart(args[0], opts.Size, opts.Color); err != nil {
					return err
				}
				return showCart(a, f)
			})
		},
	}
	opts.bind(cmd)
	return cmd
}

func showCart(a *app.App, f *OutputFormatter) error {
	state := a.Session.State()
	view := CartView{
		Items: state.Cart,
		Count: state.CartCount(),
		Quote: checkout.QuoteFor(state.CartTotal()),
	}

	if f.Format == "json" {
		return f.Success(view)
	}

	if len(view.Items) == 0 {
		fmt.Fprintln(f.Writer, "Your cart is empty.")
		return nil
	}

	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSIZE\tCOLOR\tQTY\tPRICE\tLINE")
	for _, item := range view.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			item.Product.ID, item.Product.Name, item.SelectedSize, item.SelectedColor,
			item.Quantity, money(item.Product.Price), money(item.LineTotal()))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	printQuote(f, view.Count, view.Quote)
	return nil
}

func printQuote(f *OutputFormatter, count int, q checkout.Quote) {
	w := f.Writer
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Items:    %d\n", count)
	fmt.Fprintf(w, "Subtotal: %s\n", money(q.Subtotal))
	fmt.Fprintf(w, "Tax:      %s\n", money(q.Tax))
	if q.Shipping.Equal(decimal.Zero) {
		fmt.Fprintln(w, "Shipping: free")
	} else {
		fmt.Fprintf(w, "Shipping: %s\n", money(q.Shipping))
	}
	fmt.Fprintf(w, "Total:    %s\n", money(q.Total))
}

// WishlistView is the wishlist as reported by the wishlist commands.
type WishlistView struct {
	ProductIDs []string `json:"product_ids"`
}

// NewWishlistCommand creates the wishlist command and its subcommands.
func NewWishlistCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "wishlist",
		Short:         "Show and change the wishlist",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, showWishlist)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "show",
		Short:         "Show the wishlist",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, showWishlist)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "toggle <product-id>",
		Short:         "Add a product to the wishlist, or remove it if present",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(a *app.App, f *OutputFormatter) error {
				if _, err := requireProduct(cmd, a, args[0]); err != nil {
					return err
				}
				if err := a.Session.ToggleWishlist(args[0]); err != nil {
					return err
				}
				if f.Format == "json" {
					return f.Success(map[string]any{
						"product_id": args[0],
						"wishlisted": a.Session.IsWishlisted(args[0]),
					})
				}
				if a.Session.IsWishlisted(args[0]) {
					fmt.Fprintf(f.Writer, "♥ Product %s added to wishlist\n", args[0])
				} else {
					fmt.Fprintf(f.Writer, "♡ Product %s removed from wishlist\n", args[0])
				}
				return nil
			})
		},
	})

	return cmd
}

func showWishlist(a *app.App, f *OutputFormatter) error {
	ids := a.Session.State().Wishlist
	if ids == nil {
		ids = []string{}
	}
	if f.Format == "json" {
		return f.Success(WishlistView{ProductIDs: ids})
	}
	if len(ids) == 0 {
		fmt.Fprintln(f.Writer, "Your wishlist is empty.")
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(f.Writer, id)
	}
	return nil
}
