package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/verixa/internal/app"
	"github.com/roach88/verixa/internal/model"
	"github.com/roach88/verixa/internal/repository"
)

// OrderView is one order with its items.
type OrderView struct {
	model.Order
	Items []model.OrderItem `json:"items"`
}

// displayStatus renders a status the way the order history shows it,
// e.g. "Confirmed". Casers are stateful, so each call gets its own.
func displayStatus(s model.OrderStatus) string {
	return cases.Title(language.English).String(string(s))
}

// OrdersOptions holds flags for the orders list command.
type OrdersOptions struct {
	*RootOptions
	Limit  int
	UserID string
}

// NewOrdersCommand creates the orders command and its subcommands.
func NewOrdersCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Inspect and manage orders",
		Long: `Inspect and manage orders.

Examples:
  verixa orders list --limit 10
  verixa orders list --user-id 5b0c6f5e-2a8d-4c53-9a36-2f4f4f1a9b10
  verixa orders show ORD-7K2M9XQ4B
  verixa orders status ORD-7K2M9XQ4B shipped`,
	}

	cmd.AddCommand(newOrdersListCommand(rootOpts))
	cmd.AddCommand(newOrdersShowCommand(rootOpts))
	cmd.AddCommand(newOrdersStatusCommand(rootOpts))

	return cmd
}

func newOrdersListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OrdersOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List orders, newest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app.App, f *OutputFormatter) error {
				var (
					orders []model.Order
					err    error
				)
				if opts.UserID != "" {
					id, perr := uuid.Parse(opts.UserID)
					if perr != nil {
						return model.NewValidationError("user_id", "invalid uuid %q", opts.UserID)
					}
					orders, err = a.Repo.ListOrdersForUser(cmd.Context(), id)
				} else {
					orders, err = a.Repo.ListOrders(cmd.Context(), opts.Limit)
				}
				if err != nil {
					return err
				}

				if f.Format == "json" {
					return f.Success(orders)
				}
				if len(orders) == 0 {
					fmt.Fprintln(f.Writer, "No orders yet.")
					return nil
				}
				tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tDATE\tCUSTOMER\tTOTAL\tSTATUS")
				for _, o := range orders {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
						o.ID, o.CreatedAt.Format(time.DateOnly), o.CustomerEmail, money(o.TotalAmount), displayStatus(o.Status))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&opts.Limit, "limit", repository.DefaultOrderLimit, "maximum number of orders")
	cmd.Flags().StringVar(&opts.UserID, "user-id", "", "only orders placed by this user (UUID)")
	return cmd
}

func newOrdersShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <order-id>",
		Short:         "Show an order and its items",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(a *app.App, f *OutputFormatter) error {
				o, found, err := a.Repo.GetOrder(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("order %q: %w", args[0], model.ErrNotFound)
				}
				items, err := a.Repo.ListOrderItems(cmd.Context(), o.ID)
				if err != nil {
					return err
				}

				view := OrderView{Order: o, Items: items}
				if f.Format == "json" {
					return f.Success(view)
				}
				printOrder(f, view)
				return nil
			})
		},
	}
}

func printOrder(f *OutputFormatter, v OrderView) {
	w := f.Writer
	fmt.Fprintf(w, "Order %s (%s)\n", v.ID, displayStatus(v.Status))
	fmt.Fprintf(w, "  Placed:   %s\n", v.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "  Customer: %s <%s>\n", v.CustomerName, v.CustomerEmail)
	if v.ShippingAddress != nil {
		fmt.Fprintf(w, "  Ship to:  %s\n", *v.ShippingAddress)
	}
	fmt.Fprintf(w, "  Total:    %s\n", money(v.TotalAmount))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tSIZE\tCOLOR\tQTY\tPRICE")
	for _, it := range v.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			it.ProductID, it.SelectedSize, it.SelectedColor, it.Quantity, money(it.PriceAtPurchase))
	}
	_ = tw.Flush()
}

func newOrdersStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <order-id> <status>",
		Short: "Move an order to a new status",
		Long: `Move an order to a new status.

Orders advance pending → confirmed → processing → shipped → delivered.
Any order that is not yet delivered can be cancelled.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(a *app.App, f *OutputFormatter) error {
				next, err := model.ParseOrderStatus(args[1])
				if err != nil {
					return model.NewValidationError("status", "%v", err)
				}
				if err := a.Repo.UpdateOrderStatus(cmd.Context(), args[0], next); err != nil {
					return err
				}
				if f.Format == "json" {
					return f.Success(map[string]string{"id": args[0], "status": string(next)})
				}
				fmt.Fprintf(f.Writer, "✓ Order %s is now %s\n", args[0], displayStatus(next))
				return nil
			})
		},
	}
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "stats",
		Short:         "Show store totals",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(a *app.App, f *OutputFormatter) error {
				s, err := a.Repo.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if f.Format == "json" {
					return f.Success(s)
				}
				w := f.Writer
				fmt.Fprintf(w, "Orders:    %d\n", s.TotalOrders)
				fmt.Fprintf(w, "Revenue:   %s\n", money(s.TotalRevenue))
				fmt.Fprintf(w, "Products:  %d\n", s.TotalProducts)
				fmt.Fprintf(w, "Customers: %d\n", s.TotalCustomers)
				return nil
			})
		},
	}
}

// NewCustomersCommand creates the customers command.
func NewCustomersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "customers",
		Short:         "List customers by total spend",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(a *app.App, f *OutputFormatter) error {
				customers, err := a.Repo.ListCustomers(cmd.Context())
				if err != nil {
					return err
				}
				if f.Format == "json" {
					return f.Success(customers)
				}
				if len(customers) == 0 {
					fmt.Fprintln(f.Writer, "No customers yet.")
					return nil
				}
				tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "EMAIL\tNAME\tORDERS\tSPENT\tLAST ORDER")
				for _, c := range customers {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
						c.Email, c.Name, c.Orders, money(c.TotalSpent), c.LastOrder.Format(time.DateOnly))
				}
				return tw.Flush()
			})
		},
	}
}

// NewInitCommand creates the init command, which creates the schema and
// seeds the catalog without doing anything else.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database schema and seed the catalog",
		Long: `Create the database schema and seed the catalog.

Safe to run repeatedly: tables are created only if missing and the catalog
is seeded only into an empty products table.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(a *app.App, f *OutputFormatter) error {
				s, err := a.Repo.Stats(cmd.Context())
				if err != nil {
					return err
				}
				result := map[string]any{
					"backend":  a.Config.Backend,
					"products": s.TotalProducts,
					"orders":   s.TotalOrders,
				}
				if f.Format == "json" {
					return f.Success(result)
				}
				fmt.Fprintf(f.Writer, "✓ Storefront ready (%s): %d products, %d orders\n",
					a.Config.Backend, s.TotalProducts, s.TotalOrders)
				return nil
			})
		},
	}
}
