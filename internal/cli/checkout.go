package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/verixa/internal/app"
	"github.com/roach88/verixa/internal/checkout"
	"github.com/roach88/verixa/internal/model"
)

// CheckoutOptions holds flags for the checkout command.
type CheckoutOptions struct {
	*RootOptions
	Name    string
	Email   string
	Address string
	UserID  string
}

// NewCheckoutCommand creates the checkout command.
func NewCheckoutCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckoutOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the current cart",
		Long: `Place an order for the current cart.

The order and all of its items are written in one transaction. The cart is
emptied only when the order was written; on failure it is left unchanged.

Exit codes:
  0 - Order placed
  1 - Order rejected (empty cart, invalid details, order not written)
  2 - Command error (configuration, engine unavailable)

Examples:
  verixa checkout --name "Ada Lovelace" --email ada@example.com
  verixa checkout --name Ada --user-id 5b0c6f5e-2a8d-4c53-9a36-2f4f4f1a9b10 --email ada@example.com`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckout(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "customer name")
	cmd.Flags().StringVar(&opts.Email, "email", "", "customer email")
	cmd.Flags().StringVar(&opts.Address, "address", "", "shipping address")
	cmd.Flags().StringVar(&opts.UserID, "user-id", "", "signed-in user id (UUID); empty for guest checkout")

	return cmd
}

func runCheckout(opts *CheckoutOptions, cmd *cobra.Command) error {
	return opts.withApp(cmd, func(a *app.App, f *OutputFormatter) error {
		customer := checkout.Customer{
			Name:            opts.Name,
			Email:           opts.Email,
			ShippingAddress: opts.Address,
		}
		if opts.UserID != "" {
			id, err := uuid.Parse(opts.UserID)
			if err != nil {
				return model.NewValidationError("user_id", "invalid uuid %q", opts.UserID)
			}
			customer.Owner = &model.Owner{ID: id, Email: opts.Email}
		}

		f.VerboseLog("Submitting cart with %d item(s)", a.Session.CartCount())
		receipt, err := a.Checkout.Submit(cmd.Context(), customer)
		if err != nil {
			return err
		}

		if f.Format == "json" {
			return f.Success(receipt)
		}
		fmt.Fprintf(f.Writer, "✓ Order %s placed\n", receipt.OrderID)
		printQuote(f, receipt.Items, receipt.Quote)
		return nil
	})
}
