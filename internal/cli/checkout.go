package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/cart"
	"github.com/roach88/storefront/internal/catalog"
	"github.com/roach88/storefront/internal/checkout"
	"github.com/roach88/storefront/internal/model"
)

// CheckoutOptions holds flags for the checkout command.
type CheckoutOptions struct {
	*RootOptions
	Products []int64
	Name     string
	Phone    string
	Address  string
	Timeout  time.Duration
}

// CheckoutResult is what the checkout command reports.
type CheckoutResult struct {
	Session string               `json:"session"`
	OrderID int64                `json:"order_id,omitempty"`
	Lines   []model.CartLineItem `json:"lines"`
	Total   int64                `json:"total"`
	Invalid []string             `json:"invalid,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// NewCheckoutCommand creates the checkout command.
func NewCheckoutCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckoutOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Buy products through the full cart and checkout flow",
		Long: `Load the catalog, add the given products to the cart, fill the checkout
form and submit it to the backend.

Repeat --product to buy more than one unit; repeated ids merge into one cart
line. The form is validated exactly as the storefront does: name and address
must not be blank and the phone must be 10 digits.

Exit codes:
  0 - Order accepted
  1 - Form invalid or order rejected by the backend
  2 - Command error (unknown product, backend unreachable, etc.)

Examples:
  storefront checkout --product 1 --product 1 --product 3 \
    --name "Ann Lee" --phone 0123456789 --address "1 Main St"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckout(opts, cmd)
		},
	}

	cmd.Flags().Int64SliceVarP(&opts.Products, "product", "p", nil, "product id to add (repeatable)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "customer name")
	cmd.Flags().StringVar(&opts.Phone, "phone", "", "10-digit phone number")
	cmd.Flags().StringVar(&opts.Address, "address", "", "delivery address")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", DefaultTimeout, "how long to wait for the backend")
	_ = cmd.MarkFlagRequired("product")

	return cmd
}

func runCheckout(opts *CheckoutOptions, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(commandContext(cmd), opts.Timeout)
	defer cancel()

	entry, err := s.load(ctx, catalog.ListKey)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load catalog", err)
	}
	byID := make(map[int64]model.ProductSummary, len(entry.Payload.Products))
	for _, p := range entry.Payload.Products {
		byID[p.ID] = p
	}

	for _, id := range opts.Products {
		p, ok := byID[id]
		if !ok {
			return NewExitError(ExitCommandError, fmt.Sprintf("product %d is not in the catalog", id))
		}
		if _, err := s.engine.AddToCart(ctx, p); err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to add product %d", id), err)
		}
	}

	// Success clears the cart, so capture it first.
	before := s.engine.GetState().Cart
	result := CheckoutResult{
		Session: s.engine.Session(),
		Lines:   cart.Items(before),
		Total:   cart.Total(before),
	}

	st, err := s.engine.SubmitCheckout(ctx, model.CheckoutFormData{
		Name:    opts.Name,
		Phone:   opts.Phone,
		Address: opts.Address,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to submit checkout", err)
	}

	form := st.Checkout
	for _, field := range checkout.Fields {
		if !form.Fields[field].Valid {
			result.Invalid = append(result.Invalid, string(field))
		}
	}
	result.Error = form.Err
	result.OrderID = st.LatestOrderID

	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	f.VerboseLog("session %s", result.Session)

	if !form.Success {
		code, msg := CodeOrderRejected, "order rejected: "+form.Err
		if len(result.Invalid) > 0 {
			code, msg = CodeInvalidFields, "invalid fields: "+strings.Join(result.Invalid, ", ")
		}
		if f.JSON() {
			if err := f.Error(code, msg, result); err != nil {
				return err
			}
		} else {
			fmt.Fprintln(f.Writer, "✗ "+msg)
		}
		return NewExitError(ExitFailure, msg)
	}

	if f.JSON() {
		return f.Success(result)
	}
	return f.Success(receipt(result))
}

func receipt(r CheckoutResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✓ Order %d accepted\n", r.OrderID)
	for _, line := range r.Lines {
		fmt.Fprintf(&b, "  %d x %s @ %d = %d\n", line.Count, line.Name, line.Price, cart.LineTotal(line))
	}
	fmt.Fprintf(&b, "  total: %d", r.Total)
	return b.String()
}
