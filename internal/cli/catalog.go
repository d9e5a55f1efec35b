package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/catalog"
	"github.com/roach88/storefront/internal/model"
)

// CatalogOptions holds flags for the catalog and product commands.
type CatalogOptions struct {
	*RootOptions
	Timeout time.Duration
}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the products the backend serves",
		Long: `Load the product listing through the engine and print it in server order.

Examples:
  storefront catalog
  storefront catalog --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(opts, cmd)
		},
	}
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", DefaultTimeout, "how long to wait for the backend")
	return cmd
}

// NewProductCommand creates the product command.
func NewProductCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "product <id>",
		Short: "Show one product's details",
		Long: `Load one product's details through the engine and print them.

Examples:
  storefront product 3
  storefront product 3 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id < 0 {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid product id %q", args[0]))
			}
			return runProduct(opts, id, cmd)
		},
	}
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", DefaultTimeout, "how long to wait for the backend")
	return cmd
}

func runCatalog(opts *CatalogOptions, cmd *cobra.Command) error {
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

	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if f.JSON() {
		return f.Success(entry.Payload.Products)
	}
	var b strings.Builder
	if err := writeProductTable(&b, entry.Payload.Products); err != nil {
		return WrapExitError(ExitFailure, "failed to render catalog", err)
	}
	return f.Success(strings.TrimRight(b.String(), "\n"))
}

func runProduct(opts *CatalogOptions, id int64, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(commandContext(cmd), opts.Timeout)
	defer cancel()

	entry, err := s.load(ctx, catalog.ProductKey(id))
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to load product %d", id), err)
	}

	p := entry.Payload.Product
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if f.JSON() {
		return f.Success(p)
	}
	return f.Success(productDetails(*p))
}

// writeProductTable writes products as aligned columns in server order.
func writeProductTable(w io.Writer, products []model.ProductSummary) error {
	if len(products) == 0 {
		_, err := fmt.Fprintln(w, "No products.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", p.ID, p.Name, p.Price)
	}
	return tw.Flush()
}

func productDetails(p model.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (#%d)\n", p.Name, p.ID)
	fmt.Fprintf(&b, "  price:       %d\n", p.Price)
	if p.Material != "" {
		fmt.Fprintf(&b, "  material:    %s\n", p.Material)
	}
	if p.Color != "" {
		fmt.Fprintf(&b, "  color:       %s\n", p.Color)
	}
	if p.Description != "" {
		fmt.Fprintf(&b, "  description: %s\n", p.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

// commandContext returns cmd's context, or Background when run outside
// Execute (tests).
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
