package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/api"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Listen  string
	Catalog string

	// Ready, if set, receives the bound address once the server listens.
	Ready chan<- string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo store backend",
		Long: `Serve a catalog fixture and accept checkouts over HTTP.

Routes are mounted under the configured basename:
  GET  <basename>/api/products
  GET  <basename>/api/products/{id}
  POST <basename>/api/checkout

The catalog is a CUE or YAML fixture validated against the product schema;
without one the built-in catalog is served.

Examples:
  storefront serve
  storefront serve --listen :8080 --catalog ./catalog.cue`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Listen, "listen", "", "address to listen on (default from config)")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "catalog fixture, .cue or .yaml (default from config)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	cfg := opts.Config
	listen := firstNonEmpty(opts.Listen, cfg.Listen)
	fixture := firstNonEmpty(opts.Catalog, cfg.CatalogFixture)

	var (
		c   api.Catalog
		err error
	)
	if fixture == "" {
		c, err = api.DefaultCatalog()
	} else {
		c, err = api.LoadCatalog(fixture)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load catalog fixture", err)
	}
	slog.Info("catalog loaded", "products", len(c.Products), "fixture", fixture)

	r := mux.NewRouter()
	api.NewServer(c, cfg.Basename).RegisterRoutes(r)

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to listen", err)
	}
	srv := &http.Server{Handler: r, ReadHeaderTimeout: 5 * time.Second}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()

	addr := ln.Addr().String()
	slog.Info("backend listening", "addr", addr, "basename", cfg.Basename)
	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on http://%s\n", cfg.Basename, addr)
	if opts.Ready != nil {
		opts.Ready <- addr
	}

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitFailure, "server error", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "shutdown failed", err)
	}
	slog.Info("backend stopped gracefully")
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
