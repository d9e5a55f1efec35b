package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/storefront/internal/config"
)

// NewConfigCommand creates the config command group.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or inspect storefront.yaml",
	}
	cmd.AddCommand(newConfigInitCommand(rootOpts))
	cmd.AddCommand(newConfigShowCommand(rootOpts))
	cmd.AddCommand(newConfigSetCommand(rootOpts))
	return cmd
}

func newConfigInitCommand(rootOpts *RootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:           "init",
		Short:         "Write a commented default config file",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootOpts.ConfigPath
			if _, err := os.Stat(path); err == nil && !force {
				return NewExitError(ExitCommandError, fmt.Sprintf("%s already exists (use --force to overwrite)", path))
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return WrapExitError(ExitCommandError, "failed to stat config", err)
			}
			if err := os.WriteFile(path, []byte(config.DefaultYAML()), 0o644); err != nil {
				return WrapExitError(ExitCommandError, "failed to write config", err)
			}
			f := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if f.JSON() {
				return f.Success(map[string]string{"path": path})
			}
			return f.Success("Wrote " + path)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newConfigShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show",
		Short:         "Print the effective configuration",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if f.JSON() {
				return f.Success(rootOpts.Config)
			}
			data, err := yaml.Marshal(rootOpts.Config)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to encode config", err)
			}
			_, err = f.Writer.Write(data)
			return err
		},
	}
}

func newConfigSetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting and save the file",
		Long: `Change one setting and save the config file. Comments in the file are
not preserved.

Keys: base_url, basename, listen, catalog_fixture, journal_path, log_level`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.Config
			if err := setConfigKey(&cfg, args[0], args[1]); err != nil {
				return WrapExitError(ExitCommandError, "invalid setting", err)
			}
			if err := cfg.Validate(); err != nil {
				return WrapExitError(ExitCommandError, "invalid setting", err)
			}
			if err := config.Write(rootOpts.ConfigPath, cfg); err != nil {
				return WrapExitError(ExitCommandError, "failed to write config", err)
			}
			rootOpts.Config = cfg
			f := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if f.JSON() {
				return f.Success(cfg)
			}
			return f.Success(fmt.Sprintf("%s = %s", args[0], args[1]))
		},
	}
}

func setConfigKey(cfg *config.Config, key, value string) error {
	switch key {
	case "base_url":
		cfg.BaseURL = value
	case "basename":
		cfg.Basename = value
	case "listen":
		cfg.Listen = value
	case "catalog_fixture":
		cfg.CatalogFixture = value
	case "journal_path":
		cfg.JournalPath = value
	case "log_level":
		cfg.LogLevel = value
	default:
		return fmt.Errorf("unknown key %q", key)
	}
	return nil
}
