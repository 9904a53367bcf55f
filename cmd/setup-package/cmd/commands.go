package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/setup-package/internal/config"
	"github.com/oshokin/setup-package/internal/domain/setup"
	"github.com/oshokin/setup-package/internal/logger"
	"github.com/oshokin/setup-package/internal/repository/receipt"
	"github.com/oshokin/setup-package/internal/service/bootstrap"
	"github.com/oshokin/setup-package/internal/service/settings"
)

var (
	// sheetID is written by init.
	sheetID string
	// force lets init overwrite an existing settings file.
	force bool

	// resolveCmd prints the version without installing it.
	resolveCmd = &cobra.Command{
		Use:   "resolve [identifier]",
		Short: "Print the version selected for an identifier",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := bootstrap.Resolve(cmd.Context(), newOptions(cmd, args))
			if errors.Is(err, setup.ErrAborted) {
				logger.Info(cmd.Context(), "Resolve aborted by user")
				return nil
			}

			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), resolved)

			return nil
		},
	}

	// initCmd writes a settings file with defaults.
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a settings file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return settings.Run(cmd.Context(), &settings.Options{
				ConfigPath: configPath,
				SheetID:    sheetID,
				Overrides:  []config.Override{flagOverrides(cmd)},
				Force:      force,
			})
		},
	}

	// statusCmd prints the receipt of the last installation.
	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show the last installed version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := bootstrap.Status(cmd.Context(), newOptions(cmd, args))
			if errors.Is(err, receipt.ErrNotFound) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No installation recorded")
				return nil
			}

			if err != nil {
				return err
			}

			printReceipt(cmd, rec)

			return nil
		},
	}
)

func printReceipt(cmd *cobra.Command, rec *setup.Receipt) {
	out := cmd.OutOrStdout()

	_, _ = fmt.Fprintf(out, "version:      %s\n", rec.Version)
	_, _ = fmt.Fprintf(out, "archive:      %s\n", rec.Archive)
	_, _ = fmt.Fprintf(out, "installed at: %s\n", rec.InstalledAt.Format(time.RFC3339))

	if rec.Actor != nil {
		_, _ = fmt.Fprintf(out, "installed by: %s@%s\n", rec.Actor.Username, rec.Actor.Hostname)
	}

	_, _ = fmt.Fprintf(out, "schemas:      %d\n", rec.Schemas)

	if rec.Warning != "" {
		_, _ = fmt.Fprintf(out, "warning:      %s\n", rec.Warning)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	initCmd.Flags().StringVar(&sheetID, "sheet-id", "", "spreadsheet with the version table")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing settings file")
}
