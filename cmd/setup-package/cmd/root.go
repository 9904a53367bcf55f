package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/setup-package/internal/config"
	"github.com/oshokin/setup-package/internal/domain/setup"
	"github.com/oshokin/setup-package/internal/logger"
	"github.com/oshokin/setup-package/internal/service/bootstrap"
	"github.com/oshokin/setup-package/internal/version"
)

var errUnknownLogLevel = errors.New("unknown log level")

var (
	// configPath to the configuration YAML or TOML file.
	configPath string
	// logLevel is the minimum level written to the console.
	logLevel string
	// interactive prompts for the identifier when it is omitted.
	interactive bool
	// contentRoot overrides content_root from settings.
	contentRoot string
	// skipSchemas overrides skip_schemas from settings.
	skipSchemas bool
	// globalVersion turns global mode on with the given version.
	globalVersion string

	// rootCmd resolves a version and installs its bundle.
	rootCmd = &cobra.Command{
		Use:               "setup-package [identifier]",
		Short:             "Install the API bundle version selected for a notebook",
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		PersistentPreRunE: applyLogLevel,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := bootstrap.Run(cmd.Context(), newOptions(cmd, args))
			if errors.Is(err, setup.ErrAborted) {
				logger.Info(cmd.Context(), "Setup aborted by user")
				return nil
			}

			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Installed version %s into %s\n", result.Version, result.Paths.Root)

			if result.Warning != nil {
				_, _ = fmt.Fprintf(out, "Schema generation failed: %v\n", result.Warning)
			}

			return nil
		},
	}
)

// Execute runs the setup-package CLI and exits with non-zero status on error.
func Execute() {
	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)

	version.AttachCobraVersionCommand(rootCmd)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

// newOptions collects flags and arguments shared by the commands.
func newOptions(cmd *cobra.Command, args []string) *bootstrap.Options {
	options := &bootstrap.Options{
		ConfigPath:  configPath,
		Overrides:   []config.Override{flagOverrides(cmd)},
		Interactive: interactive,
		Input:       cmd.InOrStdin(),
		Output:      cmd.OutOrStdout(),
	}

	if len(args) > 0 {
		options.Identifier = args[0]
	}

	return options
}

// flagOverrides applies only the flags set on the command line.
func flagOverrides(cmd *cobra.Command) config.Override {
	flags := cmd.Flags()

	return func(cfg *config.Config) {
		if flags.Changed("content-root") {
			cfg.ContentRoot = contentRoot
		}

		if flags.Changed("skip-schemas") {
			cfg.SkipSchemas = skipSchemas
		}

		if flags.Changed("global-version") {
			cfg.GlobalMode = true
			cfg.GlobalVersion = globalVersion
		}
	}
}

// applyLogLevel sends logs to the command's error stream, keeping standard
// output for results such as the resolved version.
func applyLogLevel(cmd *cobra.Command, _ []string) error {
	level, ok := logger.ParseLogLevel(logLevel)
	if !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, logLevel)
	}

	logger.SetLogger(logger.NewWithSink(zapcore.AddSync(cmd.ErrOrStderr()), nil))
	logger.SetLevel(level)

	return nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
	flags.StringVar(&contentRoot, "content-root", config.DefaultContentRoot, "directory the bundle is installed into")
	flags.BoolVar(&skipSchemas, "skip-schemas", false, "do not run the schema generator")
	flags.StringVar(&globalVersion, "global-version", "", "install this version regardless of identifier")
	flags.BoolVarP(&interactive, "interactive", "i", false, "prompt for the identifier when it is omitted")

	rootCmd.AddCommand(resolveCmd, initCmd, statusCmd)
}
