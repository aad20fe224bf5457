package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"section3/internal/bootstrap/logging"
	"section3/internal/errs"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:          "section3",
	Short:        "HUD Section 3 compliance engine",
	Long:         "Applicability, onboarding tasks, labor summaries, quarterly reminders and compliance notifications for HUD Section 3 contracts.",
	SilenceUsage: true,
}

// Execute runs the root command with a context-scoped logger.
func Execute(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	// Flags are parsed inside ExecuteContext, so the logger is built lazily.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		runCtx := logging.WithLogger(cmd.Context(), logger)
		runCtx = logging.WithAttrs(runCtx, slog.String("app", "section3"))
		cmd.SetContext(runCtx)
		return nil
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Error(ctx, "command execution failed", slog.Any("err", errs.Loggable(err)))
		return errs.Wrap(err, "execute root command")
	}

	return nil
}

func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	logger, err := logging.New(cmd.ErrOrStderr(), logLevel, logFormat)
	if err != nil {
		return nil, errs.Wrap(err, "configure logger")
	}
	return logger, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file path (default ./configs/config.yaml when present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "json", "Result format: json or yaml")
}
