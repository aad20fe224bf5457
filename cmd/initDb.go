package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"section3/internal/bootstrap"
	"section3/internal/bootstrap/logging"
	"section3/internal/errs"
	"section3/internal/usecase/compliance"
)

var initDbCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Initialize database schema",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, _ *compliance.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		logging.Info(ctx, "start init-db")

		if err := app.InitSchema(ctx); err != nil {
			logging.Error(ctx, "initialize schema failed", slog.Any("err", errs.Loggable(err)))
			return printResult(cmd, nil, errs.Wrap(err, "initialize schema"))
		}

		version, err := app.SchemaVersion(ctx)
		if err != nil {
			return printResult(cmd, nil, err)
		}

		logging.Info(ctx, "init-db finished", slog.String("database_dsn", app.Config.Database.DSN))
		return printResult(cmd, map[string]string{
			"database_dsn":   app.Config.Database.DSN,
			"schema_version": version,
		}, nil)
	}),
}

func init() {
	rootCmd.AddCommand(initDbCmd)
}
