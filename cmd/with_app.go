package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"section3/internal/bootstrap"
	"section3/internal/bootstrap/logging"
	"section3/internal/errs"
	"section3/internal/usecase/compliance"
)

const lifecycleTimeout = 10 * time.Second

func newFxApp(ctx context.Context, opts ...fx.Option) *fx.App {
	base := []fx.Option{
		bootstrap.Module,
		fx.Provide(func() context.Context { return ctx }),
		fx.Provide(
			fx.Annotate(
				func() string { return cfgFile },
				fx.ResultTags(`name:"configFile"`),
			),
		),
	}
	return fx.New(append(base, opts...)...)
}

func withApp(run func(cmd *cobra.Command, app *bootstrap.App, svc *compliance.Service) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := logging.WithAttrs(
			cmd.Context(),
			slog.String("command", cmd.CommandPath()),
			slog.String("config_file", cfgFile),
		)

		var app *bootstrap.App
		var svc *compliance.Service
		fxApp := newFxApp(ctx, fx.Populate(&app, &svc))

		startCtx, cancelStart := context.WithTimeout(ctx, lifecycleTimeout)
		defer cancelStart()
		if err := fxApp.Start(startCtx); err != nil {
			logging.Error(ctx, "bootstrap application failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "start fx application")
		}

		defer func() {
			stopCtx, cancelStop := context.WithTimeout(context.Background(), lifecycleTimeout)
			defer cancelStop()
			if err := fxApp.Stop(stopCtx); err != nil {
				logging.Error(ctx, "fx application stop failed", slog.Any("err", errs.Loggable(err)))
			}
		}()

		if err := run(cmd, app, svc); err != nil {
			return errs.Wrap(err, "run command")
		}
		return nil
	}
}
