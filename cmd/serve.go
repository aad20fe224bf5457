package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"section3/internal/bootstrap/config"
	"section3/internal/bootstrap/logging"
	"section3/internal/errs"
	"section3/internal/infrastructure/metrics"
	"section3/internal/transport/httpapi"
	"section3/internal/usecase/compliance"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the compliance HTTP API until interrupted",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := logging.WithAttrs(
			cmd.Context(),
			slog.String("command", cmd.CommandPath()),
			slog.String("config_file", cfgFile),
		)

		fxApp := newFxApp(ctx, fx.Invoke(registerHTTPServer))

		startCtx, cancelStart := context.WithTimeout(ctx, lifecycleTimeout)
		defer cancelStart()
		if err := fxApp.Start(startCtx); err != nil {
			logging.Error(ctx, "bootstrap application failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "start fx application")
		}

		select {
		case sig := <-fxApp.Done():
			logging.Info(ctx, "shutdown requested", slog.String("signal", sig.String()))
		case <-ctx.Done():
		}

		stopCtx, cancelStop := context.WithTimeout(context.Background(), lifecycleTimeout)
		defer cancelStop()
		if err := fxApp.Stop(stopCtx); err != nil {
			logging.Error(ctx, "fx application stop failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "stop fx application")
		}
		return nil
	},
}

type httpServerParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Ctx        context.Context
	Config     config.Config
	Service    *compliance.Service
	Metrics    *metrics.Metrics
}

func registerHTTPServer(p httpServerParams) {
	logCtx := logging.WithComponent(p.Ctx, "cmd.serve")

	addr := strings.TrimSpace(serveAddr)
	if addr == "" {
		addr = p.Config.HTTP.Addr
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           httpapi.NewRouter(p.Ctx, p.Service, p.Metrics),
		ReadHeaderTimeout: 5 * time.Second,
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			listener, err := net.Listen("tcp", addr)
			if err != nil {
				return errs.Wrapf(err, "listen %s", addr)
			}

			go func() {
				if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logging.Error(logCtx, "http server failed", slog.Any("err", errs.Loggable(err)))
					_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()

			logging.Info(logCtx, "http server started", slog.String("addr", listener.Addr().String()))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logging.Info(logCtx, "http server stopping")
			return server.Shutdown(ctx)
		},
	})
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides http.addr)")
}
