package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/sheetmerge/pkg/cli/config"
	controller "github.com/m-mizutani/sheetmerge/pkg/controller/http"
	"github.com/m-mizutani/sheetmerge/pkg/infra/spreadsheet"
	"github.com/m-mizutani/sheetmerge/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdServe(fileCfg *config.File) *cli.Command {
	var (
		serverCfg config.Server
		filterCfg config.Filter
	)

	flags := append(serverCfg.Flags(), filterCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server with the browser UI",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			file, err := fileCfg.Load()
			if err != nil {
				return err
			}
			if err := file.ApplyServer(c.IsSet, &serverCfg); err != nil {
				return err
			}
			file.ApplyFilter(c.IsSet, &filterCfg)

			if err := serverCfg.Validate(); err != nil {
				return err
			}
			secret, err := serverCfg.Secret(logger)
			if err != nil {
				return err
			}

			logger.Info("Starting sheetmerge server",
				slog.Any("server", serverCfg),
				slog.Any("filter", filterCfg.Settings()),
			)

			sessions := usecase.NewSessions(
				spreadsheet.New(),
				usecase.WithDefaultSettings(filterCfg.Settings()),
				usecase.WithSessionTTL(serverCfg.SessionTTL),
			)
			mergeUC := usecase.NewMerge(sessions)

			server, err := controller.NewServer(
				ctx,
				mergeUC,
				controller.WithAddr(serverCfg.Addr),
				controller.WithSessionSecret(secret),
				controller.WithSessionTTL(serverCfg.SessionTTL),
				controller.WithMaxUploadSize(int64(serverCfg.MaxUploadSize)),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "HTTP server failed", goerr.V("addr", serverCfg.Addr))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
