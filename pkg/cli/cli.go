package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/sheetmerge/pkg/cli/config"
	"github.com/m-mizutani/sheetmerge/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout)
}

func run(ctx context.Context, args []string, w io.Writer) error {
	var (
		loggerCfg config.Logger
		sentryCfg config.Sentry
		fileCfg   config.File
		logger    *slog.Logger
		flush     = func() {}
	)
	defer func() { flush() }()

	var flags []cli.Flag
	flags = append(flags, loggerCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags, fileCfg.Flags()...)

	app := &cli.Command{
		Name:    "sheetmerge",
		Usage:   "Filter and merge spreadsheets into one workbook",
		Version: types.Version,
		Flags:   flags,
		Writer:  w,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			logger, err = loggerCfg.Configure()
			if err != nil {
				return nil, err
			}

			flush, err = sentryCfg.Configure()
			if err != nil {
				return nil, err
			}

			logger.Debug("Configured", "sentry", sentryCfg)
			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdServe(&fileCfg),
			cmdMerge(&fileCfg),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("CLI execution failed", slog.Any("error", err))
		return err
	}

	return nil
}
