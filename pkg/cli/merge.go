package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/sheetmerge/pkg/cli/config"
	"github.com/m-mizutani/sheetmerge/pkg/domain/model"
	"github.com/m-mizutani/sheetmerge/pkg/infra/spreadsheet"
	"github.com/m-mizutani/sheetmerge/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdMerge(fileCfg *config.File) *cli.Command {
	var (
		filterCfg config.Filter
		output    string
		preview   bool
	)

	flags := append(filterCfg.Flags(),
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Path of the combined workbook",
			Value:       usecase.CombinedFileName,
			Destination: &output,
		},
		&cli.BoolFlag{
			Name:        "preview",
			Usage:       "Print the filtered rows of every file",
			Destination: &preview,
		},
	)

	return &cli.Command{
		Name:      "merge",
		Aliases:   []string{"m"},
		Usage:     "Filter spreadsheet files and combine them into one workbook",
		ArgsUsage: "FILE...",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			file, err := fileCfg.Load()
			if err != nil {
				return err
			}
			file.ApplyFilter(c.IsSet, &filterCfg)

			uploads, err := readInputs(c.Args().Slice())
			if err != nil {
				return err
			}

			ws := usecase.NewWorkspace(spreadsheet.New(), filterCfg.Settings())
			result, err := ws.Load(ctx, uploads, nil)
			if err != nil {
				return err
			}

			w := c.Root().Writer
			if preview {
				printPreviews(w, result.Previews)
			}

			var buf bytes.Buffer
			if err := ws.Combine(ctx, &buf); err != nil {
				if errors.Is(err, model.ErrNoData) {
					return goerr.Wrap(err, model.NoticeNoData)
				}
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return goerr.Wrap(err, "failed to write combined workbook", goerr.V("path", output))
			}

			ctxlog.From(ctx).Info("Wrote combined workbook",
				"path", output,
				"files", len(uploads),
				"rows", result.TotalRows(),
			)
			printSummary(w, result, output)
			return nil
		},
	}
}

func readInputs(paths []string) ([]*model.Upload, error) {
	uploads := make([]*model.Upload, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read input file", goerr.V("path", path))
		}
		uploads = append(uploads, &model.Upload{
			Name:    filepath.Base(path),
			Content: content,
		})
	}
	return uploads, nil
}

var titleStyle = lipgloss.NewStyle().Bold(true)

func printPreviews(w io.Writer, previews []*model.Preview) {
	for _, p := range previews {
		fmt.Fprintln(w, titleStyle.Render(p.Title))
		if p.Error != "" {
			fmt.Fprintln(w, p.Error)
			continue
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers(p.Columns...).
			Rows(p.Rows...)
		fmt.Fprintln(w, t.Render())
	}
}

func printSummary(w io.Writer, result *model.PassResult, output string) {
	ok := color.New(color.FgGreen)
	ng := color.New(color.FgRed)
	bold := color.New(color.Bold)

	for _, p := range result.Previews {
		if p.Error != "" {
			ng.Fprintf(w, "  ✗ %s\n", p.Title)
			continue
		}
		ok.Fprintf(w, "  ✓ %s", p.Title)
		fmt.Fprintf(w, " (%d rows)\n", len(p.Rows))
	}
	for _, notice := range result.Notices {
		ng.Fprintln(w, notice)
	}

	bold.Fprintf(w, "%d rows written to %s\n", result.TotalRows(), output)
}
