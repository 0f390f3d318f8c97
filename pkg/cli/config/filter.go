package config

import (
	"github.com/m-mizutani/sheetmerge/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

// Filter holds the default filter settings given on the command line
type Filter struct {
	RowsToSkip   int
	ColumnFilter bool
	ColumnNumber int
}

// Flags returns CLI flags for filter settings
func (c *Filter) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "rows-to-skip",
			Usage:       "Number of leading rows dropped from every file",
			Value:       model.DefaultRowsToSkip,
			Destination: &c.RowsToSkip,
			Sources:     cli.EnvVars("SHEETMERGE_ROWS_TO_SKIP"),
		},
		&cli.BoolFlag{
			Name:        "column-filter",
			Usage:       "Keep only rows with a value in the required column",
			Destination: &c.ColumnFilter,
			Sources:     cli.EnvVars("SHEETMERGE_COLUMN_FILTER"),
		},
		&cli.IntFlag{
			Name:        "column-number",
			Usage:       "Required column for the column filter (1-based)",
			Value:       model.DefaultColumnNumber,
			Destination: &c.ColumnNumber,
			Sources:     cli.EnvVars("SHEETMERGE_COLUMN_NUMBER"),
		},
	}
}

// Settings returns the normalized filter settings
func (c *Filter) Settings() model.FilterSettings {
	return model.FilterSettings{
		RowsToSkip:          c.RowsToSkip,
		ColumnFilterEnabled: c.ColumnFilter,
		ColumnNumber:        c.ColumnNumber,
	}.Normalize()
}
