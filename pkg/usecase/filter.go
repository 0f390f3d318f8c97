package usecase

import "github.com/m-mizutani/sheetmerge/pkg/domain/model"

// Filter drops the first settings.RowsToSkip rows of grid and, when the column
// filter is enabled, keeps only rows whose required column holds a non-empty
// value. grid is not modified; row order is preserved.
func Filter(grid model.Grid, settings model.FilterSettings) model.Grid {
	settings = settings.Normalize()

	skip := settings.RowsToSkip
	if skip > len(grid) {
		skip = len(grid)
	}
	rows := grid[skip:]

	filtered := make(model.Grid, 0, len(rows))
	col := settings.ColumnIndex()
	for _, row := range rows {
		if settings.ColumnFilterEnabled && (col >= len(row) || row[col] == "") {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}
