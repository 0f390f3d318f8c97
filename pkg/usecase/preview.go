package usecase

import (
	"strconv"

	"github.com/m-mizutani/sheetmerge/pkg/domain/model"
)

// Render builds the display structure of one file. Columns are labeled
// "Column 1".."Column N" with N the widest row; every row is padded to N.
func Render(name string, grid model.Grid) *model.Preview {
	width := grid.Width()

	columns := make([]string, width)
	for i := range columns {
		columns[i] = "Column " + strconv.Itoa(i+1)
	}

	rows := make([][]string, len(grid))
	for i, row := range grid {
		padded := make([]string, width)
		copy(padded, row)
		rows[i] = padded
	}

	return &model.Preview{
		Title:   name,
		Columns: columns,
		Rows:    rows,
	}
}

// renderFailure builds the preview of a file that could not be decoded
func renderFailure(name string) *model.Preview {
	return &model.Preview{
		Title:   name,
		Columns: []string{},
		Rows:    [][]string{},
		Error:   model.DecodeNotice(name),
	}
}
