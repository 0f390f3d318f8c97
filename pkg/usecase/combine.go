package usecase

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/sheetmerge/pkg/domain/model"
)

// CombinedSheetName is the name of the only sheet of a combined workbook
const CombinedSheetName = "Combined"

// CombinedFileName is the download name of a combined workbook
const CombinedFileName = "combined.xlsx"

// Combine concatenates the filtered grids of files in order. Files that failed
// to decode contribute no rows.
func Combine(files model.FileSet) (model.Grid, error) {
	if len(files) == 0 {
		return nil, goerr.Wrap(model.ErrNoData, "nothing to combine")
	}

	total := 0
	for _, f := range files {
		total += len(f.Grid)
	}

	combined := make(model.Grid, 0, total)
	for _, f := range files {
		combined = append(combined, f.Grid...)
	}
	return combined, nil
}
