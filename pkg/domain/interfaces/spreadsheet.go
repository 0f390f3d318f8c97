package interfaces

import (
	"context"
	"io"

	"github.com/m-mizutani/sheetmerge/pkg/domain/model"
)

// SpreadsheetCodec reads and writes spreadsheet binaries
type SpreadsheetCodec interface {
	// Decode returns the first sheet of data as a grid. It fails with model.ErrDecode
	Decode(ctx context.Context, name string, data []byte) (model.Grid, error)

	// Encode writes grid as a workbook with a single sheet named sheetName
	Encode(ctx context.Context, sheetName string, grid model.Grid, w io.Writer) error
}
