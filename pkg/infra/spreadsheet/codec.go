package spreadsheet

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/sheetmerge/pkg/domain/model"
	"github.com/xuri/excelize/v2"
)

var (
	zipSignature = []byte("PK\x03\x04")
	utf8BOM      = []byte("\xEF\xBB\xBF")
)

// Codec reads the first sheet of xlsx/csv files and writes xlsx workbooks
type Codec struct{}

// New creates a Codec
func New() *Codec {
	return &Codec{}
}

// Decode returns the first sheet of data as a grid of raw cell values
func (c *Codec) Decode(ctx context.Context, name string, data []byte) (model.Grid, error) {
	logger := ctxlog.From(ctx)

	var (
		grid model.Grid
		err  error
	)

	switch {
	case bytes.HasPrefix(data, zipSignature):
		grid, err = decodeWorkbook(data)
	case isTextName(name):
		grid, err = decodeCSV(data)
	default:
		err = goerr.New("unsupported spreadsheet format", goerr.V("ext", filepath.Ext(name)))
	}
	if err != nil {
		return nil, goerr.Wrap(errors.Join(model.ErrDecode, err), "failed to decode spreadsheet",
			goerr.V("file", name),
			goerr.V("size", len(data)),
		)
	}

	logger.Debug("Decoded spreadsheet",
		"file", name,
		"rows", len(grid),
		"columns", grid.Width(),
	)
	return grid, nil
}

func isTextName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return true
	default:
		return false
	}
}

func decodeWorkbook(data []byte) (model.Grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, goerr.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read rows", goerr.V("sheet", sheets[0]))
	}

	grid := make(model.Grid, len(rows))
	for i, row := range rows {
		grid[i] = model.Row(row)
	}
	return grid, nil
}

func decodeCSV(data []byte) (model.Grid, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse CSV")
	}

	grid := make(model.Grid, len(records))
	for i, record := range records {
		grid[i] = model.Row(record)
	}
	return grid, nil
}

// Encode writes grid to w as an xlsx workbook with one sheet named sheetName
func (c *Codec) Encode(ctx context.Context, sheetName string, grid model.Grid, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return goerr.Wrap(err, "failed to name sheet", goerr.V("sheet", sheetName))
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return goerr.Wrap(err, "failed to create stream writer", goerr.V("sheet", sheetName))
	}

	for i, row := range grid {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return goerr.Wrap(err, "invalid row coordinate", goerr.V("row", i+1))
		}
		if err := sw.SetRow(cell, cellValues(row)); err != nil {
			return goerr.Wrap(err, "failed to write row", goerr.V("row", i+1))
		}
	}

	if err := sw.Flush(); err != nil {
		return goerr.Wrap(err, "failed to flush sheet")
	}

	if err := f.Write(w); err != nil {
		return goerr.Wrap(err, "failed to write workbook")
	}

	ctxlog.From(ctx).Debug("Encoded workbook",
		"sheet", sheetName,
		"rows", len(grid),
	)
	return nil
}

// cellValues converts a row to typed cell values: canonical numbers become
// numeric cells, empty strings stay unset.
func cellValues(row model.Row) []any {
	values := make([]any, len(row))
	for i, v := range row {
		switch {
		case v == "":
			values[i] = nil
		default:
			if num, ok := parseNumber(v); ok {
				values[i] = num
			} else {
				values[i] = v
			}
		}
	}
	return values
}

func parseNumber(s string) (float64, bool) {
	num, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
		return 0, false
	}
	if strconv.FormatFloat(num, 'f', -1, 64) != s {
		return 0, false
	}
	return num, true
}
