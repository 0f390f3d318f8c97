package model

// Row is one spreadsheet row. An absent cell is represented by the empty string.
type Row []string

// Grid is the cell data of one sheet. Rows may have different lengths.
type Grid []Row

// Width returns the maximum row length of the grid, 0 for an empty grid
func (x Grid) Width() int {
	width := 0
	for _, row := range x {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// Cell returns the value at (row, col) and whether the cell exists in the grid
func (x Grid) Cell(row, col int) (string, bool) {
	if row < 0 || row >= len(x) || col < 0 || col >= len(x[row]) {
		return "", false
	}
	return x[row][col], true
}
