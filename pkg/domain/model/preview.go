package model

// Preview is the display structure of one file: a title, numbered column
// headers and rows padded to the header width
type Preview struct {
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Error   string     `json:"error,omitempty"`
}

// PassResult is the committed outcome of one processing pass over a FileSet
type PassResult struct {
	Generation uint64         `json:"generation"`
	Settings   FilterSettings `json:"settings"`
	Previews   []*Preview     `json:"previews"`
	Notices    []string       `json:"notices,omitempty"`
}

// TotalRows returns the number of data rows across all previews
func (x *PassResult) TotalRows() int {
	total := 0
	for _, p := range x.Previews {
		total += len(p.Rows)
	}
	return total
}
