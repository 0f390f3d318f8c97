package usecase_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/sheetmerge/pkg/domain/model"
	"github.com/m-mizutani/sheetmerge/pkg/usecase"
)

func peopleGrid() model.Grid {
	return model.Grid{
		{"Name", "Age"},
		{"Alice", "30"},
		{"Bob", ""},
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		grid     model.Grid
		settings model.FilterSettings
		expected model.Grid
	}{
		{
			name:     "Skip header row",
			grid:     peopleGrid(),
			settings: model.FilterSettings{RowsToSkip: 1, ColumnNumber: 1},
			expected: model.Grid{{"Alice", "30"}, {"Bob", ""}},
		},
		{
			name:     "Skip header row and require column 2",
			grid:     peopleGrid(),
			settings: model.FilterSettings{RowsToSkip: 1, ColumnFilterEnabled: true, ColumnNumber: 2},
			expected: model.Grid{{"Alice", "30"}},
		},
		{
			name:     "Defaults keep everything",
			grid:     peopleGrid(),
			settings: model.DefaultFilterSettings(),
			expected: peopleGrid(),
		},
		{
			name:     "Column number disabled is ignored",
			grid:     peopleGrid(),
			settings: model.FilterSettings{ColumnNumber: 2},
			expected: peopleGrid(),
		},
		{
			name: "Short rows are dropped by the column filter",
			grid: model.Grid{
				{"a", "b", "c"},
				{"d"},
				{},
				{"e", "", "f"},
			},
			settings: model.FilterSettings{ColumnFilterEnabled: true, ColumnNumber: 3},
			expected: model.Grid{{"a", "b", "c"}, {"e", "", "f"}},
		},
		{
			name:     "Skip beyond row count",
			grid:     peopleGrid(),
			settings: model.FilterSettings{RowsToSkip: 10, ColumnNumber: 1},
			expected: model.Grid{},
		},
		{
			name:     "Invalid column number is treated as 1",
			grid:     model.Grid{{"", "x"}, {"y", ""}},
			settings: model.FilterSettings{ColumnFilterEnabled: true, ColumnNumber: 0},
			expected: model.Grid{{"y", ""}},
		},
		{
			name:     "Negative skip is treated as 0",
			grid:     peopleGrid(),
			settings: model.FilterSettings{RowsToSkip: -1, ColumnNumber: 1},
			expected: peopleGrid(),
		},
		{
			name:     "Empty grid",
			grid:     model.Grid{},
			settings: model.FilterSettings{RowsToSkip: 2, ColumnFilterEnabled: true, ColumnNumber: 1},
			expected: model.Grid{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := usecase.Filter(tt.grid, tt.settings)
			gt.Value(t, got).Equal(tt.expected)
		})
	}
}

func TestFilter_DoesNotModifyInput(t *testing.T) {
	grid := peopleGrid()
	_ = usecase.Filter(grid, model.FilterSettings{RowsToSkip: 1, ColumnFilterEnabled: true, ColumnNumber: 2})
	gt.Value(t, grid).Equal(peopleGrid())
}

func TestFilter_RowSkipProperty(t *testing.T) {
	grid := model.Grid{{"1"}, {"2"}, {"3"}, {"4"}, {"5"}}

	for k := 0; k <= len(grid)+2; k++ {
		got := usecase.Filter(grid, model.FilterSettings{RowsToSkip: k, ColumnNumber: 1})

		dropped := min(k, len(grid))
		gt.Value(t, len(got)).Equal(len(grid) - dropped)
		if len(got) > 0 {
			gt.Value(t, got[0]).Equal(grid[dropped])
		}
	}
}

func TestFilter_ColumnProperty(t *testing.T) {
	grid := model.Grid{
		{"r0", "x", ""},
		{"r1"},
		{"r2", "", "z"},
		{"r3", "y", "w"},
		{"r4", "v"},
		{"r5", ""},
	}

	for c := 1; c <= 4; c++ {
		got := usecase.Filter(grid, model.FilterSettings{ColumnFilterEnabled: true, ColumnNumber: c})

		var expected model.Grid
		for _, row := range grid {
			if v, ok := (model.Grid{row}).Cell(0, c-1); ok && v != "" {
				expected = append(expected, row)
			}
		}

		gt.Value(t, len(got)).Equal(len(expected))
		for i := range got {
			gt.Value(t, got[i]).Equal(expected[i])
		}
	}
}
