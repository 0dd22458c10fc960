package sheetdb

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"hirebot-backend/internal/sheets"
)

// fakeGateway is an in-memory spreadsheet: row 0 of each grid is the header.
type fakeGateway struct {
	grids map[string][][]string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{grids: make(map[string][][]string)}
}

// cellRef splits "C4" into its column and row parts; either may be absent.
func cellRef(s string) (col, row int) {
	col, row = -1, -1
	i := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		i++
	}
	if i > 0 {
		col = 0
		for _, ch := range s[:i] {
			col = col*26 + int(ch-'A') + 1
		}
		col--
	}
	if i < len(s) {
		row, _ = strconv.Atoi(s[i:])
	}
	return col, row
}

// parseRange resolves an A1 range against a grid into 0-based bounds.
func parseRange(rng string, height int) (sheet string, colStart, colEnd, rowStart, rowEnd int) {
	sheet, rest, _ := strings.Cut(rng, "!")
	start, end, hasEnd := strings.Cut(rest, ":")

	c1, r1 := cellRef(start)
	c2, r2 := c1, r1
	if hasEnd {
		c2, r2 = cellRef(end)
	}
	if c1 < 0 {
		c1 = 0
	}
	if c2 < 0 {
		c2 = 1 << 20
	}
	if r1 < 0 {
		r1 = 1
	}
	if r2 < 0 {
		r2 = height
	}
	return sheet, c1, c2, r1 - 1, r2 - 1
}

func (f *fakeGateway) Header(ctx context.Context, sheet string) ([]string, error) {
	grid, ok := f.grids[sheet]
	if !ok || len(grid) == 0 {
		return nil, sheets.ErrNoData
	}
	return grid[0], nil
}

func (f *fakeGateway) ColumnIndex(ctx context.Context, sheet, name string) (int, error) {
	header, err := f.Header(ctx, sheet)
	if err != nil {
		return 0, err
	}
	idx, ok := sheets.FindColumn(header, name)
	if !ok {
		return 0, fmt.Errorf("%s!%s: %w", sheet, name, sheets.ErrColumnNotFound)
	}
	return idx, nil
}

func (f *fakeGateway) Rows(ctx context.Context, rng string) ([][]string, error) {
	sheet, c1, c2, r1, r2 := parseRange(rng, len(f.grids[strings.Split(rng, "!")[0]]))
	grid := f.grids[sheet]

	var out [][]string
	for r := r1; r <= r2 && r < len(grid); r++ {
		row := grid[r]
		cells := make([]string, 0)
		for c := c1; c <= c2 && c < len(row); c++ {
			cells = append(cells, row[c])
		}
		out = append(out, cells)
	}
	return out, nil
}

func (f *fakeGateway) set(sheet string, col, row int, value string) {
	grid := f.grids[sheet]
	for len(grid) <= row {
		grid = append(grid, []string{})
	}
	for len(grid[row]) <= col {
		grid[row] = append(grid[row], "")
	}
	grid[row][col] = value
	f.grids[sheet] = grid
}

func (f *fakeGateway) UpdateRow(ctx context.Context, rng string, values []string) error {
	sheet, c1, _, r1, _ := parseRange(rng, len(f.grids))
	for i, v := range values {
		f.set(sheet, c1+i, r1, v)
	}
	return nil
}

func (f *fakeGateway) UpdateCell(ctx context.Context, rng, value string) error {
	sheet, c1, _, r1, _ := parseRange(rng, len(f.grids))
	f.set(sheet, c1, r1, value)
	return nil
}

func (f *fakeGateway) AppendRow(ctx context.Context, rng string, values []string) error {
	sheet, _, _, _, _ := parseRange(rng, 0)
	f.grids[sheet] = append(f.grids[sheet], append([]string(nil), values...))
	return nil
}

func (f *fakeGateway) InvalidateHeader(sheet string) {}
