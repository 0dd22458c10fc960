package sheets

import (
	"strconv"
	"strings"
)

// NormalizeColumn lowercases a header name and strips spaces and
// underscores, so "Course Date", "course_date" and "CourseDate" all resolve
// to the same column.
func NormalizeColumn(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}

// FindColumn returns the 0-based index of name within header, matching by
// normalized name.
func FindColumn(header []string, name string) (int, bool) {
	want := NormalizeColumn(name)
	for i, h := range header {
		if NormalizeColumn(h) == want {
			return i, true
		}
	}
	return 0, false
}

// ColumnLetter converts a 0-based column index to its A1 letter form
// (0 = "A", 25 = "Z", 26 = "AA").
func ColumnLetter(index int) string {
	letters := ""
	n := index
	for {
		letters = string(rune('A'+n%26)) + letters
		n = n/26 - 1
		if n < 0 {
			break
		}
	}
	return letters
}

// CellRange builds an A1 range for a single cell from a 0-based column index
// and a 1-based row number.
func CellRange(sheet string, column, row int) string {
	return sheet + "!" + ColumnLetter(column) + strconv.Itoa(row)
}

// RowRange builds an A1 range covering columns A through last (0-based) of a
// 1-based row.
func RowRange(sheet string, row, lastColumn int) string {
	r := strconv.Itoa(row)
	return sheet + "!A" + r + ":" + ColumnLetter(lastColumn) + r
}

// rangeTouchesHeader reports whether an A1 range starts at row 1, i.e. a
// write through it could change column names.
func rangeTouchesHeader(rng string) bool {
	if i := strings.IndexByte(rng, '!'); i >= 0 {
		rng = rng[i+1:]
	}
	cell, _, _ := strings.Cut(rng, ":")
	digits := strings.TrimLeft(cell, "ABCDEFGHIJKLMNOPQRSTUVWXYZ$")
	return digits == "1"
}
