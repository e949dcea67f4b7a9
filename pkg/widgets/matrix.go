package widgets

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Matrix is a pivot table ready for rendering. The first query row is the
// header; the first cell of every data row is that row's label.
type Matrix struct {
	Headers []string
	Rows    []MatrixRow
}

type MatrixRow struct {
	ID    string
	Cells []Cell
}

type Cell struct {
	ID          string
	Value       any
	Formatted   string
	IsHeader    bool
	Label       string
	RowValue    any
	ColumnValue string
	Highlighted bool
}

// Empty reports whether there is nothing to draw.
func (m Matrix) Empty() bool { return len(m.Headers) == 0 }

// BuildMatrix shapes raw matrix data. Numeric data cells whose value is at or
// above threshold are highlighted; a nil or zero threshold highlights nothing.
func BuildMatrix(data [][]any, threshold *float64) Matrix {
	if len(data) == 0 {
		return Matrix{}
	}
	headers := make([]string, len(data[0]))
	for j, h := range data[0] {
		if h != nil {
			headers[j] = fmt.Sprint(h)
		}
	}

	m := Matrix{Headers: headers, Rows: make([]MatrixRow, 0, len(data)-1)}
	for i := 1; i < len(data); i++ {
		row := data[i]
		var rowValue any
		if len(row) > 0 {
			rowValue = row[0]
		}
		cells := make([]Cell, 0, len(row))
		for j, v := range row {
			c := Cell{
				ID:        "cell-" + strconv.Itoa(i) + "-" + strconv.Itoa(j),
				Value:     v,
				IsHeader:  j == 0,
				Formatted: formatCell(v, j == 0),
				RowValue:  rowValue,
				Label:     "Row Header",
			}
			if !c.IsHeader {
				if j < len(headers) {
					c.Label = headers[j]
					c.ColumnValue = headers[j]
				} else {
					c.Label = ""
				}
				if f, ok := toFloat(v); ok && threshold != nil && *threshold != 0 && f >= *threshold {
					c.Highlighted = true
				}
			}
			cells = append(cells, c)
		}
		m.Rows = append(m.Rows, MatrixRow{ID: "row-" + strconv.Itoa(i), Cells: cells})
	}
	return m
}

func formatCell(v any, header bool) string {
	if v == nil {
		return ""
	}
	if header {
		return fmt.Sprint(v)
	}
	return FormatValue(v)
}

// FormatValue renders numbers with thousands separators: whole numbers
// without decimals, everything else with two. Non-numbers print as-is and
// nil prints as "".
func FormatValue(v any) string {
	if v == nil {
		return ""
	}
	f, ok := toFloat(v)
	if !ok {
		return fmt.Sprint(v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	if f == math.Trunc(f) {
		return groupThousands(strconv.FormatFloat(f, 'f', 0, 64))
	}
	return groupThousands(strconv.FormatFloat(f, 'f', 2, 64))
}

func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + frac
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}
