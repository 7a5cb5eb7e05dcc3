// Package tableview file: internal/tableview/column.go
package tableview

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Row is one JSON-shaped record. Nested objects are map[string]any, arrays []any.
type Row = map[string]any

// ColumnType governs cell rendering only; filtering always compares stringified values.
type ColumnType string

const (
	TypeText       ColumnType = "text"
	TypeNumber     ColumnType = "number"
	TypeDate       ColumnType = "date"
	TypeCurrency   ColumnType = "currency"
	TypePercentage ColumnType = "percentage"
	TypeQuantity   ColumnType = "quantity"
)

// Valid reports whether t is one of the known column types.
func (t ColumnType) Valid() bool {
	switch t {
	case TypeText, TypeNumber, TypeDate, TypeCurrency, TypePercentage, TypeQuantity:
		return true
	}
	return false
}

// Accessor extracts a column value from a row. A missing path yields nil.
type Accessor func(Row) any

// Column describes how one field is extracted, labelled and rendered.
type Column struct {
	Key      string
	Label    string
	Type     ColumnType
	Accessor Accessor
}

// NewColumn builds a column whose accessor is compiled once from the dot-path key.
func NewColumn(key, label string, typ ColumnType) Column {
	if !typ.Valid() {
		typ = TypeText
	}
	return Column{Key: key, Label: label, Type: typ, Accessor: PathAccessor(key)}
}

// WithAccessor returns a copy of c using fn instead of the dot-path accessor.
func (c Column) WithAccessor(fn Accessor) Column {
	c.Accessor = fn
	return c
}

// Value resolves the column for row, falling back to the dot-path when no accessor is set.
func (c Column) Value(row Row) any {
	if c.Accessor == nil {
		return Resolve(row, c.Key)
	}
	return c.Accessor(row)
}

// PathAccessor splits the dot-path once and returns a closure walking nested maps.
func PathAccessor(path string) Accessor {
	parts := strings.Split(path, ".")
	return func(row Row) any {
		return walk(row, parts)
	}
}

// Resolve walks a dot-path like "zone.nom". Missing or nil intermediates yield nil.
func Resolve(row Row, path string) any {
	if path == "" {
		return nil
	}
	return walk(row, strings.Split(path, "."))
}

func walk(row Row, parts []string) any {
	var cur any = row
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok || m == nil {
			return nil
		}
		cur, ok = m[p]
		if !ok {
			return nil
		}
	}
	return cur
}

// Stringify renders a value the way table cells and filters compare it: nil is "".
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case json.Number:
		return x.String()
	case time.Time:
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	default:
		return fmt.Sprint(x)
	}
}

func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// toNumber reports whether v is numeric and returns it as float64.
func toNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}

// RowsFrom converts any JSON-encodable value (typically a slice of structs) into rows.
func RowsFrom(v any) ([]Row, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode rows: %w", err)
	}
	var rows []Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	if rows == nil {
		rows = []Row{}
	}
	return rows, nil
}
