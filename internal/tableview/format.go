// Package tableview file: internal/tableview/format.go
package tableview

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EmptyText is rendered for missing values so that gaps stay visible.
const EmptyText = "-"

// CurrencySuffix is appended to currency cells.
const CurrencySuffix = "DH"

// Tone is a presentation hint; it never changes the data.
type Tone string

const (
	ToneNone     Tone = ""
	ToneNeutral  Tone = "neutral"
	ToneLow      Tone = "low"
	ToneMedium   Tone = "medium"
	ToneHigh     Tone = "high"
	ToneZero     Tone = "zero"
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
)

// Cell is a formatted value.
type Cell struct {
	Text  string `json:"text"`
	Tone  Tone   `json:"tone,omitempty"`
	Empty bool   `json:"empty,omitempty"`
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatCell renders value for a column type. Failures fall back to the raw text.
func FormatCell(value any, typ ColumnType) Cell {
	if value == nil {
		return Cell{Text: EmptyText, Empty: true}
	}
	if s, ok := value.(string); ok && s == "" {
		return Cell{Text: EmptyText, Empty: true}
	}

	switch typ {
	case TypeDate:
		return Cell{Text: formatDate(value)}
	case TypeCurrency:
		if n, ok := numeric(value); ok {
			return Cell{Text: fmt.Sprintf("%.2f %s", n, CurrencySuffix)}
		}
	case TypePercentage:
		if n, ok := numeric(value); ok {
			return formatPercentage(n)
		}
	case TypeQuantity, TypeNumber:
		if n, ok := numeric(value); ok {
			return Cell{Text: Stringify(value), Tone: signTone(n)}
		}
	}
	return Cell{Text: Stringify(value)}
}

// FormatRow renders every column of row.
func FormatRow(row Row, cols []Column) map[string]Cell {
	cells := make(map[string]Cell, len(cols))
	for _, c := range cols {
		cells[c.Key] = FormatCell(c.Value(row), c.Type)
	}
	return cells
}

func formatDate(value any) string {
	if n, ok := toNumber(value); ok {
		return time.UnixMilli(int64(n)).UTC().Format("02/01/2006")
	}
	if t, ok := value.(time.Time); ok {
		return t.Format("02/01/2006")
	}
	raw := Stringify(value)
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return raw
}

func formatPercentage(n float64) Cell {
	fraction := n
	if n > 1 || n < -1 {
		fraction = n / 100
	}
	text := strconv.FormatFloat(fraction*100, 'f', 1, 64) + "%"

	tone := ToneLow
	switch {
	case fraction == 0:
		tone = ToneNeutral
	case fraction >= 0.8:
		tone = ToneHigh
	case fraction >= 0.5:
		tone = ToneMedium
	}
	return Cell{Text: text, Tone: tone}
}

func signTone(n float64) Tone {
	switch {
	case n > 0:
		return TonePositive
	case n < 0:
		return ToneNegative
	}
	return ToneZero
}

// numeric accepts numbers and numeric strings.
func numeric(v any) (float64, bool) {
	if n, ok := toNumber(v); ok {
		return n, true
	}
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	return 0, false
}
