// file: internal/tableview/format_test.go

package tableview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatCell(t *testing.T) {
	testCases := []struct {
		name  string
		value any
		typ   ColumnType
		want  Cell
	}{
		{"nil is placeholder", nil, TypeText, Cell{Text: "-", Empty: true}},
		{"empty string is placeholder", "", TypeCurrency, Cell{Text: "-", Empty: true}},
		{"text", "BC-2024-01", TypeText, Cell{Text: "BC-2024-01"}},
		{"currency", 1234.5, TypeCurrency, Cell{Text: "1234.50 DH"}},
		{"currency from string", "99", TypeCurrency, Cell{Text: "99.00 DH"}},
		{"currency not numeric", "n/a", TypeCurrency, Cell{Text: "n/a"}},
		{"percentage high", 0.85, TypePercentage, Cell{Text: "85.0%", Tone: ToneHigh}},
		{"percentage medium", 0.5, TypePercentage, Cell{Text: "50.0%", Tone: ToneMedium}},
		{"percentage low", 0.1234, TypePercentage, Cell{Text: "12.3%", Tone: ToneLow}},
		{"percentage zero", 0.0, TypePercentage, Cell{Text: "0.0%", Tone: ToneNeutral}},
		{"percentage already scaled", 72.0, TypePercentage, Cell{Text: "72.0%", Tone: ToneMedium}},
		{"quantity positive", 3.0, TypeQuantity, Cell{Text: "3", Tone: TonePositive}},
		{"quantity negative", -2.5, TypeQuantity, Cell{Text: "-2.5", Tone: ToneNegative}},
		{"quantity zero", 0, TypeQuantity, Cell{Text: "0", Tone: ToneZero}},
		{"date iso", "2024-03-15T10:20:00Z", TypeDate, Cell{Text: "15/03/2024"}},
		{"date only", "2024-03-15", TypeDate, Cell{Text: "15/03/2024"}},
		{"date sql", "2024-03-15 08:00:00", TypeDate, Cell{Text: "15/03/2024"}},
		{"date epoch millis", 1710460800000.0, TypeDate, Cell{Text: "15/03/2024"}},
		{"date time value", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), TypeDate, Cell{Text: "15/03/2024"}},
		{"date unparseable", "bientôt", TypeDate, Cell{Text: "bientôt"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatCell(tc.value, tc.typ))
		})
	}
}

func TestFormatRow(t *testing.T) {
	row := Row{"prestation": Row{"service": Row{"prix": 10.0}}, "qte": 2.0}
	cols := []Column{
		NewColumn("prestation.service.prix", "Prix", TypeCurrency),
		NewColumn("qte", "Qté", TypeQuantity),
		NewColumn("zone.nom", "Zone", TypeText),
	}
	cells := FormatRow(row, cols)
	assert.Equal(t, "10.00 DH", cells["prestation.service.prix"].Text)
	assert.Equal(t, TonePositive, cells["qte"].Tone)
	assert.True(t, cells["zone.nom"].Empty)
}
