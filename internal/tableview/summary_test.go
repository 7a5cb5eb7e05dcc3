// file: internal/tableview/summary_test.go

package tableview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	rows := []Row{
		{"bc": "BC1", "qte": 2.0, "montant": 200.0, "taux": 0.5},
		{"bc": "BC1", "qte": 3.0, "montant": 150.0, "taux": nil},
		{"bc": "BC2", "qte": 5.0, "montant": 650.0, "taux": 1.0},
	}
	bc := NewColumn("bc", "BC", TypeText)
	qte := NewColumn("qte", "Qté", TypeQuantity)
	montant := NewColumn("montant", "Montant", TypeCurrency)
	taux := NewColumn("taux", "Taux", TypePercentage)
	aggs := []Aggregate{
		{Name: "lines", Op: OpCount},
		{Name: "bcs", Op: OpDistinct, Value: bc},
		{Name: "total", Op: OpSum, Value: montant},
		{Name: "avg_taux", Op: OpAvg, Value: taux},
		{Name: "avg_price", Op: OpRatio, Value: montant, Weight: qte},
	}

	stats := Summarize(rows, aggs)
	assert.Equal(t, 3.0, stats["lines"])
	assert.Equal(t, 2.0, stats["bcs"])
	assert.Equal(t, 1000.0, stats["total"])
	assert.InDelta(t, 0.5, stats["avg_taux"], 1e-9, "a nil value counts as zero")
	assert.InDelta(t, 100.0, stats["avg_price"], 1e-9)

	t.Run("empty rows give zeros", func(t *testing.T) {
		empty := Summarize(nil, aggs)
		assert.Len(t, empty, len(aggs))
		for name, v := range empty {
			assert.Zero(t, v, name)
		}
	})

	t.Run("unknown op", func(t *testing.T) {
		assert.False(t, AggregateOp("median").Valid())
		assert.Zero(t, Summarize(rows, []Aggregate{{Name: "x", Op: "median"}})["x"])
	})
}
