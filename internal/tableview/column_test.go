// file: internal/tableview/column_test.go

package tableview

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	row := Row{
		"bc_num": "BC-1",
		"zone":   Row{"nom": "Nord", "code": nil},
		"tags":   []any{"a", "b"},
	}
	assert.Equal(t, "BC-1", Resolve(row, "bc_num"))
	assert.Equal(t, "Nord", Resolve(row, "zone.nom"))
	assert.Nil(t, Resolve(row, "zone.code"))
	assert.Nil(t, Resolve(row, "zone.code.deeper"))
	assert.Nil(t, Resolve(row, "site.nom"))
	assert.Nil(t, Resolve(row, "tags.0"))
	assert.Nil(t, Resolve(row, ""))
	assert.Nil(t, Resolve(nil, "zone"))
}

func TestColumn_AccessorOverridesPath(t *testing.T) {
	col := NewColumn("montant", "Montant", TypeCurrency).WithAccessor(func(r Row) any {
		q, _ := toNumber(r["qte"])
		p, _ := toNumber(Resolve(r, "prestation.prix"))
		return q * p
	})
	row := Row{"qte": 3.0, "prestation": Row{"prix": 2.5}}
	assert.Equal(t, 7.5, col.Value(row))

	bare := Column{Key: "qte"}
	assert.Equal(t, 3.0, bare.Value(row))
}

func TestNewColumn_UnknownTypeFallsBackToText(t *testing.T) {
	assert.Equal(t, TypeText, NewColumn("x", "X", ColumnType("money")).Type)
	assert.True(t, TypePercentage.Valid())
	assert.False(t, ColumnType("").Valid())
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "12", Stringify(12.0))
	assert.Equal(t, "0.125", Stringify(0.125))
	assert.Equal(t, "42", Stringify(42))
	assert.Equal(t, "true", Stringify(true))
	assert.Equal(t, "7", Stringify(json.Number("7")))
	assert.Equal(t, `{"a":1}`, Stringify(map[string]any{"a": 1}))
}

type sampleRecord struct {
	ID   int64   `json:"id"`
	Name string  `json:"name"`
	Prix float64 `json:"prix"`
	Zone *struct {
		Nom string `json:"nom"`
	} `json:"zone"`
}

func TestRowsFrom(t *testing.T) {
	rows, err := RowsFrom([]sampleRecord{{ID: 1, Name: "x", Prix: 1.5}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, float64(1), rows[0]["id"])
	assert.Nil(t, rows[0]["zone"])
	assert.Nil(t, Resolve(rows[0], "zone.nom"))

	empty, err := RowsFrom([]sampleRecord(nil))
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
