// file: internal/tableview/filter_widget_test.go

package tableview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func familleRows() []Row {
	return []Row{
		{"famille": "B"},
		{"famille": "A"},
		{"famille": nil},
		{"famille": "C"},
		{"famille": "A"},
		{"famille": 12.0},
	}
}

func TestCandidates_DedupedSortedWithoutNil(t *testing.T) {
	col := NewColumn("famille", "Famille", TypeText)
	assert.Equal(t, []string{"12", "A", "B", "C"}, Candidates(familleRows(), col))
	assert.Equal(t, []string{}, Candidates(nil, col))
}

func TestNarrowCandidates(t *testing.T) {
	cands := []string{"Casablanca", "Rabat", "casa-port"}
	assert.Equal(t, []string{"Casablanca", "casa-port"}, NarrowCandidates(cands, "CASA"))
	assert.Equal(t, cands, NarrowCandidates(cands, ""))
	assert.Empty(t, NarrowCandidates(cands, "zzz"))
}

func TestFilterWidget_CandidatesIgnoreOtherFilters(t *testing.T) {
	rows := []Row{
		{"famille": "A", "zone": "Nord"},
		{"famille": "B", "zone": "Sud"},
	}
	cols := []Column{NewColumn("famille", "Famille", TypeText), NewColumn("zone", "Zone", TypeText)}
	st := NewState(10)
	st.SetFilter("famille", NewValueSet("A"))

	visible := Apply(rows, cols, *st)
	require.Len(t, visible.Rows, 1)

	w := NewFilterWidget(cols[1], rows, st.Filters["zone"])
	assert.Equal(t, []string{"Nord", "Sud"}, w.Candidates())
}

func TestFilterWidget_ApplyCommitsAndResetsPage(t *testing.T) {
	col := NewColumn("famille", "Famille", TypeText)
	st := NewState(10)
	st.SetPage(3)

	w := NewFilterWidget(col, familleRows(), st.Filters["famille"])
	w.Toggle("A")
	w.Toggle("C")
	assert.Empty(t, st.Filters["famille"], "staging must not touch the committed state")
	assert.Equal(t, 3, st.Page.Index)

	w.Apply(st)
	assert.Equal(t, []string{"A", "C"}, st.Filters.Values("famille"))
	assert.Equal(t, 1, st.Page.Index)

	w.Toggle("B")
	assert.Equal(t, []string{"A", "C"}, st.Filters.Values("famille"), "committed set is a copy")
}

func TestFilterWidget_CancelRestoresCommitted(t *testing.T) {
	col := NewColumn("famille", "Famille", TypeText)
	st := NewState(10)
	st.SetFilter("famille", NewValueSet("A"))

	w := NewFilterWidget(col, familleRows(), st.Filters["famille"])
	assert.Equal(t, []string{"A"}, w.Staged())

	w.Toggle("A")
	w.Toggle("B")
	w.SetSearch("b")
	assert.Equal(t, []string{"B"}, w.Staged())
	assert.Equal(t, []string{"B"}, w.Visible())

	w.Cancel()
	assert.Equal(t, []string{"A"}, w.Staged())
	assert.Equal(t, []string{"12", "A", "B", "C"}, w.Visible())
	assert.Equal(t, []string{"A"}, st.Filters.Values("famille"))
}

func TestFilterWidget_ClearRemovesFilter(t *testing.T) {
	col := NewColumn("famille", "Famille", TypeText)
	st := NewState(10)
	st.SetFilter("famille", NewValueSet("A", "B"))
	st.SetPage(2)

	w := NewFilterWidget(col, familleRows(), st.Filters["famille"])
	w.Clear(st)
	_, present := st.Filters["famille"]
	assert.False(t, present)
	assert.Equal(t, 1, st.Page.Index)
	assert.Empty(t, w.Staged())
}

func TestFilterWidget_ApplyEmptySelectionRemovesFilter(t *testing.T) {
	col := NewColumn("famille", "Famille", TypeText)
	st := NewState(10)
	st.SetFilter("famille", NewValueSet("A"))

	w := NewFilterWidget(col, familleRows(), st.Filters["famille"])
	w.Toggle("A")
	w.Apply(st)
	assert.Equal(t, 0, st.Filters.Active())
}

func TestFilterWidget_ToggleAll(t *testing.T) {
	col := NewColumn("famille", "Famille", TypeText)
	w := NewFilterWidget(col, familleRows(), nil)

	assert.False(t, w.AllSelected())
	w.ToggleAll()
	assert.True(t, w.AllSelected())
	assert.Equal(t, []string{"12", "A", "B", "C"}, w.Staged())

	w.ToggleAll()
	assert.False(t, w.AllSelected())
	assert.Empty(t, w.Staged())
}

func TestFilterWidget_EmptyColumn(t *testing.T) {
	col := NewColumn("missing", "Missing", TypeText)
	w := NewFilterWidget(col, familleRows(), nil)
	assert.Empty(t, w.Candidates())
	assert.False(t, w.AllSelected())
}

func TestFilterWidget_ApplyTwiceIsIdempotent(t *testing.T) {
	rows := familleRows()
	cols := []Column{NewColumn("famille", "Famille", TypeText)}
	st := NewState(10)

	w := NewFilterWidget(cols[0], rows, st.Filters["famille"])
	w.Toggle("A")
	w.Toggle("12")
	w.Apply(st)
	once := Apply(rows, cols, *st)
	filtersOnce := st.Filters.Values("famille")

	w.Apply(st)
	twice := Apply(rows, cols, *st)

	assert.Equal(t, filtersOnce, st.Filters.Values("famille"))
	assert.Equal(t, once, twice)
	assert.Equal(t, 3, twice.Total)

	again := NewFilterWidget(cols[0], rows, st.Filters["famille"])
	again.Apply(st)
	assert.Equal(t, once, Apply(rows, cols, *st), "reopening and applying the committed set changes nothing")
}
