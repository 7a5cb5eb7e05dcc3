// Package tableview file: internal/tableview/filter_widget.go
package tableview

import (
	"sort"
	"strings"
)

// Candidates lists the distinct stringified values of col across rows, nil dropped,
// sorted ascending. Callers pass the unfiltered store so column filters stay independent.
func Candidates(rows []Row, col Column) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range rows {
		v := col.Value(r)
		if v == nil {
			continue
		}
		s := Stringify(v)
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// NarrowCandidates keeps the candidates containing term, case-insensitively.
func NarrowCandidates(candidates []string, term string) []string {
	if term == "" {
		return candidates
	}
	term = strings.ToLower(term)
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c), term) {
			out = append(out, c)
		}
	}
	return out
}

// FilterWidget stages a multi-select over one column's candidates.
// Nothing reaches the view state until Apply or Clear.
type FilterWidget struct {
	column     Column
	candidates []string
	committed  map[string]struct{}
	staged     map[string]struct{}
	search     string
}

// NewFilterWidget opens a widget for col over the unfiltered rows with the currently
// committed value set.
func NewFilterWidget(col Column, rows []Row, committed map[string]struct{}) *FilterWidget {
	w := &FilterWidget{
		column:     col,
		candidates: Candidates(rows, col),
		committed:  copySet(committed),
	}
	w.staged = copySet(w.committed)
	return w
}

// Column returns the column this widget filters.
func (w *FilterWidget) Column() Column { return w.column }

// Candidates returns every candidate value.
func (w *FilterWidget) Candidates() []string { return w.candidates }

// SetSearch narrows the displayed candidates; selection is unaffected.
func (w *FilterWidget) SetSearch(term string) { w.search = term }

// Visible returns the candidates matching the local search.
func (w *FilterWidget) Visible() []string {
	return NarrowCandidates(w.candidates, w.search)
}

// Toggle flips one value in the staged selection.
func (w *FilterWidget) Toggle(value string) {
	if _, ok := w.staged[value]; ok {
		delete(w.staged, value)
		return
	}
	w.staged[value] = struct{}{}
}

// AllSelected reports whether every candidate is staged.
func (w *FilterWidget) AllSelected() bool {
	if len(w.candidates) == 0 {
		return false
	}
	for _, c := range w.candidates {
		if _, ok := w.staged[c]; !ok {
			return false
		}
	}
	return true
}

// ToggleAll selects every candidate, or none when all are already selected.
func (w *FilterWidget) ToggleAll() {
	if w.AllSelected() {
		w.staged = make(map[string]struct{})
		return
	}
	w.staged = NewValueSet(w.candidates...)
}

// Staged returns the staged selection, sorted.
func (w *FilterWidget) Staged() []string {
	out := make([]string, 0, len(w.staged))
	for v := range w.staged {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Apply commits the staged selection into st and resets st to page 1.
func (w *FilterWidget) Apply(st *State) {
	st.SetFilter(w.column.Key, w.staged)
	w.committed = copySet(w.staged)
}

// Cancel discards staged changes.
func (w *FilterWidget) Cancel() {
	w.staged = copySet(w.committed)
	w.search = ""
}

// Clear commits an empty selection and discards staging.
func (w *FilterWidget) Clear(st *State) {
	st.SetFilter(w.column.Key, nil)
	w.committed = make(map[string]struct{})
	w.staged = make(map[string]struct{})
	w.search = ""
}

func copySet(in map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for v := range in {
		out[v] = struct{}{}
	}
	return out
}
