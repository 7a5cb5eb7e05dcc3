// Package tableview file: internal/tableview/state.go
package tableview

import "sort"

// DefaultPageSize is used when a page size is missing or not positive.
const DefaultPageSize = 10

// Filters maps a column key to its set of accepted stringified values.
type Filters map[string]map[string]struct{}

// NewValueSet builds a value set from a list.
func NewValueSet(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// Values returns the accepted values for key, sorted.
func (f Filters) Values(key string) []string {
	set := f[key]
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Active counts the accepted values across all columns.
func (f Filters) Active() int {
	n := 0
	for _, set := range f {
		n += len(set)
	}
	return n
}

// Page is the 1-based page index and page size.
type Page struct {
	Index int `json:"page"`
	Size  int `json:"size"`
}

func (p Page) normalized() Page {
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Index < 1 {
		p.Index = 1
	}
	return p
}

// State is the per-view search, filter, sort and pagination state.
type State struct {
	Search  string
	Filters Filters
	Sort    *Sort
	Page    Page
}

// NewState returns the empty state a view starts with.
func NewState(pageSize int) *State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &State{Filters: Filters{}, Page: Page{Index: 1, Size: pageSize}}
}

// SetSearch replaces the global search term and goes back to the first page.
func (s *State) SetSearch(term string) {
	s.Search = term
	s.Page.Index = 1
}

// SetFilter commits the accepted set for key; an empty set removes the filter.
func (s *State) SetFilter(key string, values map[string]struct{}) {
	if s.Filters == nil {
		s.Filters = Filters{}
	}
	if len(values) == 0 {
		delete(s.Filters, key)
	} else {
		cp := make(map[string]struct{}, len(values))
		for v := range values {
			cp[v] = struct{}{}
		}
		s.Filters[key] = cp
	}
	s.Page.Index = 1
}

// ToggleSort applies ToggleSort on key. Sorting resets the page like filtering does.
func (s *State) ToggleSort(key string) {
	s.Sort = ToggleSort(s.Sort, key)
	s.Page.Index = 1
}

// SetSort sets or clears the sort directly.
func (s *State) SetSort(sort *Sort) {
	s.Sort = sort
	s.Page.Index = 1
}

// SetPage moves to page index.
func (s *State) SetPage(index int) {
	if index < 1 {
		index = 1
	}
	s.Page.Index = index
}

// SetPageSize changes the page size and returns to page 1.
func (s *State) SetPageSize(size int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	s.Page.Size = size
	s.Page.Index = 1
}

// ClearFilters resets search, filters, sort and page. The data store is left alone.
func (s *State) ClearFilters() {
	s.Search = ""
	s.Filters = Filters{}
	s.Sort = nil
	s.Page.Index = 1
}
