// Package tableview file: internal/tableview/pipeline.go
package tableview

import "strings"

// Result is one rendered page of a view.
type Result struct {
	Rows []Row
	// Filtered is the searched, filtered and sorted set before pagination.
	Filtered  []Row
	Total     int
	PageCount int
	Page      Page
}

// Apply runs search, column filters, sort and pagination in that order.
// The input slice is never modified.
func Apply(rows []Row, cols []Column, st State) Result {
	page := st.Page.normalized()
	filtered := Filter(rows, cols, st.Search, st.Filters)
	total := len(filtered)

	if st.Sort != nil && st.Sort.Key != "" {
		sortRows(filtered, sortColumn(cols, st.Sort.Key), st.Sort.Direction)
	}

	return Result{
		Rows:      Paginate(filtered, page),
		Filtered:  filtered,
		Total:     total,
		PageCount: PageCount(total, page.Size),
		Page:      page,
	}
}

// Filter applies the global search term and then every non-empty column filter (AND).
// It always returns a fresh slice.
func Filter(rows []Row, cols []Column, search string, filters Filters) []Row {
	term := strings.ToLower(search)
	active := activeFilters(cols, filters)

	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if term != "" && !matchesSearch(r, cols, term) {
			continue
		}
		if !matchesFilters(r, active) {
			continue
		}
		out = append(out, r)
	}
	return out
}

type columnFilter struct {
	col    Column
	values map[string]struct{}
}

func activeFilters(cols []Column, filters Filters) []columnFilter {
	if len(filters) == 0 {
		return nil
	}
	out := make([]columnFilter, 0, len(filters))
	for key, values := range filters {
		if len(values) == 0 {
			continue
		}
		out = append(out, columnFilter{col: sortColumn(cols, key), values: values})
	}
	return out
}

func matchesSearch(r Row, cols []Column, term string) bool {
	for _, c := range cols {
		if strings.Contains(strings.ToLower(Stringify(c.Value(r))), term) {
			return true
		}
	}
	return false
}

func matchesFilters(r Row, active []columnFilter) bool {
	for _, f := range active {
		if _, ok := f.values[Stringify(f.col.Value(r))]; !ok {
			return false
		}
	}
	return true
}

// sortColumn finds the configured column for key, or a bare path column.
func sortColumn(cols []Column, key string) Column {
	for _, c := range cols {
		if c.Key == key {
			return c
		}
	}
	return NewColumn(key, key, TypeText)
}

// Paginate returns the slice of rows for page; an out-of-range page is empty.
func Paginate(rows []Row, page Page) []Row {
	page = page.normalized()
	// Compare page numbers before multiplying so a huge index cannot overflow.
	if len(rows) == 0 || page.Index-1 > (len(rows)-1)/page.Size {
		return []Row{}
	}
	start := (page.Index - 1) * page.Size
	end := len(rows)
	if page.Size < end-start {
		end = start + page.Size
	}
	return rows[start:end]
}

// PageCount is ceil(total/size); zero rows give zero pages.
func PageCount(total, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total <= 0 {
		return 0
	}
	return (total-1)/size + 1
}

// PageWindow lists at most show consecutive page numbers around current,
// shifted to stay within [1, pageCount].
func PageWindow(current, pageCount, show int) []int {
	if pageCount <= 0 || show <= 0 {
		return []int{}
	}
	current = min(max(current, 1), pageCount)
	start := current - show/2
	if start < 1 {
		start = 1
	}
	end := start + show - 1
	if end > pageCount {
		end = pageCount
	}
	if end-start+1 < show {
		start = end - show + 1
		if start < 1 {
			start = 1
		}
	}
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}
