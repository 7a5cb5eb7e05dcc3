// Package tableview file: internal/tableview/sort.go
package tableview

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Direction is the sort direction of the single active sort key.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection maps user input to a Direction, defaulting to Asc.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// Sort is the active column-key/direction pair. A nil *Sort keeps upstream order.
type Sort struct {
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
}

// ToggleSort cycles unset -> asc -> desc -> unset on the same key;
// a different key always starts ascending.
func ToggleSort(current *Sort, key string) *Sort {
	if current == nil || current.Key != key {
		return &Sort{Key: key, Direction: Asc}
	}
	if current.Direction == Asc {
		return &Sort{Key: key, Direction: Desc}
	}
	return nil
}

// sortLanguage drives locale-aware string comparison.
var sortLanguage = language.French

type sortItem struct {
	row Row
	val any
	num float64
	isN bool
	str string
}

// sortRows stable-sorts rows in place by col. nil values stay last in both directions.
func sortRows(rows []Row, col Column, dir Direction) {
	if len(rows) < 2 {
		return
	}
	items := make([]sortItem, len(rows))
	for i, r := range rows {
		v := col.Value(r)
		it := sortItem{row: r, val: v}
		if v != nil {
			it.num, it.isN = toNumber(v)
			it.str = strings.ToLower(Stringify(v))
		}
		items[i] = it
	}

	// collate.Collator keeps internal buffers and is not safe for concurrent use.
	coll := collate.New(sortLanguage)
	sign := 1
	if dir == Desc {
		sign = -1
	}

	sort.SliceStable(items, func(i, j int) bool {
		return compareItems(coll, items[i], items[j], sign) < 0
	})
	for i := range items {
		rows[i] = items[i].row
	}
}

func compareItems(coll *collate.Collator, a, b sortItem, sign int) int {
	switch {
	case a.val == nil && b.val == nil:
		return 0
	case a.val == nil:
		return 1
	case b.val == nil:
		return -1
	}
	if a.isN && b.isN {
		switch {
		case a.num < b.num:
			return -sign
		case a.num > b.num:
			return sign
		}
		return 0
	}
	return sign * coll.CompareString(a.str, b.str)
}
