// Package tableview file: internal/tableview/summary.go
package tableview

// AggregateOp is how a summary figure folds the filtered rows.
type AggregateOp string

const (
	OpCount    AggregateOp = "count"
	OpDistinct AggregateOp = "distinct"
	OpSum      AggregateOp = "sum"
	OpAvg      AggregateOp = "avg"
	// OpRatio divides the sum of Value by the sum of Weight.
	OpRatio AggregateOp = "ratio"
)

// Valid reports whether op is a known operation.
func (op AggregateOp) Valid() bool {
	switch op {
	case OpCount, OpDistinct, OpSum, OpAvg, OpRatio:
		return true
	}
	return false
}

// Aggregate is one named summary figure of a view.
type Aggregate struct {
	Name   string
	Op     AggregateOp
	Value  Column
	Weight Column
}

// Summarize computes every aggregate over rows, usually the filtered set before
// pagination. Non-numeric values count as zero; empty inputs give zero, never NaN.
func Summarize(rows []Row, aggs []Aggregate) map[string]float64 {
	stats := make(map[string]float64, len(aggs))
	for _, agg := range aggs {
		stats[agg.Name] = summarize(rows, agg)
	}
	return stats
}

func summarize(rows []Row, agg Aggregate) float64 {
	switch agg.Op {
	case OpCount:
		return float64(len(rows))
	case OpDistinct:
		seen := make(map[string]struct{}, len(rows))
		for _, r := range rows {
			if v := agg.Value.Value(r); v != nil {
				seen[Stringify(v)] = struct{}{}
			}
		}
		return float64(len(seen))
	case OpSum:
		return sumOf(rows, agg.Value)
	case OpAvg:
		if len(rows) == 0 {
			return 0
		}
		return sumOf(rows, agg.Value) / float64(len(rows))
	case OpRatio:
		weight := sumOf(rows, agg.Weight)
		if weight == 0 {
			return 0
		}
		return sumOf(rows, agg.Value) / weight
	}
	return 0
}

func sumOf(rows []Row, col Column) float64 {
	var total float64
	for _, r := range rows {
		if n, ok := toNumber(col.Value(r)); ok {
			total += n
		}
	}
	return total
}
