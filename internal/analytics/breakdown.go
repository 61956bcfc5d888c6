package analytics

import (
	"fmt"

	"github.com/godilite/cs-dashboard/internal/filter"
	"github.com/godilite/cs-dashboard/internal/repository/models"
)

// OtherBucket names the slice that sums everything outside the top n.
const OtherBucket = "기타"

// DefaultTopN is the number of named slices in a breakdown.
const DefaultTopN = 5

// BreakdownSlice is one segment of a categorical share chart.
type BreakdownSlice struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
	Label   string  `json:"label"`
}

// TopBreakdown keeps the n most frequent values of field and folds the rest
// into OtherBucket. Null values are not counted.
func TopBreakdown(table *models.Table, field models.Field, n int) []BreakdownSlice {
	if n <= 0 {
		n = DefaultTopN
	}
	counts := filter.OptionCounts(table, field)
	if len(counts) == 0 {
		return nil
	}

	slices := make([]BreakdownSlice, 0, n+1)
	for i, c := range counts {
		if i == n {
			break
		}
		slices = append(slices, BreakdownSlice{Name: c.Value, Count: c.Count})
	}
	if len(counts) > n {
		rest := 0
		for _, c := range counts[n:] {
			rest += c.Count
		}
		slices = append(slices, BreakdownSlice{Name: OtherBucket, Count: rest})
	}

	total := 0
	for _, s := range slices {
		total += s.Count
	}
	for i := range slices {
		slices[i].Percent = float64(slices[i].Count) / float64(total) * 100
		slices[i].Label = fmt.Sprintf("%s (%.1f%%)", slices[i].Name, slices[i].Percent)
	}
	return slices
}
