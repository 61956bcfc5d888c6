package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/godilite/cs-dashboard/internal/filter"
	"github.com/godilite/cs-dashboard/internal/repository/models"
)

// Unit selects the bucket size of a period trend.
type Unit string

const (
	UnitMonth Unit = "month"
	UnitWeek  Unit = "week"
)

// ParseUnit accepts the English unit names and the dashboard's Korean labels.
func ParseUnit(s string) (Unit, bool) {
	switch s {
	case "", "month", "monthly", "월간":
		return UnitMonth, true
	case "week", "weekly", "주간":
		return UnitWeek, true
	}
	return "", false
}

// PeriodCount is one bucket of a ticket-volume trend.
type PeriodCount struct {
	Period string `json:"period"`
	// Label is the two-digit month shown on the axis. For weekly buckets it is
	// blank unless the month differs from the previous bucket.
	Label string `json:"label"`
	Count int    `json:"count"`
}

// PeriodCounts counts tickets per calendar month or Monday-to-Sunday week,
// in chronological order. Tickets without a timestamp are not counted.
func PeriodCounts(table *models.Table, unit Unit) []PeriodCount {
	counts := make(map[string]int)
	if table != nil {
		for _, t := range table.Tickets {
			if t.FirstAskedAt == nil {
				continue
			}
			counts[periodKey(*t.FirstAskedAt, unit)]++
		}
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]PeriodCount, len(keys))
	prev := ""
	for i, k := range keys {
		month := k[5:7]
		label := month
		if unit == UnitWeek {
			if month == prev {
				label = ""
			}
			prev = month
		}
		out[i] = PeriodCount{Period: k, Label: label, Count: counts[k]}
	}
	return out
}

func periodKey(ts time.Time, unit Unit) string {
	if unit == UnitWeek {
		return weekKey(ts)
	}
	return ts.Format("2006-01")
}

// weekKey renders the Monday-to-Sunday week containing ts as
// "YYYY-MM-DD/YYYY-MM-DD".
func weekKey(ts time.Time) string {
	d := filter.CalendarDate(ts)
	offset := (int(d.Weekday()) + 6) % 7
	start := d.AddDate(0, 0, -offset)
	end := start.AddDate(0, 0, 6)
	return fmt.Sprintf("%s/%s", start.Format("2006-01-02"), end.Format("2006-01-02"))
}

// MonthLabel returns the two-digit month of a "YYYY-MM" key.
func MonthLabel(month string) string {
	if len(month) < 2 {
		return month
	}
	return month[len(month)-2:]
}

// months returns the distinct non-null months of the table, sorted.
func months(table *models.Table) []string {
	seen := make(map[string]struct{})
	var out []string
	if table == nil {
		return out
	}
	for _, t := range table.Tickets {
		if t.Month == nil {
			continue
		}
		if _, ok := seen[*t.Month]; ok {
			continue
		}
		seen[*t.Month] = struct{}{}
		out = append(out, *t.Month)
	}
	sort.Strings(out)
	return out
}
