package analytics

import (
	"strconv"
	"strings"

	"github.com/godilite/cs-dashboard/internal/repository/models"
)

// ParseHMS converts "H:M:S" into seconds. Anything other than three integer
// parts fails.
func ParseHMS(s string) (int, bool) {
	if strings.TrimSpace(s) == "" {
		return 0, false
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, false
	}
	var n [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, false
		}
		n[i] = v
	}
	return n[0]*3600 + n[1]*60 + n[2], true
}

// DurationRow holds the average minutes of each timing field for one month.
// A nil entry means the month had no parsable value for that field.
type DurationRow struct {
	Month   string                          `json:"month"`
	Label   string                          `json:"label"`
	Minutes map[models.DurationKind]*float64 `json:"minutes"`
}

// DurationPoint is one (month, kind, minutes) triple of the long format.
type DurationPoint struct {
	Month     string              `json:"month"`
	Label     string              `json:"label"`
	Kind      models.DurationKind `json:"kind"`
	KindLabel string              `json:"kind_label"`
	Minutes   *float64            `json:"minutes"`
}

// DurationAverages averages each timing field per month. Malformed values
// are skipped without affecting the rest of the month.
func DurationAverages(table *models.Table) []DurationRow {
	type acc struct {
		sum   float64
		count int
	}
	byMonth := make(map[string]map[models.DurationKind]*acc)
	if table != nil {
		for _, t := range table.Tickets {
			if t.Month == nil {
				continue
			}
			m, ok := byMonth[*t.Month]
			if !ok {
				m = make(map[models.DurationKind]*acc, len(models.DurationKinds))
				byMonth[*t.Month] = m
			}
			for _, k := range models.DurationKinds {
				raw, ok := t.Duration(k)
				if !ok {
					continue
				}
				secs, ok := ParseHMS(raw)
				if !ok {
					continue
				}
				a := m[k]
				if a == nil {
					a = &acc{}
					m[k] = a
				}
				a.sum += float64(secs)
				a.count++
			}
		}
	}

	ms := months(table)
	rows := make([]DurationRow, len(ms))
	for i, month := range ms {
		row := DurationRow{
			Month:   month,
			Label:   MonthLabel(month),
			Minutes: make(map[models.DurationKind]*float64, len(models.DurationKinds)),
		}
		for _, k := range models.DurationKinds {
			var minutes *float64
			if a := byMonth[month][k]; a != nil && a.count > 0 {
				v := a.sum / float64(a.count) / 60
				minutes = &v
			}
			row.Minutes[k] = minutes
		}
		rows[i] = row
	}
	return rows
}

// Long reshapes monthly rows into triples, kinds in chart order within each
// month. labels maps each kind to its display name.
func Long(rows []DurationRow, labels map[models.DurationKind]string) []DurationPoint {
	out := make([]DurationPoint, 0, len(rows)*len(models.DurationKinds))
	for _, r := range rows {
		for _, k := range models.DurationKinds {
			name := labels[k]
			if name == "" {
				name = string(k)
			}
			out = append(out, DurationPoint{
				Month:     r.Month,
				Label:     r.Label,
				Kind:      k,
				KindLabel: name,
				Minutes:   r.Minutes[k],
			})
		}
	}
	return out
}
