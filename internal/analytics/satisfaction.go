package analytics

import (
	"sort"

	"github.com/godilite/cs-dashboard/internal/repository/models"
)

// ScoreDomain is the fixed set of answer values of a score question.
var ScoreDomain = []int{1, 2, 3, 4, 5}

type ScoreMean struct {
	Question string   `json:"question"`
	Mean     *float64 `json:"mean"`
}

type GroupMean struct {
	Group string  `json:"group"`
	Mean  float64 `json:"mean"`
}

type ScoreBucket struct {
	Score int `json:"score"`
	Count int `json:"count"`
}

type TrendPoint struct {
	Month string   `json:"month"`
	Label string   `json:"label"`
	Mean  *float64 `json:"mean"`
}

type mean struct {
	sum   float64
	count int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.count++
}

func (m mean) value() *float64 {
	if m.count == 0 {
		return nil
	}
	v := m.sum / float64(m.count)
	return &v
}

// ScoreMeans averages each score question over the tickets that answered it.
func ScoreMeans(table *models.Table, ids []string) []ScoreMean {
	out := make([]ScoreMean, len(ids))
	for i, id := range ids {
		var m mean
		if table != nil {
			for _, t := range table.Tickets {
				if v, ok := t.Score(id); ok {
					m.add(v)
				}
			}
		}
		out[i] = ScoreMean{Question: id, Mean: m.value()}
	}
	return out
}

// GroupedScoreMeans averages one score question per value of field. Tickets
// without a group are ignored, as are groups whose mean is missing or not
// positive. Groups are sorted by name.
func GroupedScoreMeans(table *models.Table, field models.Field, id string) []GroupMean {
	groups := make(map[string]*mean)
	if table != nil {
		for _, t := range table.Tickets {
			g := t.Category(field)
			if g == nil {
				continue
			}
			m, ok := groups[*g]
			if !ok {
				m = &mean{}
				groups[*g] = m
			}
			if v, ok := t.Score(id); ok {
				m.add(v)
			}
		}
	}

	out := make([]GroupMean, 0, len(groups))
	for g, m := range groups {
		v := m.value()
		if v == nil || *v <= 0 {
			continue
		}
		out = append(out, GroupMean{Group: g, Mean: *v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Group < out[j].Group })
	return out
}

// ScoreDistribution counts answers per score in ScoreDomain. Fractional
// answers are truncated; values outside the domain are dropped. The result
// always has one row per domain value.
func ScoreDistribution(table *models.Table, id string) []ScoreBucket {
	counts := make(map[int]int, len(ScoreDomain))
	if table != nil {
		for _, t := range table.Tickets {
			if v, ok := t.Score(id); ok {
				counts[int(v)]++
			}
		}
	}
	out := make([]ScoreBucket, len(ScoreDomain))
	for i, s := range ScoreDomain {
		out[i] = ScoreBucket{Score: s, Count: counts[s]}
	}
	return out
}

// MonthlyScoreTrend averages one score question per month, oldest first.
// Months without answers carry a nil mean.
func MonthlyScoreTrend(table *models.Table, id string) []TrendPoint {
	byMonth := make(map[string]*mean)
	if table != nil {
		for _, t := range table.Tickets {
			if t.Month == nil {
				continue
			}
			m, ok := byMonth[*t.Month]
			if !ok {
				m = &mean{}
				byMonth[*t.Month] = m
			}
			if v, ok := t.Score(id); ok {
				m.add(v)
			}
		}
	}

	ms := months(table)
	out := make([]TrendPoint, len(ms))
	for i, month := range ms {
		out[i] = TrendPoint{Month: month, Label: MonthLabel(month), Mean: byMonth[month].value()}
	}
	return out
}
