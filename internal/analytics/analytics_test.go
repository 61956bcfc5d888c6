package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godilite/cs-dashboard/internal/repository/models"
)

func str(s string) *string {
	return &s
}

func ticket(day string, opts ...func(*models.Ticket)) *models.Ticket {
	t := &models.Ticket{Durations: map[models.DurationKind]string{}}
	if day != "" {
		ts, err := time.Parse("2006-01-02", day)
		if err != nil {
			panic(err)
		}
		month := ts.Format("2006-01")
		t.FirstAskedAt = &ts
		t.Month = &month
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

func customer(v string) func(*models.Ticket) {
	return func(t *models.Ticket) { t.CustomerType = str(v) }
}

func waiting(v string) func(*models.Ticket) {
	return func(t *models.Ticket) { t.Durations[models.DurationWaiting] = v }
}

func answers(kv map[string]any) func(*models.Ticket) {
	return func(t *models.Ticket) { t.Satisfaction = kv }
}

func TestParseHMS(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"00:05:00", 300, true},
		{"01:02:03", 3723, true},
		{" 0: 1: 2 ", 62, true},
		{"100:00:00", 360000, true},
		{"05:00", 0, false},
		{"1:2:3:4", 0, false},
		{"aa:bb:cc", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseHMS(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPeriodCounts(t *testing.T) {
	table := models.NewTable([]*models.Ticket{
		ticket("2024-03-30"),
		ticket("2024-04-01"),
		ticket("2024-04-02"),
		ticket("2024-04-15"),
		ticket("2024-05-01"),
		ticket(""),
	})

	t.Run("monthly", func(t *testing.T) {
		got := PeriodCounts(table, UnitMonth)
		assert.Equal(t, []PeriodCount{
			{Period: "2024-03", Label: "03", Count: 1},
			{Period: "2024-04", Label: "04", Count: 3},
			{Period: "2024-05", Label: "05", Count: 1},
		}, got)
	})

	t.Run("weekly buckets start on monday", func(t *testing.T) {
		got := PeriodCounts(table, UnitWeek)
		require.Len(t, got, 4)
		assert.Equal(t, PeriodCount{Period: "2024-03-25/2024-03-31", Label: "03", Count: 1}, got[0])
		assert.Equal(t, PeriodCount{Period: "2024-04-01/2024-04-07", Label: "04", Count: 2}, got[1])
		assert.Equal(t, PeriodCount{Period: "2024-04-15/2024-04-21", Label: "", Count: 1}, got[2])
		assert.Equal(t, PeriodCount{Period: "2024-04-29/2024-05-05", Label: "", Count: 1}, got[3])
	})

	t.Run("counts sum to dated tickets", func(t *testing.T) {
		for _, unit := range []Unit{UnitMonth, UnitWeek} {
			sum := 0
			for _, c := range PeriodCounts(table, unit) {
				sum += c.Count
			}
			assert.Equal(t, 5, sum)
		}
	})
}

func TestParseUnit(t *testing.T) {
	for in, want := range map[string]Unit{"": UnitMonth, "월간": UnitMonth, "month": UnitMonth, "주간": UnitWeek, "weekly": UnitWeek} {
		got, ok := ParseUnit(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseUnit("연간")
	assert.False(t, ok)
}

func TestDurationAverages(t *testing.T) {
	table := models.NewTable([]*models.Ticket{
		ticket("2024-04-02", waiting("00:05:00")),
		ticket("2024-04-10", waiting("00:15:00")),
		ticket("2024-04-11", waiting("broken")),
		ticket("2024-05-01"),
		ticket("", waiting("10:00:00")),
	})

	rows := DurationAverages(table)
	require.Len(t, rows, 2)

	assert.Equal(t, "2024-04", rows[0].Month)
	assert.Equal(t, "04", rows[0].Label)
	require.NotNil(t, rows[0].Minutes[models.DurationWaiting])
	assert.InDelta(t, 10.0, *rows[0].Minutes[models.DurationWaiting], 1e-9)
	assert.Nil(t, rows[0].Minutes[models.DurationResolution])
	assert.Nil(t, rows[1].Minutes[models.DurationWaiting])

	long := Long(rows, map[models.DurationKind]string{models.DurationWaiting: "첫응답시간"})
	require.Len(t, long, 8)
	assert.Equal(t, "첫응답시간", long[0].KindLabel)
	assert.Equal(t, string(models.DurationAvgReply), long[1].KindLabel)
	assert.Equal(t, "2024-05", long[4].Month)
}

func TestTopBreakdown(t *testing.T) {
	var tickets []*models.Ticket
	for i, n := range []int{5, 4, 3, 2, 2, 1, 1} {
		for j := 0; j < n; j++ {
			tickets = append(tickets, ticket("2024-04-01", customer(fmt.Sprintf("c%d", i))))
		}
	}
	tickets = append(tickets, ticket("2024-04-01"))
	table := models.NewTable(tickets)

	got := TopBreakdown(table, models.FieldCustomerType, 5)
	require.Len(t, got, 6)
	assert.Equal(t, "c0", got[0].Name)
	assert.Equal(t, "c4", got[4].Name)
	assert.Equal(t, OtherBucket, got[5].Name)
	assert.Equal(t, 2, got[5].Count)
	assert.Equal(t, "c0 (27.8%)", got[0].Label)

	total := 0.0
	for _, s := range got {
		total += s.Percent
	}
	assert.InDelta(t, 100.0, total, 1e-9)

	t.Run("few values have no other bucket", func(t *testing.T) {
		got := TopBreakdown(table, models.FieldCustomerType, 10)
		assert.Len(t, got, 7)
	})

	t.Run("no values", func(t *testing.T) {
		assert.Nil(t, TopBreakdown(models.NewTable([]*models.Ticket{ticket("")}), models.FieldCustomerType, 5))
	})
}

func TestScores(t *testing.T) {
	table := models.NewTable([]*models.Ticket{
		ticket("2024-04-02", customer("A"), answers(map[string]any{"A-1": 5.0, "A-2": "4"})),
		ticket("2024-04-10", customer("A"), answers(map[string]any{"A-1": 3.0})),
		ticket("2024-04-20", customer("B"), answers(map[string]any{"A-1": 4.7})),
		ticket("2024-05-03", customer("C"), answers(map[string]any{"A-2": 2.0})),
		ticket("2024-06-01", answers(map[string]any{"A-1": 9.0})),
	})

	t.Run("means", func(t *testing.T) {
		got := ScoreMeans(table, []string{"A-1", "A-4"})
		require.Len(t, got, 2)
		require.NotNil(t, got[0].Mean)
		assert.InDelta(t, (5+3+4.7+9)/4.0, *got[0].Mean, 1e-9)
		assert.Nil(t, got[1].Mean)
	})

	t.Run("grouped drops empty groups", func(t *testing.T) {
		got := GroupedScoreMeans(table, models.FieldCustomerType, "A-1")
		require.Len(t, got, 2)
		assert.Equal(t, "A", got[0].Group)
		assert.InDelta(t, 4.0, got[0].Mean, 1e-9)
		assert.Equal(t, "B", got[1].Group)
	})

	t.Run("distribution always has five rows", func(t *testing.T) {
		got := ScoreDistribution(table, "A-1")
		assert.Equal(t, []ScoreBucket{
			{Score: 1, Count: 0}, {Score: 2, Count: 0}, {Score: 3, Count: 1}, {Score: 4, Count: 1}, {Score: 5, Count: 1},
		}, got)

		empty := ScoreDistribution(models.NewTable(nil), "A-1")
		assert.Len(t, empty, len(ScoreDomain))
	})

	t.Run("monthly trend", func(t *testing.T) {
		got := MonthlyScoreTrend(table, "A-2")
		require.Len(t, got, 3)
		assert.Equal(t, "2024-04", got[0].Month)
		assert.InDelta(t, 4.0, *got[0].Mean, 1e-9)
		assert.InDelta(t, 2.0, *got[1].Mean, 1e-9)
		assert.Nil(t, got[2].Mean)
	})
}

func TestScoresIgnoreNonFiniteAnswers(t *testing.T) {
	table := models.NewTable([]*models.Ticket{
		ticket("2024-04-02", customer("A"), answers(map[string]any{"A-1": "NaN"})),
		ticket("2024-04-03", customer("A"), answers(map[string]any{"A-1": "Inf"})),
		ticket("2024-04-04", customer("A"), answers(map[string]any{"A-1": "-Infinity"})),
		ticket("2024-04-05", customer("A"), answers(map[string]any{"A-1": 4.0})),
	})

	means := ScoreMeans(table, []string{"A-1"})
	require.NotNil(t, means[0].Mean)
	assert.Equal(t, 4.0, *means[0].Mean)

	grouped := GroupedScoreMeans(table, models.FieldCustomerType, "A-1")
	require.Len(t, grouped, 1)
	assert.Equal(t, 4.0, grouped[0].Mean)

	trend := MonthlyScoreTrend(table, "A-1")
	require.Len(t, trend, 1)
	require.NotNil(t, trend[0].Mean)
	assert.Equal(t, 4.0, *trend[0].Mean)

	hist := ScoreDistribution(table, "A-1")
	assert.Equal(t, 1, hist[3].Count)
}

func TestCommentCorpus(t *testing.T) {
	table := models.NewTable([]*models.Ticket{
		ticket("2024-04-02", answers(map[string]any{"A-3": "배송이 빨라요"})),
		ticket("2024-04-03", answers(map[string]any{"A-3": nil})),
		ticket("2024-04-04", answers(map[string]any{"A-3": "배송이 느려요"})),
		ticket("2024-04-05"),
	})

	c := CommentCorpus(table, "A-3")
	assert.Equal(t, "배송이 빨라요 배송이 느려요", c.Text)
	assert.Equal(t, 2, c.Count)
	assert.False(t, c.Empty)

	empty := CommentCorpus(table, "A-6")
	assert.True(t, empty.Empty)
	assert.Equal(t, "", empty.Text)
}

func TestTopTerms(t *testing.T) {
	got := TopTerms("배송이 빨라요. 배송이 좋아요! Fast fast a", 10)
	require.NotEmpty(t, got)
	assert.Equal(t, TermCount{Term: "fast", Count: 2}, got[0])
	assert.Equal(t, TermCount{Term: "배송이", Count: 2}, got[1])
	assert.Len(t, got, 4)

	assert.Nil(t, TopTerms("  . !", 10))
	assert.Equal(t, []string{"hello", "세상"}, Tokenize("Hello, 세상 x"))
}
