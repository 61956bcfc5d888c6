package service

import (
	"github.com/godilite/cs-dashboard/internal/analytics"
	"github.com/godilite/cs-dashboard/internal/filter"
	"github.com/godilite/cs-dashboard/internal/repository/models"
)

// DateBounds is an inclusive calendar-date window rendered as YYYY-MM-DD.
type DateBounds struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type SelectionView struct {
	CustomerType     string `json:"고객유형"`
	InquiryType      string `json:"문의유형"`
	InquirySecondary string `json:"문의유형_2차"`
	ServiceType      string `json:"서비스유형"`
	ServiceSecondary string `json:"서비스유형_2차"`
}

type SecondaryOptions struct {
	Options []filter.Option `json:"options"`
	Labels  []string        `json:"labels"`
}

type FilterOptions struct {
	Bounds           DateBounds       `json:"bounds"`
	Range            DateBounds       `json:"range"`
	Selection        SelectionView    `json:"selection"`
	CustomerTypes    []string         `json:"customer_types"`
	InquiryTypes     []string         `json:"inquiry_types"`
	ServiceTypes     []string         `json:"service_types"`
	InquirySecondary SecondaryOptions `json:"inquiry_secondary"`
	ServiceSecondary SecondaryOptions `json:"service_secondary"`
}

// DashboardRequest carries the filter selection and the per-chart choices.
// Empty choices fall back to the first configured question.
type DashboardRequest struct {
	Selection    filter.Selection `json:"selection"`
	Period       analytics.Unit   `json:"period"`
	GroupBy      models.Field     `json:"group_by"`
	CrossScore   string           `json:"cross_score"`
	HistScore    string           `json:"hist_score"`
	TrendScore   string           `json:"trend_score"`
	TextQuestion string           `json:"text_question"`
}

type GroupedScores struct {
	Field    models.Field          `json:"field"`
	Question string                `json:"question"`
	Groups   []analytics.GroupMean `json:"groups"`
}

type ScoreHistogram struct {
	Question string                  `json:"question"`
	Buckets  []analytics.ScoreBucket `json:"buckets"`
}

type ScoreTrend struct {
	Question string                 `json:"question"`
	Points   []analytics.TrendPoint `json:"points"`
}

// Dashboard is every chart table for one selection. When NoData is set the
// filtered set was empty and no aggregation was computed.
type Dashboard struct {
	Range          DateBounds                 `json:"range"`
	Selection      SelectionView              `json:"selection"`
	Total          int                        `json:"total"`
	NoData         bool                       `json:"no_data"`
	Period         analytics.Unit             `json:"period"`
	PeriodCounts   []analytics.PeriodCount    `json:"period_counts,omitempty"`
	Durations      []analytics.DurationPoint  `json:"durations,omitempty"`
	CustomerTypes  []analytics.BreakdownSlice `json:"customer_types,omitempty"`
	ScoreMeans     []analytics.ScoreMean      `json:"score_means,omitempty"`
	GroupedScores  *GroupedScores             `json:"grouped_scores,omitempty"`
	ScoreHistogram *ScoreHistogram            `json:"score_histogram,omitempty"`
	ScoreTrend     *ScoreTrend                `json:"score_trend,omitempty"`
	Comments       *analytics.Corpus          `json:"comments,omitempty"`
}

type TicketPage struct {
	Range  DateBounds         `json:"range"`
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
	Rows   []models.TicketRow `json:"rows"`
}
