package grpc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/godilite/cs-dashboard/internal/analytics"
	"github.com/godilite/cs-dashboard/internal/service"
)

func TestDecodeQuery(t *testing.T) {
	t.Run("nil struct", func(t *testing.T) {
		q, err := decodeQuery(nil)
		require.NoError(t, err)
		assert.Equal(t, query{}, q)
	})

	t.Run("known keys", func(t *testing.T) {
		s, err := structpb.NewStruct(map[string]any{
			"start":    " 2024-04-01 ",
			"end":      "2024-04-30",
			"서비스유형":    "결제",
			"chart":    "terms",
			"limit":    "25",
			"offset":   10,
			"unknown":  true,
			"group_by": nil,
		})
		require.NoError(t, err)

		q, err := decodeQuery(s)

		require.NoError(t, err)
		assert.Equal(t, query{
			Start:       "2024-04-01",
			End:         "2024-04-30",
			ServiceType: "결제",
			Chart:       "terms",
			Limit:       25,
			Offset:      10,
		}, q)
	})

	tests := []struct {
		name   string
		fields map[string]any
	}{
		{"boolean period", map[string]any{"period": true}},
		{"list customer type", map[string]any{"고객유형": []any{"A"}}},
		{"non-numeric limit", map[string]any{"limit": "ten"}},
		{"fractional offset", map[string]any{"offset": 1.5}},
		{"object limit", map[string]any{"limit": map[string]any{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := structpb.NewStruct(tt.fields)
			require.NoError(t, err)

			_, err = decodeQuery(s)

			assert.ErrorIs(t, err, service.ErrInvalidRequest)
		})
	}
}

func TestQuerySelection(t *testing.T) {
	t.Run("no dates", func(t *testing.T) {
		sel, err := query{CustomerType: "A"}.selection()
		require.NoError(t, err)
		assert.Nil(t, sel.Range)
		assert.Equal(t, "A", sel.CustomerType)
	})

	t.Run("both dates", func(t *testing.T) {
		sel, err := query{Start: "2024-04-01", End: "2024-04-30"}.selection()
		require.NoError(t, err)
		require.NotNil(t, sel.Range)
		assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), sel.Range.Start)
	})

	for _, q := range []query{
		{Start: "2024-04-01"},
		{End: "2024-04-30"},
		{Start: "04/01/2024", End: "2024-04-30"},
		{Start: "2024-04-01", End: "2024-13-01"},
	} {
		_, err := q.selection()
		assert.ErrorIs(t, err, service.ErrInvalidRequest, "%+v", q)
	}
}

func TestQueryDashboardRequest(t *testing.T) {
	req, err := query{Period: "week", CrossScore: "A-2", TextQuestion: "B-1"}.dashboardRequest()
	require.NoError(t, err)
	assert.Equal(t, analytics.UnitWeek, req.Period)
	assert.Empty(t, req.GroupBy)
	assert.Equal(t, "A-2", req.CrossScore)
	assert.Equal(t, "B-1", req.TextQuestion)

	req, err = query{}.dashboardRequest()
	require.NoError(t, err)
	assert.Equal(t, analytics.UnitMonth, req.Period)

	_, err = query{GroupBy: "상담사"}.dashboardRequest()
	assert.ErrorIs(t, err, service.ErrInvalidRequest)
}

func TestSelectionOnly(t *testing.T) {
	q := query{Start: "2024-04-01", End: "2024-04-30", InquiryType: "결제", Period: "week", Chart: "terms", Limit: 5}

	assert.Equal(t, query{Start: "2024-04-01", End: "2024-04-30", InquiryType: "결제"}, q.selectionOnly())
}
