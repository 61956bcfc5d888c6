package repository_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godilite/cs-dashboard/internal/filter"
	"github.com/godilite/cs-dashboard/internal/repository"
	"github.com/godilite/cs-dashboard/internal/repository/models"
)

const indexFixture = `{"id":"t1","tags":["고객유형/개인","문의유형/결제/환불"],"firstAskedAt":"2024-04-02T10:00:00Z"}
{"id":"t2","tags":["고객유형/개인","문의유형/결제/취소"],"firstAskedAt":"2024-04-10T23:30:00+09:00"}
{"id":"t3","tags":["고객유형/법인","문의유형/배송"],"firstAskedAt":"2024-04-20T10:00:00Z"}
{"id":"t4","tags":["문의유형/배송"],"firstAskedAt":"2024-05-03T09:00:00Z"}
{"id":"t5","tags":["고객유형/법인"]}
`

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	return db
}

func TestTicketIndex_Integration(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	table, err := repository.LoadTickets(strings.NewReader(indexFixture))
	require.NoError(t, err)

	index := repository.NewTicketIndex(db)
	require.NoError(t, index.Rebuild(ctx, table))

	april := filter.NewDateRange(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC))

	cases := map[string][]filter.Predicate{
		"no predicates":     nil,
		"date range":        {april},
		"customer type":     {filter.Equals{Field: models.FieldCustomerType, Value: "개인"}},
		"range and type":    {april, filter.Equals{Field: models.FieldCustomerType, Value: "법인"}},
		"secondary":         {filter.Equals{Field: models.FieldInquirySecondary, Value: "환불"}},
		"nothing matches":   {filter.Equals{Field: models.FieldServiceType, Value: "앱"}},
		"single day window": {filter.NewDateRange(time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC))},
	}

	for name, preds := range cases {
		t.Run(name, func(t *testing.T) {
			want := filter.Apply(table, preds...)

			n, err := index.CountTickets(ctx, preds)
			require.NoError(t, err)
			assert.Equal(t, want.Len(), n)

			rows, err := index.QueryTickets(ctx, preds, 100, 0)
			require.NoError(t, err)
			require.Len(t, rows, want.Len())
			for i, r := range rows {
				assert.Equal(t, want.Tickets[i].Seq, r.Seq)
				assert.Equal(t, want.Tickets[i].ID, r.ID)
			}
		})
	}

	t.Run("row contents", func(t *testing.T) {
		rows, err := index.QueryTickets(ctx, nil, 1, 0)
		require.NoError(t, err)
		require.Len(t, rows, 1)

		r := rows[0]
		assert.Equal(t, "t1", r.ID)
		assert.Equal(t, "2024-04", r.Month)
		assert.Equal(t, "개인", r.CustomerType)
		assert.Equal(t, "환불", r.InquirySecondary)
		assert.Empty(t, r.ServiceType)
		assert.Equal(t, []string{"고객유형/개인", "문의유형/결제/환불"}, r.Tags)
		assert.Contains(t, r.Record, `"id":"t1"`)
	})

	t.Run("paging keeps file order", func(t *testing.T) {
		rows, err := index.QueryTickets(ctx, nil, 2, 3)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "t4", rows[0].ID)
		assert.Equal(t, "t5", rows[1].ID)
	})

	t.Run("rebuild replaces contents", func(t *testing.T) {
		smaller, err := repository.LoadTickets(strings.NewReader(`{"id":"only"}`))
		require.NoError(t, err)
		require.NoError(t, index.Rebuild(ctx, smaller))

		n, err := index.CountTickets(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}
