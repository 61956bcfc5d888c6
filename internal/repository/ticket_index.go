package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/godilite/cs-dashboard/internal/filter"
	"github.com/godilite/cs-dashboard/internal/repository/models"
)

const ticketSchema = `
	CREATE TABLE IF NOT EXISTS tickets (
		seq              INTEGER PRIMARY KEY,
		id               TEXT NOT NULL,
		first_asked_at   TEXT,
		first_asked_date TEXT,
		month            TEXT,
		customer_type    TEXT,
		inquiry_type     TEXT,
		inquiry_type_2   TEXT,
		service_type     TEXT,
		service_type_2   TEXT,
		tags             TEXT NOT NULL,
		record           TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tickets_date ON tickets (first_asked_date);
`

// TicketIndex mirrors the loaded ticket table into SQL so the raw-table view
// can be paged with the same predicates the filter engine applies in memory.
type TicketIndex struct {
	db *sql.DB
}

func NewTicketIndex(db *sql.DB) *TicketIndex {
	return &TicketIndex{db: db}
}

// Rebuild replaces the index contents with table.
func (s *TicketIndex) Rebuild(ctx context.Context, table *models.Table) error {
	if _, err := s.db.ExecContext(ctx, ticketSchema); err != nil {
		return fmt.Errorf("create tickets schema: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tickets`); err != nil {
		return fmt.Errorf("clear tickets: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tickets (
			seq, id, first_asked_at, first_asked_date, month,
			customer_type, inquiry_type, inquiry_type_2, service_type, service_type_2,
			tags, record
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range table.Tickets {
		tags, err := json.Marshal(t.Tags)
		if err != nil {
			return fmt.Errorf("encode tags of ticket %d: %w", t.Seq, err)
		}

		var askedAt, askedDate sql.NullString
		if t.FirstAskedAt != nil {
			askedAt = sql.NullString{String: t.FirstAskedAt.Format(time.RFC3339Nano), Valid: true}
			askedDate = sql.NullString{String: filter.CalendarDate(*t.FirstAskedAt).Format("2006-01-02"), Valid: true}
		}

		_, err = stmt.ExecContext(ctx,
			t.Seq, t.ID, askedAt, askedDate, nullString(t.Month),
			nullString(t.CustomerType), nullString(t.InquiryType), nullString(t.InquirySecondary),
			nullString(t.ServiceType), nullString(t.ServiceSecondary),
			string(tags), string(t.Raw),
		)
		if err != nil {
			return fmt.Errorf("insert ticket %d: %w", t.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rebuild: %w", err)
	}
	return nil
}

// CountTickets counts tickets matching every predicate.
func (s *TicketIndex) CountTickets(ctx context.Context, preds []filter.Predicate) (int, error) {
	where, args := whereClause(preds)

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("query CountTickets: %w", err)
	}
	return n, nil
}

// QueryTickets returns one page of matching tickets in file order.
func (s *TicketIndex) QueryTickets(ctx context.Context, preds []filter.Predicate, limit, offset int) ([]models.TicketRow, error) {
	where, args := whereClause(preds)
	query := `
		SELECT seq, id, first_asked_at, month,
			customer_type, inquiry_type, inquiry_type_2, service_type, service_type_2,
			tags, record
		FROM tickets` + where + `
		ORDER BY seq
		LIMIT ? OFFSET ?
	`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query QueryTickets: %w", err)
	}
	defer rows.Close()

	var results []models.TicketRow
	for rows.Next() {
		var (
			r                           models.TicketRow
			askedAt, month              sql.NullString
			customer, inquiry, inquiry2 sql.NullString
			service, service2           sql.NullString
			tags                        string
		)
		if err := rows.Scan(&r.Seq, &r.ID, &askedAt, &month,
			&customer, &inquiry, &inquiry2, &service, &service2,
			&tags, &r.Record); err != nil {
			return nil, fmt.Errorf("scan QueryTickets row: %w", err)
		}
		r.FirstAskedAt = askedAt.String
		r.Month = month.String
		r.CustomerType = customer.String
		r.InquiryType = inquiry.String
		r.InquirySecondary = inquiry2.String
		r.ServiceType = service.String
		r.ServiceSecondary = service2.String
		if err := json.Unmarshal([]byte(tags), &r.Tags); err != nil {
			return nil, fmt.Errorf("decode tags of ticket %d: %w", r.Seq, err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate QueryTickets: %w", err)
	}
	return results, nil
}

func whereClause(preds []filter.Predicate) (string, []any) {
	if len(preds) == 0 {
		return "", nil
	}
	clauses := make([]string, 0, len(preds))
	var args []any
	for _, p := range preds {
		c, a := p.SQL()
		clauses = append(clauses, "("+c+")")
		args = append(args, a...)
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
