package filter

import (
	"time"

	"github.com/godilite/cs-dashboard/internal/repository/models"
)

const dateLayout = "2006-01-02"

// Predicate is one conjunct of a ticket filter. Predicates are pure, so the
// order in which they are evaluated does not matter.
type Predicate interface {
	Match(t *models.Ticket) bool
	// SQL renders the predicate as a WHERE fragment over the ticket index.
	SQL() (clause string, args []any)
}

// columns maps category fields to ticket index columns.
var columns = map[models.Field]string{
	models.FieldCustomerType:     "customer_type",
	models.FieldInquiryType:      "inquiry_type",
	models.FieldInquirySecondary: "inquiry_type_2",
	models.FieldServiceType:      "service_type",
	models.FieldServiceSecondary: "service_type_2",
}

// Column returns the ticket index column holding a category field.
func Column(f models.Field) string {
	return columns[f]
}

// CalendarDate truncates t to midnight of its own calendar day, expressed in UTC.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateRange matches tickets whose first-asked calendar date lies in
// [Start, End]. Tickets without a timestamp never match.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds an inclusive range from two dates, ignoring time of day.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: CalendarDate(start), End: CalendarDate(end)}
}

func (r DateRange) Match(t *models.Ticket) bool {
	if t.FirstAskedAt == nil {
		return false
	}
	d := CalendarDate(*t.FirstAskedAt)
	return !d.Before(r.Start) && !d.After(r.End)
}

func (r DateRange) SQL() (string, []any) {
	return "first_asked_date IS NOT NULL AND first_asked_date >= ? AND first_asked_date <= ?",
		[]any{r.Start.Format(dateLayout), r.End.Format(dateLayout)}
}

// Equals matches tickets whose category field equals Value. A null field
// never matches.
type Equals struct {
	Field models.Field
	Value string
}

func (e Equals) Match(t *models.Ticket) bool {
	v := t.Category(e.Field)
	return v != nil && *v == e.Value
}

func (e Equals) SQL() (string, []any) {
	return Column(e.Field) + " = ?", []any{e.Value}
}

// Apply returns the tickets matching every predicate, in table order. The
// input table is not modified.
func Apply(table *models.Table, preds ...Predicate) *models.Table {
	out := make([]*models.Ticket, 0, table.Len())
	if table == nil {
		return models.NewTable(out)
	}
	for _, t := range table.Tickets {
		if matchAll(t, preds) {
			out = append(out, t)
		}
	}
	return models.NewTable(out)
}

func matchAll(t *models.Ticket, preds []Predicate) bool {
	for _, p := range preds {
		if !p.Match(t) {
			return false
		}
	}
	return true
}

// DefaultDateRange spans the earliest to the latest first-asked calendar date
// in the table. Dates are taken in each timestamp's own offset before
// comparing, so End never precedes Start. When no ticket has a timestamp it
// falls back to 2023-01-01 .. now.
func DefaultDateRange(table *models.Table, now time.Time) DateRange {
	var minDate, maxDate time.Time
	found := false
	if table != nil {
		for _, t := range table.Tickets {
			if t.FirstAskedAt == nil {
				continue
			}
			d := CalendarDate(*t.FirstAskedAt)
			if !found || d.Before(minDate) {
				minDate = d
			}
			if !found || d.After(maxDate) {
				maxDate = d
			}
			found = true
		}
	}
	if !found {
		return NewDateRange(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), now)
	}
	return DateRange{Start: minDate, End: maxDate}
}
