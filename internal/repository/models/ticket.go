package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// All is the selection sentinel meaning "no constraint".
const All = "전체"

// Field names a derived category column.
type Field string

const (
	FieldCustomerType     Field = "고객유형"
	FieldInquiryType      Field = "문의유형"
	FieldInquirySecondary Field = "문의유형_2차"
	FieldServiceType      Field = "서비스유형"
	FieldServiceSecondary Field = "서비스유형_2차"
)

// Fields lists the category columns in display order.
var Fields = []Field{
	FieldCustomerType,
	FieldInquiryType,
	FieldInquirySecondary,
	FieldServiceType,
	FieldServiceSecondary,
}

// ParseField resolves a column name to a Field.
func ParseField(s string) (Field, bool) {
	for _, f := range Fields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// DurationKind names one of the operation timing fields.
type DurationKind string

const (
	DurationWaiting    DurationKind = "operationWaitingTime"
	DurationAvgReply   DurationKind = "operationAvgReplyTime"
	DurationTotalReply DurationKind = "operationTotalReplyTime"
	DurationResolution DurationKind = "operationResolutionTime"
)

// DurationKinds lists the timing fields in chart order.
var DurationKinds = []DurationKind{
	DurationWaiting,
	DurationAvgReply,
	DurationTotalReply,
	DurationResolution,
}

// Ticket is one CS inquiry with its derived fields.
type Ticket struct {
	Seq          int
	ID           string
	Tags         []string
	FirstAskedAt *time.Time
	Durations    map[DurationKind]string

	// Satisfaction holds the flattened cs_satisfaction mapping. It is nil when
	// the record had no mapping.
	Satisfaction map[string]any

	CustomerType     *string
	InquiryType      *string
	InquirySecondary *string
	ServiceType      *string
	ServiceSecondary *string
	Month            *string

	// Raw is the source line as read from the file.
	Raw []byte
}

// Category returns the value of a derived category column.
func (t *Ticket) Category(f Field) *string {
	switch f {
	case FieldCustomerType:
		return t.CustomerType
	case FieldInquiryType:
		return t.InquiryType
	case FieldInquirySecondary:
		return t.InquirySecondary
	case FieldServiceType:
		return t.ServiceType
	case FieldServiceSecondary:
		return t.ServiceSecondary
	}
	return nil
}

// Duration returns the raw H:M:S text of a timing field.
func (t *Ticket) Duration(k DurationKind) (string, bool) {
	v, ok := t.Durations[k]
	return v, ok
}

// Score returns a numeric satisfaction answer. Numeric text is accepted;
// NaN and infinities count as no answer.
func (t *Ticket) Score(id string) (float64, bool) {
	v, ok := t.Satisfaction[id]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Comment returns a satisfaction answer coerced to text.
func (t *Ticket) Comment(id string) (string, bool) {
	v, ok := t.Satisfaction[id]
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	}
	return fmt.Sprint(v), true
}

// Table is an ordered, read-only ticket collection.
type Table struct {
	Tickets []*Ticket
}

// NewTable wraps tickets in a Table.
func NewTable(tickets []*Ticket) *Table {
	return &Table{Tickets: tickets}
}

// Len returns the number of tickets.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Tickets)
}

// Empty reports whether the table holds no tickets.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// TicketRow is the flat raw-table view of a ticket.
type TicketRow struct {
	Seq              int      `json:"seq"`
	ID               string   `json:"id"`
	FirstAskedAt     string   `json:"firstAskedAt,omitempty"`
	Month            string   `json:"month,omitempty"`
	CustomerType     string   `json:"고객유형,omitempty"`
	InquiryType      string   `json:"문의유형,omitempty"`
	InquirySecondary string   `json:"문의유형_2차,omitempty"`
	ServiceType      string   `json:"서비스유형,omitempty"`
	ServiceSecondary string   `json:"서비스유형_2차,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	Record           string   `json:"record"`
}
