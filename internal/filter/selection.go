package filter

import (
	"github.com/godilite/cs-dashboard/internal/repository/models"
)

// Selection is the user's current filter state. Category values of "" or
// models.All impose no constraint. A nil Range means the whole table.
type Selection struct {
	Range            *DateRange
	CustomerType     string
	InquiryType      string
	InquirySecondary string
	ServiceType      string
	ServiceSecondary string
}

// Value returns the selected value for a category field.
func (s Selection) Value(f models.Field) string {
	switch f {
	case models.FieldCustomerType:
		return s.CustomerType
	case models.FieldInquiryType:
		return s.InquiryType
	case models.FieldInquirySecondary:
		return s.InquirySecondary
	case models.FieldServiceType:
		return s.ServiceType
	case models.FieldServiceSecondary:
		return s.ServiceSecondary
	}
	return ""
}

// Normalized maps empty values to models.All and decodes count-annotated
// secondary labels back to their plain values.
func (s Selection) Normalized() Selection {
	s.CustomerType = orAll(s.CustomerType)
	s.InquiryType = orAll(s.InquiryType)
	s.ServiceType = orAll(s.ServiceType)
	s.InquirySecondary = ExtractName(orAll(s.InquirySecondary))
	s.ServiceSecondary = ExtractName(orAll(s.ServiceSecondary))
	return s
}

// Predicates returns the active conjuncts: the date range when set, then one
// equality per constrained category.
func (s Selection) Predicates() []Predicate {
	var preds []Predicate
	if s.Range != nil {
		preds = append(preds, *s.Range)
	}
	return append(preds, s.CategoryPredicates()...)
}

// CategoryPredicates returns only the category equalities.
func (s Selection) CategoryPredicates() []Predicate {
	var preds []Predicate
	for _, f := range models.Fields {
		if v := s.Value(f); active(v) {
			preds = append(preds, Equals{Field: f, Value: v})
		}
	}
	return preds
}

func active(v string) bool {
	return v != "" && v != models.All
}

func orAll(v string) string {
	if v == "" {
		return models.All
	}
	return v
}
