package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/godilite/cs-dashboard/internal/repository/models"
)

// Option is a category value with the number of tickets carrying it.
type Option struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Label formats the option as shown in a dropdown.
func (o Option) Label() string {
	return FormatOptionLabel(o.Value, o.Count)
}

// FormatOptionLabel renders "{value} ({count})".
func FormatOptionLabel(value string, count int) string {
	return fmt.Sprintf("%s (%d)", value, count)
}

// ExtractName strips the " (count)" suffix from an option label. The "all"
// sentinel and labels without a suffix are returned unchanged.
func ExtractName(label string) string {
	if label == models.All {
		return label
	}
	if i := strings.LastIndex(label, " ("); i >= 0 {
		return label[:i]
	}
	return label
}

// PartialFilter applies only the primary category constraints. Secondary
// option lists are computed against this set.
func PartialFilter(table *models.Table, customerType, inquiryType, serviceType string) *models.Table {
	sel := Selection{
		CustomerType: customerType,
		InquiryType:  inquiryType,
		ServiceType:  serviceType,
	}
	return Apply(table, sel.CategoryPredicates()...)
}

// OptionCounts counts non-null values of field, most frequent first. Ties
// keep the order in which values first appear.
func OptionCounts(table *models.Table, field models.Field) []Option {
	idx := make(map[string]int)
	var opts []Option
	if table != nil {
		for _, t := range table.Tickets {
			v := t.Category(field)
			if v == nil {
				continue
			}
			i, ok := idx[*v]
			if !ok {
				i = len(opts)
				idx[*v] = i
				opts = append(opts, Option{Value: *v})
			}
			opts[i].Count++
		}
	}
	sort.SliceStable(opts, func(i, j int) bool {
		return opts[i].Count > opts[j].Count
	})
	return opts
}

// OptionLabels renders dropdown entries with the "all" sentinel first.
func OptionLabels(opts []Option) []string {
	labels := make([]string, 0, len(opts)+1)
	labels = append(labels, models.All)
	for _, o := range opts {
		if o.Count > 0 {
			labels = append(labels, o.Label())
		}
	}
	return labels
}

// SecondaryOptions computes the count-annotated options for a secondary
// field given the primary selections. Inquiry sub-types ignore the service
// type selection; service sub-types honour all three primaries.
func SecondaryOptions(table *models.Table, sel Selection, field models.Field) []Option {
	serviceType := sel.ServiceType
	if field == models.FieldInquirySecondary {
		serviceType = models.All
	}
	return OptionCounts(PartialFilter(table, sel.CustomerType, sel.InquiryType, serviceType), field)
}

// PrimaryOptions lists "all" followed by the sorted distinct values of field.
func PrimaryOptions(table *models.Table, field models.Field) []string {
	seen := make(map[string]struct{})
	var values []string
	if table != nil {
		for _, t := range table.Tickets {
			v := t.Category(field)
			if v == nil {
				continue
			}
			if _, ok := seen[*v]; ok {
				continue
			}
			seen[*v] = struct{}{}
			values = append(values, *v)
		}
	}
	sort.Strings(values)
	return append([]string{models.All}, values...)
}
