package grpc

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	pb "github.com/godilite/cs-dashboard/api/v1"
	"github.com/godilite/cs-dashboard/internal/analytics"
	"github.com/godilite/cs-dashboard/internal/filter"
	"github.com/godilite/cs-dashboard/internal/repository/models"
	"github.com/godilite/cs-dashboard/internal/service"
)

const dateLayout = "2006-01-02"

// query is the decoded request Struct. Its JSON form is hashed into cache
// keys, so every field that changes the response must be part of it.
type query struct {
	Start            string `json:"start,omitempty"`
	End              string `json:"end,omitempty"`
	CustomerType     string `json:"customer_type,omitempty"`
	InquiryType      string `json:"inquiry_type,omitempty"`
	InquirySecondary string `json:"inquiry_secondary,omitempty"`
	ServiceType      string `json:"service_type,omitempty"`
	ServiceSecondary string `json:"service_secondary,omitempty"`
	Period           string `json:"period,omitempty"`
	GroupBy          string `json:"group_by,omitempty"`
	CrossScore       string `json:"cross_score,omitempty"`
	HistScore        string `json:"hist_score,omitempty"`
	TrendScore       string `json:"trend_score,omitempty"`
	TextQuestion     string `json:"text_question,omitempty"`
	Chart            string `json:"chart,omitempty"`
	Limit            int    `json:"limit,omitempty"`
	Offset           int    `json:"offset,omitempty"`
}

// decodeQuery reads the known keys of s. Unknown keys are ignored.
func decodeQuery(s *structpb.Struct) (query, error) {
	var q query
	fields := s.GetFields()

	strs := map[string]*string{
		pb.KeyStart:            &q.Start,
		pb.KeyEnd:              &q.End,
		pb.KeyCustomerType:     &q.CustomerType,
		pb.KeyInquiryType:      &q.InquiryType,
		pb.KeyInquirySecondary: &q.InquirySecondary,
		pb.KeyServiceType:      &q.ServiceType,
		pb.KeyServiceSecondary: &q.ServiceSecondary,
		pb.KeyPeriod:           &q.Period,
		pb.KeyGroupBy:          &q.GroupBy,
		pb.KeyCrossScore:       &q.CrossScore,
		pb.KeyHistScore:        &q.HistScore,
		pb.KeyTrendScore:       &q.TrendScore,
		pb.KeyTextQuestion:     &q.TextQuestion,
		pb.KeyChart:            &q.Chart,
	}
	for key, dst := range strs {
		v, ok := fields[key]
		if !ok {
			continue
		}
		switch k := v.GetKind().(type) {
		case *structpb.Value_StringValue:
			*dst = strings.TrimSpace(k.StringValue)
		case *structpb.Value_NullValue:
		default:
			return query{}, fmt.Errorf("%w: %s must be a string", service.ErrInvalidRequest, key)
		}
	}

	ints := map[string]*int{
		pb.KeyLimit:  &q.Limit,
		pb.KeyOffset: &q.Offset,
	}
	for key, dst := range ints {
		v, ok := fields[key]
		if !ok {
			continue
		}
		n, err := intValue(v)
		if err != nil {
			return query{}, fmt.Errorf("%w: %s %v", service.ErrInvalidRequest, key, err)
		}
		*dst = n
	}

	return q, nil
}

func intValue(v *structpb.Value) (int, error) {
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		if k.NumberValue != float64(int(k.NumberValue)) {
			return 0, fmt.Errorf("must be an integer, got %v", k.NumberValue)
		}
		return int(k.NumberValue), nil
	case *structpb.Value_StringValue:
		s := strings.TrimSpace(k.StringValue)
		if s == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("must be an integer, got %q", s)
		}
		return n, nil
	case *structpb.Value_NullValue:
		return 0, nil
	}
	return 0, fmt.Errorf("must be a number")
}

// selection parses the date window and category values. Start and end must
// be given together; omitting both selects the whole data span.
func (q query) selection() (filter.Selection, error) {
	sel := filter.Selection{
		CustomerType:     q.CustomerType,
		InquiryType:      q.InquiryType,
		InquirySecondary: q.InquirySecondary,
		ServiceType:      q.ServiceType,
		ServiceSecondary: q.ServiceSecondary,
	}

	switch {
	case q.Start == "" && q.End == "":
		return sel, nil
	case q.Start == "" || q.End == "":
		return sel, fmt.Errorf("%w: start and end dates must be given together", service.ErrInvalidRequest)
	}

	start, err := time.Parse(dateLayout, q.Start)
	if err != nil {
		return sel, fmt.Errorf("%w: start date %q is not YYYY-MM-DD", service.ErrInvalidRequest, q.Start)
	}
	end, err := time.Parse(dateLayout, q.End)
	if err != nil {
		return sel, fmt.Errorf("%w: end date %q is not YYYY-MM-DD", service.ErrInvalidRequest, q.End)
	}
	rng := filter.NewDateRange(start, end)
	sel.Range = &rng
	return sel, nil
}

func (q query) dashboardRequest() (service.DashboardRequest, error) {
	sel, err := q.selection()
	if err != nil {
		return service.DashboardRequest{}, err
	}

	unit, ok := analytics.ParseUnit(q.Period)
	if !ok {
		return service.DashboardRequest{}, fmt.Errorf("%w: unknown period %q", service.ErrInvalidRequest, q.Period)
	}

	var groupBy models.Field
	if q.GroupBy != "" {
		f, ok := models.ParseField(q.GroupBy)
		if !ok {
			return service.DashboardRequest{}, fmt.Errorf("%w: unknown group field %q", service.ErrInvalidRequest, q.GroupBy)
		}
		groupBy = f
	}

	return service.DashboardRequest{
		Selection:    sel,
		Period:       unit,
		GroupBy:      groupBy,
		CrossScore:   q.CrossScore,
		HistScore:    q.HistScore,
		TrendScore:   q.TrendScore,
		TextQuestion: q.TextQuestion,
	}, nil
}

// selectionOnly drops everything that does not affect the filter options, so
// that equivalent requests share a cache entry.
func (q query) selectionOnly() query {
	return query{
		Start:            q.Start,
		End:              q.End,
		CustomerType:     q.CustomerType,
		InquiryType:      q.InquiryType,
		InquirySecondary: q.InquirySecondary,
		ServiceType:      q.ServiceType,
		ServiceSecondary: q.ServiceSecondary,
	}
}
