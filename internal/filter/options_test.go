package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/godilite/cs-dashboard/internal/repository/models"
)

func TestExtractName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"환불 (12)", "환불"},
		{"A (B) (3)", "A (B)"},
		{"로그인", "로그인"},
		{models.All, models.All},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractName(tt.in))
		})
	}

	t.Run("left inverse of the label format", func(t *testing.T) {
		for _, v := range []string{"환불", "A (B)", "x", "기타 문의"} {
			assert.Equal(t, v, ExtractName(FormatOptionLabel(v, 7)))
		}
	})
}

func TestOptionCounts(t *testing.T) {
	opts := OptionCounts(sampleTable(), models.FieldInquirySecondary)
	assert.Equal(t, []Option{{Value: "취소", Count: 2}, {Value: "환불", Count: 1}}, opts)

	t.Run("ties keep first appearance", func(t *testing.T) {
		opts := OptionCounts(sampleTable(), models.FieldServiceSecondary)
		assert.Equal(t, []Option{{Value: "로그인", Count: 1}, {Value: "결제", Count: 1}}, opts)
	})

	t.Run("null values are not options", func(t *testing.T) {
		assert.Empty(t, OptionCounts(models.NewTable([]*models.Ticket{{ID: "x"}}), models.FieldCustomerType))
	})
}

func TestOptionLabels(t *testing.T) {
	labels := OptionLabels([]Option{{Value: "취소", Count: 2}, {Value: "없음", Count: 0}, {Value: "환불", Count: 1}})
	assert.Equal(t, []string{models.All, "취소 (2)", "환불 (1)"}, labels)
	assert.Equal(t, []string{models.All}, OptionLabels(nil))
}

func TestSecondaryOptions(t *testing.T) {
	table := sampleTable()

	t.Run("inquiry sub-types ignore the service type", func(t *testing.T) {
		sel := Selection{ServiceType: "웹"}.Normalized()
		opts := SecondaryOptions(table, sel, models.FieldInquirySecondary)
		assert.Equal(t, []Option{{Value: "취소", Count: 2}, {Value: "환불", Count: 1}}, opts)
	})

	t.Run("service sub-types honour the service type", func(t *testing.T) {
		sel := Selection{ServiceType: "앱"}.Normalized()
		opts := SecondaryOptions(table, sel, models.FieldServiceSecondary)
		assert.Equal(t, []Option{{Value: "로그인", Count: 1}, {Value: "결제", Count: 1}}, opts)
	})

	t.Run("customer type narrows both", func(t *testing.T) {
		sel := Selection{CustomerType: "B"}.Normalized()
		assert.Equal(t, []Option{{Value: "취소", Count: 1}}, SecondaryOptions(table, sel, models.FieldInquirySecondary))
		assert.Equal(t, []Option{{Value: "결제", Count: 1}}, SecondaryOptions(table, sel, models.FieldServiceSecondary))
	})

	t.Run("secondary selections do not narrow options", func(t *testing.T) {
		sel := Selection{InquirySecondary: "환불"}.Normalized()
		assert.Len(t, SecondaryOptions(table, sel, models.FieldInquirySecondary), 2)
	})
}

func TestPrimaryOptions(t *testing.T) {
	assert.Equal(t, []string{models.All, "A", "B"}, PrimaryOptions(sampleTable(), models.FieldCustomerType))
	assert.Equal(t, []string{models.All, "결제", "배송"}, PrimaryOptions(sampleTable(), models.FieldInquiryType))
	assert.Equal(t, []string{models.All}, PrimaryOptions(nil, models.FieldServiceType))
}
