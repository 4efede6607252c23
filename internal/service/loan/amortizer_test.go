package loan

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAmortizer_CalculateEMI_ZeroInterest(t *testing.T) {
	a := NewAmortizer()

	for _, tc := range []struct {
		principal string
		n         int
	}{
		{"120000", 12},
		{"100000", 7},
		{"5000", 3},
		{"10", 4},
	} {
		want := d(tc.principal).Div(decimal.NewFromInt(int64(tc.n))).Round(0)
		got := a.CalculateEMI(d(tc.principal), decimal.Zero, tc.n)
		assert.True(t, want.Equal(got), "principal %s n %d: want %s got %s", tc.principal, tc.n, want, got)
	}
}

func TestAmortizer_CalculateEMI_WorkedExample(t *testing.T) {
	a := NewAmortizer()

	emi := a.CalculateEMI(d("120000"), d("12"), 12)

	assert.True(t, emi.Sub(d("10661")).Abs().LessThanOrEqual(decimal.NewFromInt(1)), "got %s", emi)
}

func TestAmortizer_CalculateEMI_InvalidInput(t *testing.T) {
	a := NewAmortizer()

	assert.True(t, a.CalculateEMI(d("1000"), d("10"), 0).IsZero())
	assert.True(t, a.CalculateEMI(d("1000"), d("10"), -3).IsZero())
	assert.True(t, a.CalculateEMI(d("1000"), d("-1"), 12).IsZero())
}

func TestAmortizer_GenerateRepaymentSchedule(t *testing.T) {
	a := NewAmortizer()
	start := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		principal string
		rate      string
		n         int
	}{
		{"worked example", "120000", "12", 12},
		{"zero interest", "100000", "0", 7},
		{"long tenure", "2500000", "8.5", 240},
		{"small principal", "10", "0", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule := a.GenerateRepaymentSchedule(d(tt.principal), d(tt.rate), tt.n, start)
			require.Len(t, schedule, tt.n)

			sum := decimal.Zero
			previous := d(tt.principal)
			for i, entry := range schedule {
				assert.Equal(t, i+1, entry.Month)
				assert.False(t, entry.PrincipalComponent.IsNegative())
				assert.False(t, entry.Outstanding.IsNegative())
				assert.True(t, entry.Outstanding.LessThanOrEqual(previous), "outstanding never grows")
				assert.True(t, entry.EMI.Equal(entry.PrincipalComponent.Add(entry.InterestComponent)))
				previous = entry.Outstanding
				sum = sum.Add(entry.PrincipalComponent)
			}

			assert.True(t, d(tt.principal).Equal(sum), "principal components sum to %s", sum)
			assert.True(t, schedule[len(schedule)-1].Outstanding.IsZero())
		})
	}
}

func TestAmortizer_GenerateRepaymentSchedule_PaymentDates(t *testing.T) {
	a := NewAmortizer()
	start := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)

	schedule := a.GenerateRepaymentSchedule(d("3000"), d("0"), 3, start)

	require.Len(t, schedule, 3)
	assert.Equal(t, time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC), schedule[0].PaymentDate)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), schedule[1].PaymentDate)
	assert.Equal(t, time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC), schedule[2].PaymentDate)
}

func TestAmortizer_GenerateRepaymentSchedule_Empty(t *testing.T) {
	a := NewAmortizer()

	assert.Empty(t, a.GenerateRepaymentSchedule(d("1000"), d("10"), 0, time.Now()))
	assert.Empty(t, a.GenerateRepaymentSchedule(decimal.Zero, d("10"), 12, time.Now()))
}
