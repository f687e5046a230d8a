package shared

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasMoneyScale(t *testing.T) {
	tests := []struct {
		amount string
		want   bool
	}{
		{"100", true},
		{"10.5", true},
		{"10.55", true},
		{"10.500", true},
		{"-3.25", true},
		{"10.555", false},
		{"0.001", false},
		{"1e-3", false},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, HasMoneyScale(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestCheckMoneyScale(t *testing.T) {
	assert.NoError(t, CheckMoneyScale(decimal.RequireFromString("2000.50"), "Amount"))

	err := CheckMoneyScale(decimal.RequireFromString("2000.505"), "Amount paid")
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.EqualError(t, err, "Amount paid cannot have more than 2 decimal places")
}
