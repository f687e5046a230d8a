package shared

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits stored for every amount
const MoneyScale = 2

// HasMoneyScale reports whether amount fits in MoneyScale fractional digits.
// Trailing zeros do not count, so 12.500 fits.
func HasMoneyScale(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(MoneyScale))
}

// CheckMoneyScale rejects amounts that storage would round
func CheckMoneyScale(amount decimal.Decimal, label string) error {
	if HasMoneyScale(amount) {
		return nil
	}
	return NewValidationError("INVALID_AMOUNT_PRECISION",
		fmt.Sprintf("%s cannot have more than %d decimal places", label, MoneyScale))
}
