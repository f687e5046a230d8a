package fee

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/schoolfee/backend/internal/domain/shared"
)

// FeeHandover records collected cash passed from staff to school management.
// Immutable once created.
type FeeHandover struct {
	shared.BaseEntity
	TenantID        uuid.UUID
	SubmittedBy     uuid.UUID
	AmountSubmitted decimal.Decimal
	SubmittedAt     time.Time
	Remarks         string
}

// CashPosition is the running reconciliation of collected versus handed-over money
type CashPosition struct {
	TotalCollected  decimal.Decimal
	TotalHandedOver decimal.Decimal
}

// Available is the balance still held by collecting staff
func (c CashPosition) Available() decimal.Decimal {
	return c.TotalCollected.Sub(c.TotalHandedOver)
}

// Accept validates a handover of amount against the position.
// Zero is accepted; negatives and amounts above Available are not.
func (c CashPosition) Accept(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewValidationError("INVALID_AMOUNT", "Handover amount cannot be negative")
	}
	if err := shared.CheckMoneyScale(amount, "Handover amount"); err != nil {
		return err
	}
	if amount.GreaterThan(c.Available()) {
		return shared.NewDomainError(shared.KindStateConflict, shared.ErrInsufficientBalance.Code,
			fmt.Sprintf("Handover of %s exceeds available balance %s", amount.StringFixed(2), c.Available().StringFixed(2)))
	}
	return nil
}

// NewFeeHandover creates a handover after checking it against the current position
func NewFeeHandover(
	tenantID, submittedBy uuid.UUID,
	amount decimal.Decimal,
	remarks string,
	position CashPosition,
	now time.Time,
) (*FeeHandover, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if submittedBy == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_USER", "Submitting user is required")
	}
	if err := position.Accept(amount); err != nil {
		return nil, err
	}
	return &FeeHandover{
		BaseEntity:      shared.NewBaseEntity(now),
		TenantID:        tenantID,
		SubmittedBy:     submittedBy,
		AmountSubmitted: amount,
		SubmittedAt:     now,
		Remarks:         strings.TrimSpace(remarks),
	}, nil
}

// CollectionPolicy decides which payment methods count toward cash held by staff
type CollectionPolicy struct {
	AllMethods bool
}

// Methods returns the counted methods, or nil when every method counts
func (p CollectionPolicy) Methods() []PaymentMethod {
	if p.AllMethods {
		return nil
	}
	return []PaymentMethod{PaymentMethodCash}
}
