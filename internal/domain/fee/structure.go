package fee

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/schoolfee/backend/internal/domain/shared"
)

// Frequency is how often a fee is charged
type Frequency string

const (
	FrequencyOneTime    Frequency = "ONE_TIME"
	FrequencyMonthly    Frequency = "MONTHLY"
	FrequencyQuarterly  Frequency = "QUARTERLY"
	FrequencyHalfYearly Frequency = "HALF_YEARLY"
	FrequencyYearly     Frequency = "YEARLY"
)

// IsValid checks if the frequency is a known value
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyOneTime, FrequencyMonthly, FrequencyQuarterly, FrequencyHalfYearly, FrequencyYearly:
		return true
	}
	return false
}

// String returns the string representation
func (f Frequency) String() string {
	return string(f)
}

// FeeStructure is a reusable fee template, tenant-wide when ClassID is nil.
// Invoices copy the amount at creation, so edits never reach issued invoices.
type FeeStructure struct {
	shared.TenantAggregateRoot
	shared.SoftDeletable
	ClassID     *uuid.UUID
	Name        string
	Description string
	Amount      decimal.Decimal
	Frequency   Frequency
}

// StructureSpec carries the editable fields of a fee structure
type StructureSpec struct {
	ClassID     *uuid.UUID
	Name        string
	Description string
	Amount      decimal.Decimal
	Frequency   Frequency
}

// NewFeeStructure creates a fee structure
func NewFeeStructure(tenantID uuid.UUID, spec StructureSpec, now time.Time) (*FeeStructure, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	fs := &FeeStructure{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID, now),
	}
	if err := fs.apply(spec); err != nil {
		return nil, err
	}
	return fs, nil
}

// Update replaces the editable fields
func (fs *FeeStructure) Update(spec StructureSpec, now time.Time) error {
	if fs.IsDeleted() {
		return shared.NewNotFoundError("Fee structure")
	}
	if err := fs.apply(spec); err != nil {
		return err
	}
	fs.Touch(now)
	fs.IncrementVersion()
	return nil
}

// AppliesTo reports whether the structure may be billed to a student of classID
func (fs *FeeStructure) AppliesTo(classID *uuid.UUID) bool {
	if fs.ClassID == nil {
		return true
	}
	return classID != nil && *classID == *fs.ClassID
}

func (fs *FeeStructure) apply(spec StructureSpec) error {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return shared.NewValidationError("INVALID_NAME", "Fee structure name cannot be empty")
	}
	if len(name) > 150 {
		return shared.NewValidationError("INVALID_NAME", "Fee structure name cannot exceed 150 characters")
	}
	if !spec.Amount.IsPositive() {
		return shared.NewValidationError("INVALID_AMOUNT", "Amount must be positive")
	}
	if err := shared.CheckMoneyScale(spec.Amount, "Amount"); err != nil {
		return err
	}
	if !spec.Frequency.IsValid() {
		return shared.NewValidationError("INVALID_FREQUENCY", "Frequency is not valid")
	}
	if spec.ClassID != nil && *spec.ClassID == uuid.Nil {
		spec.ClassID = nil
	}
	fs.ClassID = spec.ClassID
	fs.Name = name
	fs.Description = strings.TrimSpace(spec.Description)
	fs.Amount = spec.Amount
	fs.Frequency = spec.Frequency
	return nil
}
