package school

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/schoolfee/backend/internal/domain/shared"
)

// SubscriptionStatus is the school's billing health on the platform
type SubscriptionStatus string

const (
	SubscriptionActive  SubscriptionStatus = "ACTIVE"
	SubscriptionDueSoon SubscriptionStatus = "DUE_SOON"
	SubscriptionExpired SubscriptionStatus = "EXPIRED"
	SubscriptionPending SubscriptionStatus = "PENDING"
)

// DueSoonWindowDays is how many whole days before the billing date a
// subscription is reported as due soon
const DueSoonWindowDays = 7

// IsValid checks if the status is a known value
func (s SubscriptionStatus) IsValid() bool {
	switch s {
	case SubscriptionActive, SubscriptionDueSoon, SubscriptionExpired, SubscriptionPending:
		return true
	}
	return false
}

// String returns the string representation
func (s SubscriptionStatus) String() string {
	return string(s)
}

// DeriveSubscriptionStatus computes the status from the next billing date.
// Days remaining are whole 24h periods between now and next, rounded toward
// negative infinity, so any instant past the billing date counts as expired.
func DeriveSubscriptionStatus(next *time.Time, now time.Time) SubscriptionStatus {
	if next == nil {
		return SubscriptionPending
	}
	days := DaysUntil(*next, now)
	switch {
	case days < 0:
		return SubscriptionExpired
	case days <= DueSoonWindowDays:
		return SubscriptionDueSoon
	default:
		return SubscriptionActive
	}
}

// DaysUntil returns floor((next - now) / 24h)
func DaysUntil(next, now time.Time) int {
	d := next.Sub(now)
	days := int(d / (24 * time.Hour))
	if d < 0 && d%(24*time.Hour) != 0 {
		days--
	}
	return days
}

// AddCalendarMonth moves t to the same day of the following month. When the
// target month is shorter, the day is clamped to its last day (Jan 31 -> Feb 28
// or 29). The time of day and location are preserved.
func AddCalendarMonth(t time.Time) time.Time {
	year, month, day := t.Date()
	month++
	if month > time.December {
		month = time.January
		year++
	}
	if last := daysIn(year, month, t.Location()); day > last {
		day = last
	}
	hour, minute, sec := t.Clock()
	return time.Date(year, month, day, hour, minute, sec, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// School is a tenant of the platform. SubscriptionStatus is a cached
// derivation of NextBillingDate and is never set directly by callers.
type School struct {
	shared.BaseAggregateRoot
	shared.SoftDeletable
	Name                  string
	LogoKey               string
	PrincipalName         string
	Address               string
	Phone                 string
	Email                 string
	SubscriptionAmount    decimal.Decimal
	SubscriptionStartDate time.Time
	NextBillingDate       *time.Time
	SubscriptionStatus    SubscriptionStatus
}

// Profile holds the descriptive fields printed on receipts
type Profile struct {
	Name          string
	LogoKey       string
	PrincipalName string
	Address       string
	Phone         string
	Email         string
}

// NewSchool creates a school whose first billing date is one calendar month after start
func NewSchool(profile Profile, amount decimal.Decimal, start, now time.Time) (*School, error) {
	s := &School{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
	}
	if err := s.applyProfile(profile); err != nil {
		return nil, err
	}
	if err := s.applySubscription(amount, start, now); err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateProfile replaces the descriptive fields and bumps the version
func (s *School) UpdateProfile(p Profile, now time.Time) error {
	if err := s.applyProfile(p); err != nil {
		return err
	}
	s.Touch(now)
	s.IncrementVersion()
	return nil
}

func (s *School) applyProfile(p Profile) error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return shared.NewValidationError("INVALID_NAME", "School name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("INVALID_NAME", "School name cannot exceed 200 characters")
	}
	s.Name = name
	s.LogoKey = strings.TrimSpace(p.LogoKey)
	s.PrincipalName = strings.TrimSpace(p.PrincipalName)
	s.Address = strings.TrimSpace(p.Address)
	s.Phone = strings.TrimSpace(p.Phone)
	s.Email = strings.TrimSpace(p.Email)
	return nil
}

// Profile returns the descriptive fields
func (s *School) Profile() Profile {
	return Profile{
		Name:          s.Name,
		LogoKey:       s.LogoKey,
		PrincipalName: s.PrincipalName,
		Address:       s.Address,
		Phone:         s.Phone,
		Email:         s.Email,
	}
}

// UpdateSubscription sets a new fee and start date, resetting the billing
// date to one calendar month after start.
func (s *School) UpdateSubscription(amount decimal.Decimal, start, now time.Time) error {
	if err := s.applySubscription(amount, start, now); err != nil {
		return err
	}
	s.IncrementVersion()
	return nil
}

func (s *School) applySubscription(amount decimal.Decimal, start, now time.Time) error {
	if amount.IsNegative() {
		return shared.NewValidationError("INVALID_AMOUNT", "Subscription amount cannot be negative")
	}
	if err := shared.CheckMoneyScale(amount, "Subscription amount"); err != nil {
		return err
	}
	if start.IsZero() {
		return shared.NewValidationError("INVALID_DATE", "Subscription start date is required")
	}
	next := AddCalendarMonth(start)
	s.SubscriptionAmount = amount
	s.SubscriptionStartDate = start
	s.NextBillingDate = &next
	s.RefreshStatus(now)
	s.Touch(now)
	return nil
}

// Renew advances the billing date by one calendar month from the current
// billing date, or from the start date when none is set.
func (s *School) Renew(now time.Time) error {
	if s.IsDeleted() {
		return shared.NewConflictError("SCHOOL_DELETED", "Cannot renew a deleted school")
	}
	base := s.SubscriptionStartDate
	if s.NextBillingDate != nil {
		base = *s.NextBillingDate
	}
	if base.IsZero() {
		return shared.NewConflictError("NO_SUBSCRIPTION", "School has no subscription start date")
	}
	next := AddCalendarMonth(base)
	s.NextBillingDate = &next
	s.RefreshStatus(now)
	s.Touch(now)
	s.IncrementVersion()
	return nil
}

// RefreshStatus re-derives the cached status. It reports whether the value changed.
func (s *School) RefreshStatus(now time.Time) bool {
	status := DeriveSubscriptionStatus(s.NextBillingDate, now)
	if status == s.SubscriptionStatus {
		return false
	}
	s.SubscriptionStatus = status
	return true
}

// DaysRemaining returns whole days until the next billing date, or nil when pending
func (s *School) DaysRemaining(now time.Time) *int {
	if s.NextBillingDate == nil {
		return nil
	}
	d := DaysUntil(*s.NextBillingDate, now)
	return &d
}
