// Package school holds tenant subscription use cases: onboarding schools,
// editing their profile, and keeping the billing status current.
package school

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/schoolfee/backend/internal/domain/identity"
	"github.com/schoolfee/backend/internal/domain/school"
	"github.com/schoolfee/backend/internal/domain/shared"
	"github.com/schoolfee/backend/internal/infrastructure/telemetry"
)

// SubscriptionService manages schools and their monthly platform subscription
type SubscriptionService struct {
	repo   school.Repository
	logger *zap.Logger
	now    func() time.Time
}

// ServiceOption configures a SubscriptionService
type ServiceOption func(*SubscriptionService)

// WithClock replaces the wall clock used to derive subscription status
func WithClock(now func() time.Time) ServiceOption {
	return func(s *SubscriptionService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSubscriptionService creates a new SubscriptionService
func NewSubscriptionService(repo school.Repository, logger *zap.Logger, opts ...ServiceOption) *SubscriptionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SubscriptionService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SchoolView is a school with its status derived at read time
type SchoolView struct {
	*school.School
	RemainingDays *int
}

// Refresh re-derives a school's subscription status and persists it only if it
// changed. Calling it repeatedly is safe.
func (s *SubscriptionService) Refresh(ctx context.Context, tenantID uuid.UUID) (*SchoolView, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "school_subscription", "refresh")
	defer span.End()

	sch, err := s.repo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if err := s.refresh(ctx, sch); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return s.view(sch), nil
}

// Get returns the caller's own school
func (s *SubscriptionService) Get(ctx context.Context, p identity.Principal) (*SchoolView, error) {
	return s.Refresh(ctx, p.TenantID)
}

// GetByID returns any school to a platform administrator
func (s *SubscriptionService) GetByID(ctx context.Context, p identity.Principal, id uuid.UUID) (*SchoolView, error) {
	if err := p.RequirePlatformAdmin(); err != nil {
		return nil, err
	}
	return s.Refresh(ctx, id)
}

// List returns a page of schools, each refreshed before it is returned
func (s *SubscriptionService) List(ctx context.Context, p identity.Principal, filter shared.Filter) (shared.Paginated[SchoolView], error) {
	if err := p.RequirePlatformAdmin(); err != nil {
		return shared.Paginated[SchoolView]{}, err
	}
	filter = filter.Normalize()
	schools, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[SchoolView]{}, fmt.Errorf("failed to list schools: %w", err)
	}
	views := make([]SchoolView, 0, len(schools))
	for i := range schools {
		if err := s.refresh(ctx, &schools[i]); err != nil {
			return shared.Paginated[SchoolView]{}, err
		}
		views = append(views, *s.view(&schools[i]))
	}
	return shared.NewPaginated(views, total, filter.Page, filter.PageSize), nil
}

// CreateSchoolRequest carries the fields of a new school
type CreateSchoolRequest struct {
	Profile   school.Profile
	Amount    decimal.Decimal
	StartDate time.Time
}

// Create onboards a school. The first billing date is one calendar month after the start date.
func (s *SubscriptionService) Create(ctx context.Context, p identity.Principal, req CreateSchoolRequest) (*SchoolView, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "school_subscription", "create")
	defer span.End()

	if err := p.RequirePlatformAdmin(); err != nil {
		return nil, err
	}
	sch, err := school.NewSchool(req.Profile, req.Amount, req.StartDate, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, sch); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save school: %w", err)
	}
	s.logger.Info("School created",
		zap.String("tenant_id", sch.ID.String()),
		zap.String("name", sch.Name),
		zap.String("subscription_status", sch.SubscriptionStatus.String()))
	return s.view(sch), nil
}

// UpdateProfile edits the caller's own school profile
func (s *SubscriptionService) UpdateProfile(ctx context.Context, p identity.Principal, profile school.Profile) (*SchoolView, error) {
	if p.Role != identity.RoleAdmin && p.Role != identity.RolePrincipal {
		return nil, shared.NewForbiddenError("Only school administrators may edit the school profile")
	}
	sch, err := s.repo.FindByID(ctx, p.TenantID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := sch.UpdateProfile(profile, now); err != nil {
		return nil, err
	}
	sch.RefreshStatus(now)
	if err := s.repo.SaveWithLock(ctx, sch); err != nil {
		return nil, fmt.Errorf("failed to update school: %w", err)
	}
	return s.view(sch), nil
}

// UpdateSubscription changes the fee and start date of a school; the billing date
// and status follow.
func (s *SubscriptionService) UpdateSubscription(ctx context.Context, p identity.Principal, id uuid.UUID, amount decimal.Decimal, start time.Time) (*SchoolView, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "school_subscription", "update_subscription")
	defer span.End()

	if err := p.RequirePlatformAdmin(); err != nil {
		return nil, err
	}
	sch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := sch.SubscriptionStatus
	if err := sch.UpdateSubscription(amount, start, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, sch); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}
	s.logTransition(sch, before)
	return s.view(sch), nil
}

// Renew records a paid billing period by moving the next billing date one month on
func (s *SubscriptionService) Renew(ctx context.Context, p identity.Principal, id uuid.UUID) (*SchoolView, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "school_subscription", "renew")
	defer span.End()

	if err := p.RequirePlatformAdmin(); err != nil {
		return nil, err
	}
	sch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := sch.SubscriptionStatus
	if err := sch.Renew(s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, sch); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to renew subscription: %w", err)
	}
	s.logger.Info("Subscription renewed",
		zap.String("tenant_id", sch.ID.String()),
		zap.Time("next_billing_date", *sch.NextBillingDate))
	s.logTransition(sch, before)
	return s.view(sch), nil
}

func (s *SubscriptionService) refresh(ctx context.Context, sch *school.School) error {
	before := sch.SubscriptionStatus
	if !sch.RefreshStatus(s.now()) {
		return nil
	}
	written, err := s.repo.UpdateStatus(ctx, sch.ID, sch.SubscriptionStatus)
	if err != nil {
		return fmt.Errorf("failed to refresh subscription status: %w", err)
	}
	if written {
		s.logTransition(sch, before)
	}
	return nil
}

func (s *SubscriptionService) logTransition(sch *school.School, before school.SubscriptionStatus) {
	if sch.SubscriptionStatus == before {
		return
	}
	s.logger.Info("Subscription status changed",
		zap.String("tenant_id", sch.ID.String()),
		zap.String("from", before.String()),
		zap.String("to", sch.SubscriptionStatus.String()))
}

func (s *SubscriptionService) view(sch *school.School) *SchoolView {
	return &SchoolView{School: sch, RemainingDays: sch.DaysRemaining(s.now())}
}
