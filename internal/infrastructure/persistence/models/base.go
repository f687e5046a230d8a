package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/schoolfee/backend/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel extends BaseModel with the optimistic locking version
// and the soft-delete tombstone.
type AggregateModel struct {
	BaseModel
	Version   int        `gorm:"not null;default:1"`
	DeletedAt *time.Time `gorm:"index"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot, s shared.SoftDeletable) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
	m.DeletedAt = s.DeletedAt
}

// PopulateAggregateRoot fills a domain BaseAggregateRoot from the model
func (m *AggregateModel) PopulateAggregateRoot(a *shared.BaseAggregateRoot, s *shared.SoftDeletable) {
	a.BaseEntity = m.BaseModel.ToDomain()
	a.Version = m.Version
	s.DeletedAt = m.DeletedAt
}

// TenantAggregateModel adds the owning tenant to AggregateModel
type TenantAggregateModel struct {
	AggregateModel
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// FromDomainTenantAggregateRoot populates TenantAggregateModel from domain TenantAggregateRoot
func (m *TenantAggregateModel) FromDomainTenantAggregateRoot(t shared.TenantAggregateRoot, s shared.SoftDeletable) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot, s)
	m.TenantID = t.TenantID
}

// PopulateTenantAggregateRoot populates a domain TenantAggregateRoot from persistence model
func (m *TenantAggregateModel) PopulateTenantAggregateRoot(t *shared.TenantAggregateRoot, s *shared.SoftDeletable) {
	m.PopulateAggregateRoot(&t.BaseAggregateRoot, s)
	t.TenantID = m.TenantID
}
