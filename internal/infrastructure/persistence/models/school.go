package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/schoolfee/backend/internal/domain/school"
)

// SchoolModel is the persistence model for the School (tenant) aggregate
type SchoolModel struct {
	AggregateModel
	Name                  string                    `gorm:"type:varchar(200);not null"`
	LogoKey               string                    `gorm:"type:varchar(500)"`
	PrincipalName         string                    `gorm:"type:varchar(200)"`
	Address               string                    `gorm:"type:varchar(500)"`
	Phone                 string                    `gorm:"type:varchar(50)"`
	Email                 string                    `gorm:"type:varchar(200)"`
	SubscriptionAmount    decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	SubscriptionStartDate time.Time                 `gorm:"not null"`
	NextBillingDate       *time.Time                `gorm:"index"`
	SubscriptionStatus    school.SubscriptionStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
}

// TableName returns the table name for GORM
func (SchoolModel) TableName() string {
	return "schools"
}

// ToDomain converts the persistence model to a domain School
func (m *SchoolModel) ToDomain() *school.School {
	s := &school.School{
		Name:                  m.Name,
		LogoKey:               m.LogoKey,
		PrincipalName:         m.PrincipalName,
		Address:               m.Address,
		Phone:                 m.Phone,
		Email:                 m.Email,
		SubscriptionAmount:    m.SubscriptionAmount,
		SubscriptionStartDate: m.SubscriptionStartDate,
		NextBillingDate:       m.NextBillingDate,
		SubscriptionStatus:    m.SubscriptionStatus,
	}
	m.PopulateAggregateRoot(&s.BaseAggregateRoot, &s.SoftDeletable)
	return s
}

// SchoolModelFromDomain creates a persistence model from a domain School
func SchoolModelFromDomain(s *school.School) *SchoolModel {
	m := &SchoolModel{
		Name:                  s.Name,
		LogoKey:               s.LogoKey,
		PrincipalName:         s.PrincipalName,
		Address:               s.Address,
		Phone:                 s.Phone,
		Email:                 s.Email,
		SubscriptionAmount:    s.SubscriptionAmount,
		SubscriptionStartDate: s.SubscriptionStartDate,
		NextBillingDate:       s.NextBillingDate,
		SubscriptionStatus:    s.SubscriptionStatus,
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot, s.SoftDeletable)
	return m
}
