package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/schoolfee/backend/internal/domain/academic"
)

// ClassModel is the persistence model for classes. The fee ledger only reads it.
type ClassModel struct {
	BaseModel
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	Name      string     `gorm:"type:varchar(100);not null"`
	Section   string     `gorm:"type:varchar(50)"`
	DeletedAt *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (ClassModel) TableName() string {
	return "classes"
}

// ToDomain converts the persistence model to a domain Class
func (m *ClassModel) ToDomain() *academic.Class {
	return &academic.Class{
		ID:        m.ID,
		TenantID:  m.TenantID,
		Name:      m.Name,
		Section:   m.Section,
		DeletedAt: m.DeletedAt,
	}
}

// StudentModel is the persistence model for students. The fee ledger only reads it.
type StudentModel struct {
	BaseModel
	TenantID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	ClassID    *uuid.UUID `gorm:"type:uuid;index"`
	Name       string     `gorm:"type:varchar(200);not null"`
	RollNumber string     `gorm:"type:varchar(50)"`
	Phone      string     `gorm:"type:varchar(50)"`
	DeletedAt  *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (StudentModel) TableName() string {
	return "students"
}

// ToDomain converts the persistence model to a domain Student
func (m *StudentModel) ToDomain() *academic.Student {
	return &academic.Student{
		ID:         m.ID,
		TenantID:   m.TenantID,
		ClassID:    m.ClassID,
		Name:       m.Name,
		RollNumber: m.RollNumber,
		Phone:      m.Phone,
		DeletedAt:  m.DeletedAt,
	}
}
