// Package academic holds the read-only view of students and classes that the
// fee ledger references. Enrolment itself is managed elsewhere.
package academic

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Class is a class or section within a school
type Class struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Name      string
	Section   string
	DeletedAt *time.Time
}

// DisplayName returns "Grade 5 - A" style names, or just the name when there is no section
func (c *Class) DisplayName() string {
	if c.Section == "" {
		return c.Name
	}
	return c.Name + " - " + c.Section
}

// Student is an enrolled student
type Student struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	ClassID    *uuid.UUID
	Name       string
	RollNumber string
	Phone      string
	DeletedAt  *time.Time
}

// InClass reports whether the student is enrolled in classID
func (s *Student) InClass(classID uuid.UUID) bool {
	return s.ClassID != nil && *s.ClassID == classID
}

// StudentReader resolves students within a tenant.
// Soft-deleted students are never returned.
type StudentReader interface {
	// FindByID returns shared.ErrNotFound when the student is absent,
	// deleted, or owned by another tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Student, error)
}

// ClassReader resolves classes within a tenant.
type ClassReader interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Class, error)
}
