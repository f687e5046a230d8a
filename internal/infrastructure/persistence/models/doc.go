// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free of
// ORM concerns.
//
// Structure:
// - base.go: shared columns (id, timestamps, version, tombstone, tenant)
// - school.go: schools (tenants) and their subscription billing fields
// - academic.go: read-only students and classes
// - fee.go: fee structures, invoices, payments, handovers
package models
