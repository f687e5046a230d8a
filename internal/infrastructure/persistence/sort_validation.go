package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// SchoolSortFields contains allowed sort fields for schools
var SchoolSortFields = map[string]bool{
	"created_at":        true,
	"name":              true,
	"next_billing_date": true,
}

// FeeStructureSortFields contains allowed sort fields for fee structures
var FeeStructureSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"amount":     true,
}

// FeeInvoiceSortFields contains allowed sort fields for invoices
var FeeInvoiceSortFields = map[string]bool{
	"created_at": true,
	"due_date":   true,
	"amount":     true,
	"status":     true,
}

// FeePaymentSortFields contains allowed sort fields for payments
var FeePaymentSortFields = map[string]bool{
	"created_at":  true,
	"paid_at":     true,
	"amount_paid": true,
}

// FeeHandoverSortFields contains allowed sort fields for handovers
var FeeHandoverSortFields = map[string]bool{
	"created_at":       true,
	"submitted_at":     true,
	"amount_submitted": true,
}
