package persistence

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/schoolfee/backend/internal/domain/shared"
)

// TenantScope applies tenant filtering to GORM queries
func TenantScope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// NotDeleted hides tombstoned rows. Every read of a soft-deletable table goes
// through it unless the caller explicitly asks for deleted rows.
func NotDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("deleted_at IS NULL")
}

// Paginate applies a whitelisted ORDER BY plus LIMIT/OFFSET from filter
func Paginate(filter shared.Filter, allowed map[string]bool, defaultField string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		f := filter.Normalize()
		field := ValidateSortField(f.OrderBy, allowed, defaultField)
		return db.Order(field + " " + ValidateSortOrder(f.OrderDir)).
			Limit(f.PageSize).
			Offset(f.Offset())
	}
}

// sumDecimal runs SELECT COALESCE(SUM(column), 0) over query
func sumDecimal(query *gorm.DB, column string) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := query.Select("COALESCE(SUM(" + column + "), 0) AS total").Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}
