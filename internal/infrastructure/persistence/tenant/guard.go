// Package tenant installs GORM callbacks that keep rows of tenant-owned tables
// inside their school.
//
// Repositories scope every statement explicitly (see persistence.TenantScope).
// The guard catches the statements that forget to: inserts without a tenant and
// reads or writes on a tenant table whose WHERE clause never mentions tenant_id.
//
// Usage:
//
//	if err := tenant.Register(db, tenant.WithLogger(log)); err != nil { ... }
package tenant

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrTenantIDRequired is returned when a tenant-owned row is inserted without a tenant
var ErrTenantIDRequired = errors.New("tenant_id is required")

// ErrUnscopedStatement is returned in strict mode for statements missing a tenant condition
var ErrUnscopedStatement = errors.New("statement on tenant table has no tenant_id condition")

const defaultColumn = "tenant_id"

// Guard holds the callback configuration
type Guard struct {
	column string
	strict bool
	logger *zap.Logger
}

// Option configures a Guard
type Option func(*Guard)

// WithStrict rejects unscoped statements instead of logging them
func WithStrict() Option {
	return func(g *Guard) {
		g.strict = true
	}
}

// WithLogger sets the logger used for unscoped statements in lenient mode
func WithLogger(logger *zap.Logger) Option {
	return func(g *Guard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithColumn overrides the tenant column name
func WithColumn(column string) Option {
	return func(g *Guard) {
		if column != "" {
			g.column = column
		}
	}
}

// Register installs the guard callbacks on db
func Register(db *gorm.DB, opts ...Option) error {
	g := &Guard{column: defaultColumn, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}

	cb := db.Callback()
	if err := cb.Create().Before("gorm:create").Register("tenant:guard_create", g.beforeCreate); err != nil {
		return fmt.Errorf("failed to register create guard: %w", err)
	}
	if err := cb.Query().Before("gorm:query").Register("tenant:guard_query", g.beforeStatement); err != nil {
		return fmt.Errorf("failed to register query guard: %w", err)
	}
	if err := cb.Row().Before("gorm:row").Register("tenant:guard_row", g.beforeStatement); err != nil {
		return fmt.Errorf("failed to register row guard: %w", err)
	}
	if err := cb.Update().Before("gorm:update").Register("tenant:guard_update", g.beforeStatement); err != nil {
		return fmt.Errorf("failed to register update guard: %w", err)
	}
	if err := cb.Delete().Before("gorm:delete").Register("tenant:guard_delete", g.beforeStatement); err != nil {
		return fmt.Errorf("failed to register delete guard: %w", err)
	}
	return nil
}

func (g *Guard) beforeCreate(db *gorm.DB) {
	if db.Statement.Schema == nil {
		return
	}
	field := db.Statement.Schema.LookUpField(g.column)
	if field == nil {
		return
	}

	ctx := db.Statement.Context
	rv := reflect.Indirect(db.Statement.ReflectValue)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if _, zero := field.ValueOf(ctx, reflect.Indirect(rv.Index(i))); zero {
				_ = db.AddError(fmt.Errorf("%w: %s", ErrTenantIDRequired, db.Statement.Table))
				return
			}
		}
	case reflect.Struct:
		if _, zero := field.ValueOf(ctx, rv); zero {
			_ = db.AddError(fmt.Errorf("%w: %s", ErrTenantIDRequired, db.Statement.Table))
		}
	}
}

func (g *Guard) beforeStatement(db *gorm.DB) {
	if db.Statement.Schema == nil || db.Statement.Schema.LookUpField(g.column) == nil {
		return
	}
	if g.scoped(db.Statement) {
		return
	}
	if g.strict {
		_ = db.AddError(fmt.Errorf("%w: %s", ErrUnscopedStatement, db.Statement.Table))
		return
	}
	g.logger.Warn("Statement on tenant table without tenant condition",
		zap.String("table", db.Statement.Table))
}

// scoped reports whether the WHERE clause, or raw SQL, references the tenant column
func (g *Guard) scoped(stmt *gorm.Statement) bool {
	if c, ok := stmt.Clauses["WHERE"]; ok {
		if where, ok := c.Expression.(clause.Where); ok {
			for _, expr := range where.Exprs {
				if g.mentions(expr) {
					return true
				}
			}
		}
	}
	sql := stmt.SQL.String()
	return sql != "" && strings.Contains(sql, g.column)
}

func (g *Guard) mentions(expr clause.Expression) bool {
	switch e := expr.(type) {
	case clause.Expr:
		return strings.Contains(e.SQL, g.column)
	case clause.NamedExpr:
		return strings.Contains(e.SQL, g.column)
	case clause.Eq:
		return g.isColumn(e.Column)
	case clause.IN:
		return g.isColumn(e.Column)
	case clause.AndConditions:
		for _, cond := range e.Exprs {
			if g.mentions(cond) {
				return true
			}
		}
	}
	// OR branches do not guarantee the filter applies to every row
	return false
}

func (g *Guard) isColumn(col any) bool {
	switch c := col.(type) {
	case clause.Column:
		return c.Name == g.column
	case string:
		return c == g.column
	}
	return false
}
