package identity

import (
	"strings"

	"github.com/google/uuid"

	"github.com/schoolfee/backend/internal/domain/shared"
)

// Role is the caller's role inside a school
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RolePrincipal  Role = "PRINCIPAL"
	RoleAccountant Role = "ACCOUNTANT"
	RoleCashier    Role = "CASHIER"
	RoleTeacher    Role = "TEACHER"
	RoleStudent    Role = "STUDENT"
	RoleParent     Role = "PARENT"
)

// ParseRole normalizes a role string from a token claim
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", shared.NewValidationError("INVALID_ROLE", "Unknown role: "+s)
	}
	return r, nil
}

// IsValid checks if the role is a known value
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RolePrincipal, RoleAccountant, RoleCashier,
		RoleTeacher, RoleStudent, RoleParent:
		return true
	}
	return false
}

// String returns the string representation
func (r Role) String() string {
	return string(r)
}

// IsStaff reports whether the role manages school finances
func (r Role) IsStaff() bool {
	switch r {
	case RoleAdmin, RolePrincipal, RoleAccountant, RoleCashier:
		return true
	}
	return false
}

// CollectsCash reports whether the role physically collects fees and hands them over
func (r Role) CollectsCash() bool {
	return r == RoleAccountant || r == RoleCashier
}

// Principal is the authenticated caller of a core operation. It is resolved by
// the access-control layer and trusted as-is.
type Principal struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Role     Role
	// PlatformAdmin marks operators of the hosting platform who manage
	// schools and their subscriptions across tenants
	PlatformAdmin bool
}

// NewPrincipal builds a principal, rejecting zero identifiers and unknown roles
func NewPrincipal(tenantID, userID uuid.UUID, role Role) (Principal, error) {
	if tenantID == uuid.Nil {
		return Principal{}, shared.NewValidationError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if userID == uuid.Nil {
		return Principal{}, shared.NewValidationError("INVALID_USER", "User ID cannot be empty")
	}
	if !role.IsValid() {
		return Principal{}, shared.NewValidationError("INVALID_ROLE", "Unknown role: "+string(role))
	}
	return Principal{TenantID: tenantID, UserID: userID, Role: role}, nil
}

// RequireStaff fails with Forbidden unless the principal has a staff role
func (p Principal) RequireStaff() error {
	if !p.Role.IsStaff() {
		return shared.NewForbiddenError("Only school staff may perform this operation")
	}
	return nil
}

// RequireCollector fails with Forbidden unless the principal collects cash
func (p Principal) RequireCollector() error {
	if !p.Role.CollectsCash() {
		return shared.NewForbiddenError("Only accountants and cashiers may submit handovers")
	}
	return nil
}

// RequirePlatformAdmin fails with Forbidden unless the principal operates the platform
func (p Principal) RequirePlatformAdmin() error {
	if !p.PlatformAdmin {
		return shared.NewForbiddenError("Only platform administrators may manage school subscriptions")
	}
	return nil
}
