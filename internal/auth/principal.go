package auth

import (
	"context"

	"github.com/SAP-F-2025/lecture-service/internal/models"
)

// Principal is the caller bound to a request. The set of implementations is closed.
type Principal interface {
	// Subject is the login handle, empty for anonymous callers
	Subject() string
	Role() models.UserRole
	// Authority is the role as bound to the request, e.g. ROLE_TEACHER
	Authority() string
	principal()
}

type SuperAdmin struct {
	Handle string
}

// Admin is a dean scoped to the school of their own teacher profile
type Admin struct {
	Handle string
	School string
}

type Teacher struct {
	Handle string
	// ProfileID is zero when the teacher has no profile yet
	ProfileID uint
}

type Anonymous struct{}

func (p SuperAdmin) Subject() string       { return p.Handle }
func (p SuperAdmin) Role() models.UserRole { return models.RoleSuperAdmin }
func (p SuperAdmin) Authority() string     { return models.RoleSuperAdmin.Authority() }
func (SuperAdmin) principal()              {}

func (p Admin) Subject() string       { return p.Handle }
func (p Admin) Role() models.UserRole { return models.RoleAdmin }
func (p Admin) Authority() string     { return models.RoleAdmin.Authority() }
func (Admin) principal()              {}

func (p Teacher) Subject() string       { return p.Handle }
func (p Teacher) Role() models.UserRole { return models.RoleTeacher }
func (p Teacher) Authority() string     { return models.RoleTeacher.Authority() }
func (Teacher) principal()              {}

func (Anonymous) Subject() string       { return "" }
func (Anonymous) Role() models.UserRole { return "" }
func (Anonymous) Authority() string     { return "" }
func (Anonymous) principal()            {}

// ProfileInfo is the part of the caller's own teacher profile that principals carry
type ProfileInfo struct {
	ID     uint
	School string
}

// NewPrincipal builds the principal variant for a validated subject and role
func NewPrincipal(subject string, role models.UserRole, profile *ProfileInfo) Principal {
	if subject == "" {
		return Anonymous{}
	}
	switch role {
	case models.RoleSuperAdmin:
		return SuperAdmin{Handle: subject}
	case models.RoleAdmin:
		p := Admin{Handle: subject}
		if profile != nil {
			p.School = profile.School
		}
		return p
	case models.RoleTeacher:
		p := Teacher{Handle: subject}
		if profile != nil {
			p.ProfileID = profile.ID
		}
		return p
	}
	return Anonymous{}
}

// IsAuthenticated reports whether the principal carries an identity
func IsAuthenticated(p Principal) bool {
	_, anonymous := p.(Anonymous)
	return p != nil && !anonymous
}

type principalKey struct{}

// WithPrincipal binds the principal to the context
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the bound principal, Anonymous when none is bound
func PrincipalFrom(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalKey{}).(Principal); ok && p != nil {
		return p
	}
	return Anonymous{}
}
