package auth

import (
	"errors"
	"strings"

	"github.com/SAP-F-2025/lecture-service/internal/models"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
)

// Resource is the ownership chain head of a target: the login handle owning the teacher
// profile and that profile's school
type Resource struct {
	OwnerHandle string
	School      string
}

// ResourceOf derives the resource for a teacher profile with its user loaded
func ResourceOf(profile *models.TeacherProfile) Resource {
	if profile == nil {
		return Resource{}
	}
	return Resource{OwnerHandle: profile.OwnerHandle(), School: profile.School}
}

// IsSelf reports whether the caller owns the resource
func IsSelf(p Principal, ownerHandle string) bool {
	return IsAuthenticated(p) && ownerHandle != "" && p.Subject() == ownerHandle
}

func HasRole(p Principal, role models.UserRole) bool {
	return IsAuthenticated(p) && p.Role() == role
}

func HasAnyRole(p Principal, roles ...models.UserRole) bool {
	for _, role := range roles {
		if HasRole(p, role) {
			return true
		}
	}
	return false
}

// RequireRole fails with ErrUnauthenticated for anonymous callers and ErrForbidden for other roles
func RequireRole(p Principal, roles ...models.UserRole) error {
	if !IsAuthenticated(p) {
		return ErrUnauthenticated
	}
	if !HasAnyRole(p, roles...) {
		return ErrForbidden
	}
	return nil
}

// Authorize applies the access precedence: super admin, admin of the same school, owning teacher
func Authorize(p Principal, res Resource) error {
	switch v := p.(type) {
	case SuperAdmin:
		return nil
	case Admin:
		if SameSchool(v.School, res.School) {
			return nil
		}
		return ErrForbidden
	case Teacher:
		if IsSelf(v, res.OwnerHandle) {
			return nil
		}
		return ErrForbidden
	case Anonymous, nil:
		return ErrUnauthenticated
	}
	return ErrForbidden
}

// AuthorizeSchool decides access to school-wide data such as faculty statistics
func AuthorizeSchool(p Principal, school string) error {
	switch v := p.(type) {
	case SuperAdmin:
		return nil
	case Admin:
		if SameSchool(v.School, school) {
			return nil
		}
		return ErrForbidden
	case Anonymous, nil:
		return ErrUnauthenticated
	}
	return ErrForbidden
}

// SameSchool compares school names case-insensitively; an empty school never matches
func SameSchool(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}
