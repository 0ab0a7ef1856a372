package models

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

type UserRole string
type Role = UserRole // Alias for compatibility

const (
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
	RoleAdmin      UserRole = "ADMIN"
	RoleTeacher    UserRole = "TEACHER"
)

var ErrEmailRequired = errors.New("user email is required")

// AuthorityPrefix is prepended to a role when it is bound as a request authority
const AuthorityPrefix = "ROLE_"

// Valid reports whether the role belongs to the closed role vocabulary
func (r UserRole) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleTeacher:
		return true
	}
	return false
}

// Authority returns the role as a request authority, e.g. ROLE_TEACHER
func (r UserRole) Authority() string {
	return AuthorityPrefix + string(r)
}

// HasTeacherProfile reports whether users with this role own a teacher profile and timetable
func (r UserRole) HasTeacherProfile() bool {
	return r == RoleTeacher || r == RoleAdmin
}

// ParseRole normalizes a role string such as "teacher" or "ROLE_TEACHER"
func ParseRole(s string) (UserRole, bool) {
	s = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), AuthorityPrefix)
	role := UserRole(s)
	return role, role.Valid()
}

type User struct {
	ID       uint     `json:"id" gorm:"primaryKey"`
	Name     string   `json:"name" gorm:"not null;size:100"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Username string   `json:"username" gorm:"uniqueIndex;not null;size:255"`
	Password string   `json:"-" gorm:"not null;size:255"`
	Role     UserRole `json:"role" gorm:"not null;size:20;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	TeacherProfile *TeacherProfile `json:"teacher_profile,omitempty" gorm:"foreignKey:UserID"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate defaults the name to the login handle; an email is mandatory
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(u.Email) == "" {
		return ErrEmailRequired
	}
	if strings.TrimSpace(u.Name) == "" {
		u.Name = u.Username
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	return nil
}
