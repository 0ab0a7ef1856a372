package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SAP-F-2025/lecture-service/internal/models"
)

func TestAuthorize_Precedence(t *testing.T) {
	engineering := Resource{OwnerHandle: "teacher_ananya", School: "School of Engineering"}

	tests := []struct {
		name      string
		principal Principal
		resource  Resource
		wantErr   error
	}{
		{name: "super admin", principal: SuperAdmin{Handle: "superadmin"}, resource: engineering},
		{name: "admin same school", principal: Admin{Handle: "dean", School: "School of Engineering"}, resource: engineering},
		{name: "admin school case-insensitive", principal: Admin{Handle: "dean", School: "school of engineering "}, resource: engineering},
		{name: "admin other school", principal: Admin{Handle: "dean", School: "School of Science"}, resource: engineering, wantErr: ErrForbidden},
		{name: "admin without school", principal: Admin{Handle: "dean"}, resource: Resource{OwnerHandle: "t"}, wantErr: ErrForbidden},
		{name: "owning teacher", principal: Teacher{Handle: "teacher_ananya", ProfileID: 7}, resource: engineering},
		{name: "other teacher", principal: Teacher{Handle: "teacher_ravi", ProfileID: 8}, resource: engineering, wantErr: ErrForbidden},
		{name: "anonymous", principal: Anonymous{}, resource: engineering, wantErr: ErrUnauthenticated},
		{name: "nil principal", principal: nil, resource: engineering, wantErr: ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.principal, tt.resource)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthorizeSchool(t *testing.T) {
	assert.NoError(t, AuthorizeSchool(SuperAdmin{Handle: "root"}, "School of Science"))
	assert.NoError(t, AuthorizeSchool(Admin{Handle: "dean", School: "School of Science"}, "SCHOOL OF SCIENCE"))
	assert.ErrorIs(t, AuthorizeSchool(Admin{Handle: "dean", School: "School of Engineering"}, "School of Science"), ErrForbidden)
	assert.ErrorIs(t, AuthorizeSchool(Teacher{Handle: "t"}, "School of Science"), ErrForbidden)
	assert.ErrorIs(t, AuthorizeSchool(Anonymous{}, "School of Science"), ErrUnauthenticated)
}

func TestRequireRole(t *testing.T) {
	assert.NoError(t, RequireRole(Teacher{Handle: "t"}, models.RoleTeacher))
	assert.ErrorIs(t, RequireRole(Admin{Handle: "a"}, models.RoleTeacher), ErrForbidden)
	assert.ErrorIs(t, RequireRole(Anonymous{}, models.RoleTeacher), ErrUnauthenticated)
	assert.NoError(t, RequireRole(SuperAdmin{Handle: "s"}, models.RoleAdmin, models.RoleSuperAdmin))
}

func TestIsSelf(t *testing.T) {
	assert.True(t, IsSelf(Teacher{Handle: "a"}, "a"))
	assert.False(t, IsSelf(Teacher{Handle: "a"}, "b"))
	assert.False(t, IsSelf(Teacher{Handle: "a"}, ""))
	assert.False(t, IsSelf(Anonymous{}, ""))
}

func TestNewPrincipal(t *testing.T) {
	profile := &ProfileInfo{ID: 7, School: "School of Engineering"}

	assert.Equal(t, SuperAdmin{Handle: "root"}, NewPrincipal("root", models.RoleSuperAdmin, nil))
	assert.Equal(t, Admin{Handle: "dean", School: "School of Engineering"}, NewPrincipal("dean", models.RoleAdmin, profile))
	assert.Equal(t, Teacher{Handle: "t", ProfileID: 7}, NewPrincipal("t", models.RoleTeacher, profile))
	assert.Equal(t, Anonymous{}, NewPrincipal("", models.RoleTeacher, profile))
	assert.Equal(t, Anonymous{}, NewPrincipal("x", "STUDENT", nil))

	assert.Equal(t, "ROLE_TEACHER", NewPrincipal("t", models.RoleTeacher, nil).Authority())
}

func TestPrincipalContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, Anonymous{}, PrincipalFrom(ctx))

	ctx = WithPrincipal(ctx, Teacher{Handle: "t", ProfileID: 3})
	assert.Equal(t, Teacher{Handle: "t", ProfileID: 3}, PrincipalFrom(ctx))
	assert.True(t, IsAuthenticated(PrincipalFrom(ctx)))
}
