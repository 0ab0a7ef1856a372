package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/lecture-service/internal/models"
	"github.com/SAP-F-2025/lecture-service/internal/repositories"
	"github.com/SAP-F-2025/lecture-service/internal/testutils"
)

func TestUserManagement_Create(t *testing.T) {
	env := newTestEnv(t)
	svc := env.users()
	ctx := asSuperAdmin("superadmin")

	resp, err := svc.Create(ctx, &models.UserCreateRequest{
		Name:     "Ravi Kumar",
		Email:    "ravi@example.edu",
		Password: "s3cret-pass",
		Role:     models.RoleTeacher,
		School:   "School of Science",
	})
	require.NoError(t, err)
	assert.Equal(t, "ravi@example.edu", resp.Username)

	profile, err := env.repo.TeacherProfile().GetByUserID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "School of Science", profile.School)

	_, err = svc.Create(ctx, &models.UserCreateRequest{Email: "RAVI@example.edu", Password: "s3cret-pass", Role: models.RoleAdmin})
	assertKind(t, err, ErrConflict)
	assertMessage(t, err, "Email already exists.")

	super, err := svc.Create(ctx, &models.UserCreateRequest{Email: "root@example.edu", Password: "s3cret-pass", Role: models.RoleSuperAdmin})
	require.NoError(t, err)
	_, err = env.repo.TeacherProfile().GetByUserID(context.Background(), super.ID)
	assert.True(t, repositories.IsNotFoundError(err), "got %v", err)

	_, err = svc.Create(ctx, &models.UserCreateRequest{Email: "x@example.edu", Password: "s3cret-pass", Role: "PRINCIPAL"})
	assertKind(t, err, ErrValidationFailed)
}

func TestUserManagement_RoleGates(t *testing.T) {
	env := newTestEnv(t)
	dean := testutils.CreateAccount(t, env.db, "dean_eng", testutils.WithRole(models.RoleAdmin))
	ananya := testutils.CreateAccount(t, env.db, "teacher_ananya")
	svc := env.users()

	list, err := svc.List(asAdmin(dean), UserListFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)

	_, err = svc.Get(asAdmin(dean), ananya.User.ID)
	assert.NoError(t, err)

	_, err = svc.Create(asAdmin(dean), &models.UserCreateRequest{Email: "x@example.edu", Password: "s3cret-pass", Role: models.RoleTeacher})
	assertKind(t, err, ErrForbidden)

	_, err = svc.List(asTeacher(ananya), UserListFilters{})
	assertKind(t, err, ErrForbidden)

	assertKind(t, svc.Delete(asAdmin(dean), ananya.User.ID), ErrForbidden)
}

func TestUserManagement_Update(t *testing.T) {
	env := newTestEnv(t)
	ananya := testutils.CreateAccount(t, env.db, "teacher_ananya")
	bare := testutils.CreateAccount(t, env.db, "teacher_bare", testutils.WithoutProfile())
	super := testutils.CreateAccount(t, env.db, "root", testutils.WithRole(models.RoleSuperAdmin))
	svc := env.users()
	ctx := asSuperAdmin("superadmin")

	_, err := svc.Update(ctx, ananya.User.ID, &models.UserUpdateRequest{Email: testutils.Ptr("teacher_bare@example.edu")})
	assertKind(t, err, ErrConflict)

	_, err = svc.Update(ctx, ananya.User.ID, &models.UserUpdateRequest{Role: testutils.Ptr(models.RoleAdmin)})
	assertKind(t, err, ErrBadRequest)
	assertMessage(t, err, "Cannot change role from TEACHER without removing profile first.")

	resp, err := svc.Update(ctx, bare.User.ID, &models.UserUpdateRequest{Role: testutils.Ptr(models.RoleAdmin), Name: testutils.Ptr("Bare Dean")})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, resp.Role)
	assert.Equal(t, "Bare Dean", resp.Name)

	resp, err = svc.Update(ctx, super.User.ID, &models.UserUpdateRequest{Role: testutils.Ptr(models.RoleTeacher)})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, resp.Role)
	profile, err := env.repo.TeacherProfile().GetByUserID(context.Background(), super.User.ID)
	require.NoError(t, err)
	require.NotNil(t, profile.Timetable)

	resp, err = svc.Update(ctx, ananya.User.ID, &models.UserUpdateRequest{Email: testutils.Ptr("ananya.new@example.edu")})
	require.NoError(t, err)
	assert.Equal(t, "ananya.new@example.edu", resp.Email)
	assert.Equal(t, "teacher_ananya", resp.Username)

	lin, err := svc.Create(ctx, &models.UserCreateRequest{Email: "lin@example.edu", Password: "s3cret-pass", Role: models.RoleAdmin, School: "School of Science"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, lin.ID, &models.UserUpdateRequest{Email: testutils.Ptr("lin.new@example.edu")})
	require.NoError(t, err)
	// the old address is still the login handle of lin
	_, err = svc.Update(ctx, bare.User.ID, &models.UserUpdateRequest{Email: testutils.Ptr("lin@example.edu")})
	assertKind(t, err, ErrConflict)
	assertMessage(t, err, "Email already exists.")
	_, err = svc.Update(ctx, lin.ID, &models.UserUpdateRequest{Email: testutils.Ptr("lin@example.edu")})
	require.NoError(t, err)

	_, err = svc.Update(ctx, 9999, &models.UserUpdateRequest{Name: testutils.Ptr("ghost")})
	assertKind(t, err, ErrNotFound)
}

func TestUserManagement_DeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	ananya := testutils.CreateAccount(t, env.db, "teacher_ananya")
	testutils.CreateAccount(t, env.db, "superadmin", testutils.WithRole(models.RoleSuperAdmin))
	slot := testutils.CreateClassSlot(t, env.db, ananya.Timetable.ID)
	_, err := env.lectures().CreateLecture(asTeacher(ananya), &models.LectureCreateRequest{
		TeacherProfileID: ananya.Profile.ID,
		ClassSlotID:      &slot.ID,
		LectureTitle:     "Pipelines",
		Audio:            audioUpload("bytes"),
	})
	require.NoError(t, err)
	svc := env.users()
	ctx := asSuperAdmin("superadmin")

	superUser, err := env.repo.User().GetByUsername(context.Background(), "superadmin")
	require.NoError(t, err)
	err = svc.Delete(ctx, superUser.ID)
	assertKind(t, err, ErrBadRequest)

	require.NoError(t, svc.Delete(ctx, ananya.User.ID))
	assert.Zero(t, env.countLectures(t))
	assert.Empty(t, env.storedFiles(t))

	_, err = svc.Get(ctx, ananya.User.ID)
	assertKind(t, err, ErrNotFound)
	var profiles int64
	require.NoError(t, env.db.Model(&models.TeacherProfile{}).Where("user_id = ?", ananya.User.ID).Count(&profiles).Error)
	assert.Zero(t, profiles)
}
