package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/lecture-service/internal/models"
	"github.com/SAP-F-2025/lecture-service/internal/testutils"
)

func TestTeacherProfileService_Create(t *testing.T) {
	env := newTestEnv(t)
	dean := testutils.CreateAccount(t, env.db, "dean_eng", testutils.WithRole(models.RoleAdmin))
	svc := env.profiles()

	newTeacher := func(handle string) testutils.Account {
		return testutils.CreateAccount(t, env.db, handle, testutils.WithoutProfile())
	}

	t.Run("admin defaults to own school", func(t *testing.T) {
		teacher := newTeacher("teacher_a")
		resp, err := svc.Create(asAdmin(dean), &models.TeacherProfileCreateRequest{UserID: teacher.User.ID, Department: "Physics"})
		require.NoError(t, err)
		assert.Equal(t, "School of Engineering", resp.School)
		assert.NotNil(t, resp.TimetableID)

		_, err = env.repo.Timetable().GetByTeacherProfileID(context.Background(), resp.ID)
		assert.NoError(t, err)
	})

	t.Run("duplicate profile", func(t *testing.T) {
		teacher := testutils.CreateAccount(t, env.db, "teacher_b")
		_, err := svc.Create(asSuperAdmin("superadmin"), &models.TeacherProfileCreateRequest{UserID: teacher.User.ID})
		assertKind(t, err, ErrConflict)
		assertMessage(t, err, "Teacher profile already exists.")
	})

	t.Run("admin of another school", func(t *testing.T) {
		teacher := newTeacher("teacher_c")
		_, err := svc.Create(asAdmin(dean), &models.TeacherProfileCreateRequest{UserID: teacher.User.ID, School: "School of Science"})
		assertKind(t, err, ErrForbidden)
	})

	t.Run("user is not a teacher", func(t *testing.T) {
		admin := testutils.CreateAccount(t, env.db, "dean_x", testutils.WithRole(models.RoleAdmin), testutils.WithoutProfile())
		_, err := svc.Create(asSuperAdmin("superadmin"), &models.TeacherProfileCreateRequest{UserID: admin.User.ID})
		assertKind(t, err, ErrBadRequest)
	})

	t.Run("teacher caller", func(t *testing.T) {
		teacher := newTeacher("teacher_d")
		_, err := svc.Create(asTeacher(teacher), &models.TeacherProfileCreateRequest{UserID: teacher.User.ID})
		assertKind(t, err, ErrForbidden)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Create(asSuperAdmin("superadmin"), &models.TeacherProfileCreateRequest{UserID: 9999, School: "School of Science"})
		assertKind(t, err, ErrNotFound)
	})
}

func TestTeacherProfileService_ListScopes(t *testing.T) {
	env := newTestEnv(t)
	engDean := testutils.CreateAccount(t, env.db, "dean_eng", testutils.WithRole(models.RoleAdmin))
	ananya := testutils.CreateAccount(t, env.db, "teacher_ananya")
	testutils.CreateAccount(t, env.db, "teacher_sci", testutils.WithSchool("School of Science"))
	svc := env.profiles()

	all, err := svc.List(asSuperAdmin("superadmin"))
	require.NoError(t, err)
	assert.Len(t, all, 3)

	eng, err := svc.List(asAdmin(engDean))
	require.NoError(t, err)
	assert.Len(t, eng, 2)

	mine, err := svc.List(asTeacher(ananya))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, ananya.Profile.ID, mine[0].ID)

	_, err = svc.List(context.Background())
	assertKind(t, err, ErrUnauthorized)

	me, err := svc.GetMine(asTeacher(ananya))
	require.NoError(t, err)
	assert.Equal(t, "teacher_ananya@example.edu", me.Email)
}

func TestTeacherProfileService_DeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	ananya := testutils.CreateAccount(t, env.db, "teacher_ananya")
	sciDean := testutils.CreateAccount(t, env.db, "dean_sci",
		testutils.WithRole(models.RoleAdmin), testutils.WithSchool("School of Science"))
	slot := testutils.CreateClassSlot(t, env.db, ananya.Timetable.ID)

	_, err := env.lectures().CreateLecture(asTeacher(ananya), &models.LectureCreateRequest{
		TeacherProfileID: ananya.Profile.ID,
		ClassSlotID:      &slot.ID,
		LectureTitle:     "Caches",
		Audio:            audioUpload("bytes"),
	})
	require.NoError(t, err)
	testutils.CreateLecture(t, env.db, ananya.Profile.ID, nil, nil)
	svc := env.profiles()

	err = svc.Delete(asAdmin(sciDean), ananya.Profile.ID)
	assertKind(t, err, ErrForbidden)

	err = svc.Delete(asTeacher(ananya), ananya.Profile.ID)
	assertKind(t, err, ErrForbidden)

	require.NoError(t, svc.Delete(asSuperAdmin("superadmin"), ananya.Profile.ID))

	assert.Zero(t, env.countLectures(t))
	assert.Empty(t, env.storedFiles(t))
	remaining := map[string]int64{}
	for name, query := range map[string]*gorm.DB{
		"profile":   env.db.Model(&models.TeacherProfile{}).Where("id = ?", ananya.Profile.ID),
		"timetable": env.db.Model(&models.Timetable{}).Where("id = ?", ananya.Timetable.ID),
		"slot":      env.db.Model(&models.ClassSlot{}).Where("id = ?", slot.ID),
	} {
		var n int64
		require.NoError(t, query.Count(&n).Error)
		remaining[name] = n
	}
	assert.Equal(t, map[string]int64{"profile": 0, "timetable": 0, "slot": 0}, remaining)

	var users int64
	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", ananya.User.ID).Count(&users).Error)
	assert.Equal(t, int64(1), users)
}
