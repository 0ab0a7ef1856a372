// Package testutils builds in-memory databases and seeded fixtures for package tests.
package testutils

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SAP-F-2025/lecture-service/internal/models"
)

// NewTestDB opens an isolated in-memory sqlite database with every model migrated
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

type teacherOptions struct {
	role       models.UserRole
	school     string
	department string
	password   string
	noProfile  bool
}

type TeacherOption func(*teacherOptions)

func WithRole(role models.UserRole) TeacherOption {
	return func(o *teacherOptions) { o.role = role }
}

func WithSchool(school string) TeacherOption {
	return func(o *teacherOptions) { o.school = school }
}

func WithDepartment(department string) TeacherOption {
	return func(o *teacherOptions) { o.department = department }
}

// WithPasswordHash stores an already hashed password
func WithPasswordHash(hash string) TeacherOption {
	return func(o *teacherOptions) { o.password = hash }
}

// WithoutProfile creates the user only
func WithoutProfile() TeacherOption {
	return func(o *teacherOptions) { o.noProfile = true }
}

// Account is a seeded user with its optional profile and timetable
type Account struct {
	User      *models.User
	Profile   *models.TeacherProfile
	Timetable *models.Timetable
}

// CreateAccount inserts a user, by default a TEACHER of "School of Engineering" with profile and timetable
func CreateAccount(t *testing.T, db *gorm.DB, handle string, opts ...TeacherOption) Account {
	t.Helper()

	o := teacherOptions{
		role:       models.RoleTeacher,
		school:     "School of Engineering",
		department: "Computer Science",
		password:   "not-a-real-hash",
	}
	for _, opt := range opts {
		opt(&o)
	}

	user := &models.User{
		Name:     handle,
		Email:    handle + "@example.edu",
		Username: handle,
		Password: o.password,
		Role:     o.role,
	}
	require.NoError(t, db.Create(user).Error)

	account := Account{User: user}
	if o.noProfile || o.role == models.RoleSuperAdmin {
		return account
	}

	profile := &models.TeacherProfile{
		UserID:      user.ID,
		School:      o.school,
		Department:  o.department,
		Designation: "Lecturer",
	}
	require.NoError(t, db.Create(profile).Error)
	profile.User = user

	timetable := &models.Timetable{TeacherProfileID: profile.ID}
	require.NoError(t, db.Create(timetable).Error)

	account.Profile = profile
	account.Timetable = timetable
	return account
}

// CreateClassSlot inserts a Monday 09:00-10:00 slot in the given timetable
func CreateClassSlot(t *testing.T, db *gorm.DB, timetableID uint) *models.ClassSlot {
	t.Helper()

	slot := &models.ClassSlot{
		TimetableID: timetableID,
		RoomNumber:  "B-101",
		DayOfWeek:   models.Monday,
		StartTime:   datatypes.NewTime(9, 0, 0, 0),
		EndTime:     datatypes.NewTime(10, 0, 0, 0),
		CourseName:  "B.Tech",
		SubjectName: "Operating Systems",
	}
	require.NoError(t, db.Create(slot).Error)
	return slot
}

// CreateLecture inserts a lecture for a profile; a nil score leaves it unanalyzed
func CreateLecture(t *testing.T, db *gorm.DB, profileID uint, slotID *uint, score *float64) *models.Lecture {
	t.Helper()

	lecture := &models.Lecture{
		Title:            "Lecture " + uuid.NewString()[:8],
		AudioURL:         "https://cdn.example.edu/audio.mp3",
		Score:            score,
		TeacherProfileID: profileID,
		ClassSlotID:      slotID,
	}
	require.NoError(t, db.Create(lecture).Error)
	return lecture
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}
