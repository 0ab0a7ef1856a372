package repositories

import (
	"context"

	"github.com/SAP-F-2025/lecture-service/internal/models"
)

// TeacherProfileRepository reads return profiles with User loaded
type TeacherProfileRepository interface {
	Create(ctx context.Context, profile *models.TeacherProfile) error
	Update(ctx context.Context, profile *models.TeacherProfile) error
	Delete(ctx context.Context, id uint) error

	GetByID(ctx context.Context, id uint) (*models.TeacherProfile, error)
	GetByUserID(ctx context.Context, userID uint) (*models.TeacherProfile, error)
	GetByUsername(ctx context.Context, username string) (*models.TeacherProfile, error)
	List(ctx context.Context, filters TeacherProfileFilters) ([]*models.TeacherProfile, error)
}

// TimetableRepository reads return timetables with TeacherProfile.User loaded
type TimetableRepository interface {
	Create(ctx context.Context, timetable *models.Timetable) error
	DeleteByTeacherProfileID(ctx context.Context, profileID uint) error

	GetByID(ctx context.Context, id uint) (*models.Timetable, error)
	GetByTeacherProfileID(ctx context.Context, profileID uint) (*models.Timetable, error)
	List(ctx context.Context, school string) ([]*models.Timetable, error)
}

// ClassSlotRepository reads return slots with Timetable.TeacherProfile.User loaded
type ClassSlotRepository interface {
	Create(ctx context.Context, slot *models.ClassSlot) error
	Update(ctx context.Context, slot *models.ClassSlot) error
	Delete(ctx context.Context, id uint) error
	DeleteByTimetableID(ctx context.Context, timetableID uint) error

	GetByID(ctx context.Context, id uint) (*models.ClassSlot, error)
	List(ctx context.Context, filters ClassSlotFilters) ([]*models.ClassSlot, error)
}

// LectureRepository reads return lectures with TeacherProfile.User loaded
type LectureRepository interface {
	Create(ctx context.Context, lecture *models.Lecture) error
	Delete(ctx context.Context, id uint) error
	DeleteByTeacherProfileID(ctx context.Context, profileID uint) error
	// DetachClassSlot clears the class slot reference of every lecture recorded in it
	DetachClassSlot(ctx context.Context, slotID uint) error

	GetByID(ctx context.Context, id uint) (*models.Lecture, error)
	ListByTeacherProfile(ctx context.Context, profileID uint, filters LectureFilters) ([]*models.Lecture, error)
	ListByClassSlot(ctx context.Context, slotID uint) ([]*models.Lecture, error)
}
