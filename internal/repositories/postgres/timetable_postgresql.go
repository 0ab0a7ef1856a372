package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lecture-service/internal/models"
	"github.com/SAP-F-2025/lecture-service/internal/repositories"
)

type TimetablePostgreSQL struct {
	db *gorm.DB
}

func NewTimetablePostgreSQL(db *gorm.DB) repositories.TimetableRepository {
	return &TimetablePostgreSQL{db: db}
}

func (t *TimetablePostgreSQL) Create(ctx context.Context, timetable *models.Timetable) error {
	if err := t.db.WithContext(ctx).Omit("TeacherProfile", "ClassSlots").Create(timetable).Error; err != nil {
		return translateError(err, "create timetable")
	}
	return nil
}

func (t *TimetablePostgreSQL) DeleteByTeacherProfileID(ctx context.Context, profileID uint) error {
	if err := t.db.WithContext(ctx).
		Where("teacher_profile_id = ?", profileID).
		Delete(&models.Timetable{}).Error; err != nil {
		return translateError(err, "delete timetable")
	}
	return nil
}

func (t *TimetablePostgreSQL) preloaded(ctx context.Context) *gorm.DB {
	return t.db.WithContext(ctx).
		Preload("TeacherProfile.User").
		Preload("ClassSlots", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		})
}

func (t *TimetablePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Timetable, error) {
	var timetable models.Timetable
	if err := t.preloaded(ctx).First(&timetable, id).Error; err != nil {
		return nil, translateError(err, "get timetable by id")
	}
	return &timetable, nil
}

func (t *TimetablePostgreSQL) GetByTeacherProfileID(ctx context.Context, profileID uint) (*models.Timetable, error) {
	var timetable models.Timetable
	if err := t.preloaded(ctx).
		Where("teacher_profile_id = ?", profileID).
		First(&timetable).Error; err != nil {
		return nil, translateError(err, "get timetable by teacher profile")
	}
	return &timetable, nil
}

// List returns all timetables, restricted to the teachers of one school when school is set
func (t *TimetablePostgreSQL) List(ctx context.Context, school string) ([]*models.Timetable, error) {
	query := t.preloaded(ctx).Model(&models.Timetable{})
	if school != "" {
		profiles := schoolEquals(t.db.Model(&models.TeacherProfile{}).Select("id"), "school", school)
		query = query.Where("teacher_profile_id IN (?)", profiles)
	}

	var timetables []*models.Timetable
	if err := query.Order("id ASC").Find(&timetables).Error; err != nil {
		return nil, translateError(err, "list timetables")
	}
	return timetables, nil
}
