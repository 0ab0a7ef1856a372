package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lecture-service/internal/models"
	"github.com/SAP-F-2025/lecture-service/internal/repositories"
)

type ClassSlotPostgreSQL struct {
	db *gorm.DB
}

func NewClassSlotPostgreSQL(db *gorm.DB) repositories.ClassSlotRepository {
	return &ClassSlotPostgreSQL{db: db}
}

func (c *ClassSlotPostgreSQL) Create(ctx context.Context, slot *models.ClassSlot) error {
	if err := c.db.WithContext(ctx).Omit("Timetable").Create(slot).Error; err != nil {
		return translateError(err, "create class slot")
	}
	return nil
}

func (c *ClassSlotPostgreSQL) Update(ctx context.Context, slot *models.ClassSlot) error {
	result := c.db.WithContext(ctx).
		Model(&models.ClassSlot{}).
		Where("id = ?", slot.ID).
		Select("room_number", "day_of_week", "start_time", "end_time", "course_name", "subject_name").
		Updates(slot)
	return checkAffected(result, "update class slot")
}

func (c *ClassSlotPostgreSQL) Delete(ctx context.Context, id uint) error {
	result := c.db.WithContext(ctx).Delete(&models.ClassSlot{}, id)
	return checkAffected(result, "delete class slot")
}

func (c *ClassSlotPostgreSQL) DeleteByTimetableID(ctx context.Context, timetableID uint) error {
	if err := c.db.WithContext(ctx).
		Where("timetable_id = ?", timetableID).
		Delete(&models.ClassSlot{}).Error; err != nil {
		return translateError(err, "delete class slots by timetable")
	}
	return nil
}

func (c *ClassSlotPostgreSQL) GetByID(ctx context.Context, id uint) (*models.ClassSlot, error) {
	var slot models.ClassSlot
	if err := c.db.WithContext(ctx).
		Preload("Timetable.TeacherProfile.User").
		First(&slot, id).Error; err != nil {
		return nil, translateError(err, "get class slot by id")
	}
	return &slot, nil
}

func (c *ClassSlotPostgreSQL) List(ctx context.Context, filters repositories.ClassSlotFilters) ([]*models.ClassSlot, error) {
	query := c.db.WithContext(ctx).
		Model(&models.ClassSlot{}).
		Preload("Timetable.TeacherProfile.User")
	if filters.TimetableID != nil {
		query = query.Where("timetable_id = ?", *filters.TimetableID)
	}
	if filters.DayOfWeek != nil {
		query = query.Where("day_of_week = ?", *filters.DayOfWeek)
	}
	if filters.School != "" {
		profiles := schoolEquals(c.db.Model(&models.TeacherProfile{}).Select("id"), "school", filters.School)
		timetables := c.db.Model(&models.Timetable{}).Select("id").Where("teacher_profile_id IN (?)", profiles)
		query = query.Where("timetable_id IN (?)", timetables)
	}

	var slots []*models.ClassSlot
	if err := query.Order("id ASC").Find(&slots).Error; err != nil {
		return nil, translateError(err, "list class slots")
	}
	return slots, nil
}
