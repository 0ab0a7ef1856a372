package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lecture-service/internal/models"
	"github.com/SAP-F-2025/lecture-service/internal/repositories"
)

type LecturePostgreSQL struct {
	db *gorm.DB
}

func NewLecturePostgreSQL(db *gorm.DB) repositories.LectureRepository {
	return &LecturePostgreSQL{db: db}
}

func (l *LecturePostgreSQL) Create(ctx context.Context, lecture *models.Lecture) error {
	if err := l.db.WithContext(ctx).Omit("TeacherProfile", "ClassSlot").Create(lecture).Error; err != nil {
		return translateError(err, "create lecture")
	}
	return nil
}

func (l *LecturePostgreSQL) Delete(ctx context.Context, id uint) error {
	result := l.db.WithContext(ctx).Delete(&models.Lecture{}, id)
	return checkAffected(result, "delete lecture")
}

func (l *LecturePostgreSQL) DeleteByTeacherProfileID(ctx context.Context, profileID uint) error {
	if err := l.db.WithContext(ctx).
		Where("teacher_profile_id = ?", profileID).
		Delete(&models.Lecture{}).Error; err != nil {
		return translateError(err, "delete lectures by teacher profile")
	}
	return nil
}

func (l *LecturePostgreSQL) DetachClassSlot(ctx context.Context, slotID uint) error {
	if err := l.db.WithContext(ctx).
		Model(&models.Lecture{}).
		Where("class_slot_id = ?", slotID).
		Update("class_slot_id", nil).Error; err != nil {
		return translateError(err, "detach lectures from class slot")
	}
	return nil
}

func (l *LecturePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Lecture, error) {
	var lecture models.Lecture
	if err := l.db.WithContext(ctx).
		Preload("TeacherProfile.User").
		First(&lecture, id).Error; err != nil {
		return nil, translateError(err, "get lecture by id")
	}
	return &lecture, nil
}

func (l *LecturePostgreSQL) ListByTeacherProfile(ctx context.Context, profileID uint, filters repositories.LectureFilters) ([]*models.Lecture, error) {
	query := l.db.WithContext(ctx).
		Preload("TeacherProfile.User").
		Where("teacher_profile_id = ?", profileID).
		Order("uploaded_at DESC").
		Order("id DESC")

	var lectures []*models.Lecture
	if err := paginate(query, filters.Limit, filters.Offset).Find(&lectures).Error; err != nil {
		return nil, translateError(err, "list lectures by teacher profile")
	}
	return lectures, nil
}

func (l *LecturePostgreSQL) ListByClassSlot(ctx context.Context, slotID uint) ([]*models.Lecture, error) {
	var lectures []*models.Lecture
	if err := l.db.WithContext(ctx).
		Preload("TeacherProfile.User").
		Where("class_slot_id = ?", slotID).
		Order("uploaded_at DESC").
		Order("id DESC").
		Find(&lectures).Error; err != nil {
		return nil, translateError(err, "list lectures by class slot")
	}
	return lectures, nil
}
