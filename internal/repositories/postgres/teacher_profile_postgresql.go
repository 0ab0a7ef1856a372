package postgres

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lecture-service/internal/models"
	"github.com/SAP-F-2025/lecture-service/internal/repositories"
)

type TeacherProfilePostgreSQL struct {
	db *gorm.DB
}

func NewTeacherProfilePostgreSQL(db *gorm.DB) repositories.TeacherProfileRepository {
	return &TeacherProfilePostgreSQL{db: db}
}

func (t *TeacherProfilePostgreSQL) Create(ctx context.Context, profile *models.TeacherProfile) error {
	if err := t.db.WithContext(ctx).Omit("User", "Timetable").Create(profile).Error; err != nil {
		return translateError(err, "create teacher profile")
	}
	return nil
}

func (t *TeacherProfilePostgreSQL) Update(ctx context.Context, profile *models.TeacherProfile) error {
	result := t.db.WithContext(ctx).
		Model(&models.TeacherProfile{}).
		Where("id = ?", profile.ID).
		Select("school", "department", "designation").
		Updates(profile)
	return checkAffected(result, "update teacher profile")
}

func (t *TeacherProfilePostgreSQL) Delete(ctx context.Context, id uint) error {
	result := t.db.WithContext(ctx).Delete(&models.TeacherProfile{}, id)
	return checkAffected(result, "delete teacher profile")
}

func (t *TeacherProfilePostgreSQL) GetByID(ctx context.Context, id uint) (*models.TeacherProfile, error) {
	var profile models.TeacherProfile
	if err := t.db.WithContext(ctx).
		Preload("User").
		Preload("Timetable").
		First(&profile, id).Error; err != nil {
		return nil, translateError(err, "get teacher profile by id")
	}
	return &profile, nil
}

func (t *TeacherProfilePostgreSQL) GetByUserID(ctx context.Context, userID uint) (*models.TeacherProfile, error) {
	var profile models.TeacherProfile
	if err := t.db.WithContext(ctx).
		Preload("User").
		Preload("Timetable").
		Where("user_id = ?", userID).
		First(&profile).Error; err != nil {
		return nil, translateError(err, "get teacher profile by user")
	}
	return &profile, nil
}

func (t *TeacherProfilePostgreSQL) GetByUsername(ctx context.Context, username string) (*models.TeacherProfile, error) {
	var profile models.TeacherProfile
	users := t.db.Model(&models.User{}).Select("id").Where("username = ?", strings.TrimSpace(username))
	if err := t.db.WithContext(ctx).
		Preload("User").
		Preload("Timetable").
		Where("user_id IN (?)", users).
		First(&profile).Error; err != nil {
		return nil, translateError(err, "get teacher profile by username")
	}
	return &profile, nil
}

func (t *TeacherProfilePostgreSQL) List(ctx context.Context, filters repositories.TeacherProfileFilters) ([]*models.TeacherProfile, error) {
	query := t.db.WithContext(ctx).
		Model(&models.TeacherProfile{}).
		Preload("User").
		Preload("Timetable")
	if filters.School != "" {
		query = schoolEquals(query, "school", filters.School)
	}

	var profiles []*models.TeacherProfile
	if err := paginate(query.Order("id ASC"), filters.Limit, filters.Offset).
		Find(&profiles).Error; err != nil {
		return nil, translateError(err, "list teacher profiles")
	}
	return profiles, nil
}
