package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lecture-service/internal/models"
	"github.com/SAP-F-2025/lecture-service/internal/repositories"
)

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) repositories.DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ===== SCHOOL STATS =====

func (r *dashboardRepository) CountFacultyBySchool(ctx context.Context, tx *gorm.DB) ([]repositories.SchoolFacultyCount, error) {
	db := r.getDB(tx)
	var rows []repositories.SchoolFacultyCount

	if err := db.WithContext(ctx).
		Model(&models.TeacherProfile{}).
		Select("school, COUNT(*) AS count").
		Where("school IS NOT NULL AND school <> ''").
		Group("school").
		Order("school ASC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count faculty by school: %w", err)
	}

	return rows, nil
}

func (r *dashboardRepository) GetLectureStatsBySchool(ctx context.Context, tx *gorm.DB) ([]repositories.SchoolLectureStats, error) {
	db := r.getDB(tx)
	var rows []repositories.SchoolLectureStats

	if err := db.WithContext(ctx).
		Model(&models.Lecture{}).
		Select("teacher_profiles.school AS school, COUNT(lectures.id) AS lectures_analyzed, AVG(lectures.score) AS avg_score").
		Joins("JOIN teacher_profiles ON teacher_profiles.id = lectures.teacher_profile_id").
		Where("lectures.score IS NOT NULL").
		Group("teacher_profiles.school").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get lecture stats by school: %w", err)
	}

	return rows, nil
}

// ===== FACULTY STATS =====

func (r *dashboardRepository) GetTeacherStatsBySchool(ctx context.Context, tx *gorm.DB, school string) ([]repositories.TeacherLectureStats, error) {
	db := r.getDB(tx)
	var rows []repositories.TeacherLectureStats

	query := db.WithContext(ctx).
		Model(&models.Lecture{}).
		Select("lectures.teacher_profile_id AS teacher_profile_id, COUNT(lectures.id) AS lectures_analyzed, AVG(lectures.score) AS avg_score").
		Joins("JOIN teacher_profiles ON teacher_profiles.id = lectures.teacher_profile_id").
		Where("lectures.score IS NOT NULL")
	query = schoolEquals(query, "teacher_profiles.school", school)

	if err := query.
		Group("lectures.teacher_profile_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get teacher stats by school: %w", err)
	}

	return rows, nil
}

// GetLastActiveByTeachers returns the newest upload time per teacher profile; teachers without lectures are absent
func (r *dashboardRepository) GetLastActiveByTeachers(ctx context.Context, tx *gorm.DB, profileIDs []uint) (map[uint]time.Time, error) {
	result := make(map[uint]time.Time, len(profileIDs))
	if len(profileIDs) == 0 {
		return result, nil
	}

	db := r.getDB(tx)
	var lectures []models.Lecture

	if err := db.WithContext(ctx).
		Select("teacher_profile_id", "uploaded_at").
		Where("teacher_profile_id IN ?", profileIDs).
		Order("uploaded_at DESC").
		Find(&lectures).Error; err != nil {
		return nil, fmt.Errorf("failed to get last activity by teachers: %w", err)
	}

	for _, lecture := range lectures {
		if _, seen := result[lecture.TeacherProfileID]; !seen {
			result[lecture.TeacherProfileID] = lecture.UploadedAt
		}
	}

	return result, nil
}
