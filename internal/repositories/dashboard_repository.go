package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// DashboardRepository interface for dashboard analytics operations
type DashboardRepository interface {
	// School level
	CountFacultyBySchool(ctx context.Context, tx *gorm.DB) ([]SchoolFacultyCount, error)
	GetLectureStatsBySchool(ctx context.Context, tx *gorm.DB) ([]SchoolLectureStats, error)

	// Teacher level within one school
	GetTeacherStatsBySchool(ctx context.Context, tx *gorm.DB, school string) ([]TeacherLectureStats, error)
	GetLastActiveByTeachers(ctx context.Context, tx *gorm.DB, profileIDs []uint) (map[uint]time.Time, error)
}

// Data structures for dashboard aggregates

type SchoolFacultyCount struct {
	School string
	Count  int64
}

type SchoolLectureStats struct {
	School           string
	LecturesAnalyzed int64
	AvgScore         *float64
}

type TeacherLectureStats struct {
	TeacherProfileID uint
	LecturesAnalyzed int64
	AvgScore         *float64
}
