package repositories

import (
	"github.com/SAP-F-2025/lecture-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type UserFilters struct {
	Role   *models.UserRole `json:"role"`
	Query  string           `json:"query"` // matches name, email or username
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

type TeacherProfileFilters struct {
	School string `json:"school"` // case-insensitive exact match
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

type ClassSlotFilters struct {
	TimetableID *uint             `json:"timetable_id"`
	DayOfWeek   *models.DayOfWeek `json:"day_of_week"`
	// School restricts to slots of teachers in that school
	School string `json:"school"`
}

type LectureFilters struct {
	Limit  int `json:"limit"` // negative returns every lecture
	Offset int `json:"offset"`
}
