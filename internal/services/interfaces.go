package services

import (
	"context"
	"io"

	"github.com/SAP-F-2025/lecture-service/internal/auth"
	"github.com/SAP-F-2025/lecture-service/internal/models"
)

// Every service reads the caller from auth.PrincipalFrom(ctx).

type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.UserResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	LoginWithSSO(ctx context.Context, code, state string) (*models.LoginResponse, error)
	// ResolvePrincipal validates a bearer token and loads the caller's own profile
	ResolvePrincipal(ctx context.Context, token string) (auth.Principal, error)
}

type LectureService interface {
	CreateLecture(ctx context.Context, req *models.LectureCreateRequest) (*models.LectureResponse, error)
	GetLecture(ctx context.Context, id uint) (*models.LectureResponse, error)
	ListByTeacher(ctx context.Context, profileID uint) ([]*models.LectureResponse, error)
	ListByClass(ctx context.Context, slotID uint) ([]*models.LectureResponse, error)
	ListMyRecent(ctx context.Context, limit int) ([]*models.LectureResponse, error)
	DeleteLecture(ctx context.Context, id uint) error
}

type TeacherProfileService interface {
	Create(ctx context.Context, req *models.TeacherProfileCreateRequest) (*models.TeacherProfileResponse, error)
	Get(ctx context.Context, id uint) (*models.TeacherProfileResponse, error)
	GetMine(ctx context.Context) (*models.TeacherProfileResponse, error)
	List(ctx context.Context) ([]*models.TeacherProfileResponse, error)
	Delete(ctx context.Context, id uint) error
}

type TimetableService interface {
	Get(ctx context.Context, id uint) (*models.TimetableResponse, error)
	GetMine(ctx context.Context) (*models.TimetableResponse, error)
	List(ctx context.Context) ([]*models.TimetableResponse, error)
}

type ClassService interface {
	Create(ctx context.Context, req *models.ClassSlotCreateRequest) (*models.ClassSlotResponse, error)
	Get(ctx context.Context, id uint) (*models.ClassSlotResponse, error)
	List(ctx context.Context, timetableID *uint) ([]*models.ClassSlotResponse, error)
	Update(ctx context.Context, id uint, req *models.ClassSlotUpdateRequest) (*models.ClassSlotResponse, error)
	Delete(ctx context.Context, id uint) error
}

type UserManagementService interface {
	Create(ctx context.Context, req *models.UserCreateRequest) (*models.UserResponse, error)
	Get(ctx context.Context, id uint) (*models.UserResponse, error)
	List(ctx context.Context, filters UserListFilters) (*UserListResponse, error)
	Update(ctx context.Context, id uint, req *models.UserUpdateRequest) (*models.UserResponse, error)
	Delete(ctx context.Context, id uint) error
}

type DashboardService interface {
	GetStats(ctx context.Context) ([]models.SchoolStats, error)
	GetSchoolFaculty(ctx context.Context, school string) ([]models.FacultyStats, error)
	// ExportSchoolFaculty writes the faculty statistics of a school as an xlsx workbook
	ExportSchoolFaculty(ctx context.Context, school string, w io.Writer) error
}

// Seeder provisions bootstrap accounts
type Seeder interface {
	Seed(ctx context.Context) error
}

type UserListFilters struct {
	Role   *models.UserRole
	Query  string
	Limit  int
	Offset int
}

type UserListResponse struct {
	Users  []*models.UserResponse `json:"users"`
	Total  int64                  `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
}
