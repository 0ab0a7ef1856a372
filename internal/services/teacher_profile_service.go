package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/lecture-service/internal/auth"
	"github.com/SAP-F-2025/lecture-service/internal/cache"
	"github.com/SAP-F-2025/lecture-service/internal/models"
	"github.com/SAP-F-2025/lecture-service/internal/repositories"
	"github.com/SAP-F-2025/lecture-service/internal/storage"
	"github.com/SAP-F-2025/lecture-service/internal/validator"
)

const (
	msgUserNotFound       = "User not found."
	msgOwnSchoolOnly      = "You can only manage teachers of your own school."
	msgProfileAccess      = "You do not have access to this teacher profile."
	msgManageProfilesRole = "Only SUPER_ADMIN or ADMIN can manage teacher profiles."
)

type teacherProfileService struct {
	repo      repositories.Repository
	store     storage.AudioStore
	cache     *cache.CacheManager
	logger    *slog.Logger
	validator *validator.Validator
}

func NewTeacherProfileService(repo repositories.Repository, store storage.AudioStore, cacheManager *cache.CacheManager, logger *slog.Logger, validator *validator.Validator) TeacherProfileService {
	return &teacherProfileService{
		repo:      repo,
		store:     store,
		cache:     cacheManager,
		logger:    logger,
		validator: validator,
	}
}

// Create attaches a profile and an empty timetable to an existing TEACHER
func (s *teacherProfileService) Create(ctx context.Context, req *models.TeacherProfileCreateRequest) (*models.TeacherProfileResponse, error) {
	p := auth.PrincipalFrom(ctx)
	if err := auth.RequireRole(p, models.RoleSuperAdmin, models.RoleAdmin); err != nil {
		return nil, fromPolicy(err, msgManageProfilesRole)
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, ValidationFailed(err)
	}

	fields := profileFields{
		School:      strings.TrimSpace(req.School),
		Department:  strings.TrimSpace(req.Department),
		Designation: strings.TrimSpace(req.Designation),
	}
	if admin, ok := p.(auth.Admin); ok {
		if fields.School == "" {
			fields.School = admin.School
		}
		if !auth.SameSchool(admin.School, fields.School) {
			return nil, Forbidden(msgOwnSchoolOnly)
		}
	}

	user, err := s.repo.User().GetByID(ctx, req.UserID)
	if err != nil {
		return nil, notFoundOr(err, msgUserNotFound, "failed to load user")
	}
	if user.Role != models.RoleTeacher {
		return nil, BadRequest("User must have role TEACHER.")
	}

	var profile *models.TeacherProfile
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if _, err := tx.TeacherProfile().GetByUserID(ctx, user.ID); err == nil {
			return Conflict("Teacher profile already exists.")
		} else if !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to check teacher profile: %w", err)
		}
		profile, err = createProfile(ctx, tx, user, fields)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Teacher profile created", "profile_id", profile.ID, "user_id", user.ID)
	cache.InvalidateDashboardCache(ctx, s.cache, profile.School)
	return toProfileResponse(profile), nil
}

func (s *teacherProfileService) Get(ctx context.Context, id uint) (*models.TeacherProfileResponse, error) {
	profile, err := s.repo.TeacherProfile().GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgProfileNotFound, "failed to load teacher profile")
	}
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.ResourceOf(profile)); err != nil {
		return nil, fromPolicy(err, msgProfileAccess)
	}
	return toProfileResponse(profile), nil
}

func (s *teacherProfileService) GetMine(ctx context.Context) (*models.TeacherProfileResponse, error) {
	p := auth.PrincipalFrom(ctx)
	if !auth.IsAuthenticated(p) {
		return nil, fromPolicy(auth.ErrUnauthenticated, "")
	}
	profile, err := s.repo.TeacherProfile().GetByUsername(ctx, p.Subject())
	if err != nil {
		return nil, notFoundOr(err, msgProfileNotFound, "failed to load teacher profile")
	}
	return toProfileResponse(profile), nil
}

// List returns every profile for super admins, the admin's school for admins and the caller's own for teachers
func (s *teacherProfileService) List(ctx context.Context) ([]*models.TeacherProfileResponse, error) {
	var profiles []*models.TeacherProfile
	switch p := auth.PrincipalFrom(ctx).(type) {
	case auth.SuperAdmin:
		found, err := s.repo.TeacherProfile().List(ctx, repositories.TeacherProfileFilters{Limit: -1})
		if err != nil {
			return nil, err
		}
		profiles = found
	case auth.Admin:
		if strings.TrimSpace(p.School) == "" {
			break
		}
		found, err := s.repo.TeacherProfile().List(ctx, repositories.TeacherProfileFilters{School: p.School, Limit: -1})
		if err != nil {
			return nil, err
		}
		profiles = found
	case auth.Teacher:
		profile, err := s.repo.TeacherProfile().GetByUsername(ctx, p.Handle)
		switch {
		case err == nil:
			profiles = append(profiles, profile)
		case !repositories.IsNotFoundError(err):
			return nil, fmt.Errorf("failed to load teacher profile: %w", err)
		}
	default:
		return nil, fromPolicy(auth.ErrUnauthenticated, "")
	}

	out := make([]*models.TeacherProfileResponse, 0, len(profiles))
	for _, profile := range profiles {
		out = append(out, toProfileResponse(profile))
	}
	return out, nil
}

// Delete removes the profile with its timetable, class slots, lectures and stored recordings
func (s *teacherProfileService) Delete(ctx context.Context, id uint) error {
	p := auth.PrincipalFrom(ctx)
	if err := auth.RequireRole(p, models.RoleSuperAdmin, models.RoleAdmin); err != nil {
		return fromPolicy(err, msgManageProfilesRole)
	}

	profile, err := s.repo.TeacherProfile().GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, msgProfileNotFound, "failed to load teacher profile")
	}
	if err := auth.Authorize(p, auth.ResourceOf(profile)); err != nil {
		return fromPolicy(err, msgOwnSchoolOnly)
	}

	var keys []string
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		keys, err = deleteProfileCascade(ctx, tx, profile.ID)
		return err
	})
	if err != nil {
		return err
	}
	removeAudio(ctx, s.store, s.logger, keys...)

	s.logger.InfoContext(ctx, "Teacher profile deleted", "profile_id", profile.ID, "removed_recordings", len(keys))
	cache.InvalidateDashboardCache(ctx, s.cache, profile.School)
	return nil
}
