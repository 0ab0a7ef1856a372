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
	msgManageUsersRole = "Only SUPER_ADMIN can manage users."
	msgViewUsersRole   = "Only SUPER_ADMIN or ADMIN can view users."
	msgEmailExists     = "Email already exists."
)

type userManagementService struct {
	repo      repositories.Repository
	store     storage.AudioStore
	cache     *cache.CacheManager
	hasher    passwordHasher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewUserManagementService(repo repositories.Repository, store storage.AudioStore, cacheManager *cache.CacheManager, bcryptCost int, logger *slog.Logger, validator *validator.Validator) UserManagementService {
	return &userManagementService{
		repo:      repo,
		store:     store,
		cache:     cacheManager,
		hasher:    newPasswordHasher(bcryptCost),
		logger:    logger,
		validator: validator,
	}
}

// Create provisions an account whose login handle is its email; teaching roles get a profile and timetable
func (s *userManagementService) Create(ctx context.Context, req *models.UserCreateRequest) (*models.UserResponse, error) {
	if err := auth.RequireRole(auth.PrincipalFrom(ctx), models.RoleSuperAdmin); err != nil {
		return nil, fromPolicy(err, msgManageUsersRole)
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, ValidationFailed(err)
	}

	if err := s.ensureEmailFree(ctx, req.Email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Username: req.Email,
		Password: hash,
		Role:     req.Role,
	}
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		profile, err := createAccount(ctx, tx, user, profileFields{
			School:      strings.TrimSpace(req.School),
			Department:  strings.TrimSpace(req.Department),
			Designation: strings.TrimSpace(req.Designation),
		})
		user.TeacherProfile = profile
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "User created", "user_id", user.ID, "role", user.Role)
	if user.TeacherProfile != nil {
		cache.InvalidateDashboardCache(ctx, s.cache, user.TeacherProfile.School)
	}
	return toUserResponse(user), nil
}

func (s *userManagementService) ensureEmailFree(ctx context.Context, email string) error {
	exists, err := identifierTaken(ctx, s.repo.User(), email)
	if err != nil {
		return err
	}
	if exists {
		return Conflict(msgEmailExists)
	}
	return nil
}

func (s *userManagementService) Get(ctx context.Context, id uint) (*models.UserResponse, error) {
	if err := auth.RequireRole(auth.PrincipalFrom(ctx), models.RoleSuperAdmin, models.RoleAdmin); err != nil {
		return nil, fromPolicy(err, msgViewUsersRole)
	}
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgUserNotFound, "failed to load user")
	}
	return toUserResponse(user), nil
}

func (s *userManagementService) List(ctx context.Context, filters UserListFilters) (*UserListResponse, error) {
	if err := auth.RequireRole(auth.PrincipalFrom(ctx), models.RoleSuperAdmin, models.RoleAdmin); err != nil {
		return nil, fromPolicy(err, msgViewUsersRole)
	}

	users, total, err := s.repo.User().List(ctx, repositories.UserFilters{
		Role:   filters.Role,
		Query:  strings.TrimSpace(filters.Query),
		Limit:  filters.Limit,
		Offset: filters.Offset,
	})
	if err != nil {
		return nil, err
	}

	resp := &UserListResponse{
		Users:  make([]*models.UserResponse, 0, len(users)),
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	}
	for _, u := range users {
		resp.Users = append(resp.Users, toUserResponse(u))
	}
	return resp, nil
}

func (s *userManagementService) Update(ctx context.Context, id uint, req *models.UserUpdateRequest) (*models.UserResponse, error) {
	if err := auth.RequireRole(auth.PrincipalFrom(ctx), models.RoleSuperAdmin); err != nil {
		return nil, fromPolicy(err, msgManageUsersRole)
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, ValidationFailed(err)
	}

	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgUserNotFound, "failed to load user")
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if !strings.EqualFold(email, user.Email) {
			exists, err := s.repo.User().ExistsByEmail(ctx, email)
			if err == nil && !exists && email != user.Username {
				exists, err = s.repo.User().ExistsByUsername(ctx, email)
			}
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, Conflict(msgEmailExists)
			}
		}
		user.Email = email
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}

	needsProfile := false
	if req.Role != nil && *req.Role != user.Role {
		if user.Role == models.RoleTeacher {
			hasProfile, err := s.hasProfile(ctx, s.repo, user.ID)
			if err != nil {
				return nil, err
			}
			if hasProfile {
				return nil, BadRequest("Cannot change role from TEACHER without removing profile first.")
			}
		}
		user.Role = *req.Role
		needsProfile = user.Role.HasTeacherProfile()
	}

	var created *models.TeacherProfile
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.User().Update(ctx, user); err != nil {
			if repositories.IsDuplicateError(err) {
				return NewServiceError(ErrConflict, msgEmailExists, err)
			}
			return notFoundOr(err, msgUserNotFound, "failed to update user")
		}
		if !needsProfile {
			return nil
		}
		hasProfile, err := s.hasProfile(ctx, tx, user.ID)
		if err != nil || hasProfile {
			return err
		}
		created, err = createProfile(ctx, tx, user, profileFields{})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "User updated", "user_id", user.ID, "role", user.Role, "profile_created", created != nil)
	if created != nil {
		cache.InvalidateDashboardCache(ctx, s.cache, created.School)
	}
	return toUserResponse(user), nil
}

func (s *userManagementService) hasProfile(ctx context.Context, repo repositories.Repository, userID uint) (bool, error) {
	_, err := repo.TeacherProfile().GetByUserID(ctx, userID)
	switch {
	case err == nil:
		return true, nil
	case repositories.IsNotFoundError(err):
		return false, nil
	}
	return false, fmt.Errorf("failed to load teacher profile: %w", err)
}

// Delete removes the user together with its profile, timetable, class slots and lectures
func (s *userManagementService) Delete(ctx context.Context, id uint) error {
	p := auth.PrincipalFrom(ctx)
	if err := auth.RequireRole(p, models.RoleSuperAdmin); err != nil {
		return fromPolicy(err, msgManageUsersRole)
	}

	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, msgUserNotFound, "failed to load user")
	}
	if user.Username == p.Subject() {
		return BadRequest("You cannot delete your own account.")
	}

	var (
		keys   []string
		school string
	)
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		profile, err := tx.TeacherProfile().GetByUserID(ctx, user.ID)
		switch {
		case err == nil:
			school = profile.School
			if keys, err = deleteProfileCascade(ctx, tx, profile.ID); err != nil {
				return err
			}
		case !repositories.IsNotFoundError(err):
			return fmt.Errorf("failed to load teacher profile: %w", err)
		}
		return tx.User().Delete(ctx, user.ID)
	})
	if err != nil {
		return notFoundOr(err, msgUserNotFound, "failed to delete user")
	}
	removeAudio(ctx, s.store, s.logger, keys...)

	s.logger.InfoContext(ctx, "User deleted", "user_id", user.ID, "removed_recordings", len(keys))
	if school != "" {
		cache.InvalidateDashboardCache(ctx, s.cache, school)
	}
	return nil
}
