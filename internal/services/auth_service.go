package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/lecture-service/internal/auth"
	"github.com/SAP-F-2025/lecture-service/internal/models"
	"github.com/SAP-F-2025/lecture-service/internal/repositories"
	"github.com/SAP-F-2025/lecture-service/internal/sso"
	"github.com/SAP-F-2025/lecture-service/internal/validator"
)

const tokenTypeBearer = "Bearer"

const msgInvalidCredentials = "Invalid username or password."

type authService struct {
	repo      repositories.Repository
	tokens    *auth.TokenService
	sso       sso.Provider
	hasher    passwordHasher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAuthService(repo repositories.Repository, tokens *auth.TokenService, provider sso.Provider, bcryptCost int, logger *slog.Logger, validator *validator.Validator) AuthService {
	return &authService{
		repo:      repo,
		tokens:    tokens,
		sso:       provider,
		hasher:    newPasswordHasher(bcryptCost),
		logger:    logger,
		validator: validator,
	}
}

// Register creates an ADMIN account with its profile and timetable
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.UserResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, ValidationFailed(err)
	}

	s.logger.InfoContext(ctx, "Registering user", "username", req.Username)

	if exists, err := identifierTaken(ctx, s.repo.User(), req.Username); err != nil {
		return nil, err
	} else if exists {
		return nil, Conflict("Username already exists.")
	}
	if exists, err := identifierTaken(ctx, s.repo.User(), req.Email); err != nil {
		return nil, err
	} else if exists {
		return nil, Conflict("Email already exists.")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Username: req.Username,
		Password: hash,
		Role:     models.RoleAdmin,
	}
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		_, err := createAccount(ctx, tx, user, profileFields{
			School:      strings.TrimSpace(req.School),
			Department:  strings.TrimSpace(req.Department),
			Designation: strings.TrimSpace(req.Designation),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "User registered", "user_id", user.ID, "role", user.Role)
	return toUserResponse(user), nil
}

// Login accepts the login handle or the email address
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, ValidationFailed(err)
	}

	user, err := s.repo.User().GetByIdentifier(ctx, req.Username)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, Unauthorized(msgInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !s.hasher.Matches(user.Password, req.Password) {
		s.logger.InfoContext(ctx, "Login rejected", "user_id", user.ID)
		return nil, Unauthorized(msgInvalidCredentials)
	}

	return s.issue(user)
}

// LoginWithSSO exchanges the authorization code and signs in the matching account, provisioning a TEACHER on first use
func (s *authService) LoginWithSSO(ctx context.Context, code, state string) (*models.LoginResponse, error) {
	if s.sso == nil {
		return nil, NewServiceError(ErrNotFound, "Single sign-on is not configured.", nil)
	}
	if strings.TrimSpace(code) == "" {
		return nil, BadRequest("Authorization code is required.")
	}

	identity, err := s.sso.Exchange(ctx, code, state)
	if err != nil {
		if errors.Is(err, sso.ErrNoEmail) {
			return nil, NewServiceError(ErrUnauthorized, "Identity provider did not return an email.", err)
		}
		return nil, NewServiceError(ErrUnauthorized, "Single sign-on failed.", err)
	}

	user, err := s.repo.User().GetByEmail(ctx, identity.Email)
	switch {
	case err == nil:
	case repositories.IsNotFoundError(err):
		user, err = s.provisionFromIdentity(ctx, identity)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return s.issue(user)
}

func (s *authService) provisionFromIdentity(ctx context.Context, identity *sso.Identity) (*models.User, error) {
	password, err := randomPassword()
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     identity.DisplayName,
		Email:    identity.Email,
		Username: identity.Email,
		Password: hash,
		Role:     models.RoleTeacher,
	}
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		_, err := createAccount(ctx, tx, user, profileFields{})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Provisioned user from single sign-on", "user_id", user.ID)
	return user, nil
}

func (s *authService) issue(user *models.User) (*models.LoginResponse, error) {
	token, err := s.tokens.Issue(user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &models.LoginResponse{
		Token:     token,
		TokenType: tokenTypeBearer,
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
		Role:      user.Role,
	}, nil
}

func (s *authService) ResolvePrincipal(ctx context.Context, token string) (auth.Principal, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return auth.Anonymous{}, err
	}

	user, err := s.repo.User().GetByUsername(ctx, claims.Subject)
	if err != nil {
		return auth.Anonymous{}, fmt.Errorf("failed to resolve token subject: %w", err)
	}

	var info *auth.ProfileInfo
	if claims.Role.HasTeacherProfile() {
		profile, err := s.repo.TeacherProfile().GetByUserID(ctx, user.ID)
		switch {
		case err == nil:
			info = &auth.ProfileInfo{ID: profile.ID, School: profile.School}
		case !repositories.IsNotFoundError(err):
			return auth.Anonymous{}, fmt.Errorf("failed to load caller profile: %w", err)
		}
	}

	return auth.NewPrincipal(claims.Subject, claims.Role, info), nil
}
