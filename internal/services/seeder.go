package services

import (
	"context"
	"log/slog"

	"github.com/SAP-F-2025/lecture-service/internal/config"
	"github.com/SAP-F-2025/lecture-service/internal/models"
	"github.com/SAP-F-2025/lecture-service/internal/repositories"
)

const SuperAdminHandle = "superadmin"

type seedAccount struct {
	user   models.User
	fields profileFields
}

type seeder struct {
	repo   repositories.Repository
	cfg    config.SeedConfig
	hasher passwordHasher
	logger *slog.Logger
}

func NewSeeder(repo repositories.Repository, cfg config.SeedConfig, bcryptCost int, logger *slog.Logger) Seeder {
	return &seeder{
		repo:   repo,
		cfg:    cfg,
		hasher: newPasswordHasher(bcryptCost),
		logger: logger,
	}
}

// Seed creates the bootstrap accounts that do not exist yet; existing handles are left untouched
func (s *seeder) Seed(ctx context.Context) error {
	if !s.cfg.Enabled {
		return nil
	}

	accounts := []seedAccount{{
		user: models.User{
			Name:     "Super Admin",
			Email:    "superadmin@peadological.com",
			Username: SuperAdminHandle,
			Role:     models.RoleSuperAdmin,
		},
	}}
	if s.cfg.Samples {
		accounts = append(accounts,
			seedAccount{
				user: models.User{
					Name:     "Dean of Engineering",
					Email:    "dean.engineering@peadological.com",
					Username: "dean_engineering",
					Role:     models.RoleAdmin,
				},
				fields: profileFields{School: "School of Engineering", Department: "Administration", Designation: "Dean"},
			},
			seedAccount{
				user: models.User{
					Name:     "Ananya Sharma",
					Email:    "ananya@peadological.com",
					Username: "teacher_ananya",
					Role:     models.RoleTeacher,
				},
				fields: profileFields{School: "School of Engineering", Department: "Computer Science", Designation: "Assistant Professor"},
			},
		)
	}

	for _, account := range accounts {
		if err := s.ensure(ctx, account); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) ensure(ctx context.Context, account seedAccount) error {
	exists, err := s.repo.User().ExistsByUsername(ctx, account.user.Username)
	if err != nil {
		return err
	}
	if exists {
		s.logger.DebugContext(ctx, "Seed account already exists", "username", account.user.Username)
		return nil
	}

	hash, err := s.hasher.Hash(s.password())
	if err != nil {
		return err
	}
	user := account.user
	user.Password = hash

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		_, err := createAccount(ctx, tx, &user, account.fields)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Seed account created", "username", user.Username, "role", user.Role)
	return nil
}

// password is shared by every seeded account
func (s *seeder) password() string {
	if s.cfg.SuperAdminPassword == "" {
		return "superadmin123"
	}
	return s.cfg.SuperAdminPassword
}
