package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/SAP-F-2025/lecture-service/internal/config"
	"github.com/SAP-F-2025/lecture-service/internal/models"
)

func TestSeeder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seed := NewSeeder(env.repo, config.SeedConfig{Enabled: true, SuperAdminPassword: "bootstrap-pass", Samples: true}, bcrypt.MinCost, env.logger)

	require.NoError(t, seed.Seed(ctx))
	require.NoError(t, seed.Seed(ctx), "seeding twice is a no-op")

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)

	admin, err := env.repo.User().GetByUsername(ctx, SuperAdminHandle)
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, admin.Role)
	assert.Equal(t, "superadmin@peadological.com", admin.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("bootstrap-pass")))
	_, err = env.repo.TeacherProfile().GetByUserID(ctx, admin.ID)
	assert.Error(t, err)

	dean, err := env.repo.TeacherProfile().GetByUsername(ctx, "dean_engineering")
	require.NoError(t, err)
	assert.Equal(t, "School of Engineering", dean.School)

	resp, err := env.authService(nil).Login(ctx, &models.LoginRequest{Username: "superadmin", Password: "bootstrap-pass"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, resp.Role)
}

func TestSeeder_Disabled(t *testing.T) {
	env := newTestEnv(t)
	seed := NewSeeder(env.repo, config.SeedConfig{Enabled: false}, bcrypt.MinCost, env.logger)
	require.NoError(t, seed.Seed(context.Background()))

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestServiceManager(t *testing.T) {
	env := newTestEnv(t)

	incomplete := NewServiceManager(Dependencies{Logger: env.logger})
	require.Error(t, incomplete.Initialize(context.Background()))

	sm := NewServiceManager(Dependencies{
		Repo:      env.repo,
		Logger:    env.logger,
		Validator: env.validator,
		Tokens:    env.tokens,
		Store:     env.store,
		Analyzer:  env.analyzer,
		Publisher: env.publisher,
	})
	assert.Panics(t, func() { sm.Lecture() })

	require.NoError(t, sm.Initialize(context.Background()))
	assert.NotNil(t, sm.Auth())
	assert.NotNil(t, sm.Dashboard())
	assert.NoError(t, sm.HealthCheck(context.Background()))

	require.NoError(t, sm.Shutdown(context.Background()))
	assert.Error(t, sm.HealthCheck(context.Background()))
}
