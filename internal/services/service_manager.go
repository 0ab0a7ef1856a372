package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/lecture-service/internal/analysis"
	"github.com/SAP-F-2025/lecture-service/internal/auth"
	"github.com/SAP-F-2025/lecture-service/internal/cache"
	"github.com/SAP-F-2025/lecture-service/internal/config"
	"github.com/SAP-F-2025/lecture-service/internal/events"
	"github.com/SAP-F-2025/lecture-service/internal/repositories"
	"github.com/SAP-F-2025/lecture-service/internal/sso"
	"github.com/SAP-F-2025/lecture-service/internal/storage"
	"github.com/SAP-F-2025/lecture-service/internal/validator"
)

// ServiceManager owns the service instances and their lifecycle
type ServiceManager interface {
	Initialize(ctx context.Context) error

	Auth() AuthService
	Lecture() LectureService
	TeacherProfile() TeacherProfileService
	Timetable() TimetableService
	Class() ClassService
	UserManagement() UserManagementService
	Dashboard() DashboardService
	Seeder() Seeder

	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Dependencies are the collaborators shared by the services. SSO, Cache and Publisher may be nil.
type Dependencies struct {
	Repo      repositories.Repository
	Logger    *slog.Logger
	Validator *validator.Validator
	Tokens    *auth.TokenService
	Store     storage.AudioStore
	Analyzer  analysis.Analyzer
	Publisher events.EventPublisher
	Cache     *cache.CacheManager
	SSO       sso.Provider

	Seed       config.SeedConfig
	StatsTTL   time.Duration
	BcryptCost int
}

type serviceManager struct {
	deps Dependencies

	authService           AuthService
	lectureService        LectureService
	teacherProfileService TeacherProfileService
	timetableService      TimetableService
	classService          ClassService
	userManagementService UserManagementService
	dashboardService      DashboardService
	seeder                Seeder

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

func NewServiceManager(deps Dependencies) ServiceManager {
	if deps.Cache == nil {
		deps.Cache = cache.NewCacheManager(nil)
	}
	if deps.BcryptCost == 0 {
		deps.BcryptCost = defaultBcryptCost
	}
	return &serviceManager{deps: deps}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	d := sm.deps
	if err := d.validate(); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	d.Logger.Info("Initializing service manager")

	sm.authService = NewAuthService(d.Repo, d.Tokens, d.SSO, d.BcryptCost, d.Logger, d.Validator)
	sm.lectureService = NewLectureService(d.Repo, d.Store, d.Analyzer, d.Publisher, d.Cache, d.Logger, d.Validator)
	sm.teacherProfileService = NewTeacherProfileService(d.Repo, d.Store, d.Cache, d.Logger, d.Validator)
	sm.timetableService = NewTimetableService(d.Repo)
	sm.classService = NewClassService(d.Repo, d.Logger, d.Validator)
	sm.userManagementService = NewUserManagementService(d.Repo, d.Store, d.Cache, d.BcryptCost, d.Logger, d.Validator)
	sm.dashboardService = NewDashboardService(d.Repo, d.Cache, d.StatsTTL, d.Logger)
	sm.seeder = NewSeeder(d.Repo, d.Seed, d.BcryptCost, d.Logger)

	sm.initialized = true
	d.Logger.Info("Service manager initialized successfully", "sso_enabled", d.SSO != nil, "cache_enabled", d.Cache.Stats.Enabled())
	return nil
}

func (d Dependencies) validate() error {
	var errs []error
	if d.Repo == nil {
		errs = append(errs, errors.New("repository is required"))
	}
	if d.Logger == nil {
		errs = append(errs, errors.New("logger is required"))
	}
	if d.Validator == nil {
		errs = append(errs, errors.New("validator is required"))
	}
	if d.Tokens == nil {
		errs = append(errs, errors.New("token service is required"))
	}
	if d.Store == nil {
		errs = append(errs, errors.New("audio store is required"))
	}
	if d.Analyzer == nil {
		errs = append(errs, errors.New("analyzer is required"))
	}
	return errors.Join(errs...)
}

func (sm *serviceManager) mustBeReady() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady()
	return sm.authService
}

func (sm *serviceManager) Lecture() LectureService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady()
	return sm.lectureService
}

func (sm *serviceManager) TeacherProfile() TeacherProfileService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady()
	return sm.teacherProfileService
}

func (sm *serviceManager) Timetable() TimetableService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady()
	return sm.timetableService
}

func (sm *serviceManager) Class() ClassService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady()
	return sm.classService
}

func (sm *serviceManager) UserManagement() UserManagementService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady()
	return sm.userManagementService
}

func (sm *serviceManager) Dashboard() DashboardService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady()
	return sm.dashboardService
}

func (sm *serviceManager) Seeder() Seeder {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady()
	return sm.seeder
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.deps.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	// The cache is optional; a failing cache degrades dashboards only
	if sm.deps.Cache.Stats.Enabled() {
		if err := sm.deps.Cache.HealthCheck(ctx); err != nil {
			sm.deps.Logger.WarnContext(ctx, "Cache health check failed", "error", err)
		}
	}
	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.deps.Logger.Info("Shutting down service manager")

	if sm.deps.Publisher != nil {
		if err := sm.deps.Publisher.Close(); err != nil {
			sm.deps.Logger.Error("Failed to close event publisher", "error", err)
		}
	}
	if closer, ok := sm.deps.Store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			sm.deps.Logger.Error("Failed to close audio store", "error", err)
		}
	}

	sm.shutdown = true
	sm.deps.Logger.Info("Service manager shut down completed")
	return nil
}
