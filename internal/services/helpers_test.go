package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/lecture-service/internal/analysis"
	"github.com/SAP-F-2025/lecture-service/internal/auth"
	"github.com/SAP-F-2025/lecture-service/internal/events"
	"github.com/SAP-F-2025/lecture-service/internal/models"
	"github.com/SAP-F-2025/lecture-service/internal/repositories"
	"github.com/SAP-F-2025/lecture-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/lecture-service/internal/storage"
	"github.com/SAP-F-2025/lecture-service/internal/testutils"
	"github.com/SAP-F-2025/lecture-service/internal/validator"
)

type fakeAnalyzer struct {
	mu       sync.Mutex
	result   *analysis.Result
	err      error
	calls    int
	filename string
	body     []byte
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, filename string, audio io.Reader) (*analysis.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.filename = filename
	body, err := io.ReadAll(audio)
	if err != nil {
		return nil, err
	}
	f.body = body
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type testEnv struct {
	db        *gorm.DB
	repo      repositories.Repository
	store     *storage.LocalStore
	storeDir  string
	analyzer  *fakeAnalyzer
	publisher *events.MockEventPublisher
	tokens    *auth.TokenService
	logger    *slog.Logger
	validator *validator.Validator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutils.NewTestDB(t)
	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(auth.TokenConfig{Secret: "test-secret", TTL: time.Hour})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &testEnv{
		db:        db,
		repo:      postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db}),
		store:     store,
		storeDir:  dir,
		analyzer:  &fakeAnalyzer{result: &analysis.Result{PedagogicalScore: testutils.Ptr(8.5)}},
		publisher: events.NewMockEventPublisher(logger),
		tokens:    tokens,
		logger:    logger,
		validator: validator.New(),
	}
}

func (e *testEnv) lectures() LectureService {
	return NewLectureService(e.repo, e.store, e.analyzer, e.publisher, nil, e.logger, e.validator)
}

func (e *testEnv) profiles() TeacherProfileService {
	return NewTeacherProfileService(e.repo, e.store, nil, e.logger, e.validator)
}

func (e *testEnv) classes() ClassService {
	return NewClassService(e.repo, e.logger, e.validator)
}

func (e *testEnv) users() UserManagementService {
	return NewUserManagementService(e.repo, e.store, nil, bcrypt.MinCost, e.logger, e.validator)
}

func (e *testEnv) authService(provider ssoProviderFunc) AuthService {
	if provider == nil {
		return NewAuthService(e.repo, e.tokens, nil, bcrypt.MinCost, e.logger, e.validator)
	}
	return NewAuthService(e.repo, e.tokens, provider, bcrypt.MinCost, e.logger, e.validator)
}

// storedFiles lists the recordings currently in the audio store
func (e *testEnv) storedFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(e.storeDir, "audio"))
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func (e *testEnv) countLectures(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.Lecture{}).Count(&n).Error)
	return n
}

func asTeacher(account testutils.Account) context.Context {
	p := auth.Teacher{Handle: account.User.Username}
	if account.Profile != nil {
		p.ProfileID = account.Profile.ID
	}
	return auth.WithPrincipal(context.Background(), p)
}

func asAdmin(account testutils.Account) context.Context {
	p := auth.Admin{Handle: account.User.Username}
	if account.Profile != nil {
		p.School = account.Profile.School
	}
	return auth.WithPrincipal(context.Background(), p)
}

func asSuperAdmin(handle string) context.Context {
	return auth.WithPrincipal(context.Background(), auth.SuperAdmin{Handle: handle})
}

func assertKind(t *testing.T, err error, kind error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, kind), "expected %v, got %v", kind, err)
}

func assertMessage(t *testing.T, err error, message string) {
	t.Helper()
	var se *ServiceError
	require.True(t, errors.As(err, &se), "expected a ServiceError, got %v", err)
	assert.Equal(t, message, se.Message)
}
