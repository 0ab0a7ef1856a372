package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/lecture-service/internal/analysis"
	"github.com/SAP-F-2025/lecture-service/internal/auth"
	"github.com/SAP-F-2025/lecture-service/internal/config"
	"github.com/SAP-F-2025/lecture-service/internal/events"
	"github.com/SAP-F-2025/lecture-service/internal/models"
	"github.com/SAP-F-2025/lecture-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/lecture-service/internal/services"
	"github.com/SAP-F-2025/lecture-service/internal/storage"
	"github.com/SAP-F-2025/lecture-service/internal/testutils"
	"github.com/SAP-F-2025/lecture-service/internal/utils"
	"github.com/SAP-F-2025/lecture-service/internal/validator"
)

const testUploadLimit = 4 << 10

type analyzerFunc func(ctx context.Context, filename string, audio io.Reader) (*analysis.Result, error)

func (f analyzerFunc) Analyze(ctx context.Context, filename string, audio io.Reader) (*analysis.Result, error) {
	return f(ctx, filename, audio)
}

type testServer struct {
	router   *gin.Engine
	db       *gorm.DB
	tokens   *auth.TokenService
	storeDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutils.NewTestDB(t)
	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(auth.TokenConfig{Secret: "handler-secret", TTL: time.Hour})
	require.NoError(t, err)

	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	analyzer := analyzerFunc(func(ctx context.Context, filename string, audio io.Reader) (*analysis.Result, error) {
		if _, err := io.Copy(io.Discard, audio); err != nil {
			return nil, err
		}
		return &analysis.Result{PedagogicalScore: testutils.Ptr(9.0)}, nil
	})

	sm := services.NewServiceManager(services.Dependencies{
		Repo:       postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db}),
		Logger:     slogger,
		Validator:  validator.New(),
		Tokens:     tokens,
		Store:      store,
		Analyzer:   analyzer,
		Publisher:  events.NewMockEventPublisher(slogger),
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, sm.Initialize(context.Background()))

	cfg := config.Default()
	cfg.Storage.MaxUploadBytes = testUploadLimit
	logger := utils.NewSlogLogger(slogger)

	router := gin.New()
	SetupMiddleware(router, &cfg, logger)
	NewHandlerManager(sm, &cfg, logger).SetupRoutes(router)

	return &testServer{router: router, db: db, tokens: tokens, storeDir: dir}
}

func (s *testServer) token(t *testing.T, handle string, role models.UserRole) string {
	t.Helper()
	token, err := s.tokens.Issue(handle, role)
	require.NoError(t, err)
	return token
}

func (s *testServer) tokenOf(t *testing.T, account testutils.Account) string {
	return s.token(t, account.User.Username, account.User.Role)
}

func (s *testServer) do(method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) doJSON(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	return s.do(method, path, token, body, "application/json")
}

func (s *testServer) storedFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(s.storeDir, "audio"))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// multipartBody builds a form with the given fields and, when audio is non-nil, an "audio" file part
func multipartBody(t *testing.T, fields map[string]string, audio []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if audio != nil {
		part, err := mw.CreateFormFile("audio", "lecture.mp3")
		require.NoError(t, err)
		_, err = part.Write(audio)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder, status int) ErrorResponse {
	t.Helper()
	requireStatus(t, w, status)
	resp := decode[ErrorResponse](t, w)
	require.Equal(t, status, resp.Status)
	require.Equal(t, http.StatusText(status), resp.Error)
	return resp
}
