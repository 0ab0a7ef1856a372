package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/lecture-service/internal/analysis"
	"github.com/SAP-F-2025/lecture-service/internal/auth"
	"github.com/SAP-F-2025/lecture-service/internal/events"
	"github.com/SAP-F-2025/lecture-service/internal/models"
	"github.com/SAP-F-2025/lecture-service/internal/testutils"
)

func audioUpload(content string) *models.AudioFile {
	return &models.AudioFile{
		Filename:    "lecture.mp3",
		ContentType: "audio/mpeg",
		Size:        int64(len(content)),
		Content:     strings.NewReader(content),
	}
}

func TestCreateLecture_WithAudio(t *testing.T) {
	env := newTestEnv(t)
	ananya := testutils.CreateAccount(t, env.db, "teacher_ananya")
	slot := testutils.CreateClassSlot(t, env.db, ananya.Timetable.ID)
	env.analyzer.result = &analysis.Result{
		RequestID:        testutils.Ptr("req-1"),
		Analysis:         testutils.Ptr("Clear structure."),
		PedagogicalScore: testutils.Ptr(8.5),
		ReviewRatio:      testutils.Ptr(0.2),
		LanguageFluency:  testutils.Ptr(0.9),
	}

	resp, err := env.lectures().CreateLecture(asTeacher(ananya), &models.LectureCreateRequest{
		TeacherProfileID: ananya.Profile.ID,
		ClassSlotID:      &slot.ID,
		LectureTitle:     "  Paging and TLBs  ",
		Audio:            audioUpload("fake mp3 bytes"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Paging and TLBs", resp.LectureTitle)
	require.NotNil(t, resp.Score)
	assert.Equal(t, 8.5, *resp.Score)
	assert.Equal(t, "Clear structure.", *resp.AnalysisContent)
	assert.Equal(t, 0.9, *resp.LanguageFluency)
	assert.Nil(t, resp.WaitTime)
	assert.True(t, strings.HasPrefix(resp.LectureAudioURL, "audio/"), resp.LectureAudioURL)

	assert.Equal(t, 1, env.analyzer.calls)
	assert.Equal(t, "lecture.mp3", env.analyzer.filename)
	assert.Equal(t, "fake mp3 bytes", string(env.analyzer.body))
	assert.Len(t, env.storedFiles(t), 1)

	var stored models.Lecture
	require.NoError(t, env.db.First(&stored, resp.ID).Error)
	assert.True(t, stored.Stored)
	assert.Equal(t, "req-1", *stored.AnalysisRequestID)

	published := env.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.LectureCreated, published[0].Type)
	data, err := events.DecodeLectureEvent(published[0])
	require.NoError(t, err)
	assert.Equal(t, resp.ID, data.LectureID)
	assert.Equal(t, "School of Engineering", data.School)
	assert.Equal(t, "teacher_ananya", data.Actor)
}

func TestCreateLecture_URLOnlySkipsAnalysis(t *testing.T) {
	env := newTestEnv(t)
	ananya := testutils.CreateAccount(t, env.db, "teacher_ananya")

	resp, err := env.lectures().CreateLecture(asTeacher(ananya), &models.LectureCreateRequest{
		TeacherProfileID: ananya.Profile.ID,
		LectureTitle:     "Deadlocks",
		LectureAudioURL:  " https://cdn.example.edu/deadlocks.mp3 ",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.edu/deadlocks.mp3", resp.LectureAudioURL)
	assert.Nil(t, resp.Score)
	assert.Nil(t, resp.AnalysisContent)
	assert.Nil(t, resp.ClassSlotID)
	assert.Zero(t, env.analyzer.calls)
	assert.Empty(t, env.storedFiles(t))
}

func TestCreateLecture_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ananya := testutils.CreateAccount(t, env.db, "teacher_ananya")
	ravi := testutils.CreateAccount(t, env.db, "teacher_ravi")
	dean := testutils.CreateAccount(t, env.db, "dean_rao", testutils.WithRole(models.RoleAdmin))
	raviSlot := testutils.CreateClassSlot(t, env.db, ravi.Timetable.ID)
	missing := uint(9999)

	base := func() *models.LectureCreateRequest {
		return &models.LectureCreateRequest{
			TeacherProfileID: ananya.Profile.ID,
			LectureTitle:     "Scheduling",
			Audio:            audioUpload("bytes"),
		}
	}

	tests := []struct {
		name    string
		ctx     context.Context
		mutate  func(*models.LectureCreateRequest)
		kind    error
		message string
	}{
		{
			name:    "anonymous caller",
			ctx:     context.Background(),
			kind:    ErrUnauthorized,
			message: "Authentication required.",
		},
		{
			name:    "admin caller",
			ctx:     asAdmin(dean),
			kind:    ErrForbidden,
			message: "Only TEACHER can create lectures.",
		},
		{
			name:    "blank title",
			ctx:     asTeacher(ananya),
			mutate:  func(r *models.LectureCreateRequest) { r.LectureTitle = "   " },
			kind:    ErrBadRequest,
			message: "Lecture title is required.",
		},
		{
			name: "no audio",
			ctx:  asTeacher(ananya),
			mutate: func(r *models.LectureCreateRequest) {
				r.Audio = nil
				r.LectureAudioURL = " "
			},
			kind:    ErrBadRequest,
			message: "Either an audio file or an audio URL is required.",
		},
		{
			name:    "unknown profile",
			ctx:     asTeacher(ananya),
			mutate:  func(r *models.LectureCreateRequest) { r.TeacherProfileID = missing },
			kind:    ErrNotFound,
			message: "Teacher profile not found.",
		},
		{
			name:    "another teacher's profile",
			ctx:     asTeacher(ananya),
			mutate:  func(r *models.LectureCreateRequest) { r.TeacherProfileID = ravi.Profile.ID },
			kind:    ErrForbidden,
			message: "You can only manage your own lectures.",
		},
		{
			name:    "unknown class slot",
			ctx:     asTeacher(ananya),
			mutate:  func(r *models.LectureCreateRequest) { r.ClassSlotID = &missing },
			kind:    ErrNotFound,
			message: "Class slot not found.",
		},
		{
			name:    "class slot of another timetable",
			ctx:     asTeacher(ananya),
			mutate:  func(r *models.LectureCreateRequest) { r.ClassSlotID = &raviSlot.ID },
			kind:    ErrBadRequest,
			message: "Class slot does not belong to the teacher's timetable.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base()
			if tt.mutate != nil {
				tt.mutate(req)
			}
			_, err := env.lectures().CreateLecture(tt.ctx, req)
			assertKind(t, err, tt.kind)
			assertMessage(t, err, tt.message)
		})
	}

	assert.Zero(t, env.countLectures(t))
	assert.Zero(t, env.analyzer.calls)
	assert.Empty(t, env.storedFiles(t))
}

func TestCreateLecture_AnalysisFailureLeavesNothing(t *testing.T) {
	env := newTestEnv(t)
	ananya := testutils.CreateAccount(t, env.db, "teacher_ananya")
	env.analyzer.err = &analysis.StatusError{StatusCode: 502, Body: "upstream down"}

	_, err := env.lectures().CreateLecture(asTeacher(ananya), &models.LectureCreateRequest{
		TeacherProfileID: ananya.Profile.ID,
		LectureTitle:     "Virtual memory",
		Audio:            audioUpload("bytes"),
	})
	require.Error(t, err)

	var statusErr *analysis.StatusError
	assert.True(t, errors.As(err, &statusErr))
	var se *ServiceError
	assert.False(t, errors.As(err, &se), "analysis failures are internal errors")

	assert.Equal(t, 1, env.analyzer.calls)
	assert.Zero(t, env.countLectures(t))
	assert.Empty(t, env.storedFiles(t))
	assert.Empty(t, env.publisher.GetPublishedEvents())
}

func TestCreateLecture_PersistenceFailureRemovesAudio(t *testing.T) {
	env := newTestEnv(t)
	ananya := testutils.CreateAccount(t, env.db, "teacher_ananya")
	require.NoError(t, env.db.Exec(`CREATE TRIGGER reject_lectures BEFORE INSERT ON lectures
		BEGIN SELECT RAISE(ABORT, 'insert rejected'); END`).Error)

	_, err := env.lectures().CreateLecture(asTeacher(ananya), &models.LectureCreateRequest{
		TeacherProfileID: ananya.Profile.ID,
		LectureTitle:     "Page replacement",
		Audio:            audioUpload("bytes"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert rejected")

	assert.Equal(t, 1, env.analyzer.calls)
	assert.Zero(t, env.countLectures(t))
	assert.Empty(t, env.storedFiles(t))
	assert.Empty(t, env.publisher.GetPublishedEvents())
}

func TestCreateLecture_PublishFailureDoesNotFailCreation(t *testing.T) {
	env := newTestEnv(t)
	ananya := testutils.CreateAccount(t, env.db, "teacher_ananya")
	env.publisher.FailWith(errors.New("broker unavailable"))

	_, err := env.lectures().CreateLecture(asTeacher(ananya), &models.LectureCreateRequest{
		TeacherProfileID: ananya.Profile.ID,
		LectureTitle:     "Threads",
		LectureAudioURL:  "https://cdn.example.edu/threads.mp3",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), env.countLectures(t))
}

func TestLectureAccess(t *testing.T) {
	env := newTestEnv(t)
	ananya := testutils.CreateAccount(t, env.db, "teacher_ananya")
	ravi := testutils.CreateAccount(t, env.db, "teacher_ravi")
	engDean := testutils.CreateAccount(t, env.db, "dean_eng", testutils.WithRole(models.RoleAdmin))
	sciDean := testutils.CreateAccount(t, env.db, "dean_sci",
		testutils.WithRole(models.RoleAdmin), testutils.WithSchool("School of Science"))
	lecture := testutils.CreateLecture(t, env.db, ananya.Profile.ID, nil, testutils.Ptr(7.0))

	tests := []struct {
		name string
		ctx  context.Context
		kind error
	}{
		{name: "owner", ctx: asTeacher(ananya)},
		{name: "super admin", ctx: asSuperAdmin("superadmin")},
		{name: "admin of same school", ctx: asAdmin(engDean)},
		{name: "admin of other school", ctx: asAdmin(sciDean), kind: ErrForbidden},
		{name: "other teacher", ctx: asTeacher(ravi), kind: ErrForbidden},
		{name: "anonymous", ctx: context.Background(), kind: ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := env.lectures().GetLecture(tt.ctx, lecture.ID)
			if tt.kind != nil {
				assertKind(t, err, tt.kind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, lecture.ID, resp.ID)
		})
	}

	_, err := env.lectures().GetLecture(asTeacher(ananya), 9999)
	assertKind(t, err, ErrNotFound)
}

func TestDeleteLecture(t *testing.T) {
	env := newTestEnv(t)
	ananya := testutils.CreateAccount(t, env.db, "teacher_ananya")
	ravi := testutils.CreateAccount(t, env.db, "teacher_ravi")
	svc := env.lectures()

	created, err := svc.CreateLecture(asTeacher(ananya), &models.LectureCreateRequest{
		TeacherProfileID: ananya.Profile.ID,
		LectureTitle:     "File systems",
		Audio:            audioUpload("bytes"),
	})
	require.NoError(t, err)
	require.Len(t, env.storedFiles(t), 1)

	err = svc.DeleteLecture(asTeacher(ravi), created.ID)
	assertKind(t, err, ErrForbidden)
	assert.Equal(t, int64(1), env.countLectures(t))

	require.NoError(t, svc.DeleteLecture(asTeacher(ananya), created.ID))
	assert.Zero(t, env.countLectures(t))
	assert.Empty(t, env.storedFiles(t))

	published := env.publisher.GetPublishedEvents()
	require.Len(t, published, 2)
	assert.Equal(t, events.LectureDeleted, published[1].Type)

	err = svc.DeleteLecture(asTeacher(ananya), created.ID)
	assertKind(t, err, ErrNotFound)
}

func TestListLectures(t *testing.T) {
	env := newTestEnv(t)
	ananya := testutils.CreateAccount(t, env.db, "teacher_ananya")
	ravi := testutils.CreateAccount(t, env.db, "teacher_ravi")
	slot := testutils.CreateClassSlot(t, env.db, ananya.Timetable.ID)
	for i := 0; i < 7; i++ {
		testutils.CreateLecture(t, env.db, ananya.Profile.ID, &slot.ID, nil)
	}
	testutils.CreateLecture(t, env.db, ananya.Profile.ID, nil, nil)
	svc := env.lectures()

	byTeacher, err := svc.ListByTeacher(asTeacher(ananya), ananya.Profile.ID)
	require.NoError(t, err)
	assert.Len(t, byTeacher, 8)

	_, err = svc.ListByTeacher(asTeacher(ravi), ananya.Profile.ID)
	assertKind(t, err, ErrForbidden)

	byClass, err := svc.ListByClass(asSuperAdmin("superadmin"), slot.ID)
	require.NoError(t, err)
	assert.Len(t, byClass, 7)

	_, err = svc.ListByClass(asTeacher(ravi), slot.ID)
	assertKind(t, err, ErrForbidden)

	recent, err := svc.ListMyRecent(asTeacher(ananya), 0)
	require.NoError(t, err)
	assert.Len(t, recent, defaultRecentLectures)

	recent, err = svc.ListMyRecent(asTeacher(ananya), 3)
	require.NoError(t, err)
	assert.Len(t, recent, 3)

	_, err = svc.ListMyRecent(auth.WithPrincipal(context.Background(), auth.SuperAdmin{Handle: "superadmin"}), 3)
	assertKind(t, err, ErrNotFound)
}
