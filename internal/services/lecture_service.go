package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/lecture-service/internal/analysis"
	"github.com/SAP-F-2025/lecture-service/internal/auth"
	"github.com/SAP-F-2025/lecture-service/internal/cache"
	"github.com/SAP-F-2025/lecture-service/internal/events"
	"github.com/SAP-F-2025/lecture-service/internal/models"
	"github.com/SAP-F-2025/lecture-service/internal/repositories"
	"github.com/SAP-F-2025/lecture-service/internal/storage"
	"github.com/SAP-F-2025/lecture-service/internal/validator"
)

const (
	msgOnlyTeacherCreates = "Only TEACHER can create lectures."
	msgProfileNotFound    = "Teacher profile not found."
	msgOwnLecturesOnly    = "You can only manage your own lectures."
	msgClassSlotNotFound  = "Class slot not found."
	msgSlotNotInTimetable = "Class slot does not belong to the teacher's timetable."
	msgLectureNotFound    = "Lecture not found."
)

const (
	defaultRecentLectures = 5
	maxRecentLectures     = 50
)

type lectureService struct {
	repo      repositories.Repository
	store     storage.AudioStore
	analyzer  analysis.Analyzer
	publisher events.EventPublisher
	cache     *cache.CacheManager
	logger    *slog.Logger
	validator *validator.Validator
}

func NewLectureService(repo repositories.Repository, store storage.AudioStore, analyzer analysis.Analyzer, publisher events.EventPublisher, cacheManager *cache.CacheManager, logger *slog.Logger, validator *validator.Validator) LectureService {
	return &lectureService{
		repo:      repo,
		store:     store,
		analyzer:  analyzer,
		publisher: publisher,
		cache:     cacheManager,
		logger:    logger,
		validator: validator,
	}
}

// CreateLecture stores the recording, runs the analysis and persists the lecture with its metrics.
// Any failure after the recording was stored removes it again.
func (s *lectureService) CreateLecture(ctx context.Context, req *models.LectureCreateRequest) (*models.LectureResponse, error) {
	p := auth.PrincipalFrom(ctx)
	if err := auth.RequireRole(p, models.RoleTeacher); err != nil {
		return nil, fromPolicy(err, msgOnlyTeacherCreates)
	}

	if err := s.validateCreate(req); err != nil {
		return nil, err
	}

	profile, err := s.repo.TeacherProfile().GetByID(ctx, req.TeacherProfileID)
	if err != nil {
		return nil, notFoundOr(err, msgProfileNotFound, "failed to load teacher profile")
	}
	if !auth.IsSelf(p, profile.OwnerHandle()) {
		return nil, Forbidden(msgOwnLecturesOnly)
	}

	if req.ClassSlotID != nil {
		if err := s.checkSlot(ctx, s.repo, *req.ClassSlotID, profile.ID); err != nil {
			return nil, err
		}
	}

	lecture := &models.Lecture{
		Title:            strings.TrimSpace(req.LectureTitle),
		TeacherProfileID: profile.ID,
		ClassSlotID:      req.ClassSlotID,
	}

	if req.Audio != nil {
		key, err := s.store.Save(ctx, req.Audio.Filename, req.Audio.Content, req.Audio.ContentType)
		if err != nil {
			return nil, fmt.Errorf("failed to store audio: %w", err)
		}
		lecture.AudioURL = key
		lecture.Stored = true

		result, err := s.analyze(ctx, key, req.Audio.Filename)
		if err != nil {
			removeAudio(ctx, s.store, s.logger, key)
			return nil, err
		}
		applyAnalysis(lecture, result)
	} else {
		lecture.AudioURL = strings.TrimSpace(req.LectureAudioURL)
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if lecture.ClassSlotID != nil {
			if err := s.checkSlot(ctx, tx, *lecture.ClassSlotID, profile.ID); err != nil {
				return err
			}
		}
		return tx.Lecture().Create(ctx, lecture)
	})
	if err != nil {
		if lecture.Stored {
			removeAudio(ctx, s.store, s.logger, lecture.AudioURL)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "Lecture created",
		"lecture_id", lecture.ID,
		"teacher_profile_id", profile.ID,
		"stored", lecture.Stored,
		"scored", lecture.Score != nil)

	cache.InvalidateDashboardCache(ctx, s.cache, profile.School)
	s.publish(ctx, events.LectureCreated, lecture, profile, p.Subject())

	return toLectureResponse(lecture), nil
}

func (s *lectureService) validateCreate(req *models.LectureCreateRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return ValidationFailed(err)
	}
	if strings.TrimSpace(req.LectureTitle) == "" {
		return BadRequest("Lecture title is required.")
	}
	if req.TeacherProfileID == 0 {
		return BadRequest("Teacher profile id is required.")
	}
	if req.Audio == nil && strings.TrimSpace(req.LectureAudioURL) == "" {
		return BadRequest("Either an audio file or an audio URL is required.")
	}
	return nil
}

func (s *lectureService) checkSlot(ctx context.Context, repo repositories.Repository, slotID, profileID uint) error {
	slot, err := repo.ClassSlot().GetByID(ctx, slotID)
	if err != nil {
		return notFoundOr(err, msgClassSlotNotFound, "failed to load class slot")
	}
	if slot.OwnerProfileID() != profileID {
		return BadRequest(msgSlotNotInTimetable)
	}
	return nil
}

func (s *lectureService) analyze(ctx context.Context, key, filename string) (*analysis.Result, error) {
	rc, err := s.store.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to open stored audio: %w", err)
	}
	defer rc.Close()

	result, err := s.analyzer.Analyze(ctx, filename, rc)
	if err != nil {
		s.logger.ErrorContext(ctx, "Audio analysis failed", "key", key, "error", err)
		return nil, fmt.Errorf("audio analysis failed: %w", err)
	}
	return result, nil
}

func applyAnalysis(l *models.Lecture, r *analysis.Result) {
	if r == nil {
		return
	}
	l.Score = r.PedagogicalScore
	l.AnalysisContent = r.Analysis
	l.ScoreReasoning = r.ScoreReasoning
	l.ReviewRatio = r.ReviewRatio
	l.QuestionVelocity = r.QuestionVelocity
	l.WaitTime = r.WaitTime
	l.TeacherTalkingTime = r.TeacherTalkingTime
	l.LanguageFluency = r.LanguageFluency
	l.ProcessingTimeSeconds = r.ProcessingTimeSeconds
	l.AnalysisRequestID = r.RequestID
}

func (s *lectureService) GetLecture(ctx context.Context, id uint) (*models.LectureResponse, error) {
	lecture, err := s.loadAuthorized(ctx, id)
	if err != nil {
		return nil, err
	}
	return toLectureResponse(lecture), nil
}

func (s *lectureService) loadAuthorized(ctx context.Context, id uint) (*models.Lecture, error) {
	lecture, err := s.repo.Lecture().GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgLectureNotFound, "failed to load lecture")
	}
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.ResourceOf(lecture.TeacherProfile)); err != nil {
		return nil, fromPolicy(err, msgOwnLecturesOnly)
	}
	return lecture, nil
}

func (s *lectureService) ListByTeacher(ctx context.Context, profileID uint) ([]*models.LectureResponse, error) {
	profile, err := s.repo.TeacherProfile().GetByID(ctx, profileID)
	if err != nil {
		return nil, notFoundOr(err, msgProfileNotFound, "failed to load teacher profile")
	}
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.ResourceOf(profile)); err != nil {
		return nil, fromPolicy(err, msgOwnLecturesOnly)
	}

	lectures, err := s.repo.Lecture().ListByTeacherProfile(ctx, profile.ID, repositories.LectureFilters{Limit: -1})
	if err != nil {
		return nil, err
	}
	return toLectureResponses(lectures), nil
}

func (s *lectureService) ListByClass(ctx context.Context, slotID uint) ([]*models.LectureResponse, error) {
	slot, err := s.repo.ClassSlot().GetByID(ctx, slotID)
	if err != nil {
		return nil, notFoundOr(err, msgClassSlotNotFound, "failed to load class slot")
	}
	var owner *models.TeacherProfile
	if slot.Timetable != nil {
		owner = slot.Timetable.TeacherProfile
	}
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.ResourceOf(owner)); err != nil {
		return nil, fromPolicy(err, msgOwnLecturesOnly)
	}

	lectures, err := s.repo.Lecture().ListByClassSlot(ctx, slot.ID)
	if err != nil {
		return nil, err
	}
	return toLectureResponses(lectures), nil
}

// ListMyRecent returns the caller's newest lectures
func (s *lectureService) ListMyRecent(ctx context.Context, limit int) ([]*models.LectureResponse, error) {
	p := auth.PrincipalFrom(ctx)
	if !auth.IsAuthenticated(p) {
		return nil, fromPolicy(auth.ErrUnauthenticated, "")
	}
	if limit <= 0 {
		limit = defaultRecentLectures
	}
	limit = min(limit, maxRecentLectures)

	profile, err := s.repo.TeacherProfile().GetByUsername(ctx, p.Subject())
	if err != nil {
		return nil, notFoundOr(err, msgProfileNotFound, "failed to load teacher profile")
	}

	lectures, err := s.repo.Lecture().ListByTeacherProfile(ctx, profile.ID, repositories.LectureFilters{Limit: limit})
	if err != nil {
		return nil, err
	}
	return toLectureResponses(lectures), nil
}

// DeleteLecture removes the row and then its stored recording
func (s *lectureService) DeleteLecture(ctx context.Context, id uint) error {
	lecture, err := s.loadAuthorized(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Lecture().Delete(ctx, lecture.ID); err != nil {
		return notFoundOr(err, msgLectureNotFound, "failed to delete lecture")
	}
	if lecture.Stored {
		removeAudio(ctx, s.store, s.logger, lecture.AudioURL)
	}

	s.logger.InfoContext(ctx, "Lecture deleted", "lecture_id", lecture.ID)

	var school string
	if lecture.TeacherProfile != nil {
		school = lecture.TeacherProfile.School
	}
	cache.InvalidateDashboardCache(ctx, s.cache, school)
	s.publish(ctx, events.LectureDeleted, lecture, lecture.TeacherProfile, auth.PrincipalFrom(ctx).Subject())
	return nil
}

func (s *lectureService) publish(ctx context.Context, eventType string, lecture *models.Lecture, profile *models.TeacherProfile, actor string) {
	if s.publisher == nil {
		return
	}
	data := events.LectureEvent{
		LectureID:        lecture.ID,
		TeacherProfileID: lecture.TeacherProfileID,
		ClassSlotID:      lecture.ClassSlotID,
		Title:            lecture.Title,
		Score:            lecture.Score,
		Actor:            actor,
	}
	if profile != nil {
		data.School = profile.School
	}
	event, err := events.NewEvent(eventType, data)
	if err == nil {
		err = s.publisher.Publish(ctx, event)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to publish lecture event", "event_type", eventType, "lecture_id", lecture.ID, "error", err)
	}
}
