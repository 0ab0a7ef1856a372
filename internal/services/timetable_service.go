package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/lecture-service/internal/auth"
	"github.com/SAP-F-2025/lecture-service/internal/models"
	"github.com/SAP-F-2025/lecture-service/internal/repositories"
)

const (
	msgTimetableNotFound = "Timetable not found."
	msgTimetableAccess   = "You do not have access to this timetable."
)

type timetableService struct {
	repo repositories.Repository
}

func NewTimetableService(repo repositories.Repository) TimetableService {
	return &timetableService{repo: repo}
}

func (s *timetableService) Get(ctx context.Context, id uint) (*models.TimetableResponse, error) {
	timetable, err := s.repo.Timetable().GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgTimetableNotFound, "failed to load timetable")
	}
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.ResourceOf(timetable.TeacherProfile)); err != nil {
		return nil, fromPolicy(err, msgTimetableAccess)
	}
	return toTimetableResponse(timetable), nil
}

func (s *timetableService) GetMine(ctx context.Context) (*models.TimetableResponse, error) {
	p := auth.PrincipalFrom(ctx)
	if !auth.IsAuthenticated(p) {
		return nil, fromPolicy(auth.ErrUnauthenticated, "")
	}

	profile, err := s.repo.TeacherProfile().GetByUsername(ctx, p.Subject())
	if err != nil {
		return nil, notFoundOr(err, msgProfileNotFound, "failed to load teacher profile")
	}
	timetable, err := s.repo.Timetable().GetByTeacherProfileID(ctx, profile.ID)
	if err != nil {
		return nil, notFoundOr(err, msgTimetableNotFound, "failed to load timetable")
	}
	return toTimetableResponse(timetable), nil
}

func (s *timetableService) List(ctx context.Context) ([]*models.TimetableResponse, error) {
	var timetables []*models.Timetable
	switch p := auth.PrincipalFrom(ctx).(type) {
	case auth.SuperAdmin:
		found, err := s.repo.Timetable().List(ctx, "")
		if err != nil {
			return nil, err
		}
		timetables = found
	case auth.Admin:
		if strings.TrimSpace(p.School) == "" {
			break
		}
		found, err := s.repo.Timetable().List(ctx, p.School)
		if err != nil {
			return nil, err
		}
		timetables = found
	case auth.Teacher:
		if p.ProfileID == 0 {
			break
		}
		timetable, err := s.repo.Timetable().GetByTeacherProfileID(ctx, p.ProfileID)
		switch {
		case err == nil:
			timetables = append(timetables, timetable)
		case !repositories.IsNotFoundError(err):
			return nil, fmt.Errorf("failed to load timetable: %w", err)
		}
	default:
		return nil, fromPolicy(auth.ErrUnauthenticated, "")
	}

	out := make([]*models.TimetableResponse, 0, len(timetables))
	for _, t := range timetables {
		out = append(out, toTimetableResponse(t))
	}
	return out, nil
}
