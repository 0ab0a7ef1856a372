package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/datatypes"

	"github.com/SAP-F-2025/lecture-service/internal/auth"
	"github.com/SAP-F-2025/lecture-service/internal/models"
	"github.com/SAP-F-2025/lecture-service/internal/repositories"
	"github.com/SAP-F-2025/lecture-service/internal/validator"
)

const (
	msgOwnClassesOnly   = "You can only manage your own classes."
	msgStartBeforeEnd   = "Start time must be before end time."
	msgInvalidDayOfWeek = "Invalid day of week."
)

type classService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewClassService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) ClassService {
	return &classService{repo: repo, logger: logger, validator: validator}
}

func (s *classService) Create(ctx context.Context, req *models.ClassSlotCreateRequest) (*models.ClassSlotResponse, error) {
	p := auth.PrincipalFrom(ctx)
	if !auth.IsAuthenticated(p) {
		return nil, fromPolicy(auth.ErrUnauthenticated, "")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, ValidationFailed(err)
	}

	day, ok := models.ParseDayOfWeek(string(req.DayOfWeek))
	if !ok {
		return nil, BadRequest(msgInvalidDayOfWeek)
	}
	start, end, err := parseSlotTimes(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	timetable, err := s.repo.Timetable().GetByID(ctx, req.TimetableID)
	if err != nil {
		return nil, notFoundOr(err, msgTimetableNotFound, "failed to load timetable")
	}
	if err := auth.Authorize(p, auth.ResourceOf(timetable.TeacherProfile)); err != nil {
		return nil, fromPolicy(err, msgOwnClassesOnly)
	}

	slot := &models.ClassSlot{
		TimetableID: timetable.ID,
		RoomNumber:  strings.TrimSpace(req.RoomNumber),
		DayOfWeek:   day,
		StartTime:   start,
		EndTime:     end,
		CourseName:  strings.TrimSpace(req.CourseName),
		SubjectName: strings.TrimSpace(req.SubjectName),
	}
	if err := s.repo.ClassSlot().Create(ctx, slot); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Class slot created", "class_slot_id", slot.ID, "timetable_id", timetable.ID)
	return toSlotResponse(slot), nil
}

func (s *classService) Get(ctx context.Context, id uint) (*models.ClassSlotResponse, error) {
	slot, err := s.loadAuthorized(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSlotResponse(slot), nil
}

func (s *classService) loadAuthorized(ctx context.Context, id uint) (*models.ClassSlot, error) {
	slot, err := s.repo.ClassSlot().GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgClassSlotNotFound, "failed to load class slot")
	}
	var owner *models.TeacherProfile
	if slot.Timetable != nil {
		owner = slot.Timetable.TeacherProfile
	}
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.ResourceOf(owner)); err != nil {
		return nil, fromPolicy(err, msgOwnClassesOnly)
	}
	return slot, nil
}

// List returns the slots of one timetable, or every slot the caller may see when timetableID is nil
func (s *classService) List(ctx context.Context, timetableID *uint) ([]*models.ClassSlotResponse, error) {
	p := auth.PrincipalFrom(ctx)
	var filters repositories.ClassSlotFilters

	if timetableID != nil {
		timetable, err := s.repo.Timetable().GetByID(ctx, *timetableID)
		if err != nil {
			return nil, notFoundOr(err, msgTimetableNotFound, "failed to load timetable")
		}
		if err := auth.Authorize(p, auth.ResourceOf(timetable.TeacherProfile)); err != nil {
			return nil, fromPolicy(err, msgTimetableAccess)
		}
		filters.TimetableID = &timetable.ID
	} else {
		switch v := p.(type) {
		case auth.SuperAdmin:
		case auth.Admin:
			if strings.TrimSpace(v.School) == "" {
				return []*models.ClassSlotResponse{}, nil
			}
			filters.School = v.School
		case auth.Teacher:
			if v.ProfileID == 0 {
				return []*models.ClassSlotResponse{}, nil
			}
			timetable, err := s.repo.Timetable().GetByTeacherProfileID(ctx, v.ProfileID)
			if err != nil {
				if repositories.IsNotFoundError(err) {
					return []*models.ClassSlotResponse{}, nil
				}
				return nil, fmt.Errorf("failed to load timetable: %w", err)
			}
			filters.TimetableID = &timetable.ID
		default:
			return nil, fromPolicy(auth.ErrUnauthenticated, "")
		}
	}

	slots, err := s.repo.ClassSlot().List(ctx, filters)
	if err != nil {
		return nil, err
	}
	out := make([]*models.ClassSlotResponse, 0, len(slots))
	for _, slot := range slots {
		out = append(out, toSlotResponse(slot))
	}
	return out, nil
}

func (s *classService) Update(ctx context.Context, id uint, req *models.ClassSlotUpdateRequest) (*models.ClassSlotResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, ValidationFailed(err)
	}
	slot, err := s.loadAuthorized(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.RoomNumber != nil {
		slot.RoomNumber = strings.TrimSpace(*req.RoomNumber)
	}
	if req.DayOfWeek != nil {
		day, ok := models.ParseDayOfWeek(string(*req.DayOfWeek))
		if !ok {
			return nil, BadRequest(msgInvalidDayOfWeek)
		}
		slot.DayOfWeek = day
	}
	if req.StartTime != nil {
		if slot.StartTime, err = models.ParseTimeOfDay(*req.StartTime); err != nil {
			return nil, BadRequest("Invalid start time.")
		}
	}
	if req.EndTime != nil {
		if slot.EndTime, err = models.ParseTimeOfDay(*req.EndTime); err != nil {
			return nil, BadRequest("Invalid end time.")
		}
	}
	if slot.StartTime >= slot.EndTime {
		return nil, BadRequest(msgStartBeforeEnd)
	}
	if req.CourseName != nil {
		slot.CourseName = strings.TrimSpace(*req.CourseName)
	}
	if req.SubjectName != nil {
		slot.SubjectName = strings.TrimSpace(*req.SubjectName)
	}

	if err := s.repo.ClassSlot().Update(ctx, slot); err != nil {
		return nil, notFoundOr(err, msgClassSlotNotFound, "failed to update class slot")
	}
	return toSlotResponse(slot), nil
}

// Delete removes the slot; lectures recorded in it are kept and lose their slot reference
func (s *classService) Delete(ctx context.Context, id uint) error {
	slot, err := s.loadAuthorized(ctx, id)
	if err != nil {
		return err
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Lecture().DetachClassSlot(ctx, slot.ID); err != nil {
			return err
		}
		return tx.ClassSlot().Delete(ctx, slot.ID)
	})
	if err != nil {
		return notFoundOr(err, msgClassSlotNotFound, "failed to delete class slot")
	}

	s.logger.InfoContext(ctx, "Class slot deleted", "class_slot_id", slot.ID)
	return nil
}

func parseSlotTimes(startRaw, endRaw string) (datatypes.Time, datatypes.Time, error) {
	start, err := models.ParseTimeOfDay(startRaw)
	if err != nil {
		return 0, 0, BadRequest("Invalid start time.")
	}
	end, err := models.ParseTimeOfDay(endRaw)
	if err != nil {
		return 0, 0, BadRequest("Invalid end time.")
	}
	if start >= end {
		return 0, 0, BadRequest(msgStartBeforeEnd)
	}
	return start, end, nil
}
