package services

import (
	"github.com/SAP-F-2025/lecture-service/internal/models"
)

func toLectureResponse(l *models.Lecture) *models.LectureResponse {
	return &models.LectureResponse{
		ID:                    l.ID,
		LectureTitle:          l.Title,
		LectureAudioURL:       l.AudioURL,
		Score:                 l.Score,
		UploadedAt:            l.UploadedAt,
		TeacherProfileID:      l.TeacherProfileID,
		ClassSlotID:           l.ClassSlotID,
		AnalysisContent:       l.AnalysisContent,
		ScoreReasoning:        l.ScoreReasoning,
		ReviewRatio:           l.ReviewRatio,
		QuestionVelocity:      l.QuestionVelocity,
		WaitTime:              l.WaitTime,
		TeacherTalkingTime:    l.TeacherTalkingTime,
		LanguageFluency:       l.LanguageFluency,
		ProcessingTimeSeconds: l.ProcessingTimeSeconds,
	}
}

func toLectureResponses(lectures []*models.Lecture) []*models.LectureResponse {
	out := make([]*models.LectureResponse, 0, len(lectures))
	for _, l := range lectures {
		out = append(out, toLectureResponse(l))
	}
	return out
}

func toProfileResponse(p *models.TeacherProfile) *models.TeacherProfileResponse {
	resp := &models.TeacherProfileResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		School:      p.School,
		Department:  p.Department,
		Designation: p.Designation,
	}
	if p.User != nil {
		resp.Name = p.User.Name
		resp.Email = p.User.Email
	}
	if p.Timetable != nil {
		id := p.Timetable.ID
		resp.TimetableID = &id
	}
	return resp
}

func toSlotResponse(s *models.ClassSlot) *models.ClassSlotResponse {
	return &models.ClassSlotResponse{
		ID:          s.ID,
		TimetableID: s.TimetableID,
		RoomNumber:  s.RoomNumber,
		DayOfWeek:   s.DayOfWeek,
		StartTime:   models.FormatTimeOfDay(s.StartTime),
		EndTime:     models.FormatTimeOfDay(s.EndTime),
		CourseName:  s.CourseName,
		SubjectName: s.SubjectName,
	}
}

func toTimetableResponse(t *models.Timetable) *models.TimetableResponse {
	resp := &models.TimetableResponse{
		ID:               t.ID,
		TeacherProfileID: t.TeacherProfileID,
		ClassSlots:       make([]models.ClassSlotResponse, 0, len(t.ClassSlots)),
	}
	for i := range t.ClassSlots {
		resp.ClassSlots = append(resp.ClassSlots, *toSlotResponse(&t.ClassSlots[i]))
	}
	return resp
}

func toUserResponse(u *models.User) *models.UserResponse {
	return &models.UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
