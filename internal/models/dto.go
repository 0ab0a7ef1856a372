package models

import (
	"io"
	"time"
)

// ===== AUTH =====

type RegisterRequest struct {
	Username    string `json:"username" validate:"required,handle"`
	Name        string `json:"name" validate:"omitempty,max=100"`
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	School      string `json:"school" validate:"omitempty,max=200"`
	Department  string `json:"department" validate:"omitempty,max=200"`
	Designation string `json:"designation" validate:"omitempty,max=200"`
}

type LoginRequest struct {
	// Username accepts either the login handle or the email address
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string   `json:"token"`
	TokenType string   `json:"token_type"`
	ExpiresIn int64    `json:"expires_in"`
	Role      UserRole `json:"role"`
}

// ===== LECTURES =====

// AudioFile is an uploaded recording that has not been stored yet
type AudioFile struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

type LectureCreateRequest struct {
	TeacherProfileID uint       `json:"teacher_profile_id" form:"teacherProfileId"`
	ClassSlotID      *uint      `json:"class_slot_id" form:"classSlotId"`
	LectureTitle     string     `json:"lecture_title" form:"lectureTitle" validate:"max=300"`
	LectureAudioURL  string     `json:"lecture_audio_url" form:"lectureAudioUrl" validate:"omitempty,max=1000"`
	Audio            *AudioFile `json:"-" form:"-"`
}

type LectureResponse struct {
	ID                    uint      `json:"id"`
	LectureTitle          string    `json:"lecture_title"`
	LectureAudioURL       string    `json:"lecture_audio_url"`
	Score                 *float64  `json:"score"`
	UploadedAt            time.Time `json:"uploaded_at"`
	TeacherProfileID      uint      `json:"teacher_profile_id"`
	ClassSlotID           *uint     `json:"class_slot_id"`
	AnalysisContent       *string   `json:"analysis_content"`
	ScoreReasoning        *string   `json:"score_reasoning"`
	ReviewRatio           *float64  `json:"review_ratio"`
	QuestionVelocity      *float64  `json:"question_velocity"`
	WaitTime              *float64  `json:"wait_time"`
	TeacherTalkingTime    *float64  `json:"teacher_talking_time"`
	LanguageFluency       *float64  `json:"language_fluency"`
	ProcessingTimeSeconds *float64  `json:"processing_time_seconds"`
}

// ===== TEACHER PROFILES & TIMETABLES =====

type TeacherProfileCreateRequest struct {
	UserID      uint   `json:"user_id" validate:"required"`
	School      string `json:"school" validate:"omitempty,max=200"`
	Department  string `json:"department" validate:"omitempty,max=200"`
	Designation string `json:"designation" validate:"omitempty,max=200"`
}

type TeacherProfileResponse struct {
	ID          uint   `json:"id"`
	UserID      uint   `json:"user_id"`
	School      string `json:"school"`
	Department  string `json:"department"`
	Designation string `json:"designation"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	TimetableID *uint  `json:"timetable_id,omitempty"`
}

type TimetableResponse struct {
	ID               uint                `json:"id"`
	TeacherProfileID uint                `json:"teacher_profile_id"`
	ClassSlots       []ClassSlotResponse `json:"class_slots"`
}

// ===== CLASS SLOTS =====

type ClassSlotCreateRequest struct {
	TimetableID uint      `json:"timetable_id" validate:"required"`
	RoomNumber  string    `json:"room_number" validate:"omitempty,max=50"`
	DayOfWeek   DayOfWeek `json:"day_of_week" validate:"required,day_of_week"`
	StartTime   string    `json:"start_time" validate:"required,time_of_day"`
	EndTime     string    `json:"end_time" validate:"required,time_of_day"`
	CourseName  string    `json:"course_name" validate:"omitempty,max=200"`
	SubjectName string    `json:"subject_name" validate:"omitempty,max=200"`
}

type ClassSlotUpdateRequest struct {
	RoomNumber  *string    `json:"room_number" validate:"omitempty,max=50"`
	DayOfWeek   *DayOfWeek `json:"day_of_week" validate:"omitempty,day_of_week"`
	StartTime   *string    `json:"start_time" validate:"omitempty,time_of_day"`
	EndTime     *string    `json:"end_time" validate:"omitempty,time_of_day"`
	CourseName  *string    `json:"course_name" validate:"omitempty,max=200"`
	SubjectName *string    `json:"subject_name" validate:"omitempty,max=200"`
}

type ClassSlotResponse struct {
	ID          uint      `json:"id"`
	TimetableID uint      `json:"timetable_id"`
	RoomNumber  string    `json:"room_number"`
	DayOfWeek   DayOfWeek `json:"day_of_week"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	CourseName  string    `json:"course_name"`
	SubjectName string    `json:"subject_name"`
}

// ===== USER MANAGEMENT =====

type UserCreateRequest struct {
	Name        string   `json:"name" validate:"omitempty,max=100"`
	Email       string   `json:"email" validate:"required,email,max=255"`
	Password    string   `json:"password" validate:"required,min=8,max=72"`
	Role        UserRole `json:"role" validate:"required,user_role"`
	School      string   `json:"school" validate:"omitempty,max=200"`
	Department  string   `json:"department" validate:"omitempty,max=200"`
	Designation string   `json:"designation" validate:"omitempty,max=200"`
}

type UserUpdateRequest struct {
	Name     *string   `json:"name" validate:"omitempty,max=100"`
	Email    *string   `json:"email" validate:"omitempty,email,max=255"`
	Password *string   `json:"password" validate:"omitempty,min=8,max=72"`
	Role     *UserRole `json:"role" validate:"omitempty,user_role"`
}

type UserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ===== DASHBOARD =====

type SchoolStats struct {
	SchoolName       string  `json:"school_name"`
	FacultyCount     int64   `json:"faculty_count"`
	LecturesAnalyzed int64   `json:"lectures_analyzed"`
	AvgScore         float64 `json:"avg_score"`
}

type FacultyStats struct {
	ID               uint       `json:"id"`
	Name             string     `json:"name"`
	Department       string     `json:"department"`
	LecturesAnalyzed int64      `json:"lectures_analyzed"`
	AvgScore         float64    `json:"avg_score"`
	LastActive       *time.Time `json:"last_active"`
}
