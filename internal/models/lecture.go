package models

import (
	"time"

	"gorm.io/gorm"
)

type Lecture struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Title    string `json:"lecture_title" gorm:"not null;size:300"`
	AudioURL string `json:"lecture_audio_url" gorm:"not null;size:1000"`

	// Stored reports whether AudioURL is a key in the audio store rather than an external URL
	Stored bool `json:"-" gorm:"default:false"`

	// Analysis results, written once at creation
	Score                 *float64 `json:"score"`
	AnalysisContent       *string  `json:"analysis_content" gorm:"type:text"`
	ScoreReasoning        *string  `json:"score_reasoning" gorm:"type:text"`
	ReviewRatio           *float64 `json:"review_ratio"`
	QuestionVelocity      *float64 `json:"question_velocity"`
	WaitTime              *float64 `json:"wait_time"`
	TeacherTalkingTime    *float64 `json:"teacher_talking_time"`
	LanguageFluency       *float64 `json:"language_fluency"`
	ProcessingTimeSeconds *float64 `json:"processing_time_seconds"`
	AnalysisRequestID     *string  `json:"analysis_request_id" gorm:"size:100"`

	TeacherProfileID uint      `json:"teacher_profile_id" gorm:"not null;index"`
	ClassSlotID      *uint     `json:"class_slot_id" gorm:"index"`
	UploadedAt       time.Time `json:"uploaded_at" gorm:"index"`
	CreatedAt        time.Time `json:"created_at"`

	// Relations
	TeacherProfile *TeacherProfile `json:"-" gorm:"foreignKey:TeacherProfileID"`
	ClassSlot      *ClassSlot      `json:"-" gorm:"foreignKey:ClassSlotID"`
}

func (Lecture) TableName() string {
	return "lectures"
}

// BeforeCreate defaults the upload timestamp to the creation time
func (l *Lecture) BeforeCreate(tx *gorm.DB) error {
	if l.UploadedAt.IsZero() {
		l.UploadedAt = time.Now()
	}
	return nil
}

// AllModels lists every persisted model in dependency order for auto-migration
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&TeacherProfile{},
		&Timetable{},
		&ClassSlot{},
		&Lecture{},
	}
}
