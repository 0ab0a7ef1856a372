package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

type DayOfWeek string

const (
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
	Sunday    DayOfWeek = "SUNDAY"
)

var Weekdays = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

type TeacherProfile struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	School      string    `json:"school" gorm:"size:200;index"`
	Department  string    `json:"department" gorm:"size:200"`
	Designation string    `json:"designation" gorm:"size:200"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	User      *User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Timetable *Timetable `json:"timetable,omitempty" gorm:"foreignKey:TeacherProfileID"`
}

func (TeacherProfile) TableName() string {
	return "teacher_profiles"
}

// OwnerHandle returns the login handle of the owning user, empty when the user is not loaded
func (p *TeacherProfile) OwnerHandle() string {
	if p == nil || p.User == nil {
		return ""
	}
	return p.User.Username
}

type Timetable struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	TeacherProfileID uint      `json:"teacher_profile_id" gorm:"uniqueIndex;not null"`
	CreatedAt        time.Time `json:"created_at"`

	// Relations
	TeacherProfile *TeacherProfile `json:"teacher_profile,omitempty" gorm:"foreignKey:TeacherProfileID"`
	ClassSlots     []ClassSlot     `json:"class_slots,omitempty" gorm:"foreignKey:TimetableID"`
}

func (Timetable) TableName() string {
	return "timetables"
}

type ClassSlot struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	TimetableID uint           `json:"timetable_id" gorm:"not null;index"`
	RoomNumber  string         `json:"room_number" gorm:"size:50"`
	DayOfWeek   DayOfWeek      `json:"day_of_week" gorm:"size:10;not null"`
	StartTime   datatypes.Time `json:"start_time" gorm:"not null"`
	EndTime     datatypes.Time `json:"end_time" gorm:"not null"`
	CourseName  string         `json:"course_name" gorm:"size:200"`
	SubjectName string         `json:"subject_name" gorm:"size:200"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	// Relations
	Timetable *Timetable `json:"timetable,omitempty" gorm:"foreignKey:TimetableID"`
}

func (ClassSlot) TableName() string {
	return "class_slots"
}

// OwnerProfileID returns the teacher profile id that owns the slot's timetable
func (s *ClassSlot) OwnerProfileID() uint {
	if s == nil || s.Timetable == nil {
		return 0
	}
	return s.Timetable.TeacherProfileID
}

// ParseDayOfWeek normalizes a weekday name such as "monday"
func ParseDayOfWeek(s string) (DayOfWeek, bool) {
	day := DayOfWeek(strings.ToUpper(strings.TrimSpace(s)))
	for _, d := range Weekdays {
		if d == day {
			return day, true
		}
	}
	return "", false
}

// ParseTimeOfDay accepts "15:04" or "15:04:05"
func ParseTimeOfDay(s string) (datatypes.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return datatypes.NewTime(t.Hour(), t.Minute(), t.Second(), 0), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}

// FormatTimeOfDay renders a time of day as "15:04"
func FormatTimeOfDay(t datatypes.Time) string {
	d := time.Duration(t)
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}
