package course

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment statuses
const (
	EnrollmentActive    = "ACTIVE"
	EnrollmentCompleted = "COMPLETED"
)

// Enrollment is a user's durable access grant to a course, created exactly
// once per successful payment. The unique (user_id, course_id) index is the
// final safety net against duplicate activation triggers: concurrent
// activations race on the insert and the loser reuses the existing row.
type Enrollment struct {
	gorm.Model
	UserID                uint       `json:"user_id" gorm:"not null;uniqueIndex:ux_enrollments_user_course,priority:1"`
	CourseID              uint       `json:"course_id" gorm:"not null;uniqueIndex:ux_enrollments_user_course,priority:2"`
	SourcePaymentIntentID uint       `json:"source_payment_intent_id" gorm:"index"`
	Status                string     `json:"status" gorm:"size:16;default:'ACTIVE'"`
	CompletedAt           *time.Time `json:"completed_at"`
}

// LessonProgress tracks playback position per lesson within an enrollment,
// created implicitly on the first update for a lesson. IsCompleted is
// sticky: once set it never flips back regardless of later payloads.
type LessonProgress struct {
	gorm.Model
	EnrollmentID      uint `json:"enrollment_id" gorm:"not null;uniqueIndex:ux_lesson_progress_enrollment_lesson,priority:1"`
	LessonID          uint `json:"lesson_id" gorm:"not null;uniqueIndex:ux_lesson_progress_enrollment_lesson,priority:2"`
	LastWatchedSecond int  `json:"last_watched_second" gorm:"default:0"`
	TotalDuration     int  `json:"total_duration" gorm:"default:0"`
	IsCompleted       bool `json:"is_completed" gorm:"default:false"`
}
