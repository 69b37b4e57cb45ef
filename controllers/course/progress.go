package controllers

import (
	"errors"
	"time"

	"github.com/muhammedRiyasck/skillbyte-sub002/database"
	"github.com/muhammedRiyasck/skillbyte-sub002/middleware"
	courseModels "github.com/muhammedRiyasck/skillbyte-sub002/models/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UpdateLessonProgress accepts the periodic playback position pings for a
// lesson. Called roughly every 5 seconds of playback and once on stream end,
// so the write path stays a single upsert. Replaying the same payload leaves
// the stored state unchanged.
func UpdateLessonProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	enrollmentID := c.Locals("enrollmentID").(int)

	reqData, ok := c.Locals("validatedLessonProgress").(*struct {
		LessonID          *uint `json:"lessonId"`
		LastWatchedSecond *int  `json:"lastWatchedSecond"`
		TotalDuration     *int  `json:"totalDuration"`
		IsCompleted       bool  `json:"isCompleted"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var enrollment courseModels.Enrollment
	if err := database.Database.Db.First(&enrollment, enrollmentID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	}
	if enrollment.UserID != userID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Enrollment does not belong to you!", nil)
	}

	// The lesson must be a published lesson of the enrolled course.
	var lesson courseModels.Lesson
	if err := database.Database.Db.
		Where("id = ? AND course_id = ? AND is_deleted = ? AND is_published = ?", *reqData.LessonID, enrollment.CourseID, false, true).
		First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	progress, err := ApplyLessonProgress(database.Database.Db, &enrollment, *reqData.LessonID, *reqData.LastWatchedSecond, *reqData.TotalDuration, reqData.IsCompleted)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update progress!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress updated successfully!", progress)
}

// ApplyLessonProgress upserts the progress row for (enrollment, lesson).
// lastWatchedSecond is client-supplied and clamped into [0, totalDuration];
// isCompleted is sticky and never flips back to false. Afterwards the
// enrollment status is rolled up to COMPLETED once every published lesson of
// the course has a completed row.
func ApplyLessonProgress(db *gorm.DB, enrollment *courseModels.Enrollment, lessonID uint, lastWatchedSecond, totalDuration int, isCompleted bool) (*courseModels.LessonProgress, error) {
	if totalDuration < 0 {
		totalDuration = 0
	}
	if lastWatchedSecond < 0 {
		lastWatchedSecond = 0
	}
	if lastWatchedSecond > totalDuration {
		lastWatchedSecond = totalDuration
	}

	var progress courseModels.LessonProgress
	err := db.Where("enrollment_id = ? AND lesson_id = ?", enrollment.ID, lessonID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = courseModels.LessonProgress{
			EnrollmentID:      enrollment.ID,
			LessonID:          lessonID,
			LastWatchedSecond: lastWatchedSecond,
			TotalDuration:     totalDuration,
			IsCompleted:       isCompleted,
		}
		if cerr := db.Create(&progress).Error; cerr != nil {
			if !errors.Is(cerr, gorm.ErrDuplicatedKey) {
				return nil, cerr
			}
			// Lost a concurrent first-write race; fall through to update.
			if ferr := db.Where("enrollment_id = ? AND lesson_id = ?", enrollment.ID, lessonID).First(&progress).Error; ferr != nil {
				return nil, ferr
			}
		} else {
			if isCompleted {
				if rerr := rollupEnrollment(db, enrollment); rerr != nil {
					return nil, rerr
				}
			}
			return &progress, nil
		}
	} else if err != nil {
		return nil, err
	}

	progress.LastWatchedSecond = lastWatchedSecond
	progress.TotalDuration = totalDuration
	progress.IsCompleted = progress.IsCompleted || isCompleted
	if err := db.Save(&progress).Error; err != nil {
		return nil, err
	}

	if progress.IsCompleted {
		if err := rollupEnrollment(db, enrollment); err != nil {
			return nil, err
		}
	}
	return &progress, nil
}

// rollupEnrollment marks the enrollment COMPLETED once every published
// lesson has a completed progress row
func rollupEnrollment(db *gorm.DB, enrollment *courseModels.Enrollment) error {
	if enrollment.Status == courseModels.EnrollmentCompleted {
		return nil
	}

	var totalLessons int64
	if err := db.Model(&courseModels.Lesson{}).
		Where("course_id = ? AND is_deleted = ? AND is_published = ?", enrollment.CourseID, false, true).
		Count(&totalLessons).Error; err != nil {
		return err
	}
	if totalLessons == 0 {
		return nil
	}

	// Only progress rows for the course's own published lessons count;
	// rows minted against draft or foreign lesson ids must not substitute
	// for an unwatched lesson.
	published := db.Model(&courseModels.Lesson{}).Select("id").
		Where("course_id = ? AND is_deleted = ? AND is_published = ?", enrollment.CourseID, false, true)

	var completed int64
	if err := db.Model(&courseModels.LessonProgress{}).
		Where("enrollment_id = ? AND is_completed = ? AND lesson_id IN (?)", enrollment.ID, true, published).
		Count(&completed).Error; err != nil {
		return err
	}
	if completed < totalLessons {
		return nil
	}

	now := time.Now()
	enrollment.Status = courseModels.EnrollmentCompleted
	enrollment.CompletedAt = &now
	return db.Model(&courseModels.Enrollment{}).
		Where("id = ? AND status = ?", enrollment.ID, courseModels.EnrollmentActive).
		Updates(map[string]interface{}{"status": courseModels.EnrollmentCompleted, "completed_at": &now}).Error
}
