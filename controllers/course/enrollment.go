package controllers

import (
	"errors"
	"log"

	"github.com/muhammedRiyasck/skillbyte-sub002/database"
	"github.com/muhammedRiyasck/skillbyte-sub002/middleware"
	"github.com/muhammedRiyasck/skillbyte-sub002/models"
	courseModels "github.com/muhammedRiyasck/skillbyte-sub002/models/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CheckEnrollment reports whether the caller holds an enrollment for the
// course. Used by course-access gates in the frontend.
func CheckEnrollment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var enrollment courseModels.Enrollment
	err := database.Database.Db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment checked!", fiber.Map{"enrolled": false})
	}
	if err != nil {
		log.Printf("Error checking enrollment for user %d course %d: %v", userID, courseID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to check enrollment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment checked!", fiber.Map{
		"enrolled":     true,
		"enrollmentId": enrollment.ID,
		"status":       enrollment.Status,
	})
}

// GetUserEnrollments lists the caller's enrollments
func GetUserEnrollments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	reqData, ok := c.Locals("validatedEnrollmentList").(*struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
	})

	db := database.Database.Db.Model(&courseModels.Enrollment{}).Where("user_id = ?", userID)

	var total int64
	db.Count(&total)

	var enrollments []courseModels.Enrollment
	query := db.Order("created_at desc")
	page, limit := 1, int(total)
	if ok {
		page = *reqData.Page
		limit = *reqData.Limit
		query = query.Offset((page - 1) * limit).Limit(limit)
	}
	if err := query.Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	response := map[string]interface{}{
		"enrollments": enrollments,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", response)
}
