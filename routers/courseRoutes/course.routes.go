package courseRoutes

import (
	controllers "github.com/muhammedRiyasck/skillbyte-sub002/controllers/course"
	"github.com/muhammedRiyasck/skillbyte-sub002/middleware"
	validators "github.com/muhammedRiyasck/skillbyte-sub002/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all user-facing course and enrollment routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")

	// Course listing and details (published courses)
	courseGroup.Get("/list", middleware.JWTMiddleware, validators.CourseList(), controllers.GetAllCourses)
	courseGroup.Get("/:id", middleware.JWTMiddleware, validators.GetCourseDetail(), controllers.GetCourseDetails)

	// Enrollment access check and lesson progress
	enrollGroup := app.Group("/enrollment")
	enrollGroup.Get("/:course_id/check", middleware.JWTMiddleware, validators.CheckEnrollment(), controllers.CheckEnrollment)
	enrollGroup.Patch("/:enrollment_id/lesson-progress", middleware.JWTMiddleware, validators.UpdateLessonProgress(), controllers.UpdateLessonProgress)

	// User enrollments
	userGroup := app.Group("/user")
	userGroup.Get("/enrollments", middleware.JWTMiddleware, validators.GetUserEnrollments(), controllers.GetUserEnrollments)
}
