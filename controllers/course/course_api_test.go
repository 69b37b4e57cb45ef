package controllers_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/muhammedRiyasck/skillbyte-sub002/database"
	"github.com/muhammedRiyasck/skillbyte-sub002/middleware"
	"github.com/muhammedRiyasck/skillbyte-sub002/models"
	courseModels "github.com/muhammedRiyasck/skillbyte-sub002/models/course"
	courseRoutes "github.com/muhammedRiyasck/skillbyte-sub002/routers/courseRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type apiEnvelope struct {
	Status  bool                   `json:"status"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	database.Database = database.DbInstance{Db: db}

	app := fiber.New()
	courseRoutes.SetupCourseRoutes(app)
	return app, db
}

func seedStudent(t *testing.T, db *gorm.DB, email string) (models.User, string) {
	t.Helper()

	user := models.User{Name: "Student", Email: email, Role: "STUDENT"}
	require.NoError(t, db.Create(&user).Error)

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	require.NoError(t, err)
	return user, token
}

func request(t *testing.T, app *fiber.App, method, path, token, body string) (*http.Response, apiEnvelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env apiEnvelope
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp, env
}

func TestCourseListOnlyPublished(t *testing.T) {
	app, db := setupApp(t)
	_, token := seedStudent(t, db, "asha@example.com")

	require.NoError(t, db.Create(&courseModels.Course{Title: "Published", Price: 2000, Currency: "USD", IsPublished: true}).Error)
	require.NoError(t, db.Create(&courseModels.Course{Title: "Draft", Price: 1000, Currency: "USD", IsPublished: false}).Error)

	resp, env := request(t, app, fiber.MethodGet, "/course/list", token, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	courses, ok := env.Data["courses"].([]interface{})
	require.True(t, ok)
	assert.Len(t, courses, 1)
}

func TestCourseDetailsWithLessons(t *testing.T) {
	app, db := setupApp(t)
	_, token := seedStudent(t, db, "asha@example.com")

	course := courseModels.Course{Title: "Go Basics", Price: 2000, Currency: "USD", IsPublished: true}
	require.NoError(t, db.Create(&course).Error)
	require.NoError(t, db.Create(&courseModels.Lesson{CourseID: course.ID, Title: "Intro", DurationSec: 300, OrderIndex: 0, IsPublished: true}).Error)
	require.NoError(t, db.Create(&courseModels.Lesson{CourseID: course.ID, Title: "Draft", DurationSec: 100, OrderIndex: 1, IsPublished: false}).Error)

	resp, env := request(t, app, fiber.MethodGet, fmt.Sprintf("/course/%d", course.ID), token, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	lessons, ok := env.Data["lessons"].([]interface{})
	require.True(t, ok)
	assert.Len(t, lessons, 1)
}

func TestCourseDetailsUnpublishedHidden(t *testing.T) {
	app, db := setupApp(t)
	_, token := seedStudent(t, db, "asha@example.com")

	course := courseModels.Course{Title: "Draft", Price: 2000, Currency: "USD", IsPublished: false}
	require.NoError(t, db.Create(&course).Error)

	resp, _ := request(t, app, fiber.MethodGet, fmt.Sprintf("/course/%d", course.ID), token, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCheckEnrollmentStates(t *testing.T) {
	app, db := setupApp(t)
	user, token := seedStudent(t, db, "asha@example.com")

	course := courseModels.Course{Title: "Go Basics", Price: 2000, Currency: "USD", IsPublished: true}
	require.NoError(t, db.Create(&course).Error)

	resp, env := request(t, app, fiber.MethodGet, fmt.Sprintf("/enrollment/%d/check", course.ID), token, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, false, env.Data["enrolled"])

	enrollment := courseModels.Enrollment{UserID: user.ID, CourseID: course.ID, SourcePaymentIntentID: 1, Status: courseModels.EnrollmentActive}
	require.NoError(t, db.Create(&enrollment).Error)

	resp, env = request(t, app, fiber.MethodGet, fmt.Sprintf("/enrollment/%d/check", course.ID), token, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, env.Data["enrolled"])
	assert.Equal(t, float64(enrollment.ID), env.Data["enrollmentId"])
	assert.Equal(t, courseModels.EnrollmentActive, env.Data["status"])
}

func TestUpdateLessonProgressEndpoint(t *testing.T) {
	app, db := setupApp(t)
	user, token := seedStudent(t, db, "asha@example.com")

	course := courseModels.Course{Title: "Go Basics", Price: 2000, Currency: "USD", IsPublished: true}
	require.NoError(t, db.Create(&course).Error)
	lesson := courseModels.Lesson{CourseID: course.ID, Title: "Intro", DurationSec: 600, IsPublished: true}
	require.NoError(t, db.Create(&lesson).Error)
	enrollment := courseModels.Enrollment{UserID: user.ID, CourseID: course.ID, SourcePaymentIntentID: 1, Status: courseModels.EnrollmentActive}
	require.NoError(t, db.Create(&enrollment).Error)

	body := fmt.Sprintf(`{"lessonId":%d,"lastWatchedSecond":120,"totalDuration":600,"isCompleted":false}`, lesson.ID)
	resp, _ := request(t, app, fiber.MethodPatch, fmt.Sprintf("/enrollment/%d/lesson-progress", enrollment.ID), token, body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var progress courseModels.LessonProgress
	require.NoError(t, db.Where("enrollment_id = ? AND lesson_id = ?", enrollment.ID, lesson.ID).First(&progress).Error)
	assert.Equal(t, 120, progress.LastWatchedSecond)
}

func TestUpdateLessonProgressForeignEnrollment(t *testing.T) {
	app, db := setupApp(t)
	owner, _ := seedStudent(t, db, "owner@example.com")
	_, intruderToken := seedStudent(t, db, "mallory@example.com")

	course := courseModels.Course{Title: "Go Basics", Price: 2000, Currency: "USD", IsPublished: true}
	require.NoError(t, db.Create(&course).Error)
	enrollment := courseModels.Enrollment{UserID: owner.ID, CourseID: course.ID, SourcePaymentIntentID: 1, Status: courseModels.EnrollmentActive}
	require.NoError(t, db.Create(&enrollment).Error)

	body := `{"lessonId":1,"lastWatchedSecond":120,"totalDuration":600,"isCompleted":false}`
	resp, _ := request(t, app, fiber.MethodPatch, fmt.Sprintf("/enrollment/%d/lesson-progress", enrollment.ID), intruderToken, body)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestUpdateLessonProgressRejectsUnknownOrForeignLessons(t *testing.T) {
	app, db := setupApp(t)
	user, token := seedStudent(t, db, "asha@example.com")

	course := courseModels.Course{Title: "Go Basics", Price: 2000, Currency: "USD", IsPublished: true}
	require.NoError(t, db.Create(&course).Error)
	draft := courseModels.Lesson{CourseID: course.ID, Title: "Draft", DurationSec: 100, IsPublished: false}
	require.NoError(t, db.Create(&draft).Error)

	otherCourse := courseModels.Course{Title: "Rust Basics", Price: 3000, Currency: "USD", IsPublished: true}
	require.NoError(t, db.Create(&otherCourse).Error)
	foreign := courseModels.Lesson{CourseID: otherCourse.ID, Title: "Foreign", DurationSec: 200, IsPublished: true}
	require.NoError(t, db.Create(&foreign).Error)

	enrollment := courseModels.Enrollment{UserID: user.ID, CourseID: course.ID, SourcePaymentIntentID: 1, Status: courseModels.EnrollmentActive}
	require.NoError(t, db.Create(&enrollment).Error)

	path := fmt.Sprintf("/enrollment/%d/lesson-progress", enrollment.ID)
	for _, lessonID := range []uint{9999, draft.ID, foreign.ID} {
		body := fmt.Sprintf(`{"lessonId":%d,"lastWatchedSecond":10,"totalDuration":100,"isCompleted":true}`, lessonID)
		resp, _ := request(t, app, fiber.MethodPatch, path, token, body)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	}

	// none of the rejected calls minted a progress row
	var n int64
	require.NoError(t, db.Model(&courseModels.LessonProgress{}).Count(&n).Error)
	assert.Equal(t, int64(0), n)
}

func TestCheckEnrollmentLookupFailure(t *testing.T) {
	app, db := setupApp(t)
	_, token := seedStudent(t, db, "asha@example.com")

	require.NoError(t, db.Migrator().DropTable(&courseModels.Enrollment{}))

	resp, _ := request(t, app, fiber.MethodGet, "/enrollment/1/check", token, "")
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestUpdateLessonProgressUnknownEnrollment(t *testing.T) {
	app, db := setupApp(t)
	_, token := seedStudent(t, db, "asha@example.com")

	body := `{"lessonId":1,"lastWatchedSecond":120,"totalDuration":600,"isCompleted":false}`
	resp, _ := request(t, app, fiber.MethodPatch, "/enrollment/9999/lesson-progress", token, body)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetUserEnrollments(t *testing.T) {
	app, db := setupApp(t)
	user, token := seedStudent(t, db, "asha@example.com")
	other, _ := seedStudent(t, db, "ben@example.com")

	require.NoError(t, db.Create(&courseModels.Enrollment{UserID: user.ID, CourseID: 1, SourcePaymentIntentID: 1, Status: courseModels.EnrollmentActive}).Error)
	require.NoError(t, db.Create(&courseModels.Enrollment{UserID: other.ID, CourseID: 1, SourcePaymentIntentID: 2, Status: courseModels.EnrollmentActive}).Error)

	resp, env := request(t, app, fiber.MethodGet, "/user/enrollments", token, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	enrollments, ok := env.Data["enrollments"].([]interface{})
	require.True(t, ok)
	assert.Len(t, enrollments, 1)
}
