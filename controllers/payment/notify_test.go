package paymentController

import (
	"testing"
	"time"

	"github.com/muhammedRiyasck/skillbyte-sub002/database"
	"github.com/muhammedRiyasck/skillbyte-sub002/models"
	courseModels "github.com/muhammedRiyasck/skillbyte-sub002/models/course"
	"github.com/muhammedRiyasck/skillbyte-sub002/payments"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type notifyCall struct {
	userID   uint
	courseID uint
}

func newNotifyTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func captureNotifications(t *testing.T) chan notifyCall {
	t.Helper()

	calls := make(chan notifyCall, 4)
	orig := notifyEnrollment
	notifyEnrollment = func(userID, courseID uint) {
		calls <- notifyCall{userID: userID, courseID: courseID}
	}
	t.Cleanup(func() { notifyEnrollment = orig })
	return calls
}

func waitForNotification(t *testing.T, calls chan notifyCall) notifyCall {
	t.Helper()
	select {
	case call := <-calls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("expected an enrollment notification")
		return notifyCall{}
	}
}

func assertNoNotification(t *testing.T, calls chan notifyCall) {
	t.Helper()
	select {
	case call := <-calls:
		t.Fatalf("unexpected notification for user %d course %d", call.userID, call.courseID)
	case <-time.After(100 * time.Millisecond):
	}
}

func seedNotifyIntent(t *testing.T, db *gorm.DB) models.PaymentIntent {
	t.Helper()

	user := models.User{Name: "Asha", Email: "asha@example.com", Role: "STUDENT"}
	require.NoError(t, db.Create(&user).Error)
	course := courseModels.Course{Title: "Go Basics", Price: 2000, Currency: "USD", IsPublished: true}
	require.NoError(t, db.Create(&course).Error)

	intent := models.PaymentIntent{
		UserID: user.ID, CourseID: course.ID, Provider: "stripe", ProviderRef: "pi_1",
		Amount: 2000, Currency: "USD", Status: models.IntentPending,
	}
	require.NoError(t, db.Create(&intent).Error)
	return intent
}

func notifySucceededEvent(eventID string) payments.Event {
	return payments.Event{
		EventID:     eventID,
		Type:        "payment_intent.succeeded",
		ProviderRef: "pi_1",
		Outcome:     payments.Outcome{Status: payments.OutcomeSucceeded, Amount: 2000, Currency: "USD"},
	}
}

func TestNotificationSentOnceAfterActivation(t *testing.T) {
	db := newNotifyTestDB(t)
	intent := seedNotifyIntent(t, db)
	calls := captureNotifications(t)

	require.NoError(t, HandleCompletion(db, "stripe", notifySucceededEvent("evt_1"), nil))

	call := waitForNotification(t, calls)
	assert.Equal(t, intent.UserID, call.userID)
	assert.Equal(t, intent.CourseID, call.courseID)

	// replay and a later distinct event both complete without a second mail
	require.NoError(t, HandleCompletion(db, "stripe", notifySucceededEvent("evt_1"), nil))
	require.NoError(t, HandleCompletion(db, "stripe", notifySucceededEvent("evt_2"), nil))
	assertNoNotification(t, calls)
}

func TestNoNotificationOnFailedOutcome(t *testing.T) {
	db := newNotifyTestDB(t)
	seedNotifyIntent(t, db)
	calls := captureNotifications(t)

	event := payments.Event{
		EventID:     "evt_1",
		Type:        "payment_intent.payment_failed",
		ProviderRef: "pi_1",
		Outcome:     payments.Outcome{Status: payments.OutcomeFailed, Amount: 2000, Currency: "USD"},
	}
	require.NoError(t, HandleCompletion(db, "stripe", event, nil))
	assertNoNotification(t, calls)
}

func TestNoNotificationWhenEnrollmentAlreadyExists(t *testing.T) {
	db := newNotifyTestDB(t)
	intent := seedNotifyIntent(t, db)
	require.NoError(t, db.Create(&courseModels.Enrollment{
		UserID: intent.UserID, CourseID: intent.CourseID, SourcePaymentIntentID: 999, Status: courseModels.EnrollmentActive,
	}).Error)
	calls := captureNotifications(t)

	require.NoError(t, HandleCompletion(db, "stripe", notifySucceededEvent("evt_1"), nil))
	assertNoNotification(t, calls)
}
