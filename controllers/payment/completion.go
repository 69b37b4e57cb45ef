package paymentController

import (
	"errors"
	"log"
	"time"

	"github.com/muhammedRiyasck/skillbyte-sub002/database"
	"github.com/muhammedRiyasck/skillbyte-sub002/models"
	courseModels "github.com/muhammedRiyasck/skillbyte-sub002/models/course"
	"github.com/muhammedRiyasck/skillbyte-sub002/payments"
	"github.com/muhammedRiyasck/skillbyte-sub002/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// HandleCompletion applies an authenticated completion outcome to its
// PaymentIntent. Both completion paths (webhook and capture) funnel through
// here. The flow layers two idempotency guards: the dedup ledger absorbs
// event replays, and the status-guarded update absorbs racing completions
// for the same intent. A nil return means "acknowledge"; an error means the
// caller should let the provider redeliver.
func HandleCompletion(db *gorm.DB, providerName string, event payments.Event, rawBody []byte) error {
	var intent models.PaymentIntent
	if err := db.Where("provider = ? AND provider_ref = ?", providerName, event.ProviderRef).First(&intent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Not an intent this system created. Ack so the provider stops
			// retrying garbage events.
			log.Printf("Completion for unknown reference %s/%s ignored", providerName, event.ProviderRef)
			return nil
		}
		return err
	}

	var activated *courseModels.Enrollment
	err := db.Transaction(func(tx *gorm.DB) error {
		// Dedup ledger first: unique(provider, event_id) makes replays
		// observable as a duplicate-key error.
		ledger := models.WebhookEvent{
			Provider:    providerName,
			EventID:     event.EventID,
			EventType:   event.Type,
			Payload:     datatypes.JSON(rawBody),
			ProcessedAt: time.Now(),
		}
		if err := tx.Create(&ledger).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				log.Printf("Duplicate event %s/%s absorbed", providerName, event.EventID)
				return nil
			}
			return err
		}

		var current models.PaymentIntent
		if err := tx.First(&current, intent.ID).Error; err != nil {
			return err
		}
		if current.Terminal() {
			log.Printf("Event %s for terminal intent %d (%s) acknowledged without side effects", event.EventID, current.ID, current.Status)
			return nil
		}

		newStatus := models.IntentFailed
		if event.Outcome.Status == payments.OutcomeSucceeded {
			newStatus = models.IntentSucceeded
		}

		now := time.Now()
		res := tx.Model(&models.PaymentIntent{}).
			Where("id = ? AND status = ?", current.ID, models.IntentPending).
			Updates(map[string]interface{}{"status": newStatus, "completed_at": &now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// A concurrent completion won the transition.
			log.Printf("Intent %d already transitioned, event %s absorbed", current.ID, event.EventID)
			return nil
		}

		if newStatus == models.IntentSucceeded {
			enrollment, created, err := ActivateEnrollment(tx, current.ID)
			if err != nil {
				return err
			}
			if created {
				activated = enrollment
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Fire-and-forget only after the transaction committed; a rolled-back
	// activation must never produce a confirmation mail, and a failed mail
	// never rolls back the enrollment.
	if activated != nil {
		go notifyEnrollment(activated.UserID, activated.CourseID)
	}
	return nil
}

// ActivateEnrollment is the single choke point that creates an Enrollment.
// It re-derives user/course from the PaymentIntent (never from a caller) and
// performs a compare-and-create on (user_id, course_id): losing the insert
// race means somebody already activated, which is success, not an error.
// The created flag reports whether this call inserted the row.
func ActivateEnrollment(db *gorm.DB, paymentIntentID uint) (*courseModels.Enrollment, bool, error) {
	var intent models.PaymentIntent
	if err := db.First(&intent, paymentIntentID).Error; err != nil {
		return nil, false, err
	}

	enrollment := courseModels.Enrollment{
		UserID:                intent.UserID,
		CourseID:              intent.CourseID,
		SourcePaymentIntentID: intent.ID,
		Status:                courseModels.EnrollmentActive,
	}
	if err := db.Create(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var existing courseModels.Enrollment
			if ferr := db.Where("user_id = ? AND course_id = ?", intent.UserID, intent.CourseID).First(&existing).Error; ferr != nil {
				return nil, false, ferr
			}
			// Anomaly worth an audit trail entry, but already satisfied.
			log.Printf("Enrollment already exists for user %d course %d; intent %d absorbed", intent.UserID, intent.CourseID, intent.ID)
			return &existing, false, nil
		}
		return nil, false, err
	}

	return &enrollment, true, nil
}

// notifyEnrollment is the post-commit notification hook, swappable in tests.
var notifyEnrollment = notifyEnrollmentCreated

func notifyEnrollmentCreated(userID, courseID uint) {
	db := database.Database.Db
	if db == nil {
		return
	}

	var user models.User
	var course courseModels.Course
	if err := db.First(&user, userID).Error; err != nil {
		return
	}
	if err := db.First(&course, courseID).Error; err != nil {
		return
	}
	utils.SendEnrollmentEmail(user.Email, user.Name, course.Title)
}
