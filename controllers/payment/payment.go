package paymentController

import (
	"errors"
	"log"

	"github.com/muhammedRiyasck/skillbyte-sub002/database"
	"github.com/muhammedRiyasck/skillbyte-sub002/middleware"
	"github.com/muhammedRiyasck/skillbyte-sub002/models"
	courseModels "github.com/muhammedRiyasck/skillbyte-sub002/models/course"
	"github.com/muhammedRiyasck/skillbyte-sub002/payments"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// InitiatePayment starts a purchase: resolves the canonical course price,
// asks the provider for a pending object and persists the PaymentIntent.
// Nothing is persisted until the provider call returns, so the whole call is
// safe to retry on a 503.
func InitiatePayment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	reqData, ok := c.Locals("validatedInitiate").(*struct {
		CourseID *uint  `json:"courseId"`
		Provider string `json:"provider"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Server-side price authority: the course row decides amount/currency,
	// never the client.
	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND is_published = ?", *reqData.CourseID, false, true).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found or not published!", nil)
	}

	// Already enrolled users have nothing to buy.
	var existing courseModels.Enrollment
	err := database.Database.Db.Where("user_id = ? AND course_id = ?", userID, course.ID).First(&existing).Error
	if err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Already enrolled in this course!", nil)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Error checking enrollment for user %d course %d: %v", userID, course.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to check enrollment!", nil)
	}

	provider, err := payments.Resolve(reqData.Provider)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Unsupported payment provider!", nil)
	}

	initResp, err := provider.Initiate(c.UserContext(), payments.InitiateRequest{
		Amount:   course.Price,
		Currency: course.Currency,
		UserID:   userID,
		CourseID: course.ID,
	})
	if err != nil {
		log.Printf("Error initiating %s payment for course %d: %v", provider.Name(), course.ID, err)
		if payments.IsRetryable(err) {
			return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Payment provider unavailable, please try again!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Payment rejected by provider!", nil)
	}

	intent := models.PaymentIntent{
		UserID:      userID,
		CourseID:    course.ID,
		Provider:    provider.Name(),
		ProviderRef: initResp.ProviderRef,
		Amount:      course.Price,
		Currency:    course.Currency,
		Status:      models.IntentPending,
	}
	if err := database.Database.Db.Create(&intent).Error; err != nil {
		log.Printf("Error persisting payment intent %s: %v", initResp.ProviderRef, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create payment!", nil)
	}

	response := fiber.Map{
		"paymentIntentId": intent.ID,
		"provider":        intent.Provider,
		"providerRef":     intent.ProviderRef,
		"amount":          intent.Amount,
		"currency":        intent.Currency,
	}
	if initResp.ClientSecret != "" {
		response["clientSecret"] = initResp.ClientSecret
	}
	if initResp.ApprovalLink != "" {
		response["approvalLink"] = initResp.ApprovalLink
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment initiated successfully!", response)
}

// CapturePayment is the pull-style completion path: the client calls back
// after the provider-side approval redirect and we capture explicitly.
// Replays are absorbed: a terminal intent just reports its status.
func CapturePayment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedCapture").(*struct {
		OrderID string `json:"orderId"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var intent models.PaymentIntent
	if err := database.Database.Db.Where("provider_ref = ?", reqData.OrderID).First(&intent).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Payment not found!", nil)
	}
	if intent.UserID != userID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Payment does not belong to you!", nil)
	}
	if intent.Terminal() {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment already finalized!", fiber.Map{"status": intent.Status})
	}

	provider, err := payments.Resolve(intent.Provider)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Unsupported payment provider!", nil)
	}

	outcome, err := provider.Capture(c.UserContext(), intent.ProviderRef)
	if err != nil {
		if errors.Is(err, payments.ErrCaptureNotSupported) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "This provider finalizes payments via webhook!", nil)
		}
		log.Printf("Error capturing %s order %s: %v", intent.Provider, intent.ProviderRef, err)
		if payments.IsRetryable(err) {
			return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Payment provider unavailable, please try again!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Payment capture rejected by provider!", nil)
	}

	// Capture calls carry no provider event id; a synthetic one keeps the
	// ledger uniform across both completion paths.
	event := payments.Event{
		EventID:     "capture:" + intent.ProviderRef,
		Type:        "order.captured",
		ProviderRef: intent.ProviderRef,
		Outcome:     outcome,
	}
	if err := HandleCompletion(database.Database.Db, intent.Provider, event, nil); err != nil {
		log.Printf("Error finalizing capture for %s: %v", intent.ProviderRef, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to finalize payment!", nil)
	}

	if err := database.Database.Db.First(&intent, intent.ID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load payment!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment captured!", fiber.Map{"status": intent.Status})
}

// StripeWebhook is the push-style completion path. The signature gate runs
// before any state is touched; once an event is durably recorded the
// response is 200 even when the business outcome was "ignored duplicate",
// so the provider stops retrying.
func StripeWebhook(c *fiber.Ctx) error {
	provider, err := payments.Resolve("stripe")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Unsupported payment provider!", nil)
	}

	body := c.Body()
	event, err := provider.VerifyWebhook(c.Get("Stripe-Signature"), body)
	if err != nil {
		log.Printf("Rejected stripe webhook: %v", err)
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid webhook!", nil)
	}

	// Event types that carry no completion are acknowledged and dropped.
	if event.Outcome.Status == "" {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Event ignored.", nil)
	}

	if err := HandleCompletion(database.Database.Db, provider.Name(), event, body); err != nil {
		log.Printf("Error processing stripe event %s: %v", event.EventID, err)
		// 500 so the provider redelivers.
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process event!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Event processed.", nil)
}

// GetPaymentHistory lists the caller's payment intents, newest first.
func GetPaymentHistory(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var intents []models.PaymentIntent
	if err := database.Database.Db.Where("user_id = ?", userID).Order("created_at desc").Find(&intents).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch payments!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payments fetched successfully!", fiber.Map{"payments": intents})
}
