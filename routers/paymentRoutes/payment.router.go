package paymentRoutes

import (
	controllers "github.com/muhammedRiyasck/skillbyte-sub002/controllers/payment"
	"github.com/muhammedRiyasck/skillbyte-sub002/middleware"
	validators "github.com/muhammedRiyasck/skillbyte-sub002/validators/payment"

	"github.com/gofiber/fiber/v2"
)

// SetupPaymentRoutes sets up all payment routes
func SetupPaymentRoutes(app *fiber.App) {
	paymentGroup := app.Group("/payment")

	paymentGroup.Post("/initiate", middleware.JWTMiddleware, validators.InitiatePayment(), controllers.InitiatePayment)

	// Pull-style providers only (PayPal): client finalizes after approval redirect
	paymentGroup.Post("/capture", middleware.JWTMiddleware, validators.CapturePayment(), controllers.CapturePayment)

	// Provider-signed callback; no user session
	paymentGroup.Post("/webhook", controllers.StripeWebhook)

	paymentGroup.Get("/history", middleware.JWTMiddleware, controllers.GetPaymentHistory)
}
