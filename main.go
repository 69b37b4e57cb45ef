package main

import (
	"log"
	"time"

	"github.com/muhammedRiyasck/skillbyte-sub002/config"
	"github.com/muhammedRiyasck/skillbyte-sub002/database"
	"github.com/muhammedRiyasck/skillbyte-sub002/payments"
	courseRoutes "github.com/muhammedRiyasck/skillbyte-sub002/routers/courseRoutes"
	paymentRoutes "github.com/muhammedRiyasck/skillbyte-sub002/routers/paymentRoutes"
	"github.com/muhammedRiyasck/skillbyte-sub002/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	// Populate the provider registry before the server accepts traffic;
	// resolution is lock-free reads from here on.
	timeout := time.Duration(config.AppConfig.ProviderTimeoutSec) * time.Second
	payments.Register(payments.NewStripeProvider(
		config.AppConfig.StripeApiURL,
		config.AppConfig.StripeSecretKey,
		config.AppConfig.StripeWebhookSecret,
		timeout,
	))
	payments.Register(payments.NewPayPalProvider(
		config.AppConfig.PayPalApiURL,
		config.AppConfig.PayPalClientID,
		config.AppConfig.PayPalClientSecret,
		timeout,
	))

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization,Stripe-Signature",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	paymentRoutes.SetupPaymentRoutes(app)
	courseRoutes.SetupCourseRoutes(app)

	utils.InitializeSweeper()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
