package paymentValidator

import (
	"strings"

	"github.com/muhammedRiyasck/skillbyte-sub002/middleware"

	"github.com/gofiber/fiber/v2"
)

func InitiatePayment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			CourseID *uint  `json:"courseId"`
			Provider string `json:"provider"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.CourseID == nil || *reqData.CourseID == 0 {
			errors["courseId"] = "Course ID is required!"
		}
		if strings.TrimSpace(reqData.Provider) == "" {
			errors["provider"] = "Provider is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedInitiate", reqData)
		return c.Next()
	}
}

func CapturePayment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			OrderID string `json:"orderId"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if strings.TrimSpace(reqData.OrderID) == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{"orderId": "Order ID is required!"})
		}

		c.Locals("validatedCapture", reqData)
		return c.Next()
	}
}
