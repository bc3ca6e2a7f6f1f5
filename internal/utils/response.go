package utils

import "github.com/gofiber/fiber/v3"

// SuccessResponse sends a standardized success envelope.
func SuccessResponse(c fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// ErrorResponse sends a standardized error envelope.
func ErrorResponse(c fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}
