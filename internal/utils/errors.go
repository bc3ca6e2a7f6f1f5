package utils

import (
	"github.com/gofiber/fiber/v3"
)

type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewInternalError(err error) *APIError {
	return &APIError{
		StatusCode: fiber.StatusInternalServerError,
		Code:       "INTERNAL_ERROR",
		Message:    "An internal error occurred",
		Details:    err.Error(),
	}
}

// ErrorHandler is the app-level Fiber error handler for APIError values.
func ErrorHandler(c fiber.Ctx, err error) error {
	apiErr, ok := err.(*APIError)
	if !ok {
		apiErr = NewInternalError(err)
	}

	return c.Status(apiErr.StatusCode).JSON(apiErr)
}
