package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
)

// CORS returns the CORS middleware for the admin frontend. Origins come
// from a comma-separated list; localhost is the development default.
func CORS(origins string) fiber.Handler {
	allowed := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	if origins != "" {
		allowed = strings.Split(origins, ",")
	}

	return cors.New(cors.Config{
		AllowOrigins: allowed,
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
		},
		AllowMethods: []string{
			"GET",
			"POST",
			"DELETE",
			"OPTIONS",
		},
	})
}
