package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// OperatorKeyHeader carries the operator API key
const OperatorKeyHeader = "X-Operator-Key"

// RequireOperator checks the operator key against a bcrypt hash.
// An empty hash lets every request through.
func RequireOperator(keyHash string) fiber.Handler {
	hash := []byte(keyHash)

	return func(c *fiber.Ctx) error {
		if len(hash) == 0 {
			return c.Next()
		}

		key := c.Get(OperatorKeyHeader)
		if key == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		if err := bcrypt.CompareHashAndPassword(hash, []byte(key)); err != nil {
			slog.Info("Operator key rejected", "path", c.Path(), "ip", c.IP())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid operator key",
			})
		}

		return c.Next()
	}
}
