package serverutils

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

const WebhookTokenHeader = "X-Webhook-Token"

// NewWebhookTokenMiddleware rejects webhook deliveries whose shared-secret
// header does not match. An empty secret disables the check.
func NewWebhookTokenMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if secret == "" {
			return ctx.Next()
		}
		got := ctx.Get(WebhookTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid webhook token"))
		}
		return ctx.Next()
	}
}
