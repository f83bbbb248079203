// FILE: internal/controller/webhook_controller.go
package controller

import (
	"encoding/json"
	"strings"

	"inspection-be/internal/dto"
	"inspection-be/internal/pkg/logger"
	"inspection-be/internal/pkg/serverutils"
	"inspection-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

type IWebhookController interface {
	RegisterRoutes(r fiber.Router)
	Verify(ctx *fiber.Ctx) error
	Receive(ctx *fiber.Ctx) error
}

type webhookController struct {
	conversation service.IConversationService
	queue        service.IWebhookQueue
	verifyToken  string
	secret       string
	async        bool
	logger       logger.ILogger
}

// NewWebhookController wires the inbound endpoint. A nil queue forces inline
// handling regardless of async.
func NewWebhookController(
	conversation service.IConversationService,
	queue service.IWebhookQueue,
	verifyToken string,
	secret string,
	async bool,
	log logger.ILogger,
) IWebhookController {
	return &webhookController{
		conversation: conversation,
		queue:        queue,
		verifyToken:  verifyToken,
		secret:       secret,
		async:        async && queue != nil,
		logger:       log,
	}
}

func (c *webhookController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/whatsapp/webhook")
	h.Get("", c.Verify)
	h.Post("", serverutils.NewWebhookTokenMiddleware(c.secret), c.Receive)
}

// Verify answers the provider's subscription handshake.
func (c *webhookController) Verify(ctx *fiber.Ctx) error {
	if c.verifyToken == "" || ctx.Query("hub.verify_token") != c.verifyToken {
		return ctx.Status(fiber.StatusForbidden).JSON(serverutils.ErrorResponse(fiber.StatusForbidden, "Verification failed"))
	}
	return ctx.SendString(ctx.Query("hub.challenge"))
}

func (c *webhookController) Receive(ctx *fiber.Ctx) error {
	raw, err := requestBody(ctx)
	if err != nil {
		return serverutils.ErrBadRequest("Unreadable webhook body")
	}
	if len(raw) == 0 {
		return serverutils.ErrBadRequest("Empty webhook body")
	}

	if c.async {
		if err := c.queue.Enqueue(ctx.UserContext(), raw); err != nil {
			c.logger.Error("WebhookController", "Failed to enqueue webhook", map[string]interface{}{"error": err.Error()})
			return err
		}
		return ctx.JSON(serverutils.SuccessResponse("Webhook queued", dto.WebhookAcceptedResponse{Queued: true}))
	}

	res, err := c.conversation.HandleInbound(ctx.UserContext(), raw)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Webhook processed", dto.WebhookAcceptedResponse{Result: res}))
}

// requestBody returns a copy of the JSON body and re-encodes form posts
// (Twilio) as a flat JSON object. fasthttp reuses the body buffer after the
// handler returns, so queued payloads must not alias it.
func requestBody(ctx *fiber.Ctx) ([]byte, error) {
	contentType := strings.ToLower(ctx.Get(fiber.HeaderContentType))
	if !strings.HasPrefix(contentType, fiber.MIMEApplicationForm) && !strings.HasPrefix(contentType, fiber.MIMEMultipartForm) {
		return utils.CopyBytes(ctx.Body()), nil
	}

	fields := make(map[string]string)
	if strings.HasPrefix(contentType, fiber.MIMEMultipartForm) {
		form, err := ctx.MultipartForm()
		if err != nil {
			return nil, err
		}
		for k, v := range form.Value {
			if len(v) > 0 {
				fields[k] = v[0]
			}
		}
	} else {
		ctx.Request().PostArgs().VisitAll(func(key, value []byte) {
			fields[string(key)] = string(value)
		})
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return json.Marshal(fields)
}
