// FILE: internal/controller/admin_session_controller.go
package controller

import (
	"errors"

	"inspection-be/internal/dto"
	"inspection-be/internal/pkg/logger"
	"inspection-be/internal/pkg/serverutils"
	"inspection-be/internal/service"
	internalWS "inspection-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type IAdminSessionController interface {
	RegisterRoutes(r fiber.Router)
	GetSession(ctx *fiber.Ctx) error
	ResetSession(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	LocationStatus(ctx *fiber.Ctx) error
	AuditLogs(ctx *fiber.Ctx) error
	ServeProgress(ctx *fiber.Ctx) error
}

type adminSessionController struct {
	service   service.ISessionAdminService
	hub       *internalWS.Hub
	jwtSecret string
	logger    logger.ILogger
}

func NewAdminSessionController(svc service.ISessionAdminService, hub *internalWS.Hub, jwtSecret string, log logger.ILogger) IAdminSessionController {
	return &adminSessionController{
		service:   svc,
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

func (c *adminSessionController) RegisterRoutes(r fiber.Router) {
	auth := serverutils.NewJwtMiddleware(c.jwtSecret)

	// Per-route middleware: the /whatsapp prefix is shared with the public webhook.
	wa := r.Group("/whatsapp")
	wa.Get("/sessions/:key", auth, c.GetSession)
	wa.Delete("/sessions/:key", auth, c.ResetSession)
	wa.Post("/messages", auth, c.SendMessage)
	wa.Get("/audit-logs", auth, c.AuditLogs)

	r.Get("/work-orders/:id/locations", auth, c.LocationStatus)
	r.Get("/ws/progress", auth, c.ServeProgress)
}

func (c *adminSessionController) GetSession(ctx *fiber.Ctx) error {
	res, err := c.service.GetSession(ctx.UserContext(), ctx.Params("key"))
	if err != nil {
		return mapServiceError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get session", res))
}

func (c *adminSessionController) ResetSession(ctx *fiber.Ctx) error {
	if err := c.service.ResetSession(ctx.UserContext(), ctx.Params("key")); err != nil {
		return mapServiceError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Session reset", nil))
}

func (c *adminSessionController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrBadRequest("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.SendMessage(ctx.UserContext(), &req); err != nil {
		return serverutils.NewAppError(fiber.StatusBadGateway, "Failed to deliver message", err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Message sent", nil))
}

func (c *adminSessionController) LocationStatus(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.ErrBadRequest("Invalid work order id")
	}

	res, err := c.service.LocationStatus(ctx.UserContext(), id)
	if err != nil {
		return mapServiceError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get locations", res))
}

func (c *adminSessionController) AuditLogs(ctx *fiber.Ctx) error {
	var req dto.AuditLogListRequest
	if err := ctx.QueryParser(&req); err != nil {
		return serverutils.ErrBadRequest("Invalid query")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.AuditLogs(&req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get audit logs", res))
}

// ServeProgress streams progress events over a websocket. Without
// work_order_id the client watches every work order.
func (c *adminSessionController) ServeProgress(ctx *fiber.Ctx) error {
	workOrderID := uuid.Nil
	if raw := ctx.Query("work_order_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return serverutils.ErrBadRequest("Invalid work_order_id")
		}
		workOrderID = id
	}
	if c.hub == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Progress stream disabled")
	}
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		c.logger.Info("AdminSessionController", "Progress stream opened", map[string]interface{}{"work_order_id": workOrderID})
		internalWS.ServeWs(c.hub, conn, workOrderID)
		c.logger.Info("AdminSessionController", "Progress stream closed", map[string]interface{}{"work_order_id": workOrderID})
	})(ctx)
}

func mapServiceError(err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return serverutils.ErrNotFound("Session not found")
	case errors.Is(err, service.ErrWorkOrderNotFound):
		return serverutils.ErrNotFound("Work order not found")
	default:
		return err
	}
}
