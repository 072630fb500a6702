package rest

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shipliyo/smsgate/domains/health"
	"github.com/shipliyo/smsgate/pkg/utils"
)

type Health struct {
	Service health.IHealthUsecase
}

// InitRestHealth registers the public liveness probe on app and the detailed
// endpoints on api.
func InitRestHealth(app fiber.Router, api fiber.Router, service health.IHealthUsecase) Health {
	handler := Health{Service: service}

	app.Get("/health", handler.Liveness)

	group := api.Group("/health")
	group.Get("/status", handler.GetStatus)
	group.Post("/check-all", handler.CheckAll)
	group.Post("/store/check", handler.CheckStore)

	return handler
}

func (h *Health) Liveness(c *fiber.Ctx) error {
	record, err := h.Service.GetEntityStatus(c.UserContext(), health.EntityStore, "primary")
	if err != nil {
		return c.Status(500).JSON(utils.ResponseData{
			Status:  500,
			Code:    "INTERNAL_SERVER_ERROR",
			Message: err.Error(),
		})
	}

	status, body := fiber.StatusOK, "healthy"
	if !h.Service.StoreAvailable() {
		status, body = fiber.StatusServiceUnavailable, "unhealthy"
	}
	return c.Status(status).JSON(fiber.Map{
		"status":    body,
		"store":     record.Status,
		"message":   record.LastMessage,
		"timestamp": time.Now().UTC(),
	})
}

func (h *Health) GetStatus(c *fiber.Ctx) error {
	records, err := h.Service.GetStatus(c.UserContext())
	if err != nil {
		return c.Status(500).JSON(utils.ResponseData{
			Status:  500,
			Code:    "INTERNAL_SERVER_ERROR",
			Message: err.Error(),
		})
	}
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Health status retrieved",
		Results: records,
	})
}

func (h *Health) CheckAll(c *fiber.Ctx) error {
	records, err := h.Service.CheckAll(c.UserContext())
	if err != nil {
		return c.Status(500).JSON(utils.ResponseData{
			Status:  500,
			Code:    "INTERNAL_SERVER_ERROR",
			Message: err.Error(),
		})
	}
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Verification completed for all entities",
		Results: records,
	})
}

func (h *Health) CheckStore(c *fiber.Ctx) error {
	record, err := h.Service.CheckStore(c.UserContext())
	if err != nil {
		return c.Status(500).JSON(utils.ResponseData{
			Status:  500,
			Code:    "INTERNAL_SERVER_ERROR",
			Message: err.Error(),
		})
	}
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Message store health check completed",
		Results: record,
	})
}
