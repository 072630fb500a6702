package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shipliyo/smsgate/pkg/msgworker"
)

// dispatchPool is set by InitRestWorkerPool; nil until the pool is wired.
var dispatchPool *msgworker.Pool

func InitRestWorkerPool(app fiber.Router, pool *msgworker.Pool) {
	dispatchPool = pool
	app.Get("/dispatch-pool/stats", GetDispatchPoolStats)
}

// GetDispatchPoolStats returns real-time statistics of the SMS dispatch pool.
func GetDispatchPoolStats(c *fiber.Ctx) error {
	if dispatchPool == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Dispatch worker pool not initialized",
		})
	}

	return c.JSON(dispatchPool.GetStats())
}
