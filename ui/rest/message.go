package rest

import (
	"github.com/gofiber/fiber/v2"
	domainMessage "github.com/shipliyo/smsgate/domains/message"
)

type Message struct {
	Service domainMessage.IMessageUsecase
}

func InitRestMessage(app fiber.Router, service domainMessage.IMessageUsecase) Message {
	rest := Message{Service: service}
	app.Get("/sms", rest.Recent)
	return rest
}

// Recent lists the newest stored messages for diagnostics.
func (controller *Message) Recent(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)

	messages, err := controller.Service.Recent(c.UserContext(), limit)
	if err != nil {
		status, code := statusOf(err)
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"code":    code,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"count":    len(messages),
		"sms_list": messages,
	})
}
