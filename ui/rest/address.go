package rest

import (
	"github.com/gofiber/fiber/v2"
	domainAddress "github.com/shipliyo/smsgate/domains/address"
	"github.com/shipliyo/smsgate/pkg/lang"
)

type Address struct {
	Service domainAddress.IAddressUsecase
}

func InitRestAddress(app fiber.Router, service domainAddress.IAddressUsecase) Address {
	rest := Address{Service: service}
	app.Get("/api/address", rest.Lookup)
	app.Get("/api/shipliyo/address", rest.Lookup)
	app.Get("/api/languages", rest.Languages)
	return rest
}

func (controller *Address) Lookup(c *fiber.Ctx) error {
	request := domainAddress.LookupRequest{Phone: c.Query("phone")}

	address, err := controller.Service.Lookup(c.UserContext(), request)
	if err != nil {
		status, _ := statusOf(err)
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"address":    address.Address,
		"components": address.Components,
	})
}

func (controller *Address) Languages(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success":   true,
		"languages": lang.Supported(),
	})
}
