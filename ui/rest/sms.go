package rest

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	domainIngest "github.com/shipliyo/smsgate/domains/ingest"
	domainMessage "github.com/shipliyo/smsgate/domains/message"
	pkgError "github.com/shipliyo/smsgate/pkg/error"
	"github.com/sirupsen/logrus"
)

type SMS struct {
	Service domainIngest.IIngestUsecase
}

// InitRestSMS registers the gateway endpoints. They are public: the Android
// gateway app cannot send credentials.
func InitRestSMS(app fiber.Router, service domainIngest.IIngestUsecase) SMS {
	rest := SMS{Service: service}
	app.Post("/api/sms/incoming", rest.Incoming)
	app.Post("/incoming-sms", rest.Incoming)
	app.Post("/gateway-sms", rest.LegacyGateway)
	return rest
}

func (controller *SMS) Incoming(c *fiber.Ctx) error {
	return controller.ingest(c, domainMessage.SourceNewGateway, false)
}

// LegacyGateway serves old app builds that send sender ids in free form.
func (controller *SMS) LegacyGateway(c *fiber.Ctx) error {
	return controller.ingest(c, domainMessage.SourceLegacyGateway, true)
}

func (controller *SMS) ingest(c *fiber.Ctx, source domainMessage.Source, skipPhoneCheck bool) error {
	var body GatewayBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(GatewayResponse{
			Status:  "error",
			Message: "Geçersiz JSON verisi",
			Code:    "VALIDATION_ERROR",
		})
	}
	request := domainIngest.IngestRequest{
		Sender:          body.From,
		Body:            body.Body,
		DeviceID:        body.DeviceID,
		ClientTimestamp: literalTimestamp(body.Timestamp),
		ClientID:        c.IP(),
		Source:          source,
		SkipPhoneCheck:  skipPhoneCheck,
	}

	result, err := controller.Service.Ingest(c.UserContext(), request)
	if err != nil {
		status, code := statusOf(err)
		var rateLimited pkgError.RateLimitedError
		if errors.As(err, &rateLimited) {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(rateLimited.RetryAfterSeconds()))
		}
		if status >= fiber.StatusInternalServerError {
			logrus.WithError(err).Errorf("[INGEST] %s request from %s failed", source, request.ClientID)
		}
		return c.Status(status).JSON(GatewayResponse{
			Status:  "error",
			Message: err.Error(),
			Code:    code,
		})
	}

	return c.JSON(GatewayResponse{
		Status:  "success",
		Message: gatewayMessage(result, source),
		SMSID:   result.StoredID,
	})
}

func gatewayMessage(result domainIngest.IngestResult, source domainMessage.Source) string {
	switch {
	case result.Status == domainIngest.StatusDuplicate:
		return "SMS alındı (duplicate - zaten kayıtlı)"
	case source == domainMessage.SourceLegacyGateway:
		return "SMS alındı (legacy endpoint)"
	default:
		return "SMS alındı ve kaydedildi"
	}
}

// literalTimestamp keeps the JSON token as sent, quotes included, so 1700
// and "1700" are different deliveries.
func literalTimestamp(raw []byte) string {
	s := string(raw)
	if s == "null" {
		return ""
	}
	return s
}
