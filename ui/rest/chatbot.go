package rest

import (
	"time"

	"github.com/gofiber/fiber/v2"
	domainDialogue "github.com/shipliyo/smsgate/domains/dialogue"
	"github.com/shipliyo/smsgate/domains/health"
	"github.com/shipliyo/smsgate/pkg/lang"
	"github.com/shipliyo/smsgate/pkg/smsparser"
	"github.com/sirupsen/logrus"
)

const (
	defaultSessionID   = "default_session"
	defaultSiteSeconds = 90
	maxSiteSeconds     = 3600
)

type Chatbot struct {
	Service domainDialogue.IDialogueUsecase
	Health  health.IHealthUsecase
}

func InitRestChatbot(app fiber.Router, service domainDialogue.IDialogueUsecase, healthService health.IHealthUsecase) Chatbot {
	rest := Chatbot{Service: service, Health: healthService}
	for _, prefix := range []string{"/api/chatbot", "/api/shipliyo/chatbot"} {
		app.Post(prefix, rest.Converse)
		app.Post(prefix+".xml", rest.ConverseXML)
	}
	app.Get("/api/chatbot/sites/:site", rest.SiteQuery)
	return rest
}

func (controller *Chatbot) storeDown() bool {
	return controller.Health != nil && !controller.Health.StoreAvailable()
}

func (controller *Chatbot) request(body ConverseBody) domainDialogue.ConverseRequest {
	sessionID := body.SessionID
	if sessionID == "" {
		sessionID = defaultSessionID
	}
	language, _ := lang.Parse(body.Language)
	return domainDialogue.ConverseRequest{
		Utterance: body.Message,
		SessionID: sessionID,
		Language:  language,
	}
}

func (controller *Chatbot) Converse(c *fiber.Ctx) error {
	var body ConverseBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(chatbotError("Geçersiz JSON verisi"))
	}
	if controller.storeDown() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(chatbotError("Mesaj deposu şu anda kullanılamıyor"))
	}

	request := controller.request(body)
	reply, err := controller.Service.Converse(c.UserContext(), request)
	if err != nil {
		status, _ := statusOf(err)
		return c.Status(status).JSON(chatbotError(err.Error()))
	}

	logrus.Debugf("[DIALOGUE] session %s: %s reply (success=%t, source=%s)", request.SessionID, reply.Kind, reply.Success, reply.Source)
	return c.JSON(newChatbotResponse(reply, request.SessionID))
}

func (controller *Chatbot) ConverseXML(c *fiber.Ctx) error {
	var body ConverseBody
	if err := c.BodyParser(&body); err != nil {
		return controller.xml(c, fiber.StatusBadRequest, XMLChatbotResponse{Message: cdata{"Geçersiz istek verisi"}, ResponseType: domainDialogue.KindDirect})
	}
	if controller.storeDown() {
		return controller.xml(c, fiber.StatusServiceUnavailable, XMLChatbotResponse{Message: cdata{"Mesaj deposu şu anda kullanılamıyor"}, ResponseType: domainDialogue.KindDirect})
	}

	reply, err := controller.Service.Converse(c.UserContext(), controller.request(body))
	if err != nil {
		status, _ := statusOf(err)
		return controller.xml(c, status, XMLChatbotResponse{Message: cdata{err.Error()}, ResponseType: domainDialogue.KindDirect})
	}

	return controller.xml(c, fiber.StatusOK, XMLChatbotResponse{
		Success:      reply.Success,
		Message:      cdata{reply.Text},
		ResponseType: reply.Kind,
		Bubbles:      reply.Menu,
	})
}

func (controller *Chatbot) xml(c *fiber.Ctx, status int, payload XMLChatbotResponse) error {
	return c.Status(status).XML(payload)
}

// SiteQuery runs a site lookup with a caller-chosen window in seconds.
func (controller *Chatbot) SiteQuery(c *fiber.Ctx) error {
	site := smsparser.Site(c.Params("site"))
	seconds := c.QueryInt("seconds", defaultSiteSeconds)
	if seconds < 1 || seconds > maxSiteSeconds {
		return c.Status(fiber.StatusBadRequest).JSON(chatbotError("seconds must be between 1 and 3600"))
	}
	if controller.storeDown() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(chatbotError("Mesaj deposu şu anda kullanılamıyor"))
	}

	language, _ := lang.Parse(c.Query("language"))
	reply, err := controller.Service.SiteQuery(c.UserContext(), site, time.Duration(seconds)*time.Second, language)
	if err != nil {
		status, _ := statusOf(err)
		return c.Status(status).JSON(chatbotError(err.Error()))
	}
	return c.JSON(newChatbotResponse(reply, ""))
}
