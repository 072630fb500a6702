package rest

import (
	"encoding/json"
	"encoding/xml"
	"time"

	domainDialogue "github.com/shipliyo/smsgate/domains/dialogue"
	"github.com/shipliyo/smsgate/pkg/catalog"
	"github.com/shipliyo/smsgate/pkg/smsparser"
)

// GatewayBody is posted by the SMS gateway app. Timestamp is kept verbatim,
// whether the app sends it as a JSON number or string.
type GatewayBody struct {
	From      string          `json:"from"`
	Body      string          `json:"body"`
	DeviceID  string          `json:"deviceId"`
	Timestamp json.RawMessage `json:"timestamp"`
}

// GatewayResponse is the shape the Android SMS gateway app expects.
type GatewayResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	SMSID   string `json:"sms_id,omitempty"`
	Code    string `json:"code,omitempty"`
}

// ConverseBody accepts JSON or XML.
type ConverseBody struct {
	XMLName   xml.Name `json:"-" xml:"chatbot_request"`
	Message   string   `json:"message" xml:"message"`
	SessionID string   `json:"session_id" xml:"session_id"`
	Language  string   `json:"language" xml:"language"`
}

type ChatbotResponse struct {
	Success      bool                            `json:"success"`
	Response     string                          `json:"response"`
	ResponseType domainDialogue.ReplyKind        `json:"response_type"`
	Bubbles      []catalog.MenuOption            `json:"bubbles,omitempty"`
	SMSList      []domainDialogue.MessageSummary `json:"sms_list,omitempty"`
	Data         *smsparser.ParsedMessage        `json:"data,omitempty"`
	SessionID    string                          `json:"session_id,omitempty"`
	Timestamp    time.Time                       `json:"timestamp"`
}

func newChatbotResponse(reply domainDialogue.Reply, sessionID string) ChatbotResponse {
	return ChatbotResponse{
		Success:      reply.Success,
		Response:     reply.Text,
		ResponseType: reply.Kind,
		Bubbles:      reply.Menu,
		SMSList:      reply.Items,
		Data:         reply.Parsed,
		SessionID:    sessionID,
		Timestamp:    time.Now().UTC(),
	}
}

func chatbotError(message string) ChatbotResponse {
	return ChatbotResponse{
		Response:     message,
		ResponseType: domainDialogue.KindDirect,
		Timestamp:    time.Now().UTC(),
	}
}

type cdata struct {
	Text string `xml:",cdata"`
}

type XMLChatbotResponse struct {
	XMLName      xml.Name                 `xml:"chatbot_response"`
	Success      bool                     `xml:"success"`
	Message      cdata                    `xml:"message"`
	ResponseType domainDialogue.ReplyKind `xml:"response_type"`
	Bubbles      []catalog.MenuOption     `xml:"bubbles>bubble,omitempty"`
}
