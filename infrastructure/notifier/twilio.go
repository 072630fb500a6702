package notifier

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

type Twilio struct {
	api  messageCreator
	from string
}

func NewTwilio(accountSID, authToken, from string) (*Twilio, error) {
	if accountSID == "" || authToken == "" {
		return nil, fmt.Errorf("twilio account SID and auth token must be provided")
	}
	if from == "" {
		return nil, fmt.Errorf("twilio from number must be provided")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &Twilio{api: client.Api, from: from}, nil
}

func (t *Twilio) Name() string { return "twilio" }

func (t *Twilio) Notify(ctx context.Context, to string, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)

	resp, err := t.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("send sms reply to %s: %w", to, err)
	}

	if resp != nil && resp.Sid != nil {
		logrus.Debugf("[NOTIFIER] twilio message %s queued for %s", *resp.Sid, to)
	}
	return nil
}
