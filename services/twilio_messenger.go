package services

import (
	"context"
	"errors"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioMessenger sends through WhatsApp when a WhatsApp sender is
// configured and falls back to SMS otherwise.
type TwilioMessenger struct {
	client         *twilio.RestClient
	fromNumber     string
	whatsAppNumber string
}

func NewTwilioMessenger(accountSID, authToken, fromNumber, whatsAppNumber string) (*TwilioMessenger, error) {
	if accountSID == "" || authToken == "" {
		return nil, errors.New("twilio credentials not set")
	}
	if fromNumber == "" && whatsAppNumber == "" {
		return nil, errors.New("no twilio sender number configured")
	}
	return &TwilioMessenger{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		fromNumber:     fromNumber,
		whatsAppNumber: whatsAppNumber,
	}, nil
}

// Channel reports "whatsapp" or "sms".
func (m *TwilioMessenger) Channel() string {
	if m.whatsAppNumber != "" {
		return "whatsapp"
	}
	return "sms"
}

func (m *TwilioMessenger) Send(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetBody(body)
	if m.whatsAppNumber != "" {
		params.SetTo("whatsapp:" + to)
		params.SetFrom("whatsapp:" + m.whatsAppNumber)
	} else {
		params.SetTo(to)
		params.SetFrom(m.fromNumber)
	}

	resp, err := m.client.Api.CreateMessage(params)
	if err != nil {
		return err
	}
	if resp.Sid == nil {
		return errors.New("twilio returned no message SID")
	}
	return nil
}
