package notify

import (
	"context"
	"fmt"
	"strings"

	twilio "github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// SMS sends notifications as text messages through Twilio.
type SMS struct {
	api  messageCreator
	from string
	to   string
}

func NewSMS(accountSID, authToken, from, to string) *SMS {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{Username: accountSID, Password: authToken})
	return &SMS{api: client.Api, from: from, to: to}
}

func (s *SMS) Notify(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	from := normalizeNumber(s.from)
	if from == "" {
		return fmt.Errorf("twilio sender number is not configured")
	}
	to := normalizeNumber(s.to)
	if to == "" {
		return fmt.Errorf("sms recipient number missing or invalid")
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(msg.Body)

	if _, err := s.api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send message: %w", err)
	}
	return nil
}

func normalizeNumber(number string) string {
	trimmed := strings.TrimSpace(number)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "+") {
		return trimmed
	}
	return "+" + trimmed
}
