package twilio

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

var nonDigits = regexp.MustCompile(`\D`)

type Sms struct {
	from   string
	client *twilio.RestClient
}

func New(accountSid, authToken, from string) *Sms {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})
	return &Sms{from: from, client: client}
}

func (s *Sms) Send(to, msg string) error {
	params := &api.CreateMessageParams{}
	params.SetBody(msg)
	params.SetFrom(s.from)
	params.SetTo(formatNumber(to))

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("send sms to %s: %w", to, err)
	}
	return nil
}

// formatNumber normalizes to E.164. Numbers without a country code are
// assumed to be Brazilian.
func formatNumber(phone string) string {
	phone = strings.TrimSpace(phone)
	digits := nonDigits.ReplaceAllString(phone, "")
	if strings.HasPrefix(phone, "+") || strings.HasPrefix(digits, "55") && len(digits) > 11 {
		return "+" + digits
	}
	return "+55" + digits
}
