package notification

import (
	"fmt"
	"unicode/utf8"
)

// maxSMSLength keeps alerts inside a single GSM segment.
const maxSMSLength = 160

type Notification interface {
	Send(to, msg string) error
}

// Nop is used when no SMS provider is configured.
type Nop struct{}

func (Nop) Send(to, msg string) error {
	return nil
}

// AlertMessage is the short text sent to on-call phones when a background
// job fails.
func AlertMessage(context string, err error) string {
	msg := fmt.Sprintf("Olist Helper: %s: %v", context, err)
	if utf8.RuneCountInString(msg) <= maxSMSLength {
		return msg
	}
	runes := []rune(msg)
	return string(runes[:maxSMSLength-3]) + "..."
}
