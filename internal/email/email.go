package email

// Email delivers operational alerts.
type Email interface {
	Send(subject, text, html string, recipients []string) error
}

// Nop is used when no provider is configured.
type Nop struct{}

func (Nop) Send(subject, text, html string, recipients []string) error {
	return nil
}
