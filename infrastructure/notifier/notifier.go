// Package notifier delivers bot replies back to the SMS sender.
package notifier

import (
	"context"
	"regexp"
)

// Notifier sends one text to one phone number.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, to string, body string) error
}

var e164 = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

// Replyable reports whether sender is a phone number in E.164 form. Alphanumeric
// brand senders such as "Trendyol" cannot receive SMS.
func Replyable(sender string) bool {
	return e164.MatchString(sender)
}

// Noop drops every reply. It is used when no provider is configured.
type Noop struct{}

func (Noop) Name() string { return "noop" }

func (Noop) Notify(context.Context, string, string) error { return nil }
