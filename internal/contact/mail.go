package contact

import (
	"context"
	"net/mail"
)

// Message is a rendered email ready for a Mailer.
type Message struct {
	From    mail.Address
	To      []mail.Address
	ReplyTo *mail.Address
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers a message through an email provider.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
