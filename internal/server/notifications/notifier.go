// Package notifications delivers the account emails sent by the identity
// workflow: activation, welcome and password recovery.
package notifications

import (
	"context"
	"errors"
)

// Message is a single outbound HTML email.
type Message struct {
	To      string
	From    string
	Subject string
	HTML    string
}

// Notifier sends a message or reports why it could not.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

var ErrNoRecipient = errors.New("no recipient specified")
