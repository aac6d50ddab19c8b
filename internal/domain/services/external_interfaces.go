package services

import "context"

// EmailMessage is a single outbound email.
type EmailMessage struct {
	To      string
	Subject string
	Body    string
}

// EmailSender delivers transactional mail. Implementations must be safe for
// concurrent use; invoice reminders fan out from the worker.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}
