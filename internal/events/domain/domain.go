package domain

import (
	"context"
	"time"
)

// Event types published by the contact pipeline.
const (
	TypeAuthAccepted        = "contact.auth.accepted"
	TypeAuthRejected        = "contact.auth.rejected"
	TypeSubmissionAccepted  = "contact.submission.accepted"
	TypeSubmissionRejected  = "contact.submission.rejected"
	TypeVerificationSkipped = "contact.verification.skipped"
	TypeNotificationSent    = "contact.notification.sent"
	TypeNotificationFailed  = "contact.notification.failed"
)

// Event represents an audit event.
// Meta may contain ip, reason, recipient, etc. It must never carry full credentials.
type Event struct {
	Type         string
	ClientID     string
	SubmissionID string
	Meta         map[string]string
	Time         time.Time
}

// Publisher publishes events to an external system (log, queue, etc.).
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}
