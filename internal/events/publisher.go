package events

import "context"

// Publisher delivers user events to an external channel. Delivery is
// best-effort, at-most-once: implementations log failures and never
// escalate them to the caller's primary flow.
type Publisher interface {
	PublishRegistration(ctx context.Context, event UserEvent)
	PublishLogin(ctx context.Context, event UserEvent)
	Close() error
}
