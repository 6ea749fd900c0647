package events

import "time"

// Event type identifiers carried in user events.
const (
	EventUserRegistered      = "USER_REGISTERED"
	EventRegistrationFailure = "REGISTRATION_FAILURE"
	EventUserLoggedIn        = "USER_LOGGED_IN"
	EventLoginFailure        = "LOGIN_FAILURE"
)

// Event statuses.
const (
	StatusSuccess = "Success"
	StatusFailure = "Failure"
)

// UserEvent is the record published to the event channel for registration
// and login outcomes.
type UserEvent struct {
	ID        string    `json:"id"`
	EventType string    `json:"event_type"`
	Status    string    `json:"status"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message,omitempty"`
}
