package util

import "time"

// Envelope is the standardized response body for every terminal response.
type Envelope struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Success builds a success envelope.
func Success(message string, data any) Envelope {
	return Envelope{
		Status:    "success",
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// Failure builds a failure envelope with a null payload.
func Failure(message string) Envelope {
	return Envelope{
		Status:    "failure",
		Message:   message,
		Data:      nil,
		Timestamp: time.Now().UTC(),
	}
}
