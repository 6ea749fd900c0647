package domain

import "time"

// User is the domain model for a registered account. The email doubles as
// the token subject: unique, immutable once issued.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
