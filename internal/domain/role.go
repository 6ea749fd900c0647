package domain

// Well-known role names. The set is open; these are the two the service
// seeds and checks by default.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Role names a grant assignable to users.
type Role struct {
	ID   int64
	Name string
}
