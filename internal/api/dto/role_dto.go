package dto

// AssignRolesRequest payload for granting roles to a user.
type AssignRolesRequest struct {
	Roles []string `json:"roles"`
}

// RoleResponse describes a role.
type RoleResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserRoleResponse describes a single user-role grant.
type UserRoleResponse struct {
	UserID       int64  `json:"user_id"`
	Username     string `json:"username"`
	AssignedRole string `json:"assigned_role"`
}
