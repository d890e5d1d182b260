package session

import "time"

// Role represents the role a User holds within the BizDesk system.
type Role string

const (
	// RoleAdmin represents a User with unrestricted access.
	RoleAdmin Role = "admin"
	// RoleManager represents a User who manages staff and business records.
	RoleManager Role = "manager"
	// RoleEmployee represents a regular User.
	RoleEmployee Role = "employee"
	// RoleViewer represents a User with read-only access.
	RoleViewer Role = "viewer"
)

// User is the identity record of an authenticated principal, as returned by
// the API server upon login.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Active bool   `json:"active"`
}

// Tenant is a summary of an isolated organizational scope (workspace) that a
// User may access.
type Tenant struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Domain string `json:"domain,omitempty"`
}

// Session is the bearer token and identity record pair representing an
// authenticated principal on the client.
type Session struct {
	Token string
	User  User
	// ExpiresAt is nil for tokens issued without a declared lifetime. Expiry of
	// such tokens is enforced by the API server alone.
	ExpiresAt *time.Time
}
