package domain

import "time"

// Role decides what an actor may do on the board.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole maps unknown or empty values to RoleUser.
func ParseRole(raw string) Role {
	if Role(raw) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// User represents an authenticated identity in the platform.
type User struct {
	ID           string            `json:"id"`
	Email        string            `json:"email,omitempty"`
	Name         string            `json:"name"`
	Avatar       string            `json:"avatar,omitempty"`
	Role         Role              `json:"role"`
	Status       string            `json:"status"`
	PasswordHash string            `json:"-"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (u *User) IsActive() bool {
	return u != nil && u.Status == "active"
}

// Actor returns the session context used for policy decisions.
func (u *User) Actor() Actor {
	if u == nil {
		return Actor{}
	}
	return Actor{UserID: u.ID, Name: u.Name, Role: u.Role}
}

// Actor is the explicit identity passed to board operations.
type Actor struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
}

// IsAdmin reports whether the actor bypasses the movement policy.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
