package types

import (
	"time"

	"github.com/google/uuid"
)

// User roles.
const (
	RoleAdmin     = "admin"
	RoleCandidate = "candidate"
)

// CreateUserRequest represents the request to register a new user. There is
// deliberately no role field: public registration always creates candidates.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=1"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone,omitempty"`
}

// LoginRequest represents the login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// User represents a user profile for API responses. The password hash lives
// only in the db package and never crosses this boundary.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginResponse is returned by register and login: the user record plus a
// bearer token the client sends back on every request.
type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// UpdateProfileRequest represents a profile update for the current user.
type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Phone *string `json:"phone"`
}

// UpdatePasswordRequest represents a password change for the current user.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}
