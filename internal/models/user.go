package models

import (
	"time"

	"github.com/google/uuid"
)

// Role values stored in user_roles.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleUser      = "user"
)

// User is the canonical identity record. Each distinct phone number and each
// distinct email maps to at most one row; phone-first guests get a synthetic
// email derived from their number so email-based sign-in primitives still work.
type User struct {
	BaseModel
	Email          string     `gorm:"uniqueIndex" json:"email"`
	EmailConfirmed bool       `json:"email_confirmed"`
	Phone          string     `gorm:"uniqueIndex" json:"phone"`
	PhoneConfirmed bool       `json:"phone_confirmed"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	PasswordHash   string     `json:"-"`
	LastSignInAt   *time.Time `json:"last_sign_in_at"`
	Roles          []UserRole `json:"roles,omitempty"`
}

// UserRole grants a role to a user. A user may hold several roles.
type UserRole struct {
	BaseModel
	UserID uuid.UUID `gorm:"type:uuid;index:idx_user_roles_user_role,unique" json:"user_id"`
	Role   string    `gorm:"index:idx_user_roles_user_role,unique" json:"role"`
}

// LoginToken is a single-use magic-link credential minted after phone
// verification. Only the hash of the token is stored.
type LoginToken struct {
	BaseModel
	UserID     uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	Email      string     `json:"email"`
	TokenHash  string     `gorm:"uniqueIndex" json:"-"`
	RedirectTo string     `json:"redirect_to"`
	ExpiresAt  time.Time  `json:"expires_at"`
	UsedAt     *time.Time `json:"used_at"`
}
