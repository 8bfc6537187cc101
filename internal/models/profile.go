package models

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Profile is the denormalized per-user record shown in the app. It caches
// contact fields and carries the loyalty balance; it is never authoritative
// over the User's auth fields.
type Profile struct {
	BaseModel
	UserID        uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	AvatarURL     string    `json:"avatar_url"`
	Address       string    `json:"address"`
	City          string    `json:"city"`
	Pincode       string    `json:"pincode"`
	LoyaltyPoints int       `json:"loyalty_points"`
	TotalOrders   int       `json:"total_orders"`
}

// Notification is an in-app message for a user.
type Notification struct {
	BaseModel
	UserID  *uuid.UUID     `gorm:"type:uuid;index" json:"user_id"`
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Type    string         `json:"type"`
	Data    datatypes.JSON `json:"data"`
	IsRead  bool           `json:"is_read"`
}

// NotificationData marshals an arbitrary payload into the JSON column type.
func NotificationData(v interface{}) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	return datatypes.JSON(b), err
}
