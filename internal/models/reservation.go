package models

import "github.com/google/uuid"

// Reservation states.
const (
	ReservationStatusPending   = "pending"
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusCancelled = "cancelled"
	ReservationStatusCompleted = "completed"
)

// Reservation is a table booking request.
type Reservation struct {
	BaseModel
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Date      string     `json:"date"`
	Time      string     `json:"time"`
	PartySize int        `json:"party_size"`
	Status    string     `gorm:"default:pending" json:"status"`
	Notes     string     `json:"notes"`
}
