package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Review is customer feedback on a menu item or order. Only approved reviews
// are shown publicly.
type Review struct {
	BaseModel
	UserID     *uuid.UUID     `gorm:"type:uuid;index" json:"user_id"`
	MenuItemID *uuid.UUID     `gorm:"type:uuid;index" json:"menu_item_id"`
	OrderID    *uuid.UUID     `gorm:"type:uuid" json:"order_id"`
	Rating     int            `json:"rating"`
	Comment    string         `json:"comment"`
	ImageURLs  pq.StringArray `gorm:"type:text[]" json:"image_urls"`
	IsApproved bool           `json:"is_approved"`
	AdminReply string         `json:"admin_reply"`
}
