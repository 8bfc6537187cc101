package models

import "github.com/google/uuid"

// CartItem is one menu item held in a user's cart.
type CartItem struct {
	BaseModel
	UserID              uuid.UUID `gorm:"type:uuid;index:idx_cart_user_item,unique" json:"user_id"`
	MenuItemID          uuid.UUID `gorm:"type:uuid;index:idx_cart_user_item,unique" json:"menu_item_id"`
	MenuItem            *MenuItem `json:"menu_item,omitempty"`
	Quantity            int       `json:"quantity"`
	SpecialInstructions string    `json:"special_instructions"`
}
