package models

import (
	"time"

	"github.com/google/uuid"
)

// Order lifecycle. Settlement performs only pending -> confirmed; the rest
// belong to admin order management.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

type Order struct {
	BaseModel
	UserID              *uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	OrderNumber         string      `gorm:"uniqueIndex" json:"order_number"`
	Status              string      `gorm:"default:pending" json:"status"`
	Subtotal            float64     `json:"subtotal"`
	TaxAmount           float64     `json:"tax_amount"`
	DeliveryFee         float64     `json:"delivery_fee"`
	DiscountAmount      float64     `json:"discount_amount"`
	TotalAmount         float64     `json:"total_amount"`
	CouponCode          string      `json:"coupon_code"`
	LoyaltyPointsUsed   int         `json:"loyalty_points_used"`
	LoyaltyPointsEarned int         `json:"loyalty_points_earned"`
	DeliveryAddress     string      `json:"delivery_address"`
	DeliveryCity        string      `json:"delivery_city"`
	DeliveryPincode     string      `json:"delivery_pincode"`
	SpecialInstructions string      `json:"special_instructions"`
	EstimatedDelivery   *time.Time  `json:"estimated_delivery"`
	DeliveredAt         *time.Time  `json:"delivered_at"`
	Items               []OrderItem `json:"items,omitempty"`
	Payment             *Payment    `json:"payment,omitempty"`
}

// OrderItem snapshots name and price at checkout time so later menu edits do
// not rewrite order history.
type OrderItem struct {
	BaseModel
	OrderID             uuid.UUID  `gorm:"type:uuid;index" json:"order_id"`
	MenuItemID          *uuid.UUID `gorm:"type:uuid" json:"menu_item_id"`
	ItemName            string     `json:"item_name"`
	ItemPrice           float64    `json:"item_price"`
	Quantity            int        `json:"quantity"`
	SpecialInstructions string     `json:"special_instructions"`
}
