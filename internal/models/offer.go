package models

import (
	"time"

	"github.com/google/uuid"
)

// Offer discount kinds.
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

type Offer struct {
	BaseModel
	Title                 string     `json:"title"`
	Description           string     `json:"description"`
	Code                  string     `gorm:"uniqueIndex" json:"code"`
	DiscountType          string     `json:"discount_type"`
	DiscountValue         float64    `json:"discount_value"`
	MinOrderAmount        float64    `json:"min_order_amount"`
	MaxDiscount           *float64   `json:"max_discount"`
	StartsAt              *time.Time `json:"starts_at"`
	ExpiresAt             *time.Time `json:"expires_at"`
	UsageLimit            *int       `json:"usage_limit"`
	UsedCount             int        `json:"used_count"`
	IsActive              bool       `gorm:"default:true" json:"is_active"`
	IsWelcomeOffer        bool       `json:"is_welcome_offer"`
	IsLoyaltyOffer        bool       `json:"is_loyalty_offer"`
	LoyaltyPointsRequired int        `json:"loyalty_points_required"`
}

// OfferUsage records one redemption of an offer by a user.
type OfferUsage struct {
	BaseModel
	UserID  uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	OfferID uuid.UUID  `gorm:"type:uuid;index" json:"offer_id"`
	OrderID *uuid.UUID `gorm:"type:uuid" json:"order_id"`
	UsedAt  time.Time  `json:"used_at"`
}
