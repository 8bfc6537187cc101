package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/aurelia/internal/models"
)

// Offer validation failure kinds, surfaced verbatim to the client.
var (
	ErrOfferNotFound      = errors.New("coupon code not found")
	ErrOfferInactive      = errors.New("this offer is not currently active")
	ErrOfferExpired       = errors.New("this offer has expired")
	ErrOfferNotStarted    = errors.New("this offer has not started yet")
	ErrOfferExhausted     = errors.New("this offer has reached its usage limit")
	ErrOfferMinOrder      = errors.New("order amount is below the offer minimum")
	ErrOfferNotFirstOrder = errors.New("welcome offers apply to first orders only")
	ErrOfferNeedsPoints   = errors.New("not enough loyalty points for this offer")
)

// OfferService validates coupon codes and applies them to orders.
type OfferService struct {
	db *gorm.DB
}

// NewOfferService constructs an OfferService.
func NewOfferService(db *gorm.DB) *OfferService {
	return &OfferService{db: db}
}

// Validate checks a coupon code against the user and order subtotal and
// returns the offer plus the discount it grants.
func (s *OfferService) Validate(ctx context.Context, userID uuid.UUID, code string, subtotal float64) (*models.Offer, float64, error) {
	var offer models.Offer
	err := s.db.WithContext(ctx).
		Where("UPPER(code) = UPPER(?)", strings.TrimSpace(code)).
		First(&offer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrOfferNotFound
		}
		return nil, 0, err
	}

	now := time.Now()
	switch {
	case !offer.IsActive:
		return nil, 0, ErrOfferInactive
	case offer.StartsAt != nil && offer.StartsAt.After(now):
		return nil, 0, ErrOfferNotStarted
	case offer.ExpiresAt != nil && offer.ExpiresAt.Before(now):
		return nil, 0, ErrOfferExpired
	case offer.UsageLimit != nil && offer.UsedCount >= *offer.UsageLimit:
		return nil, 0, ErrOfferExhausted
	case subtotal < offer.MinOrderAmount:
		return nil, 0, ErrOfferMinOrder
	}

	var profile models.Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, err
	}

	if offer.IsWelcomeOffer && profile.TotalOrders > 0 {
		return nil, 0, ErrOfferNotFirstOrder
	}
	if offer.IsLoyaltyOffer && profile.LoyaltyPoints < offer.LoyaltyPointsRequired {
		return nil, 0, ErrOfferNeedsPoints
	}

	return &offer, s.discountFor(&offer, subtotal), nil
}

// Apply records one redemption of the offer against an order and bumps the
// usage counter. Runs inside the caller's transaction.
func (s *OfferService) Apply(tx *gorm.DB, userID uuid.UUID, offer *models.Offer, orderID uuid.UUID) error {
	usage := models.OfferUsage{
		UserID:  userID,
		OfferID: offer.ID,
		OrderID: &orderID,
		UsedAt:  time.Now(),
	}
	if err := tx.Create(&usage).Error; err != nil {
		return err
	}

	return tx.Model(&models.Offer{}).
		Where("id = ?", offer.ID).
		Update("used_count", gorm.Expr("used_count + 1")).Error
}

func (s *OfferService) discountFor(offer *models.Offer, subtotal float64) float64 {
	var discount float64
	switch offer.DiscountType {
	case models.DiscountTypePercentage:
		discount = subtotal * offer.DiscountValue / 100
	case models.DiscountTypeFixed:
		discount = offer.DiscountValue
	}

	if offer.MaxDiscount != nil && discount > *offer.MaxDiscount {
		discount = *offer.MaxDiscount
	}
	if discount > subtotal {
		discount = subtotal
	}

	return math.Round(discount*100) / 100
}
