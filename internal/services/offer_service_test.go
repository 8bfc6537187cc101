package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/example/aurelia/internal/models"
)

func seedOfferUser(t *testing.T, db *gorm.DB, totalOrders, loyaltyPoints int) models.User {
	t.Helper()
	user := models.User{Email: "diner@example.com"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	profile := models.Profile{UserID: user.ID, TotalOrders: totalOrders, LoyaltyPoints: loyaltyPoints}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return user
}

func TestValidatePercentageOfferWithCap(t *testing.T) {
	db := newTestDB(t)
	svc := NewOfferService(db)
	user := seedOfferUser(t, db, 3, 0)

	maxDiscount := 100.0
	offer := models.Offer{
		Title:          "Twenty percent off",
		Code:           "SAVE20",
		DiscountType:   models.DiscountTypePercentage,
		DiscountValue:  20,
		MinOrderAmount: 200,
		MaxDiscount:    &maxDiscount,
		IsActive:       true,
	}
	if err := db.Create(&offer).Error; err != nil {
		t.Fatalf("seed offer: %v", err)
	}

	// 20% of 400 is 80, under the cap.
	_, discount, err := svc.Validate(context.Background(), user.ID, "save20", 400)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if discount != 80 {
		t.Errorf("discount = %v, want 80", discount)
	}

	// 20% of 900 is 180, capped at 100.
	_, discount, err = svc.Validate(context.Background(), user.ID, "SAVE20", 900)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if discount != 100 {
		t.Errorf("capped discount = %v, want 100", discount)
	}

	// Below the minimum order amount.
	if _, _, err := svc.Validate(context.Background(), user.ID, "SAVE20", 150); !errors.Is(err, ErrOfferMinOrder) {
		t.Errorf("err = %v, want ErrOfferMinOrder", err)
	}
}

func TestValidateRejectsExpiredAndExhausted(t *testing.T) {
	db := newTestDB(t)
	svc := NewOfferService(db)
	user := seedOfferUser(t, db, 0, 0)

	past := time.Now().Add(-time.Hour)
	expired := models.Offer{
		Code:          "GONE",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 50,
		IsActive:      true,
		ExpiresAt:     &past,
	}
	if err := db.Create(&expired).Error; err != nil {
		t.Fatalf("seed offer: %v", err)
	}
	if _, _, err := svc.Validate(context.Background(), user.ID, "GONE", 500); !errors.Is(err, ErrOfferExpired) {
		t.Errorf("err = %v, want ErrOfferExpired", err)
	}

	limit := 1
	exhausted := models.Offer{
		Code:          "FULL",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 50,
		IsActive:      true,
		UsageLimit:    &limit,
		UsedCount:     1,
	}
	if err := db.Create(&exhausted).Error; err != nil {
		t.Fatalf("seed offer: %v", err)
	}
	if _, _, err := svc.Validate(context.Background(), user.ID, "FULL", 500); !errors.Is(err, ErrOfferExhausted) {
		t.Errorf("err = %v, want ErrOfferExhausted", err)
	}

	if _, _, err := svc.Validate(context.Background(), user.ID, "NOSUCH", 500); !errors.Is(err, ErrOfferNotFound) {
		t.Errorf("err = %v, want ErrOfferNotFound", err)
	}
}

func TestValidateWelcomeAndLoyaltyRules(t *testing.T) {
	db := newTestDB(t)
	svc := NewOfferService(db)
	returning := seedOfferUser(t, db, 4, 10)

	welcome := models.Offer{
		Code:           "WELCOME10",
		DiscountType:   models.DiscountTypePercentage,
		DiscountValue:  10,
		IsActive:       true,
		IsWelcomeOffer: true,
	}
	if err := db.Create(&welcome).Error; err != nil {
		t.Fatalf("seed offer: %v", err)
	}
	if _, _, err := svc.Validate(context.Background(), returning.ID, "WELCOME10", 500); !errors.Is(err, ErrOfferNotFirstOrder) {
		t.Errorf("err = %v, want ErrOfferNotFirstOrder", err)
	}

	loyalty := models.Offer{
		Code:                  "VIP50",
		DiscountType:          models.DiscountTypeFixed,
		DiscountValue:         50,
		IsActive:              true,
		IsLoyaltyOffer:        true,
		LoyaltyPointsRequired: 100,
	}
	if err := db.Create(&loyalty).Error; err != nil {
		t.Fatalf("seed offer: %v", err)
	}
	if _, _, err := svc.Validate(context.Background(), returning.ID, "VIP50", 500); !errors.Is(err, ErrOfferNeedsPoints) {
		t.Errorf("err = %v, want ErrOfferNeedsPoints", err)
	}
}

func TestApplyBumpsUsage(t *testing.T) {
	db := newTestDB(t)
	svc := NewOfferService(db)
	user := seedOfferUser(t, db, 0, 0)

	offer := models.Offer{
		Code:          "ONCE",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 25,
		IsActive:      true,
	}
	if err := db.Create(&offer).Error; err != nil {
		t.Fatalf("seed offer: %v", err)
	}

	order := models.Order{UserID: &user.ID, OrderNumber: "ORD-300001", Status: models.OrderStatusPending, TotalAmount: 100}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}

	if err := svc.Apply(db, user.ID, &offer, order.ID); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	var reloaded models.Offer
	if err := db.First(&reloaded, "id = ?", offer.ID).Error; err != nil {
		t.Fatalf("reload offer: %v", err)
	}
	if reloaded.UsedCount != 1 {
		t.Errorf("used_count = %d, want 1", reloaded.UsedCount)
	}

	var usages int64
	db.Model(&models.OfferUsage{}).Where("offer_id = ?", offer.ID).Count(&usages)
	if usages != 1 {
		t.Errorf("usage rows = %d, want 1", usages)
	}
}
