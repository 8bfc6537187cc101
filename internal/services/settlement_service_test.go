package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/example/aurelia/internal/models"
)

func TestPaymentSignature(t *testing.T) {
	got := PaymentSignature("order_abc", "pay_123", "s3cr3t")
	want := "070ea2f5813be979e4d4dd50f9840717bb01adf600c92662f401086c6cabbf9a"
	if got != want {
		t.Errorf("PaymentSignature = %s, want %s", got, want)
	}
}

func seedSettlementFixture(t *testing.T, svc *SettlementService) (uuid.UUID, models.Order) {
	t.Helper()

	user := models.User{Email: "guest@example.com"}
	if err := svc.db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	profile := models.Profile{UserID: user.ID, LoyaltyPoints: 5}
	if err := svc.db.Create(&profile).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	order := models.Order{
		UserID:      &user.ID,
		OrderNumber: "ORD-100001",
		Status:      models.OrderStatusPending,
		Subtotal:    238.10,
		TaxAmount:   11.90,
		TotalAmount: 250,
	}
	if err := svc.db.Create(&order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}

	payment := models.Payment{
		OrderID:         order.ID,
		Amount:          order.TotalAmount,
		Currency:        "INR",
		PaymentMethod:   "razorpay",
		RazorpayOrderID: "order_abc",
		Status:          models.PaymentStatusPending,
	}
	if err := svc.db.Create(&payment).Error; err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	return user.ID, order
}

func TestSettleRejectsInvalidSignature(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettlementService(db, "s3cr3t")
	userID, order := seedSettlementFixture(t, svc)

	_, err := svc.Settle(context.Background(), userID, SettleParams{
		GatewayOrderID:   "order_abc",
		GatewayPaymentID: "pay_123",
		GatewaySignature: "not-the-signature",
		OrderID:          order.ID,
	})
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("err = %v, want ErrSignatureInvalid", err)
	}

	// Nothing may be written before the signature gate passes.
	var reloaded models.Order
	if err := db.First(&reloaded, "id = ?", order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if reloaded.Status != models.OrderStatusPending {
		t.Errorf("order status = %s, want pending", reloaded.Status)
	}

	var payment models.Payment
	if err := db.First(&payment, "order_id = ?", order.ID).Error; err != nil {
		t.Fatalf("reload payment: %v", err)
	}
	if payment.Status != models.PaymentStatusPending {
		t.Errorf("payment status = %s, want pending", payment.Status)
	}
}

func TestSettleConfirmsOrderAndCreditsLoyalty(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettlementService(db, "s3cr3t")
	userID, order := seedSettlementFixture(t, svc)

	signature := PaymentSignature("order_abc", "pay_123", "s3cr3t")
	points, err := svc.Settle(context.Background(), userID, SettleParams{
		GatewayOrderID:   "order_abc",
		GatewayPaymentID: "pay_123",
		GatewaySignature: signature,
		OrderID:          order.ID,
	})
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if points != 25 {
		t.Errorf("points = %d, want 25 for a 250 total", points)
	}

	var reloaded models.Order
	if err := db.First(&reloaded, "id = ?", order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if reloaded.Status != models.OrderStatusConfirmed {
		t.Errorf("order status = %s, want confirmed", reloaded.Status)
	}
	if reloaded.LoyaltyPointsEarned != 25 {
		t.Errorf("loyalty_points_earned = %d, want 25", reloaded.LoyaltyPointsEarned)
	}

	var payment models.Payment
	if err := db.First(&payment, "order_id = ?", order.ID).Error; err != nil {
		t.Fatalf("reload payment: %v", err)
	}
	if payment.Status != models.PaymentStatusCompleted {
		t.Errorf("payment status = %s, want completed", payment.Status)
	}
	if payment.RazorpayPaymentID != "pay_123" {
		t.Errorf("razorpay_payment_id = %q", payment.RazorpayPaymentID)
	}

	var profile models.Profile
	if err := db.First(&profile, "user_id = ?", userID).Error; err != nil {
		t.Fatalf("reload profile: %v", err)
	}
	if profile.LoyaltyPoints != 30 {
		t.Errorf("loyalty balance = %d, want 30 (5 + 25)", profile.LoyaltyPoints)
	}
	if profile.TotalOrders != 1 {
		t.Errorf("total orders = %d, want 1", profile.TotalOrders)
	}
}

func TestSettleRetryIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettlementService(db, "s3cr3t")
	userID, order := seedSettlementFixture(t, svc)

	signature := PaymentSignature("order_abc", "pay_123", "s3cr3t")
	params := SettleParams{
		GatewayOrderID:   "order_abc",
		GatewayPaymentID: "pay_123",
		GatewaySignature: signature,
		OrderID:          order.ID,
	}

	if _, err := svc.Settle(context.Background(), userID, params); err != nil {
		t.Fatalf("first Settle: %v", err)
	}
	points, err := svc.Settle(context.Background(), userID, params)
	if err != nil {
		t.Fatalf("retried Settle: %v", err)
	}
	if points != 0 {
		t.Errorf("retry points = %d, want 0", points)
	}

	var profile models.Profile
	if err := db.First(&profile, "user_id = ?", userID).Error; err != nil {
		t.Fatalf("reload profile: %v", err)
	}
	if profile.LoyaltyPoints != 30 {
		t.Errorf("loyalty balance = %d, want 30 after retry (no double credit)", profile.LoyaltyPoints)
	}
	if profile.TotalOrders != 1 {
		t.Errorf("total orders = %d, want 1 after retry", profile.TotalOrders)
	}
}

func TestSettleRejectsForeignOrder(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettlementService(db, "s3cr3t")
	_, order := seedSettlementFixture(t, svc)

	attacker := models.User{Email: "other@example.com", Phone: "+15550000001"}
	if err := db.Create(&attacker).Error; err != nil {
		t.Fatalf("seed attacker: %v", err)
	}
	attackerProfile := models.Profile{UserID: attacker.ID}
	if err := db.Create(&attackerProfile).Error; err != nil {
		t.Fatalf("seed attacker profile: %v", err)
	}

	signature := PaymentSignature("order_abc", "pay_123", "s3cr3t")
	_, err := svc.Settle(context.Background(), attacker.ID, SettleParams{
		GatewayOrderID:   "order_abc",
		GatewayPaymentID: "pay_123",
		GatewaySignature: signature,
		OrderID:          order.ID,
	})
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("err = %v, want ErrOrderNotFound for someone else's order", err)
	}

	var reloaded models.Order
	if err := db.First(&reloaded, "id = ?", order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if reloaded.Status != models.OrderStatusPending {
		t.Errorf("order status = %s, want pending", reloaded.Status)
	}

	var profile models.Profile
	if err := db.First(&profile, "user_id = ?", attacker.ID).Error; err != nil {
		t.Fatalf("reload attacker profile: %v", err)
	}
	if profile.LoyaltyPoints != 0 || profile.TotalOrders != 0 {
		t.Errorf("attacker profile credited: points=%d orders=%d", profile.LoyaltyPoints, profile.TotalOrders)
	}
}

func TestSettleUnknownOrder(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettlementService(db, "s3cr3t")
	userID, _ := seedSettlementFixture(t, svc)

	signature := PaymentSignature("order_abc", "pay_123", "s3cr3t")
	_, err := svc.Settle(context.Background(), userID, SettleParams{
		GatewayOrderID:   "order_abc",
		GatewayPaymentID: "pay_123",
		GatewaySignature: signature,
		OrderID:          uuid.New(),
	})
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("err = %v, want ErrOrderNotFound", err)
	}
}
