package handlers

import (
	"net/http"
	"testing"

	"gorm.io/gorm"

	"github.com/example/aurelia/internal/middleware"
	"github.com/example/aurelia/internal/models"
	"github.com/example/aurelia/internal/services"
)

func paymentFixture(t *testing.T, db *gorm.DB) (models.User, models.Order) {
	t.Helper()

	user := seedUser(t, db, "payer@example.com")
	profile := models.Profile{UserID: user.ID}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	order := models.Order{
		UserID:      &user.ID,
		OrderNumber: "ORD-200001",
		Status:      models.OrderStatusPending,
		TotalAmount: 250,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	payment := models.Payment{
		OrderID:         order.ID,
		Amount:          250,
		Currency:        "INR",
		PaymentMethod:   "razorpay",
		RazorpayOrderID: "order_abc",
		Status:          models.PaymentStatusPending,
	}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	return user, order
}

func TestVerifyPaymentRequiresAuth(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	app := newTestApp()
	handler := NewPaymentHandler(db, cfg)
	app.Post("/api/payments/verify", middleware.AuthMiddleware(cfg), handler.VerifyPayment)

	req := jsonRequest(t, http.MethodPost, "/api/payments/verify", map[string]string{})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestVerifyPaymentRejectsMissingFields(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	app := newTestApp()
	handler := NewPaymentHandler(db, cfg)
	app.Post("/api/payments/verify", middleware.AuthMiddleware(cfg), handler.VerifyPayment)

	user, order := paymentFixture(t, db)

	req := jsonRequest(t, http.MethodPost, "/api/payments/verify", map[string]string{
		"razorpay_order_id":   "order_abc",
		"razorpay_payment_id": "pay_123",
		// signature and order_id missing
	})
	req.Header.Set("Authorization", bearerToken(t, cfg, user.ID))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["error"] != "All payment details are required" {
		t.Errorf("error = %v", body["error"])
	}

	// Validation failures must leave the order untouched.
	var reloaded models.Order
	if err := db.First(&reloaded, "id = ?", order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if reloaded.Status != models.OrderStatusPending {
		t.Errorf("order status = %s, want pending", reloaded.Status)
	}
}

func TestVerifyPaymentInvalidSignature(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	app := newTestApp()
	handler := NewPaymentHandler(db, cfg)
	app.Post("/api/payments/verify", middleware.AuthMiddleware(cfg), handler.VerifyPayment)

	user, order := paymentFixture(t, db)

	req := jsonRequest(t, http.MethodPost, "/api/payments/verify", map[string]string{
		"razorpay_order_id":   "order_abc",
		"razorpay_payment_id": "pay_123",
		"razorpay_signature":  "bogus",
		"order_id":            order.ID.String(),
	})
	req.Header.Set("Authorization", bearerToken(t, cfg, user.ID))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["error"] != "Invalid payment signature" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestVerifyPaymentSettlesOrder(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	app := newTestApp()
	handler := NewPaymentHandler(db, cfg)
	app.Post("/api/payments/verify", middleware.AuthMiddleware(cfg), handler.VerifyPayment)

	user, order := paymentFixture(t, db)

	signature := services.PaymentSignature("order_abc", "pay_123", cfg.RazorpayKeySecret)
	payload := map[string]string{
		"razorpay_order_id":   "order_abc",
		"razorpay_payment_id": "pay_123",
		"razorpay_signature":  signature,
		"order_id":            order.ID.String(),
	}

	req := jsonRequest(t, http.MethodPost, "/api/payments/verify", payload)
	req.Header.Set("Authorization", bearerToken(t, cfg, user.ID))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["success"] != true {
		t.Errorf("success = %v", body["success"])
	}
	if body["message"] != "Payment verified successfully" {
		t.Errorf("message = %v", body["message"])
	}
	if body["order_id"] != order.ID.String() {
		t.Errorf("order_id = %v", body["order_id"])
	}

	var reloaded models.Order
	if err := db.First(&reloaded, "id = ?", order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if reloaded.Status != models.OrderStatusConfirmed {
		t.Errorf("order status = %s, want confirmed", reloaded.Status)
	}

	// A retried callback acks without touching the books again.
	retry := jsonRequest(t, http.MethodPost, "/api/payments/verify", payload)
	retry.Header.Set("Authorization", bearerToken(t, cfg, user.ID))
	resp, err = app.Test(retry)
	if err != nil {
		t.Fatalf("app.Test retry: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("retry status = %d, want 200", resp.StatusCode)
	}

	var profile models.Profile
	if err := db.First(&profile, "user_id = ?", user.ID).Error; err != nil {
		t.Fatalf("reload profile: %v", err)
	}
	if profile.LoyaltyPoints != 25 {
		t.Errorf("loyalty balance = %d, want 25", profile.LoyaltyPoints)
	}
	if profile.TotalOrders != 1 {
		t.Errorf("total orders = %d, want 1", profile.TotalOrders)
	}
}
