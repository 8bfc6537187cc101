package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/aurelia/internal/config"
	"github.com/example/aurelia/internal/middleware"
	"github.com/example/aurelia/internal/models"
	"github.com/example/aurelia/internal/services"
)

// PaymentHandler manages gateway order creation and payment settlement.
type PaymentHandler struct {
	db         *gorm.DB
	settlement *services.SettlementService
	gateway    *services.RazorpayService
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(db *gorm.DB, cfg *config.Config) *PaymentHandler {
	return &PaymentHandler{
		db:         db,
		settlement: services.NewSettlementService(db, cfg.RazorpayKeySecret),
		gateway:    services.NewRazorpayService(cfg),
	}
}

type createGatewayOrderRequest struct {
	OrderID string  `json:"order_id"`
	Amount  float64 `json:"amount"`
}

// CreateGatewayOrder registers an order with the payment gateway and stores
// the gateway order reference on the payment row.
func (h *PaymentHandler) CreateGatewayOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req createGatewayOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if req.OrderID == "" || req.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "order_id and amount are required"})
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order_id"})
	}

	var order models.Order
	if err := h.db.First(&order, "id = ? AND user_id = ?", orderID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
		}
		return err
	}

	gatewayOrder, err := h.gateway.CreateOrder(c.Context(), order.ID.String(), req.Amount, map[string]string{
		"order_id": order.ID.String(),
		"user_id":  userID.String(),
	})
	if err != nil {
		log.Printf("[Payment] gateway order creation failed for order %s: %v", order.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create payment order"})
	}

	if err := h.db.Model(&models.Payment{}).
		Where("order_id = ?", order.ID).
		Update("razorpay_order_id", gatewayOrder.ID).Error; err != nil {
		log.Printf("[Payment] failed to store gateway order id for order %s: %v", order.ID, err)
	}

	return c.JSON(fiber.Map{
		"razorpay_order_id": gatewayOrder.ID,
		"razorpay_key_id":   h.gateway.KeyID(),
		"amount":            gatewayOrder.Amount,
		"currency":          gatewayOrder.Currency,
	})
}

type verifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
	OrderID           string `json:"order_id"`
}

// VerifyPayment authenticates the gateway callback and settles the order.
func (h *PaymentHandler) VerifyPayment(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req verifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" || req.OrderID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "All payment details are required"})
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order_id"})
	}

	points, err := h.settlement.Settle(c.Context(), userID, services.SettleParams{
		GatewayOrderID:   req.RazorpayOrderID,
		GatewayPaymentID: req.RazorpayPaymentID,
		GatewaySignature: req.RazorpaySignature,
		OrderID:          orderID,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSignatureInvalid):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment signature"})
		case errors.Is(err, services.ErrOrderNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal server error",
			"details": err.Error(),
		})
	}

	if points > 0 {
		h.notifyConfirmation(userID, orderID, points)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Payment verified successfully",
		"order_id": req.OrderID,
	})
}

// notifyConfirmation writes the in-app confirmation notification. Best-effort.
func (h *PaymentHandler) notifyConfirmation(userID, orderID uuid.UUID, points int) {
	data, _ := models.NotificationData(fiber.Map{
		"order_id":      orderID.String(),
		"points_earned": points,
	})

	notification := models.Notification{
		UserID:  &userID,
		Title:   "Order confirmed",
		Message: "Your payment was received and your order is confirmed.",
		Type:    "order",
		Data:    data,
	}

	if err := h.db.Create(&notification).Error; err != nil {
		log.Printf("[Payment] failed to create confirmation notification for order %s: %v", orderID, err)
	}
}
