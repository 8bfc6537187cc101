package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/aurelia/internal/models"
)

// One loyalty point is earned per this many currency units of order total.
const loyaltyEarnDivisor = 10

// Settlement failure kinds.
var (
	ErrSignatureInvalid = errors.New("invalid payment signature")
	ErrOrderNotFound    = errors.New("order not found")
)

// SettleParams carry the gateway callback fields for one settlement attempt.
type SettleParams struct {
	GatewayOrderID   string
	GatewayPaymentID string
	GatewaySignature string
	OrderID          uuid.UUID
}

// SettlementService verifies payment-gateway callbacks and advances the
// order, payment and loyalty records accordingly.
type SettlementService struct {
	db     *gorm.DB
	secret string
}

// NewSettlementService constructs a SettlementService keyed with the gateway
// signing secret.
func NewSettlementService(db *gorm.DB, secret string) *SettlementService {
	return &SettlementService{db: db, secret: secret}
}

// PaymentSignature computes the gateway's callback signature: hex-encoded
// HMAC-SHA256 over "<gateway_order_id>|<gateway_payment_id>".
func PaymentSignature(gatewayOrderID, gatewayPaymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Settle verifies the callback signature and, on success, moves the payment
// to completed, the order to confirmed, and credits loyalty points. The order
// must belong to the calling user or the attempt fails as not found. Signature
// verification is the hard gate: nothing is written before it passes. The
// bookkeeping runs in one transaction guarded by the order still being
// pending, so a retried settlement is an idempotent acknowledgement and
// loyalty can never double-credit. Returns the points earned by this call
// (zero on an idempotent retry).
func (s *SettlementService) Settle(ctx context.Context, userID uuid.UUID, params SettleParams) (int, error) {
	expected := PaymentSignature(params.GatewayOrderID, params.GatewayPaymentID, s.secret)
	if !hmac.Equal([]byte(expected), []byte(params.GatewaySignature)) {
		return 0, ErrSignatureInvalid
	}

	pointsEarned := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The order must belong to the caller: a signature for someone
		// else's order must not credit the caller's loyalty balance.
		var order models.Order
		if err := tx.First(&order, "id = ? AND user_id = ?", params.OrderID, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		// Already settled: nothing left to do.
		if order.Status != models.OrderStatusPending {
			return nil
		}

		points := int(math.Floor(order.TotalAmount / loyaltyEarnDivisor))

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.OrderStatusPending).
			Updates(map[string]interface{}{
				"status":                models.OrderStatusConfirmed,
				"loyalty_points_earned": points,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Raced another settlement of the same order.
			return nil
		}

		if err := tx.Model(&models.Payment{}).
			Where("order_id = ?", order.ID).
			Updates(map[string]interface{}{
				"razorpay_payment_id": params.GatewayPaymentID,
				"razorpay_signature":  params.GatewaySignature,
				"status":              models.PaymentStatusCompleted,
			}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Profile{}).
			Where("user_id = ?", userID).
			Updates(map[string]interface{}{
				"loyalty_points": gorm.Expr("loyalty_points + ?", points),
				"total_orders":   gorm.Expr("total_orders + ?", 1),
			}).Error; err != nil {
			return err
		}

		pointsEarned = points
		return nil
	})
	if err != nil {
		return 0, err
	}

	return pointsEarned, nil
}
