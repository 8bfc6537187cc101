package models

import "github.com/google/uuid"

// Payment states. Settlement performs only pending -> completed.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// Payment tracks the gateway-side state of one order's payment.
type Payment struct {
	BaseModel
	OrderID           uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"order_id"`
	Amount            float64   `json:"amount"`
	Currency          string    `gorm:"default:INR" json:"currency"`
	PaymentMethod     string    `json:"payment_method"`
	RazorpayOrderID   string    `gorm:"index" json:"razorpay_order_id"`
	RazorpayPaymentID string    `json:"razorpay_payment_id"`
	RazorpaySignature string    `json:"-"`
	Status            string    `gorm:"default:pending" json:"status"`
}
