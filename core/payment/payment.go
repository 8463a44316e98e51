package payment

import "time"

// Statuses shared with the order's denormalized payment_status mirror.
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
	StatusFailed  = "failed"
)

// Payment is one attempt against an order. The order's own
// paymentStatus mirrors the most recently applied attempt.
type Payment struct {
	ID            string    `json:"id" db:"payment_id"`
	OrderID       string    `json:"orderId" db:"order_id"`
	Method        string    `json:"method" db:"method"`
	Amount        int64     `json:"amount" db:"amount"`
	Status        string    `json:"status" db:"status"`
	TransactionID string    `json:"transactionId" db:"transaction_id"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

type PaymentNew struct {
	OrderID string `json:"orderId" validate:"required,uuid4"`
	Method  string `json:"method" validate:"required"`
	Amount  int64  `json:"amount" validate:"required,gt=0"`
}

type StatusUp struct {
	Status string `json:"status" validate:"required,oneof=pending paid failed"`
}
