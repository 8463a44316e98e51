package order

import "time"

// Order is one checkout transaction. Line items snapshot the product
// name, price and owning vendor at creation time; the persisted history
// is append-only.
type Order struct {
	ID              string         `json:"id" db:"order_id"`
	UserID          string         `json:"userId" db:"user_id"`
	Items           []Item         `json:"items" db:"-"`
	ShippingAddress Address        `json:"shippingAddress" db:"shippingaddress"`
	PaymentMethod   string         `json:"paymentMethod" db:"payment_method"`
	PaymentStatus   string         `json:"paymentStatus" db:"payment_status"`
	OrderStatus     Status         `json:"orderStatus" db:"order_status"`
	Courier         string         `json:"courier" db:"courier"`
	TrackingNumber  string         `json:"trackingNumber" db:"tracking_number"`
	Total           int64          `json:"total" db:"total"`
	History         []HistoryEntry `json:"history" db:"-"`
	CreatedAt       time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time      `json:"updatedAt" db:"updated_at"`
}

type Address struct {
	Recipient  string `json:"recipient" db:"recipient" validate:"required"`
	Phone      string `json:"phone" db:"phone" validate:"required"`
	Address    string `json:"address" db:"address" validate:"required"`
	PostalCode string `json:"postalCode" db:"postal_code" validate:"required"`
}

type Item struct {
	OrderID   string `json:"-" db:"order_id"`
	ProductID string `json:"productId" db:"product_id"`
	Name      string `json:"name" db:"name"`
	SKU       string `json:"sku" db:"sku"`
	Price     int64  `json:"price" db:"price"`
	Qty       int    `json:"qty" db:"qty"`
	Subtotal  int64  `json:"subtotal" db:"subtotal"`
	VendorID  string `json:"vendorId" db:"vendor_id"`
}

type HistoryEntry struct {
	OrderID   string    `json:"-" db:"order_id"`
	Status    Status    `json:"status" db:"status"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

type OrderNew struct {
	Items           []ItemNew `json:"items" validate:"required,min=1,dive"`
	ShippingAddress Address   `json:"shippingAddress" validate:"required"`
	PaymentMethod   string    `json:"paymentMethod" validate:"required"`
}

type ItemNew struct {
	ProductID string `json:"productId" validate:"required,uuid4"`
	Qty       int    `json:"qty" validate:"required,gt=0"`
}

type StatusUp struct {
	Status         string `json:"status" validate:"required"`
	Courier        string `json:"courier"`
	TrackingNumber string `json:"trackingNumber"`
}
