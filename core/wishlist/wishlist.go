package wishlist

import (
	"time"

	"github.com/rahmadiyan/health-store/core/product"
)

// Item is one saved product; a buyer saves each product at most once.
type Item struct {
	UserID    string    `json:"-" db:"user_id"`
	ProductID string    `json:"productId" db:"product_id"`
	AddedAt   time.Time `json:"addedAt" db:"added_at"`
}

type ItemNew struct {
	ProductID string `json:"productId" validate:"required,uuid4"`
}

// Entry is an item joined with its product for listings.
type Entry struct {
	Product product.Product `json:"product"`
	AddedAt time.Time       `json:"addedAt"`
}
