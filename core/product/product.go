package product

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

// Product is a catalog item owned by exactly one vendor. Prices are
// integer minor units; stock never goes negative.
type Product struct {
	ID                   string         `json:"id" db:"product_id"`
	VendorID             string         `json:"vendorId" db:"vendor_id"`
	Name                 string         `json:"name" db:"name"`
	Slug                 string         `json:"slug" db:"slug"`
	Description          string         `json:"description" db:"description"`
	Category             string         `json:"category" db:"category"`
	Brand                string         `json:"brand" db:"brand"`
	SKU                  string         `json:"sku" db:"sku"`
	BatchNumber          string         `json:"batchNumber" db:"batch_number"`
	ExpirationDate       *time.Time     `json:"expirationDate" db:"expiration_date"`
	PrescriptionRequired bool           `json:"prescriptionRequired" db:"prescription_required"`
	DosageInfo           string         `json:"dosageInfo" db:"dosage_info"`
	Price                int64          `json:"price" db:"price"`
	Stock                int            `json:"stock" db:"stock"`
	Images               pq.StringArray `json:"images" db:"images"`
	Tags                 pq.StringArray `json:"tags" db:"tags"`
	CreatedAt            time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time      `json:"updatedAt" db:"updated_at"`
}

type ProductNew struct {
	VendorID             string     `json:"vendorId"`
	Name                 string     `json:"name" validate:"required"`
	Description          string     `json:"description"`
	Category             string     `json:"category" validate:"required"`
	Brand                string     `json:"brand"`
	SKU                  string     `json:"sku"`
	BatchNumber          string     `json:"batchNumber"`
	ExpirationDate       *time.Time `json:"expirationDate"`
	PrescriptionRequired bool       `json:"prescriptionRequired"`
	DosageInfo           string     `json:"dosageInfo"`
	Price                int64      `json:"price" validate:"required,gte=0"`
	Stock                int        `json:"stock" validate:"gte=0"`
	Images               []string   `json:"images" validate:"omitempty,dive,url"`
	Tags                 []string   `json:"tags"`
}

type ProductUp struct {
	Name                 *string    `json:"name"`
	Description          *string    `json:"description"`
	Category             *string    `json:"category"`
	Brand                *string    `json:"brand"`
	SKU                  *string    `json:"sku"`
	BatchNumber          *string    `json:"batchNumber"`
	ExpirationDate       *time.Time `json:"expirationDate"`
	PrescriptionRequired *bool      `json:"prescriptionRequired"`
	DosageInfo           *string    `json:"dosageInfo"`
	Price                *int64     `json:"price" validate:"omitempty,gte=0"`
	Stock                *int       `json:"stock" validate:"omitempty,gte=0"`
	Images               []string   `json:"images" validate:"omitempty,dive,url"`
	Tags                 []string   `json:"tags"`
}

// Filter narrows catalog listings.
type Filter struct {
	Category string
	VendorID string
	Search   string
	Page     int
	Limit    int
}

func Slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}
