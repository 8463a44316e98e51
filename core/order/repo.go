package order

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// orderCols aliases the flat address columns into the nested struct.
const orderCols = `
	order_id, user_id,
	recipient AS "shippingaddress.recipient",
	phone AS "shippingaddress.phone",
	address AS "shippingaddress.address",
	postal_code AS "shippingaddress.postal_code",
	payment_method, payment_status, order_status,
	courier, tracking_number, total, created_at, updated_at`

func Create(ctx context.Context, db sqlx.ExtContext, ord Order) error {
	const q = `
	INSERT INTO orders
		(order_id, user_id, recipient, phone, address, postal_code,
		payment_method, payment_status, order_status, courier, tracking_number,
		total, created_at, updated_at)
	VALUES
		(:order_id, :user_id, :shippingaddress.recipient, :shippingaddress.phone,
		:shippingaddress.address, :shippingaddress.postal_code,
		:payment_method, :payment_status, :order_status, :courier, :tracking_number,
		:total, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, ord); err != nil {
		return err
	}
	return nil
}

func CreateItem(ctx context.Context, db sqlx.ExtContext, it Item) error {
	const q = `
	INSERT INTO order_items (order_id, product_id, name, sku, price, qty, subtotal, vendor_id)
	VALUES (:order_id, :product_id, :name, :sku, :price, :qty, :subtotal, :vendor_id)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, it); err != nil {
		return err
	}
	return nil
}

// AppendHistory records one status transition. Rows are never updated
// or removed.
func AppendHistory(ctx context.Context, db sqlx.ExtContext, entry HistoryEntry) error {
	const q = `
	INSERT INTO order_history (order_id, status, timestamp)
	VALUES (:order_id, :status, :timestamp)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, entry); err != nil {
		return err
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Order, error) {
	const q = `SELECT ` + orderCols + ` FROM orders WHERE order_id = $1`

	var ord Order
	if err := sqlx.GetContext(ctx, db, &ord, q, id); err != nil {
		return Order{}, err
	}
	return ord, nil
}

func FetchItems(ctx context.Context, db sqlx.ExtContext, orderID string) ([]Item, error) {
	const q = `SELECT * FROM order_items WHERE order_id = $1 ORDER BY product_id`

	items := []Item{}
	if err := sqlx.SelectContext(ctx, db, &items, q, orderID); err != nil {
		return nil, err
	}
	return items, nil
}

func FetchHistory(ctx context.Context, db sqlx.ExtContext, orderID string) ([]HistoryEntry, error) {
	const q = `SELECT * FROM order_history WHERE order_id = $1 ORDER BY timestamp`

	history := []HistoryEntry{}
	if err := sqlx.SelectContext(ctx, db, &history, q, orderID); err != nil {
		return nil, err
	}
	return history, nil
}

func ListAll(ctx context.Context, db sqlx.ExtContext) ([]Order, error) {
	const q = `SELECT ` + orderCols + ` FROM orders ORDER BY created_at DESC`

	orders := []Order{}
	if err := sqlx.SelectContext(ctx, db, &orders, q); err != nil {
		return nil, err
	}
	return orders, nil
}

func ListByUser(ctx context.Context, db sqlx.ExtContext, userID string) ([]Order, error) {
	const q = `SELECT ` + orderCols + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	orders := []Order{}
	if err := sqlx.SelectContext(ctx, db, &orders, q, userID); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListByVendor returns orders containing at least one line item sold by
// the vendor.
func ListByVendor(ctx context.Context, db sqlx.ExtContext, vendorID string) ([]Order, error) {
	const q = `
	SELECT ` + orderCols + ` FROM orders
	WHERE order_id IN (SELECT order_id FROM order_items WHERE vendor_id = $1)
	ORDER BY created_at DESC`

	orders := []Order{}
	if err := sqlx.SelectContext(ctx, db, &orders, q, vendorID); err != nil {
		return nil, err
	}
	return orders, nil
}

func UpdateStatus(ctx context.Context, db sqlx.ExtContext, id string, status Status, now time.Time) error {
	const q = `UPDATE orders SET order_status = $2, updated_at = $3 WHERE order_id = $1`

	if _, err := db.ExecContext(ctx, q, id, status, now); err != nil {
		return err
	}
	return nil
}

// SetShipment stores the courier details alongside the status change.
func SetShipment(ctx context.Context, db sqlx.ExtContext, id string, status Status, courier, trackingNumber string, now time.Time) error {
	const q = `
	UPDATE orders SET order_status = $2, courier = $3, tracking_number = $4, updated_at = $5
	WHERE order_id = $1`

	if _, err := db.ExecContext(ctx, q, id, status, courier, trackingNumber, now); err != nil {
		return err
	}
	return nil
}

// UpdatePaymentStatus mirrors the latest payment outcome onto the order.
func UpdatePaymentStatus(ctx context.Context, db sqlx.ExtContext, id string, status string) error {
	const q = `UPDATE orders SET payment_status = $2, updated_at = now() WHERE order_id = $1`

	if _, err := db.ExecContext(ctx, q, id, status); err != nil {
		return err
	}
	return nil
}

// loadDetails attaches items and history to every order in one round
// trip per table.
func loadDetails(ctx context.Context, db sqlx.ExtContext, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, 0, len(orders))
	for _, ord := range orders {
		ids = append(ids, ord.ID)
	}

	items := []Item{}
	const qi = `SELECT * FROM order_items WHERE order_id = ANY($1) ORDER BY product_id`
	if err := sqlx.SelectContext(ctx, db, &items, qi, pq.Array(ids)); err != nil {
		return err
	}

	history := []HistoryEntry{}
	const qh = `SELECT * FROM order_history WHERE order_id = ANY($1) ORDER BY timestamp`
	if err := sqlx.SelectContext(ctx, db, &history, qh, pq.Array(ids)); err != nil {
		return err
	}

	byID := make(map[string]*Order, len(orders))
	for i := range orders {
		orders[i].Items = []Item{}
		orders[i].History = []HistoryEntry{}
		byID[orders[i].ID] = &orders[i]
	}

	for _, it := range items {
		ord := byID[it.OrderID]
		ord.Items = append(ord.Items, it)
	}
	for _, entry := range history {
		ord := byID[entry.OrderID]
		ord.History = append(ord.History, entry)
	}
	return nil
}
