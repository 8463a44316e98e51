package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rahmadiyan/health-store/api/background"
	"github.com/rahmadiyan/health-store/api/web"
	"github.com/rahmadiyan/health-store/api/weberr"
	"github.com/rahmadiyan/health-store/core/claims"
	"github.com/rahmadiyan/health-store/core/notification"
	"github.com/rahmadiyan/health-store/core/product"
	"github.com/rahmadiyan/health-store/core/user"
	"github.com/rahmadiyan/health-store/core/vendor"
	"github.com/rahmadiyan/health-store/database"
	"github.com/rahmadiyan/health-store/validate"
)

type Mailer interface {
	Send(to, subject, body string) error
}

// HandleCreate runs the whole checkout in one transaction: every line
// item's stock is conditionally decremented and the order, its item
// snapshots and the initial history row are inserted together. Any
// shortage rolls the entire operation back, so no product loses stock
// for a rejected order.
func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var on OrderNew
		if err := web.Decode(w, r, &on); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding order: %w", err))
		}

		if err := validate.Check(on); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		items := mergeItems(on.Items)

		now := time.Now().UTC()
		ord := Order{
			ID:              validate.GenerateID(),
			UserID:          clm.UserID,
			ShippingAddress: on.ShippingAddress,
			PaymentMethod:   on.PaymentMethod,
			PaymentStatus:   "pending",
			OrderStatus:     Pending,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			for _, in := range items {
				prd, err := product.Fetch(ctx, tx, in.ProductID)
				if err != nil {
					if errors.Is(err, sql.ErrNoRows) {
						return weberr.NotFound(fmt.Errorf("product[%s] does not exist", in.ProductID))
					}
					return fmt.Errorf("fetching product[%s]: %w", in.ProductID, err)
				}

				ok, err := product.DecrementStock(ctx, tx, prd.ID, in.Qty)
				if err != nil {
					return fmt.Errorf("decrementing stock of product[%s]: %w", prd.ID, err)
				}
				if !ok {
					err := fmt.Errorf("insufficient stock for product %s", prd.Name)
					return weberr.NewError(err, err.Error(), http.StatusBadRequest)
				}

				it := Item{
					OrderID:   ord.ID,
					ProductID: prd.ID,
					Name:      prd.Name,
					SKU:       prd.SKU,
					Price:     prd.Price,
					Qty:       in.Qty,
					Subtotal:  prd.Price * int64(in.Qty),
					VendorID:  prd.VendorID,
				}

				ord.Items = append(ord.Items, it)
				ord.Total += it.Subtotal
			}

			if err := Create(ctx, tx, ord); err != nil {
				return fmt.Errorf("creating order: %w", err)
			}

			for _, it := range ord.Items {
				if err := CreateItem(ctx, tx, it); err != nil {
					return fmt.Errorf("creating order item: %w", err)
				}
			}

			entry := HistoryEntry{OrderID: ord.ID, Status: Pending, Timestamp: now}
			if err := AppendHistory(ctx, tx, entry); err != nil {
				return fmt.Errorf("recording initial history: %w", err)
			}
			ord.History = append(ord.History, entry)

			return nil
		})
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, ord, http.StatusCreated)
	}
}

// mergeItems sums quantities of lines naming the same product. Each
// product then maps to exactly one order_items row.
func mergeItems(items []ItemNew) []ItemNew {
	merged := make([]ItemNew, 0, len(items))
	index := make(map[string]int, len(items))

	for _, in := range items {
		if i, ok := index[in.ProductID]; ok {
			merged[i].Qty += in.Qty
			continue
		}
		index[in.ProductID] = len(merged)
		merged = append(merged, in)
	}
	return merged
}

// HandleList scopes the listing by role: admins see everything, vendors
// see orders containing their products, buyers see their own.
func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var orders []Order

		switch clm.Role {
		case claims.RoleAdmin:
			orders, err = ListAll(ctx, db)

		case claims.RoleVendor:
			vnd, errV := vendor.FetchByUser(ctx, db, clm.UserID)
			if errV != nil {
				if errors.Is(errV, sql.ErrNoRows) {
					return weberr.Forbidden(errors.New("no vendor profile"))
				}
				return fmt.Errorf("fetching vendor of user[%s]: %w", clm.UserID, errV)
			}
			orders, err = ListByVendor(ctx, db, vnd.ID)

		default:
			orders, err = ListByUser(ctx, db, clm.UserID)
		}

		if err != nil {
			return fmt.Errorf("listing orders: %w", err)
		}

		if err := loadDetails(ctx, db, orders); err != nil {
			return fmt.Errorf("loading order details: %w", err)
		}

		return web.Respond(ctx, w, orders, http.StatusOK)
	}
}

func HandleListByVendor(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		vendorID := web.Param(r, "vendor_id")
		if err := validate.CheckID(vendorID); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if !claims.IsAdmin(ctx) {
			vnd, err := vendor.FetchByUser(ctx, db, clm.UserID)
			if err != nil || vnd.ID != vendorID {
				return weberr.Forbidden(errors.New("not this vendor"))
			}
		}

		orders, err := ListByVendor(ctx, db, vendorID)
		if err != nil {
			return fmt.Errorf("listing orders of vendor[%s]: %w", vendorID, err)
		}

		if err := loadDetails(ctx, db, orders); err != nil {
			return fmt.Errorf("loading order details: %w", err)
		}

		return web.Respond(ctx, w, orders, http.StatusOK)
	}
}

func HandleListByUser(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if _, err := claims.Get(ctx); err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		userID := web.Param(r, "user_id")
		if err := validate.CheckID(userID); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if !claims.IsAdmin(ctx) && !claims.IsUser(ctx, userID) {
			return weberr.Forbidden(errors.New("not this user"))
		}

		orders, err := ListByUser(ctx, db, userID)
		if err != nil {
			return fmt.Errorf("listing orders of user[%s]: %w", userID, err)
		}

		if err := loadDetails(ctx, db, orders); err != nil {
			return fmt.Errorf("loading order details: %w", err)
		}

		return web.Respond(ctx, w, orders, http.StatusOK)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		ord, err := fetchFull(ctx, db, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching order[%s]: %w", id, err)
		}

		if err := authorizeRead(ctx, db, clm, ord); err != nil {
			return err
		}

		return web.Respond(ctx, w, ord, http.StatusOK)
	}
}

// HandleUpdateStatus moves the order to a new status, appending exactly
// one history entry. A transition to "dikirim" requires courier details
// and, after the transaction commits, notifies the buyer by email and
// in-app message; delivery failures are logged, never surfaced.
func HandleUpdateStatus(db *sqlx.DB, mailer Mailer, bg *background.Background) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		var up StatusUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding status update: %w", err))
		}

		if err := validate.Check(up); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		status := Status(up.Status)
		if !status.Valid() {
			err := fmt.Errorf("unknown order status %q", up.Status)
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if status == Shipped && (up.Courier == "" || up.TrackingNumber == "") {
			err := errors.New("courier and trackingNumber are required to ship an order")
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		ord, err := fetchFull(ctx, db, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching order[%s]: %w", id, err)
		}

		if err := authorizeWrite(ctx, db, clm, ord); err != nil {
			return err
		}

		now := time.Now().UTC()
		entry := HistoryEntry{OrderID: ord.ID, Status: status, Timestamp: now}

		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			if status == Shipped {
				if err := SetShipment(ctx, tx, ord.ID, status, up.Courier, up.TrackingNumber, now); err != nil {
					return fmt.Errorf("updating shipment: %w", err)
				}
			} else {
				if err := UpdateStatus(ctx, tx, ord.ID, status, now); err != nil {
					return fmt.Errorf("updating status: %w", err)
				}
			}

			return AppendHistory(ctx, tx, entry)
		})
		if err != nil {
			return fmt.Errorf("transitioning order[%s] to %s: %w", ord.ID, status, err)
		}

		ord.OrderStatus = status
		ord.UpdatedAt = now
		ord.History = append(ord.History, entry)
		if status == Shipped {
			ord.Courier = up.Courier
			ord.TrackingNumber = up.TrackingNumber

			notifyShipment(db, mailer, bg, ord)
		}

		return web.Respond(ctx, w, ord, http.StatusOK)
	}
}

// notifyShipment dispatches the buyer-facing email and in-app
// notification. Both are advisory: the committed transition stands even
// when neither can be delivered.
func notifyShipment(db *sqlx.DB, mailer Mailer, bg *background.Background, ord Order) {
	message := fmt.Sprintf("Pesanan Anda telah dikirim via %s, resi: %s", ord.Courier, ord.TrackingNumber)
	userID := ord.UserID
	orderID := ord.ID

	bg.Add(func() error {
		usr, err := user.Fetch(context.Background(), db, userID)
		if err != nil {
			return fmt.Errorf("fetching buyer of order[%s]: %w", orderID, err)
		}

		body := fmt.Sprintf("<p>%s</p>", message)
		if err := mailer.Send(usr.Email, "Pesanan Anda Dikirim", body); err != nil {
			return fmt.Errorf("sending shipment mail for order[%s]: %w", orderID, err)
		}
		return nil
	})

	meta, err := json.Marshal(map[string]string{"orderId": orderID})
	if err != nil {
		meta = []byte(`{}`)
	}

	ntf := notification.Notification{
		ID:        validate.GenerateID(),
		UserID:    userID,
		Title:     "Pesanan Dikirim",
		Message:   message,
		Meta:      meta,
		CreatedAt: time.Now().UTC(),
	}

	bg.Add(func() error {
		if err := notification.Create(context.Background(), db, ntf); err != nil {
			return fmt.Errorf("creating shipment notification for order[%s]: %w", orderID, err)
		}
		return nil
	})
}

func fetchFull(ctx context.Context, db sqlx.ExtContext, id string) (Order, error) {
	ord, err := Fetch(ctx, db, id)
	if err != nil {
		return Order{}, err
	}

	if ord.Items, err = FetchItems(ctx, db, id); err != nil {
		return Order{}, fmt.Errorf("fetching items: %w", err)
	}
	if ord.History, err = FetchHistory(ctx, db, id); err != nil {
		return Order{}, fmt.Errorf("fetching history: %w", err)
	}
	return ord, nil
}

// authorizeRead admits admins, the buyer who placed the order and any
// vendor owning at least one of its line items.
func authorizeRead(ctx context.Context, db *sqlx.DB, clm claims.Claims, ord Order) error {
	switch clm.Role {
	case claims.RoleAdmin:
		return nil

	case claims.RoleVendor:
		vnd, err := vendor.FetchByUser(ctx, db, clm.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.Forbidden(errors.New("no vendor profile"))
			}
			return fmt.Errorf("fetching vendor of user[%s]: %w", clm.UserID, err)
		}
		if !soldBy(ord, vnd.ID) {
			return weberr.Forbidden(errors.New("order contains no products of this vendor"))
		}
		return nil

	default:
		if ord.UserID != clm.UserID {
			return weberr.Forbidden(errors.New("order belongs to another user"))
		}
		return nil
	}
}

// authorizeWrite is authorizeRead minus the buyer: buyers never mutate
// order status.
func authorizeWrite(ctx context.Context, db *sqlx.DB, clm claims.Claims, ord Order) error {
	if !claims.IsAdmin(ctx) && !claims.IsVendor(ctx) {
		return weberr.Forbidden(errors.New("buyers cannot update order status"))
	}
	return authorizeRead(ctx, db, clm, ord)
}

func soldBy(ord Order, vendorID string) bool {
	for _, it := range ord.Items {
		if it.VendorID == vendorID {
			return true
		}
	}
	return false
}
