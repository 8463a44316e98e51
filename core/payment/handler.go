package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rahmadiyan/health-store/api/web"
	"github.com/rahmadiyan/health-store/api/weberr"
	"github.com/rahmadiyan/health-store/core/order"
	"github.com/rahmadiyan/health-store/database"
	"github.com/rahmadiyan/health-store/random"
	"github.com/rahmadiyan/health-store/validate"
)

// HandleMockPay simulates a gateway that always settles: the payment is
// recorded as paid and the order's mirror flag is flipped in the same
// transaction.
func HandleMockPay(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var pn PaymentNew
		if err := web.Decode(w, r, &pn); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding payment: %w", err))
		}

		if err := validate.Check(pn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if _, err := order.Fetch(ctx, db, pn.OrderID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching order[%s]: %w", pn.OrderID, err)
		}

		now := time.Now().UTC()
		pay := Payment{
			ID:            validate.GenerateID(),
			OrderID:       pn.OrderID,
			Method:        pn.Method,
			Amount:        pn.Amount,
			Status:        StatusPaid,
			TransactionID: "MOCK-" + random.String(16),
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		err := database.Transaction(db, func(tx sqlx.ExtContext) error {
			if err := Create(ctx, tx, pay); err != nil {
				return fmt.Errorf("creating payment: %w", err)
			}
			if err := order.UpdatePaymentStatus(ctx, tx, pay.OrderID, pay.Status); err != nil {
				return fmt.Errorf("mirroring payment status: %w", err)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("recording payment for order[%s]: %w", pn.OrderID, err)
		}

		return web.Respond(ctx, w, pay, http.StatusOK)
	}
}

// HandleUpdateStatus lets an admin settle or reject a payment; the
// linked order's mirror flag moves in the same transaction.
func HandleUpdateStatus(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
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

		pay, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching payment[%s]: %w", id, err)
		}

		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			if err := UpdateStatus(ctx, tx, pay.ID, up.Status); err != nil {
				return fmt.Errorf("updating payment status: %w", err)
			}
			if err := order.UpdatePaymentStatus(ctx, tx, pay.OrderID, up.Status); err != nil {
				return fmt.Errorf("mirroring payment status: %w", err)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("updating payment[%s]: %w", id, err)
		}

		pay.Status = up.Status
		return web.Respond(ctx, w, pay, http.StatusOK)
	}
}
