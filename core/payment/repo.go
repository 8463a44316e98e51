package payment

import (
	"context"

	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, pay Payment) error {
	const q = `
	INSERT INTO payments (payment_id, order_id, method, amount, status, transaction_id, created_at, updated_at)
	VALUES (:payment_id, :order_id, :method, :amount, :status, :transaction_id, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, pay); err != nil {
		return err
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Payment, error) {
	const q = `SELECT * FROM payments WHERE payment_id = $1`

	var pay Payment
	if err := sqlx.GetContext(ctx, db, &pay, q, id); err != nil {
		return Payment{}, err
	}
	return pay, nil
}

func UpdateStatus(ctx context.Context, db sqlx.ExtContext, id string, status string) error {
	const q = `UPDATE payments SET status = $2, updated_at = now() WHERE payment_id = $1`

	if _, err := db.ExecContext(ctx, q, id, status); err != nil {
		return err
	}
	return nil
}
