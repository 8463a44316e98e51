package wishlist

import (
	"context"

	"github.com/jmoiron/sqlx"
)

func CreateItem(ctx context.Context, db sqlx.ExtContext, it Item) error {
	const q = `
	INSERT INTO wishlists (user_id, product_id, added_at)
	VALUES (:user_id, :product_id, :added_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, it); err != nil {
		return err
	}
	return nil
}

func FetchItem(ctx context.Context, db sqlx.ExtContext, userID, productID string) (Item, error) {
	const q = `SELECT * FROM wishlists WHERE user_id = $1 AND product_id = $2`

	var it Item
	if err := sqlx.GetContext(ctx, db, &it, q, userID, productID); err != nil {
		return Item{}, err
	}
	return it, nil
}

func FetchItems(ctx context.Context, db sqlx.ExtContext, userID string) ([]Item, error) {
	const q = `SELECT * FROM wishlists WHERE user_id = $1 ORDER BY added_at DESC`

	items := []Item{}
	if err := sqlx.SelectContext(ctx, db, &items, q, userID); err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteItem reports whether a row was actually removed.
func DeleteItem(ctx context.Context, db sqlx.ExtContext, userID, productID string) (bool, error) {
	const q = `DELETE FROM wishlists WHERE user_id = $1 AND product_id = $2`

	res, err := db.ExecContext(ctx, q, userID, productID)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func Delete(ctx context.Context, db sqlx.ExtContext, userID string) error {
	const q = `DELETE FROM wishlists WHERE user_id = $1`

	if _, err := db.ExecContext(ctx, q, userID); err != nil {
		return err
	}
	return nil
}
