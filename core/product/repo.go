package product

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, prd Product) error {
	const q = `
	INSERT INTO products
		(product_id, vendor_id, name, slug, description, category, brand, sku,
		batch_number, expiration_date, prescription_required, dosage_info,
		price, stock, images, tags, created_at, updated_at)
	VALUES
		(:product_id, :vendor_id, :name, :slug, :description, :category, :brand, :sku,
		:batch_number, :expiration_date, :prescription_required, :dosage_info,
		:price, :stock, :images, :tags, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, prd); err != nil {
		return err
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Product, error) {
	const q = `SELECT * FROM products WHERE product_id = $1`

	var prd Product
	if err := sqlx.GetContext(ctx, db, &prd, q, id); err != nil {
		return Product{}, err
	}
	return prd, nil
}

func List(ctx context.Context, db sqlx.ExtContext, f Filter) ([]Product, error) {
	q := `SELECT * FROM products WHERE 1=1`
	args := []interface{}{}

	if f.Category != "" {
		args = append(args, f.Category)
		q += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if f.VendorID != "" {
		args = append(args, f.VendorID)
		q += fmt.Sprintf(" AND vendor_id = $%d", len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		q += fmt.Sprintf(" AND name ILIKE $%d", len(args))
	}

	q += " ORDER BY created_at DESC"

	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))

		if f.Page > 1 {
			args = append(args, (f.Page-1)*f.Limit)
			q += fmt.Sprintf(" OFFSET $%d", len(args))
		}
	}

	products := []Product{}
	if err := sqlx.SelectContext(ctx, db, &products, q, args...); err != nil {
		return nil, err
	}
	return products, nil
}

func Update(ctx context.Context, db sqlx.ExtContext, prd Product) error {
	const q = `
	UPDATE products SET
		name = :name,
		slug = :slug,
		description = :description,
		category = :category,
		brand = :brand,
		sku = :sku,
		batch_number = :batch_number,
		expiration_date = :expiration_date,
		prescription_required = :prescription_required,
		dosage_info = :dosage_info,
		price = :price,
		stock = :stock,
		images = :images,
		tags = :tags,
		updated_at = :updated_at
	WHERE product_id = :product_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, prd); err != nil {
		return err
	}
	return nil
}

func Delete(ctx context.Context, db sqlx.ExtContext, id string) error {
	const q = `DELETE FROM products WHERE product_id = $1`

	if _, err := db.ExecContext(ctx, q, id); err != nil {
		return err
	}
	return nil
}

// DecrementStock atomically reserves qty units. It reports false, with
// no change, when fewer than qty units remain.
func DecrementStock(ctx context.Context, db sqlx.ExtContext, id string, qty int) (bool, error) {
	const q = `
	UPDATE products SET stock = stock - $2, updated_at = now()
	WHERE product_id = $1 AND stock >= $2`

	res, err := db.ExecContext(ctx, q, id, qty)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
