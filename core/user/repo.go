package user

import (
	"context"

	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, usr User) error {
	const q = `
	INSERT INTO users (user_id, name, email, password_hash, role, phone, address, is_verified, status, created_at, updated_at)
	VALUES (:user_id, :name, :email, :password_hash, :role, :phone, :address, :is_verified, :status, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, usr); err != nil {
		return err
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (User, error) {
	const q = `SELECT * FROM users WHERE user_id = $1`

	var usr User
	if err := sqlx.GetContext(ctx, db, &usr, q, id); err != nil {
		return User{}, err
	}
	return usr, nil
}

func FetchByEmail(ctx context.Context, db sqlx.ExtContext, email string) (User, error) {
	const q = `SELECT * FROM users WHERE email = $1`

	var usr User
	if err := sqlx.GetContext(ctx, db, &usr, q, email); err != nil {
		return User{}, err
	}
	return usr, nil
}

func List(ctx context.Context, db sqlx.ExtContext) ([]User, error) {
	const q = `SELECT * FROM users ORDER BY created_at DESC`

	users := []User{}
	if err := sqlx.SelectContext(ctx, db, &users, q); err != nil {
		return nil, err
	}
	return users, nil
}

func Update(ctx context.Context, db sqlx.ExtContext, usr User) error {
	const q = `
	UPDATE users SET
		name = :name,
		phone = :phone,
		address = :address,
		updated_at = :updated_at
	WHERE user_id = :user_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, usr); err != nil {
		return err
	}
	return nil
}

func UpdateRole(ctx context.Context, db sqlx.ExtContext, id string, role string) error {
	const q = `UPDATE users SET role = $2, updated_at = now() WHERE user_id = $1`

	if _, err := db.ExecContext(ctx, q, id, role); err != nil {
		return err
	}
	return nil
}
