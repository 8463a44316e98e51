package notification

import (
	"context"

	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, ntf Notification) error {
	const q = `
	INSERT INTO notifications (notification_id, user_id, title, message, read, meta, created_at)
	VALUES (:notification_id, :user_id, :title, :message, :read, :meta, :created_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, ntf); err != nil {
		return err
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Notification, error) {
	const q = `SELECT * FROM notifications WHERE notification_id = $1`

	var ntf Notification
	if err := sqlx.GetContext(ctx, db, &ntf, q, id); err != nil {
		return Notification{}, err
	}
	return ntf, nil
}

func ListByUser(ctx context.Context, db sqlx.ExtContext, userID string) ([]Notification, error) {
	const q = `SELECT * FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`

	notifications := []Notification{}
	if err := sqlx.SelectContext(ctx, db, &notifications, q, userID); err != nil {
		return nil, err
	}
	return notifications, nil
}

func MarkRead(ctx context.Context, db sqlx.ExtContext, id string) error {
	const q = `UPDATE notifications SET read = true WHERE notification_id = $1`

	if _, err := db.ExecContext(ctx, q, id); err != nil {
		return err
	}
	return nil
}
