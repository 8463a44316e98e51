package notification

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Notification is an in-app message addressed to one user.
type Notification struct {
	ID        string         `json:"id" db:"notification_id"`
	UserID    string         `json:"userId" db:"user_id"`
	Title     string         `json:"title" db:"title"`
	Message   string         `json:"message" db:"message"`
	Read      bool           `json:"read" db:"read"`
	Meta      types.JSONText `json:"meta" db:"meta"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
}
