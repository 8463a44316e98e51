package user

import "time"

type User struct {
	ID           string    `json:"id" db:"user_id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	Phone        string    `json:"phone" db:"phone"`
	Address      string    `json:"address" db:"address"`
	IsVerified   bool      `json:"isVerified" db:"is_verified"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// UserUp is the self-service profile update. Email, role and status
// are never client-writable.
type UserUp struct {
	Name    *string `json:"name" validate:"omitempty,min=1"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}
