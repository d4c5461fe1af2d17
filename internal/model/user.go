package model

import (
	"time"

	"github.com/google/uuid"
)

// User is an account in the directory the invite flow looks up by email.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	FullName  string    `json:"full_name" db:"full_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Principal is the authenticated caller, taken from the bearer token.
type Principal struct {
	UserID       uuid.UUID `json:"user_id"`
	Email        string    `json:"email"`
	BusinessName string    `json:"business_name,omitempty"`
	FullName     string    `json:"full_name,omitempty"`
}
