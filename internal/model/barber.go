package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Barber struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	UnitID          uuid.UUID  `db:"unit_id" json:"unit_id"`
	Name            string     `db:"name" json:"name"`
	Email           string     `db:"email" json:"email"`
	UserID          *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	InviteTokenHash *string    `db:"invite_token_hash" json:"-"`
	InvitedAt       *time.Time `db:"invited_at" json:"invited_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`

	// Owning company, joined through units on read.
	CompanyID uuid.UUID `db:"company_id" json:"company_id"`
}

// Service is an entry of a unit's catalog.
type Service struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	UnitID          uuid.UUID       `db:"unit_id" json:"unit_id"`
	Name            string          `db:"name" json:"name"`
	Price           decimal.Decimal `db:"price" json:"price"`
	DurationMinutes int             `db:"duration_minutes" json:"duration_minutes"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

type CreateBarberRequest struct {
	Name  string `json:"name" binding:"required,max=120"`
	Email string `json:"email" binding:"omitempty,email"`
}

type CreateServiceRequest struct {
	Name            string          `json:"name" binding:"required,max=120"`
	Price           decimal.Decimal `json:"price"`
	DurationMinutes int             `json:"duration_minutes" binding:"required,min=5,max=480"`
}

// BarberInviteRequest is the barber-invite RPC body.
type BarberInviteRequest struct {
	BarberID    string `json:"barberId" validate:"required,uuid"`
	Email       string `json:"email" validate:"required,email"`
	Name        string `json:"name" validate:"required"`
	RedirectURL string `json:"redirectUrl" validate:"omitempty,url"`
}

type BarberInviteResponse struct {
	Success bool      `json:"success"`
	UserID  uuid.UUID `json:"userId"`
	Message string    `json:"message"`
}

// BarberLinkRequest is the barber-link RPC body.
type BarberLinkRequest struct {
	BarberID    string `json:"barberId" validate:"required,uuid"`
	UserID      string `json:"userId" validate:"required,uuid"`
	InviteToken string `json:"inviteToken"`
}

type BarberLinkResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
