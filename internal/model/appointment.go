package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed,
		AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

type Appointment struct {
	Base
	UnitID      uuid.UUID         `db:"unit_id" json:"unit_id"`
	ClientName  string            `db:"client_name" json:"client_name"`
	ClientPhone string            `db:"client_phone" json:"client_phone"`
	BarberID    uuid.UUID         `db:"barber_id" json:"barber_id"`
	ServiceID   uuid.UUID         `db:"service_id" json:"service_id"`
	StartTime   time.Time         `db:"start_time" json:"start_time"`
	EndTime     time.Time         `db:"end_time" json:"end_time"`
	TotalPrice  decimal.Decimal   `db:"total_price" json:"total_price"`
	Status      AppointmentStatus `db:"status" json:"status"`

	// Joined from barbers and services on read.
	BarberName  string `db:"barber_name" json:"barber_name"`
	ServiceName string `db:"service_name" json:"service_name"`
}

type CreateAppointmentRequest struct {
	ClientName  string           `json:"client_name" binding:"required,max=120"`
	ClientPhone string           `json:"client_phone" binding:"max=40"`
	BarberID    uuid.UUID        `json:"barber_id" binding:"required"`
	ServiceID   uuid.UUID        `json:"service_id" binding:"required"`
	StartTime   time.Time        `json:"start_time" binding:"required"`
	EndTime     time.Time        `json:"end_time" binding:"required,gtfield=StartTime"`
	TotalPrice  *decimal.Decimal `json:"total_price"`
}

type CancelAppointmentRequest struct {
	Source string `json:"source" binding:"omitempty,oneof=dashboard client system"`
	Reason string `json:"reason" binding:"max=500"`
}

type DeleteAppointmentRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type AppointmentFilters struct {
	UnitID   uuid.UUID
	BarberID uuid.UUID
	Status   AppointmentStatus
	DateRange
}
