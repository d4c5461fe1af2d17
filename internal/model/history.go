package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CancellationRecord is an append-only snapshot taken when an appointment is cancelled.
// AppointmentID is a plain value; the live row may be deleted later.
type CancellationRecord struct {
	ID                 uuid.UUID       `db:"id" json:"id"`
	AppointmentID      uuid.UUID       `db:"appointment_id" json:"appointment_id"`
	UnitID             uuid.UUID       `db:"unit_id" json:"unit_id"`
	ClientName         string          `db:"client_name" json:"client_name"`
	ClientPhone        string          `db:"client_phone" json:"client_phone"`
	BarberName         string          `db:"barber_name" json:"barber_name"`
	ServiceName        string          `db:"service_name" json:"service_name"`
	TotalPrice         decimal.Decimal `db:"total_price" json:"total_price"`
	ScheduledAt        time.Time       `db:"scheduled_at" json:"scheduled_at"`
	CancelledAt        time.Time       `db:"cancelled_at" json:"cancelled_at"`
	MinutesBefore      int             `db:"minutes_before" json:"minutes_before"`
	IsLateCancellation bool            `db:"is_late_cancellation" json:"is_late_cancellation"`
	IsNoShow           bool            `db:"is_no_show" json:"is_no_show"`
	CancelledBy        *uuid.UUID      `db:"cancelled_by" json:"cancelled_by,omitempty"`
	Source             string          `db:"source" json:"source"`
	Reason             string          `db:"reason" json:"reason"`
}

// DeletionRecord is an append-only snapshot taken right before an appointment row is removed.
type DeletionRecord struct {
	ID             uuid.UUID         `db:"id" json:"id"`
	AppointmentID  uuid.UUID         `db:"appointment_id" json:"appointment_id"`
	UnitID         uuid.UUID         `db:"unit_id" json:"unit_id"`
	ClientName     string            `db:"client_name" json:"client_name"`
	ClientPhone    string            `db:"client_phone" json:"client_phone"`
	BarberName     string            `db:"barber_name" json:"barber_name"`
	ServiceName    string            `db:"service_name" json:"service_name"`
	TotalPrice     decimal.Decimal   `db:"total_price" json:"total_price"`
	PreviousStatus AppointmentStatus `db:"previous_status" json:"previous_status"`
	ScheduledAt    time.Time         `db:"scheduled_at" json:"scheduled_at"`
	DeletedAt      time.Time         `db:"deleted_at" json:"deleted_at"`
	DeletedBy      uuid.UUID         `db:"deleted_by" json:"deleted_by"`
	Reason         string            `db:"reason" json:"reason"`
}

type HistoryFilters struct {
	UnitID     uuid.UUID
	LateOnly   bool `form:"late_only"`
	NoShowOnly bool `form:"no_show_only"`
	DateRange
}

// HistorySummary aggregates a set of cancellation records.
type HistorySummary struct {
	Count       int             `json:"count"`
	LateCount   int             `json:"late_count"`
	NoShowCount int             `json:"no_show_count"`
	TotalValue  decimal.Decimal `json:"total_value"`
	LostValue   decimal.Decimal `json:"lost_value"`
}
