package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/barber-api/internal/model"
	"github.com/jwalitptl/barber-api/internal/repository"
)

const appointmentSelect = `
	SELECT a.id, a.unit_id, a.client_name, a.client_phone, a.barber_id, a.service_id,
		   a.start_time, a.end_time, a.total_price, a.status, a.created_at, a.updated_at,
		   COALESCE(b.name, '') AS barber_name, COALESCE(s.name, '') AS service_name
	FROM appointments a
	LEFT JOIN barbers b ON b.id = a.barber_id
	LEFT JOIN services s ON s.id = a.service_id
`

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, unit_id, client_name, client_phone, barber_id, service_id,
			start_time, end_time, total_price, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	if appointment.CreatedAt.IsZero() {
		appointment.CreatedAt = time.Now()
	}
	if appointment.UpdatedAt.IsZero() {
		appointment.UpdatedAt = appointment.CreatedAt
	}

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.UnitID,
		appointment.ClientName,
		appointment.ClientPhone,
		appointment.BarberID,
		appointment.ServiceID,
		appointment.StartTime,
		appointment.EndTime,
		appointment.TotalPrice,
		appointment.Status,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, appointmentSelect+` WHERE a.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", mapError(err))
	}
	return &appointment, nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	var w whereBuilder
	w.add("a.unit_id = $%d", filters.UnitID)
	if filters.BarberID != uuid.Nil {
		w.add("a.barber_id = $%d", filters.BarberID)
	}
	if filters.Status != "" {
		w.add("a.status = $%d", filters.Status)
	}
	if !filters.From.IsZero() {
		w.add("a.start_time >= $%d", filters.From)
	}
	if !filters.To.IsZero() {
		w.add("a.start_time < $%d", filters.To)
	}

	var appointments []*model.Appointment
	query := appointmentSelect + w.sql() + ` ORDER BY a.start_time ASC`
	if err := r.db.SelectContext(ctx, &appointments, query, w.args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.AppointmentStatus) error {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	result, err := r.db.ExecContext(ctx, query, to, time.Now(), id, from)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}
	if err := expectAffected(result); err != nil {
		return repository.ErrStatusChanged
	}
	return nil
}

func (r *appointmentRepository) Cancel(ctx context.Context, record *model.CancellationRecord, from model.AppointmentStatus) error {
	insert := `
		INSERT INTO appointment_cancellations (
			id, appointment_id, unit_id, client_name, client_phone, barber_name,
			service_name, total_price, scheduled_at, cancelled_at, minutes_before,
			is_late_cancellation, is_no_show, cancelled_by, source, reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	update := `
		UPDATE appointments
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, update,
			model.AppointmentStatusCancelled, record.CancelledAt, record.AppointmentID, from)
		if err != nil {
			return fmt.Errorf("failed to cancel appointment: %w", err)
		}
		if err := expectAffected(result); err != nil {
			return repository.ErrStatusChanged
		}

		if _, err := tx.ExecContext(ctx, insert,
			record.ID,
			record.AppointmentID,
			record.UnitID,
			record.ClientName,
			record.ClientPhone,
			record.BarberName,
			record.ServiceName,
			record.TotalPrice,
			record.ScheduledAt,
			record.CancelledAt,
			record.MinutesBefore,
			record.IsLateCancellation,
			record.IsNoShow,
			record.CancelledBy,
			record.Source,
			record.Reason,
		); err != nil {
			return fmt.Errorf("failed to record cancellation: %w", err)
		}
		return nil
	})
}

// Delete locks the appointment row, fills the snapshot fields of record from it,
// appends the snapshot to the deletion history and removes the row.
func (r *appointmentRepository) Delete(ctx context.Context, record *model.DeletionRecord) error {
	insert := `
		INSERT INTO appointment_deletions (
			id, appointment_id, unit_id, client_name, client_phone, barber_name,
			service_name, total_price, previous_status, scheduled_at, deleted_at,
			deleted_by, reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var current model.Appointment
		if err := tx.GetContext(ctx, &current,
			appointmentSelect+` WHERE a.id = $1 AND a.unit_id = $2 FOR UPDATE OF a`,
			record.AppointmentID, record.UnitID); err != nil {
			return fmt.Errorf("failed to lock appointment: %w", mapError(err))
		}
		record.ClientName = current.ClientName
		record.ClientPhone = current.ClientPhone
		record.BarberName = current.BarberName
		record.ServiceName = current.ServiceName
		record.TotalPrice = current.TotalPrice
		record.PreviousStatus = current.Status
		record.ScheduledAt = current.StartTime

		if _, err := tx.ExecContext(ctx, insert,
			record.ID,
			record.AppointmentID,
			record.UnitID,
			record.ClientName,
			record.ClientPhone,
			record.BarberName,
			record.ServiceName,
			record.TotalPrice,
			record.PreviousStatus,
			record.ScheduledAt,
			record.DeletedAt,
			record.DeletedBy,
			record.Reason,
		); err != nil {
			return fmt.Errorf("failed to record deletion: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, record.AppointmentID)
		if err != nil {
			return fmt.Errorf("failed to delete appointment: %w", err)
		}
		return expectAffected(result)
	})
}
