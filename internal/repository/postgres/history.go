package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/barber-api/internal/model"
	"github.com/jwalitptl/barber-api/internal/repository"
)

type historyRepository struct {
	BaseRepository
}

func NewHistoryRepository(base BaseRepository) repository.HistoryRepository {
	return &historyRepository{base}
}

func (r *historyRepository) ListCancellations(ctx context.Context, filters *model.HistoryFilters) ([]*model.CancellationRecord, error) {
	var w whereBuilder
	w.add("unit_id = $%d", filters.UnitID)
	if !filters.From.IsZero() {
		w.add("scheduled_at >= $%d", filters.From)
	}
	if !filters.To.IsZero() {
		w.add("scheduled_at < $%d", filters.To)
	}
	switch {
	case filters.LateOnly && filters.NoShowOnly:
		w.clauses = append(w.clauses, "(is_late_cancellation OR is_no_show)")
	case filters.LateOnly:
		w.clauses = append(w.clauses, "is_late_cancellation")
	case filters.NoShowOnly:
		w.clauses = append(w.clauses, "is_no_show")
	}

	query := `
		SELECT id, appointment_id, unit_id, client_name, client_phone, barber_name,
			   service_name, total_price, scheduled_at, cancelled_at, minutes_before,
			   is_late_cancellation, is_no_show, cancelled_by, source, reason
		FROM appointment_cancellations` + w.sql() + `
		ORDER BY cancelled_at DESC`

	var records []*model.CancellationRecord
	if err := r.db.SelectContext(ctx, &records, query, w.args...); err != nil {
		return nil, fmt.Errorf("failed to list cancellations: %w", err)
	}
	return records, nil
}

func (r *historyRepository) ListDeletions(ctx context.Context, filters *model.HistoryFilters) ([]*model.DeletionRecord, error) {
	var w whereBuilder
	w.add("unit_id = $%d", filters.UnitID)
	if !filters.From.IsZero() {
		w.add("scheduled_at >= $%d", filters.From)
	}
	if !filters.To.IsZero() {
		w.add("scheduled_at < $%d", filters.To)
	}

	query := `
		SELECT id, appointment_id, unit_id, client_name, client_phone, barber_name,
			   service_name, total_price, previous_status, scheduled_at, deleted_at,
			   deleted_by, reason
		FROM appointment_deletions` + w.sql() + `
		ORDER BY deleted_at DESC`

	var records []*model.DeletionRecord
	if err := r.db.SelectContext(ctx, &records, query, w.args...); err != nil {
		return nil, fmt.Errorf("failed to list deletions: %w", err)
	}
	return records, nil
}

func (r *historyRepository) DeleteCancellation(ctx context.Context, unitID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM appointment_cancellations WHERE id = $1 AND unit_id = $2`, id, unitID)
	if err != nil {
		return fmt.Errorf("failed to delete cancellation record: %w", err)
	}
	return expectAffected(result)
}

func (r *historyRepository) DeleteDeletion(ctx context.Context, unitID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM appointment_deletions WHERE id = $1 AND unit_id = $2`, id, unitID)
	if err != nil {
		return fmt.Errorf("failed to delete deletion record: %w", err)
	}
	return expectAffected(result)
}
