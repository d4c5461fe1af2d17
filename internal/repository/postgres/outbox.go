package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/barber-api/internal/model"
	"github.com/jwalitptl/barber-api/internal/repository"
)

type outboxRepository struct {
	BaseRepository
}

func NewOutboxRepository(base BaseRepository) repository.OutboxRepository {
	return &outboxRepository{base}
}

// insertOutboxEvent writes a pending event inside the caller's transaction.
func insertOutboxEvent(ctx context.Context, tx *sqlx.Tx, eventType string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	query := `
		INSERT INTO outbox_events (
			id, event_type, payload, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $5)
	`
	if _, err := tx.ExecContext(ctx, query, uuid.New(), eventType, body, model.OutboxStatusPending, time.Now()); err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

func (r *outboxRepository) ProcessPending(ctx context.Context, limit int, fn func(*model.OutboxEvent) error) (int, int, error) {
	selectQuery := `
		SELECT id, event_type, payload, status, error_message, retry_count,
			   created_at, processed_at, updated_at
		FROM outbox_events
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`
	processedQuery := `
		UPDATE outbox_events
		SET status = $1, error_message = NULL, processed_at = $2, updated_at = $2
		WHERE id = $3
	`
	failedQuery := `
		UPDATE outbox_events
		SET status = $1, error_message = $2, retry_count = retry_count + 1, updated_at = $3
		WHERE id = $4
	`

	var processed, failed int
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var events []*model.OutboxEvent
		if err := tx.SelectContext(ctx, &events, selectQuery, model.OutboxStatusPending, limit); err != nil {
			return fmt.Errorf("failed to get pending events: %w", err)
		}

		for _, evt := range events {
			now := time.Now()
			if fnErr := fn(evt); fnErr != nil {
				if _, err := tx.ExecContext(ctx, failedQuery, model.OutboxStatusFailed, fnErr.Error(), now, evt.ID); err != nil {
					return fmt.Errorf("failed to mark event %s failed: %w", evt.ID, err)
				}
				failed++
				continue
			}
			if _, err := tx.ExecContext(ctx, processedQuery, model.OutboxStatusProcessed, now, evt.ID); err != nil {
				return fmt.Errorf("failed to mark event %s processed: %w", evt.ID, err)
			}
			processed++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return processed, failed, nil
}

func (r *outboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM outbox_events
		WHERE status = $1
		AND processed_at < $2
	`
	result, err := r.db.ExecContext(ctx, query, model.OutboxStatusProcessed, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete processed events: %w", err)
	}

	return result.RowsAffected()
}
