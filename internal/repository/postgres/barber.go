package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/barber-api/internal/model"
	"github.com/jwalitptl/barber-api/internal/repository"
)

const barberSelect = `
	SELECT b.id, b.unit_id, b.name, b.email, b.user_id, b.invite_token_hash,
		   b.invited_at, b.created_at, u.company_id
	FROM barbers b
	JOIN units u ON u.id = b.unit_id
`

type barberRepository struct {
	BaseRepository
}

func NewBarberRepository(base BaseRepository) repository.BarberRepository {
	return &barberRepository{base}
}

func (r *barberRepository) Create(ctx context.Context, barber *model.Barber) error {
	query := `INSERT INTO barbers (id, unit_id, name, email, created_at) VALUES ($1, $2, $3, $4, $5)`
	barber.ID = uuid.New()
	barber.CreatedAt = time.Now()

	if _, err := r.db.ExecContext(ctx, query, barber.ID, barber.UnitID, barber.Name, barber.Email, barber.CreatedAt); err != nil {
		return fmt.Errorf("failed to create barber: %w", mapError(err))
	}
	return nil
}

func (r *barberRepository) Get(ctx context.Context, id uuid.UUID) (*model.Barber, error) {
	var barber model.Barber
	if err := r.db.GetContext(ctx, &barber, barberSelect+` WHERE b.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get barber: %w", mapError(err))
	}
	return &barber, nil
}

func (r *barberRepository) ListByUnit(ctx context.Context, unitID uuid.UUID) ([]*model.Barber, error) {
	var barbers []*model.Barber
	if err := r.db.SelectContext(ctx, &barbers, barberSelect+` WHERE b.unit_id = $1 ORDER BY b.name`, unitID); err != nil {
		return nil, fmt.Errorf("failed to list barbers: %w", err)
	}
	return barbers, nil
}

func (r *barberRepository) SetInvite(ctx context.Context, id uuid.UUID, email, tokenHash string, invitedAt time.Time) error {
	query := `
		UPDATE barbers
		SET email = $1, invite_token_hash = $2, invited_at = $3
		WHERE id = $4
	`
	result, err := r.db.ExecContext(ctx, query, email, tokenHash, invitedAt, id)
	if err != nil {
		return fmt.Errorf("failed to store barber invite: %w", err)
	}
	return expectAffected(result)
}

func (r *barberRepository) Link(ctx context.Context, id, userID uuid.UUID, tokenHash *string) error {
	query := `UPDATE barbers SET user_id = $1, invite_token_hash = NULL WHERE id = $2`
	args := []interface{}{userID, id}
	if tokenHash != nil {
		query += ` AND invite_token_hash IS NOT DISTINCT FROM $3`
		args = append(args, *tokenHash)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to link barber: %w", mapError(err))
	}
	return expectAffected(result)
}
