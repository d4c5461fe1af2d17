package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/barber-api/internal/model"
	"github.com/jwalitptl/barber-api/internal/repository"
)

type unitRepository struct {
	BaseRepository
}

func NewUnitRepository(base BaseRepository) repository.UnitRepository {
	return &unitRepository{base}
}

func (r *unitRepository) Create(ctx context.Context, unit *model.Unit) error {
	query := `INSERT INTO units (id, company_id, name, created_at) VALUES ($1, $2, $3, $4)`
	if unit.ID == uuid.Nil {
		unit.ID = uuid.New()
	}
	unit.CreatedAt = time.Now()

	if _, err := r.db.ExecContext(ctx, query, unit.ID, unit.CompanyID, unit.Name, unit.CreatedAt); err != nil {
		return fmt.Errorf("failed to create unit: %w", mapError(err))
	}
	return nil
}

func (r *unitRepository) Get(ctx context.Context, id uuid.UUID) (*model.Unit, error) {
	var unit model.Unit
	err := r.db.GetContext(ctx, &unit, `SELECT id, company_id, name, created_at FROM units WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get unit: %w", mapError(err))
	}
	return &unit, nil
}

func (r *unitRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*model.Unit, error) {
	query := `
		SELECT id, company_id, name, created_at
		FROM units
		WHERE company_id = $1
		ORDER BY created_at ASC, id ASC
	`
	var units []*model.Unit
	if err := r.db.SelectContext(ctx, &units, query, companyID); err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	return units, nil
}
