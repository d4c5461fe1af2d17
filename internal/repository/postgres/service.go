package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/barber-api/internal/model"
	"github.com/jwalitptl/barber-api/internal/repository"
)

type serviceRepository struct {
	BaseRepository
}

func NewServiceRepository(base BaseRepository) repository.ServiceRepository {
	return &serviceRepository{base}
}

func (r *serviceRepository) Create(ctx context.Context, service *model.Service) error {
	query := `
		INSERT INTO services (id, unit_id, name, price, duration_minutes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	service.ID = uuid.New()
	service.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		service.ID, service.UnitID, service.Name, service.Price, service.DurationMinutes, service.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", mapError(err))
	}
	return nil
}

func (r *serviceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	query := `SELECT id, unit_id, name, price, duration_minutes, created_at FROM services WHERE id = $1`

	var service model.Service
	if err := r.db.GetContext(ctx, &service, query, id); err != nil {
		return nil, fmt.Errorf("failed to get service: %w", mapError(err))
	}
	return &service, nil
}

func (r *serviceRepository) ListByUnit(ctx context.Context, unitID uuid.UUID) ([]*model.Service, error) {
	query := `
		SELECT id, unit_id, name, price, duration_minutes, created_at
		FROM services
		WHERE unit_id = $1
		ORDER BY name
	`
	var services []*model.Service
	if err := r.db.SelectContext(ctx, &services, query, unitID); err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}
