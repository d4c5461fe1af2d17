package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/barber-api/internal/model"
	"github.com/jwalitptl/barber-api/internal/repository"
)

type visitRepository struct {
	BaseRepository
}

func NewVisitRepository(base BaseRepository) repository.VisitRepository {
	return &visitRepository{base}
}

func (r *visitRepository) Create(ctx context.Context, visit *model.PageVisit) error {
	query := `INSERT INTO page_visits (id, path, referrer, user_agent, visited_at) VALUES ($1, $2, $3, $4, $5)`
	visit.ID = uuid.New()
	if visit.VisitedAt.IsZero() {
		visit.VisitedAt = time.Now()
	}

	if _, err := r.db.ExecContext(ctx, query, visit.ID, visit.Path, visit.Referrer, visit.UserAgent, visit.VisitedAt); err != nil {
		return fmt.Errorf("failed to record page visit: %w", err)
	}
	return nil
}

func (r *visitRepository) ListVisitedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	var times []time.Time
	if err := r.db.SelectContext(ctx, &times, `SELECT visited_at FROM page_visits WHERE visited_at >= $1`, since); err != nil {
		return nil, fmt.Errorf("failed to list page visits: %w", err)
	}
	return times, nil
}
