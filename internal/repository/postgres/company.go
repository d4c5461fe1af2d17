package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/barber-api/internal/model"
	"github.com/jwalitptl/barber-api/internal/repository"
	"github.com/jwalitptl/barber-api/pkg/messaging"
)

const companyColumns = `id, name, owner_id, plan_status, monthly_price, created_at, updated_at`

type companyRepository struct {
	BaseRepository
}

func NewCompanyRepository(base BaseRepository) repository.CompanyRepository {
	return &companyRepository{base}
}

func (r *companyRepository) Create(ctx context.Context, company *model.Company) error {
	query := `
		INSERT INTO companies (
			id, name, owner_id, plan_status, monthly_price, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if company.ID == uuid.Nil {
		company.ID = uuid.New()
	}
	now := time.Now()
	company.CreatedAt = now
	company.UpdatedAt = now

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, query,
			company.ID,
			company.Name,
			company.OwnerID,
			company.PlanStatus,
			company.MonthlyPrice,
			company.CreatedAt,
			company.UpdatedAt,
		); err != nil {
			return mapError(err)
		}
		return insertOutboxEvent(ctx, tx, messaging.EventType("companies", messaging.KindInsert), company)
	})
	if err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}
	return nil
}

func (r *companyRepository) Get(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`

	var company model.Company
	if err := r.db.GetContext(ctx, &company, query, id); err != nil {
		return nil, fmt.Errorf("failed to get company: %w", mapError(err))
	}
	return &company, nil
}

func (r *companyRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*model.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE owner_id = $1`

	var company model.Company
	if err := r.db.GetContext(ctx, &company, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to get company by owner: %w", mapError(err))
	}
	return &company, nil
}

func (r *companyRepository) List(ctx context.Context, filters *model.CompanyFilters) ([]*model.Company, int, error) {
	var w whereBuilder
	if filters.PlanStatus != "" {
		w.add("plan_status = $%d", filters.PlanStatus)
	}
	if filters.Search != "" {
		w.add("name ILIKE $%d", "%"+filters.Search+"%")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM companies`+w.sql(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count companies: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM companies%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		companyColumns, w.sql(), w.next(), w.next()+1)
	args := append(w.args, filters.Limit(), filters.Offset())

	var companies []*model.Company
	if err := r.db.SelectContext(ctx, &companies, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, total, nil
}

func (r *companyRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM companies`); err != nil {
		return 0, fmt.Errorf("failed to count companies: %w", err)
	}
	return count, nil
}

func (r *companyRepository) UpdatePlan(ctx context.Context, company *model.Company) error {
	query := `
		UPDATE companies
		SET plan_status = $1, monthly_price = $2, updated_at = $3
		WHERE id = $4
	`
	company.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		company.PlanStatus,
		company.MonthlyPrice,
		company.UpdatedAt,
		company.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update company plan: %w", err)
	}
	return expectAffected(result)
}

func (r *companyRepository) ListCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	var times []time.Time
	err := r.db.SelectContext(ctx, &times, `SELECT created_at FROM companies WHERE created_at >= $1`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list company signups: %w", err)
	}
	return times, nil
}
