package company

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/barber-api/internal/model"
	"github.com/jwalitptl/barber-api/internal/repository"
	apperrors "github.com/jwalitptl/barber-api/pkg/errors"
	"github.com/jwalitptl/barber-api/pkg/logger"
)

// CompanyList is one page of the back-office company listing.
type CompanyList struct {
	Companies []*model.Company `json:"companies"`
	Total     int              `json:"total"`
	Page      int              `json:"page"`
	PageSize  int              `json:"page_size"`
}

// Service backs the super-admin company screens.
type Service struct {
	repo   repository.CompanyRepository
	logger *logger.Logger
}

func NewService(repo repository.CompanyRepository, logger *logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, filters *model.CompanyFilters) (*CompanyList, error) {
	if filters.PlanStatus != "" && !filters.PlanStatus.Valid() {
		return nil, apperrors.BadRequest("invalid plan_status filter", nil)
	}

	companies, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	return &CompanyList{
		Companies: companies,
		Total:     total,
		Page:      page,
		PageSize:  filters.Limit(),
	}, nil
}

// UpdatePlan changes a company's plan status and, when given, its monthly price.
func (s *Service) UpdatePlan(ctx context.Context, id uuid.UUID, req *model.UpdatePlanRequest) (*model.Company, error) {
	if !req.PlanStatus.Valid() {
		return nil, apperrors.BadRequest("invalid plan_status", nil)
	}
	if req.MonthlyPrice != nil && req.MonthlyPrice.IsNegative() {
		return nil, apperrors.BadRequest("monthly_price cannot be negative", nil)
	}

	company, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("company", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	previous := company.PlanStatus
	company.PlanStatus = req.PlanStatus
	if req.MonthlyPrice != nil {
		company.MonthlyPrice = *req.MonthlyPrice
	}
	company.UpdatedAt = time.Now()

	if err := s.repo.UpdatePlan(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}

	s.logger.Info("Company plan updated",
		"company_id", company.ID.String(),
		"from", string(previous),
		"to", string(company.PlanStatus),
	)
	return company, nil
}
