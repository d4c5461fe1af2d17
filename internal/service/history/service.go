package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jwalitptl/barber-api/internal/model"
	"github.com/jwalitptl/barber-api/internal/repository"
	apperrors "github.com/jwalitptl/barber-api/pkg/errors"
	"github.com/jwalitptl/barber-api/pkg/logger"
)

type Service struct {
	repo   repository.HistoryRepository
	logger *logger.Logger
}

func NewService(repo repository.HistoryRepository, logger *logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) ListCancellations(ctx context.Context, filters *model.HistoryFilters) ([]*model.CancellationRecord, error) {
	if err := validateRange(filters.DateRange); err != nil {
		return nil, err
	}
	records, err := s.repo.ListCancellations(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list cancellations: %w", err)
	}
	return records, nil
}

func (s *Service) ListDeletions(ctx context.Context, filters *model.HistoryFilters) ([]*model.DeletionRecord, error) {
	if err := validateRange(filters.DateRange); err != nil {
		return nil, err
	}
	records, err := s.repo.ListDeletions(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list deletions: %w", err)
	}
	return records, nil
}

func (s *Service) DeleteCancellation(ctx context.Context, unitID, id uuid.UUID) error {
	if err := s.repo.DeleteCancellation(ctx, unitID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("cancellation record", err)
		}
		return fmt.Errorf("failed to delete cancellation record: %w", err)
	}
	s.logger.Info("Cancellation record removed", "record_id", id.String(), "unit_id", unitID.String())
	return nil
}

func (s *Service) DeleteDeletion(ctx context.Context, unitID, id uuid.UUID) error {
	if err := s.repo.DeleteDeletion(ctx, unitID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("deletion record", err)
		}
		return fmt.Errorf("failed to delete deletion record: %w", err)
	}
	s.logger.Info("Deletion record removed", "record_id", id.String(), "unit_id", unitID.String())
	return nil
}

// Summarize totals a set of cancellations. LostValue sums the late and no-show records.
func Summarize(records []*model.CancellationRecord) model.HistorySummary {
	summary := model.HistorySummary{
		TotalValue: decimal.Zero,
		LostValue:  decimal.Zero,
	}
	for _, r := range records {
		summary.Count++
		summary.TotalValue = summary.TotalValue.Add(r.TotalPrice)
		if r.IsLateCancellation {
			summary.LateCount++
		}
		if r.IsNoShow {
			summary.NoShowCount++
		}
		if r.IsLateCancellation || r.IsNoShow {
			summary.LostValue = summary.LostValue.Add(r.TotalPrice)
		}
	}
	return summary
}

func validateRange(r model.DateRange) error {
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return apperrors.BadRequest("to must not be before from", nil)
	}
	return nil
}
