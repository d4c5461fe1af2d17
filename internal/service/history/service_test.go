package history

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/barber-api/internal/model"
	"github.com/jwalitptl/barber-api/internal/repository"
	apperrors "github.com/jwalitptl/barber-api/pkg/errors"
	"github.com/jwalitptl/barber-api/pkg/logger"
)

type stubRepo struct {
	cancellations []*model.CancellationRecord
	deleted       []uuid.UUID
	lastFilters   *model.HistoryFilters
}

func (s *stubRepo) ListCancellations(_ context.Context, f *model.HistoryFilters) ([]*model.CancellationRecord, error) {
	s.lastFilters = f
	return s.cancellations, nil
}

func (s *stubRepo) ListDeletions(_ context.Context, f *model.HistoryFilters) ([]*model.DeletionRecord, error) {
	s.lastFilters = f
	return nil, nil
}

func (s *stubRepo) DeleteCancellation(_ context.Context, _, id uuid.UUID) error {
	for _, r := range s.cancellations {
		if r.ID == id {
			s.deleted = append(s.deleted, id)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *stubRepo) DeleteDeletion(context.Context, uuid.UUID, uuid.UUID) error {
	return repository.ErrNotFound
}

func record(price string, late, noShow bool) *model.CancellationRecord {
	return &model.CancellationRecord{
		ID:                 uuid.New(),
		TotalPrice:         decimal.RequireFromString(price),
		IsLateCancellation: late,
		IsNoShow:           noShow,
	}
}

func TestSummarize(t *testing.T) {
	records := []*model.CancellationRecord{
		record("45.10", false, false),
		record("30.20", true, false),
		record("0.10", false, true),
		record("0.20", false, true),
	}

	got := Summarize(records)
	assert.Equal(t, 4, got.Count)
	assert.Equal(t, 1, got.LateCount)
	assert.Equal(t, 2, got.NoShowCount)
	assert.Equal(t, "75.60", got.TotalValue.StringFixed(2))
	assert.True(t, got.LostValue.Equal(decimal.RequireFromString("30.5")), got.LostValue.String())
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(nil)
	assert.Zero(t, got.Count)
	assert.True(t, got.TotalValue.IsZero())
	assert.True(t, got.LostValue.IsZero())
}

func TestListRejectsInvertedRange(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, logger.Nop())
	now := time.Now()

	_, err := svc.ListCancellations(context.Background(), &model.HistoryFilters{
		DateRange: model.DateRange{From: now, To: now.Add(-time.Hour)},
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
	assert.Nil(t, repo.lastFilters)
}

func TestListPassesFilters(t *testing.T) {
	repo := &stubRepo{cancellations: []*model.CancellationRecord{record("10", true, false)}}
	svc := NewService(repo, logger.Nop())
	filters := &model.HistoryFilters{UnitID: uuid.New(), LateOnly: true}

	got, err := svc.ListCancellations(context.Background(), filters)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Same(t, filters, repo.lastFilters)
}

func TestDeleteRecords(t *testing.T) {
	r := record("10", false, false)
	repo := &stubRepo{cancellations: []*model.CancellationRecord{r}}
	svc := NewService(repo, logger.Nop())

	require.NoError(t, svc.DeleteCancellation(context.Background(), uuid.New(), r.ID))
	assert.Equal(t, []uuid.UUID{r.ID}, repo.deleted)

	err := svc.DeleteCancellation(context.Background(), uuid.New(), uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	err = svc.DeleteDeletion(context.Background(), uuid.New(), uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}
