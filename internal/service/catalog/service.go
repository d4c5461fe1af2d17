package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/barber-api/internal/model"
	"github.com/jwalitptl/barber-api/internal/repository"
	apperrors "github.com/jwalitptl/barber-api/pkg/errors"
)

// Service manages a unit's barbers and service catalog.
type Service struct {
	barbers  repository.BarberRepository
	services repository.ServiceRepository
}

func NewService(barbers repository.BarberRepository, services repository.ServiceRepository) *Service {
	return &Service{barbers: barbers, services: services}
}

func (s *Service) CreateBarber(ctx context.Context, unitID uuid.UUID, req *model.CreateBarberRequest) (*model.Barber, error) {
	barber := &model.Barber{
		ID:        uuid.New(),
		UnitID:    unitID,
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		CreatedAt: time.Now(),
	}
	if barber.Name == "" {
		return nil, apperrors.BadRequest("name is required", nil)
	}
	if err := s.barbers.Create(ctx, barber); err != nil {
		return nil, fmt.Errorf("failed to create barber: %w", err)
	}
	return barber, nil
}

func (s *Service) ListBarbers(ctx context.Context, unitID uuid.UUID) ([]*model.Barber, error) {
	barbers, err := s.barbers.ListByUnit(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to list barbers: %w", err)
	}
	return barbers, nil
}

func (s *Service) CreateService(ctx context.Context, unitID uuid.UUID, req *model.CreateServiceRequest) (*model.Service, error) {
	if req.Price.IsNegative() {
		return nil, apperrors.BadRequest("price cannot be negative", nil)
	}

	svc := &model.Service{
		ID:              uuid.New(),
		UnitID:          unitID,
		Name:            strings.TrimSpace(req.Name),
		Price:           req.Price.Round(2),
		DurationMinutes: req.DurationMinutes,
		CreatedAt:       time.Now(),
	}
	if svc.Name == "" {
		return nil, apperrors.BadRequest("name is required", nil)
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return svc, nil
}

func (s *Service) ListServices(ctx context.Context, unitID uuid.UUID) ([]*model.Service, error) {
	services, err := s.services.ListByUnit(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}
