package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/barber-api/internal/model"
	"github.com/jwalitptl/barber-api/internal/repository"
	apperrors "github.com/jwalitptl/barber-api/pkg/errors"
	"github.com/jwalitptl/barber-api/pkg/logger"
	"github.com/jwalitptl/barber-api/pkg/metrics"
)

const DefaultCancelSource = "dashboard"

// CancelInput carries who cancelled and why.
type CancelInput struct {
	Source string
	Reason string
	By     *uuid.UUID
}

type Service struct {
	repo          repository.AppointmentRepository
	barbers       repository.BarberRepository
	services      repository.ServiceRepository
	lateThreshold time.Duration
	metrics       *metrics.Metrics
	logger        *logger.Logger
	now           func() time.Time
}

func NewService(
	repo repository.AppointmentRepository,
	barbers repository.BarberRepository,
	services repository.ServiceRepository,
	lateThreshold time.Duration,
	m *metrics.Metrics,
	logger *logger.Logger,
) *Service {
	return &Service{
		repo:          repo,
		barbers:       barbers,
		services:      services,
		lateThreshold: lateThreshold,
		metrics:       m,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *Service) Create(ctx context.Context, unitID uuid.UUID, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, apperrors.BadRequest("end_time must be after start_time", nil)
	}

	barber, err := s.barbers.Get(ctx, req.BarberID)
	if err != nil {
		return nil, notFoundOr(err, "barber")
	}
	if barber.UnitID != unitID {
		return nil, apperrors.BadRequest("barber does not belong to this unit", nil)
	}

	svc, err := s.services.Get(ctx, req.ServiceID)
	if err != nil {
		return nil, notFoundOr(err, "service")
	}
	if svc.UnitID != unitID {
		return nil, apperrors.BadRequest("service does not belong to this unit", nil)
	}

	price := svc.Price
	if req.TotalPrice != nil {
		if req.TotalPrice.IsNegative() {
			return nil, apperrors.BadRequest("total_price cannot be negative", nil)
		}
		price = *req.TotalPrice
	}

	now := s.now()
	apt := &model.Appointment{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UnitID:      unitID,
		ClientName:  strings.TrimSpace(req.ClientName),
		ClientPhone: strings.TrimSpace(req.ClientPhone),
		BarberID:    barber.ID,
		ServiceID:   svc.ID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		TotalPrice:  price,
		Status:      model.AppointmentStatusPending,
		BarberName:  barber.Name,
		ServiceName: svc.Name,
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	return apt, nil
}

// Get loads an appointment and hides it when it belongs to another unit.
func (s *Service) Get(ctx context.Context, unitID, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "appointment")
	}
	if apt.UnitID != unitID {
		return nil, apperrors.NotFound("appointment", nil)
	}
	return apt, nil
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, apperrors.BadRequest("invalid status filter", nil)
	}
	apts, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return apts, nil
}

// Advance moves the appointment one step along pending, confirmed, completed.
func (s *Service) Advance(ctx context.Context, unitID, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.Get(ctx, unitID, id)
	if err != nil {
		return nil, err
	}

	next, ok := NextStatus(apt.Status)
	if !ok {
		return nil, apperrors.Conflict(fmt.Sprintf("appointment is %s and cannot advance", apt.Status), nil)
	}

	if err := s.repo.UpdateStatus(ctx, id, apt.Status, next); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, apperrors.Conflict("appointment status changed, reload and retry", err)
		}
		return nil, fmt.Errorf("failed to advance appointment: %w", err)
	}

	apt.Status = next
	apt.UpdatedAt = s.now()
	return apt, nil
}

// Cancel snapshots the appointment into the cancellation history and marks it cancelled.
func (s *Service) Cancel(ctx context.Context, unitID, id uuid.UUID, in CancelInput) (*model.CancellationRecord, error) {
	apt, err := s.Get(ctx, unitID, id)
	if err != nil {
		return nil, err
	}
	if !Cancellable(apt.Status) {
		return nil, apperrors.Conflict(fmt.Sprintf("appointment is %s and cannot be cancelled", apt.Status), nil)
	}

	at := s.now()
	class := Classify(apt.StartTime, at, s.lateThreshold)
	source := in.Source
	if source == "" {
		source = DefaultCancelSource
	}

	record := &model.CancellationRecord{
		ID:                 uuid.New(),
		AppointmentID:      apt.ID,
		UnitID:             apt.UnitID,
		ClientName:         apt.ClientName,
		ClientPhone:        apt.ClientPhone,
		BarberName:         apt.BarberName,
		ServiceName:        apt.ServiceName,
		TotalPrice:         apt.TotalPrice,
		ScheduledAt:        apt.StartTime,
		CancelledAt:        at,
		MinutesBefore:      class.MinutesBefore,
		IsLateCancellation: class.Late,
		IsNoShow:           class.NoShow,
		CancelledBy:        in.By,
		Source:             source,
		Reason:             strings.TrimSpace(in.Reason),
	}

	if err := s.repo.Cancel(ctx, record, apt.Status); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, apperrors.Conflict("appointment status changed, reload and retry", err)
		}
		return nil, fmt.Errorf("failed to cancel appointment: %w", err)
	}

	if s.metrics != nil {
		s.metrics.Cancellations.WithLabelValues(class.Kind()).Inc()
	}
	s.logger.Info("Appointment cancelled",
		"appointment_id", apt.ID.String(),
		"kind", class.Kind(),
		"minutes_before", class.MinutesBefore,
	)
	return record, nil
}

// Delete snapshots the appointment into the deletion history and removes it.
func (s *Service) Delete(ctx context.Context, unitID, id, by uuid.UUID, reason string) (*model.DeletionRecord, error) {
	if _, err := s.Get(ctx, unitID, id); err != nil {
		return nil, err
	}

	record := &model.DeletionRecord{
		ID:            uuid.New(),
		AppointmentID: id,
		UnitID:        unitID,
		DeletedAt:     s.now(),
		DeletedBy:     by,
		Reason:        strings.TrimSpace(reason),
	}

	if err := s.repo.Delete(ctx, record); err != nil {
		return nil, notFoundOr(err, "appointment")
	}

	s.logger.Info("Appointment deleted", "appointment_id", id.String(), "previous_status", string(record.PreviousStatus))
	return record, nil
}

func notFoundOr(err error, resource string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound(resource, err)
	}
	return fmt.Errorf("failed to load %s: %w", resource, err)
}
