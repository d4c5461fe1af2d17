package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/barber-api/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrStatusChanged is returned when a conditional status update finds the row
	// in a different status than expected.
	ErrStatusChanged = errors.New("status changed concurrently")
)

// All repository interfaces in one file
type (
	CompanyRepository interface {
		// Create inserts the company and a companies.INSERT outbox event in one transaction.
		Create(ctx context.Context, company *model.Company) error
		Get(ctx context.Context, id uuid.UUID) (*model.Company, error)
		GetByOwner(ctx context.Context, ownerID uuid.UUID) (*model.Company, error)
		List(ctx context.Context, filters *model.CompanyFilters) ([]*model.Company, int, error)
		Count(ctx context.Context) (int, error)
		UpdatePlan(ctx context.Context, company *model.Company) error
		ListCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error)
	}

	UnitRepository interface {
		Create(ctx context.Context, unit *model.Unit) error
		Get(ctx context.Context, id uuid.UUID) (*model.Unit, error)
		// ListByCompany orders by created_at, id.
		ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*model.Unit, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		// UpdateStatus moves the appointment from one status to another, failing with
		// ErrStatusChanged when it is no longer in from.
		UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.AppointmentStatus) error
		// Cancel records the snapshot and marks the appointment cancelled atomically.
		Cancel(ctx context.Context, record *model.CancellationRecord, from model.AppointmentStatus) error
		// Delete locks the appointment within record.UnitID, fills the snapshot
		// fields of record from the locked row and removes it atomically.
		Delete(ctx context.Context, record *model.DeletionRecord) error
	}

	HistoryRepository interface {
		ListCancellations(ctx context.Context, filters *model.HistoryFilters) ([]*model.CancellationRecord, error)
		ListDeletions(ctx context.Context, filters *model.HistoryFilters) ([]*model.DeletionRecord, error)
		DeleteCancellation(ctx context.Context, unitID, id uuid.UUID) error
		DeleteDeletion(ctx context.Context, unitID, id uuid.UUID) error
	}

	BarberRepository interface {
		Create(ctx context.Context, barber *model.Barber) error
		Get(ctx context.Context, id uuid.UUID) (*model.Barber, error)
		ListByUnit(ctx context.Context, unitID uuid.UUID) ([]*model.Barber, error)
		SetInvite(ctx context.Context, id uuid.UUID, email, tokenHash string, invitedAt time.Time) error
		// Link sets user_id and clears any pending invite token. A non-nil
		// tokenHash must still match the stored hash or ErrNotFound is returned.
		Link(ctx context.Context, id, userID uuid.UUID, tokenHash *string) error
	}

	ServiceRepository interface {
		Create(ctx context.Context, service *model.Service) error
		Get(ctx context.Context, id uuid.UUID) (*model.Service, error)
		ListByUnit(ctx context.Context, unitID uuid.UUID) ([]*model.Service, error)
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
	}

	VisitRepository interface {
		Create(ctx context.Context, visit *model.PageVisit) error
		ListVisitedSince(ctx context.Context, since time.Time) ([]time.Time, error)
	}

	OutboxRepository interface {
		// ProcessPending locks up to limit pending events and calls fn for each
		// inside one transaction. fn's result decides the stored status.
		ProcessPending(ctx context.Context, limit int, fn func(*model.OutboxEvent) error) (processed, failed int, err error)
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
