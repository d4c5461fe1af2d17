package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jwalitptl/barber-api/internal/model"
	"github.com/jwalitptl/barber-api/internal/repository"
	apperrors "github.com/jwalitptl/barber-api/pkg/errors"
	"github.com/jwalitptl/barber-api/pkg/logger"
	"github.com/jwalitptl/barber-api/pkg/metrics"
)

// State is the outcome of a provisioning cycle.
type State int

const (
	NoSession State = iota
	Provisioning
	Resolved
)

func (s State) String() string {
	switch s {
	case NoSession:
		return "no_session"
	case Provisioning:
		return "provisioning"
	case Resolved:
		return "resolved"
	}
	return "unknown"
}

type lookupState int

const (
	lookupPending lookupState = iota
	lookupFetched
	lookupFailed
)

// maxCycles bounds Resolve when the store keeps reporting duplicate owners.
const maxCycles = 8

var ErrNotResolved = errors.New("tenant not resolved")

// View is a point-in-time copy of a resolver's state.
type View struct {
	State         State          `json:"-"`
	Status        string         `json:"state"`
	Company       *model.Company `json:"company,omitempty"`
	Units         []*model.Unit  `json:"units"`
	CurrentUnitID uuid.UUID      `json:"current_unit_id"`
}

type provisioner struct {
	companyRepo repository.CompanyRepository
	unitRepo    repository.UnitRepository
	companyName string
	unitName    string
	trialPrice  decimal.Decimal
	metrics     *metrics.Metrics
	logger      *logger.Logger
}

func (p *provisioner) failed(stage string) {
	if p.metrics != nil {
		p.metrics.ProvisioningErrors.WithLabelValues(stage).Inc()
	}
}

// Resolver provisions and tracks the company and current unit of one principal.
// Company and unit creation each run at most once at a time; concurrent
// callers wait for the in-flight creation to settle instead of repeating it.
type Resolver struct {
	*provisioner
	principal *model.Principal

	mu              sync.Mutex
	lookup          lookupState
	company         *model.Company
	units           []*model.Unit
	unitsFetched    bool
	creatingCompany bool
	creatingUnit    bool
	currentUnitID   uuid.UUID
	settled         chan struct{}
}

func newResolver(p *provisioner, principal *model.Principal) *Resolver {
	return &Resolver{
		provisioner: p,
		principal:   principal,
		settled:     make(chan struct{}),
	}
}

// notify wakes every waiter. Callers hold r.mu.
func (r *Resolver) notify() {
	close(r.settled)
	r.settled = make(chan struct{})
}

// Sync runs one provisioning cycle.
func (r *Resolver) Sync(ctx context.Context) (State, error) {
	if r.principal == nil {
		return NoSession, nil
	}

	company, err := r.syncCompany(ctx)
	if err != nil || company == nil {
		return Provisioning, err
	}

	if err := r.syncUnits(ctx, company); err != nil {
		return Provisioning, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.units) == 0 {
		return Provisioning, nil
	}
	if r.currentUnitID == uuid.Nil {
		r.currentUnitID = r.units[0].ID
	}
	return Resolved, nil
}

func (r *Resolver) syncCompany(ctx context.Context) (*model.Company, error) {
	r.mu.Lock()
	if r.lookup != lookupFetched {
		r.mu.Unlock()
		found, err := r.companyRepo.GetByOwner(ctx, r.principal.UserID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			r.mu.Lock()
			r.lookup = lookupFailed
			r.mu.Unlock()
			r.failed("lookup")
			r.logger.Error(err, "Company lookup failed", "owner_id", r.principal.UserID.String())
			return nil, fmt.Errorf("failed to look up company: %w", err)
		}

		r.mu.Lock()
		if r.lookup != lookupFetched {
			r.lookup = lookupFetched
			r.company = found
		}
	}

	if r.company != nil || r.creatingCompany {
		company := r.company
		r.mu.Unlock()
		return company, nil
	}
	r.creatingCompany = true
	r.mu.Unlock()

	company, err := r.createCompany(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.creatingCompany = false
	defer r.notify()

	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			r.lookup = lookupPending
			return nil, nil
		}
		r.failed("company")
		r.logger.Error(err, "Company provisioning failed", "owner_id", r.principal.UserID.String())
		return nil, fmt.Errorf("failed to provision company: %w", err)
	}

	r.company = company
	if r.metrics != nil {
		r.metrics.CompaniesProvisioned.Inc()
	}
	r.logger.Info("Company provisioned", "company_id", company.ID.String(), "owner_id", r.principal.UserID.String())
	return company, nil
}

func (r *Resolver) createCompany(ctx context.Context) (*model.Company, error) {
	now := time.Now()
	company := &model.Company{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:         CompanyName(r.principal, r.companyName),
		OwnerID:      r.principal.UserID,
		PlanStatus:   model.PlanStatusTrial,
		MonthlyPrice: r.trialPrice,
	}
	if err := r.companyRepo.Create(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

func (r *Resolver) syncUnits(ctx context.Context, company *model.Company) error {
	r.mu.Lock()
	if !r.unitsFetched {
		r.mu.Unlock()
		units, err := r.unitRepo.ListByCompany(ctx, company.ID)
		if err != nil {
			r.failed("units")
			r.logger.Error(err, "Unit lookup failed", "company_id", company.ID.String())
			return fmt.Errorf("failed to list units: %w", err)
		}

		r.mu.Lock()
		if !r.unitsFetched {
			r.unitsFetched = true
			r.units = units
		}
	}

	if len(r.units) > 0 || r.creatingUnit {
		r.mu.Unlock()
		return nil
	}
	r.creatingUnit = true
	r.mu.Unlock()

	unit := &model.Unit{
		ID:        uuid.New(),
		CompanyID: company.ID,
		Name:      UnitName(company.Name, r.unitName),
		CreatedAt: time.Now(),
	}
	err := r.unitRepo.Create(ctx, unit)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.creatingUnit = false
	defer r.notify()

	if err != nil {
		r.failed("unit")
		r.logger.Error(err, "Unit provisioning failed", "company_id", company.ID.String())
		return fmt.Errorf("failed to provision unit: %w", err)
	}

	r.units = append(r.units, unit)
	if r.metrics != nil {
		r.metrics.UnitsProvisioned.Inc()
	}
	return nil
}

// Resolve repeats Sync until the tenant is resolved, an error occurs or ctx ends.
func (r *Resolver) Resolve(ctx context.Context) (*View, error) {
	for i := 0; i < maxCycles; i++ {
		state, err := r.Sync(ctx)
		if err != nil {
			return nil, err
		}
		if state != Provisioning {
			return r.View(), nil
		}

		r.mu.Lock()
		busy := r.creatingCompany || r.creatingUnit
		settled := r.settled
		r.mu.Unlock()
		if !busy {
			continue
		}

		select {
		case <-settled:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, ErrNotResolved
}

// View returns a copy of the current state without touching the store.
func (r *Resolver) View() *View {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := Provisioning
	switch {
	case r.principal == nil:
		state = NoSession
	case r.company != nil && r.currentUnitID != uuid.Nil:
		state = Resolved
	}

	units := make([]*model.Unit, len(r.units))
	copy(units, r.units)
	return &View{
		State:         state,
		Status:        state.String(),
		Company:       r.company,
		Units:         units,
		CurrentUnitID: r.currentUnitID,
	}
}

// SelectUnit makes unitID the current unit. The unit must belong to the resolved company.
func (r *Resolver) SelectUnit(ctx context.Context, unitID uuid.UUID) error {
	view, err := r.Resolve(ctx)
	if err != nil {
		return err
	}

	for _, u := range view.Units {
		if u.ID == unitID {
			r.mu.Lock()
			r.currentUnitID = unitID
			r.mu.Unlock()
			return nil
		}
	}

	unit, err := r.unitRepo.Get(ctx, unitID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("unit", err)
	}
	if err != nil {
		return fmt.Errorf("failed to get unit: %w", err)
	}
	if unit.CompanyID != view.Company.ID {
		return apperrors.Forbidden("unit does not belong to your company")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.units = append(r.units, unit)
	r.currentUnitID = unitID
	return nil
}

// CreateUnit adds a unit to the resolved company.
func (r *Resolver) CreateUnit(ctx context.Context, name string) (*model.Unit, error) {
	view, err := r.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.BadRequest("unit name is required", nil)
	}

	unit := &model.Unit{
		ID:        uuid.New(),
		CompanyID: view.Company.ID,
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := r.unitRepo.Create(ctx, unit); err != nil {
		return nil, fmt.Errorf("failed to create unit: %w", err)
	}

	r.mu.Lock()
	r.units = append(r.units, unit)
	r.mu.Unlock()
	return unit, nil
}

// Reset drops everything cached so the next Sync starts from the store.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lookup = lookupPending
	r.company = nil
	r.units = nil
	r.unitsFetched = false
	r.currentUnitID = uuid.Nil
	r.notify()
}

// CompanyName picks the first non-empty of business name, full name and fallback.
func CompanyName(p *model.Principal, fallback string) string {
	for _, name := range []string{p.BusinessName, p.FullName} {
		if name = strings.TrimSpace(name); name != "" {
			return name
		}
	}
	return fallback
}

// UnitName names the default unit after its company.
func UnitName(companyName, fallback string) string {
	if name := strings.TrimSpace(companyName); name != "" {
		return name
	}
	return fallback
}
