package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PlanStatus string

const (
	PlanStatusTrial   PlanStatus = "trial"
	PlanStatusActive  PlanStatus = "active"
	PlanStatusOverdue PlanStatus = "overdue"
)

func (s PlanStatus) Valid() bool {
	switch s {
	case PlanStatusTrial, PlanStatusActive, PlanStatusOverdue:
		return true
	}
	return false
}

// Company is the tenant organization. An owner has at most one.
type Company struct {
	Base
	Name         string          `json:"name" db:"name"`
	OwnerID      uuid.UUID       `json:"owner_id" db:"owner_id"`
	PlanStatus   PlanStatus      `json:"plan_status" db:"plan_status"`
	MonthlyPrice decimal.Decimal `json:"monthly_price" db:"monthly_price"`
}

// Unit is an operating location of a company.
type Unit struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CompanyID uuid.UUID `json:"company_id" db:"company_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type CompanyFilters struct {
	Pagination
	PlanStatus PlanStatus `form:"plan_status"`
	Search     string     `form:"search"`
}

type UpdatePlanRequest struct {
	PlanStatus   PlanStatus       `json:"plan_status" binding:"required,oneof=trial active overdue"`
	MonthlyPrice *decimal.Decimal `json:"monthly_price"`
}

type CreateUnitRequest struct {
	Name string `json:"name" binding:"required,max=120"`
}

type SelectUnitRequest struct {
	UnitID uuid.UUID `json:"unit_id" binding:"required"`
}
