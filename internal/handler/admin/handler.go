package admin

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/barber-api/internal/handler"
	"github.com/jwalitptl/barber-api/internal/model"
	companyService "github.com/jwalitptl/barber-api/internal/service/company"
)

type Servicer interface {
	List(ctx context.Context, filters *model.CompanyFilters) (*companyService.CompanyList, error)
	UpdatePlan(ctx context.Context, id uuid.UUID, req *model.UpdatePlanRequest) (*model.Company, error)
}

// Handler serves the super-admin company screens.
type Handler struct {
	service Servicer
}

func NewHandler(service Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	companies := r.Group("/companies")
	{
		companies.GET("", h.ListCompanies)
		companies.PUT("/:id/plan", h.UpdatePlan)
	}
}

func (h *Handler) ListCompanies(c *gin.Context) {
	var filters model.CompanyFilters
	if err := handler.BindQuery(c, &filters); err != nil {
		handler.Fail(c, err)
		return
	}

	out, err := h.service.List(c.Request.Context(), &filters)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(out))
}

func (h *Handler) UpdatePlan(c *gin.Context) {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		handler.Fail(c, err)
		return
	}
	var req model.UpdatePlanRequest
	if err := handler.BindJSON(c, &req); err != nil {
		handler.Fail(c, err)
		return
	}

	company, err := h.service.UpdatePlan(c.Request.Context(), id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(company))
}
