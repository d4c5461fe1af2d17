package catalog

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/barber-api/internal/handler"
	"github.com/jwalitptl/barber-api/internal/model"
)

type Servicer interface {
	CreateBarber(ctx context.Context, unitID uuid.UUID, req *model.CreateBarberRequest) (*model.Barber, error)
	ListBarbers(ctx context.Context, unitID uuid.UUID) ([]*model.Barber, error)
	CreateService(ctx context.Context, unitID uuid.UUID, req *model.CreateServiceRequest) (*model.Service, error)
	ListServices(ctx context.Context, unitID uuid.UUID) ([]*model.Service, error)
}

// Handler manages the current unit's barbers and services.
type Handler struct {
	service Servicer
}

func NewHandler(service Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/barbers", h.CreateBarber)
	r.GET("/barbers", h.ListBarbers)
	r.POST("/services", h.CreateService)
	r.GET("/services", h.ListServices)
}

func (h *Handler) CreateBarber(c *gin.Context) {
	unitID, err := handler.CurrentUnitID(c)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	var req model.CreateBarberRequest
	if err := handler.BindJSON(c, &req); err != nil {
		handler.Fail(c, err)
		return
	}

	barber, err := h.service.CreateBarber(c.Request.Context(), unitID, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(barber))
}

func (h *Handler) ListBarbers(c *gin.Context) {
	unitID, err := handler.CurrentUnitID(c)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	barbers, err := h.service.ListBarbers(c.Request.Context(), unitID)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(barbers))
}

func (h *Handler) CreateService(c *gin.Context) {
	unitID, err := handler.CurrentUnitID(c)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	var req model.CreateServiceRequest
	if err := handler.BindJSON(c, &req); err != nil {
		handler.Fail(c, err)
		return
	}

	svc, err := h.service.CreateService(c.Request.Context(), unitID, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(svc))
}

func (h *Handler) ListServices(c *gin.Context) {
	unitID, err := handler.CurrentUnitID(c)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	services, err := h.service.ListServices(c.Request.Context(), unitID)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(services))
}
