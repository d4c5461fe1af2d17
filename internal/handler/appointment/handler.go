package appointment

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/barber-api/internal/handler"
	"github.com/jwalitptl/barber-api/internal/model"
	appointmentService "github.com/jwalitptl/barber-api/internal/service/appointment"
)

type Servicer interface {
	Create(ctx context.Context, unitID uuid.UUID, req *model.CreateAppointmentRequest) (*model.Appointment, error)
	Get(ctx context.Context, unitID, id uuid.UUID) (*model.Appointment, error)
	List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
	Advance(ctx context.Context, unitID, id uuid.UUID) (*model.Appointment, error)
	Cancel(ctx context.Context, unitID, id uuid.UUID, in appointmentService.CancelInput) (*model.CancellationRecord, error)
	Delete(ctx context.Context, unitID, id, by uuid.UUID, reason string) (*model.DeletionRecord, error)
}

type Handler struct {
	service Servicer
}

func NewHandler(service Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.Create)
		appointments.GET("", h.List)
		appointments.GET("/:id", h.Get)
		appointments.POST("/:id/advance", h.Advance)
		appointments.POST("/:id/cancel", h.Cancel)
		appointments.DELETE("/:id", h.Delete)
	}
}

type listQuery struct {
	BarberID string `form:"barber_id" binding:"omitempty,uuid"`
	Status   string `form:"status"`
	model.DateRange
}

func (h *Handler) Create(c *gin.Context) {
	unitID, err := handler.CurrentUnitID(c)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	var req model.CreateAppointmentRequest
	if err := handler.BindJSON(c, &req); err != nil {
		handler.Fail(c, err)
		return
	}

	apt, err := h.service.Create(c.Request.Context(), unitID, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(apt))
}

func (h *Handler) List(c *gin.Context) {
	unitID, err := handler.CurrentUnitID(c)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	var q listQuery
	if err := handler.BindQuery(c, &q); err != nil {
		handler.Fail(c, err)
		return
	}

	filters := &model.AppointmentFilters{
		UnitID:    unitID,
		Status:    model.AppointmentStatus(q.Status),
		DateRange: q.DateRange,
	}
	if q.BarberID != "" {
		filters.BarberID = uuid.MustParse(q.BarberID)
	}

	apts, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(apts))
}

func (h *Handler) Get(c *gin.Context) {
	unitID, id, ok := scope(c)
	if !ok {
		return
	}

	apt, err := h.service.Get(c.Request.Context(), unitID, id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

func (h *Handler) Advance(c *gin.Context) {
	unitID, id, ok := scope(c)
	if !ok {
		return
	}

	apt, err := h.service.Advance(c.Request.Context(), unitID, id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

func (h *Handler) Cancel(c *gin.Context) {
	unitID, id, ok := scope(c)
	if !ok {
		return
	}

	var req model.CancelAppointmentRequest
	if c.Request.ContentLength != 0 {
		if err := handler.BindJSON(c, &req); err != nil {
			handler.Fail(c, err)
			return
		}
	}

	in := appointmentService.CancelInput{Source: req.Source, Reason: req.Reason}
	if p := handler.CurrentPrincipal(c); p != nil {
		by := p.UserID
		in.By = &by
	}

	record, err := h.service.Cancel(c.Request.Context(), unitID, id, in)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(record))
}

func (h *Handler) Delete(c *gin.Context) {
	unitID, id, ok := scope(c)
	if !ok {
		return
	}

	var req model.DeleteAppointmentRequest
	if c.Request.ContentLength != 0 {
		if err := handler.BindJSON(c, &req); err != nil {
			handler.Fail(c, err)
			return
		}
	}

	var by uuid.UUID
	if p := handler.CurrentPrincipal(c); p != nil {
		by = p.UserID
	}

	record, err := h.service.Delete(c.Request.Context(), unitID, id, by, req.Reason)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(record))
}

// scope reads the current unit and the :id parameter, failing the request when either is missing.
func scope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	unitID, err := handler.CurrentUnitID(c)
	if err != nil {
		handler.Fail(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	id, err := handler.ParseID(c, "id")
	if err != nil {
		handler.Fail(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	return unitID, id, true
}
