package history

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/barber-api/internal/handler"
	"github.com/jwalitptl/barber-api/internal/model"
	historyService "github.com/jwalitptl/barber-api/internal/service/history"
)

type Servicer interface {
	ListCancellations(ctx context.Context, filters *model.HistoryFilters) ([]*model.CancellationRecord, error)
	ListDeletions(ctx context.Context, filters *model.HistoryFilters) ([]*model.DeletionRecord, error)
	DeleteCancellation(ctx context.Context, unitID, id uuid.UUID) error
	DeleteDeletion(ctx context.Context, unitID, id uuid.UUID) error
}

type Handler struct {
	service Servicer
}

func NewHandler(service Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	history := r.Group("/history")
	{
		history.GET("/cancellations", h.ListCancellations)
		history.GET("/deletions", h.ListDeletions)
		history.DELETE("/cancellations/:id", h.DeleteCancellation)
		history.DELETE("/deletions/:id", h.DeleteDeletion)
	}
}

type cancellationList struct {
	Records []*model.CancellationRecord `json:"records"`
	Summary model.HistorySummary        `json:"summary"`
}

func (h *Handler) filters(c *gin.Context) (*model.HistoryFilters, error) {
	unitID, err := handler.CurrentUnitID(c)
	if err != nil {
		return nil, err
	}
	var f model.HistoryFilters
	if err := handler.BindQuery(c, &f); err != nil {
		return nil, err
	}
	f.UnitID = unitID
	return &f, nil
}

func (h *Handler) ListCancellations(c *gin.Context) {
	f, err := h.filters(c)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	records, err := h.service.ListCancellations(c.Request.Context(), f)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	if records == nil {
		records = []*model.CancellationRecord{}
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(cancellationList{
		Records: records,
		Summary: historyService.Summarize(records),
	}))
}

func (h *Handler) ListDeletions(c *gin.Context) {
	f, err := h.filters(c)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	records, err := h.service.ListDeletions(c.Request.Context(), f)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	if records == nil {
		records = []*model.DeletionRecord{}
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}

func (h *Handler) DeleteCancellation(c *gin.Context) {
	h.remove(c, h.service.DeleteCancellation)
}

func (h *Handler) DeleteDeletion(c *gin.Context) {
	h.remove(c, h.service.DeleteDeletion)
}

func (h *Handler) remove(c *gin.Context, del func(ctx context.Context, unitID, id uuid.UUID) error) {
	unitID, err := handler.CurrentUnitID(c)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	id, err := handler.ParseID(c, "id")
	if err != nil {
		handler.Fail(c, err)
		return
	}
	if err := del(c.Request.Context(), unitID, id); err != nil {
		handler.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
