package tenant

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/barber-api/internal/handler"
	"github.com/jwalitptl/barber-api/internal/model"
	apperrors "github.com/jwalitptl/barber-api/pkg/errors"
)

// Handler exposes the caller's resolved tenant. Routes must sit behind the tenant middleware.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	t := r.Group("/tenant")
	{
		t.GET("", h.Get)
		t.GET("/units", h.ListUnits)
		t.POST("/units", h.CreateUnit)
		t.PUT("/unit", h.SelectUnit)
	}
}

func (h *Handler) Get(c *gin.Context) {
	resolver := handler.CurrentResolver(c)
	if resolver == nil {
		handler.Fail(c, apperrors.Unauthorized(nil))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(resolver.View()))
}

func (h *Handler) ListUnits(c *gin.Context) {
	resolver := handler.CurrentResolver(c)
	if resolver == nil {
		handler.Fail(c, apperrors.Unauthorized(nil))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(resolver.View().Units))
}

func (h *Handler) CreateUnit(c *gin.Context) {
	var req model.CreateUnitRequest
	if err := handler.BindJSON(c, &req); err != nil {
		handler.Fail(c, err)
		return
	}

	resolver := handler.CurrentResolver(c)
	if resolver == nil {
		handler.Fail(c, apperrors.Unauthorized(nil))
		return
	}
	unit, err := resolver.CreateUnit(c.Request.Context(), req.Name)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(unit))
}

func (h *Handler) SelectUnit(c *gin.Context) {
	var req model.SelectUnitRequest
	if err := handler.BindJSON(c, &req); err != nil {
		handler.Fail(c, err)
		return
	}

	resolver := handler.CurrentResolver(c)
	if resolver == nil {
		handler.Fail(c, apperrors.Unauthorized(nil))
		return
	}
	if err := resolver.SelectUnit(c.Request.Context(), req.UnitID); err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(resolver.View()))
}
