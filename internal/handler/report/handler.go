package report

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/barber-api/internal/handler"
	"github.com/jwalitptl/barber-api/internal/model"
	apperrors "github.com/jwalitptl/barber-api/pkg/errors"
)

type Servicer interface {
	TrackVisit(ctx context.Context, req *model.TrackVisitRequest, userAgent string)
	Report(ctx context.Context, days int) (*model.SignupReport, error)
}

type Handler struct {
	service Servicer
}

func NewHandler(service Servicer) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes mounts visit tracking.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.POST("/visits", h.TrackVisit)
}

// RegisterRoutes mounts the signup report; r is expected to be admin-only.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/reports/signups", h.Signups)
}

// TrackVisit always answers 204; malformed or failed visits are dropped.
func (h *Handler) TrackVisit(c *gin.Context) {
	var req model.TrackVisitRequest
	if err := c.ShouldBindJSON(&req); err == nil {
		h.service.TrackVisit(c.Request.Context(), &req, c.Request.UserAgent())
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Signups(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			handler.Fail(c, apperrors.BadRequest("days must be a number", err))
			return
		}
		days = n
	}

	report, err := h.service.Report(c.Request.Context(), days)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(report))
}
