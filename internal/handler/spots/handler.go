package spots

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/barber-api/internal/handler"
	spotsService "github.com/jwalitptl/barber-api/internal/service/spots"
)

type Servicer interface {
	RemainingSpots(ctx context.Context) (*spotsService.RemainingSpots, error)
	CompanyStats(ctx context.Context) (*spotsService.CompanyStats, error)
}

// Handler serves the public remaining-spots and company-stats RPCs.
type Handler struct {
	service Servicer
}

func NewHandler(service Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/spots/remaining", h.RemainingSpots)
	r.GET("/stats/companies", h.CompanyStats)
}

func (h *Handler) RemainingSpots(c *gin.Context) {
	out, err := h.service.RemainingSpots(c.Request.Context())
	if err != nil {
		handler.FailRPC(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CompanyStats(c *gin.Context) {
	out, err := h.service.CompanyStats(c.Request.Context())
	if err != nil {
		handler.FailRPC(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
