package barber

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/barber-api/internal/handler"
	"github.com/jwalitptl/barber-api/internal/model"
	apperrors "github.com/jwalitptl/barber-api/pkg/errors"
)

type Servicer interface {
	Invite(ctx context.Context, caller *model.Principal, req *model.BarberInviteRequest) (*model.BarberInviteResponse, error)
	Link(ctx context.Context, caller *model.Principal, req *model.BarberLinkRequest) (*model.BarberLinkResponse, error)
}

// Handler serves the barber-invite and barber-link RPCs.
type Handler struct {
	service Servicer
}

func NewHandler(service Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/barbers/invite", h.Invite)
	r.POST("/barbers/link", h.Link)
}

func (h *Handler) Invite(c *gin.Context) {
	var req model.BarberInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.FailRPC(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	out, err := h.service.Invite(c.Request.Context(), handler.CurrentPrincipal(c), &req)
	if err != nil {
		handler.FailRPC(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) Link(c *gin.Context) {
	var req model.BarberLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.FailRPC(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	out, err := h.service.Link(c.Request.Context(), handler.CurrentPrincipal(c), &req)
	if err != nil {
		handler.FailRPC(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
