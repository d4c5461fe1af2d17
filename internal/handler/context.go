package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/barber-api/internal/model"
	"github.com/jwalitptl/barber-api/internal/service/tenant"
	apperrors "github.com/jwalitptl/barber-api/pkg/errors"
)

const (
	ContextRequestID = "request_id"
	contextPrincipal = "principal"
	contextResolver  = "tenant_resolver"
	contextTenant    = "tenant_view"
)

func SetPrincipal(c *gin.Context, p *model.Principal) {
	c.Set(contextPrincipal, p)
}

// CurrentPrincipal returns the authenticated caller, or nil.
func CurrentPrincipal(c *gin.Context) *model.Principal {
	if v, ok := c.Get(contextPrincipal); ok {
		if p, ok := v.(*model.Principal); ok {
			return p
		}
	}
	return nil
}

func SetTenant(c *gin.Context, r *tenant.Resolver, view *tenant.View) {
	c.Set(contextResolver, r)
	c.Set(contextTenant, view)
}

// CurrentResolver returns the caller's tenant resolver, or nil.
func CurrentResolver(c *gin.Context) *tenant.Resolver {
	if v, ok := c.Get(contextResolver); ok {
		return v.(*tenant.Resolver)
	}
	return nil
}

// CurrentUnitID returns the unit selected for this request.
func CurrentUnitID(c *gin.Context) (uuid.UUID, error) {
	if v, ok := c.Get(contextTenant); ok {
		if view := v.(*tenant.View); view.CurrentUnitID != uuid.Nil {
			return view.CurrentUnitID, nil
		}
	}
	return uuid.Nil, apperrors.Forbidden("no unit selected")
}

// ParseID reads a UUID path parameter.
func ParseID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperrors.BadRequest("invalid "+name, err)
	}
	return id, nil
}
