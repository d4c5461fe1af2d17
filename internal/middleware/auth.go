package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/barber-api/internal/config"
	"github.com/jwalitptl/barber-api/internal/handler"
	"github.com/jwalitptl/barber-api/internal/service/tenant"
	"github.com/jwalitptl/barber-api/pkg/auth"
	apperrors "github.com/jwalitptl/barber-api/pkg/errors"
)

type AuthMiddleware struct {
	jwt    auth.JWTService
	admins config.AdminConfig
}

func NewAuthMiddleware(jwt auth.JWTService, admins config.AdminConfig) *AuthMiddleware {
	return &AuthMiddleware{
		jwt:    jwt,
		admins: admins,
	}
}

// Authenticate verifies the bearer token and stores the principal in the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			handler.Fail(c, apperrors.Unauthorized(nil))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			handler.Fail(c, apperrors.Unauthorized(nil))
			return
		}

		principal, err := m.jwt.ValidateToken(parts[1])
		if err != nil {
			handler.Fail(c, apperrors.Unauthorized(err))
			return
		}

		handler.SetPrincipal(c, principal)
		c.Next()
	}
}

// RequireSuperAdmin lets through only principals listed in admin.super_admin_emails.
func (m *AuthMiddleware) RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := handler.CurrentPrincipal(c)
		if p == nil {
			handler.Fail(c, apperrors.Unauthorized(nil))
			return
		}
		if !m.admins.IsSuperAdmin(p.Email) {
			handler.Fail(c, apperrors.Forbidden("super admin access required"))
			return
		}
		c.Next()
	}
}

// Tenant resolves the caller's company and current unit, provisioning them on first use.
func Tenant(store *tenant.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		resolver := store.For(handler.CurrentPrincipal(c))
		view, err := resolver.Resolve(c.Request.Context())
		if err != nil {
			handler.Fail(c, err)
			return
		}
		if view.State != tenant.Resolved {
			handler.Fail(c, apperrors.Unauthorized(nil))
			return
		}

		handler.SetTenant(c, resolver, view)
		c.Next()
	}
}
