// Package api - Middleware
package api

import (
	"net/http"
	"time"

	"github.com/aethra/catalog-admin/internal/auth"
	"github.com/aethra/catalog-admin/internal/errors"
	"github.com/aethra/catalog-admin/internal/panel"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ctxClaims = "claims"
	ctxPanel  = "panel"
)

// RequestLogger logs every request with zap
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// Recovery turns panics into 500 responses and logs them
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path))
		status, body := errors.ToHTTPError(errors.NewInternalError(nil))
		c.AbortWithStatusJSON(status, body)
	})
}

// SessionMiddleware resolves the session cookie into the operator's panel.
// Requests without a valid session are sent to the login page.
func (h *Handler) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(h.cookie.Name)
		if err != nil || token == "" {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}

		claims, err := h.jwt.ValidateToken(token)
		if err != nil {
			h.log.Debug("rejected session token", zap.Error(err))
			h.clearCookie(c)
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}

		actor := panel.Actor{ID: claims.OperatorID, Email: claims.Email, Role: claims.Role}
		p := h.sessions.Get(claims.SessionID(), claims.ExpiresAt.Time, func() *panel.Panel {
			return panel.New(h.catalog, h.audit, actor, h.log)
		})

		c.Set(ctxClaims, claims)
		c.Set(ctxPanel, p)
		c.Next()
	}
}

// RequireAction rejects operators whose role does not grant action
func (h *Handler) RequireAction(action auth.Action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := c.MustGet(ctxClaims).(*auth.Claims)
		if err := auth.Require(claims.Role, action, resource); err != nil {
			h.htmlError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentPanel(c *gin.Context) *panel.Panel {
	return c.MustGet(ctxPanel).(*panel.Panel)
}
