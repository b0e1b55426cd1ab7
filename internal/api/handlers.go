// Package api contains the HTTP handlers of the catalog admin panel
package api

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/aethra/catalog-admin/internal/auth"
	"github.com/aethra/catalog-admin/internal/errors"
	"github.com/aethra/catalog-admin/internal/models"
	"github.com/aethra/catalog-admin/internal/panel"
	"github.com/aethra/catalog-admin/internal/ui"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OperatorStore is the operator persistence the handlers use
type OperatorStore interface {
	Count(ctx context.Context) (int64, error)
	FindByEmail(ctx context.Context, email string) (*models.Operator, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Operator, error)
	Create(ctx context.Context, op *models.Operator) error
	TouchLogin(ctx context.Context, id uuid.UUID) error
}

// AuditStore records and lists write attempts
type AuditStore interface {
	panel.Auditor
	Search(ctx context.Context, term string, limit int) ([]models.AuditEntry, error)
}

// CookieConfig controls the session cookie
type CookieConfig struct {
	Name   string
	Secure bool
}

// Deps are the collaborators of a Handler
type Deps struct {
	Catalog   panel.Catalog
	Operators OperatorStore
	Audit     AuditStore
	JWT       *auth.JWTService
	Sessions  *panel.Sessions
	Renderer  *ui.Renderer
	Limiter   *LoginRateLimiter
	Cookie    CookieConfig
	Log       *zap.Logger
	Version   string
}

// Handler contains all HTTP handlers
type Handler struct {
	catalog   panel.Catalog
	operators OperatorStore
	audit     AuditStore
	jwt       *auth.JWTService
	sessions  *panel.Sessions
	renderer  *ui.Renderer
	limiter   *LoginRateLimiter
	cookie    CookieConfig
	log       *zap.Logger
	version   string
}

// NewHandler creates a new handler
func NewHandler(d Deps) *Handler {
	h := &Handler{
		catalog:   d.Catalog,
		operators: d.Operators,
		audit:     d.Audit,
		jwt:       d.JWT,
		sessions:  d.Sessions,
		renderer:  d.Renderer,
		limiter:   d.Limiter,
		cookie:    d.Cookie,
		log:       d.Log,
		version:   d.Version,
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	if h.sessions == nil {
		h.sessions = panel.NewSessions(h.log)
	}
	if h.limiter == nil {
		h.limiter = NewLoginRateLimiter()
	}
	if h.cookie.Name == "" {
		h.cookie.Name = "catalog_admin_session"
	}
	if h.version == "" {
		h.version = "dev"
	}
	return h
}

// Health returns the health status
// GET /api/health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "catalog-admin",
		"version":  h.version,
		"sessions": h.sessions.Len(),
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}

// html renders a page template
func (h *Handler) html(c *gin.Context, status int, name string, data any) {
	var b bytes.Buffer
	if err := h.renderer.Render(&b, name, data); err != nil {
		h.log.Error("template rendering failed", zap.String("template", name), zap.Error(err))
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", b.Bytes())
}

// htmlError renders a full-page error for err
func (h *Handler) htmlError(c *gin.Context, err error) {
	status, _ := errors.ToHTTPError(err)
	msg := errors.Message(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		msg = "internal server error"
	}
	h.html(c, status, ui.PageError, &ui.ErrorPage{Status: status, Message: msg})
}

// statusOf maps a handler error to its response status; nil is 200
func statusOf(err error) int {
	status, _ := errors.ToHTTPError(err)
	return status
}
