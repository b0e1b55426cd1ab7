// Package api - First-run setup handler
package api

import (
	"net/http"
	"strings"

	"github.com/aethra/catalog-admin/internal/auth"
	"github.com/aethra/catalog-admin/internal/errors"
	"github.com/aethra/catalog-admin/internal/models"
	"github.com/aethra/catalog-admin/internal/ui"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const minPasswordLength = 8

// SetupPage serves the first-run form. Once an operator exists it redirects to the login.
// GET /setup
func (h *Handler) SetupPage(c *gin.Context) {
	if !h.setupOpen(c) {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	h.html(c, http.StatusOK, ui.PageSetup, &ui.SetupPage{})
}

// DoSetup creates the first admin operator and signs them in
// POST /setup
func (h *Handler) DoSetup(c *gin.Context) {
	ctx := c.Request.Context()

	count, err := h.operators.Count(ctx)
	if err != nil {
		h.htmlError(c, errors.NewInternalError(err))
		return
	}
	if count > 0 {
		h.htmlError(c, errors.NewConflictError("setup"))
		return
	}

	page := &ui.SetupPage{
		Email:       strings.TrimSpace(c.PostForm("email")),
		DisplayName: strings.TrimSpace(c.PostForm("display_name")),
	}
	password := c.PostForm("password")

	switch {
	case page.Email == "" || !strings.Contains(page.Email, "@"):
		page.Error = "A valid email is required"
	case len(password) < minPasswordLength:
		page.Error = "Password must be at least 8 characters"
	case password != c.PostForm("password_confirm"):
		page.Error = "Passwords do not match"
	}
	if page.Error != "" {
		h.html(c, http.StatusBadRequest, ui.PageSetup, page)
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		h.htmlError(c, errors.NewInternalError(err))
		return
	}

	op := &models.Operator{
		ID:           uuid.New(),
		Email:        page.Email,
		PasswordHash: hash,
		DisplayName:  page.DisplayName,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := h.operators.Create(ctx, op); err != nil {
		h.htmlError(c, err)
		return
	}
	h.log.Info("initial admin created", zap.String("operator", op.Email))

	if err := h.startSession(c, op); err != nil {
		h.htmlError(c, errors.NewInternalError(err))
		return
	}
	c.Redirect(http.StatusSeeOther, "/panel")
}
