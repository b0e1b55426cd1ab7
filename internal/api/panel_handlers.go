// Package api - Admin panel handlers
package api

import (
	"net/http"
	"strings"

	"github.com/aethra/catalog-admin/internal/auth"
	"github.com/aethra/catalog-admin/internal/errors"
	"github.com/aethra/catalog-admin/internal/panel"
	"github.com/aethra/catalog-admin/internal/schema"
	"github.com/aethra/catalog-admin/internal/store"
	"github.com/aethra/catalog-admin/internal/ui"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// renderPanel reloads the active section and renders the panel page.
// decorate may add the edit form, a confirmation or an alert.
func (h *Handler) renderPanel(c *gin.Context, p *panel.Panel, status int, decorate func(*ui.PanelPage)) {
	view, err := p.LoadSection(c.Request.Context(), p.Section())
	if view == nil {
		h.htmlError(c, err)
		return
	}
	h.showView(c, p, view, status, decorate)
}

// showView renders the panel page around an already loaded view
func (h *Handler) showView(c *gin.Context, p *panel.Panel, view *panel.SectionView, status int, decorate func(*ui.PanelPage)) {
	page := ui.NewPanelPage(p.Actor(), view)
	if decorate != nil {
		decorate(page)
	}
	if status == http.StatusOK && view.Failed() {
		status = http.StatusBadGateway
	}
	h.html(c, status, ui.PagePanel, page)
}

func withAlert(prefix string, err error) func(*ui.PanelPage) {
	return func(page *ui.PanelPage) {
		page.Alert = prefix + errors.Message(err)
	}
}

// Index redirects to the active section
// GET /panel
func (h *Handler) Index(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, ui.SectionURL(currentPanel(c).Section()))
}

// Section switches to a section and shows it
// GET /panel/sections/:section
func (h *Handler) Section(c *gin.Context) {
	p := currentPanel(c)

	view, err := p.SwitchSection(c.Request.Context(), c.Param("section"))
	if view == nil {
		h.htmlError(c, err)
		return
	}
	h.showView(c, p, view, statusOf(err), nil)
}

// Refresh reloads the active section
// POST /panel/refresh
func (h *Handler) Refresh(c *gin.Context) {
	p := currentPanel(c)

	view, err := p.Refresh(c.Request.Context())
	if view == nil {
		h.htmlError(c, err)
		return
	}
	h.showView(c, p, view, statusOf(err), nil)
}

// Edit opens a record in the edit modal
// GET /panel/records/:kind/:id/edit
func (h *Handler) Edit(c *gin.Context) {
	p := currentPanel(c)

	form, err := p.EditItem(c.Request.Context(), c.Param("kind"), c.Param("id"))
	if err != nil {
		h.renderPanel(c, p, statusOf(err), withAlert("Error loading record: ", err))
		return
	}
	h.renderPanel(c, p, http.StatusOK, func(page *ui.PanelPage) {
		page.Form = form
	})
}

// Save submits the edit form
// POST /panel/save
func (h *Handler) Save(c *gin.Context) {
	p := currentPanel(c)

	if err := c.Request.ParseForm(); err != nil {
		h.htmlError(c, errors.NewBadRequestError("invalid form submission"))
		return
	}

	view, err := p.SaveChanges(c.Request.Context(), c.Request.PostForm)
	if err != nil {
		status := statusOf(err)
		form := p.Form()
		if form != nil && form.Error != "" {
			h.renderPanel(c, p, status, func(page *ui.PanelPage) {
				page.Form = form
			})
			return
		}
		h.renderPanel(c, p, status, withAlert("Error saving changes: ", err))
		return
	}
	h.showView(c, p, view, http.StatusOK, nil)
}

// Close discards the edit modal
// POST /panel/close
func (h *Handler) Close(c *gin.Context) {
	p := currentPanel(c)
	p.CloseEditor()
	c.Redirect(http.StatusSeeOther, ui.SectionURL(p.Section()))
}

// ConfirmDelete asks for confirmation before deleting a record
// GET /panel/records/:kind/:id/delete
func (h *Handler) ConfirmDelete(c *gin.Context) {
	p := currentPanel(c)

	s, err := schema.Lookup(c.Param("kind"))
	if err == nil {
		err = auth.Require(p.Actor().Role, auth.ActionDelete, string(s.Kind))
	}
	if err != nil {
		h.renderPanel(c, p, statusOf(err), withAlert("Error deleting item: ", err))
		return
	}

	h.renderPanel(c, p, http.StatusOK, func(page *ui.PanelPage) {
		page.Confirm = ui.NewConfirmDialog(s.Kind, c.Param("id"))
	})
}

// Delete deletes a record once the confirmation form was posted
// POST /panel/records/:kind/:id/delete
func (h *Handler) Delete(c *gin.Context) {
	p := currentPanel(c)

	confirmed := panel.ConfirmFunc(func(string) bool {
		return c.PostForm("confirm") == "yes"
	})

	view, deleted, err := p.DeleteItem(c.Request.Context(), c.Param("kind"), c.Param("id"), confirmed)
	switch {
	case deleted:
		h.showView(c, p, view, statusOf(err), nil)
	case err != nil:
		h.renderPanel(c, p, statusOf(err), withAlert("Error deleting item: ", err))
	default:
		c.Redirect(http.StatusSeeOther, ui.SectionURL(p.Section()))
	}
}

// Audit lists recent write attempts
// GET /panel/audit?q=
func (h *Handler) Audit(c *gin.Context) {
	p := currentPanel(c)
	query := strings.TrimSpace(c.Query("q"))

	entries, err := h.audit.Search(c.Request.Context(), query, store.DefaultAuditLimit)
	page := ui.NewAuditPage(p.Actor(), query, entries)
	status := http.StatusOK
	if err != nil {
		page.Error = "Failed to load audit entries"
		status = http.StatusInternalServerError
		h.log.Error("audit search failed", zap.Error(err))
	}
	h.html(c, status, ui.PageAudit, page)
}
