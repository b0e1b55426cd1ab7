package ui

import (
	"github.com/aethra/catalog-admin/internal/auth"
	"github.com/aethra/catalog-admin/internal/models"
	"github.com/aethra/catalog-admin/internal/panel"
	"github.com/aethra/catalog-admin/internal/schema"
)

// Page template names
const (
	PagePanel = "panel.html"
	PageLogin = "login.html"
	PageSetup = "setup.html"
	PageAudit = "audit.html"
	PageError = "error.html"
)

// NavItem is one sidebar link
type NavItem struct {
	Section schema.Section
	Title   string
	URL     string
	Active  bool
}

// Navigation builds the sidebar with active marked. An empty active marks none.
func Navigation(active schema.Section) []NavItem {
	items := make([]NavItem, len(schema.Sections))
	for i, s := range schema.Sections {
		items[i] = NavItem{
			Section: s,
			Title:   s.Title(),
			URL:     SectionURL(s),
			Active:  s == active,
		}
	}
	return items
}

// Chrome is the part shared by every signed-in page
type Chrome struct {
	Title    string
	Operator string
	Role     models.Role
	Nav      []NavItem
	CanEdit  bool
	CanAudit bool
	// AuditActive marks the audit link instead of a section
	AuditActive bool
}

func newChrome(actor panel.Actor, title string, active schema.Section) Chrome {
	return Chrome{
		Title:    title,
		Operator: actor.Email,
		Role:     actor.Role,
		Nav:      Navigation(active),
		CanEdit:  auth.Can(actor.Role, auth.ActionEdit),
		CanAudit: auth.Can(actor.Role, auth.ActionAudit),
	}
}

// SectionPanel is one section container; only the active one is visible and filled
type SectionPanel struct {
	Section   schema.Section
	Title     string
	Active    bool
	View      *panel.SectionView
	CanEdit   bool
	CanDelete bool
}

// ConfirmDialog asks before deleting a record
type ConfirmDialog struct {
	Kind   schema.Kind
	ID     string
	Prompt string
}

// PanelPage is the main admin page
type PanelPage struct {
	Chrome
	Panels    []SectionPanel
	CanDelete bool
	Form      *panel.FormView
	Confirm   *ConfirmDialog
	// Alert is a failed write, shown above the active section
	Alert string
}

// NewPanelPage lays out the sections with view filling the active one
func NewPanelPage(actor panel.Actor, view *panel.SectionView) *PanelPage {
	active := view.Section
	page := &PanelPage{
		Chrome:    newChrome(actor, active.Title(), active),
		Panels:    make([]SectionPanel, len(schema.Sections)),
		CanDelete: auth.Can(actor.Role, auth.ActionDelete),
	}
	for i, s := range schema.Sections {
		page.Panels[i] = SectionPanel{Section: s, Title: s.Title(), Active: s == active}
		if s == active {
			page.Panels[i].View = view
			page.Panels[i].CanEdit = page.CanEdit
			page.Panels[i].CanDelete = page.CanDelete
		}
	}
	return page
}

// NewConfirmDialog builds the delete confirmation of a record
func NewConfirmDialog(kind schema.Kind, id string) *ConfirmDialog {
	return &ConfirmDialog{Kind: kind, ID: id, Prompt: panel.DeletePrompt(kind)}
}

// AuditPage lists audit entries
type AuditPage struct {
	Chrome
	Query   string
	Entries []models.AuditEntry
	Error   string
}

// NewAuditPage builds the audit listing
func NewAuditPage(actor panel.Actor, query string, entries []models.AuditEntry) *AuditPage {
	chrome := newChrome(actor, "Audit Log", "")
	chrome.AuditActive = true
	return &AuditPage{Chrome: chrome, Query: query, Entries: entries}
}

// LoginPage is the sign-in form
type LoginPage struct {
	Email string
	Error string
	// SetupOpen links to the first-run form while no operator exists
	SetupOpen bool
}

// SetupPage is the first-run form creating the initial admin
type SetupPage struct {
	Email       string
	DisplayName string
	Error       string
}

// ErrorPage is a full-page failure
type ErrorPage struct {
	Status  int
	Message string
}
