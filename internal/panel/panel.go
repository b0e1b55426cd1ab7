// Package panel holds the per-session admin panel controller: the active
// section, the record open for editing, and the load, edit and delete flows.
package panel

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/aethra/catalog-admin/internal/auth"
	"github.com/aethra/catalog-admin/internal/errors"
	"github.com/aethra/catalog-admin/internal/models"
	"github.com/aethra/catalog-admin/internal/schema"
	"github.com/aethra/catalog-admin/internal/security"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Catalog is the subset of the catalog API the panel consumes
type Catalog interface {
	List(ctx context.Context, kind string) ([]models.Record, error)
	Get(ctx context.Context, kind, id string) (models.Record, error)
	Update(ctx context.Context, kind, id string, fields map[string]string) error
	Delete(ctx context.Context, kind, id string) error
}

// Auditor stores save and delete attempts
type Auditor interface {
	Record(ctx context.Context, entry *models.AuditEntry) error
}

// Confirmer asks the operator to confirm a destructive action
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Actor is the operator driving a panel
type Actor struct {
	ID    uuid.UUID
	Email string
	Role  models.Role
}

// Selection identifies the record open in the edit modal
type Selection struct {
	Kind schema.Kind
	ID   string
}

// DeletePrompt is the confirmation question for deleting a record of kind
func DeletePrompt(kind schema.Kind) string {
	return fmt.Sprintf("Are you sure you want to delete this %s?", kind)
}

// dashboardKinds are counted on the dashboard
var dashboardKinds = []schema.Kind{
	schema.KindUser,
	schema.KindArtist,
	schema.KindAlbum,
	schema.KindTrack,
}

// Panel is the admin panel controller of one operator session.
// All methods are safe for concurrent use; state changes are last-write-wins.
// Forms handed out are copies; the open form is only touched under mu.
type Panel struct {
	catalog Catalog
	audit   Auditor
	actor   Actor
	log     *zap.Logger

	mu        sync.Mutex
	section   schema.Section
	selection *Selection
	form      *FormView
	touched   time.Time
}

// New creates a panel showing the dashboard. audit may be nil.
func New(catalog Catalog, audit Auditor, actor Actor, log *zap.Logger) *Panel {
	if log == nil {
		log = zap.NewNop()
	}
	return &Panel{
		catalog: catalog,
		audit:   audit,
		actor:   actor,
		log:     log.With(zap.String("operator", actor.Email)),
		section: schema.SectionDashboard,
		touched: time.Now(),
	}
}

// Actor returns the operator driving the panel
func (p *Panel) Actor() Actor {
	return p.actor
}

// Section returns the active section
func (p *Panel) Section() schema.Section {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.section
}

// Selection returns the record open for editing, if any
func (p *Panel) Selection() (Selection, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.selection == nil {
		return Selection{}, false
	}
	return *p.selection, true
}

// Form returns a copy of the open edit form, or nil
func (p *Panel) Form() *FormView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.form.clone()
}

// LastUsed returns when the panel last handled an operation
func (p *Panel) LastUsed() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.touched
}

// SwitchSection makes name the active section and loads its data.
// An unknown name leaves the panel unchanged.
func (p *Panel) SwitchSection(ctx context.Context, name string) (*SectionView, error) {
	section, err := schema.ParseSection(name)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.section = section
	p.touch()
	return p.load(ctx, section)
}

// Refresh reloads the active section
func (p *Panel) Refresh(ctx context.Context) (*SectionView, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.touch()
	return p.load(ctx, p.section)
}

// LoadSection fetches the data of a section without changing the active one.
// On failure the returned view carries the error for display.
func (p *Panel) LoadSection(ctx context.Context, section schema.Section) (*SectionView, error) {
	if _, err := schema.ParseSection(string(section)); err != nil {
		return nil, err
	}
	return p.load(ctx, section)
}

func (p *Panel) load(ctx context.Context, section schema.Section) (*SectionView, error) {
	view := &SectionView{Section: section}

	kind, ok := section.Kind()
	if !ok {
		counts, err := p.countAll(ctx)
		view.Counts = counts
		if err != nil {
			p.log.Warn("dashboard load failed", zap.Error(err))
		}
		return view, err
	}

	s, err := schema.Lookup(string(kind))
	if err != nil {
		return nil, err
	}
	view.Schema = s

	records, err := p.catalog.List(ctx, string(kind))
	if err != nil {
		err = fmt.Errorf("load %s: %w", section, err)
		view.fail(err)
		p.log.Warn("section load failed", zap.String("section", string(section)), zap.Error(err))
		return view, err
	}

	view.Rows = make([]Row, 0, len(records))
	for _, r := range records {
		view.Rows = append(view.Rows, newRow(s, r))
	}
	return view, nil
}

// countAll reads the dashboard collections concurrently. Each card is
// filled on its own; the first failure in card order is returned.
func (p *Panel) countAll(ctx context.Context) ([]Count, error) {
	counts := make([]Count, len(dashboardKinds))
	errs := make([]error, len(dashboardKinds))
	var g errgroup.Group

	for i, kind := range dashboardKinds {
		i, kind := i, kind
		g.Go(func() error {
			counts[i] = Count{Kind: kind}
			records, err := p.catalog.List(ctx, string(kind))
			if err != nil {
				errs[i] = fmt.Errorf("count %s: %w", kind.Plural(), err)
				counts[i].Error = errors.Message(err)
				return nil
			}
			counts[i].Value = len(records)
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return counts, err
		}
	}
	return counts, nil
}

// EditItem opens a record in the edit modal. The selection is recorded
// before the fetch and cleared again if the fetch fails.
func (p *Panel) EditItem(ctx context.Context, kind, id string) (*FormView, error) {
	s, err := schema.Lookup(kind)
	if err != nil {
		return nil, err
	}
	if err := security.ValidateRecordID(id); err != nil {
		return nil, errors.NewValidationError("id", err.Error())
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.touch()

	p.selection = &Selection{Kind: s.Kind, ID: id}
	p.form = nil

	record, err := p.catalog.Get(ctx, kind, id)
	if err != nil {
		p.selection = nil
		p.log.Warn("record fetch failed",
			zap.String("kind", kind),
			zap.String("id", id),
			zap.Error(err))
		return nil, err
	}

	p.form = newForm(s, id, record)
	return p.form.clone(), nil
}

// CloseEditor discards the open edit form without saving
func (p *Panel) CloseEditor() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selection = nil
	p.form = nil
}

// SaveChanges sends the fields of the open form to the catalog API and,
// on success, closes the form and reloads the active section. Only the
// form's own fields are sent; other submitted values are ignored.
// On failure the form stays open with the submitted values.
func (p *Panel) SaveChanges(ctx context.Context, submitted url.Values) (*SectionView, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.touch()

	if p.selection == nil || p.form == nil {
		return nil, errors.NewNoSelectionError()
	}
	sel := *p.selection

	p.form.Error = ""

	if err := auth.Require(p.actor.Role, auth.ActionEdit, string(sel.Kind)); err != nil {
		return nil, err
	}

	fields := make(map[string]string, len(p.form.Fields))
	for i := range p.form.Fields {
		f := &p.form.Fields[i]
		f.Value = submitted.Get(f.Name)
		fields[f.Name] = f.Value
	}

	err := p.catalog.Update(ctx, string(sel.Kind), sel.ID, fields)
	p.record(ctx, models.AuditSave, sel, fields, err)
	if err != nil {
		p.form.Error = errors.Message(err)
		p.log.Warn("save failed",
			zap.String("kind", string(sel.Kind)),
			zap.String("id", sel.ID),
			zap.Error(err))
		return nil, err
	}

	p.log.Info("record saved", zap.String("kind", string(sel.Kind)), zap.String("id", sel.ID))
	p.selection = nil
	p.form = nil

	// the save went through; a failed reload only shows in the view
	view, _ := p.load(ctx, p.section)
	return view, nil
}

// DeleteItem asks confirmer and, if confirmed, deletes the record and
// reloads the active section. deleted is false when the operator declined;
// no request is issued then.
func (p *Panel) DeleteItem(ctx context.Context, kind, id string, confirmer Confirmer) (view *SectionView, deleted bool, err error) {
	s, err := schema.Lookup(kind)
	if err != nil {
		return nil, false, err
	}
	if err := security.ValidateRecordID(id); err != nil {
		return nil, false, errors.NewValidationError("id", err.Error())
	}
	if err := auth.Require(p.actor.Role, auth.ActionDelete, kind); err != nil {
		return nil, false, err
	}

	if confirmer == nil || !confirmer.Confirm(DeletePrompt(s.Kind)) {
		return nil, false, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.touch()

	sel := Selection{Kind: s.Kind, ID: id}
	err = p.catalog.Delete(ctx, kind, id)
	p.record(ctx, models.AuditDelete, sel, nil, err)
	if err != nil {
		p.log.Warn("delete failed", zap.String("kind", kind), zap.String("id", id), zap.Error(err))
		return nil, false, err
	}

	p.log.Info("record deleted", zap.String("kind", kind), zap.String("id", id))
	if p.selection != nil && *p.selection == sel {
		p.selection = nil
		p.form = nil
	}

	view, err = p.load(ctx, p.section)
	return view, true, err
}

// record appends an audit entry. A failing audit store is logged, not returned.
func (p *Panel) record(ctx context.Context, action models.AuditAction, sel Selection, fields map[string]string, result error) {
	if p.audit == nil {
		return
	}

	entry := &models.AuditEntry{
		ID:            uuid.New(),
		OperatorID:    p.actor.ID,
		OperatorEmail: p.actor.Email,
		Action:        action,
		Kind:          string(sel.Kind),
		RecordID:      sel.ID,
		Success:       result == nil,
	}
	if fields != nil {
		entry.Payload = models.FromStrings(fields)
	}
	if result != nil {
		entry.Error = errors.Message(result)
	}

	if err := p.audit.Record(context.WithoutCancel(ctx), entry); err != nil {
		p.log.Error("failed to write audit entry", zap.String("action", string(action)), zap.Error(err))
	}
}

// touch must be called with p.mu held
func (p *Panel) touch() {
	p.touched = time.Now()
}
