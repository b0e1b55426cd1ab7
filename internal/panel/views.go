package panel

import (
	"strconv"

	"github.com/aethra/catalog-admin/internal/errors"
	"github.com/aethra/catalog-admin/internal/models"
	"github.com/aethra/catalog-admin/internal/schema"
)

// SectionView is the loaded content of one section
type SectionView struct {
	Section schema.Section
	// Schema is nil for the dashboard
	Schema *schema.EntitySchema
	Rows   []Row
	Counts []Count
	// Error is the failure banner text; Rows and Counts are empty when set
	Error string
}

func (v *SectionView) fail(err error) {
	v.Rows = nil
	v.Counts = nil
	v.Error = errors.Message(err)
}

// Failed reports whether the section could not be loaded
func (v *SectionView) Failed() bool {
	return v.Error != ""
}

// Row is one table line with its action targets
type Row struct {
	Kind  schema.Kind
	ID    string
	Cells []string
}

func newRow(s *schema.EntitySchema, r models.Record) Row {
	cells := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		cells[i] = c.Render(r)
	}
	return Row{Kind: s.Kind, ID: r.ID(), Cells: cells}
}

// Count is one dashboard statistic
type Count struct {
	Kind  schema.Kind
	Value int
	// Error is set when this collection could not be read
	Error string
}

// Label returns the dashboard caption, e.g. "Users"
func (c Count) Label() string {
	return schema.Section(c.Kind.Plural()).Title()
}

// FormView is the edit modal of one record
type FormView struct {
	Kind   schema.Kind
	ID     string
	Title  string
	Fields []FormField
	// Error is the raw failure of the last save attempt
	Error string
}

// FormField is one input prefilled with the record's current value
type FormField struct {
	schema.Field
	Value string
}

func (f *FormView) clone() *FormView {
	if f == nil {
		return nil
	}
	c := *f
	c.Fields = make([]FormField, len(f.Fields))
	for i, field := range f.Fields {
		field.Options = append([]string(nil), field.Options...)
		c.Fields[i] = field
	}
	return &c
}

func newForm(s *schema.EntitySchema, id string, r models.Record) *FormView {
	form := &FormView{
		Kind:   s.Kind,
		ID:     id,
		Title:  "Edit " + s.Name,
		Fields: make([]FormField, len(s.Fields)),
	}
	for i, f := range s.Fields {
		form.Fields[i] = FormField{Field: f, Value: fieldValue(f, r)}
	}
	return form
}

// fieldValue is the initial input value: blank for absent values, and a
// definite true/false for selects over booleans.
func fieldValue(f schema.Field, r models.Record) string {
	if f.Type == schema.InputSelect && isBoolOptions(f.Options) {
		return strconv.FormatBool(r.Bool(f.Name))
	}
	return r.Raw(f.Name)
}

func isBoolOptions(opts []string) bool {
	return len(opts) == 2 && opts[0] == "true" && opts[1] == "false"
}
