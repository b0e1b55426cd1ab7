// Package schema describes the record kinds the panel manages:
// which columns their tables show and which fields their edit forms carry.
package schema

import (
	"github.com/aethra/catalog-admin/internal/errors"
	"github.com/aethra/catalog-admin/internal/models"
)

// Kind is one of the managed entity types
type Kind string

const (
	KindUser     Kind = "user"
	KindArtist   Kind = "artist"
	KindAlbum    Kind = "album"
	KindTrack    Kind = "track"
	KindPlaylist Kind = "playlist"
)

// Plural returns the collection path segment, e.g. "users"
func (k Kind) Plural() string {
	return string(k) + "s"
}

// Section is a visible panel of the admin UI
type Section string

const (
	SectionDashboard Section = "dashboard"
	SectionUsers     Section = "users"
	SectionArtists   Section = "artists"
	SectionAlbums    Section = "albums"
	SectionTracks    Section = "tracks"
	SectionPlaylists Section = "playlists"
)

// Sections lists all sections in navigation order
var Sections = []Section{
	SectionDashboard,
	SectionUsers,
	SectionArtists,
	SectionAlbums,
	SectionTracks,
	SectionPlaylists,
}

// Title returns the navigation label of a section
func (s Section) Title() string {
	switch s {
	case SectionDashboard:
		return "Dashboard"
	case SectionUsers:
		return "Users"
	case SectionArtists:
		return "Artists"
	case SectionAlbums:
		return "Albums"
	case SectionTracks:
		return "Tracks"
	case SectionPlaylists:
		return "Playlists"
	}
	return string(s)
}

// Kind returns the record kind listed by s; false for the dashboard
func (s Section) Kind() (Kind, bool) {
	for _, e := range registry {
		if e.Section == s {
			return e.Kind, true
		}
	}
	return "", false
}

// ParseSection validates a section name
func ParseSection(name string) (Section, error) {
	for _, s := range Sections {
		if string(s) == name {
			return s, nil
		}
	}
	return "", errors.NewUnknownSectionError(name)
}

// InputType is the HTML control used for a form field
type InputType string

const (
	InputText     InputType = "text"
	InputEmail    InputType = "email"
	InputNumber   InputType = "number"
	InputURL      InputType = "url"
	InputTextarea InputType = "textarea"
	InputSelect   InputType = "select"
)

// Field is one input of an edit form
type Field struct {
	Name     string
	Label    string
	Type     InputType
	Required bool
	Options  []string
}

// Column is one cell of a table row
type Column struct {
	Label  string
	Render func(models.Record) string
}

// EntitySchema is everything the panel needs to list and edit one kind
type EntitySchema struct {
	Kind    Kind
	Section Section
	Name    string
	Columns []Column
	Fields  []Field
}

// FieldNames returns the form field names in display order
func (e *EntitySchema) FieldNames() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Name
	}
	return names
}

// Lookup returns the schema of a kind
func Lookup(kind string) (*EntitySchema, error) {
	for i := range registry {
		if string(registry[i].Kind) == kind {
			return &registry[i], nil
		}
	}
	return nil, errors.NewUnsupportedKindError(kind)
}

// All returns the schemas of every managed kind in navigation order
func All() []EntitySchema {
	out := make([]EntitySchema, len(registry))
	copy(out, registry)
	return out
}

func text(key string) func(models.Record) string {
	return func(r models.Record) string { return r.Text(key) }
}

func flag(key string) func(models.Record) string {
	return func(r models.Record) string { return models.YesNo(r.Bool(key)) }
}

func duration(key string) func(models.Record) string {
	return func(r models.Record) string {
		ms, _ := r.Int64(key)
		return models.FormatDuration(ms)
	}
}

var boolOptions = []string{"true", "false"}

var registry = []EntitySchema{
	{
		Kind:    KindUser,
		Section: SectionUsers,
		Name:    "User",
		Columns: []Column{
			{"ID", text("id")},
			{"Username", text("username")},
			{"Email", text("email")},
			{"Display Name", text("displayName")},
		},
		Fields: []Field{
			{Name: "username", Label: "Username", Type: InputText, Required: true},
			{Name: "email", Label: "Email", Type: InputEmail, Required: true},
			{Name: "displayName", Label: "Display Name", Type: InputText},
		},
	},
	{
		Kind:    KindArtist,
		Section: SectionArtists,
		Name:    "Artist",
		Columns: []Column{
			{"ID", text("id")},
			{"Name", text("name")},
			{"Popularity", text("popularity")},
		},
		Fields: []Field{
			{Name: "name", Label: "Name", Type: InputText, Required: true},
			{Name: "popularity", Label: "Popularity", Type: InputNumber, Required: true},
		},
	},
	{
		Kind:    KindAlbum,
		Section: SectionAlbums,
		Name:    "Album",
		Columns: []Column{
			{"ID", text("id")},
			{"Name", text("name")},
			{"Artist", text("artistName")},
			{"Release Date", text("releaseDate")},
		},
		Fields: []Field{
			{Name: "name", Label: "Name", Type: InputText, Required: true},
			{Name: "albumType", Label: "Album Type", Type: InputSelect, Options: []string{"album", "single", "compilation"}},
			{Name: "releaseDate", Label: "Release Date", Type: InputText},
			{Name: "popularity", Label: "Popularity", Type: InputNumber},
			{Name: "imageUrl", Label: "Image URL", Type: InputURL},
			{Name: "description", Label: "Description", Type: InputTextarea},
		},
	},
	{
		Kind:    KindTrack,
		Section: SectionTracks,
		Name:    "Track",
		Columns: []Column{
			{"ID", text("id")},
			{"Name", text("name")},
			{"Artist", text("artistName")},
			{"Album", text("albumName")},
			{"Duration", duration("durationMs")},
		},
		Fields: []Field{
			{Name: "name", Label: "Name", Type: InputText, Required: true},
			{Name: "durationMs", Label: "Duration (ms)", Type: InputNumber},
			{Name: "popularity", Label: "Popularity", Type: InputNumber},
			{Name: "trackNumber", Label: "Track Number", Type: InputText},
			{Name: "explicit", Label: "Explicit", Type: InputSelect, Options: boolOptions},
			{Name: "isrc", Label: "ISRC", Type: InputText},
			{Name: "imageUrl", Label: "Image URL", Type: InputURL},
		},
	},
	{
		Kind:    KindPlaylist,
		Section: SectionPlaylists,
		Name:    "Playlist",
		Columns: []Column{
			{"ID", text("id")},
			{"Name", text("name")},
			{"Owner", text("ownerName")},
			{"Public", flag("isPublic")},
			{"Collaborative", flag("collaborative")},
		},
		Fields: []Field{
			{Name: "name", Label: "Name", Type: InputText, Required: true},
			{Name: "description", Label: "Description", Type: InputTextarea},
			{Name: "isPublic", Label: "Public", Type: InputSelect, Options: boolOptions},
			{Name: "collaborative", Label: "Collaborative", Type: InputSelect, Options: boolOptions},
			{Name: "imageUrl", Label: "Image URL", Type: InputURL},
		},
	},
}
