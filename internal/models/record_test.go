package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) Record {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var r Record
	require.NoError(t, dec.Decode(&r))
	return r
}

func TestRecordValues(t *testing.T) {
	r := decode(t, `{"id": 12345678901, "name": "Blue", "displayName": null, "isPublic": true, "durationMs": 65000, "bio": "  "}`)

	assert.Equal(t, "12345678901", r.ID())
	assert.Equal(t, "Blue", r.Text("name"))
	assert.Equal(t, Placeholder, r.Text("displayName"))
	assert.Equal(t, Placeholder, r.Text("bio"))
	assert.Equal(t, Placeholder, r.Text("missing"))
	assert.True(t, r.Bool("isPublic"))
	assert.False(t, r.Bool("collaborative"))

	ms, ok := r.Int64("durationMs")
	assert.True(t, ok)
	assert.Equal(t, int64(65000), ms)

	_, ok = r.Int64("name")
	assert.False(t, ok)
}

func TestJSONBScan(t *testing.T) {
	var j JSONB
	require.NoError(t, j.Scan([]byte(`{"name":"x"}`)))
	assert.Equal(t, "x", j["name"])

	require.NoError(t, j.Scan(`{"email":"a@b.c"}`))
	assert.Equal(t, "a@b.c", j["email"])

	require.NoError(t, j.Scan(nil))
	assert.Nil(t, j)

	assert.Error(t, j.Scan(42))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleViewer.Valid())
	assert.False(t, Role("owner").Valid())
}
