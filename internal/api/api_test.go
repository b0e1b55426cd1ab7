package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aethra/catalog-admin/internal/auth"
	"github.com/aethra/catalog-admin/internal/config"
	"github.com/aethra/catalog-admin/internal/errors"
	"github.com/aethra/catalog-admin/internal/models"
	"github.com/aethra/catalog-admin/internal/ui"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type catalogCall struct {
	Method string
	Kind   string
	ID     string
	Fields map[string]string
}

type fakeCatalog struct {
	mu        sync.Mutex
	calls     []catalogCall
	listErr   error
	updateErr error
}

func (f *fakeCatalog) add(c catalogCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeCatalog) List(_ context.Context, kind string) ([]models.Record, error) {
	f.add(catalogCall{Method: "GET", Kind: kind})
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []models.Record{{"id": "1", "name": "<b>" + kind + "</b>", "username": "ana"}}, nil
}

func (f *fakeCatalog) Get(_ context.Context, kind, id string) (models.Record, error) {
	f.add(catalogCall{Method: "GET", Kind: kind, ID: id})
	return models.Record{"id": id, "username": "ana", "email": "ana@example.com"}, nil
}

func (f *fakeCatalog) Update(_ context.Context, kind, id string, fields map[string]string) error {
	f.add(catalogCall{Method: "PUT", Kind: kind, ID: id, Fields: fields})
	return f.updateErr
}

func (f *fakeCatalog) Delete(_ context.Context, kind, id string) error {
	f.add(catalogCall{Method: "DELETE", Kind: kind, ID: id})
	return nil
}

func (f *fakeCatalog) methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.Method + " " + c.Kind
	}
	return out
}

func (f *fakeCatalog) find(method string) (catalogCall, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c.Method == method {
			return c, true
		}
	}
	return catalogCall{}, false
}

type fakeOperators struct {
	mu  sync.Mutex
	ops map[string]*models.Operator
}

func newFakeOperators() *fakeOperators {
	return &fakeOperators{ops: map[string]*models.Operator{}}
}

func (s *fakeOperators) Count(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.ops)), nil
}

func (s *fakeOperators) FindByEmail(_ context.Context, email string) (*models.Operator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if op, ok := s.ops[strings.ToLower(email)]; ok {
		return op, nil
	}
	return nil, errors.NewNotFoundError("operator")
}

func (s *fakeOperators) FindByID(_ context.Context, id uuid.UUID) (*models.Operator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range s.ops {
		if op.ID == id {
			return op, nil
		}
	}
	return nil, errors.NewNotFoundError("operator")
}

func (s *fakeOperators) Create(_ context.Context, op *models.Operator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(op.Email)
	if _, ok := s.ops[key]; ok {
		return errors.NewConflictError("operator " + key)
	}
	s.ops[key] = op
	return nil
}

func (s *fakeOperators) TouchLogin(context.Context, uuid.UUID) error { return nil }

type fakeAudit struct {
	mu      sync.Mutex
	entries []models.AuditEntry
	query   string
}

func (a *fakeAudit) Record(_ context.Context, e *models.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, *e)
	return nil
}

func (a *fakeAudit) Search(_ context.Context, term string, _ int) ([]models.AuditEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.query = term
	return a.entries, nil
}

type testEnv struct {
	router    *gin.Engine
	handler   *Handler
	catalog   *fakeCatalog
	operators *fakeOperators
	audit     *fakeAudit
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	renderer, err := ui.NewRenderer()
	require.NoError(t, err)

	env := &testEnv{
		catalog:   &fakeCatalog{},
		operators: newFakeOperators(),
		audit:     &fakeAudit{},
	}
	env.handler = NewHandler(Deps{
		Catalog:   env.catalog,
		Operators: env.operators,
		Audit:     env.audit,
		JWT:       auth.NewJWTService("test-secret", time.Hour, nil),
		Renderer:  renderer,
		Log:       zap.NewNop(),
		Version:   "test",
	})
	env.router = SetupRouter(env.handler, config.CORSConfig{AllowedOrigins: []string{"http://localhost"}})
	return env
}

func (e *testEnv) addOperator(t *testing.T, email, password string, role models.Role) *models.Operator {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	op := &models.Operator{ID: uuid.New(), Email: email, PasswordHash: hash, Role: role, IsActive: true}
	require.NoError(t, e.operators.Create(context.Background(), op))
	return op
}

// session signs op in and returns the cookie
func (e *testEnv) session(t *testing.T, role models.Role) *http.Cookie {
	t.Helper()
	op := e.addOperator(t, string(role)+"@example.com", "password123", role)
	tok, err := e.handler.jwt.GenerateToken(op)
	require.NoError(t, err)
	return &http.Cookie{Name: e.handler.cookie.Name, Value: tok.Value}
}

func (e *testEnv) do(method, target string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/api/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), `"version":"test"`)
}

func TestPanelRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/panel/sections/users", nil, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = env.do(http.MethodGet, "/panel", nil, &http.Cookie{Name: "catalog_admin_session", Value: "garbage"})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Empty(t, env.catalog.methods())
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.addOperator(t, "ops@example.com", "password123", models.RoleEditor)

	w := env.do(http.MethodPost, "/login", url.Values{"email": {"ops@example.com"}, "password": {"wrong"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")

	w = env.do(http.MethodPost, "/login", url.Values{"email": {"nobody@example.com"}, "password": {"x"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/login", url.Values{"email": {"ops@example.com"}, "password": {"password123"}}, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/panel", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "catalog_admin_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	w = env.do(http.MethodGet, "/panel", nil, cookies[0])
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/panel/sections/dashboard", w.Header().Get("Location"))
}

func TestLoginRateLimited(t *testing.T) {
	env := newTestEnv(t)
	env.addOperator(t, "ops@example.com", "password123", models.RoleEditor)
	form := url.Values{"email": {"ops@example.com"}, "password": {"nope"}}

	for i := 0; i < maxLoginAttempts; i++ {
		w := env.do(http.MethodPost, "/login", form, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w := env.do(http.MethodPost, "/login", form, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "Too many login attempts")
}

func TestLoginRateLimiter(t *testing.T) {
	rl := NewLoginRateLimiter()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < maxLoginAttempts; i++ {
		ok, remaining, _ := rl.Allow("k")
		require.True(t, ok)
		assert.Equal(t, maxLoginAttempts-1-i, remaining)
	}
	ok, _, wait := rl.Allow("k")
	assert.False(t, ok)
	assert.Equal(t, loginBlock, wait)

	now = now.Add(loginBlock + time.Second)
	ok, _, _ = rl.Allow("k")
	assert.True(t, ok)

	rl.Reset("k")
	ok, remaining, _ := rl.Allow("k")
	assert.True(t, ok)
	assert.Equal(t, maxLoginAttempts-1, remaining)

	now = now.Add(limiterRetention + time.Minute)
	assert.Equal(t, 1, rl.Cleanup())
}

func TestSectionNavigation(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.session(t, models.RoleAdmin)

	w := env.do(http.MethodGet, "/panel/sections/artists", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, 1, strings.Count(body, `class="section active"`))
	assert.Equal(t, 1, strings.Count(body, "nav-link active"))
	assert.Contains(t, body, `id="artists-section" class="section active"`)
	assert.Contains(t, body, "&lt;b&gt;artist&lt;/b&gt;")
	assert.Equal(t, []string{"GET artist"}, env.catalog.methods())

	w = env.do(http.MethodGet, "/panel", nil, cookie)
	assert.Equal(t, "/panel/sections/artists", w.Header().Get("Location"))
}

func TestUnknownSection(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.session(t, models.RoleAdmin)

	w := env.do(http.MethodGet, "/panel/sections/genres", nil, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "unknown section")
	assert.Empty(t, env.catalog.methods())
}

func TestSectionLoadFailureShowsBanner(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.session(t, models.RoleViewer)
	env.catalog.listErr = errors.NewUpstreamError("GET", "/api/admin/users", 500, "catalog unavailable")

	w := env.do(http.MethodGet, "/panel/sections/users", nil, cookie)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), `role="alert">catalog unavailable</div>`)
	assert.NotContains(t, w.Body.String(), `id="users-table"`)
}

func TestEditAndSave(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.session(t, models.RoleEditor)

	w := env.do(http.MethodGet, "/panel/sections/users", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/panel/records/user/1/edit", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="editModal"`)
	assert.Contains(t, w.Body.String(), `name="username" value="ana" required>`)

	form := url.Values{"username": {"ana2"}, "email": {"ana@example.com"}, "displayName": {""}, "role": {"admin"}}
	w = env.do(http.MethodPost, "/panel/save", form, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `id="editModal"`)

	put, ok := env.catalog.find("PUT")
	require.True(t, ok)
	assert.Equal(t, "user", put.Kind)
	assert.Equal(t, "1", put.ID)
	assert.Equal(t, map[string]string{"username": "ana2", "email": "ana@example.com", "displayName": ""}, put.Fields)

	methods := env.catalog.methods()
	assert.Equal(t, "GET user", methods[len(methods)-1])

	require.Len(t, env.audit.entries, 1)
	assert.Equal(t, models.AuditSave, env.audit.entries[0].Action)
}

func TestSaveFailureKeepsModal(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.session(t, models.RoleEditor)
	env.catalog.updateErr = errors.NewUpstreamError("PUT", "/api/admin/users/1", 409, "Username is already taken")

	env.do(http.MethodGet, "/panel/records/user/1/edit", nil, cookie)
	w := env.do(http.MethodPost, "/panel/save", url.Values{"username": {"taken"}}, cookie)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `id="editModal"`)
	assert.Contains(t, body, "Error saving changes: Username is already taken")
	assert.Contains(t, body, `value="taken"`)
}

func TestSaveWithoutSelection(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.session(t, models.RoleEditor)

	w := env.do(http.MethodPost, "/panel/save", url.Values{"name": {"x"}}, cookie)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "no record is open for editing")
	_, ok := env.catalog.find("PUT")
	assert.False(t, ok)
}

func TestEditUnsupportedKind(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.session(t, models.RoleEditor)

	w := env.do(http.MethodGet, "/panel/records/genre/1/edit", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotContains(t, w.Body.String(), `id="editModal"`)
	assert.Contains(t, w.Body.String(), "unsupported record kind")
}

func TestDeleteFlow(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.session(t, models.RoleAdmin)
	env.do(http.MethodGet, "/panel/sections/tracks", nil, cookie)

	w := env.do(http.MethodGet, "/panel/records/track/7/delete", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Are you sure you want to delete this track?")

	w = env.do(http.MethodPost, "/panel/records/track/7/delete", url.Values{}, cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	_, ok := env.catalog.find("DELETE")
	assert.False(t, ok)
	assert.Empty(t, env.audit.entries)

	w = env.do(http.MethodPost, "/panel/records/track/7/delete", url.Values{"confirm": {"yes"}}, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	del, ok := env.catalog.find("DELETE")
	require.True(t, ok)
	assert.Equal(t, "7", del.ID)

	methods := env.catalog.methods()
	assert.Equal(t, "GET track", methods[len(methods)-1])
	require.Len(t, env.audit.entries, 1)
	assert.Equal(t, models.AuditDelete, env.audit.entries[0].Action)
}

func TestViewerCannotDelete(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.session(t, models.RoleViewer)

	w := env.do(http.MethodGet, "/panel/records/track/7/delete", nil, cookie)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), `id="confirmModal"`)

	w = env.do(http.MethodPost, "/panel/records/track/7/delete", url.Values{"confirm": {"yes"}}, cookie)
	assert.Equal(t, http.StatusForbidden, w.Code)
	_, ok := env.catalog.find("DELETE")
	assert.False(t, ok)
}

func TestCloseEditor(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.session(t, models.RoleEditor)

	env.do(http.MethodGet, "/panel/records/user/1/edit", nil, cookie)
	w := env.do(http.MethodPost, "/panel/close", url.Values{}, cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)

	w = env.do(http.MethodPost, "/panel/save", url.Values{"username": {"x"}}, cookie)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuditRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/panel/audit", nil, env.session(t, models.RoleEditor))
	assert.Equal(t, http.StatusForbidden, w.Code)

	env.audit.entries = []models.AuditEntry{{OperatorEmail: "ops@example.com", Action: models.AuditSave, Kind: "user", RecordID: "1", Success: true}}
	w = env.do(http.MethodGet, "/panel/audit?q=user", nil, env.session(t, models.RoleAdmin))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user", env.audit.query)
	assert.Contains(t, w.Body.String(), "ops@example.com")
}

func TestSetupFlow(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/login", nil, nil)
	assert.Contains(t, w.Body.String(), `href="/setup"`)

	w = env.do(http.MethodGet, "/setup", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodPost, "/setup", url.Values{
		"email": {"root@example.com"}, "password": {"password123"}, "password_confirm": {"different1"},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Passwords do not match")

	w = env.do(http.MethodPost, "/setup", url.Values{
		"email": {"root@example.com"}, "password": {"password123"}, "password_confirm": {"password123"},
	}, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	require.Len(t, w.Result().Cookies(), 1)

	op, err := env.operators.FindByEmail(context.Background(), "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, op.Role)

	w = env.do(http.MethodGet, "/setup", nil, nil)
	assert.Equal(t, http.StatusFound, w.Code)

	w = env.do(http.MethodPost, "/setup", url.Values{
		"email": {"other@example.com"}, "password": {"password123"}, "password_confirm": {"password123"},
	}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogoutDropsSession(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.session(t, models.RoleViewer)

	env.do(http.MethodGet, "/panel/sections/users", nil, cookie)
	assert.Equal(t, 1, env.handler.sessions.Len())

	w := env.do(http.MethodPost, "/logout", url.Values{}, cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Equal(t, 0, env.handler.sessions.Len())
}
