package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plateadmin/plateadmin/internal/access"
	"github.com/plateadmin/plateadmin/internal/auth"
	"github.com/plateadmin/plateadmin/internal/config"
	"github.com/plateadmin/plateadmin/internal/database"
	"github.com/plateadmin/plateadmin/internal/models"
)

const (
	testSecret     = "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"
	testCookieName = "plateadmin_session"
	testPassword   = "secret123"
)

type fakeQueue struct {
	tasks []*asynq.Task
}

func (q *fakeQueue) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{ID: "task-" + task.Type(), Type: task.Type()}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{
			Addr:        ":0",
			BaseURL:     "http://plates.test",
			CORSOrigins: []string{"http://localhost:5173"},
		},
		Session: config.SessionConfig{CookieName: testCookieName},
	}
}

// newTestServer returns a server on a fresh database that already has a JWT
// secret, as after first setup
func newTestServer(t *testing.T) (*Server, *fakeQueue) {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "server.sqlite"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, db.Create(&models.Config{JWTSecret: testSecret}).Error)

	queue := &fakeQueue{}
	s, err := newServer(testConfig(), db, queue, zerolog.Nop(), "test")
	require.NoError(t, err)

	return s, queue
}

func createUser(t *testing.T, s *Server, email, name, role string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)

	user := &models.User{Email: email, Name: name, PasswordHash: hash, Role: role}
	require.NoError(t, s.db.Create(user).Error)
	return user
}

// sessionCookie mints a session cookie for user the way login does
func sessionCookie(t *testing.T, user *models.User) *http.Cookie {
	t.Helper()

	token, err := issueToken(user)
	require.NoError(t, err)
	return &http.Cookie{Name: testCookieName, Value: token}
}

func doJSON(t *testing.T, s *Server, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func doForm(t *testing.T, s *Server, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func TestHealthCheck(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "online", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/no-such-page", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "does not exist")

	rec = doJSON(t, s, http.MethodGet, "/api/no-such-thing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found", decode[map[string]string](t, rec)["error"])
}

func TestPageGate(t *testing.T) {
	s, _ := newTestServer(t)
	admin := sessionCookie(t, createUser(t, s, "admin@example.com", "Admin", models.RoleAdmin))
	user := sessionCookie(t, createUser(t, s, "user@example.com", "", models.RoleUser))

	tests := []struct {
		name     string
		path     string
		cookie   *http.Cookie
		status   int
		location string
	}{
		{"no session on dashboard", "/dashboard", nil, http.StatusFound, "/"},
		{"no session on profile", "/profile", nil, http.StatusFound, "/"},
		{"garbage session", "/orders", &http.Cookie{Name: testCookieName, Value: "not-a-token"}, http.StatusFound, "/"},
		{"user on staff page", "/customers", user, http.StatusOK, ""},
		{"user on admin page", "/products/new", user, http.StatusFound, "/unauthorized"},
		{"user on admin edit page", "/products/01HZZZ/edit", user, http.StatusFound, "/unauthorized"},
		{"admin on admin page", "/products/new", admin, http.StatusOK, ""},
		{"admin on profile", "/profile", admin, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cookies []*http.Cookie
			if tt.cookie != nil {
				cookies = append(cookies, tt.cookie)
			}

			rec := doJSON(t, s, http.MethodGet, tt.path, nil, cookies...)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
		})
	}
}

func TestPageGate_RolelessSession(t *testing.T) {
	s, _ := newTestServer(t)
	user := createUser(t, s, "nobody@example.com", "", models.RoleUser)

	// A token without a role claim reaches only the any-session pages
	token, err := auth.GenerateToken(user.ID, user.Email, "", "")
	require.NoError(t, err)
	cookie := &http.Cookie{Name: testCookieName, Value: token}

	rec := doJSON(t, s, http.MethodGet, "/profile", nil, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/dashboard", nil, cookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/unauthorized", rec.Header().Get("Location"))

	rec = doJSON(t, s, http.MethodGet, "/api/nav", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	nav := decode[struct {
		DisplayName string    `json:"display_name"`
		Links       []NavLink `json:"links"`
	}](t, rec)
	assert.Empty(t, nav.Links)
	assert.Equal(t, "nobody", nav.DisplayName)
}

func TestPageGate_DeletedUser(t *testing.T) {
	s, _ := newTestServer(t)
	user := createUser(t, s, "gone@example.com", "Gone", models.RoleAdmin)
	cookie := sessionCookie(t, user)

	require.NoError(t, s.db.Delete(user).Error)

	rec := doJSON(t, s, http.MethodGet, "/dashboard", nil, cookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestAPIGate(t *testing.T) {
	s, _ := newTestServer(t)
	user := createUser(t, s, "user@example.com", "User", models.RoleUser)

	rec := doJSON(t, s, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, map[string]string{"error": "Unauthorized", "redirect": "/"}, decode[map[string]string](t, rec))

	rec = doJSON(t, s, http.MethodPost, "/api/products", ProductRequest{Name: "X", SKU: "X-1", Price: 1}, sessionCookie(t, user))
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "/unauthorized", decode[map[string]string](t, rec)["redirect"])

	// API clients may send the token as a bearer header
	token, err := issueToken(user)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	bearer := httptest.NewRecorder()
	s.Handler().ServeHTTP(bearer, req)
	assert.Equal(t, http.StatusOK, bearer.Code)
}

func TestAPIGroupsFollowPageAllowLists(t *testing.T) {
	s, _ := newTestServer(t)
	user := createUser(t, s, "user@example.com", "User", models.RoleUser)

	cookies := map[string]*http.Cookie{}
	for _, role := range []string{models.RoleAdmin, models.RoleUser, ""} {
		token, err := auth.GenerateToken(user.ID, user.Email, user.Name, role)
		require.NoError(t, err)
		cookies[role] = &http.Cookie{Name: testCookieName, Value: token}
	}

	// Each API endpoint answers the same as the page that shares its allow-list
	pairs := []struct{ page, api string }{
		{"/dashboard", "/api/dashboard"},
		{"/category", "/api/categories"},
		{"/products/new", "/api/users"},
		{"/products/:id/edit", "/api/system/info"},
	}
	for _, pair := range pairs {
		route, ok := access.Lookup(pair.page)
		require.True(t, ok, pair.page)

		for role, cookie := range cookies {
			session := &auth.Session{Role: role, Token: cookie.Value}
			want := http.StatusForbidden
			if access.Decide(session, route.RequiredRoles) == access.Allow {
				want = http.StatusOK
			}

			rec := doJSON(t, s, http.MethodGet, pair.api, nil, cookie)
			assert.Equal(t, want, rec.Code, "%s as %q", pair.api, role)
		}
	}

	assert.Equal(t, access.StaffRoles(), mustLookup(t, "/dashboard").RequiredRoles)
	assert.Equal(t, access.AdminRoles(), mustLookup(t, "/products/new").RequiredRoles)
}

func mustLookup(t *testing.T, path string) access.Route {
	t.Helper()

	route, ok := access.Lookup(path)
	require.True(t, ok, path)
	return route
}

func TestNav(t *testing.T) {
	s, _ := newTestServer(t)
	user := createUser(t, s, "priya.s@example.com", "", "user")

	rec := doJSON(t, s, http.MethodGet, "/api/nav", nil, sessionCookie(t, user))
	require.Equal(t, http.StatusOK, rec.Code)

	nav := decode[struct {
		DisplayName string    `json:"display_name"`
		Role        string    `json:"role"`
		Links       []NavLink `json:"links"`
	}](t, rec)

	assert.Equal(t, "priya.s", nav.DisplayName)
	assert.Equal(t, models.RoleUser, nav.Role)
	require.Len(t, nav.Links, 5)
	assert.Equal(t, NavLink{Path: "/dashboard", Title: "Dashboard"}, nav.Links[0])
}

func TestSystemInfo(t *testing.T) {
	s, _ := newTestServer(t)
	admin := createUser(t, s, "admin@example.com", "Admin", models.RoleAdmin)

	rec := doJSON(t, s, http.MethodGet, "/api/system/info", nil, sessionCookie(t, admin))
	require.Equal(t, http.StatusOK, rec.Code)

	info := decode[SystemInfoResponse](t, rec)
	assert.Equal(t, "test", info.Version)
	assert.Equal(t, int64(1), info.Database.Rows["users"])
	assert.Equal(t, "wal", strings.ToLower(info.Database.JournalMode))
	assert.Positive(t, info.Host.CPUCount)
}
