package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Erick01081/ComisionTecni/models"
	"github.com/Erick01081/ComisionTecni/repository"
	"github.com/Erick01081/ComisionTecni/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type accounts struct {
	mu   sync.Mutex
	byID map[uuid.UUID]models.User
	err  error
}

func (a *accounts) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return nil, a.err
	}
	u, ok := a.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (a *accounts) add(admin bool) uuid.UUID {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.byID == nil {
		a.byID = make(map[uuid.UUID]models.User)
	}
	role := models.RoleMember
	if admin {
		role = models.RoleAdmin
	}
	u := models.User{ID: uuid.New(), Email: "ana@example.com", Role: role, IsActive: true}
	a.byID[u.ID] = u
	return u.ID
}

func (a *accounts) update(id uuid.UUID, fn func(u *models.User)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	u := a.byID[id]
	fn(&u)
	a.byID[id] = u
}

func newRouter(users UserLookup) *gin.Engine {
	r := gin.New()
	r.GET("/me", Auth(testSecret, users), func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": user.ID.String(), "email": user.Email, "admin": user.IsAdmin})
	})
	r.GET("/admin", Auth(testSecret, users), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func token(t *testing.T, id uuid.UUID, admin bool) string {
	t.Helper()
	tok, err := utils.GenerateToken(id.String(), "ana@example.com", admin, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func get(r http.Handler, path, tok string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_BearerHeader(t *testing.T) {
	users := &accounts{}
	id := users.add(false)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, id, false))
	w := httptest.NewRecorder()

	newRouter(users).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"`+id.String()+`","email":"ana@example.com","admin":false}`, w.Body.String())
}

func TestAuth_CookieFallback(t *testing.T) {
	users := &accounts{}
	id := users.add(true)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token(t, id, true)})
	w := httptest.NewRecorder()

	newRouter(users).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id.String())
}

func TestAuth_HeaderWinsOverCookie(t *testing.T) {
	users := &accounts{}
	headerID, cookieID := users.add(false), users.add(false)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, headerID, false))
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token(t, cookieID, false)})
	w := httptest.NewRecorder()

	newRouter(users).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), headerID.String())
	assert.NotContains(t, w.Body.String(), cookieID.String())
}

func TestAuth_Rejects(t *testing.T) {
	otherSecret, err := utils.GenerateToken(uuid.NewString(), "x@example.com", false, "another-secret", time.Hour)
	require.NoError(t, err)
	badSubject, err := utils.GenerateToken("not-a-uuid", "x@example.com", false, testSecret, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "missing", header: "", want: "Authorization required"},
		{name: "wrong scheme", header: "Basic abc", want: "Authorization required"},
		{name: "garbage", header: "Bearer abc.def.ghi", want: "Invalid token"},
		{name: "wrong secret", header: "Bearer " + otherSecret, want: "Invalid token"},
		{name: "bad subject", header: "Bearer " + badSubject, want: "Invalid token claims"},
		{name: "unknown user", header: "Bearer " + token(t, uuid.New(), false), want: "User not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			newRouter(&accounts{}).ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"error":"`+tt.want+`"}`, w.Body.String())
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	users := &accounts{}
	r := newRouter(users)

	w := get(r, "/admin", token(t, users.add(false), false))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Admin access required"}`, w.Body.String())

	w = get(r, "/admin", token(t, users.add(true), true))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAuth_RoleComesFromStoredUser(t *testing.T) {
	users := &accounts{}
	r := newRouter(users)

	// A member holding a token that claims admin stays a member.
	member := users.add(false)
	w := get(r, "/admin", token(t, member, true))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Demoting an admin takes effect before the token expires.
	boss := users.add(true)
	tok := token(t, boss, true)
	require.Equal(t, http.StatusNoContent, get(r, "/admin", tok).Code)

	users.update(boss, func(u *models.User) { u.Role = models.RoleMember })
	w = get(r, "/admin", tok)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = get(r, "/me", tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"admin":false`)
}

func TestAuth_DeactivatedUser(t *testing.T) {
	users := &accounts{}
	r := newRouter(users)
	id := users.add(true)
	tok := token(t, id, true)
	require.Equal(t, http.StatusOK, get(r, "/me", tok).Code)

	users.update(id, func(u *models.User) { u.IsActive = false })

	for _, path := range []string{"/me", "/admin"} {
		w := get(r, path, tok)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.JSONEq(t, `{"error":"Account is disabled"}`, w.Body.String(), path)
	}
}

func TestAuth_LookupError(t *testing.T) {
	users := &accounts{err: errors.New("connection refused")}

	w := get(newRouter(users), "/me", token(t, uuid.New(), false))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Database error"}`, w.Body.String())
}

func TestRequireAdmin_WithoutAuth(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RequireAdmin()(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, c.IsAborted())
}

func TestSetCurrentUser(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := CurrentUser(c)
	assert.False(t, ok)

	want := models.AuthenticatedUser{ID: uuid.New(), Email: "ana@example.com"}
	SetCurrentUser(c, want)
	got, ok := CurrentUser(c)
	require.True(t, ok)
	assert.Equal(t, want, got)
}
