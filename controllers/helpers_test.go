package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Erick01081/ComisionTecni/middleware"
	"github.com/Erick01081/ComisionTecni/models"
	"github.com/Erick01081/ComisionTecni/repository"
	"github.com/Erick01081/ComisionTecni/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

const testSecret = "controller-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type memoryDeliveries struct {
	mu   sync.Mutex
	rows map[uuid.UUID]models.Delivery
}

func newMemoryDeliveries(rows ...models.Delivery) *memoryDeliveries {
	s := &memoryDeliveries{rows: make(map[uuid.UUID]models.Delivery)}
	for _, r := range rows {
		s.rows[r.ID] = r
	}
	return s
}

func (s *memoryDeliveries) Create(_ context.Context, d *models.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[d.ID] = *d
	return nil
}

func (s *memoryDeliveries) FindByID(_ context.Context, id uuid.UUID) (*models.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (s *memoryDeliveries) Update(_ context.Context, d *models.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.rows[d.ID]; !ok || existing.OwnerID != d.OwnerID {
		return repository.ErrNotFound
	}
	s.rows[d.ID] = *d
	return nil
}

func (s *memoryDeliveries) Delete(_ context.Context, id, ownerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.rows[id]; !ok || existing.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *memoryDeliveries) ListByOwner(_ context.Context, ownerID uuid.UUID, start, end utils.Date) ([]models.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Delivery
	for _, r := range s.rows {
		if r.OwnerID != ownerID {
			continue
		}
		if (start != "" && r.ServiceDate < start) || (end != "" && r.ServiceDate > end) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *memoryDeliveries) ListInRange(_ context.Context, start, end utils.Date) ([]models.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Delivery
	for _, r := range s.rows {
		if r.ServiceDate >= start && r.ServiceDate <= end {
			out = append(out, r)
		}
	}
	return out, nil
}

type memoryUsers struct {
	mu     sync.Mutex
	byID   map[uuid.UUID]*models.User
	logins int
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: make(map[uuid.UUID]*models.User)}
}

func (s *memoryUsers) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	if err := u.BeforeCreate(nil); err != nil {
		return err
	}
	stored := *u
	s.byID[u.ID] = &stored
	return nil
}

func (s *memoryUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if u.Email == strings.ToLower(strings.TrimSpace(email)) {
			found := *u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memoryUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := *u
	return &found, nil
}

func (s *memoryUsers) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, id := range ids {
		if u, ok := s.byID[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *memoryUsers) TouchLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.byID[id]; ok {
		u.LastLogin = &at
		s.logins++
	}
	return nil
}

func (s *memoryUsers) UpdateProfile(_ context.Context, id uuid.UUID, name, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Name = name
	if passwordHash != "" {
		u.Password = passwordHash
	}
	return nil
}

// tokenHolders backs the auth middleware for identities minted by bearer.
var tokenHolders = newMemoryUsers()

// newTestRouter mounts handlers behind the real auth middleware.
func newTestRouter(register func(r *gin.Engine, auth gin.HandlerFunc)) *gin.Engine {
	return newTestRouterWith(tokenHolders, register)
}

func newTestRouterWith(users middleware.UserLookup, register func(r *gin.Engine, auth gin.HandlerFunc)) *gin.Engine {
	r := gin.New()
	register(r, middleware.Auth(testSecret, users))
	return r
}

// bearer issues a token for user and stores a matching active account.
func bearer(t *testing.T, user models.AuthenticatedUser) string {
	t.Helper()
	role := models.RoleMember
	if user.IsAdmin {
		role = models.RoleAdmin
	}
	tokenHolders.mu.Lock()
	tokenHolders.byID[user.ID] = &models.User{ID: user.ID, Email: user.Email, Role: role, IsActive: true}
	tokenHolders.mu.Unlock()

	token, err := utils.GenerateToken(user.ID.String(), user.Email, user.IsAdmin, testSecret, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(t *testing.T, r http.Handler, method, path, auth string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func quietLogger() *logrus.Logger {
	log, _ := logtest.NewNullLogger()
	return log
}
