package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Erick01081/ComisionTecni/config"
	"github.com/Erick01081/ComisionTecni/controllers"
	"github.com/Erick01081/ComisionTecni/models"
	"github.com/Erick01081/ComisionTecni/repository"
	"github.com/Erick01081/ComisionTecni/services"
	"github.com/Erick01081/ComisionTecni/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "routes-test-secret"

var member = models.User{ID: uuid.New(), Email: "ana@example.com", Role: models.RoleMember, IsActive: true}

type oneUser struct{ user models.User }

func (o oneUser) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if id != o.user.ID {
		return nil, repository.ErrNotFound
	}
	u := o.user
	return &u, nil
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	log, _ := logtest.NewNullLogger()
	svc := services.NewDeliveryService(nil, nil)
	return SetupRouter(Dependencies{
		Config: config.Config{
			JWTSecret:   secret,
			CORSOrigins: []string{"http://localhost:3000"},
			SlowRequest: time.Second,
		},
		Log:        log,
		Users:      oneUser{user: member},
		Auth:       controllers.NewAuthController(nil, controllers.AuthSettings{Secret: secret, Expiry: time.Hour}, log),
		Deliveries: controllers.NewDeliveryController(svc, log),
		Reports:    controllers.NewReportController(svc, log),
		Dashboard:  controllers.NewDashboardController(svc, time.UTC, log),
		Digests:    controllers.NewDigestController(nil, log),
	})
}

func serve(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	w := serve(newRouter(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	r := newRouter()
	serve(r, http.MethodGet, "/healthz", "")

	w := serve(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "http_requests_total"))
}

func TestAPIRequiresAuth(t *testing.T) {
	r := newRouter()
	for _, path := range []string{"/api/deliveries", "/api/dashboard", "/api/admin/reports/deliveries", "/api/admin/digests", "/auth/me", "/auth/profile"} {
		w := serve(r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestAdminRoutesRejectMembers(t *testing.T) {
	token, err := utils.GenerateToken(member.ID.String(), member.Email, false, secret, time.Hour)
	require.NoError(t, err)

	w := serve(newRouter(), http.MethodGet, "/api/admin/reports/deliveries?start=2024-01-01&end=2024-01-31", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/deliveries", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()

	newRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
