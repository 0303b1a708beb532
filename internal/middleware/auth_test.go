package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rusdhi-de/clinic-api/internal/config"
	"github.com/rusdhi-de/clinic-api/internal/email"
	"github.com/rusdhi-de/clinic-api/internal/model"
	"github.com/rusdhi-de/clinic-api/pkg/auth"
	apperrors "github.com/rusdhi-de/clinic-api/pkg/errors"
	"github.com/rusdhi-de/clinic-api/pkg/metrics"
	"github.com/rusdhi-de/clinic-api/pkg/security"
	"github.com/rusdhi-de/clinic-api/pkg/session"

	authService "github.com/rusdhi-de/clinic-api/internal/service/auth"
)

var testMetrics = metrics.NewMetrics("middleware_test")

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func (r *fakePatientRepo) Create(_ context.Context, p *model.Patient) error {
	r.patients[p.ID] = p
	return nil
}

func (r *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, apperrors.NotFound("patient", nil)
	}
	return p, nil
}

func (r *fakePatientRepo) GetByEmail(_ context.Context, email string) (*model.Patient, error) {
	for _, p := range r.patients {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, apperrors.NotFound("patient", nil)
}

func (r *fakePatientRepo) ExistsByEmailOrPhone(_ context.Context, email, phone string) (bool, error) {
	for _, p := range r.patients {
		if p.Email == email || p.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

type fakeAdminRepo struct {
	admins map[uuid.UUID]*model.Admin
}

func (r *fakeAdminRepo) Create(_ context.Context, a *model.Admin) error {
	r.admins[a.ID] = a
	return nil
}

func (r *fakeAdminRepo) Get(_ context.Context, id uuid.UUID) (*model.Admin, error) {
	a, ok := r.admins[id]
	if !ok {
		return nil, apperrors.NotFound("admin", nil)
	}
	return a, nil
}

func (r *fakeAdminRepo) GetByEmail(_ context.Context, email string) (*model.Admin, error) {
	for _, a := range r.admins {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, apperrors.NotFound("admin", nil)
}

type testEnv struct {
	router  *gin.Engine
	authSvc *authService.Service
}

// newTestEnv wires a router with one route per guard level, backed by a real
// token service and an in-memory revocation store.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	svc := authService.NewService(
		&fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)},
		&fakeAdminRepo{admins: make(map[uuid.UUID]*model.Admin)},
		auth.NewJWTService("test-secret", time.Hour),
		hasher,
		session.NewMemoryStore(),
		email.NewService(config.SMTPConfig{}),
		testMetrics,
	)

	mw := NewAuthMiddleware(svc)

	router := gin.New()
	authed := router.Group("/", mw.Authenticate())
	authed.GET("/me", func(c *gin.Context) {
		principal, ok := Principal(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"kind": principal.Kind})
	})
	authed.GET("/admin-only", mw.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	authed.GET("/patient-only", mw.RequirePatient(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return &testEnv{router: router, authSvc: svc}
}

func (e *testEnv) request(t *testing.T, path, token string, asCookie bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		if asCookie {
			req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
		} else {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func token(t *testing.T, kind model.PrincipalKind) string {
	t.Helper()
	jwtSvc := auth.NewJWTService("test-secret", time.Hour)
	tok, err := jwtSvc.GenerateToken(kind, uuid.New())
	require.NoError(t, err)
	return tok
}

func TestAuthenticateMissingToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, "/me", "", false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "unauthenticated")
}

func TestAuthenticateGarbageToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, "/me", "not-a-token", false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateBearerHeader(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, "/me", token(t, model.PrincipalKindPatient), false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), string(model.PrincipalKindPatient))
}

func TestAuthenticateSessionCookie(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, "/me", token(t, model.PrincipalKindPatient), true)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticateRevokedToken(t *testing.T) {
	env := newTestEnv(t)

	tok := token(t, model.PrincipalKindPatient)
	w := env.request(t, "/me", tok, false)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, env.authSvc.Logout(context.Background(), tok))

	w = env.request(t, "/me", tok, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, "/admin-only", token(t, model.PrincipalKindAdmin), false)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, "/admin-only", token(t, model.PrincipalKindPatient), false)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "access denied")
}

func TestRequirePatient(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, "/patient-only", token(t, model.PrincipalKindPatient), false)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, "/patient-only", token(t, model.PrincipalKindAdmin), false)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
