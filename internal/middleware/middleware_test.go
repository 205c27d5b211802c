package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-secret"

func init() { gin.SetMode(gin.TestMode) }

func signToken(t *testing.T, secret string, claims JWTClaims) string {
	t.Helper()
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func validClaims(rol string) JWTClaims {
	return JWTClaims{
		UserID:        uuid.NewString(),
		Username:      "ana",
		Rol:           rol,
		RestauranteID: uuid.NewString(),
		Tipo:          "access",
	}
}

func protectedRouter(roles ...string) *gin.Engine {
	r := gin.New()
	g := r.Group("/", JWTAuth(testSecret))
	if len(roles) > 0 {
		g.Use(RequireRole(roles...))
	}
	g.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, GetClaims(c).Rol)
	})
	return r
}

func do(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := protectedRouter()

	expired := validClaims(RolMesero)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	refresh := validClaims(RolMesero)
	refresh.Tipo = "refresh"

	sinRestaurante := validClaims(RolMesero)
	sinRestaurante.RestauranteID = ""

	cases := []struct {
		name  string
		token string
		code  int
	}{
		{"valid", signToken(t, testSecret, validClaims(RolMesero)), http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong secret", signToken(t, "other", validClaims(RolMesero)), http.StatusUnauthorized},
		{"expired", signToken(t, testSecret, expired), http.StatusUnauthorized},
		{"refresh token", signToken(t, testSecret, refresh), http.StatusUnauthorized},
		{"no tenant", signToken(t, testSecret, sinRestaurante), http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, do(r, tc.token).Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	r := protectedRouter(RolCajero, RolAdministrador)

	w := do(r, signToken(t, testSecret, validClaims(RolCajero)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, RolCajero, w.Body.String())

	w = do(r, signToken(t, testSecret, validClaims(RolMesero)))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestClaimsUUIDs(t *testing.T) {
	c := validClaims(RolMesero)
	assert.NotEqual(t, uuid.Nil, c.UserUUID())
	assert.NotEqual(t, uuid.Nil, c.RestauranteUUID())

	c.UserID = "not-a-uuid"
	assert.Equal(t, uuid.Nil, c.UserUUID())
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	assert.NoError(t, err)
}

func TestRateLimiter_MemoryWindow(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(nil, "test", 2, time.Minute, "slow down"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 3)
	for i := range codes {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes[i] = w.Code
		if w.Code == http.StatusTooManyRequests {
			assert.NotEmpty(t, w.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}

func TestMemoryWindow_Resets(t *testing.T) {
	m := newMemoryWindow()
	now := time.Now()

	n, _ := m.hit("1.2.3.4", time.Second, now)
	assert.Equal(t, 1, n)
	n, _ = m.hit("1.2.3.4", time.Second, now.Add(500*time.Millisecond))
	assert.Equal(t, 2, n)
	n, _ = m.hit("1.2.3.4", time.Second, now.Add(2*time.Second))
	assert.Equal(t, 1, n)
	n, _ = m.hit("5.6.7.8", time.Second, now)
	assert.Equal(t, 1, n)
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler())
	r.GET("/sin-respuesta", func(c *gin.Context) { _ = c.Error(errors.New("pq: relation does not exist")) })
	r.GET("/con-respuesta", func(c *gin.Context) {
		_ = c.Error(errors.New("dial tcp: refused"))
		c.JSON(http.StatusServiceUnavailable, gin.H{"code": "persistencia_no_disponible"})
	})
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	cases := []struct {
		path     string
		status   int
		contains string
	}{
		{"/sin-respuesta", http.StatusInternalServerError, "Error interno del servidor"},
		{"/con-respuesta", http.StatusServiceUnavailable, "persistencia_no_disponible"},
		{"/ok", http.StatusNoContent, ""},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), tc.contains)
			assert.NotContains(t, w.Body.String(), "pq:")
			assert.NotContains(t, w.Body.String(), "dial tcp")
		})
	}
}
