package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"go-repair-pos/internal/auth"
	"go-repair-pos/internal/models"
)

func newRouter(issuer *auth.Issuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SecureHeaders(false))
	api := r.Group("/api", AuthMiddleware(issuer))
	api.GET("/whoami", func(c *gin.Context) {
		sess, ok := Session(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, sess.Username)
	})
	api.GET("/admin", RequireRole(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func get(r http.Handler, path, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	issuer := auth.NewIssuer("k", time.Hour)
	r := newRouter(issuer)

	staff, err := issuer.GenerateToken(models.User{ID: "2", Username: "staff", Role: models.RoleStaff})
	require.NoError(t, err)
	admin, err := issuer.GenerateToken(models.User{ID: "1", Username: "admin", Role: models.RoleAdmin})
	require.NoError(t, err)

	require.Equal(t, http.StatusUnauthorized, get(r, "/api/whoami", "").Code)
	require.Equal(t, http.StatusUnauthorized, get(r, "/api/whoami", staff).Code)
	require.Equal(t, http.StatusUnauthorized, get(r, "/api/whoami", "Bearer nope").Code)

	w := get(r, "/api/whoami", "Bearer "+staff)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "staff", w.Body.String())

	require.Equal(t, http.StatusForbidden, get(r, "/api/admin", "Bearer "+staff).Code)
	require.Equal(t, http.StatusNoContent, get(r, "/api/admin", "Bearer "+admin).Code)

	other := auth.NewIssuer("different", time.Hour)
	forged, err := other.GenerateToken(models.User{ID: "1", Username: "admin", Role: models.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, get(r, "/api/admin", "Bearer "+forged).Code)
}

func TestActiveUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	issuer := auth.NewIssuer("k", time.Hour)
	accounts := map[string]models.User{
		"1": {ID: "1", Username: "admin", Role: models.RoleAdmin},
		"2": {ID: "2", Username: "staff", Role: models.RoleStaff},
	}
	lookup := func(_ context.Context, id string) (models.User, bool, error) {
		if id == "broken" {
			return models.User{}, false, errors.New("store down")
		}
		u, ok := accounts[id]
		return u, ok, nil
	}

	r := gin.New()
	api := r.Group("/api", AuthMiddleware(issuer), ActiveUser(lookup))
	api.GET("/admin", RequireRole(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	token := func(u models.User) string {
		tok, err := issuer.GenerateToken(u)
		require.NoError(t, err)
		return "Bearer " + tok
	}
	staleAdmin := token(models.User{ID: "2", Username: "staff", Role: models.RoleAdmin})
	promoted := token(models.User{ID: "2", Username: "staff", Role: models.RoleStaff})
	deleted := token(models.User{ID: "9", Username: "gone", Role: models.RoleAdmin})

	require.Equal(t, http.StatusForbidden, get(r, "/api/admin", staleAdmin).Code)
	require.Equal(t, http.StatusUnauthorized, get(r, "/api/admin", deleted).Code)
	require.Equal(t, http.StatusInternalServerError, get(r, "/api/admin", token(models.User{ID: "broken", Role: models.RoleAdmin})).Code)
	require.Equal(t, http.StatusNoContent, get(r, "/api/admin", token(accounts["1"])).Code)

	accounts["2"] = models.User{ID: "2", Username: "staff", Role: models.RoleAdmin}
	require.Equal(t, http.StatusNoContent, get(r, "/api/admin", promoted).Code)
}

func TestSecureHeaders(t *testing.T) {
	w := get(newRouter(auth.NewIssuer("k", time.Hour)), "/api/whoami", "")
	require.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	require.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	require.Empty(t, w.Header().Get("Strict-Transport-Security"))
}
