package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"humangov/internal/services/health"
	"humangov/internal/shared/config"
	"humangov/internal/shared/server/flash"
)

func TestRouterHealthAndMetrics(t *testing.T) {
	r := NewRouter(RouterDeps{Config: config.Config{Env: "dev", SecretKey: []byte("0123456789abcdef0123456789abcdef")}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "records_created_total")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouterUnknownPathRendersNotFound(t *testing.T) {
	r := NewRouter(RouterDeps{Config: config.Config{Env: "dev", USState: "Texas", SecretKey: []byte("0123456789abcdef0123456789abcdef")}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Page not found.")
	assert.Contains(t, w.Body.String(), "Texas")
}

func TestAddr(t *testing.T) {
	assert.Equal(t, ":5000", Addr(""))
	assert.Equal(t, ":8080", Addr("8080"))
	assert.Equal(t, ":9000", Addr(":9000"))
}

func TestRouterHealthReportsFailedCheck(t *testing.T) {
	svc := health.NewService()
	svc.Register("db", func(context.Context) error { return errors.New("down") })
	r := NewRouter(RouterDeps{Config: config.Config{Env: "dev", SecretKey: []byte("0123456789abcdef0123456789abcdef")}, Health: svc})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"ok":false,"failures":{"db":"down"}}`, w.Body.String())
}

func TestRouterSessionCookieFollowsSecureCookies(t *testing.T) {
	for _, secure := range []bool{false, true} {
		r := NewRouter(RouterDeps{Config: config.Config{Env: "production", SecureCookies: secure, SecretKey: []byte("0123456789abcdef0123456789abcdef")}})
		r.GET("/notice", func(c *gin.Context) {
			flash.Add(c, flash.Success, "Saved.")
			c.Status(http.StatusNoContent)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notice", nil))
		cookies := w.Result().Cookies()
		if len(cookies) != 1 {
			t.Fatalf("expected one session cookie, got %d", len(cookies))
		}
		assert.Equal(t, secure, cookies[0].Secure)
	}
}
