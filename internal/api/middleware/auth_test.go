package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/blackrosevn/Dev02-Reporting/config"
	"github.com/blackrosevn/Dev02-Reporting/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeBlacklist struct {
	revoked map[string]bool
	err     error
}

func (f *fakeBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return f.revoked[jti], f.err
}

type fakeLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (f *fakeLimiter) CheckRateLimit(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allow, f.err
}

func newManager() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:       "middleware-test-secret-key",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
	})
}

func protected(mgr *jwt.Manager, bl Blacklist, roles ...string) *gin.Engine {
	r := gin.New()
	chain := []gin.HandlerFunc{JWTAuth(mgr, bl, zap.NewNop())}
	if len(roles) > 0 {
		chain = append(chain, RoleAuth(roles...))
	}
	chain = append(chain, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":      c.GetString("user_id"),
			"role":         c.GetString("role"),
			"company_code": c.GetString("company_code"),
		})
	})
	r.GET("/p", chain...)
	return r
}

func get(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/p", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	mgr := newManager()
	access, _ := mgr.GenerateAccessToken("u-1", "member_unit", "M10")
	refresh, _ := mgr.GenerateRefreshToken("u-1", "member_unit", "M10")
	claims, _ := mgr.ParseToken(access)

	cases := []struct {
		name  string
		token string
		bl    Blacklist
		want  int
	}{
		{"missing header", "", nil, http.StatusUnauthorized},
		{"garbage", "not-a-jwt", nil, http.StatusUnauthorized},
		{"refresh token", refresh, nil, http.StatusUnauthorized},
		{"revoked", access, &fakeBlacklist{revoked: map[string]bool{claims.ID: true}}, http.StatusUnauthorized},
		{"blacklist down", access, &fakeBlacklist{err: errors.New("redis down")}, http.StatusOK},
		{"valid", access, &fakeBlacklist{}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := get(protected(mgr, tc.bl), tc.token)
			if w.Code != tc.want {
				t.Errorf("expected %d, got %d", tc.want, w.Code)
			}
		})
	}

	w := get(protected(mgr, nil), access)
	if body := w.Body.String(); body != `{"company_code":"M10","role":"member_unit","user_id":"u-1"}` {
		t.Errorf("context = %s", body)
	}
}

func TestRoleAuth(t *testing.T) {
	mgr := newManager()
	member, _ := mgr.GenerateAccessToken("u-1", "member_unit", "M10")
	admin, _ := mgr.GenerateAccessToken("u-2", "admin", "")

	r := protected(mgr, nil, "admin", "department")
	if w := get(r, member); w.Code != http.StatusForbidden {
		t.Errorf("member: expected 403, got %d", w.Code)
	}
	if w := get(r, admin); w.Code != http.StatusOK {
		t.Errorf("admin: expected 200, got %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	run := func(l Limiter, limit int) int {
		r := gin.New()
		r.POST("/auth/login", RateLimit(l, limit, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("POST", "/auth/login", nil))
		return w.Code
	}

	if got := run(nil, 5); got != http.StatusOK {
		t.Errorf("nil limiter: %d", got)
	}
	if got := run(&fakeLimiter{allow: false}, 0); got != http.StatusOK {
		t.Errorf("disabled limit: %d", got)
	}
	if got := run(&fakeLimiter{err: errors.New("redis down")}, 5); got != http.StatusOK {
		t.Errorf("limiter error must fail open: %d", got)
	}

	denied := &fakeLimiter{allow: false}
	if got := run(denied, 5); got != http.StatusTooManyRequests {
		t.Errorf("over limit: %d", got)
	}
	if len(denied.keys) != 1 || denied.keys[0] != "rate_limit:192.0.2.1:/auth/login" {
		t.Errorf("keys = %v", denied.keys)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(requestIDKey)) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("X-Request-ID") != "abc-123" || w.Body.String() != "abc-123" {
		t.Errorf("request id not propagated: %q", w.Header().Get("X-Request-ID"))
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if len(w.Header().Get("X-Request-ID")) != 36 {
		t.Errorf("generated id = %q", w.Header().Get("X-Request-ID"))
	}
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(8))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest("POST", "/", http.NoBody)
	req.ContentLength = 64
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}
}
