package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/blackrosevn/Dev02-Reporting/config"
	"github.com/blackrosevn/Dev02-Reporting/internal/dto"
	"github.com/blackrosevn/Dev02-Reporting/internal/model"
	pkgerrors "github.com/blackrosevn/Dev02-Reporting/pkg/errors"
	"github.com/blackrosevn/Dev02-Reporting/pkg/jwt"
)

type mockBlacklist struct {
	revoked map[string]time.Duration
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.revoked[jti] = ttl
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := m.revoked[jti]
	return ok, nil
}

func setupTestAuthService() (AuthService, *mockRepos, *jwt.Manager, *mockBlacklist) {
	repo, m := newMockRepos()
	jwtMgr := jwt.NewManager(&config.AuthConfig{
		JWTSecret:       "test-secret-for-unit-tests",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	bl := &mockBlacklist{revoked: map[string]time.Duration{}}
	svc := NewAuthService(repo, jwtMgr, bl, zap.NewNop())

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	code := "M10"
	_ = m.users.Create(context.Background(), &model.User{
		UserID:       "u-1",
		Username:     "m10user",
		PasswordHash: string(hash),
		Name:         "May 10 clerk",
		Email:        "clerk@m10.vn",
		Role:         model.RoleMemberUnit,
		CompanyCode:  &code,
		IsActive:     true,
	})
	_ = m.users.Create(context.Background(), &model.User{
		UserID:       "u-2",
		Username:     "retired",
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		IsActive:     false,
	})
	return svc, m, jwtMgr, bl
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, _, jwtMgr, _ := setupTestAuthService()

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "m10user", Password: "password123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.ExpiresIn != 900 {
		t.Errorf("ExpiresIn = %d, want 900", resp.ExpiresIn)
	}
	if resp.User.ID != "u-1" || resp.User.Role != model.RoleMemberUnit {
		t.Errorf("user = %+v", resp.User)
	}

	claims, err := jwtMgr.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.CompanyCode != "M10" {
		t.Errorf("CompanyCode = %q, want M10", claims.CompanyCode)
	}
}

func TestAuthService_Login_Failures(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{"unknown user", "nobody", "password123", ErrInvalidCredentials},
		{"wrong password", "m10user", "wrong", ErrInvalidCredentials},
		{"inactive", "retired", "password123", ErrUserInactive},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(ctx, &dto.LoginRequest{Username: tc.username, Password: tc.password})
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}

	_, err := svc.Login(ctx, &dto.LoginRequest{Username: "nobody", Password: "x"})
	if !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Errorf("bad credentials must be unauthorized, got %v", err)
	}
}

func TestAuthService_Refresh_RotatesAndRevokes(t *testing.T) {
	svc, _, jwtMgr, bl := setupTestAuthService()
	ctx := context.Background()

	login, err := svc.Login(ctx, &dto.LoginRequest{Username: "m10user", Password: "password123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	refreshed, err := svc.Refresh(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Error("refresh token must rotate")
	}

	old, _ := jwtMgr.ParseToken(login.RefreshToken)
	if _, ok := bl.revoked[old.ID]; !ok {
		t.Error("old refresh token must be blacklisted")
	}

	if _, err := svc.Refresh(ctx, login.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("reuse err = %v, want ErrInvalidToken", err)
	}
	if _, err := svc.Refresh(ctx, login.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("access token as refresh err = %v, want ErrInvalidToken", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	svc, _, _, bl := setupTestAuthService()

	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if ttl, ok := bl.revoked["jti-1"]; !ok || ttl <= 0 {
		t.Errorf("jti-1 ttl = %v, ok = %v", ttl, ok)
	}

	noRedis := NewAuthService(nil, nil, nil, zap.NewNop())
	if err := noRedis.Logout(context.Background(), "jti-2", time.Now()); err != nil {
		t.Errorf("Logout without blacklist: %v", err)
	}
}

func TestAuthService_Me(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()

	me, err := svc.Me(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if me.Username != "m10user" {
		t.Errorf("Username = %s", me.Username)
	}
	if _, err := svc.Me(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}
}
