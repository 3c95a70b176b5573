package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"studyhub/internal/apperr"
	"studyhub/internal/domain"
	"studyhub/internal/security"
	"studyhub/internal/tokenstore"
)

func newTestTokenService(store tokenstore.Store) *TokenService {
	jwtMgr := security.NewJWTManager(
		"iss",
		"aud",
		"abcdefghijklmnopqrstuvwxyz123456",
		"abcdefghijklmnopqrstuvwxyz654321",
	)
	return NewTokenService(jwtMgr, store, 15*time.Minute, 24*time.Hour)
}

func activeUser() *domain.User {
	return &domain.User{ID: 42, Email: "test@example.com", Name: "Test", Role: domain.RoleUser, Status: domain.UserActive}
}

func fetcherFor(user *domain.User) func(id uint) (*domain.User, error) {
	return func(id uint) (*domain.User, error) {
		if id != user.ID {
			return nil, errors.New("not found")
		}
		return user, nil
	}
}

func TestIssueThenVerifySucceeds(t *testing.T) {
	ctx := context.Background()
	_, store := newRedisTokenStoreForTest(t)
	svc := newTestTokenService(store)

	pair, err := svc.Issue(ctx, activeUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	access, err := svc.VerifyAccess(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	if access.Subject != "42" || access.Role != "USER" {
		t.Fatalf("unexpected access claims: %+v", access)
	}
	refresh, err := svc.VerifyRefresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("verify refresh: %v", err)
	}
	if refresh.SessionID == "" || refresh.SessionID != access.SessionID {
		t.Fatal("expected both tokens bound to the same session id")
	}
}

func TestVerifyAccessRejectsGarbage(t *testing.T) {
	ctx := context.Background()
	_, store := newRedisTokenStoreForTest(t)
	svc := newTestTokenService(store)

	_, err := svc.VerifyAccess(ctx, "not-a-token")
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Code != "INVALID_TOKEN" {
		t.Fatalf("expected INVALID_TOKEN, got %v", err)
	}
}

func TestLogoutRevokesBothTokens(t *testing.T) {
	ctx := context.Background()
	_, store := newRedisTokenStoreForTest(t)
	svc := newTestTokenService(store)

	pair, err := svc.Issue(ctx, activeUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := svc.Logout(ctx, pair.RefreshToken, pair.AccessToken); err != nil {
		t.Fatalf("logout: %v", err)
	}

	_, err = svc.VerifyAccess(ctx, pair.AccessToken)
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Code != "TOKEN_REVOKED" {
		t.Fatalf("expected TOKEN_REVOKED for access token, got %v", err)
	}
	_, err = svc.VerifyRefresh(ctx, pair.RefreshToken)
	if !errors.As(err, &ae) || ae.Code != "TOKEN_REVOKED" {
		t.Fatalf("expected TOKEN_REVOKED for refresh token, got %v", err)
	}
}

func TestRotatePreventsRefreshReuse(t *testing.T) {
	ctx := context.Background()
	user := activeUser()
	_, store := newRedisTokenStoreForTest(t)
	svc := newTestTokenService(store)

	pair, err := svc.Issue(ctx, user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	rotated, userID, err := svc.Rotate(ctx, pair.RefreshToken, fetcherFor(user))
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if userID != user.ID {
		t.Fatalf("expected user id %d, got %d", user.ID, userID)
	}
	if _, err := svc.VerifyRefresh(ctx, rotated.RefreshToken); err != nil {
		t.Fatalf("verify rotated refresh: %v", err)
	}

	if _, _, err := svc.Rotate(ctx, pair.RefreshToken, fetcherFor(user)); err == nil {
		t.Fatal("expected reuse of rotated refresh token to fail")
	}
}

func TestRotateContinuesSessionLineage(t *testing.T) {
	ctx := context.Background()
	user := activeUser()
	_, store := newRedisTokenStoreForTest(t)
	svc := newTestTokenService(store)

	pair, err := svc.Issue(ctx, user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	before, err := svc.VerifyRefresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	rotated, _, err := svc.Rotate(ctx, pair.RefreshToken, fetcherFor(user))
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	after, err := svc.VerifyRefresh(ctx, rotated.RefreshToken)
	if err != nil {
		t.Fatalf("verify rotated: %v", err)
	}
	if before.SessionID != after.SessionID {
		t.Fatal("expected rotation to continue the session id")
	}
	if before.ID == after.ID {
		t.Fatal("expected rotation to mint a fresh jti")
	}
}

func TestRotateRejectsInactiveUser(t *testing.T) {
	ctx := context.Background()
	user := activeUser()
	_, store := newRedisTokenStoreForTest(t)
	svc := newTestTokenService(store)

	pair, err := svc.Issue(ctx, user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	user.Status = domain.UserInactive
	_, _, err = svc.Rotate(ctx, pair.RefreshToken, fetcherFor(user))
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Code != "UNAUTHORIZED" {
		t.Fatalf("expected UNAUTHORIZED for inactive user, got %v", err)
	}
}

func TestVerifyRefreshFailsAfterSessionExpiry(t *testing.T) {
	ctx := context.Background()
	server, store := newRedisTokenStoreForTest(t)
	svc := newTestTokenService(store)

	pair, err := svc.Issue(ctx, activeUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	server.FastForward(25 * time.Hour)

	_, err = svc.VerifyRefresh(ctx, pair.RefreshToken)
	if err == nil {
		t.Fatal("expected refresh verification to fail once the session record expired")
	}
}
