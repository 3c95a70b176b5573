package service

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"studyhub/internal/apperr"
	"studyhub/internal/domain"
	"studyhub/internal/observability"
	"studyhub/internal/security"
	"studyhub/internal/tokenstore"
)

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenService mints, verifies, rotates and revokes access/refresh pairs.
// Refresh lineage per session id: issued, then active until rotated or
// revoked; rotation blacklists the old jti for its remaining lifetime so a
// rotated or logged-out token can never be replayed.
type TokenService struct {
	jwtMgr     *security.JWTManager
	store      tokenstore.Store
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(jwtMgr *security.JWTManager, store tokenstore.Store, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{jwtMgr: jwtMgr, store: store, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (s *TokenService) Issue(ctx context.Context, user *domain.User) (*TokenPair, error) {
	return s.mint(ctx, user, uuid.NewString())
}

func (s *TokenService) VerifyAccess(ctx context.Context, raw string) (*security.Claims, error) {
	claims, err := s.jwtMgr.ParseAccessToken(raw)
	if err != nil {
		observability.RecordTokenValidation(ctx, "access", "invalid")
		return nil, apperr.ErrInvalidToken
	}
	revoked, err := s.store.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		observability.RecordTokenValidation(ctx, "access", "revoked")
		return nil, apperr.ErrTokenRevoked
	}
	observability.RecordTokenValidation(ctx, "access", "valid")
	return claims, nil
}

func (s *TokenService) VerifyRefresh(ctx context.Context, raw string) (*security.Claims, error) {
	claims, err := s.jwtMgr.ParseRefreshToken(raw)
	if err != nil {
		observability.RecordTokenValidation(ctx, "refresh", "invalid")
		return nil, apperr.ErrInvalidToken
	}
	revoked, err := s.store.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		observability.RecordTokenValidation(ctx, "refresh", "revoked")
		return nil, apperr.ErrTokenRevoked
	}
	if _, ok, err := s.store.GetSession(ctx, claims.SessionID); err != nil {
		return nil, err
	} else if !ok {
		observability.RecordTokenValidation(ctx, "refresh", "session_gone")
		return nil, apperr.ErrUnauthorized
	}
	observability.RecordTokenValidation(ctx, "refresh", "valid")
	return claims, nil
}

// Rotate exchanges a valid refresh token for a new pair. The session id is
// continued; the old refresh jti is blacklisted so a second rotation with the
// same token fails.
func (s *TokenService) Rotate(ctx context.Context, raw string, fetch func(id uint) (*domain.User, error)) (*TokenPair, uint, error) {
	claims, err := s.VerifyRefresh(ctx, raw)
	if err != nil {
		return nil, 0, err
	}
	userID, err := ParseUserID(claims.Subject)
	if err != nil {
		return nil, 0, apperr.ErrInvalidToken
	}
	user, err := fetch(userID)
	if err != nil {
		return nil, 0, apperr.ErrUnauthorized
	}
	if user.Status != domain.UserActive {
		return nil, 0, apperr.ErrUnauthorized
	}
	if err := s.store.BlacklistToken(ctx, claims.ID, remainingLifetime(claims)); err != nil {
		return nil, 0, err
	}
	pair, err := s.mint(ctx, user, claims.SessionID)
	if err != nil {
		return nil, 0, err
	}
	return pair, userID, nil
}

// Logout blacklists the refresh token (and the access token when supplied)
// for their remaining lifetimes and drops the session record.
func (s *TokenService) Logout(ctx context.Context, refreshRaw, accessRaw string) error {
	claims, err := s.jwtMgr.ParseRefreshToken(refreshRaw)
	if err != nil {
		return apperr.ErrInvalidToken
	}
	if err := s.store.BlacklistToken(ctx, claims.ID, remainingLifetime(claims)); err != nil {
		return err
	}
	if err := s.store.DeleteSession(ctx, claims.SessionID); err != nil {
		return err
	}
	if accessRaw != "" {
		if ac, err := s.jwtMgr.ParseAccessToken(accessRaw); err == nil {
			if err := s.store.BlacklistToken(ctx, ac.ID, remainingLifetime(ac)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *TokenService) mint(ctx context.Context, user *domain.User, sessionID string) (*TokenPair, error) {
	refresh, err := s.jwtMgr.SignRefreshToken(user, sessionID, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	access, err := s.jwtMgr.SignAccessToken(user, sessionID, s.accessTTL)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveSession(ctx, sessionID, user.ID, s.refreshTTL); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func ParseUserID(subject string) (uint, error) {
	id64, err := strconv.ParseUint(subject, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id64), nil
}

func remainingLifetime(claims *security.Claims) time.Duration {
	if claims.ExpiresAt == nil {
		return 0
	}
	return time.Until(claims.ExpiresAt.Time)
}
