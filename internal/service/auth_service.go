package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"studyhub/internal/apperr"
	"studyhub/internal/domain"
	"studyhub/internal/observability"
	"studyhub/internal/repository"
	"studyhub/internal/security"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type AuthService struct {
	users      repository.UserRepository
	tokens     *TokenService
	oauth      *oauth2.Config
	bcryptCost int
}

func NewAuthService(users repository.UserRepository, tokens *TokenService, googleClientID, googleClientSecret, googleRedirectURL string, bcryptCost int) *AuthService {
	var oauthCfg *oauth2.Config
	if googleClientID != "" {
		oauthCfg = &oauth2.Config{
			ClientID:     googleClientID,
			ClientSecret: googleClientSecret,
			RedirectURL:  googleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}
	return &AuthService{users: users, tokens: tokens, oauth: oauthCfg, bcryptCost: bcryptCost}
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (*domain.User, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.users.FindByEmail(email); err == nil {
		observability.RecordAuthEvent(ctx, "register", "email_taken")
		return nil, nil, apperr.ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, nil, err
	}
	hash, err := security.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, nil, err
	}
	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         domain.RoleUser,
		Status:       domain.UserActive,
		Provider:     domain.ProviderLocal,
	}
	if err := s.users.Create(user); err != nil {
		return nil, nil, err
	}
	pair, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	observability.RecordAuthEvent(ctx, "register", "success")
	return user, pair, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	user, err := s.users.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordAuthEvent(ctx, "login", "unknown_email")
			return nil, nil, apperr.ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !security.CheckPassword(user.PasswordHash, password) {
		observability.RecordAuthEvent(ctx, "login", "bad_password")
		return nil, nil, apperr.ErrInvalidCredentials
	}
	if user.Status != domain.UserActive {
		observability.RecordAuthEvent(ctx, "login", "inactive")
		return nil, nil, apperr.ErrForbidden.WithMessage("account is inactive")
	}
	pair, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	observability.RecordAuthEvent(ctx, "login", "success")
	return user, pair, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	pair, _, err := s.tokens.Rotate(ctx, refreshToken, func(id uint) (*domain.User, error) {
		return s.users.FindByID(id)
	})
	if err != nil {
		observability.RecordAuthEvent(ctx, "refresh", "failed")
		return nil, err
	}
	observability.RecordAuthEvent(ctx, "refresh", "success")
	return pair, nil
}

func (s *AuthService) Logout(ctx context.Context, refreshToken, accessToken string) error {
	if err := s.tokens.Logout(ctx, refreshToken, accessToken); err != nil {
		observability.RecordAuthEvent(ctx, "logout", "failed")
		return err
	}
	observability.RecordAuthEvent(ctx, "logout", "success")
	return nil
}

func (s *AuthService) GoogleLoginURL(state string) string {
	if s.oauth == nil {
		return ""
	}
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

type googleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// LoginWithGoogleCode exchanges the OAuth code and signs the user in,
// creating the account on first social login. An existing local account with
// the same email is linked rather than duplicated.
func (s *AuthService) LoginWithGoogleCode(ctx context.Context, code string) (*domain.User, *TokenPair, error) {
	if s.oauth == nil {
		return nil, nil, apperr.ErrValidation.WithMessage("google login is not configured")
	}
	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		observability.RecordAuthEvent(ctx, "google_login", "exchange_failed")
		return nil, nil, apperr.ErrUnauthorized
	}
	info, err := fetchGoogleUserInfo(ctx, s.oauth.Client(ctx, tok))
	if err != nil {
		observability.RecordAuthEvent(ctx, "google_login", "userinfo_failed")
		return nil, nil, apperr.ErrUnauthorized
	}
	user, err := s.findOrCreateGoogleUser(info)
	if err != nil {
		return nil, nil, err
	}
	if user.Status != domain.UserActive {
		return nil, nil, apperr.ErrForbidden.WithMessage("account is inactive")
	}
	pair, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	observability.RecordAuthEvent(ctx, "google_login", "success")
	return user, pair, nil
}

func (s *AuthService) findOrCreateGoogleUser(info *googleUserInfo) (*domain.User, error) {
	user, err := s.users.FindByProviderID(domain.ProviderGoogle, info.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}
	email := strings.ToLower(info.Email)
	user, err = s.users.FindByEmail(email)
	if err == nil {
		user.Provider = domain.ProviderGoogle
		user.ProviderID = &info.ID
		if err := s.users.Update(user); err != nil {
			return nil, err
		}
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}
	user = &domain.User{
		Email:      email,
		Name:       info.Name,
		Role:       domain.RoleUser,
		Status:     domain.UserActive,
		Provider:   domain.ProviderGoogle,
		ProviderID: &info.ID,
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func fetchGoogleUserInfo(ctx context.Context, client *http.Client) (*googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}
	info := &googleUserInfo{}
	if err := json.NewDecoder(resp.Body).Decode(info); err != nil {
		return nil, err
	}
	if info.ID == "" || info.Email == "" {
		return nil, errors.New("incomplete userinfo response")
	}
	return info, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	user, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.ErrUserNotFound
		}
		return err
	}
	if !security.CheckPassword(user.PasswordHash, current) {
		return apperr.ErrInvalidCredentials
	}
	hash, err := security.HashPassword(next, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(user); err != nil {
		return err
	}
	observability.RecordAuthEvent(ctx, "change_password", "success")
	return nil
}
