package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"studyhub/internal/domain"
	"studyhub/internal/http/middleware"
	"studyhub/internal/http/response"
	"studyhub/internal/observability"
	"studyhub/internal/service"
)

type AuthHandler struct {
	auth service.AuthServiceInterface
}

func NewAuthHandler(auth service.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (req *registerRequest) Validate() map[string]string {
	problems := map[string]string{}
	if !strings.Contains(req.Email, "@") {
		problems["email"] = "must be a valid email address"
	}
	if len(req.Password) < 8 {
		problems["password"] = "must be at least 8 characters"
	}
	if strings.TrimSpace(req.Name) == "" {
		problems["name"] = "required"
	}
	return problems
}

type authPayload struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req := &registerRequest{}
	if err := decode(r, req); err != nil {
		response.AppError(w, r, err)
		return
	}
	user, pair, err := h.auth.Register(r.Context(), req.Email, req.Password, strings.TrimSpace(req.Name))
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	observability.Audit(r, "auth.register", "user_id", user.ID)
	response.JSON(w, r, http.StatusCreated, authPayload{User: user, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *loginRequest) Validate() map[string]string {
	problems := map[string]string{}
	if req.Email == "" {
		problems["email"] = "required"
	}
	if req.Password == "" {
		problems["password"] = "required"
	}
	return problems
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req := &loginRequest{}
	if err := decode(r, req); err != nil {
		response.AppError(w, r, err)
		return
	}
	user, pair, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	observability.Audit(r, "auth.login", "user_id", user.ID)
	response.JSON(w, r, http.StatusOK, authPayload{User: user, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (req *refreshRequest) Validate() map[string]string {
	problems := map[string]string{}
	if req.RefreshToken == "" {
		problems["refreshToken"] = "required"
	}
	return problems
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	req := &refreshRequest{}
	if err := decode(r, req); err != nil {
		response.AppError(w, r, err)
		return
	}
	pair, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	req := &refreshRequest{}
	if err := decode(r, req); err != nil {
		response.AppError(w, r, err)
		return
	}
	accessToken := ""
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		accessToken = strings.TrimSpace(auth[7:])
	}
	if err := h.auth.Logout(r.Context(), req.RefreshToken, accessToken); err != nil {
		response.AppError(w, r, err)
		return
	}
	observability.Audit(r, "auth.logout")
	response.JSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	url := h.auth.GoogleLoginURL(uuid.NewString())
	if url == "" {
		response.Error(w, r, http.StatusNotImplemented, "NOT_CONFIGURED", "google login is not configured", nil)
		return
	}
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		response.Error(w, r, http.StatusBadRequest, "VALIDATION_FAILED", "missing code parameter", nil)
		return
	}
	user, pair, err := h.auth.LoginWithGoogleCode(r.Context(), code)
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	observability.Audit(r, "auth.google_login", "user_id", user.ID)
	response.JSON(w, r, http.StatusOK, authPayload{User: user, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (req *changePasswordRequest) Validate() map[string]string {
	problems := map[string]string{}
	if req.CurrentPassword == "" {
		problems["currentPassword"] = "required"
	}
	if len(req.NewPassword) < 8 {
		problems["newPassword"] = "must be at least 8 characters"
	}
	return problems
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	req := &changePasswordRequest{}
	if err := decode(r, req); err != nil {
		response.AppError(w, r, err)
		return
	}
	if err := h.auth.ChangePassword(r.Context(), actor.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		response.AppError(w, r, err)
		return
	}
	observability.Audit(r, "auth.change_password", "user_id", actor.UserID)
	response.JSON(w, r, http.StatusOK, map[string]bool{"success": true})
}
