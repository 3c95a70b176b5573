package handler

import (
	"net/http"
	"strings"

	"studyhub/internal/http/middleware"
	"studyhub/internal/http/response"
	"studyhub/internal/repository"
	"studyhub/internal/service"
)

type UserHandler struct {
	users service.UserServiceInterface
}

func NewUserHandler(users service.UserServiceInterface) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	user, err := h.users.GetByID(actor.UserID)
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"user": user})
}

type updateProfileRequest struct {
	Name string `json:"name"`
}

func (req *updateProfileRequest) Validate() map[string]string {
	problems := map[string]string{}
	if strings.TrimSpace(req.Name) == "" {
		problems["name"] = "required"
	}
	return problems
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	req := &updateProfileRequest{}
	if err := decode(r, req); err != nil {
		response.AppError(w, r, err)
		return
	}
	user, err := h.users.UpdateProfile(actor.UserID, strings.TrimSpace(req.Name))
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"user": user})
}

// ListUsers is the admin listing with email/status/role filters.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	result, err := h.users.ListPaged(repository.UserListQuery{
		PageRequest: repository.PageRequest{Page: queryInt(r, "page"), PageSize: queryInt(r, "pageSize")},
		Email:       r.URL.Query().Get("email"),
		Status:      r.URL.Query().Get("status"),
		Role:        r.URL.Query().Get("role"),
	})
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}
