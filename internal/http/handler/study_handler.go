package handler

import (
	"net/http"
	"strings"

	"studyhub/internal/domain"
	"studyhub/internal/http/middleware"
	"studyhub/internal/http/response"
	"studyhub/internal/observability"
	"studyhub/internal/repository"
	"studyhub/internal/service"
)

type StudyHandler struct {
	studies service.StudyServiceInterface
}

func NewStudyHandler(studies service.StudyServiceInterface) *StudyHandler {
	return &StudyHandler{studies: studies}
}

type createStudyRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	MaxMembers  *int   `json:"maxMembers"`
}

func (req *createStudyRequest) Validate() map[string]string {
	problems := map[string]string{}
	if strings.TrimSpace(req.Title) == "" {
		problems["title"] = "required"
	}
	if req.MaxMembers != nil && *req.MaxMembers < 1 {
		problems["maxMembers"] = "must be positive"
	}
	return problems
}

func (h *StudyHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	req := &createStudyRequest{}
	if err := decode(r, req); err != nil {
		response.AppError(w, r, err)
		return
	}
	study, err := h.studies.Create(r.Context(), actor, service.CreateStudyInput{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Category:    req.Category,
		MaxMembers:  req.MaxMembers,
	})
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	observability.Audit(r, "study.create", "study_id", study.ID, "leader_id", actor.UserID)
	response.JSON(w, r, http.StatusCreated, map[string]any{"study": study})
}

func (h *StudyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uintParam(r, "id")
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	study, err := h.studies.Get(id)
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"study": study})
}

func (h *StudyHandler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.studies.List(repository.StudyListQuery{
		PageRequest: repository.PageRequest{Page: queryInt(r, "page"), PageSize: queryInt(r, "pageSize")},
		Status:      r.URL.Query().Get("status"),
		Category:    r.URL.Query().Get("category"),
	})
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}

func (h *StudyHandler) Join(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	id, err := uintParam(r, "id")
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	member, err := h.studies.Join(r.Context(), actor, id)
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	observability.Audit(r, "study.join", "study_id", id, "user_id", actor.UserID)
	response.JSON(w, r, http.StatusCreated, map[string]any{"member": member})
}

type setMemberStatusRequest struct {
	Status string `json:"status"`
}

func (req *setMemberStatusRequest) Validate() map[string]string {
	problems := map[string]string{}
	if req.Status == "" {
		problems["status"] = "required"
	}
	return problems
}

func (h *StudyHandler) SetMemberStatus(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	studyID, err := uintParam(r, "id")
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	userID, err := uintParam(r, "userId")
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	req := &setMemberStatusRequest{}
	if err := decode(r, req); err != nil {
		response.AppError(w, r, err)
		return
	}
	member, err := h.studies.SetMemberStatus(r.Context(), actor, studyID, userID, domain.MemberStatus(req.Status))
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	observability.Audit(r, "study.member_status", "study_id", studyID, "target_user_id", userID, "status", req.Status)
	response.JSON(w, r, http.StatusOK, map[string]any{"member": member})
}

func (h *StudyHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	studyID, err := uintParam(r, "id")
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	userID, err := uintParam(r, "userId")
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	if err := h.studies.RemoveMember(r.Context(), actor, studyID, userID); err != nil {
		response.AppError(w, r, err)
		return
	}
	observability.Audit(r, "study.remove_member", "study_id", studyID, "target_user_id", userID)
	response.JSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

func (h *StudyHandler) Leave(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	studyID, err := uintParam(r, "id")
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	if err := h.studies.Leave(r.Context(), actor, studyID); err != nil {
		response.AppError(w, r, err)
		return
	}
	observability.Audit(r, "study.leave", "study_id", studyID, "user_id", actor.UserID)
	response.JSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

func (h *StudyHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	studyID, err := uintParam(r, "id")
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	result, err := h.studies.ListMembers(repository.MemberListQuery{
		PageRequest: repository.PageRequest{Page: queryInt(r, "page"), PageSize: queryInt(r, "pageSize")},
		StudyID:     studyID,
		Status:      r.URL.Query().Get("status"),
	})
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}

func (h *StudyHandler) ListMyStudies(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	result, err := h.studies.ListMyStudies(repository.MyStudiesQuery{
		PageRequest: repository.PageRequest{Page: queryInt(r, "page"), PageSize: queryInt(r, "pageSize")},
		UserID:      actor.UserID,
		Role:        r.URL.Query().Get("role"),
		StudyStatus: r.URL.Query().Get("studyStatus"),
	})
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}
