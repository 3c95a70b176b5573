package handler

import (
	"net/http"
	"strings"

	"studyhub/internal/http/middleware"
	"studyhub/internal/http/response"
	"studyhub/internal/observability"
	"studyhub/internal/service"
)

type AttendanceHandler struct {
	attendance service.AttendanceServiceInterface
}

func NewAttendanceHandler(attendance service.AttendanceServiceInterface) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

type createSessionRequest struct {
	Title string `json:"title"`
	Date  string `json:"date"`
}

func (req *createSessionRequest) Validate() map[string]string {
	problems := map[string]string{}
	if strings.TrimSpace(req.Title) == "" {
		problems["title"] = "required"
	}
	if req.Date == "" {
		problems["date"] = "required"
	}
	return problems
}

func (h *AttendanceHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
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
	req := &createSessionRequest{}
	if err := decode(r, req); err != nil {
		response.AppError(w, r, err)
		return
	}
	session, err := h.attendance.CreateSession(r.Context(), actor, studyID, strings.TrimSpace(req.Title), req.Date)
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	observability.Audit(r, "attendance.session_create", "study_id", studyID, "session_id", session.ID)
	response.JSON(w, r, http.StatusCreated, map[string]any{"session": session})
}

func (h *AttendanceHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
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
	sessions, err := h.attendance.ListSessions(r.Context(), actor, studyID)
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"sessions": sessions})
}

type recordAttendanceRequest struct {
	Status string `json:"status"`
}

func (req *recordAttendanceRequest) Validate() map[string]string {
	problems := map[string]string{}
	if req.Status == "" {
		problems["status"] = "required"
	}
	return problems
}

func (h *AttendanceHandler) Record(w http.ResponseWriter, r *http.Request) {
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
	sessionID, err := uintParam(r, "sid")
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	req := &recordAttendanceRequest{}
	if err := decode(r, req); err != nil {
		response.AppError(w, r, err)
		return
	}
	record, err := h.attendance.Record(r.Context(), actor, studyID, sessionID, req.Status)
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	observability.Audit(r, "attendance.record", "session_id", sessionID, "user_id", actor.UserID, "status", req.Status)
	response.JSON(w, r, http.StatusCreated, map[string]any{"record": record})
}

func (h *AttendanceHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
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
	sessionID, err := uintParam(r, "sid")
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	records, err := h.attendance.ListRecords(r.Context(), actor, studyID, sessionID)
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"records": records})
}

func (h *AttendanceHandler) StudySummary(w http.ResponseWriter, r *http.Request) {
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
	summary, err := h.attendance.StudySummary(r.Context(), actor, studyID, r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"summary": summary})
}

func (h *AttendanceHandler) MySummary(w http.ResponseWriter, r *http.Request) {
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
	summary, err := h.attendance.MySummary(r.Context(), actor, studyID, r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		response.AppError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"summary": summary})
}
