package service

import (
	"context"
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"studyhub/internal/apperr"
	"studyhub/internal/domain"
	"studyhub/internal/observability"
	"studyhub/internal/repository"
)

type Summary struct {
	Total   int64 `json:"total"`
	Present int64 `json:"PRESENT"`
	Late    int64 `json:"LATE"`
	Absent  int64 `json:"ABSENT"`
}

type UserSummary struct {
	Summary
	TotalSessions  int64   `json:"total_sessions"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// AttendanceService records per-session check-ins and computes summaries.
type AttendanceService struct {
	attendance repository.AttendanceRepository
	studies    repository.StudyRepository
	members    repository.MemberRepository
}

func NewAttendanceService(attendance repository.AttendanceRepository, studies repository.StudyRepository, members repository.MemberRepository) *AttendanceService {
	return &AttendanceService{attendance: attendance, studies: studies, members: members}
}

func (s *AttendanceService) CreateSession(ctx context.Context, actor Actor, studyID uint, title, date string) (*domain.AttendanceSession, error) {
	study, err := s.findStudy(studyID)
	if err != nil {
		return nil, err
	}
	if err := s.requireLeaderOrAdmin(study, actor); err != nil {
		return nil, err
	}
	if title == "" {
		return nil, apperr.ErrValidation.WithDetails(map[string]string{"title": "required"})
	}
	when, err := parseDate(date)
	if err != nil {
		return nil, apperr.ErrInvalidDate
	}
	session := &domain.AttendanceSession{StudyID: studyID, Title: title, Date: when}
	if err := s.attendance.CreateSession(session); err != nil {
		return nil, err
	}
	observability.RecordAttendanceEvent(ctx, "session_created", "success")
	return session, nil
}

func (s *AttendanceService) ListSessions(ctx context.Context, actor Actor, studyID uint) ([]domain.AttendanceSession, error) {
	study, err := s.findStudy(studyID)
	if err != nil {
		return nil, err
	}
	if err := s.requireApprovedOrAdmin(study, actor); err != nil {
		return nil, err
	}
	return s.attendance.ListSessionsByStudy(studyID)
}

// Record upserts the caller's check-in by replacement: a second call for the
// same (session, user) overwrites the status instead of duplicating the row.
// The find-then-branch is not atomic under concurrent duplicate submissions.
func (s *AttendanceService) Record(ctx context.Context, actor Actor, studyID, sessionID uint, status string) (*domain.AttendanceRecord, error) {
	st := domain.AttendanceStatus(status)
	if !st.Valid() {
		return nil, apperr.ErrInvalidStatus
	}
	study, err := s.findStudy(studyID)
	if err != nil {
		return nil, err
	}
	session, err := s.findSession(studyID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.requireApprovedOrAdmin(study, actor); err != nil {
		return nil, err
	}
	existing, err := s.attendance.FindRecord(session.ID, actor.UserID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		existing.Status = st
		existing.RecordedAt = time.Now().UTC()
		if err := s.attendance.UpdateRecord(existing); err != nil {
			return nil, err
		}
		observability.RecordAttendanceEvent(ctx, "record", "replaced")
		return existing, nil
	}
	record := &domain.AttendanceRecord{
		SessionID:  session.ID,
		UserID:     actor.UserID,
		Status:     st,
		RecordedAt: time.Now().UTC(),
	}
	if err := s.attendance.CreateRecord(record); err != nil {
		return nil, err
	}
	observability.RecordAttendanceEvent(ctx, "record", "created")
	return record, nil
}

func (s *AttendanceService) ListRecords(ctx context.Context, actor Actor, studyID, sessionID uint) ([]domain.AttendanceRecord, error) {
	study, err := s.findStudy(studyID)
	if err != nil {
		return nil, err
	}
	if _, err := s.findSession(studyID, sessionID); err != nil {
		return nil, err
	}
	if err := s.requireLeaderOrAdmin(study, actor); err != nil {
		return nil, err
	}
	return s.attendance.ListRecordsBySession(sessionID)
}

func (s *AttendanceService) StudySummary(ctx context.Context, actor Actor, studyID uint, from, to string) (*Summary, error) {
	study, err := s.findStudy(studyID)
	if err != nil {
		return nil, err
	}
	if err := s.requireLeaderOrAdmin(study, actor); err != nil {
		return nil, err
	}
	fromT, toT, err := parseDateRange(from, to)
	if err != nil {
		return nil, err
	}
	return s.summarize(studyID, 0, fromT, toT)
}

// MySummary is available to the member themself; it adds the attendance rate
// over the study's full session count (unfiltered by the date range).
func (s *AttendanceService) MySummary(ctx context.Context, actor Actor, studyID uint, from, to string) (*UserSummary, error) {
	study, err := s.findStudy(studyID)
	if err != nil {
		return nil, err
	}
	if err := s.requireApprovedOrAdmin(study, actor); err != nil {
		return nil, err
	}
	fromT, toT, err := parseDateRange(from, to)
	if err != nil {
		return nil, err
	}
	sum, err := s.summarize(studyID, actor.UserID, fromT, toT)
	if err != nil {
		return nil, err
	}
	totalSessions, err := s.attendance.CountSessions(studyID)
	if err != nil {
		return nil, err
	}
	rate := 0.0
	if totalSessions > 0 {
		rate = float64(sum.Present+sum.Late) / float64(totalSessions) * 100
		rate = math.Round(rate*100) / 100
	}
	return &UserSummary{Summary: *sum, TotalSessions: totalSessions, AttendanceRate: rate}, nil
}

func (s *AttendanceService) summarize(studyID, userID uint, from, to *time.Time) (*Summary, error) {
	counts, err := s.attendance.CountByStatus(studyID, userID, from, to)
	if err != nil {
		return nil, err
	}
	sum := &Summary{}
	for _, c := range counts {
		switch c.Status {
		case domain.AttendancePresent:
			sum.Present = c.Count
		case domain.AttendanceLate:
			sum.Late = c.Count
		case domain.AttendanceAbsent:
			sum.Absent = c.Count
		}
		sum.Total += c.Count
	}
	return sum, nil
}

func (s *AttendanceService) findStudy(studyID uint) (*domain.Study, error) {
	study, err := s.studies.FindByID(studyID)
	if err != nil {
		if errors.Is(err, repository.ErrStudyNotFound) {
			return nil, apperr.ErrStudyNotFound
		}
		return nil, err
	}
	return study, nil
}

func (s *AttendanceService) findSession(studyID, sessionID uint) (*domain.AttendanceSession, error) {
	session, err := s.attendance.FindSessionByID(sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrAttendanceSessionNotFound) {
			return nil, apperr.ErrSessionNotFound
		}
		return nil, err
	}
	if session.StudyID != studyID {
		return nil, apperr.ErrSessionNotFound
	}
	return session, nil
}

func (s *AttendanceService) requireLeaderOrAdmin(study *domain.Study, actor Actor) error {
	if actor.IsAdmin() || study.LeaderID == actor.UserID {
		return nil
	}
	return apperr.ErrForbidden
}

func (s *AttendanceService) requireApprovedOrAdmin(study *domain.Study, actor Actor) error {
	if actor.IsAdmin() {
		return nil
	}
	member, err := s.members.Find(study.ID, actor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return apperr.ErrNotAMember
		}
		return err
	}
	if member.Status != domain.MemberApproved {
		return apperr.ErrNotAMember
	}
	return nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func parseDateRange(from, to string) (*time.Time, *time.Time, error) {
	var fromT, toT *time.Time
	if from != "" {
		t, err := parseDate(from)
		if err != nil {
			return nil, nil, apperr.ErrInvalidDate
		}
		fromT = &t
	}
	if to != "" {
		t, err := parseDate(to)
		if err != nil {
			return nil, nil, apperr.ErrInvalidDate
		}
		// date-only upper bounds include the whole day
		if len(to) == len("2006-01-02") {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		toT = &t
	}
	return fromT, toT, nil
}
