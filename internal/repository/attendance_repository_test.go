package repository

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"studyhub/internal/domain"
)

func seedSession(t *testing.T, db *gorm.DB, studyID uint, title string, date time.Time) *domain.AttendanceSession {
	t.Helper()

	session := &domain.AttendanceSession{StudyID: studyID, Title: title, Date: date}
	if err := db.Create(session).Error; err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return session
}

func seedRecord(t *testing.T, db *gorm.DB, sessionID, userID uint, status domain.AttendanceStatus) {
	t.Helper()

	record := &domain.AttendanceRecord{SessionID: sessionID, UserID: userID, Status: status, RecordedAt: time.Now().UTC()}
	if err := db.Create(record).Error; err != nil {
		t.Fatalf("seed record: %v", err)
	}
}

func TestAttendanceSessionLookup(t *testing.T) {
	db := newDBForTest(t)
	repo := NewAttendanceRepository(db)
	leader := seedUser(t, db, "leader@example.com")
	study := seedStudy(t, db, leader.ID, nil)

	created := seedSession(t, db, study.ID, "week 1", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	found, err := repo.FindSessionByID(created.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.Title != "week 1" {
		t.Fatalf("unexpected session: %+v", found)
	}

	if _, err := repo.FindSessionByID(9999); !errors.Is(err, ErrAttendanceSessionNotFound) {
		t.Fatalf("expected ErrAttendanceSessionNotFound, got %v", err)
	}
}

func TestListSessionsOrderedByDate(t *testing.T) {
	db := newDBForTest(t)
	repo := NewAttendanceRepository(db)
	leader := seedUser(t, db, "leader@example.com")
	study := seedStudy(t, db, leader.ID, nil)

	seedSession(t, db, study.ID, "late", time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC))
	seedSession(t, db, study.ID, "early", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))

	sessions, err := repo.ListSessionsByStudy(study.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 2 || sessions[0].Title != "early" {
		t.Fatalf("expected date ascending order, got %+v", sessions)
	}

	count, err := repo.CountSessions(study.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 sessions, got %d", count)
	}
}

func TestFindRecordMissReturnsRecordNotFound(t *testing.T) {
	db := newDBForTest(t)
	repo := NewAttendanceRepository(db)

	_, err := repo.FindRecord(1, 1)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected gorm.ErrRecordNotFound, got %v", err)
	}
}

func TestCountByStatusAggregation(t *testing.T) {
	db := newDBForTest(t)
	repo := NewAttendanceRepository(db)
	leader := seedUser(t, db, "leader@example.com")
	member := seedUser(t, db, "member@example.com")
	study := seedStudy(t, db, leader.ID, nil)
	other := seedStudy(t, db, leader.ID, nil)

	s1 := seedSession(t, db, study.ID, "week 1", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	s2 := seedSession(t, db, study.ID, "week 2", time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC))
	foreign := seedSession(t, db, other.ID, "other", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))

	seedRecord(t, db, s1.ID, leader.ID, domain.AttendancePresent)
	seedRecord(t, db, s1.ID, member.ID, domain.AttendanceLate)
	seedRecord(t, db, s2.ID, member.ID, domain.AttendancePresent)
	seedRecord(t, db, foreign.ID, member.ID, domain.AttendanceAbsent)

	counts, err := repo.CountByStatus(study.ID, 0, nil, nil)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	byStatus := map[domain.AttendanceStatus]int64{}
	for _, c := range counts {
		byStatus[c.Status] = c.Count
	}
	if byStatus[domain.AttendancePresent] != 2 || byStatus[domain.AttendanceLate] != 1 || byStatus[domain.AttendanceAbsent] != 0 {
		t.Fatalf("unexpected aggregation: %+v", byStatus)
	}

	// Scoped to one user.
	counts, err = repo.CountByStatus(study.ID, member.ID, nil, nil)
	if err != nil {
		t.Fatalf("count for user: %v", err)
	}
	var total int64
	for _, c := range counts {
		total += c.Count
	}
	if total != 2 {
		t.Fatalf("expected 2 records for the member, got %d", total)
	}

	// Restricted by session date.
	from := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	counts, err = repo.CountByStatus(study.ID, 0, &from, nil)
	if err != nil {
		t.Fatalf("count from: %v", err)
	}
	total = 0
	for _, c := range counts {
		total += c.Count
	}
	if total != 1 {
		t.Fatalf("expected only week 2 records, got %d", total)
	}
}
