package service

import (
	"context"
	"testing"

	"studyhub/internal/domain"
)

type attendanceFixture struct {
	svc    *AttendanceService
	study  *domain.Study
	leader *domain.User
	member *domain.User
	repos  testRepos
}

func newAttendanceFixture(t *testing.T) attendanceFixture {
	t.Helper()

	ctx := context.Background()
	repos := newReposForTest(t)
	studies := NewStudyService(repos.studies, repos.members, repos.users)
	svc := NewAttendanceService(repos.attendance, repos.studies, repos.members)

	leader := repos.mustCreateUser(t, "leader@example.com", domain.RoleUser)
	member := repos.mustCreateUser(t, "member@example.com", domain.RoleUser)
	study := mustCreateStudy(t, studies, leader, nil)
	if _, err := studies.Join(ctx, asActor(member), study.ID); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := studies.SetMemberStatus(ctx, asActor(leader), study.ID, member.ID, domain.MemberApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}
	return attendanceFixture{svc: svc, study: study, leader: leader, member: member, repos: repos}
}

func (f attendanceFixture) mustCreateSession(t *testing.T, title, date string) *domain.AttendanceSession {
	t.Helper()

	session, err := f.svc.CreateSession(context.Background(), asActor(f.leader), f.study.ID, title, date)
	if err != nil {
		t.Fatalf("create session %s: %v", title, err)
	}
	return session
}

func TestCreateSessionAcceptsBothDateFormats(t *testing.T) {
	f := newAttendanceFixture(t)

	dayOnly := f.mustCreateSession(t, "week 1", "2026-03-02")
	if dayOnly.Date.Format("2006-01-02") != "2026-03-02" {
		t.Fatalf("unexpected day-only date: %v", dayOnly.Date)
	}
	f.mustCreateSession(t, "week 2", "2026-03-09T19:00:00+09:00")

	_, err := f.svc.CreateSession(context.Background(), asActor(f.leader), f.study.ID, "bad", "03/02/2026")
	assertCode(t, err, "INVALID_DATE")
}

func TestCreateSessionRequiresLeaderOrAdmin(t *testing.T) {
	f := newAttendanceFixture(t)

	_, err := f.svc.CreateSession(context.Background(), asActor(f.member), f.study.ID, "week 1", "2026-03-02")
	assertCode(t, err, "FORBIDDEN")

	admin := f.repos.mustCreateUser(t, "admin@example.com", domain.RoleAdmin)
	if _, err := f.svc.CreateSession(context.Background(), asActor(admin), f.study.ID, "week 1", "2026-03-02"); err != nil {
		t.Fatalf("admin create session: %v", err)
	}
}

func TestListSessionsRequiresApprovedMembership(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t)
	f.mustCreateSession(t, "week 1", "2026-03-02")

	pending := f.repos.mustCreateUser(t, "pending@example.com", domain.RoleUser)
	studies := NewStudyService(f.repos.studies, f.repos.members, f.repos.users)
	if _, err := studies.Join(ctx, asActor(pending), f.study.ID); err != nil {
		t.Fatalf("join: %v", err)
	}

	_, err := f.svc.ListSessions(ctx, asActor(pending), f.study.ID)
	assertCode(t, err, "NOT_A_MEMBER")

	sessions, err := f.svc.ListSessions(ctx, asActor(f.member), f.study.ID)
	if err != nil {
		t.Fatalf("approved member list: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
}

func TestRecordReplacesExistingEntry(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t)
	session := f.mustCreateSession(t, "week 1", "2026-03-02")

	first, err := f.svc.Record(ctx, asActor(f.member), f.study.ID, session.ID, "PRESENT")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	second, err := f.svc.Record(ctx, asActor(f.member), f.study.ID, session.ID, "LATE")
	if err != nil {
		t.Fatalf("re-record: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected replacement of row %d, got new row %d", first.ID, second.ID)
	}

	records, err := f.svc.ListRecords(ctx, asActor(f.leader), f.study.ID, session.ID)
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(records) != 1 || records[0].Status != domain.AttendanceLate {
		t.Fatalf("expected exactly one LATE record, got %+v", records)
	}
}

func TestRecordValidation(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t)
	session := f.mustCreateSession(t, "week 1", "2026-03-02")

	_, err := f.svc.Record(ctx, asActor(f.member), f.study.ID, session.ID, "SLEEPING")
	assertCode(t, err, "INVALID_STATUS")

	_, err = f.svc.Record(ctx, asActor(f.member), f.study.ID, 9999, "PRESENT")
	assertCode(t, err, "SESSION_NOT_FOUND")

	outsider := f.repos.mustCreateUser(t, "outsider@example.com", domain.RoleUser)
	_, err = f.svc.Record(ctx, asActor(outsider), f.study.ID, session.ID, "PRESENT")
	assertCode(t, err, "NOT_A_MEMBER")
}

func TestRecordRejectsSessionFromAnotherStudy(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t)
	studies := NewStudyService(f.repos.studies, f.repos.members, f.repos.users)

	other := mustCreateStudy(t, studies, f.leader, nil)
	foreign, err := f.svc.CreateSession(ctx, asActor(f.leader), other.ID, "other week 1", "2026-03-02")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	_, err = f.svc.Record(ctx, asActor(f.member), f.study.ID, foreign.ID, "PRESENT")
	assertCode(t, err, "SESSION_NOT_FOUND")
}

func TestStudySummaryCountsByStatus(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t)
	s1 := f.mustCreateSession(t, "week 1", "2026-03-02")
	s2 := f.mustCreateSession(t, "week 2", "2026-03-09")

	for _, rec := range []struct {
		user      *domain.User
		sessionID uint
		status    string
	}{
		{f.member, s1.ID, "PRESENT"},
		{f.leader, s1.ID, "LATE"},
		{f.member, s2.ID, "ABSENT"},
	} {
		if _, err := f.svc.Record(ctx, asActor(rec.user), f.study.ID, rec.sessionID, rec.status); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	sum, err := f.svc.StudySummary(ctx, asActor(f.leader), f.study.ID, "", "")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Total != 3 || sum.Present != 1 || sum.Late != 1 || sum.Absent != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}

	_, err = f.svc.StudySummary(ctx, asActor(f.member), f.study.ID, "", "")
	assertCode(t, err, "FORBIDDEN")
}

func TestStudySummaryFiltersByDateRange(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t)
	s1 := f.mustCreateSession(t, "week 1", "2026-03-01")
	s2 := f.mustCreateSession(t, "week 2", "2026-03-05")

	if _, err := f.svc.Record(ctx, asActor(f.member), f.study.ID, s1.ID, "PRESENT"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := f.svc.Record(ctx, asActor(f.member), f.study.ID, s2.ID, "PRESENT"); err != nil {
		t.Fatalf("record: %v", err)
	}

	sum, err := f.svc.StudySummary(ctx, asActor(f.leader), f.study.ID, "2026-03-02", "2026-03-10")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Total != 1 || sum.Present != 1 {
		t.Fatalf("expected only the in-range session counted, got %+v", sum)
	}

	// A date-only upper bound includes records on that day.
	sum, err = f.svc.StudySummary(ctx, asActor(f.leader), f.study.ID, "", "2026-03-05")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Total != 2 {
		t.Fatalf("expected both sessions within the inclusive bound, got %+v", sum)
	}

	_, err = f.svc.StudySummary(ctx, asActor(f.leader), f.study.ID, "not-a-date", "")
	assertCode(t, err, "INVALID_DATE")
}

func TestMySummaryComputesRoundedRate(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t)
	s1 := f.mustCreateSession(t, "week 1", "2026-03-01")
	s2 := f.mustCreateSession(t, "week 2", "2026-03-08")
	f.mustCreateSession(t, "week 3", "2026-03-15")

	if _, err := f.svc.Record(ctx, asActor(f.member), f.study.ID, s1.ID, "PRESENT"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := f.svc.Record(ctx, asActor(f.member), f.study.ID, s2.ID, "LATE"); err != nil {
		t.Fatalf("record: %v", err)
	}

	sum, err := f.svc.MySummary(ctx, asActor(f.member), f.study.ID, "", "")
	if err != nil {
		t.Fatalf("my summary: %v", err)
	}
	if sum.TotalSessions != 3 {
		t.Fatalf("expected 3 sessions, got %d", sum.TotalSessions)
	}
	// 2 attended of 3 sessions rounds to 66.67.
	if sum.AttendanceRate != 66.67 {
		t.Fatalf("expected rate 66.67, got %v", sum.AttendanceRate)
	}
}

func TestMySummaryRateZeroWithoutSessions(t *testing.T) {
	f := newAttendanceFixture(t)

	sum, err := f.svc.MySummary(context.Background(), asActor(f.member), f.study.ID, "", "")
	if err != nil {
		t.Fatalf("my summary: %v", err)
	}
	if sum.TotalSessions != 0 || sum.AttendanceRate != 0 {
		t.Fatalf("expected empty summary, got %+v", sum)
	}
}

func TestMySummaryOnlyCountsOwnRecords(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t)
	session := f.mustCreateSession(t, "week 1", "2026-03-01")

	if _, err := f.svc.Record(ctx, asActor(f.member), f.study.ID, session.ID, "PRESENT"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := f.svc.Record(ctx, asActor(f.leader), f.study.ID, session.ID, "ABSENT"); err != nil {
		t.Fatalf("record: %v", err)
	}

	sum, err := f.svc.MySummary(ctx, asActor(f.member), f.study.ID, "", "")
	if err != nil {
		t.Fatalf("my summary: %v", err)
	}
	if sum.Total != 1 || sum.Present != 1 || sum.Absent != 0 {
		t.Fatalf("expected only the caller's record, got %+v", sum)
	}
}
