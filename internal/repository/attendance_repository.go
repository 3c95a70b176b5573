package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"studyhub/internal/domain"
	"studyhub/internal/observability"
)

var ErrAttendanceSessionNotFound = errors.New("attendance session not found")

type StatusCount struct {
	Status domain.AttendanceStatus
	Count  int64
}

type AttendanceRepository interface {
	CreateSession(session *domain.AttendanceSession) error
	FindSessionByID(id uint) (*domain.AttendanceSession, error)
	ListSessionsByStudy(studyID uint) ([]domain.AttendanceSession, error)
	CountSessions(studyID uint) (int64, error)
	FindRecord(sessionID, userID uint) (*domain.AttendanceRecord, error)
	CreateRecord(record *domain.AttendanceRecord) error
	UpdateRecord(record *domain.AttendanceRecord) error
	ListRecordsBySession(sessionID uint) ([]domain.AttendanceRecord, error)
	CountByStatus(studyID uint, userID uint, from, to *time.Time) ([]StatusCount, error)
}

type GormAttendanceRepository struct{ db *gorm.DB }

func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &GormAttendanceRepository{db: db}
}

func (r *GormAttendanceRepository) CreateSession(session *domain.AttendanceSession) error {
	err := r.db.Create(session).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "attendance", "create_session", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "attendance", "create_session", "success")
	return nil
}

func (r *GormAttendanceRepository) FindSessionByID(id uint) (*domain.AttendanceSession, error) {
	var s domain.AttendanceSession
	err := r.db.First(&s, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "attendance", "find_session", "not_found")
			return nil, ErrAttendanceSessionNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "attendance", "find_session", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "attendance", "find_session", "success")
	return &s, nil
}

func (r *GormAttendanceRepository) ListSessionsByStudy(studyID uint) ([]domain.AttendanceSession, error) {
	var sessions []domain.AttendanceSession
	err := r.db.Where("study_id = ?", studyID).Order("date ASC").Find(&sessions).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "attendance", "list_sessions", "error")
		return sessions, err
	}
	observability.RecordRepositoryOperation(context.Background(), "attendance", "list_sessions", "success")
	return sessions, nil
}

func (r *GormAttendanceRepository) CountSessions(studyID uint) (int64, error) {
	var count int64
	err := r.db.Model(&domain.AttendanceSession{}).Where("study_id = ?", studyID).Count(&count).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "attendance", "count_sessions", "error")
		return 0, err
	}
	observability.RecordRepositoryOperation(context.Background(), "attendance", "count_sessions", "success")
	return count, nil
}

func (r *GormAttendanceRepository) FindRecord(sessionID, userID uint) (*domain.AttendanceRecord, error) {
	var rec domain.AttendanceRecord
	err := r.db.Where("session_id = ? AND user_id = ?", sessionID, userID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "attendance", "find_record", "not_found")
			return nil, gorm.ErrRecordNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "attendance", "find_record", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "attendance", "find_record", "success")
	return &rec, nil
}

func (r *GormAttendanceRepository) CreateRecord(record *domain.AttendanceRecord) error {
	err := r.db.Create(record).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "attendance", "create_record", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "attendance", "create_record", "success")
	return nil
}

func (r *GormAttendanceRepository) UpdateRecord(record *domain.AttendanceRecord) error {
	err := r.db.Save(record).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "attendance", "update_record", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "attendance", "update_record", "success")
	return nil
}

func (r *GormAttendanceRepository) ListRecordsBySession(sessionID uint) ([]domain.AttendanceRecord, error) {
	var records []domain.AttendanceRecord
	err := r.db.Preload("User").Where("session_id = ?", sessionID).Order("recorded_at ASC").Find(&records).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "attendance", "list_records", "error")
		return records, err
	}
	observability.RecordRepositoryOperation(context.Background(), "attendance", "list_records", "success")
	return records, nil
}

// CountByStatus aggregates attendance across a study's sessions grouped by
// status. userID 0 means all members; from/to restrict by session date.
func (r *GormAttendanceRepository) CountByStatus(studyID uint, userID uint, from, to *time.Time) ([]StatusCount, error) {
	q := r.db.Model(&domain.AttendanceRecord{}).
		Select("attendance_records.status AS status, COUNT(*) AS count").
		Joins("JOIN attendance_sessions ON attendance_sessions.id = attendance_records.session_id").
		Where("attendance_sessions.study_id = ?", studyID)
	if userID != 0 {
		q = q.Where("attendance_records.user_id = ?", userID)
	}
	if from != nil {
		q = q.Where("attendance_sessions.date >= ?", *from)
	}
	if to != nil {
		q = q.Where("attendance_sessions.date <= ?", *to)
	}

	var counts []StatusCount
	err := q.Group("attendance_records.status").Scan(&counts).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "attendance", "count_by_status", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "attendance", "count_by_status", "success")
	return counts, nil
}
